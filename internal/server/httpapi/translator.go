package httpapi

import (
	"errors"

	"github.com/openclass/member-service/internal/errs"
	"github.com/openclass/member-service/internal/i18n"
)

// Response codes carried inside the JSON envelopes. Both surfaces ship their
// envelope with HTTP 200; the code field is the contract.
const (
	BackendErrorCode  = 1
	BackendNoAuthCode = 401
	V2ErrorCode       = 1
	V2NoAuthCode      = 401

	// V2SuccessCode is the code of a successful public-API response.
	V2SuccessCode = 0
	// BackendSuccessCode is the status of a successful backend response.
	BackendSuccessCode = 0
)

// BackendEnvelope is the backend-surface error shape. The original error text
// is preserved: backend operators are trusted readers.
type BackendEnvelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// V2Envelope is the public-surface error shape. The message is always the
// localized generic string, never the original error text.
type V2Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// V2Error is a typed public-API error a handler raises deliberately, carrying
// its own code and user-facing message. The translator leaves it alone.
type V2Error struct {
	Code    int
	Message string
}

func (e *V2Error) Error() string { return e.Message }

// Translator maps a raised error onto a surface-appropriate envelope.
// It is a pure function of (error, surface, wantsJSON); no state beyond the
// message locale.
type Translator struct {
	loc *i18n.Locale
}

// NewTranslator constructs a Translator with the given message locale.
func NewTranslator(loc *i18n.Locale) *Translator {
	return &Translator{loc: loc}
}

// Translate returns the envelope for err on the given surface. ok=false means
// the error is not this seam's to shape and the generic fallback renderer
// must take over: non-JSON clients, unknown surfaces, and public-API errors
// that are already typed V2Errors.
func (t *Translator) Translate(surface Surface, wantsJSON bool, err error) (body any, ok bool) {
	if !wantsJSON {
		return nil, false
	}
	switch surface {
	case SurfaceBackend:
		code := BackendErrorCode
		if errors.Is(err, errs.ErrAuthRequired) {
			code = BackendNoAuthCode
		}
		return BackendEnvelope{Status: code, Message: err.Error()}, true
	case SurfaceAPIV2:
		var v2 *V2Error
		if errors.As(err, &v2) {
			return nil, false
		}
		code := V2ErrorCode
		if errors.Is(err, errs.ErrAuthRequired) {
			code = V2NoAuthCode
		}
		return V2Envelope{Code: code, Message: t.loc.T(i18n.KeyError)}, true
	default:
		return nil, false
	}
}
