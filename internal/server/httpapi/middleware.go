package httpapi

import (
	"errors"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/openclass/member-service/internal/auth"
)

var errInternal = errors.New("internal server error")

const (
	accountIDKey = "httpapi.accountID"
	requestIDKey = "httpapi.requestID"
)

// wantsJSON reports whether the client accepts a structured JSON response.
func wantsJSON(c *gin.Context) bool {
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "json") || strings.Contains(accept, "*/*")
}

// renderError sends err through the translator; anything the translator does
// not claim falls back to the generic renderer.
func (h *Handler) renderError(c *gin.Context, err error) {
	surface := SurfaceFromPath(c.Request.URL.Path)
	if body, ok := h.tr.Translate(surface, wantsJSON(c), err); ok {
		c.AbortWithStatusJSON(http.StatusOK, body)
		return
	}
	// generic fallback renderer
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
}

// RequestID assigns each request a uuid exposed via the X-Request-Id header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.NewV4()
		if err == nil {
			c.Set(requestIDKey, id.String())
			c.Header("X-Request-Id", id.String())
		}
		c.Next()
	}
}

// Logging returns a middleware for structured request logging.
func Logging(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("http",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("surface", SurfaceFromPath(c.Request.URL.Path).String()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("dur", time.Since(start)),
			zap.String("peer", c.ClientIP()),
			zap.String("request_id", c.GetString(requestIDKey)),
		)
	}
}

// Recover returns a middleware that recovers from handler panics and renders
// them through the error seam.
func Recover(log *zap.Logger, h *Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic",
					zap.Any("reason", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("path", c.Request.URL.Path),
				)
				h.renderError(c, errInternal)
			}
		}()
		c.Next()
	}
}

// AuthRequired verifies the bearer token and stores the account id in the
// request context. Failures surface as errs.ErrAuthRequired so both surfaces
// switch to their no-auth code.
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			h.renderError(c, err)
			return
		}
		id, err := auth.VerifyToken(tok, h.signKey)
		if err != nil {
			h.renderError(c, err)
			return
		}
		c.Set(accountIDKey, id)
		c.Next()
	}
}

// accountID returns the authenticated account id set by AuthRequired.
func accountID(c *gin.Context) int64 {
	return c.GetInt64(accountIDKey)
}
