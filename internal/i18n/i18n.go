// Package i18n provides the small fixed set of user-facing message lookups.
package i18n

// Message keys used by services and the error translator.
const (
	KeyError            = "error"
	KeyOldPasswordError = "old_password_error"
	KeyCantBindMobile   = "cant_bind_mobile"
)

var messages = map[string]map[string]string{
	"en": {
		KeyError:            "error",
		KeyOldPasswordError: "old password error",
		KeyCantBindMobile:   "mobile already bound to this account",
	},
	"zh-CN": {
		KeyError:            "错误",
		KeyOldPasswordError: "原密码错误",
		KeyCantBindMobile:   "当前账号已绑定手机号",
	},
}

// Locale translates message keys for one language.
type Locale struct {
	lang string
}

// New returns a Locale for lang, falling back to English for unknown languages.
func New(lang string) *Locale {
	if _, ok := messages[lang]; !ok {
		lang = "en"
	}
	return &Locale{lang: lang}
}

// T returns the translation for key, or the key itself when missing.
func (l *Locale) T(key string) string {
	if msg, ok := messages[l.lang][key]; ok {
		return msg
	}
	return key
}
