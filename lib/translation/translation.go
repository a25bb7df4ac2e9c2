package translation

import (
	"strings"

	"github.com/leonelquinteros/gotext"
)

// Configure points gotext at the locales directory for the given
// language. Missing locale files fall through to the message IDs,
// which double as the English strings.
func Configure(lang string) {
	gotext.Configure("locales", strings.ToLower(lang), "default")
}

func GetLanguage() string {
	lang := gotext.GetLanguage()

	if lang == "und" || lang == "" {
		return "en"
	}

	return lang
}

func Translate(msgID string, vars ...interface{}) string {
	return gotext.Get(msgID, vars...)
}
