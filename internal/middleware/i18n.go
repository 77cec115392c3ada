// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/uni402-backend/internal/i18n"
)

// I18nMiddleware stores the caller's language under "lang". A ?lang= query parameter
// wins over Accept-Language.
func I18nMiddleware(defaultLang string) gin.HandlerFunc {
	if defaultLang == "" {
		defaultLang = "en"
	}

	return func(c *gin.Context) {
		lang := c.Query("lang")
		if lang == "" {
			lang = c.GetHeader("Accept-Language")
		}

		// Handle cases like "zh-TW,zh;q=0.9,en;q=0.8"
		lang = normalizeLanguage(lang)
		if lang == "" || !isSupported(lang) {
			lang = defaultLang
		}

		c.Set("lang", lang)
		c.Next()
	}
}

func normalizeLanguage(header string) string {
	if header == "" {
		return ""
	}

	first := strings.TrimSpace(strings.Split(strings.Split(header, ",")[0], ";")[0])
	switch first {
	case "zh-TW", "zh-Hant", "zh_TW", "zh-HK":
		return "zh_TW"
	case "en", "en-US", "en-GB":
		return "en"
	}
	return first
}

func isSupported(lang string) bool {
	for _, supported := range i18n.GetSupportedLanguages() {
		if supported == lang {
			return true
		}
	}
	return false
}
