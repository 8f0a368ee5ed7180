package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

// LocaleKey is the gin context key of the negotiated language
const LocaleKey = "locale"

// LanguageMatcher picks a supported language for an Accept-Language header
type LanguageMatcher interface {
	Match(acceptLanguage string) language.Tag
}

// Locale negotiates the response language
func Locale(m LanguageMatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(LocaleKey, m.Match(c.GetHeader("Accept-Language")))
		c.Next()
	}
}

// GetLocale returns the negotiated language, English when none was set
func GetLocale(c *gin.Context) language.Tag {
	if v, ok := c.Get(LocaleKey); ok {
		if tag, ok := v.(language.Tag); ok {
			return tag
		}
	}
	return language.English
}
