package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/marketplace/backend/internal/infrastructure/i18n"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestLocale(t *testing.T) {
	var got language.Tag
	router := gin.New()
	router.Use(Locale(i18n.NewTranslator()))
	router.GET("/test", func(c *gin.Context) {
		got = GetLocale(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Accept-Language", "fr-CA,fr;q=0.9,en;q=0.5")
	router.ServeHTTP(httptest.NewRecorder(), req)
	base, _ := got.Base()
	assert.Equal(t, "fr", base.String())

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))
	base, _ = got.Base()
	assert.Equal(t, "en", base.String())
}

func TestGetLocale_Default(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, language.English, GetLocale(c))
}
