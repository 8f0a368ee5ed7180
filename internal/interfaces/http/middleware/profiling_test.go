package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRouteArea(t *testing.T) {
	tests := map[string]string{
		"/api/v1/editors/queue/:tab": "editors",
		"/api/v1/mozpay/":            "mozpay",
		"/health":                    "health",
		"/":                          "",
	}
	for route, want := range tests {
		assert.Equal(t, want, routeArea(route), route)
	}
}

func TestProfiling(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		reached := false
		router := gin.New()
		router.Use(Profiling(enabled))
		router.GET("/api/v1/editors/", func(c *gin.Context) {
			reached = true
			c.Status(http.StatusOK)
		})
		router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/editors/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, reached)

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
