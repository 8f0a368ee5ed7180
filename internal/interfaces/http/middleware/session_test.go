package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/marketplace/backend/internal/domain/payment"
	"github.com/marketplace/backend/internal/infrastructure/cache"
	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/marketplace/backend/internal/infrastructure/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testCookie = config.CookieConfig{
	Name:     "webpay_session",
	Path:     "/",
	SameSite: "strict",
	MaxAge:   time.Hour,
}

type failingSessionStore struct{}

func (failingSessionStore) Load(context.Context, string) (*payment.Session, error) {
	return nil, errors.New("redis down")
}

func (failingSessionStore) Save(context.Context, string, *payment.Session) error { return nil }

func TestPaySession(t *testing.T) {
	mem := cache.NewInMemoryStore()
	defer mem.Close()
	store := session.NewStore(mem, time.Hour)

	router := gin.New()
	router.Use(PaySession(store, testCookie, zap.NewNop()))
	router.POST("/lobby", func(c *gin.Context) {
		GetPaySession(c).TransID = "webpay:abc"
		c.Status(http.StatusOK)
	})
	router.GET("/wait", func(c *gin.Context) {
		c.String(http.StatusOK, GetPaySession(c).TransID)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/lobby", nil))
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, "webpay_session", cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, 3600, cookie.MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/wait", nil)
	req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "webpay:abc", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/wait", nil)
	req.AddCookie(&http.Cookie{Name: cookie.Name, Value: "../not-a-uuid"})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Empty(t, w.Body.String(), "a forged id starts a fresh session")
	assert.NotEqual(t, "../not-a-uuid", w.Result().Cookies()[0].Value)
}

func TestPaySession_StoreUnavailable(t *testing.T) {
	w := httptest.NewRecorder()
	okRouter(PaySession(failingSessionStore{}, testCookie, zap.NewNop())).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_SERVICE_UNAVAILABLE")
}

func TestParseSameSite(t *testing.T) {
	assert.Equal(t, http.SameSiteStrictMode, parseSameSite("Strict"))
	assert.Equal(t, http.SameSiteNoneMode, parseSameSite("none"))
	assert.Equal(t, http.SameSiteLaxMode, parseSameSite(""))
}
