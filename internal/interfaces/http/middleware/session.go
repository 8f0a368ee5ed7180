package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/payment"
	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// PaySessionKey is the gin context key of the buyer's payment session
const PaySessionKey = "pay_session"

// SessionStore loads and saves payment sessions
type SessionStore interface {
	Load(ctx context.Context, id string) (*payment.Session, error)
	Save(ctx context.Context, id string, sess *payment.Session) error
}

// PaySession loads the buyer's session from the cookie, issuing a new
// cookie when there is none, and saves the session after the handler ran.
func PaySession(store SessionStore, cookie config.CookieConfig, log *zap.Logger) gin.HandlerFunc {
	sameSite := parseSameSite(cookie.SameSite)
	maxAge := int(cookie.MaxAge.Seconds())

	return func(c *gin.Context) {
		id, err := c.Cookie(cookie.Name)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
		}
		// Set before the handler writes the response.
		c.SetSameSite(sameSite)
		c.SetCookie(cookie.Name, id, maxAge, cookie.Path, cookie.Domain, cookie.Secure, true)

		sess, err := store.Load(c.Request.Context(), id)
		if err != nil {
			log.Error("failed to load pay session", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeServiceUnavailable, "Session store unavailable", GetRequestID(c)))
			return
		}
		c.Set(PaySessionKey, sess)

		c.Next()

		if err := store.Save(c.Request.Context(), id, sess); err != nil {
			log.Error("failed to save pay session", zap.Error(err))
		}
	}
}

// GetPaySession returns the session loaded by PaySession
func GetPaySession(c *gin.Context) *payment.Session {
	if v, ok := c.Get(PaySessionKey); ok {
		if sess, ok := v.(*payment.Session); ok {
			return sess
		}
	}
	return &payment.Session{}
}

func parseSameSite(mode string) http.SameSite {
	switch strings.ToLower(mode) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
