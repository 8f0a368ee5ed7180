package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	payapp "github.com/marketplace/backend/internal/application/payment"
	"github.com/marketplace/backend/internal/domain/payment"
	"github.com/marketplace/backend/internal/infrastructure/auth"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
	"github.com/marketplace/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/text/language"
)

const buyerUUID = "buyer-7d3c"

func acceptBuyerToken(token string) (*auth.Claims, error) {
	if token != "good-token" {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{UserID: buyerUUID}, nil
}

// payRouter serves the lobby with sess standing in for the cookie session
func payRouter(svc PayService, sess *payment.Session) *gin.Engine {
	h := NewPayHandler(svc, acceptBuyerToken)
	r := gin.New()
	g := r.Group("/mozpay", func(c *gin.Context) {
		c.Set(middleware.PaySessionKey, sess)
		c.Set(middleware.LocaleKey, language.French)
		c.Next()
	})
	g.GET("/", h.Lobby)
	g.POST("/simulate", h.Simulate)
	g.GET("/fakepay", h.FakePay)
	g.GET("/fake-bango-url", h.FakeBangoURL)
	g.GET("/wait-to-start", h.WaitToStart)
	g.GET("/trans_start_url", h.TransStartURL)
	g.POST("/pin/verify", h.VerifyPin)
	g.POST("/auth/verify", h.VerifyBuyer)
	return r
}

func TestPayHandler_Lobby(t *testing.T) {
	t.Run("renders the view model", func(t *testing.T) {
		sess := &payment.Session{}
		svc := new(MockPayService)
		svc.On("Lobby", mock.Anything, sess, payapp.LobbyInput{Req: "a.b.c"}, language.French).
			Return(&payapp.Result{View: payapp.ViewLobby, Data: map[string]any{"title": "Saisissez votre code PIN"}}, nil)

		w := do(payRouter(svc, sess), http.MethodGet, "/mozpay/?req=a.b.c", nil, "")

		require.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w)["data"].(map[string]any)
		assert.Equal(t, payapp.ViewLobby, data["view"])
		assert.Equal(t, "Saisissez votre code PIN", data["data"].(map[string]any)["title"])
	})

	t.Run("follows redirects", func(t *testing.T) {
		svc := new(MockPayService)
		svc.On("Lobby", mock.Anything, mock.Anything, payapp.LobbyInput{}, language.French).
			Return(&payapp.Result{Redirect: payapp.PathWaitToStart}, nil)

		w := do(payRouter(svc, &payment.Session{}), http.MethodGet, "/mozpay/", nil, "")

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, payapp.PathWaitToStart, w.Header().Get("Location"))
	})

	t.Run("rejected simulation is flagged", func(t *testing.T) {
		svc := new(MockPayService)
		svc.On("Lobby", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, &payapp.RequestError{Err: payment.ErrInvalidURL, IsSimulation: true})

		w := do(payRouter(svc, &payment.Session{}), http.MethodGet, "/mozpay/?req=x", nil, "")

		require.Equal(t, http.StatusBadRequest, w.Code)
		errInfo := decodeResponse(t, w)["error"].(map[string]any)
		assert.Equal(t, dto.ErrCodeInvalidURL, errInfo["code"])
		assert.Equal(t, true, errInfo["is_simulation"])
	})

	t.Run("payments disabled", func(t *testing.T) {
		svc := new(MockPayService)
		svc.On("Lobby", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, &payapp.RequestError{Err: payment.ErrPaymentsDisabled})

		w := do(payRouter(svc, &payment.Session{}), http.MethodGet, "/mozpay/?req=x", nil, "")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "Payments are temporarily disabled.")
	})
}

func TestPayHandler_Simulate(t *testing.T) {
	sess := &payment.Session{}
	svc := new(MockPayService)
	svc.On("Simulate", mock.Anything, sess).Return(nil, payment.ErrNotSimulation)

	w := do(payRouter(svc, sess), http.MethodPost, "/mozpay/simulate", nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPayHandler_FakePages(t *testing.T) {
	sess := &payment.Session{UUID: buyerUUID}
	svc := new(MockPayService)
	svc.On("FakePay").Return(nil, payment.ErrFakePaymentsOff)
	svc.On("FakeBangoURL", sess, "1234").Return(&payapp.Result{View: payapp.ViewFakeBangoURL, Data: map[string]any{"bill_config_id": "1234"}}, nil)

	r := payRouter(svc, sess)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/mozpay/fakepay", nil, "").Code)

	w := do(r, http.MethodGet, "/mozpay/fake-bango-url?bcid=1234", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"bill_config_id":"1234"`)
}

func TestPayHandler_WaitToStart(t *testing.T) {
	svc := new(MockPayService)
	svc.On("WaitToStart", mock.Anything, mock.Anything).
		Return(&payapp.Result{Redirect: "https://mp.bango.test/pay/?bcid=987"}, nil).Once()
	svc.On("WaitToStart", mock.Anything, mock.Anything).
		Return(nil, errors.Join(payment.ErrBillingUnavailable, context.DeadlineExceeded)).Once()

	r := payRouter(svc, &payment.Session{UUID: buyerUUID})
	w := do(r, http.MethodGet, "/mozpay/wait-to-start", nil, "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://mp.bango.test/pay/?bcid=987", w.Header().Get("Location"))

	w = do(r, http.MethodGet, "/mozpay/wait-to-start", nil, "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, dto.ErrCodeBillingUnavailable, errorCode(t, w))
}

func TestPayHandler_TransStartURL(t *testing.T) {
	status := payment.StatusPending
	u := "https://mp.bango.test/pay/?bcid=987"
	svc := new(MockPayService)
	svc.On("TransStartURL", mock.Anything, mock.Anything).Return(&payapp.TransStartView{URL: &u, Status: &status}, nil)

	w := do(payRouter(svc, &payment.Session{UUID: buyerUUID}), http.MethodGet, "/mozpay/trans_start_url", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]any)
	assert.Equal(t, u, data["url"])
	assert.Equal(t, float64(0), data["status"])
}

func TestPayHandler_VerifyPin(t *testing.T) {
	svc := new(MockPayService)
	svc.On("VerifyPin", mock.Anything, mock.Anything, payapp.PinForm{Pin: "1234"}).
		Return(&payapp.Result{Redirect: payapp.PathFakePay}, nil)
	svc.On("VerifyPin", mock.Anything, mock.Anything, payapp.PinForm{Pin: "0000"}).
		Return(nil, payment.ErrWrongPin)

	r := payRouter(svc, &payment.Session{UUID: buyerUUID})
	w := do(r, http.MethodPost, "/mozpay/pin/verify", strings.NewReader(url.Values{"pin": {"1234"}}.Encode()), "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, payapp.PathFakePay, w.Header().Get("Location"))

	w = do(r, http.MethodPost, "/mozpay/pin/verify", strings.NewReader(url.Values{"pin": {"0000"}}.Encode()), "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeWrongPin, errorCode(t, w))
}

func TestPayHandler_VerifyBuyer(t *testing.T) {
	sess := &payment.Session{}
	svc := new(MockPayService)
	svc.On("VerifyBuyer", mock.Anything, sess, buyerUUID).
		Return(&payapp.BuyerView{UUID: buyerUUID, HasPin: true}, nil)

	r := payRouter(svc, sess)

	t.Run("token in the body", func(t *testing.T) {
		w := do(r, http.MethodPost, "/mozpay/auth/verify", strings.NewReader(`{"token":"good-token"}`), "application/json")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, buyerUUID, decodeResponse(t, w)["data"].(map[string]any)["uuid"])
	})

	t.Run("token in the header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/mozpay/auth/verify", nil)
		req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+"good-token")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("bad or missing token", func(t *testing.T) {
		w := do(r, http.MethodPost, "/mozpay/auth/verify", strings.NewReader(`{"token":"forged"}`), "application/json")
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = do(r, http.MethodPost, "/mozpay/auth/verify", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	svc.AssertNumberOfCalls(t, "VerifyBuyer", 2)
}

func TestPayHandler_VerifyBuyer_MalformedBody(t *testing.T) {
	sess := &payment.Session{}
	svc := new(MockPayService)
	svc.On("VerifyBuyer", mock.Anything, sess, buyerUUID).
		Return(&payapp.BuyerView{UUID: buyerUUID}, nil)

	core, recorded := observer.New(zapcore.DebugLevel)
	h := NewPayHandler(svc, acceptBuyerToken)
	r := gin.New()
	r.POST("/mozpay/auth/verify", func(c *gin.Context) {
		c.Set("logger", zap.New(core))
		c.Set(middleware.PaySessionKey, sess)
		c.Next()
	}, h.VerifyBuyer)

	t.Run("falls back to the header and logs the bind error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/mozpay/auth/verify", strings.NewReader(`{"token":`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+"good-token")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		entries := recorded.FilterMessageSnippet("buyer verify body ignored").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
		assert.Contains(t, entries[0].ContextMap(), "error")
	})

	t.Run("malformed body without a header is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/mozpay/auth/verify", strings.NewReader(`{"token":`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("empty body is not bound", func(t *testing.T) {
		before := recorded.Len()
		req := httptest.NewRequest(http.MethodPost, "/mozpay/auth/verify", nil)
		req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+"good-token")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, before, recorded.Len())
	})
}
