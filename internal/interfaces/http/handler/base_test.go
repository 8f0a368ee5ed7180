package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	payapp "github.com/marketplace/backend/internal/application/payment"
	"github.com/marketplace/backend/internal/domain/payment"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
	"github.com/marketplace/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveError(err error) *httptest.ResponseRecorder {
	h := &BaseHandler{}
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/test", func(c *gin.Context) { h.HandleError(c, err) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	return w
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"wrapped domain error", fmt.Errorf("load: %w", payment.ErrTransactionEnded), http.StatusBadRequest, dto.ErrCodeTransactionEnded},
		{"payments disabled", payment.ErrPaymentsDisabled, http.StatusServiceUnavailable, dto.ErrCodePaymentsDisabled},
		{"billing outage", errors.Join(payment.ErrBillingUnavailable, errors.New("dial tcp: refused")), http.StatusBadGateway, dto.ErrCodeBillingUnavailable},
		{"wrong pin", payment.ErrWrongPin, http.StatusBadRequest, dto.ErrCodeWrongPin},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveError(tt.err)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
			assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
		})
	}
}

func TestHandleError_PlainErrorsAreNotLeaked(t *testing.T) {
	w := serveError(errors.New("pq: password authentication failed"))
	assert.NotContains(t, w.Body.String(), "password")
}

func TestHandleError_RequestError(t *testing.T) {
	w := serveError(&payapp.RequestError{Err: payment.ErrInvalidPayRequest, IsSimulation: true})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeResponse(t, w)
	errInfo := body["error"].(map[string]any)
	assert.Equal(t, dto.ErrCodeInvalidPayRequest, errInfo["code"])
	assert.Equal(t, true, errInfo["is_simulation"])

	w = serveError(shared.ErrNotFound)
	errInfo = decodeResponse(t, w)["error"].(map[string]any)
	_, present := errInfo["is_simulation"]
	assert.False(t, present)
}

func TestFormError(t *testing.T) {
	h := &BaseHandler{}
	r := gin.New()
	r.GET("/test", func(c *gin.Context) {
		h.FormError(c, shared.NewDomainError("INVALID_REVIEW_FORM", "Review form is invalid"), gin.H{"version": "1.0"})
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeResponse(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "1.0", body["data"].(map[string]any)["version"])
	assert.Equal(t, dto.ErrCodeInvalidReviewForm, body["error"].(map[string]any)["code"])
}

func TestGetPage(t *testing.T) {
	for query, want := range map[string]int{"": 1, "page=3": 3, "page=0": 1, "page=-2": 1, "page=x": 1} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/?"+query, nil)
		assert.Equal(t, want, getPage(c), query)
	}
}
