package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	payapp "github.com/marketplace/backend/internal/application/payment"
	"github.com/marketplace/backend/internal/domain/payment"
	"github.com/marketplace/backend/internal/infrastructure/logger"
	"github.com/marketplace/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// PayService is the payment lobby use case layer
type PayService interface {
	Lobby(ctx context.Context, sess *payment.Session, in payapp.LobbyInput, lang language.Tag) (*payapp.Result, error)
	Simulate(ctx context.Context, sess *payment.Session) (*payapp.Result, error)
	FakePay() (*payapp.Result, error)
	FakeBangoURL(sess *payment.Session, billConfigID string) (*payapp.Result, error)
	WaitToStart(ctx context.Context, sess *payment.Session) (*payapp.Result, error)
	TransStartURL(ctx context.Context, sess *payment.Session) (*payapp.TransStartView, error)
	VerifyPin(ctx context.Context, sess *payment.Session, form payapp.PinForm) (*payapp.Result, error)
	VerifyBuyer(ctx context.Context, sess *payment.Session, buyerUUID string) (*payapp.BuyerView, error)
}

// PayHandler serves the payment lobby. Every route runs behind the
// PaySession middleware.
type PayHandler struct {
	BaseHandler
	service       PayService
	validateBuyer middleware.TokenValidator
}

// NewPayHandler creates a new PayHandler. validateBuyer checks the
// platform's buyer tokens.
func NewPayHandler(service PayService, validateBuyer middleware.TokenValidator) *PayHandler {
	return &PayHandler{service: service, validateBuyer: validateBuyer}
}

// BuyerVerifyRequest carries a buyer token
// @Description Buyer token issued by the platform
type BuyerVerifyRequest struct {
	Token string `json:"token" form:"token"`
}

// respond sends a view model or follows the result's redirect
func (h *PayHandler) respond(c *gin.Context, res *payapp.Result, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if res.Redirect != "" {
		h.Redirect(c, res.Redirect)
		return
	}
	h.Success(c, res)
}

// Lobby godoc
// @ID           getPayLobby
// @Summary      Payment lobby
// @Description  Starts a payment from a signed pay request, or resumes the session's payment
// @Tags         pay
// @Produce      json
// @Param        req query string false "Signed pay request (JWT)"
// @Success      200 {object} APIResponse[payapp.Result]
// @Success      302
// @Failure      400 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Router       /mozpay/ [get]
func (h *PayHandler) Lobby(c *gin.Context) {
	var in payapp.LobbyInput
	if err := c.ShouldBindQuery(&in); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	res, err := h.service.Lobby(c.Request.Context(), middleware.GetPaySession(c), in, middleware.GetLocale(c))
	h.respond(c, res, err)
}

// Simulate godoc
// @ID           simulatePayment
// @Summary      Run a simulated payment
// @Description  Sends the simulated postback or chargeback of the session's pay request
// @Tags         pay
// @Produce      json
// @Success      200 {object} APIResponse[payapp.Result]
// @Failure      403 {object} ErrorResponse
// @Router       /mozpay/simulate [post]
func (h *PayHandler) Simulate(c *gin.Context) {
	res, err := h.service.Simulate(c.Request.Context(), middleware.GetPaySession(c))
	h.respond(c, res, err)
}

// FakePay godoc
// @ID           getFakePay
// @Summary      Fake payment page
// @Tags         pay
// @Produce      json
// @Success      200 {object} APIResponse[payapp.Result]
// @Failure      403 {object} ErrorResponse
// @Router       /mozpay/fakepay [get]
func (h *PayHandler) FakePay(c *gin.Context) {
	res, err := h.service.FakePay()
	h.respond(c, res, err)
}

// FakeBangoURL godoc
// @ID           getFakeBangoURL
// @Summary      Stand-in for the payment provider page
// @Tags         pay
// @Produce      json
// @Param        bcid query string true "Billing configuration id"
// @Success      200 {object} APIResponse[payapp.Result]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /mozpay/fake-bango-url [get]
func (h *PayHandler) FakeBangoURL(c *gin.Context) {
	res, err := h.service.FakeBangoURL(middleware.GetPaySession(c), c.Query("bcid"))
	h.respond(c, res, err)
}

// WaitToStart godoc
// @ID           getPayWaitToStart
// @Summary      Wait for the transaction
// @Description  Redirects to the provider once the transaction is pending, renders the polling page until then
// @Tags         pay
// @Produce      json
// @Success      200 {object} APIResponse[payapp.Result]
// @Success      302
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /mozpay/wait-to-start [get]
func (h *PayHandler) WaitToStart(c *gin.Context) {
	res, err := h.service.WaitToStart(c.Request.Context(), middleware.GetPaySession(c))
	h.respond(c, res, err)
}

// TransStartURL godoc
// @ID           getPayTransStartURL
// @Summary      Transaction start URL
// @Description  Transaction status and, once pending, the provider URL
// @Tags         pay
// @Produce      json
// @Success      200 {object} APIResponse[payapp.TransStartView]
// @Failure      403 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /mozpay/trans_start_url [get]
func (h *PayHandler) TransStartURL(c *gin.Context) {
	view, err := h.service.TransStartURL(c.Request.Context(), middleware.GetPaySession(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// VerifyPin godoc
// @ID           verifyPayPin
// @Summary      Verify the buyer's PIN
// @Tags         pay
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        pin formData string true "4 digit PIN"
// @Success      302
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /mozpay/pin/verify [post]
func (h *PayHandler) VerifyPin(c *gin.Context) {
	var form payapp.PinForm
	if err := c.ShouldBind(&form); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	res, err := h.service.VerifyPin(c.Request.Context(), middleware.GetPaySession(c), form)
	h.respond(c, res, err)
}

// VerifyBuyer godoc
// @ID           verifyPayBuyer
// @Summary      Attach a buyer to the session
// @Description  Accepts a buyer token from the request body or the Authorization header
// @Tags         pay
// @Accept       json
// @Produce      json
// @Param        request body BuyerVerifyRequest false "Buyer token"
// @Success      200 {object} APIResponse[payapp.BuyerView]
// @Failure      401 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /mozpay/auth/verify [post]
func (h *PayHandler) VerifyBuyer(c *gin.Context) {
	var token string
	if c.Request.ContentLength != 0 {
		var req BuyerVerifyRequest
		if err := c.ShouldBind(&req); err != nil {
			logger.GetGinLogger(c).Debug("buyer verify body ignored, using Authorization header", zap.Error(err))
		}
		token = req.Token
	}
	if token == "" {
		token = strings.TrimSpace(strings.TrimPrefix(c.GetHeader(middleware.AuthHeaderKey), middleware.BearerPrefix))
	}
	if token == "" {
		h.Unauthorized(c, "Buyer token required")
		return
	}

	claims, err := h.validateBuyer(token)
	if err != nil {
		logger.GetGinLogger(c).Warn("buyer token rejected", zap.Error(err))
		h.Unauthorized(c, "Invalid buyer token")
		return
	}

	view, err := h.service.VerifyBuyer(c.Request.Context(), middleware.GetPaySession(c), claims.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}
