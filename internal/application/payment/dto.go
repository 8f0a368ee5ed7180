package payment

import (
	"github.com/marketplace/backend/internal/domain/payment"
)

// Views rendered by the pay flow
const (
	ViewLobby        = "pay/lobby"
	ViewSimulate     = "pay/simulate"
	ViewSimulateDone = "pay/simulate_done"
	ViewFakePay      = "pay/fakepay"
	ViewFakeBangoURL = "pay/fake-bango-url"
	ViewWaitToStart  = "pay/wait-to-start"
)

// Pay flow paths the lobby links or redirects to
const (
	PathPinVerify   = "/mozpay/pin/verify"
	PathFakePay     = "/mozpay/fakepay"
	PathWaitToStart = "/mozpay/wait-to-start"
)

// Result is either a view to render or a location to redirect to
type Result struct {
	View     string         `json:"view,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	Redirect string         `json:"-"`
}

func view(name string, data map[string]any) *Result {
	if data == nil {
		data = map[string]any{}
	}
	return &Result{View: name, Data: data}
}

func redirect(location string) *Result {
	return &Result{Redirect: location}
}

// LobbyInput is the lobby query
type LobbyInput struct {
	Req string `form:"req"`
}

// PinForm is the submitted buyer PIN
type PinForm struct {
	Pin string `form:"pin" json:"pin" validate:"required,len=4,numeric"`
}

// TransStartView is polled by the wait page until the payment URL is known
type TransStartView struct {
	URL    *string                    `json:"url"`
	Status *payment.TransactionStatus `json:"status"`
}

// BuyerView describes the buyer attached to the session
type BuyerView struct {
	UUID          string `json:"uuid"`
	HasPin        bool   `json:"pin"`
	NeedsPinReset bool   `json:"needs_pin_reset"`
}

// RequestError is a rejected pay request, remembering whether it was a
// simulation so the error page can say so.
type RequestError struct {
	Err          error
	IsSimulation bool
}

func (e *RequestError) Error() string { return e.Err.Error() }

func (e *RequestError) Unwrap() error { return e.Err }
