package payment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Keys every verified pay request must carry, in dotted notation.
var RequiredRequestKeys = []string{
	"request.id",
	"request.pricePoint",
	"request.name",
	"request.description",
	"request.postbackURL",
	"request.chargebackURL",
}

// Simulation results an app may ask for.
const (
	SimulatePostback   = "postback"
	SimulateChargeback = "chargeback"
)

// PricePoint is a price tier id. Apps send it either as a number or a string.
type PricePoint string

// UnmarshalJSON accepts both JSON numbers and strings.
func (p *PricePoint) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = PricePoint(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("pricePoint must be a number or string: %w", err)
	}
	*p = PricePoint(n.String())
	return nil
}

// Simulation asks for a fake payment result instead of a real charge.
type Simulation struct {
	Result string `json:"result"`
	Reason string `json:"reason,omitempty"`
}

// Validate checks the simulation result and reason
func (s *Simulation) Validate() error {
	switch s.Result {
	case SimulatePostback:
		return nil
	case SimulateChargeback:
		if s.Reason == "" {
			return fmt.Errorf("simulated chargebacks require a reason")
		}
		return nil
	default:
		return fmt.Errorf("unknown simulation result %q", s.Result)
	}
}

// RequestDetails is the product an app wants the buyer to pay for.
type RequestDetails struct {
	ID            string      `json:"id"`
	PricePoint    PricePoint  `json:"pricePoint"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	PostbackURL   string      `json:"postbackURL"`
	ChargebackURL string      `json:"chargebackURL"`
	ProductData   string      `json:"productData,omitempty"`
	DefaultLocale string      `json:"defaultLocale,omitempty"`
	Simulate      *Simulation `json:"simulate,omitempty"`
}

// PayRequest is a verified payment request JWT payload.
type PayRequest struct {
	Issuer    string         `json:"iss"`
	Audience  string         `json:"aud"`
	Type      string         `json:"typ"`
	IssuedAt  int64          `json:"iat"`
	ExpiresAt int64          `json:"exp"`
	Request   RequestDetails `json:"request"`
}

// Notes is the verified request kept in the buyer's session.
type Notes struct {
	PayRequest PayRequest `json:"pay_request"`
	IssuerKey  string     `json:"issuer_key"`
}

// Session is the buyer's server-side payment state.
type Session struct {
	IsSimulation      bool       `json:"is_simulation"`
	Notes             *Notes     `json:"notes,omitempty"`
	TransID           string     `json:"trans_id,omitempty"`
	UUID              string     `json:"uuid,omitempty"`
	UUIDNeedsPinReset bool       `json:"uuid_needs_pin_reset,omitempty"`
	LastPinSuccess    *time.Time `json:"last_pin_success,omitempty"`
}

// IsVerified reports whether a buyer identity is attached to the session.
func (s *Session) IsVerified() bool {
	return s.UUID != ""
}

// PinRecentlyEntered reports whether the PIN was entered within window.
func (s *Session) PinRecentlyEntered(now time.Time, window time.Duration) bool {
	if s.LastPinSuccess == nil {
		return false
	}
	return now.Sub(*s.LastPinSuccess) < window
}

// SimulateRequest returns the simulation of the stored request, if any.
func (s *Session) SimulateRequest() *Simulation {
	if s.Notes == nil {
		return nil
	}
	return s.Notes.PayRequest.Request.Simulate
}

// TransactionIDPrefix prefixes every transaction id this service creates.
const TransactionIDPrefix = "webpay:"

// FormatPricePoint renders an integer tier id as a PricePoint.
func FormatPricePoint(n int) PricePoint {
	return PricePoint(strconv.Itoa(n))
}
