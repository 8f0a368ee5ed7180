package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/marketplace/backend/internal/domain/payment"
)

// Notice types posted back to apps.
const (
	NoticeTypePostback   = "mozilla/payments/pay/postback/v1"
	NoticeTypeChargeback = "mozilla/payments/pay/chargeback/v1"
)

// NoticeResponse is the outcome part of a payment notice.
type NoticeResponse struct {
	TransactionID string `json:"transactionID"`
	Reason        string `json:"reason,omitempty"`
}

// noticeClaims sends aud as a single string, the form apps compare against
// their key. The outer aud field shadows the array-encoded one of
// RegisteredClaims.
type noticeClaims struct {
	jwt.RegisteredClaims
	Audience string                 `json:"aud"`
	Type     string                 `json:"typ"`
	Request  payment.RequestDetails `json:"request"`
	Response NoticeResponse         `json:"response"`
}

// NoticeSigner builds the signed notices sent to app postback URLs
type NoticeSigner struct {
	issuer     string
	expiration time.Duration
	now        func() time.Time
}

// NewNoticeSigner creates a signer whose notices are issued by domain
func NewNoticeSigner(domain string, expiration time.Duration) *NoticeSigner {
	return &NoticeSigner{issuer: domain, expiration: expiration, now: time.Now}
}

// Sign creates the notice for a simulated result of the pay request,
// addressed to issuerKey and signed with its secret.
func (s *NoticeSigner) Sign(issuerKey, secret string, req payment.PayRequest, transID string, sim payment.Simulation) (string, error) {
	typ := NoticeTypePostback
	response := NoticeResponse{TransactionID: transID}
	if sim.Result == payment.SimulateChargeback {
		typ = NoticeTypeChargeback
		response.Reason = sim.Reason
	}

	now := s.now()
	claims := noticeClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
		},
		Audience: issuerKey,
		Type:     typ,
		Request:  req.Request,
		Response: response,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
