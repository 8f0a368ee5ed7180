package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/marketplace/backend/internal/domain/payment"
)

// UnverifiedRequest is what can be read from a pay request before its
// signature is checked: enough to pick the secret and detect simulations.
type UnverifiedRequest struct {
	Issuer   string
	Simulate *payment.Simulation
}

// DecodeUnverified reads a pay request JWT without checking its signature.
func DecodeUnverified(raw string) (*UnverifiedRequest, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("error decoding JWT: %w", err)
	}

	iss, _ := claims["iss"].(string)
	out := &UnverifiedRequest{Issuer: iss}

	request, _ := claims["request"].(map[string]any)
	if sim, ok := request["simulate"]; ok && sim != nil {
		var s payment.Simulation
		if err := remarshal(sim, &s); err != nil {
			return nil, fmt.Errorf("invalid simulate object: %w", err)
		}
		out.Simulate = &s
	}
	return out, nil
}

// PayRequestVerifier checks signed pay requests addressed to this service
type PayRequestVerifier struct {
	audience     string
	requiredKeys []string
	now          func() time.Time
}

// NewPayRequestVerifier creates a verifier for requests whose audience is domain
func NewPayRequestVerifier(domain string) *PayRequestVerifier {
	return &PayRequestVerifier{
		audience:     domain,
		requiredKeys: payment.RequiredRequestKeys,
		now:          time.Now,
	}
}

// Verify checks signature, audience, expiry, iat and the required keys,
// returning payment.ErrRequestExpired or payment.ErrInvalidPayRequest.
func (v *PayRequestVerifier) Verify(raw, secret string) (*payment.PayRequest, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(v.audience),
		jwt.WithTimeFunc(v.now),
	)
	_, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, payment.ErrRequestExpired
		}
		return nil, payment.ErrInvalidPayRequest.WithMessage("JWT verification failed: " + err.Error())
	}

	iat, ok := claims["iat"].(float64)
	if !ok {
		return nil, payment.ErrInvalidPayRequest.WithMessage("JWT is missing a numeric iat")
	}
	for _, key := range v.requiredKeys {
		if !hasKey(claims, key) {
			return nil, payment.ErrInvalidPayRequest.WithMessage("JWT is missing required key: " + key)
		}
	}

	var details payment.RequestDetails
	if err := remarshal(claims["request"], &details); err != nil {
		return nil, payment.ErrInvalidPayRequest.WithMessage("invalid request object: " + err.Error())
	}

	req := &payment.PayRequest{IssuedAt: int64(iat), Request: details}
	req.Issuer, _ = claims["iss"].(string)
	req.Type, _ = claims["typ"].(string)
	req.Audience = v.audience
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		req.ExpiresAt = exp.Unix()
	}
	return req, nil
}

// hasKey looks up a dotted path such as "request.id".
func hasKey(claims map[string]any, path string) bool {
	var cur any = claims
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return false
		}
		cur, ok = m[part]
		if !ok || cur == nil {
			return false
		}
	}
	return true
}

func remarshal(in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
