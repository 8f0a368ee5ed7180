// Package urlcheck validates the notification URLs apps send with pay requests.
package urlcheck

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/marketplace/backend/internal/domain/payment"
)

// Verifier implements payment.URLVerifier
type Verifier struct {
	http      *resty.Client
	reachable bool
}

// NewVerifier creates a verifier. With checkReachable set, every URL of a
// real payment must also answer a HEAD request within timeout.
func NewVerifier(checkReachable bool, timeout time.Duration) *Verifier {
	return &Verifier{
		http:      resty.New().SetTimeout(timeout).SetRedirectPolicy(resty.FlexibleRedirectPolicy(3)),
		reachable: checkReachable,
	}
}

// Verify checks every URL. Simulations may leave URLs empty and are never
// probed over the network.
func (v *Verifier) Verify(ctx context.Context, isSimulation bool, urls ...string) error {
	for _, raw := range urls {
		if raw == "" && isSimulation {
			continue
		}
		if err := checkFormat(raw); err != nil {
			return err
		}
		if v.reachable && !isSimulation {
			if err := v.checkReachable(ctx, raw); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkFormat(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return payment.ErrInvalidURL.WithMessage(fmt.Sprintf("URL %q is not valid: %v", raw, err))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return payment.ErrInvalidURL.WithMessage(fmt.Sprintf("URL %q must use http or https", raw))
	}
	if u.Host == "" {
		return payment.ErrInvalidURL.WithMessage(fmt.Sprintf("URL %q has no host", raw))
	}
	return nil
}

func (v *Verifier) checkReachable(ctx context.Context, raw string) error {
	resp, err := v.http.R().SetContext(ctx).Head(raw)
	if err != nil {
		return payment.ErrInvalidURL.WithMessage(fmt.Sprintf("URL %q is not reachable: %v", raw, err))
	}
	if resp.IsError() {
		return payment.ErrInvalidURL.WithMessage(fmt.Sprintf("URL %q answered HTTP %d", raw, resp.StatusCode()))
	}
	return nil
}

var _ payment.URLVerifier = (*Verifier)(nil)
