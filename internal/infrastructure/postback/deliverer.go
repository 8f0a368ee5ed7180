// Package postback delivers signed payment notices to app postback and
// chargeback URLs.
package postback

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrNotAcknowledged is returned when the app did not echo the transaction id.
var ErrNotAcknowledged = errors.New("notice not acknowledged")

// Deliverer posts notices with retries
type Deliverer struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewDeliverer creates a deliverer that retries failed deliveries up to retries times
func NewDeliverer(retries int, timeout time.Duration, logger *zap.Logger) *Deliverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deliverer{
		http: resty.New().
			SetTimeout(timeout).
			SetRetryCount(retries).
			SetRetryWaitTime(200 * time.Millisecond).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				return err != nil || r.StatusCode() >= http.StatusInternalServerError
			}),
		logger: logger.Named("postback"),
	}
}

// Deliver posts the notice as form field "notice". The app acknowledges a
// notice by answering with the transaction id as the whole body.
func (d *Deliverer) Deliver(ctx context.Context, target, notice, transID string) error {
	resp, err := d.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{"notice": notice}).
		Post(target)
	if err != nil {
		return fmt.Errorf("post notice to %s: %w", target, err)
	}
	if resp.IsError() {
		return fmt.Errorf("post notice to %s: HTTP %d", target, resp.StatusCode())
	}

	body := strings.TrimSpace(resp.String())
	if body != transID {
		d.logger.Warn("Notice not acknowledged",
			zap.String("url", target),
			zap.String("trans_id", transID),
			zap.String("body", truncate(body, 200)))
		return fmt.Errorf("%w: expected %q", ErrNotAcknowledged, transID)
	}

	d.logger.Info("Notice delivered", zap.String("url", target), zap.String("trans_id", transID))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
