package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the counters for the review queue and pay lobby.
// A nil *AppMetrics records nothing.
type AppMetrics struct {
	reviewsProcessed  metric.Int64Counter
	moderationActions metric.Int64Counter
	payRequests       metric.Int64Counter
	transactions      metric.Int64Counter
	pinVerifications  metric.Int64Counter
	noticeDeliveries  metric.Int64Counter
}

// NewAppMetrics creates the instruments on meter
func NewAppMetrics(meter metric.Meter) (*AppMetrics, error) {
	m := &AppMetrics{}
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.reviewsProcessed, "editors.reviews.processed", "Review decisions recorded by editors"},
		{&m.moderationActions, "editors.moderation.actions", "Moderation actions applied to user reviews"},
		{&m.payRequests, "payment.requests", "Pay requests received by the lobby"},
		{&m.transactions, "payment.transactions.started", "Transactions started with the billing service"},
		{&m.pinVerifications, "payment.pin.verifications", "PIN verification attempts"},
		{&m.noticeDeliveries, "payment.notices.delivered", "Simulated postback and chargeback deliveries"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit("{count}"))
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}
	return m, nil
}

// RecordReviewProcessed counts one review decision
func (m *AppMetrics) RecordReviewProcessed(ctx context.Context, action, reviewType string) {
	if m == nil {
		return
	}
	m.reviewsProcessed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("review_type", reviewType),
	))
}

// RecordModeration counts n moderation actions of one kind
func (m *AppMetrics) RecordModeration(ctx context.Context, action string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.moderationActions.Add(ctx, int64(n), metric.WithAttributes(attribute.String("action", action)))
}

// RecordPayRequest counts a pay request by outcome (accepted, rejected, simulated)
func (m *AppMetrics) RecordPayRequest(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.payRequests.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *AppMetrics) RecordTransactionStart(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.transactions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *AppMetrics) RecordPinVerification(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.pinVerifications.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *AppMetrics) RecordNoticeDelivery(ctx context.Context, noticeType, outcome string) {
	if m == nil {
		return
	}
	m.noticeDeliveries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("notice_type", noticeType),
		attribute.String("outcome", outcome),
	))
}
