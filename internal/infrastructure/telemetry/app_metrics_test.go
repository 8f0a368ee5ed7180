package telemetry_test

import (
	"context"
	"testing"

	"github.com/marketplace/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumFor(t *testing.T, m metricdata.Metrics, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)

	want := attribute.NewSet(attrs...)
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Equals(&want) {
			return dp.Value
		}
	}
	return 0
}

func TestAppMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := telemetry.NewAppMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordReviewProcessed(ctx, "public", "nominated")
	m.RecordReviewProcessed(ctx, "public", "nominated")
	m.RecordReviewProcessed(ctx, "reject", "pending")
	m.RecordModeration(ctx, "delete", 2)
	m.RecordModeration(ctx, "keep", 0)
	m.RecordPayRequest(ctx, "accepted")
	m.RecordTransactionStart(ctx, "errored")
	m.RecordPinVerification(ctx, "locked")
	m.RecordNoticeDelivery(ctx, "postback", "acknowledged")

	got := collect(t, reader)
	assert.Equal(t, int64(2), sumFor(t, got["editors.reviews.processed"],
		attribute.String("action", "public"), attribute.String("review_type", "nominated")))
	assert.Equal(t, int64(1), sumFor(t, got["editors.reviews.processed"],
		attribute.String("action", "reject"), attribute.String("review_type", "pending")))
	assert.Equal(t, int64(2), sumFor(t, got["editors.moderation.actions"], attribute.String("action", "delete")))
	assert.Zero(t, sumFor(t, got["editors.moderation.actions"], attribute.String("action", "keep")))
	assert.Equal(t, int64(1), sumFor(t, got["payment.requests"], attribute.String("outcome", "accepted")))
	assert.Equal(t, int64(1), sumFor(t, got["payment.transactions.started"], attribute.String("outcome", "errored")))
	assert.Equal(t, int64(1), sumFor(t, got["payment.pin.verifications"], attribute.String("outcome", "locked")))
	assert.Equal(t, int64(1), sumFor(t, got["payment.notices.delivered"],
		attribute.String("notice_type", "postback"), attribute.String("outcome", "acknowledged")))
}

func TestAppMetrics_NilIsNoop(t *testing.T) {
	var m *telemetry.AppMetrics
	assert.NotPanics(t, func() {
		m.RecordReviewProcessed(context.Background(), "public", "nominated")
		m.RecordNoticeDelivery(context.Background(), "chargeback", "failed")
	})
}

func TestRegisterDBPoolMetrics(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	require.NoError(t, telemetry.RegisterDBPoolMetrics(db, mp.Meter("test")))
	require.NoError(t, db.Exec("SELECT 1").Error)

	got := collect(t, reader)
	assert.Contains(t, got, "db.pool.open_connections")
	assert.Contains(t, got, "db.pool.idle")
	assert.Contains(t, got, "db.pool.wait_count")
}
