package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type queryStartKey struct{}

// RegisterDBTracing installs the otelgorm plugin plus a slow query marker
// on db. It is a no-op when database tracing is disabled.
func RegisterDBTracing(db *gorm.DB, cfg config.TelemetryConfig, dbName string, logger *zap.Logger) error {
	if !cfg.DBTraceEnabled {
		logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(dbName)}
	if !cfg.DBLogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("failed to register otelgorm plugin: %w", err)
	}

	if cfg.DBSlowQueryThresh > 0 {
		if err := registerSlowQueryCallbacks(db, cfg.DBSlowQueryThresh, logger); err != nil {
			return fmt.Errorf("failed to register slow query callbacks: %w", err)
		}
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.DBLogFullSQL),
		zap.Duration("slow_query_threshold", cfg.DBSlowQueryThresh),
		zap.String("db_name", dbName),
	)
	return nil
}

func registerSlowQueryCallbacks(db *gorm.DB, threshold time.Duration, logger *zap.Logger) error {
	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) {
		if tx.Statement.Context == nil {
			return
		}
		start, ok := tx.Statement.Context.Value(queryStartKey{}).(time.Time)
		if !ok {
			return
		}
		elapsed := time.Since(start)
		if elapsed < threshold {
			return
		}
		span := trace.SpanFromContext(tx.Statement.Context)
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.duration_ms", elapsed.Milliseconds()),
		)
		if tx.Error != nil && tx.Error != gorm.ErrRecordNotFound {
			span.SetStatus(codes.Error, tx.Error.Error())
		}
		logger.Warn("Slow query detected",
			zap.String("table", tx.Statement.Table),
			zap.Duration("elapsed", elapsed),
			zap.Duration("threshold", threshold),
		)
	}

	cb := db.Callback()
	regs := []struct {
		name string
		fn   func() error
	}{
		{"query", func() error { return cb.Query().Before("gorm:query").Register("slow_query:before_query", before) }},
		{"query", func() error { return cb.Query().After("gorm:query").Register("slow_query:after_query", after) }},
		{"create", func() error { return cb.Create().Before("gorm:create").Register("slow_query:before_create", before) }},
		{"create", func() error { return cb.Create().After("gorm:create").Register("slow_query:after_create", after) }},
		{"update", func() error { return cb.Update().Before("gorm:update").Register("slow_query:before_update", before) }},
		{"update", func() error { return cb.Update().After("gorm:update").Register("slow_query:after_update", after) }},
		{"row", func() error { return cb.Row().Before("gorm:row").Register("slow_query:before_row", before) }},
		{"row", func() error { return cb.Row().After("gorm:row").Register("slow_query:after_row", after) }},
		{"raw", func() error { return cb.Raw().Before("gorm:raw").Register("slow_query:before_raw", before) }},
		{"raw", func() error { return cb.Raw().After("gorm:raw").Register("slow_query:after_raw", after) }},
	}
	for _, r := range regs {
		if err := r.fn(); err != nil {
			return fmt.Errorf("%s callback: %w", r.name, err)
		}
	}
	return nil
}

// RegisterDBPoolMetrics reports database/sql pool statistics as gauges.
func RegisterDBPoolMetrics(db *gorm.DB, meter metric.Meter) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	open, err := meter.Int64ObservableGauge("db.pool.open_connections",
		metric.WithDescription("Established connections, both in use and idle"))
	if err != nil {
		return err
	}
	inUse, err := meter.Int64ObservableGauge("db.pool.in_use",
		metric.WithDescription("Connections currently in use"))
	if err != nil {
		return err
	}
	idle, err := meter.Int64ObservableGauge("db.pool.idle",
		metric.WithDescription("Idle connections"))
	if err != nil {
		return err
	}
	waits, err := meter.Int64ObservableCounter("db.pool.wait_count",
		metric.WithDescription("Connections waited for"))
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(open, int64(stats.OpenConnections))
		o.ObserveInt64(inUse, int64(stats.InUse))
		o.ObserveInt64(idle, int64(stats.Idle))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, open, inUse, idle, waits)
	return err
}
