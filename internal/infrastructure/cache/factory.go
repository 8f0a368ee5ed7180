package cache

import (
	"context"
	"fmt"

	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StoreFactory creates stores based on configuration
type StoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	client                *redis.Client
}

// StoreFactoryOption is a functional option for configuring the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to process memory when
// Redis is enabled but unreachable. Default is false.
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStoreFactory creates a new factory
func NewStoreFactory(cfg config.RedisConfig, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		redisConfig: cfg,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns a Redis store with the given key prefix when Redis is
// enabled, and an in-memory store otherwise. The Redis client is shared
// between all stores of the factory.
func (f *StoreFactory) CreateStore(ctx context.Context, keyPrefix string) (Store, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory store", zap.String("prefix", keyPrefix))
		return NewInMemoryStore(), nil
	}

	if f.client == nil {
		client, err := NewRedisClient(ctx, f.redisConfig)
		if err != nil {
			if !f.allowInMemoryFallback {
				return nil, fmt.Errorf("redis required but unavailable: %w", err)
			}
			f.logger.Warn("Redis unavailable, falling back to in-memory store. "+
				"Sessions will not be shared between instances.",
				zap.String("prefix", keyPrefix),
				zap.Error(err),
			)
			return NewInMemoryStore(), nil
		}
		f.client = client
	}

	f.logger.Info("Using Redis store", zap.String("prefix", keyPrefix))
	return NewRedisStore(f.client, keyPrefix), nil
}

// Close closes the shared Redis client, if one was opened
func (f *StoreFactory) Close() error {
	if f.client == nil {
		return nil
	}
	return f.client.Close()
}
