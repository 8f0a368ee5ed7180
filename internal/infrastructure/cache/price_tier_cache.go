package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/marketplace/backend/internal/domain/payment"
	"go.uber.org/zap"
)

// PriceTierCache caches price tier lookups of an underlying catalog.
// Unknown price points are not cached.
type PriceTierCache struct {
	next   payment.PriceCatalog
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewPriceTierCache wraps a price catalog with a cache
func NewPriceTierCache(next payment.PriceCatalog, store Store, ttl time.Duration, logger *zap.Logger) *PriceTierCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceTierCache{next: next, store: store, ttl: ttl, logger: logger}
}

func tierKey(p payment.PricePoint) string {
	return "tier:" + string(p)
}

// GetPrice returns the cached tier, falling back to the catalog on a miss.
// Cache failures are logged and never fail the lookup.
func (c *PriceTierCache) GetPrice(ctx context.Context, pricePoint payment.PricePoint) (*payment.PriceTier, error) {
	key := tierKey(pricePoint)

	raw, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var tier payment.PriceTier
		if jsonErr := json.Unmarshal(raw, &tier); jsonErr == nil {
			return &tier, nil
		}
		c.logger.Warn("Discarding corrupt cached price tier", zap.String("key", key))
	case !errors.Is(err, ErrCacheMiss):
		c.logger.Warn("Price tier cache read failed", zap.String("key", key), zap.Error(err))
	}

	tier, err := c.next.GetPrice(ctx, pricePoint)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(tier); err == nil {
		if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
			c.logger.Warn("Price tier cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return tier, nil
}

var _ payment.PriceCatalog = (*PriceTierCache)(nil)
