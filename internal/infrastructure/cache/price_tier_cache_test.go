package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/marketplace/backend/internal/domain/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) GetPrice(ctx context.Context, p payment.PricePoint) (*payment.PriceTier, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.PriceTier), args.Error(1)
}

type failingStore struct {
	*InMemoryStore
}

func (s *failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func TestPriceTierCache_GetPrice(t *testing.T) {
	ctx := context.Background()
	tier := &payment.PriceTier{
		PricePoint: "10",
		Name:       "Tier 10",
		Prices:     []payment.Price{{Amount: decimal.RequireFromString("0.99"), Currency: "USD"}},
	}

	t.Run("second lookup is served from the store", func(t *testing.T) {
		catalog := new(mockCatalog)
		catalog.On("GetPrice", mock.Anything, payment.PricePoint("10")).Return(tier, nil).Once()
		store := NewInMemoryStore()
		defer store.Close()
		c := NewPriceTierCache(catalog, store, time.Minute, nil)

		first, err := c.GetPrice(ctx, "10")
		require.NoError(t, err)
		second, err := c.GetPrice(ctx, "10")
		require.NoError(t, err)

		assert.Equal(t, first.Name, second.Name)
		assert.True(t, second.Prices[0].Amount.Equal(decimal.RequireFromString("0.99")))
		catalog.AssertExpectations(t)
	})

	t.Run("unknown tiers are not cached", func(t *testing.T) {
		catalog := new(mockCatalog)
		catalog.On("GetPrice", mock.Anything, payment.PricePoint("99")).Return(nil, payment.ErrTierNotFound).Twice()
		store := NewInMemoryStore()
		defer store.Close()
		c := NewPriceTierCache(catalog, store, time.Minute, nil)

		_, err := c.GetPrice(ctx, "99")
		assert.ErrorIs(t, err, payment.ErrTierNotFound)
		_, err = c.GetPrice(ctx, "99")
		assert.ErrorIs(t, err, payment.ErrTierNotFound)
		assert.Equal(t, 0, store.Size())
		catalog.AssertExpectations(t)
	})

	t.Run("store failures fall through to the catalog", func(t *testing.T) {
		catalog := new(mockCatalog)
		catalog.On("GetPrice", mock.Anything, payment.PricePoint("10")).Return(tier, nil)
		store := &failingStore{InMemoryStore: NewInMemoryStore()}
		defer store.Close()
		c := NewPriceTierCache(catalog, store, time.Minute, nil)

		got, err := c.GetPrice(ctx, "10")
		require.NoError(t, err)
		assert.Equal(t, "Tier 10", got.Name)
	})
}
