package cache

import (
	"context"
	"testing"

	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestStoreFactory_CreateStore(t *testing.T) {
	ctx := context.Background()

	t.Run("redis disabled uses memory", func(t *testing.T) {
		f := NewStoreFactory(config.RedisConfig{Enabled: false})
		store, err := f.CreateStore(ctx, "session:")
		require.NoError(t, err)
		defer store.Close()

		_, ok := store.(*InMemoryStore)
		assert.True(t, ok)
		assert.NoError(t, f.Close())
	})

	// Port 1 is never a Redis server.
	unreachable := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}

	t.Run("unreachable redis fails without fallback", func(t *testing.T) {
		f := NewStoreFactory(unreachable)
		_, err := f.CreateStore(ctx, "session:")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis required but unavailable")
	})

	t.Run("unreachable redis falls back when allowed", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		f := NewStoreFactory(unreachable, WithLogger(zap.New(core)), WithInMemoryFallback(true))

		store, err := f.CreateStore(ctx, "session:")
		require.NoError(t, err)
		defer store.Close()

		_, ok := store.(*InMemoryStore)
		assert.True(t, ok)
		require.Equal(t, 1, logs.Len())
		assert.Contains(t, logs.All()[0].Message, "falling back")
	})
}
