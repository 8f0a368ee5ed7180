// Package cache provides the key/value stores behind sessions, flash messages
// and the price tier cache. Redis backs them in deployments; an in-memory
// store is used when Redis is disabled.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Pop when the key does not exist.
var ErrCacheMiss = errors.New("cache: key not found")

// Store is a byte-oriented key/value store with expiring entries
type Store interface {
	// Get returns ErrCacheMiss for unknown or expired keys.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key. A zero ttl keeps the entry until deleted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Pop atomically returns and deletes the value under key.
	Pop(ctx context.Context, key string) ([]byte, error)
	// Push appends value to the list under key and renews the list's ttl.
	Push(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// PopAll atomically returns the list under key in push order and
	// deletes it. A missing list yields an empty slice.
	PopAll(ctx context.Context, key string) ([][]byte, error)
	Close() error
}
