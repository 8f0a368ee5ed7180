package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/marketplace/backend/internal/infrastructure/cache"
)

// Flash levels
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Flash is a one-time message shown on the user's next page
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// FlashStore keeps pending flash messages per user
type FlashStore struct {
	store cache.Store
	ttl   time.Duration
}

// NewFlashStore creates a flash store. Undelivered messages expire after ttl.
func NewFlashStore(store cache.Store, ttl time.Duration) *FlashStore {
	return &FlashStore{store: store, ttl: ttl}
}

func flashKey(userID string) string {
	return "flash:" + userID
}

// Add queues a message for the user. Each message is pushed onto the
// user's list, so concurrent requests never overwrite each other.
func (f *FlashStore) Add(ctx context.Context, userID, level, message string) error {
	data, err := json.Marshal(Flash{Level: level, Message: message})
	if err != nil {
		return fmt.Errorf("encode flash: %w", err)
	}
	if err := f.store.Push(ctx, flashKey(userID), data, f.ttl); err != nil {
		return fmt.Errorf("add flash: %w", err)
	}
	return nil
}

// Drain returns and clears the user's pending messages in the order they
// were added. Undecodable entries are skipped.
func (f *FlashStore) Drain(ctx context.Context, userID string) ([]Flash, error) {
	raw, err := f.store.PopAll(ctx, flashKey(userID))
	if err != nil {
		return nil, fmt.Errorf("drain flash: %w", err)
	}
	out := make([]Flash, 0, len(raw))
	for _, item := range raw {
		var msg Flash
		if json.Unmarshal(item, &msg) == nil {
			out = append(out, msg)
		}
	}
	return out, nil
}
