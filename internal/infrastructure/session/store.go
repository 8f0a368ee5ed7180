// Package session keeps buyer payment sessions and editor flash messages
// in a cache.Store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/marketplace/backend/internal/domain/payment"
	"github.com/marketplace/backend/internal/infrastructure/cache"
)

// Store loads and saves payment sessions by session id
type Store struct {
	store cache.Store
	ttl   time.Duration
}

// NewStore creates a session store whose sessions live for ttl after the last save
func NewStore(store cache.Store, ttl time.Duration) *Store {
	return &Store{store: store, ttl: ttl}
}

func sessionKey(id string) string {
	return "pay:" + id
}

// Load returns the session, or an empty session when none is stored
func (s *Store) Load(ctx context.Context, id string) (*payment.Session, error) {
	raw, err := s.store.Get(ctx, sessionKey(id))
	if errors.Is(err, cache.ErrCacheMiss) {
		return &payment.Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var sess payment.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		// A session we cannot read is treated as a fresh one.
		return &payment.Session{}, nil
	}
	return &sess, nil
}

// Save stores the session and renews its lifetime
func (s *Store) Save(ctx context.Context, id string, sess *payment.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.store.Set(ctx, sessionKey(id), data, s.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Delete removes the session
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, sessionKey(id))
}
