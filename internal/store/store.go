// Package store persists conversation sessions.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/krea02/ai-agent-demo/internal/domain"
)

// ErrNotFound is returned by Get when no session exists for the key.
var ErrNotFound = errors.New("session not found")

// SessionStore holds one session record per key. Save replaces the record
// atomically; readers never observe a partially written session.
type SessionStore interface {
	// Get returns a copy of the session, or ErrNotFound.
	Get(ctx context.Context, key string) (*domain.Session, error)

	// Save creates or replaces the session stored under s.Key.
	Save(ctx context.Context, s *domain.Session) error

	// Delete removes the session. Deleting an unknown key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// EvictFunc is called with the key of a session removed by the backend's
// eviction policy. It is not called for explicit deletes.
type EvictFunc func(key string)

// GetOrNew returns the stored session for key, or a fresh idle one.
func GetOrNew(ctx context.Context, s SessionStore, key string, now time.Time) (*domain.Session, error) {
	sess, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return domain.NewSession(key, now), nil
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}
