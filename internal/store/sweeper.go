package store

import (
	"context"
	"log/slog"
	"time"
)

// Expirer is a backend that needs an external sweep to enforce idle expiry.
type Expirer interface {
	ExpiredKeys(ctx context.Context, cutoff time.Time) ([]string, error)
	DeleteIdle(ctx context.Context, key string, cutoff time.Time) (bool, error)
}

// Sweeper periodically deletes sessions idle for longer than TTL.
type Sweeper struct {
	Backend  Expirer
	TTL      time.Duration
	Interval time.Duration
	OnEvict  EvictFunc
	Logger   *slog.Logger

	now func() time.Time
}

// Run sweeps until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	logger.Info("session sweeper started", "interval", s.Interval, "ttl", s.TTL)

	for {
		select {
		case <-ticker.C:
			s.Sweep(ctx)
		case <-ctx.Done():
			logger.Info("session sweeper shutting down", "reason", ctx.Err())
			return nil
		}
	}
}

// Sweep deletes the sessions that are currently expired and returns how many
// were removed.
func (s *Sweeper) Sweep(ctx context.Context) int {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	cutoff := now().Add(-s.TTL)

	keys, err := s.Backend.ExpiredKeys(ctx, cutoff)
	if err != nil {
		logger.Error("session sweeper failed to list expired sessions", "error", err)
		return 0
	}
	if len(keys) == 0 {
		return 0
	}

	removed := 0
	for _, key := range keys {
		ok, err := s.Backend.DeleteIdle(ctx, key, cutoff)
		if err != nil {
			logger.Warn("session sweeper failed to delete session", "session_id", key, "error", err)
			continue
		}
		if !ok {
			continue
		}
		removed++
		if s.OnEvict != nil {
			s.OnEvict(key)
		}
	}
	logger.Info("session sweeper cleanup completed", "expired", len(keys), "removed", removed)
	return removed
}
