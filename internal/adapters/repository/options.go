package repository

import (
	"time"

	"github.com/okian/fisher/internal/domain/stats"
)

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithMaxSessions caps the number of open sessions.
func WithMaxSessions(n int) Option {
	return func(s *MemoryStore) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithTTL evicts sessions idle for longer than ttl. Zero disables eviction.
func WithTTL(ttl time.Duration) Option {
	return func(s *MemoryStore) {
		if ttl >= 0 {
			s.ttl = ttl
		}
	}
}

// WithSweepInterval sets how often idle sessions are evicted.
func WithSweepInterval(interval time.Duration) Option {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.sweepInterval = interval
		}
	}
}

// WithCalculator sets the calculator shared by every session's analysis.
func WithCalculator(c *stats.Calculator) Option {
	return func(s *MemoryStore) {
		if c != nil {
			s.calc = c
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}
