package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/fisher/internal/domain/meta"
	"github.com/okian/fisher/internal/domain/stats"
	"github.com/okian/fisher/pkg/metrics"
)

// Default store configuration constants.
const (
	defaultMaxSessions   = 10_000
	defaultTTL           = time.Hour
	defaultSweepInterval = time.Minute
)

type session struct {
	mu       sync.Mutex
	analysis *meta.Analysis
	lastUsed time.Time
	deleted  bool
}

// MemoryStore implements Store in process memory. Each session has its own
// lock, so requests for different sessions never contend.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
	closed   bool

	maxSessions   int
	ttl           time.Duration
	sweepInterval time.Duration
	calc          *stats.Calculator
	now           func() time.Time

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewMemoryStore creates a store and, when a TTL is set, starts the idle
// session sweeper. The sweeper stops on Close or when ctx is done.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		sessions:      make(map[string]*session),
		maxSessions:   defaultMaxSessions,
		ttl:           defaultTTL,
		sweepInterval: defaultSweepInterval,
		now:           time.Now,
		stopCh:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.calc == nil {
		s.calc = stats.NewCalculator()
	}

	if s.ttl > 0 {
		s.wg.Add(1)
		go s.sweepLoop(ctx)
	}
	return s
}

// Create implements Store.
func (s *MemoryStore) Create(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrClosed
	}
	if len(s.sessions) >= s.maxSessions {
		return "", ErrCapacity
	}
	id := uuid.NewString()
	s.sessions[id] = &session{analysis: meta.New(s.calc), lastUsed: s.now()}

	metrics.RecordSessionCreated()
	metrics.UpdateSessionsActive(len(s.sessions))
	return id, nil
}

// With implements Store.
func (s *MemoryStore) With(_ context.Context, id string, fn func(*meta.Analysis) error) error {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.deleted {
		return ErrNotFound
	}
	sess.lastUsed = s.now()
	return fn(sess.analysis)
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	n := len(s.sessions)
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	sess.mu.Lock()
	sess.deleted = true
	sess.mu.Unlock()

	metrics.UpdateSessionsActive(n)
	return nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close implements Store. It is safe to call more than once.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// Sweep evicts sessions idle for longer than the TTL and returns how many
// were removed. Sessions in use are skipped.
func (s *MemoryStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	evicted := 0
	for id, sess := range s.sessions {
		if !sess.mu.TryLock() {
			continue
		}
		if sess.lastUsed.Before(cutoff) {
			sess.deleted = true
			delete(s.sessions, id)
			evicted++
		}
		sess.mu.Unlock()
	}
	n := len(s.sessions)
	s.mu.Unlock()

	if evicted > 0 {
		metrics.RecordSessionsExpired(evicted)
		metrics.UpdateSessionsActive(n)
	}
	return evicted
}

func (s *MemoryStore) sweepLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
