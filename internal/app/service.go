// Package service provides the application service behind the HTTP API.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	repository "github.com/okian/fisher/internal/adapters/repository"
	"github.com/okian/fisher/internal/domain/meta"
	"github.com/okian/fisher/internal/domain/stats"
	"github.com/okian/fisher/pkg/logger"
	"github.com/okian/fisher/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultDisplayDigits = 3
	defaultMaxSessions   = 10_000
	defaultSessionTTL    = time.Hour
)

// ErrNotStarted is returned by operations invoked before Start.
var ErrNotStarted = errors.New("service not started")

// Service implements the API dependencies for the meta-analysis sessions.
type Service struct {
	mu sync.RWMutex

	store     repository.Store
	ownsStore bool
	calc      *stats.Calculator

	// Configuration
	displayDigits int
	maxSessions   int
	sessionTTL    time.Duration
	maxIterations int

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore replaces the in-memory session store created by Start.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithDisplayDigits sets the number of decimals in formatted results.
func WithDisplayDigits(digits int) Option {
	return func(s *Service) {
		if digits >= 0 {
			s.displayDigits = digits
		}
	}
}

// WithMaxSessions caps the number of open sessions.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithSessionTTL sets the idle timeout for sessions. Zero disables eviction.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl >= 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithMaxIterations bounds the incomplete gamma series.
func WithMaxIterations(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxIterations = n
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		displayDigits: defaultDisplayDigits,
		maxSessions:   defaultMaxSessions,
		sessionTTL:    defaultSessionTTL,
		maxIterations: stats.DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the calculator and the session store.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.calc = stats.NewCalculator(
		stats.WithMaxIterations(s.maxIterations),
		stats.WithObserver(metrics.ObserveSeries),
	)
	if s.store == nil {
		s.store = repository.NewMemoryStore(ctx,
			repository.WithMaxSessions(s.maxSessions),
			repository.WithTTL(s.sessionTTL),
			repository.WithCalculator(s.calc),
		)
		s.ownsStore = true
	}

	s.started = true
	s.logger.Info(ctx, "meta-analysis service started",
		logger.Int("maxSessions", s.maxSessions),
		logger.String("sessionTTL", s.sessionTTL.String()),
		logger.Int("maxIterations", s.maxIterations),
		logger.Int("displayDigits", s.displayDigits),
	)
	return nil
}

// Stop releases the session store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn(context.Background(), "closing session store failed", logger.Error(err))
	}
	if s.ownsStore {
		s.store = nil
		s.ownsStore = false
	}
	s.started = false
	s.logger.Info(context.Background(), "meta-analysis service stopped")
}

func (s *Service) sessions() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// CreateSession opens an empty trial set.
func (s *Service) CreateSession(ctx context.Context) (string, error) {
	store, err := s.sessions()
	if err != nil {
		return "", err
	}
	id, err := store.Create(ctx)
	if err != nil {
		s.logger.Warn(ctx, "session not created", logger.Error(err))
		return "", err
	}
	s.logger.Debug(ctx, "session created", logger.String("session", id))
	return id, nil
}

// DeleteSession closes a session.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	store, err := s.sessions()
	if err != nil {
		return err
	}
	if err := store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Debug(ctx, "session deleted", logger.String("session", id))
	return nil
}

// AddTrial validates and records a trial, then returns the refreshed summary.
// Validation failures leave the session unchanged.
func (s *Service) AddTrial(ctx context.Context, id string, sampleSize int, effectSize, pValue float64) (meta.Summary, error) {
	store, err := s.sessions()
	if err != nil {
		return meta.Summary{}, err
	}
	var out meta.Summary
	err = store.With(ctx, id, func(a *meta.Analysis) error {
		if err := a.AddTrial(sampleSize, effectSize, pValue); err != nil {
			return err
		}
		out = s.summarize(ctx, id, a)
		return nil
	})
	if err != nil {
		if reason := rejectionReason(err); reason != "" {
			metrics.RecordTrialRejected(reason)
			s.logger.Info(ctx, "trial rejected",
				logger.String("session", id),
				logger.String("reason", reason),
				logger.Error(err),
			)
		}
		return meta.Summary{}, err
	}
	metrics.RecordTrialAccepted()
	s.logger.Debug(ctx, "trial added",
		logger.String("session", id),
		logger.Int("trials", out.Trials),
	)
	return out, nil
}

// ClearTrials empties the session's trial set.
func (s *Service) ClearTrials(ctx context.Context, id string) (meta.Summary, error) {
	store, err := s.sessions()
	if err != nil {
		return meta.Summary{}, err
	}
	var out meta.Summary
	err = store.With(ctx, id, func(a *meta.Analysis) error {
		a.Clear()
		out = s.summarize(ctx, id, a)
		return nil
	})
	if err != nil {
		return meta.Summary{}, err
	}
	metrics.RecordTrialSetCleared()
	s.logger.Debug(ctx, "trials cleared", logger.String("session", id))
	return out, nil
}

// Summary returns the current aggregates of a session.
func (s *Service) Summary(ctx context.Context, id string) (meta.Summary, error) {
	store, err := s.sessions()
	if err != nil {
		return meta.Summary{}, err
	}
	var out meta.Summary
	err = store.With(ctx, id, func(a *meta.Analysis) error {
		out = s.summarize(ctx, id, a)
		return nil
	})
	return out, err
}

// summarize runs under the session lock.
func (s *Service) summarize(ctx context.Context, id string, a *meta.Analysis) meta.Summary {
	sum := a.Summary(s.displayDigits)
	switch {
	case sum.Trials == 0:
	case sum.PValueErr != nil:
		metrics.RecordPValueComputation("error")
		s.logger.Warn(ctx, "combined p-value unavailable",
			logger.String("session", id),
			logger.Int("trials", sum.Trials),
			logger.Float64("chiSquare", a.ChiSquareSum()),
			logger.Error(sum.PValueErr),
		)
	default:
		metrics.RecordPValueComputation("ok")
	}
	return sum
}

// rejectionReason maps validation errors to metric labels.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, meta.ErrInvalidSampleSize):
		return "invalid_sample_size"
	case errors.Is(err, meta.ErrInvalidPValue):
		return "invalid_p_value"
	case errors.Is(err, meta.ErrInvalidEffectSize):
		return "invalid_effect_size"
	}
	return ""
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[string]any{
		"started":       s.started,
		"maxSessions":   s.maxSessions,
		"sessionTTL":    s.sessionTTL.String(),
		"maxIterations": s.maxIterations,
		"displayDigits": s.displayDigits,
	}
	if s.started {
		n := s.store.Count(context.Background())
		out["sessions"] = n
		metrics.UpdateSessionsActive(n)
	}
	return out
}
