// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"

	repository "github.com/okian/fisher/internal/adapters/repository"
	service "github.com/okian/fisher/internal/app"
	"github.com/okian/fisher/internal/domain/meta"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	CreateSession(ctx context.Context) (string, error)
	DeleteSession(ctx context.Context, id string) error
	AddTrial(ctx context.Context, id string, sampleSize int, effectSize, pValue float64) (meta.Summary, error)
	ClearTrials(ctx context.Context, id string) (meta.Summary, error)
	Summary(ctx context.Context, id string) (meta.Summary, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	sessionsHandler *SessionsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		sessionsHandler: NewSessionsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", MetricsMiddleware(s.healthHandler.HandleMetrics, "metrics"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /sessions", MetricsMiddleware(s.sessionsHandler.HandleCreate, "sessions"))
	mux.HandleFunc("GET /sessions/{id}", MetricsMiddleware(s.sessionsHandler.HandleGet, "session"))
	mux.HandleFunc("DELETE /sessions/{id}", MetricsMiddleware(s.sessionsHandler.HandleDelete, "session"))
	mux.HandleFunc("POST /sessions/{id}/trials", MetricsMiddleware(s.sessionsHandler.HandleAddTrial, "trials"))
	mux.HandleFunc("DELETE /sessions/{id}/trials", MetricsMiddleware(s.sessionsHandler.HandleClearTrials, "trials"))
}

// trialRequest mirrors the body of POST /sessions/{id}/trials.
type trialRequest struct {
	SampleSize *int     `json:"sample_size"`
	EffectSize *float64 `json:"effect_size"`
	PValue     *float64 `json:"p_value"`
}

func (r trialRequest) validate() error {
	switch {
	case r.SampleSize == nil:
		return errors.New("missing sample_size")
	case r.EffectSize == nil:
		return errors.New("missing effect_size")
	case r.PValue == nil:
		return errors.New("missing p_value")
	}
	return nil
}

type sessionResponse struct {
	ID string `json:"id"`
}

// summaryResponse is the JSON view of a session's aggregates. Raw values are
// null when undefined (no trials, or the p-value could not be computed).
type summaryResponse struct {
	SessionID         string   `json:"session_id"`
	Trials            int      `json:"trials"`
	EffectSize        *float64 `json:"effect_size"`
	PValue            *float64 `json:"p_value"`
	EffectSizeDisplay string   `json:"effect_size_display"`
	PValueDisplay     string   `json:"p_value_display"`
	PValueError       string   `json:"p_value_error,omitempty"`
}

func newSummaryResponse(id string, s meta.Summary) summaryResponse {
	resp := summaryResponse{
		SessionID:         id,
		Trials:            s.Trials,
		EffectSize:        finite(s.EffectSize),
		PValue:            finite(s.PValue),
		EffectSizeDisplay: s.EffectSizeDisplay,
		PValueDisplay:     s.PValueDisplay,
	}
	if s.PValueErr != nil {
		resp.PValueError = s.PValueErr.Error()
	}
	return resp
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates upstream errors into status codes and
// machine-readable codes. Validation messages are passed through verbatim
// so clients can show them to the user.
func writeDomainError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, meta.ErrInvalidSampleSize):
		writeError(w, http.StatusBadRequest, "invalid_sample_size", err)
	case errors.Is(err, meta.ErrInvalidPValue):
		writeError(w, http.StatusBadRequest, "invalid_p_value", err)
	case errors.Is(err, meta.ErrInvalidEffectSize):
		writeError(w, http.StatusBadRequest, "invalid_effect_size", err)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrCapacity):
		writeError(w, http.StatusServiceUnavailable, "capacity", err)
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, repository.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
	}
}
