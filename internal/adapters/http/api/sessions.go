package api

import (
	"encoding/json"
	"net/http"
)

// maxBodyBytes bounds trial request bodies.
const maxBodyBytes = 1 << 16

// SessionsHandler handles session and trial requests.
type SessionsHandler struct {
	deps Dependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps Dependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// HandleCreate handles POST /sessions.
func (h *SessionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_session"
	id, err := h.deps.CreateSession(r.Context())
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	w.Header().Set("Location", "/sessions/"+id)
	writeJSON(w, http.StatusCreated, sessionResponse{ID: id})
}

// HandleGet handles GET /sessions/{id}.
func (h *SessionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_session"
	id := r.PathValue("id")
	sum, err := h.deps.Summary(r.Context(), id)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, newSummaryResponse(id, sum))
}

// HandleDelete handles DELETE /sessions/{id}.
func (h *SessionsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_session"
	if err := h.deps.DeleteSession(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddTrial handles POST /sessions/{id}/trials.
func (h *SessionsHandler) HandleAddTrial(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_trial"
	id := r.PathValue("id")

	var req trialRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	sum, err := h.deps.AddTrial(r.Context(), id, *req.SampleSize, *req.EffectSize, *req.PValue)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, newSummaryResponse(id, sum))
}

// HandleClearTrials handles DELETE /sessions/{id}/trials.
func (h *SessionsHandler) HandleClearTrials(w http.ResponseWriter, r *http.Request) {
	const op = "api.clear_trials"
	id := r.PathValue("id")
	sum, err := h.deps.ClearTrials(r.Context(), id)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, newSummaryResponse(id, sum))
}
