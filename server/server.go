package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	supervisorx "github.com/supportflow-ai/supportflow/agent/agents/supervisor"
	checkpointx "github.com/supportflow-ai/supportflow/agent/checkpoint"
	contractx "github.com/supportflow-ai/supportflow/agent/contract"
)

// Agent is the orchestration surface the HTTP layer depends on.
type Agent interface {
	SubmitQuery(ctx context.Context, threadID, text string) (contractx.Outcome, error)
	SubmitFeedback(ctx context.Context, threadID, feedback string) (contractx.Outcome, error)
}

type Server struct {
	agent Agent
	mux   *http.ServeMux
}

func New(agent Agent) (*Server, error) {
	if agent == nil {
		return nil, errors.New("agent is required")
	}

	s := &Server{
		agent: agent,
		mux:   http.NewServeMux(),
	}
	s.mux.HandleFunc("POST /query", s.handleQuery)
	s.mux.HandleFunc("POST /feedback", s.handleFeedback)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type queryRequest struct {
	Query    string `json:"query"`
	ThreadID string `json:"thread_id"`
}

type feedbackRequest struct {
	Feedback string `json:"feedback"`
	ThreadID string `json:"thread_id"`
}

type agentResponse struct {
	Response         string `json:"response"`
	ThreadID         string `json:"thread_id"`
	Interrupted      bool   `json:"interrupted"`
	InterruptDetails string `json:"interrupt_details,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.ThreadID) == "" || strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "thread_id and query are required")
		return
	}

	outcome, err := s.agent.SubmitQuery(r.Context(), req.ThreadID, req.Query)
	if err != nil {
		writeAgentError(w, req.ThreadID, err)
		return
	}
	writeOutcome(w, req.ThreadID, outcome)
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.ThreadID) == "" || strings.TrimSpace(req.Feedback) == "" {
		writeError(w, http.StatusBadRequest, "thread_id and feedback are required")
		return
	}

	outcome, err := s.agent.SubmitFeedback(r.Context(), req.ThreadID, req.Feedback)
	if err != nil {
		writeAgentError(w, req.ThreadID, err)
		return
	}
	writeOutcome(w, req.ThreadID, outcome)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "customer support agent is running"})
}

func writeOutcome(w http.ResponseWriter, threadID string, outcome contractx.Outcome) {
	resp := agentResponse{
		ThreadID: threadID,
	}
	if outcome.Suspended() {
		resp.Response = "awaiting human input"
		resp.Interrupted = true
		resp.InterruptDetails = outcome.EscalationQuery
	} else {
		resp.Response = outcome.Text
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeAgentError maps orchestration failures onto HTTP status codes.
// Conflicting thread states are the caller's to resolve, so they come back
// as 409 rather than 500.
func writeAgentError(w http.ResponseWriter, threadID string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, supervisorx.ErrInvalidThread),
		errors.Is(err, supervisorx.ErrInvalidMessage),
		errors.Is(err, contractx.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, contractx.ErrThreadBusy),
		errors.Is(err, checkpointx.ErrStaleCheckpoint),
		errors.Is(err, checkpointx.ErrNoPendingSuspension):
		status = http.StatusConflict
	case errors.Is(err, contractx.ErrOracleUnavailable):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError || status == http.StatusBadGateway {
		log.Error().Err(err).Str("thread_id", threadID).Msg("agent request failed")
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}
