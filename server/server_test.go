package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	supervisorx "github.com/supportflow-ai/supportflow/agent/agents/supervisor"
	checkpointx "github.com/supportflow-ai/supportflow/agent/checkpoint"
	contractx "github.com/supportflow-ai/supportflow/agent/contract"
)

type fakeAgent struct {
	queryOutcome    contractx.Outcome
	queryErr        error
	feedbackOutcome contractx.Outcome
	feedbackErr     error

	lastThreadID string
	lastText     string
}

func (f *fakeAgent) SubmitQuery(ctx context.Context, threadID, text string) (contractx.Outcome, error) {
	f.lastThreadID = threadID
	f.lastText = text
	if f.queryErr != nil {
		return contractx.Outcome{}, f.queryErr
	}
	return f.queryOutcome, nil
}

func (f *fakeAgent) SubmitFeedback(ctx context.Context, threadID, feedback string) (contractx.Outcome, error) {
	f.lastThreadID = threadID
	f.lastText = feedback
	if f.feedbackErr != nil {
		return contractx.Outcome{}, f.feedbackErr
	}
	return f.feedbackOutcome, nil
}

func newTestServer(t *testing.T, agent Agent) *Server {
	t.Helper()
	s, err := New(agent)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) agentResponse {
	t.Helper()
	var resp agentResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestQueryAnswered(t *testing.T) {
	t.Parallel()

	agent := &fakeAgent{queryOutcome: contractx.Answered("2 weeks on standby")}
	s := newTestServer(t, agent)

	rec := doJSON(t, s, http.MethodPost, "/query", `{"query":"battery life?","thread_id":"t1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeResponse(t, rec)
	if resp.Response != "2 weeks on standby" {
		t.Fatalf("unexpected response: %q", resp.Response)
	}
	if resp.Interrupted {
		t.Fatalf("answered outcome must not be interrupted")
	}
	if agent.lastThreadID != "t1" || agent.lastText != "battery life?" {
		t.Fatalf("agent got %q/%q", agent.lastThreadID, agent.lastText)
	}
}

func TestQuerySuspended(t *testing.T) {
	t.Parallel()

	agent := &fakeAgent{queryOutcome: contractx.Suspended("weather is out of scope?")}
	s := newTestServer(t, agent)

	rec := doJSON(t, s, http.MethodPost, "/query", `{"query":"weather in Mumbai?","thread_id":"t1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decodeResponse(t, rec)
	if !resp.Interrupted {
		t.Fatalf("suspended outcome must set interrupted")
	}
	if resp.InterruptDetails != "weather is out of scope?" {
		t.Fatalf("unexpected interrupt details: %q", resp.InterruptDetails)
	}
}

func TestQueryValidation(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeAgent{})

	rec := doJSON(t, s, http.MethodPost, "/query", `{"query":"","thread_id":"t1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty query, got %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/query", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad body, got %d", rec.Code)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"thread busy", contractx.ErrThreadBusy, http.StatusConflict},
		{"stale checkpoint", checkpointx.ErrStaleCheckpoint, http.StatusConflict},
		{"no pending suspension", checkpointx.ErrNoPendingSuspension, http.StatusConflict},
		{"invalid message", supervisorx.ErrInvalidMessage, http.StatusBadRequest},
		{"oracle unavailable", contractx.ErrOracleUnavailable, http.StatusBadGateway},
		{"loop exceeded", contractx.ErrRoutingLoopExceeded, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := newTestServer(t, &fakeAgent{queryErr: tc.err})
			rec := doJSON(t, s, http.MethodPost, "/query", `{"query":"q","thread_id":"t1"}`)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
}

func TestFeedbackResumes(t *testing.T) {
	t.Parallel()

	agent := &fakeAgent{feedbackOutcome: contractx.Answered("politely declined")}
	s := newTestServer(t, agent)

	rec := doJSON(t, s, http.MethodPost, "/feedback", `{"feedback":"out of scope","thread_id":"t1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decodeResponse(t, rec)
	if resp.Response != "politely declined" {
		t.Fatalf("unexpected response: %q", resp.Response)
	}
	if agent.lastText != "out of scope" {
		t.Fatalf("agent got feedback %q", agent.lastText)
	}
}

func TestFeedbackWithoutSuspension(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeAgent{feedbackErr: checkpointx.ErrNoPendingSuspension})
	rec := doJSON(t, s, http.MethodPost, "/feedback", `{"feedback":"f","thread_id":"t1"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestHealthAndRoot(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeAgent{})

	rec := doJSON(t, s, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /, got %d", rec.Code)
	}
}
