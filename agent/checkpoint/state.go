package checkpoint

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidThread       = errors.New("thread id is empty")
	ErrNilState            = errors.New("thread state is nil")
	ErrDoubleSuspension    = errors.New("thread already has a pending suspension")
	ErrNoPendingSuspension = errors.New("no pending suspension for thread")
	ErrInvocationNotFound  = errors.New("invocation not found")
)

type Role string

const (
	RoleUser             Role = "user"
	RoleAssistant        Role = "assistant"
	RoleCapabilityResult Role = "capability-result"
)

// Message is one immutable entry in a thread's ordered history. Position is
// the slice index; messages are append-only.
type Message struct {
	Role       Role   `json:"role"`
	Content    string `json:"content"`
	Capability string `json:"capability,omitempty"`
}

type InvocationStatus string

const (
	InvocationCompleted InvocationStatus = "completed"
	InvocationSuspended InvocationStatus = "suspended"
)

type Invocation struct {
	ID         string           `json:"id"`
	Capability string           `json:"capability"`
	Input      string           `json:"input"`
	Result     string           `json:"result,omitempty"`
	Status     InvocationStatus `json:"status"`
	StartedAt  time.Time        `json:"started_at"`
	DurationMS int64            `json:"duration_ms,omitempty"`
}

// Suspension records that a thread is paused awaiting externally supplied
// feedback in place of the escalation capability's result.
type Suspension struct {
	ID           string    `json:"id"`
	ThreadID     string    `json:"thread_id"`
	Query        string    `json:"query"`
	InvocationID string    `json:"invocation_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// ThreadState is the versioned snapshot of one conversation: full history,
// invocation log, and at most one pending suspension. Sequence increments on
// every successful commit and detects lost updates.
type ThreadState struct {
	ThreadID    string       `json:"thread_id"`
	Sequence    int64        `json:"sequence"`
	Messages    []Message    `json:"messages,omitempty"`
	Invocations []Invocation `json:"invocations,omitempty"`
	Pending     *Suspension  `json:"pending_suspension,omitempty"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func NewThreadState(threadID string, now time.Time) *ThreadState {
	return &ThreadState{
		ThreadID:  threadID,
		Sequence:  0,
		UpdatedAt: now.UTC(),
	}
}

func (s *ThreadState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

func (s *ThreadState) AppendUser(content string) {
	s.Messages = append(s.Messages, Message{Role: RoleUser, Content: content})
}

func (s *ThreadState) AppendAssistant(content string) {
	s.Messages = append(s.Messages, Message{Role: RoleAssistant, Content: content})
}

func (s *ThreadState) AppendCapabilityResult(capability, content string) {
	s.Messages = append(s.Messages, Message{
		Role:       RoleCapabilityResult,
		Content:    content,
		Capability: capability,
	})
}

// BeginInvocation opens a new entry in the invocation log. The entry stays
// suspended until CompleteInvocation fills its result.
func (s *ThreadState) BeginInvocation(capability, input string, now time.Time) *Invocation {
	inv := Invocation{
		ID:         uuid.NewString(),
		Capability: capability,
		Input:      input,
		Status:     InvocationSuspended,
		StartedAt:  now.UTC(),
	}
	s.Invocations = append(s.Invocations, inv)
	return &s.Invocations[len(s.Invocations)-1]
}

func (s *ThreadState) CompleteInvocation(id, result string, now time.Time) error {
	for i := range s.Invocations {
		if s.Invocations[i].ID == id {
			s.Invocations[i].Result = result
			s.Invocations[i].Status = InvocationCompleted
			s.Invocations[i].DurationMS = now.UTC().Sub(s.Invocations[i].StartedAt).Milliseconds()
			return nil
		}
	}
	return fmt.Errorf("%w: id=%s", ErrInvocationNotFound, id)
}

// Suspend parks the thread on an open escalation invocation. At most one
// suspension may be live per thread.
func (s *ThreadState) Suspend(invocationID, query string, now time.Time) (*Suspension, error) {
	if s.Pending != nil {
		return nil, fmt.Errorf("%w: thread=%s", ErrDoubleSuspension, s.ThreadID)
	}
	if strings.TrimSpace(invocationID) == "" {
		return nil, fmt.Errorf("%w: empty id", ErrInvocationNotFound)
	}
	susp := &Suspension{
		ID:           uuid.NewString(),
		ThreadID:     s.ThreadID,
		Query:        query,
		InvocationID: invocationID,
		CreatedAt:    now.UTC(),
	}
	s.Pending = susp
	s.Touch(now)
	return susp, nil
}

// Resume injects feedback as the suspended invocation's result, appends it to
// history exactly as a normal dispatch would have, and clears the suspension.
// The caller re-enters the reasoning loop afterwards; resume is not a special
// code path.
func (s *ThreadState) Resume(feedback string, now time.Time) (*Suspension, error) {
	if s.Pending == nil {
		return nil, fmt.Errorf("%w: thread=%s", ErrNoPendingSuspension, s.ThreadID)
	}
	susp := s.Pending
	if err := s.CompleteInvocation(susp.InvocationID, feedback, now); err != nil {
		return nil, err
	}

	var capability string
	for i := range s.Invocations {
		if s.Invocations[i].ID == susp.InvocationID {
			capability = s.Invocations[i].Capability
		}
	}
	s.AppendCapabilityResult(capability, feedback)
	s.Pending = nil
	s.Touch(now)
	return susp, nil
}

// UserMessageCount reports how many user messages the history holds.
func (s *ThreadState) UserMessageCount() int {
	n := 0
	for _, m := range s.Messages {
		if m.Role == RoleUser {
			n++
		}
	}
	return n
}

func (s *ThreadState) Validate() error {
	if strings.TrimSpace(s.ThreadID) == "" {
		return ErrInvalidThread
	}
	if s.Sequence < 0 {
		return fmt.Errorf("negative sequence %d", s.Sequence)
	}
	for _, m := range s.Messages {
		switch m.Role {
		case RoleUser, RoleAssistant, RoleCapabilityResult:
		default:
			return fmt.Errorf("invalid message role %q", m.Role)
		}
	}
	if s.Pending != nil {
		if s.Pending.ThreadID != s.ThreadID {
			return fmt.Errorf("suspension thread mismatch: %s != %s", s.Pending.ThreadID, s.ThreadID)
		}
		found := false
		for _, inv := range s.Invocations {
			if inv.ID == s.Pending.InvocationID {
				if inv.Status != InvocationSuspended {
					return fmt.Errorf("pending suspension points at %s invocation %s", inv.Status, inv.ID)
				}
				found = true
			}
		}
		if !found {
			return fmt.Errorf("%w: suspension refs id=%s", ErrInvocationNotFound, s.Pending.InvocationID)
		}
	}
	return nil
}

// Clone deep-copies the state so the orchestrator's working copy never
// aliases stored history.
func (s *ThreadState) Clone() *ThreadState {
	if s == nil {
		return nil
	}
	out := &ThreadState{
		ThreadID:  s.ThreadID,
		Sequence:  s.Sequence,
		UpdatedAt: s.UpdatedAt,
	}
	if len(s.Messages) > 0 {
		out.Messages = append([]Message(nil), s.Messages...)
	}
	if len(s.Invocations) > 0 {
		out.Invocations = append([]Invocation(nil), s.Invocations...)
	}
	if s.Pending != nil {
		p := *s.Pending
		out.Pending = &p
	}
	return out
}
