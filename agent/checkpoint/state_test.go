package checkpoint

import (
	"errors"
	"testing"
	"time"
)

func testTime() time.Time {
	return time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
}

func TestSuspendResumeRoundTrip(t *testing.T) {
	t.Parallel()

	now := testTime()
	st := NewThreadState("t1", now)
	st.AppendUser("what is the weather in Mumbai?")

	inv := st.BeginInvocation("human_escalation", "weather question", now)
	susp, err := st.Suspend(inv.ID, "weather question", now)
	if err != nil {
		t.Fatalf("Suspend() error = %v", err)
	}
	if st.Pending == nil || st.Pending.ID != susp.ID {
		t.Fatalf("expected pending suspension %s, got %+v", susp.ID, st.Pending)
	}
	if susp.InvocationID != inv.ID {
		t.Fatalf("suspension must reference the open invocation")
	}

	resumed, err := st.Resume("out of scope, decline politely", now.Add(time.Minute))
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if resumed.ID != susp.ID {
		t.Fatalf("expected resumed suspension %s, got %s", susp.ID, resumed.ID)
	}
	if st.Pending != nil {
		t.Fatalf("pending must be cleared after resume")
	}

	last := st.Messages[len(st.Messages)-1]
	if last.Role != RoleCapabilityResult {
		t.Fatalf("expected capability-result message, got %s", last.Role)
	}
	if last.Content != "out of scope, decline politely" {
		t.Fatalf("feedback must land in history verbatim, got %q", last.Content)
	}
	if last.Capability != "human_escalation" {
		t.Fatalf("unexpected capability on resume message: %s", last.Capability)
	}

	if st.Invocations[0].Status != InvocationCompleted {
		t.Fatalf("escalation invocation must be completed by resume")
	}
	if st.Invocations[0].Result != "out of scope, decline politely" {
		t.Fatalf("feedback must become the invocation result")
	}
}

func TestSuspendTwiceFails(t *testing.T) {
	t.Parallel()

	now := testTime()
	st := NewThreadState("t1", now)
	inv := st.BeginInvocation("human_escalation", "q1", now)
	if _, err := st.Suspend(inv.ID, "q1", now); err != nil {
		t.Fatalf("first Suspend() error = %v", err)
	}

	inv2 := st.BeginInvocation("human_escalation", "q2", now)
	_, err := st.Suspend(inv2.ID, "q2", now)
	if !errors.Is(err, ErrDoubleSuspension) {
		t.Fatalf("expected ErrDoubleSuspension, got %v", err)
	}
}

func TestResumeWithoutPending(t *testing.T) {
	t.Parallel()

	st := NewThreadState("t1", testTime())
	_, err := st.Resume("feedback", testTime())
	if !errors.Is(err, ErrNoPendingSuspension) {
		t.Fatalf("expected ErrNoPendingSuspension, got %v", err)
	}
}

func TestCompleteInvocationUnknownID(t *testing.T) {
	t.Parallel()

	st := NewThreadState("t1", testTime())
	err := st.CompleteInvocation("missing", "result", testTime())
	if !errors.Is(err, ErrInvocationNotFound) {
		t.Fatalf("expected ErrInvocationNotFound, got %v", err)
	}
}

func TestValidateRejectsBadStates(t *testing.T) {
	t.Parallel()

	now := testTime()

	empty := NewThreadState("  ", now)
	if err := empty.Validate(); !errors.Is(err, ErrInvalidThread) {
		t.Fatalf("expected ErrInvalidThread, got %v", err)
	}

	st := NewThreadState("t1", now)
	st.Messages = append(st.Messages, Message{Role: "weird", Content: "x"})
	if err := st.Validate(); err == nil {
		t.Fatalf("expected invalid role to fail validation")
	}

	// Pending suspension referencing a completed invocation is corrupt.
	st2 := NewThreadState("t2", now)
	inv := st2.BeginInvocation("human_escalation", "q", now)
	if _, err := st2.Suspend(inv.ID, "q", now); err != nil {
		t.Fatalf("Suspend() error = %v", err)
	}
	if err := st2.CompleteInvocation(inv.ID, "done", now); err != nil {
		t.Fatalf("CompleteInvocation() error = %v", err)
	}
	if err := st2.Validate(); err == nil {
		t.Fatalf("expected suspension over completed invocation to fail validation")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()

	now := testTime()
	st := NewThreadState("t1", now)
	st.AppendUser("hello")
	inv := st.BeginInvocation("document_retrieval", "hello", now)
	if err := st.CompleteInvocation(inv.ID, "doc says hi", now); err != nil {
		t.Fatalf("CompleteInvocation() error = %v", err)
	}

	clone := st.Clone()
	clone.AppendAssistant("mutated")
	clone.Invocations[0].Result = "mutated"

	if len(st.Messages) != 1 {
		t.Fatalf("clone append leaked into original")
	}
	if st.Invocations[0].Result != "doc says hi" {
		t.Fatalf("clone mutation leaked into original invocation")
	}
}
