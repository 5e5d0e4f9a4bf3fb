package supervisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	checkpointx "github.com/supportflow-ai/supportflow/agent/checkpoint"
	contractx "github.com/supportflow-ai/supportflow/agent/contract"
)

var (
	ErrInvalidThread  = errors.New("thread id is empty")
	ErrInvalidMessage = errors.New("message is empty")
)

const defaultMaxDispatches = 8

type Config struct {
	// MaxDispatches bounds the number of capability dispatches a single call
	// may perform before it fails with ErrRoutingLoopExceeded.
	MaxDispatches int
}

// Supervisor runs the reasoning/dispatch loop for a conversation: it loads
// the thread checkpoint, drives the oracle, dispatches to capabilities,
// commits state, and returns either an answer or a suspension.
//
// A thread's persisted state only ever reflects the terminal state of the
// last completed call: every failure path returns before Commit.
type Supervisor struct {
	store        checkpointx.Store
	oracle       contractx.Oracle
	capabilities contractx.Registry
	trace        contractx.TraceSink

	maxDispatches int
	now           func() time.Time
}

func New(
	store checkpointx.Store,
	oracle contractx.Oracle,
	capabilities contractx.Registry,
	trace contractx.TraceSink,
	cfg Config,
) (*Supervisor, error) {
	if store == nil {
		return nil, errors.New("checkpoint store is required")
	}
	if oracle == nil {
		return nil, errors.New("reasoning oracle is required")
	}
	if capabilities == nil {
		return nil, errors.New("capability registry is required")
	}
	if trace == nil {
		trace = noopTraceSink{}
	}

	maxDispatches := cfg.MaxDispatches
	if maxDispatches <= 0 {
		maxDispatches = defaultMaxDispatches
	}

	return &Supervisor{
		store:         store,
		oracle:        oracle,
		capabilities:  capabilities,
		trace:         trace,
		maxDispatches: maxDispatches,
		now:           time.Now,
	}, nil
}

// SubmitQuery starts (or continues) a conversation with a new user message.
// A thread with a pending suspension rejects new queries with ErrThreadBusy;
// the caller must resolve the suspension through SubmitFeedback first.
func (s *Supervisor) SubmitQuery(ctx context.Context, threadID, text string) (contractx.Outcome, error) {
	threadID = strings.TrimSpace(threadID)
	if threadID == "" {
		return contractx.Outcome{}, ErrInvalidThread
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return contractx.Outcome{}, ErrInvalidMessage
	}

	st, err := s.store.Load(ctx, threadID)
	if err != nil {
		return contractx.Outcome{}, err
	}
	if st.Pending != nil {
		return contractx.Outcome{}, fmt.Errorf("%w: thread=%s", contractx.ErrThreadBusy, threadID)
	}

	loadedSeq := st.Sequence
	st.AppendUser(text)
	return s.runLoop(ctx, st, loadedSeq)
}

// SubmitFeedback resolves a pending suspension: the feedback text becomes the
// escalation capability's result and the reasoning loop re-enters from the
// extended history. The feedback is opaque; only non-emptiness is checked.
func (s *Supervisor) SubmitFeedback(ctx context.Context, threadID, feedback string) (contractx.Outcome, error) {
	threadID = strings.TrimSpace(threadID)
	if threadID == "" {
		return contractx.Outcome{}, ErrInvalidThread
	}
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return contractx.Outcome{}, ErrInvalidMessage
	}

	st, err := s.store.Load(ctx, threadID)
	if err != nil {
		return contractx.Outcome{}, err
	}

	loadedSeq := st.Sequence
	if _, err := st.Resume(feedback, s.now()); err != nil {
		return contractx.Outcome{}, err
	}
	return s.runLoop(ctx, st, loadedSeq)
}

// runLoop drives Reasoning -> Dispatching until the oracle declares the turn
// complete, the escalation capability suspends it, or the dispatch bound is
// hit. State is committed exactly once, at a terminal state.
func (s *Supervisor) runLoop(ctx context.Context, st *checkpointx.ThreadState, expectedSeq int64) (contractx.Outcome, error) {
	dispatches := 0
	descriptors := s.capabilities.Descriptors()

	for {
		decision, err := s.oracle.Decide(ctx, contractx.DecisionRequest{
			History:      st.Messages,
			Capabilities: descriptors,
		})
		if err != nil {
			return contractx.Outcome{}, fmt.Errorf("%w: %v", contractx.ErrOracleUnavailable, err)
		}

		switch decision.Action {
		case contractx.ActionFinalAnswer:
			answer := strings.TrimSpace(decision.Answer)
			if answer == "" {
				return contractx.Outcome{}, fmt.Errorf("%w: oracle returned empty final answer", contractx.ErrSchemaViolation)
			}
			st.AppendAssistant(answer)
			if err := s.store.Commit(ctx, expectedSeq, st); err != nil {
				return contractx.Outcome{}, err
			}
			return contractx.Answered(answer), nil

		case contractx.ActionInvoke:
			if decision.Capability == contractx.CapabilityHumanEscalation {
				return s.suspend(ctx, st, expectedSeq, decision.Input)
			}

			if dispatches >= s.maxDispatches {
				return contractx.Outcome{}, fmt.Errorf("%w: thread=%s max=%d",
					contractx.ErrRoutingLoopExceeded, st.ThreadID, s.maxDispatches)
			}
			dispatches++
			if err := s.dispatch(ctx, st, decision); err != nil {
				return contractx.Outcome{}, err
			}

		default:
			return contractx.Outcome{}, fmt.Errorf("%w: unknown oracle action=%q", contractx.ErrSchemaViolation, decision.Action)
		}
	}
}

// dispatch invokes one capability and appends its result to history.
// Capability failures are absorbed into the result text so the oracle can
// retry or escalate; context cancellation aborts the call instead.
func (s *Supervisor) dispatch(ctx context.Context, st *checkpointx.ThreadState, decision contractx.Decision) error {
	started := s.now()
	inv := st.BeginInvocation(string(decision.Capability), decision.Input, started)
	invocationID := inv.ID

	output, err := s.capabilities.Invoke(ctx, decision.Capability, decision.Input)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, contractx.ErrUnknownCapability) {
			return err
		}
		output = fmt.Sprintf("capability %s failed: %v", decision.Capability, err)
	}

	finished := s.now()
	if err := st.CompleteInvocation(invocationID, output, finished); err != nil {
		return err
	}
	st.AppendCapabilityResult(string(decision.Capability), output)

	ev := contractx.TraceEvent{
		ThreadID:   st.ThreadID,
		Capability: decision.Capability,
		Input:      decision.Input,
		Output:     output,
		DurationMS: finished.Sub(started).Milliseconds(),
	}
	if err := s.trace.Record(ctx, ev); err != nil {
		log.Warn().Err(err).
			Str("thread_id", st.ThreadID).
			Str("capability", string(decision.Capability)).
			Msg("trace sink unavailable")
	}
	return nil
}

// suspend records the escalation and returns the suspension descriptor to the
// caller instead of looping. The escalation invocation stays open until
// SubmitFeedback supplies its result.
func (s *Supervisor) suspend(ctx context.Context, st *checkpointx.ThreadState, expectedSeq int64, query string) (contractx.Outcome, error) {
	now := s.now()
	inv := st.BeginInvocation(string(contractx.CapabilityHumanEscalation), query, now)
	if _, err := st.Suspend(inv.ID, query, now); err != nil {
		return contractx.Outcome{}, err
	}
	if err := s.store.Commit(ctx, expectedSeq, st); err != nil {
		return contractx.Outcome{}, err
	}
	return contractx.Suspended(query), nil
}

type noopTraceSink struct{}

func (noopTraceSink) Record(context.Context, contractx.TraceEvent) error {
	return nil
}
