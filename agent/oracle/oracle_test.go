package oracle

import (
	"context"
	"errors"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	checkpointx "github.com/supportflow-ai/supportflow/agent/checkpoint"
	contractx "github.com/supportflow-ai/supportflow/agent/contract"
)

type fakeToolCallingModel struct {
	responses []*schema.Message
	err       error
	idx       int
}

func (f *fakeToolCallingModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	msg := f.responses[f.idx]
	f.idx++
	return msg, nil
}

func (f *fakeToolCallingModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func (f *fakeToolCallingModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	return f, nil
}

func testRequest() contractx.DecisionRequest {
	return contractx.DecisionRequest{
		History: []checkpointx.Message{
			{Role: checkpointx.RoleUser, Content: "how long is the battery life?"},
		},
		Capabilities: []contractx.CapabilityDescriptor{
			{Name: contractx.CapabilityDocumentRetrieval, Purpose: "product docs"},
			{Name: contractx.CapabilityHumanEscalation, Purpose: "human review"},
		},
	}
}

func newTestOracle(t *testing.T, fake *fakeToolCallingModel) *LLMOracle {
	t.Helper()
	o, err := New(context.Background(), fake, "routing prompt")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return o
}

func TestDecideInvoke(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{Content: `{"action":"invoke","capability":"document_retrieval","input":"AeroBuds battery life"}`},
		},
	}

	o := newTestOracle(t, fake)
	decision, err := o.Decide(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if decision.Action != contractx.ActionInvoke {
		t.Fatalf("expected invoke action, got %s", decision.Action)
	}
	if decision.Capability != contractx.CapabilityDocumentRetrieval {
		t.Fatalf("unexpected capability: %s", decision.Capability)
	}
	if decision.Input != "AeroBuds battery life" {
		t.Fatalf("unexpected input: %q", decision.Input)
	}
}

func TestDecideFinalAnswer(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{Content: `{"action":"final_answer","answer":"2 weeks on standby."}`},
		},
	}

	o := newTestOracle(t, fake)
	decision, err := o.Decide(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if decision.Action != contractx.ActionFinalAnswer {
		t.Fatalf("expected final_answer action, got %s", decision.Action)
	}
	if decision.Answer != "2 weeks on standby." {
		t.Fatalf("unexpected answer: %q", decision.Answer)
	}
}

func TestDecideEmptyHistory(t *testing.T) {
	t.Parallel()

	o := newTestOracle(t, &fakeToolCallingModel{})
	_, err := o.Decide(context.Background(), contractx.DecisionRequest{})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestDecideModelFailure(t *testing.T) {
	t.Parallel()

	o := newTestOracle(t, &fakeToolCallingModel{err: errors.New("upstream 503")})
	_, err := o.Decide(context.Background(), testRequest())
	if !errors.Is(err, contractx.ErrOracleUnavailable) {
		t.Fatalf("expected ErrOracleUnavailable, got %v", err)
	}
}

func TestDecideSchemaViolations(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content string
	}{
		{name: "unknown action", content: `{"action":"ponder"}`},
		{name: "empty final answer", content: `{"action":"final_answer","answer":"  "}`},
		{name: "invoke without input", content: `{"action":"invoke","capability":"document_retrieval"}`},
		{name: "invoke unknown capability", content: `{"action":"invoke","capability":"telepathy","input":"x"}`},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fake := &fakeToolCallingModel{
				responses: []*schema.Message{{Content: tc.content}},
			}
			o := newTestOracle(t, fake)
			_, err := o.Decide(context.Background(), testRequest())
			if !errors.Is(err, contractx.ErrSchemaViolation) {
				t.Fatalf("expected ErrSchemaViolation, got %v", err)
			}
		})
	}
}
