package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	contractx "github.com/supportflow-ai/supportflow/agent/contract"
	llmx "github.com/supportflow-ai/supportflow/agent/llm"
)

// LLMOracle implements contract.Oracle on top of a chat model that emits one
// routing decision per reasoning step as a JSON object.
type LLMOracle struct {
	runner compose.Runnable[map[string]any, llmDecision]
}

type llmDecision struct {
	Action     string `json:"action"`
	Answer     string `json:"answer,omitempty"`
	Capability string `json:"capability,omitempty"`
	Input      string `json:"input,omitempty"`
}

func New(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*LLMOracle, error) {
	runner, err := llmx.CompileStructuredGraph[llmDecision](ctx, chatModel, systemPrompt, "oracle.decision_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile oracle graph: %v", contractx.ErrOracleUnavailable, err)
	}
	return &LLMOracle{runner: runner}, nil
}

func (o *LLMOracle) Decide(ctx context.Context, req contractx.DecisionRequest) (contractx.Decision, error) {
	if len(req.History) == 0 {
		return contractx.Decision{}, fmt.Errorf("%w: decision request has empty history", contractx.ErrValidation)
	}

	payload := map[string]any{
		"history":      req.History,
		"capabilities": req.Capabilities,
	}
	inputBytes, err := json.Marshal(payload)
	if err != nil {
		return contractx.Decision{}, fmt.Errorf("%w: marshal decision payload: %v", contractx.ErrValidation, err)
	}

	out, err := o.runner.Invoke(ctx, map[string]any{
		"input": string(inputBytes),
	})
	if err != nil {
		return contractx.Decision{}, fmt.Errorf("%w: oracle invoke: %v", contractx.ErrOracleUnavailable, err)
	}

	decision := contractx.Decision{
		Action:     contractx.DecisionAction(strings.TrimSpace(out.Action)),
		Answer:     strings.TrimSpace(out.Answer),
		Capability: contractx.CapabilityName(strings.TrimSpace(out.Capability)),
		Input:      strings.TrimSpace(out.Input),
	}
	if err := validateDecision(decision, req.Capabilities); err != nil {
		return contractx.Decision{}, err
	}
	return decision, nil
}

func validateDecision(d contractx.Decision, capabilities []contractx.CapabilityDescriptor) error {
	switch d.Action {
	case contractx.ActionFinalAnswer:
		if d.Answer == "" {
			return fmt.Errorf("%w: final answer is empty", contractx.ErrSchemaViolation)
		}
		return nil
	case contractx.ActionInvoke:
		if d.Input == "" {
			return fmt.Errorf("%w: invocation input is empty", contractx.ErrSchemaViolation)
		}
		for _, c := range capabilities {
			if c.Name == d.Capability {
				return nil
			}
		}
		return fmt.Errorf("%w: unknown capability=%q", contractx.ErrSchemaViolation, d.Capability)
	default:
		return fmt.Errorf("%w: unknown action=%q", contractx.ErrSchemaViolation, d.Action)
	}
}
