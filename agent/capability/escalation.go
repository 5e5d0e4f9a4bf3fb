package capability

import (
	"context"
	"fmt"

	contractx "github.com/supportflow-ai/supportflow/agent/contract"
)

// HumanEscalation never completes inside Invoke: the supervisor intercepts it
// before dispatch and records a suspension. Its result is always supplied
// externally through SubmitFeedback.
type HumanEscalation struct{}

func NewHumanEscalation() *HumanEscalation {
	return &HumanEscalation{}
}

func (c *HumanEscalation) Descriptor() contractx.CapabilityDescriptor {
	return contractx.CapabilityDescriptor{
		Name:      contractx.CapabilityHumanEscalation,
		Purpose:   "Request human feedback for queries the other capabilities cannot answer or that are out of scope.",
		InputHint: "The query that requires human attention",
	}
}

func (c *HumanEscalation) Invoke(ctx context.Context, input string) (string, error) {
	return "", fmt.Errorf("%w: human escalation has no direct result; it must suspend the thread", contractx.ErrValidation)
}
