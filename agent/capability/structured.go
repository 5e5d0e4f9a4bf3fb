package capability

import (
	"context"
	"errors"
	"fmt"
	"strings"

	contractx "github.com/supportflow-ai/supportflow/agent/contract"
)

// StructuredData answers questions about transactions and records by
// translating them into queries against the support database.
type StructuredData struct {
	answerer contractx.Answerer
}

func NewStructuredData(answerer contractx.Answerer) *StructuredData {
	return &StructuredData{answerer: answerer}
}

func (c *StructuredData) Descriptor() contractx.CapabilityDescriptor {
	return contractx.CapabilityDescriptor{
		Name:      contractx.CapabilityStructuredData,
		Purpose:   "Answer questions about customers, orders, reviews, and returns by querying the support database, e.g. 'summarize the feedbacks of product with ratings less than or equal to 3'.",
		InputHint: "Natural language question about stored records",
	}
}

func (c *StructuredData) Invoke(ctx context.Context, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("%w: structured-data input is empty", contractx.ErrValidation)
	}
	out, err := c.answerer.Answer(ctx, input)
	if err != nil {
		if errors.Is(err, contractx.ErrQueryGeneration) || errors.Is(err, contractx.ErrQueryExecution) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", contractx.ErrQueryExecution, err)
	}
	return out, nil
}
