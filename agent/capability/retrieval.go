package capability

import (
	"context"
	"errors"
	"fmt"
	"strings"

	contractx "github.com/supportflow-ai/supportflow/agent/contract"
)

// DocumentRetrieval answers product questions from the document corpus. It is
// deterministic given an unchanged corpus; index failures surface as
// ErrRetrievalUnavailable and are absorbed by the supervisor, not fatal.
type DocumentRetrieval struct {
	retriever contractx.Retriever
}

func NewDocumentRetrieval(retriever contractx.Retriever) *DocumentRetrieval {
	return &DocumentRetrieval{retriever: retriever}
}

func (c *DocumentRetrieval) Descriptor() contractx.CapabilityDescriptor {
	return contractx.CapabilityDescriptor{
		Name:      contractx.CapabilityDocumentRetrieval,
		Purpose:   "Answer product-related questions (details, technical specifications, features, compatibility, pricing, availability) from the product documentation.",
		InputHint: "Natural language product question",
	}
}

func (c *DocumentRetrieval) Invoke(ctx context.Context, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("%w: retrieval input is empty", contractx.ErrValidation)
	}
	out, err := c.retriever.Retrieve(ctx, input)
	if err != nil {
		if errors.Is(err, contractx.ErrRetrievalUnavailable) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", contractx.ErrRetrievalUnavailable, err)
	}
	return out, nil
}
