package capability

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/supportflow-ai/supportflow/agent/contract"
)

// Registry holds the closed capability set. The variant set is fixed at
// construction; dispatch outside it fails with ErrUnknownCapability.
type Registry struct {
	order        []contractx.CapabilityName
	capabilities map[contractx.CapabilityName]contractx.Capability
}

func NewRegistry(retriever contractx.Retriever, answerer contractx.Answerer) (*Registry, error) {
	if retriever == nil {
		return nil, errors.New("retriever is required")
	}
	if answerer == nil {
		return nil, errors.New("answerer is required")
	}

	caps := []contractx.Capability{
		NewDocumentRetrieval(retriever),
		NewStructuredData(answerer),
		NewHumanEscalation(),
	}

	r := &Registry{
		capabilities: make(map[contractx.CapabilityName]contractx.Capability, len(caps)),
	}
	for _, c := range caps {
		name := c.Descriptor().Name
		r.order = append(r.order, name)
		r.capabilities[name] = c
	}
	return r, nil
}

// Descriptors returns the capability contracts in stable order, as presented
// to the reasoning oracle.
func (r *Registry) Descriptors() []contractx.CapabilityDescriptor {
	out := make([]contractx.CapabilityDescriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.capabilities[name].Descriptor())
	}
	return out
}

func (r *Registry) Invoke(ctx context.Context, name contractx.CapabilityName, input string) (string, error) {
	c, ok := r.capabilities[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", contractx.ErrUnknownCapability, name)
	}
	return c.Invoke(ctx, input)
}
