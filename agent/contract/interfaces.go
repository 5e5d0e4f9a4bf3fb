package contract

import "context"

// Oracle selects the next capability to invoke, or declares the turn done.
// Implementations are substitutable; tests use deterministic stubs.
type Oracle interface {
	Decide(ctx context.Context, req DecisionRequest) (Decision, error)
}

type Capability interface {
	Descriptor() CapabilityDescriptor
	Invoke(ctx context.Context, input string) (string, error)
}

// Registry is the closed capability set the supervisor dispatches through.
type Registry interface {
	Descriptors() []CapabilityDescriptor
	Invoke(ctx context.Context, name CapabilityName, input string) (string, error)
}

// Retriever is the opaque document-retrieval collaborator.
type Retriever interface {
	Retrieve(ctx context.Context, query string) (string, error)
}

// Answerer is the opaque structured-data collaborator.
type Answerer interface {
	Answer(ctx context.Context, query string) (string, error)
}

// TraceSink receives one event per capability dispatch. Sink failures must
// never fail the dispatching call.
type TraceSink interface {
	Record(ctx context.Context, ev TraceEvent) error
}
