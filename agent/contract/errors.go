package contract

import "errors"

var (
	ErrValidation          = errors.New("validation failed")
	ErrSchemaViolation     = errors.New("model response violates schema")
	ErrOracleUnavailable   = errors.New("reasoning oracle unavailable")
	ErrRoutingLoopExceeded = errors.New("routing loop exceeded dispatch bound")
	ErrThreadBusy          = errors.New("thread has a pending suspension")
	ErrUnknownCapability   = errors.New("unknown capability")

	// Capability-level failures. The supervisor absorbs these and surfaces
	// them to the oracle as capability-result text, never as call errors.
	ErrRetrievalUnavailable = errors.New("document index unavailable")
	ErrQueryGeneration      = errors.New("sql generation failed")
	ErrQueryExecution       = errors.New("sql execution failed")
)
