package contract

import (
	checkpointx "github.com/supportflow-ai/supportflow/agent/checkpoint"
)

type CapabilityName string

const (
	CapabilityDocumentRetrieval CapabilityName = "document_retrieval"
	CapabilityStructuredData    CapabilityName = "structured_data"
	CapabilityHumanEscalation   CapabilityName = "human_escalation"
)

// CapabilityDescriptor is what the reasoning oracle sees when choosing
// where to route a request.
type CapabilityDescriptor struct {
	Name      CapabilityName `json:"name"`
	Purpose   string         `json:"purpose"`
	InputHint string         `json:"input_hint"`
}

type DecisionRequest struct {
	History      []checkpointx.Message  `json:"history"`
	Capabilities []CapabilityDescriptor `json:"capabilities"`
}

type DecisionAction string

const (
	ActionFinalAnswer DecisionAction = "final_answer"
	ActionInvoke      DecisionAction = "invoke"
)

// Decision is the oracle's verdict for one reasoning step: either the turn
// is complete (Answer) or one capability should run next (Capability+Input).
type Decision struct {
	Action     DecisionAction `json:"action"`
	Answer     string         `json:"answer,omitempty"`
	Capability CapabilityName `json:"capability,omitempty"`
	Input      string         `json:"input,omitempty"`
}

type OutcomeStatus string

const (
	OutcomeAnswered  OutcomeStatus = "answered"
	OutcomeSuspended OutcomeStatus = "suspended"
)

// Outcome is the terminal result of one SubmitQuery/SubmitFeedback call.
type Outcome struct {
	Status          OutcomeStatus `json:"status"`
	Text            string        `json:"text,omitempty"`
	EscalationQuery string        `json:"escalation_query,omitempty"`
}

func Answered(text string) Outcome {
	return Outcome{Status: OutcomeAnswered, Text: text}
}

func Suspended(escalationQuery string) Outcome {
	return Outcome{Status: OutcomeSuspended, EscalationQuery: escalationQuery}
}

func (o Outcome) Answered() bool {
	return o.Status == OutcomeAnswered
}

func (o Outcome) Suspended() bool {
	return o.Status == OutcomeSuspended
}

// TraceEvent describes one capability dispatch for the observability sink.
type TraceEvent struct {
	ThreadID   string         `json:"thread_id"`
	Capability CapabilityName `json:"capability"`
	Input      string         `json:"input"`
	Output     string         `json:"output"`
	DurationMS int64          `json:"duration_ms"`
}
