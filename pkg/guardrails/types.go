// Package guardrails validates the PhaseOrchestrator's phase transitions
// and synthesizes the control messages injected after phase boundaries and
// tool/sub-agent calls (spec.md §4.4).
//
// The message templates and the Thought/Action/Observation execution-output
// validator are grounded on the teacher's pkg/agent/controller/react.go
// (the ReAct loop's iteration state machine) and
// pkg/agent/orchestrator/types.go's OrchestratorGuardrails/SubAgentResult
// shapes, generalized from "sub-agent dispatch" tool-call guardrails to the
// spec's debugger/file-edit/search/shell tool-specific guardrails. The
// append-only buffer mirrors the teacher's SubAgentRunner: a mutex-guarded
// slice whose append order is its emission order (no separate counter).
package guardrails

import "time"

// Phase is one of the four PhaseOrchestrator states a guardrail message may
// be associated with.
type Phase string

const (
	PhaseMetadata  Phase = "metadata"
	PhasePareto    Phase = "pareto"
	PhaseStrategic Phase = "strategic"
	PhaseExecution Phase = "execution"
)

// MessageType classifies a guardrail message (spec.md §3, Guardrail message).
type MessageType string

const (
	MessageTypePhaseTransition MessageType = "phase_transition"
	MessageTypeToolCall        MessageType = "tool_call"
	MessageTypeValidation      MessageType = "validation"
	MessageTypeRetry           MessageType = "retry"
)

// Message is a synthetic control message injected into the next model
// turn. The buffer holding these is append-only.
type Message struct {
	Type      MessageType
	Phase     Phase
	Body      string
	Timestamp time.Time
	Metadata  map[string]any
}

// allowedTransitions is the exhaustive set from spec.md §4.4. Any
// transition not present here is rejected.
var allowedTransitions = map[Phase]Phase{
	PhaseMetadata:  PhasePareto,
	PhasePareto:    PhaseStrategic,
	PhaseStrategic: PhaseExecution,
}

// isAllowed reports whether transitioning from -> to is permitted.
func isAllowed(from, to Phase) bool {
	next, ok := allowedTransitions[from]
	return ok && next == to
}
