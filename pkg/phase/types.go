// Package phase drives a session through the four-phase state machine from
// spec.md §4.6: Metadata -> Pareto -> Strategic -> Execution. Each
// transition is recorded via pkg/guardrails, which rejects anything outside
// the allowed sequence and synthesizes the pre-execution guardrail message
// for the destination phase.
//
// The state machine itself is grounded on the teacher's pkg/session
// (Session.SetStatus/SetError/Clone: a mutex-guarded struct whose status
// field only ever advances through a fixed set of terminal/non-terminal
// values), generalized from tarsy's single pending->processing->terminal
// status field to the spec's four-phase sequence with a full transition
// log instead of a single Status field.
package phase

import (
	"time"

	"github.com/codeready-toolchain/swarmweave/pkg/guardrails"
)

// Outcome is the final disposition of a session (spec.md §7 "the session
// result always distinguishes TASK COMPLETE, BLOCKED, FAILED, CANCELLED").
type Outcome string

const (
	OutcomeTaskComplete Outcome = "TASK COMPLETE"
	OutcomeBlocked      Outcome = "BLOCKED"
	OutcomeFailed       Outcome = "FAILED"
	OutcomeCancelled    Outcome = "CANCELLED"
	// outcomeRunning is an internal zero-value signaling "keep running";
	// never returned as a session's final Outcome.
	outcomeRunning Outcome = ""
)

// CompletionInput is the session output the default completion predicate
// (and any override) inspects after the Execution phase (spec.md §4.6).
type CompletionInput struct {
	TestsPassed bool
	TodoItems   []string
	Blockers    []string
}

// CompletionPredicate decides a session's outcome from its Execution-phase
// output. Returning "" means "keep running" (spec.md §4.6 default predicate
// "otherwise returns null").
type CompletionPredicate func(CompletionInput) Outcome

// DefaultCompletionPredicate implements spec.md §4.6's default rule:
// TASK COMPLETE when testsPassed and no outstanding todoItems; BLOCKED when
// blockers is non-empty; otherwise keep running.
func DefaultCompletionPredicate(in CompletionInput) Outcome {
	if len(in.Blockers) > 0 {
		return OutcomeBlocked
	}
	if in.TestsPassed && len(in.TodoItems) == 0 {
		return OutcomeTaskComplete
	}
	return outcomeRunning
}

// Result is the PhaseOrchestrator's final session summary.
type Result struct {
	TaskID            string
	Outcome           Outcome
	Phase             guardrails.Phase
	StartedAt         time.Time
	EndedAt           time.Time
	ParetoOutput      []guardrails.ParetoItem
	StrategicOutput   guardrails.StrategicOutput
	StrategicText     string
	GuardrailMessages []guardrails.Message
}
