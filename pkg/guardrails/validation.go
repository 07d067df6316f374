package guardrails

import (
	"fmt"
	"time"

	"github.com/codeready-toolchain/swarmweave/pkg/swarmerrors"
)

// ParetoItem is one entry of a Pareto-phase output.
type ParetoItem struct {
	Path   string
	Reason string
}

// maxParetoItems and maxParetoReasonChars bound a Pareto output per
// spec.md §4.4.
const (
	maxParetoItems       = 5
	maxParetoReasonChars = 200
)

// ValidatePareto checks items against spec.md §4.4's Pareto validation
// rule: a list of at most 5 elements, each with a non-empty path and a
// reason of at most ~200 characters. On failure it also appends a
// validation guardrail message so the next model turn sees what was wrong.
func (m *Manager) ValidatePareto(items []ParetoItem) error {
	if len(items) == 0 {
		return m.validationFailure(PhasePareto, "pareto output must be a non-empty list")
	}
	if len(items) > maxParetoItems {
		return m.validationFailure(PhasePareto, fmt.Sprintf("pareto output has %d items, maximum is %d", len(items), maxParetoItems))
	}
	for i, it := range items {
		if it.Path == "" {
			return m.validationFailure(PhasePareto, fmt.Sprintf("item %d: path is required", i))
		}
		if it.Reason == "" {
			return m.validationFailure(PhasePareto, fmt.Sprintf("item %d: reason is required", i))
		}
		if len(it.Reason) > maxParetoReasonChars {
			return m.validationFailure(PhasePareto, fmt.Sprintf("item %d: reason exceeds %d characters", i, maxParetoReasonChars))
		}
	}
	return nil
}

// StrategicOutput is the Strategic phase's plan payload.
type StrategicOutput struct {
	Proceed    string // must equal StrategicSentinel
	TokenCount int
}

const maxStrategicTokens = 350

// ValidateStrategic checks out against spec.md §4.4's Strategic validation
// rule: the plan's Proceed field must equal the fixed sentinel, and its
// token count must be within budget.
func (m *Manager) ValidateStrategic(out StrategicOutput) error {
	if out.Proceed != StrategicSentinel {
		return m.validationFailure(PhaseStrategic, fmt.Sprintf("plan is missing the sentinel %q", StrategicSentinel))
	}
	if out.TokenCount > maxStrategicTokens {
		return m.validationFailure(PhaseStrategic, fmt.Sprintf("plan is %d tokens, maximum is %d", out.TokenCount, maxStrategicTokens))
	}
	return nil
}

// ExecutionStep is one Thought/Action/Observation triple.
type ExecutionStep struct {
	Thought     string
	Action      string
	Observation string
}

// ValidateExecution checks steps against spec.md §4.4's Execution
// validation rule: every element must carry a thought, an action, and an
// observation.
func (m *Manager) ValidateExecution(steps []ExecutionStep) error {
	if len(steps) == 0 {
		return m.validationFailure(PhaseExecution, "execution output must be a non-empty list")
	}
	for i, s := range steps {
		if s.Thought == "" || s.Action == "" || s.Observation == "" {
			return m.validationFailure(PhaseExecution, fmt.Sprintf("step %d is missing thought, action, or observation", i))
		}
	}
	return nil
}

func (m *Manager) validationFailure(phase Phase, reason string) error {
	m.appendMessage(Message{
		Type:      MessageTypeValidation,
		Phase:     phase,
		Body:      "Validation failed: " + reason + ". Revise and resubmit.",
		Timestamp: time.Now(),
	})
	return swarmerrors.NewValidationError(string(phase), "", "", fmt.Errorf("%s", reason))
}
