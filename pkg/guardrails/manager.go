package guardrails

import (
	"fmt"
	"sync"
	"time"

	"github.com/codeready-toolchain/swarmweave/pkg/swarmerrors"
)

// Transition records one phase change for the history log returned by
// History(); CurrentPhase() reports the last entry's To field.
type Transition struct {
	From Phase
	To   Phase
	At   time.Time
}

// Manager validates phase transitions, maintains the append-only guardrail
// message buffer, and synthesizes tool/sub-agent/retry guardrail messages.
// All methods are safe for concurrent use; the buffer and history share one
// mutex since every mutation append-only-extends one of two slices in
// lockstep with a transition (spec.md §5 "The GuardrailManager buffer is
// append-only and serialized").
type Manager struct {
	mu      sync.Mutex
	buffer  []Message
	history []Transition
}

// New creates an empty GuardrailManager.
func New() *Manager {
	return &Manager{}
}

// RecordTransition validates from -> to against the allowed set (spec.md
// §4.4) and, on success, appends a phase-transition guardrail message
// instructing the next model turn per the target phase's contract.
// Invalid transitions return swarmerrors.ErrInvalidTransition and do not
// mutate the buffer or history.
func (m *Manager) RecordTransition(from, to Phase) error {
	if !isAllowed(from, to) {
		return fmt.Errorf("guardrails: %s -> %s: %w", from, to, swarmerrors.ErrInvalidTransition)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	m.history = append(m.history, Transition{From: from, To: to, At: now})
	m.buffer = append(m.buffer, Message{
		Type:      MessageTypePhaseTransition,
		Phase:     to,
		Body:      transitionBody(to),
		Timestamp: now,
	})
	return nil
}

// transitionBody synthesizes the pre-execution guardrail text for entering
// phase (spec.md §4.4 message templates; exact semantics, not wording).
func transitionBody(to Phase) string {
	switch to {
	case PhasePareto:
		return "Produce a ranked list of at most 5 most-impactful files or modules, " +
			"each with a quantitative justification. Use deterministic decoding (temperature 0)."
	case PhaseStrategic:
		return "Compose a first-person implementation plan of at most 350 tokens covering " +
			"setup, ordered implementation steps, a testing plan, a rollback plan, and open " +
			"questions. End the plan with the sentinel: " + StrategicSentinel
	case PhaseExecution:
		return "Iterate the plan's steps in a Thought -> Action -> Observation loop until every " +
			"step is addressed."
	default:
		return ""
	}
}

// StrategicSentinel is the fixed string the Strategic phase's plan is asked
// to end with; ValidateStrategic accepts an output only when its Proceed
// field equals it (spec.md §3, "Sentinel").
const StrategicSentinel = "PLAN_READY_FOR_EXECUTION"

// CurrentPhase returns the last recorded transition's destination phase, or
// "" if no transition has been recorded yet.
func (m *Manager) CurrentPhase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.history) == 0 {
		return ""
	}
	return m.history[len(m.history)-1].To
}

// History returns a copy of every recorded transition, in order.
func (m *Manager) History() []Transition {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Transition(nil), m.history...)
}

// Messages returns a copy of the current guardrail message buffer, in
// emission order.
func (m *Manager) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.buffer...)
}

// Clear resets the buffer and transition history.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buffer = nil
	m.history = nil
}

func (m *Manager) appendMessage(msg Message) {
	m.mu.Lock()
	m.buffer = append(m.buffer, msg)
	m.mu.Unlock()
}
