package guardrails

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/swarmweave/pkg/swarmerrors"
)

func TestRecordTransitionAllowedSequence(t *testing.T) {
	m := New()
	require.NoError(t, m.RecordTransition(PhaseMetadata, PhasePareto))
	require.NoError(t, m.RecordTransition(PhasePareto, PhaseStrategic))
	require.NoError(t, m.RecordTransition(PhaseStrategic, PhaseExecution))
	assert.Equal(t, PhaseExecution, m.CurrentPhase())
	assert.Len(t, m.History(), 3)
}

func TestRecordTransitionRejectsSkippedPhase(t *testing.T) {
	m := New()
	err := m.RecordTransition(PhaseMetadata, PhaseStrategic)
	require.Error(t, err)
	assert.True(t, errors.Is(err, swarmerrors.ErrInvalidTransition))
	assert.Empty(t, m.History())
}

func TestRecordTransitionRejectsExecutionAsTerminal(t *testing.T) {
	m := New()
	require.NoError(t, m.RecordTransition(PhaseMetadata, PhasePareto))
	require.NoError(t, m.RecordTransition(PhasePareto, PhaseStrategic))
	require.NoError(t, m.RecordTransition(PhaseStrategic, PhaseExecution))
	err := m.RecordTransition(PhaseExecution, PhasePareto)
	require.Error(t, err)
	assert.True(t, errors.Is(err, swarmerrors.ErrInvalidTransition))
}

func TestValidateParetoRejectsTooManyItems(t *testing.T) {
	m := New()
	items := make([]ParetoItem, 6)
	for i := range items {
		items[i] = ParetoItem{Path: "a.go", Reason: "high churn"}
	}
	err := m.ValidatePareto(items)
	require.Error(t, err)
}

func TestValidateParetoAcceptsWellFormedList(t *testing.T) {
	m := New()
	items := []ParetoItem{
		{Path: "pkg/scheduler/scheduler.go", Reason: "owns the dispatch loop"},
		{Path: "pkg/blackboard/store.go", Reason: "shared state for every task"},
	}
	require.NoError(t, m.ValidatePareto(items))
}

func TestValidateStrategicRequiresSentinel(t *testing.T) {
	m := New()
	err := m.ValidateStrategic(StrategicOutput{Proceed: "nope", TokenCount: 10})
	require.Error(t, err)

	require.NoError(t, m.ValidateStrategic(StrategicOutput{Proceed: StrategicSentinel, TokenCount: 10}))
}

func TestValidateStrategicRejectsOverBudget(t *testing.T) {
	m := New()
	err := m.ValidateStrategic(StrategicOutput{Proceed: StrategicSentinel, TokenCount: 400})
	require.Error(t, err)
}

func TestValidateExecutionRequiresAllFields(t *testing.T) {
	m := New()
	err := m.ValidateExecution([]ExecutionStep{{Thought: "t", Action: "a", Observation: ""}})
	require.Error(t, err)

	require.NoError(t, m.ValidateExecution([]ExecutionStep{{Thought: "t", Action: "a", Observation: "o"}}))
}

func TestEmitToolGuardrailKnownAndUnknown(t *testing.T) {
	m := New()
	assert.True(t, m.EmitToolGuardrail(PhaseExecution, "shell", ToolOutcome{ExitCode: 1}))
	assert.True(t, m.EmitToolGuardrail(PhaseExecution, "debugger", ToolOutcome{StackFrames: []string{"main.go:10"}}))
	assert.False(t, m.EmitToolGuardrail(PhaseExecution, "unknown_tool", ToolOutcome{}))
	assert.Len(t, m.Messages(), 2)
}

func TestEmitRetryThenFallbackOrder(t *testing.T) {
	m := New()
	maxRetries := 3
	for n := 1; n <= maxRetries; n++ {
		m.EmitRetry(PhaseExecution, n, maxRetries, "fallback-model")
	}
	m.EmitRetry(PhaseExecution, maxRetries+1, maxRetries, "fallback-model")

	msgs := m.Messages()
	require.Len(t, msgs, 4)
	for i := 0; i < maxRetries; i++ {
		assert.Contains(t, msgs[i].Body, "Retry attempt")
	}
	assert.Contains(t, msgs[3].Body, "fallback model")
}

func TestClear(t *testing.T) {
	m := New()
	require.NoError(t, m.RecordTransition(PhaseMetadata, PhasePareto))
	m.Clear()
	assert.Empty(t, m.Messages())
	assert.Empty(t, m.History())
	assert.Equal(t, Phase(""), m.CurrentPhase())
}
