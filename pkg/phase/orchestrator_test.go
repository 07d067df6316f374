package phase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/swarmweave/pkg/guardrails"
	"github.com/codeready-toolchain/swarmweave/pkg/planner"
	"github.com/codeready-toolchain/swarmweave/pkg/swarmerrors"
)

type fakePareto struct {
	items []guardrails.ParetoItem
	err   error
}

func (f fakePareto) CallPareto(ctx context.Context, taskID, query string) ([]guardrails.ParetoItem, error) {
	return f.items, f.err
}

type fakeStrategic struct {
	out  guardrails.StrategicOutput
	text string
	err  error
}

func (f fakeStrategic) CallStrategic(ctx context.Context, taskID, query string) (guardrails.StrategicOutput, string, error) {
	return f.out, f.text, f.err
}

type fakeExecution struct {
	input CompletionInput
	err   error
}

func (f fakeExecution) RunDAG(ctx context.Context, dag *planner.DAG) (CompletionInput, error) {
	return f.input, f.err
}

func validPareto() []guardrails.ParetoItem {
	return []guardrails.ParetoItem{{Path: "pkg/scheduler/scheduler.go", Reason: "dispatch loop"}}
}

func validStrategic() guardrails.StrategicOutput {
	return guardrails.StrategicOutput{Proceed: guardrails.StrategicSentinel, TokenCount: 100}
}

func TestFullPhaseSequenceSucceeds(t *testing.T) {
	gm := guardrails.New()
	o := New(gm, fakePareto{items: validPareto()}, fakeStrategic{out: validStrategic()}, fakeExecution{input: CompletionInput{TestsPassed: true}}, nil)

	o.InitializeMetadata("")
	require.NoError(t, o.ExecutePareto(context.Background(), "analyze the repo"))
	require.NoError(t, o.ExecuteStrategic(context.Background(), "analyze the repo"))

	result, err := o.ExecuteExecution(context.Background(), &planner.DAG{})
	require.NoError(t, err)
	assert.Equal(t, guardrails.PhaseExecution, o.CurrentPhase())
	assert.Equal(t, OutcomeTaskComplete, result.Outcome)
}

func TestExecuteStrategicWithoutParetoFails(t *testing.T) {
	gm := guardrails.New()
	o := New(gm, fakePareto{items: validPareto()}, fakeStrategic{out: validStrategic()}, fakeExecution{}, nil)
	o.InitializeMetadata("t1")

	err := o.ExecuteStrategic(context.Background(), "query")
	require.Error(t, err)
	assert.True(t, errors.Is(err, swarmerrors.ErrInvalidTransition))
}

func TestExecuteParetoRetriesOnceThenFails(t *testing.T) {
	gm := guardrails.New()
	invalid := []guardrails.ParetoItem{} // empty -> always invalid
	o := New(gm, fakePareto{items: invalid}, fakeStrategic{}, fakeExecution{}, nil)
	o.InitializeMetadata("t1")

	err := o.ExecutePareto(context.Background(), "query")
	require.Error(t, err)
}

func TestExecuteExecutionReturnsBlockedOnBlockers(t *testing.T) {
	gm := guardrails.New()
	o := New(gm, fakePareto{items: validPareto()}, fakeStrategic{out: validStrategic()}, fakeExecution{input: CompletionInput{Blockers: []string{"missing credentials"}}}, nil)
	o.InitializeMetadata("t1")
	require.NoError(t, o.ExecutePareto(context.Background(), "q"))
	require.NoError(t, o.ExecuteStrategic(context.Background(), "q"))

	result, err := o.ExecuteExecution(context.Background(), &planner.DAG{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeBlocked, result.Outcome)
}

func TestExecuteExecutionReturnsCancelledOnContextCancellation(t *testing.T) {
	gm := guardrails.New()
	o := New(gm, fakePareto{items: validPareto()}, fakeStrategic{out: validStrategic()}, fakeExecution{}, nil)
	o.InitializeMetadata("t1")
	require.NoError(t, o.ExecutePareto(context.Background(), "q"))
	require.NoError(t, o.ExecuteStrategic(context.Background(), "q"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := o.ExecuteExecution(ctx, &planner.DAG{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCancelled, result.Outcome)
}
