package phase

import (
	"context"
	"fmt"
	"time"

	"github.com/codeready-toolchain/swarmweave/pkg/guardrails"
	"github.com/codeready-toolchain/swarmweave/pkg/planner"
)

// ParetoCaller makes the single deterministic-decoding model call the
// Pareto phase requires and parses its output into the guardrail schema.
type ParetoCaller interface {
	CallPareto(ctx context.Context, taskID, query string) ([]guardrails.ParetoItem, error)
}

// StrategicCaller makes the single low-temperature model call the
// Strategic phase requires and parses its output into the guardrail
// schema, also returning the raw plan text for the session record.
type StrategicCaller interface {
	CallStrategic(ctx context.Context, taskID, query string) (guardrails.StrategicOutput, string, error)
}

// ExecutionRunner hands the DAG produced by the prior phases off for
// concurrent execution and reports back the completion input the
// predicate inspects (failed or blocked tasks appear in its Blockers), or
// an error when the run itself could not be carried out.
type ExecutionRunner interface {
	RunDAG(ctx context.Context, dag *planner.DAG) (CompletionInput, error)
}

// Orchestrator drives one session through Metadata -> Pareto -> Strategic
// -> Execution.
type Orchestrator struct {
	guardrails *guardrails.Manager
	pareto     ParetoCaller
	strategic  StrategicCaller
	execution  ExecutionRunner
	predicate  CompletionPredicate

	taskID    string
	startedAt time.Time

	paretoOutput    []guardrails.ParetoItem
	strategicOutput guardrails.StrategicOutput
	strategicText   string
}

// New builds an Orchestrator. predicate may be nil to use
// DefaultCompletionPredicate.
func New(gm *guardrails.Manager, pareto ParetoCaller, strategic StrategicCaller, execution ExecutionRunner, predicate CompletionPredicate) *Orchestrator {
	if predicate == nil {
		predicate = DefaultCompletionPredicate
	}
	return &Orchestrator{guardrails: gm, pareto: pareto, strategic: strategic, execution: execution, predicate: predicate}
}

// InitializeMetadata assigns the session's taskID (caller-supplied, or
// auto-generated as task-<epoch-ms> when empty) and start timestamp. It
// never calls a model (spec.md §4.6).
func (o *Orchestrator) InitializeMetadata(taskID string) {
	if taskID == "" {
		taskID = fmt.Sprintf("task-%d", time.Now().UnixMilli())
	}
	o.taskID = taskID
	o.startedAt = time.Now()
}

// CurrentPhase returns the orchestrator's current phase.
func (o *Orchestrator) CurrentPhase() guardrails.Phase {
	phase := o.guardrails.CurrentPhase()
	if phase == "" {
		return guardrails.PhaseMetadata
	}
	return phase
}

// ExecutePareto transitions metadata -> pareto, makes the one Pareto model
// call, and validates its output. On an invalid output it re-calls once;
// if still invalid the session fails (spec.md §4.6).
func (o *Orchestrator) ExecutePareto(ctx context.Context, query string) error {
	if err := o.guardrails.RecordTransition(guardrails.PhaseMetadata, guardrails.PhasePareto); err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		items, err := o.pareto.CallPareto(ctx, o.taskID, query)
		if err != nil {
			return fmt.Errorf("phase: pareto call failed: %w", err)
		}
		if err := o.guardrails.ValidatePareto(items); err != nil {
			lastErr = err
			continue
		}
		o.paretoOutput = items
		return nil
	}
	return fmt.Errorf("phase: pareto output invalid after retry: %w", lastErr)
}

// ExecuteStrategic transitions pareto -> strategic, makes the one
// Strategic model call, and validates its output with the same one-retry
// policy as ExecutePareto.
func (o *Orchestrator) ExecuteStrategic(ctx context.Context, query string) error {
	if err := o.guardrails.RecordTransition(o.CurrentPhase(), guardrails.PhaseStrategic); err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		out, text, err := o.strategic.CallStrategic(ctx, o.taskID, query)
		if err != nil {
			return fmt.Errorf("phase: strategic call failed: %w", err)
		}
		if err := o.guardrails.ValidateStrategic(out); err != nil {
			lastErr = err
			continue
		}
		o.strategicOutput = out
		o.strategicText = text
		return nil
	}
	return fmt.Errorf("phase: strategic output invalid after retry: %w", lastErr)
}

// ExecuteExecution transitions strategic -> execution and hands the DAG to
// the ExecutionRunner (normally the Scheduler), then applies the
// completion predicate to decide the session's final Outcome.
func (o *Orchestrator) ExecuteExecution(ctx context.Context, dag *planner.DAG) (Result, error) {
	if err := o.guardrails.RecordTransition(o.CurrentPhase(), guardrails.PhaseExecution); err != nil {
		return Result{}, err
	}

	input, err := o.execution.RunDAG(ctx, dag)
	result := Result{
		TaskID:            o.taskID,
		Phase:             guardrails.PhaseExecution,
		StartedAt:         o.startedAt,
		EndedAt:           time.Now(),
		ParetoOutput:      o.paretoOutput,
		StrategicOutput:   o.strategicOutput,
		StrategicText:     o.strategicText,
		GuardrailMessages: o.guardrails.Messages(),
	}

	if ctx.Err() != nil {
		result.Outcome = OutcomeCancelled
		return result, nil
	}
	if err != nil {
		result.Outcome = OutcomeFailed
		return result, fmt.Errorf("phase: execution failed: %w", err)
	}

	outcome := o.predicate(input)
	if outcome == outcomeRunning {
		if len(input.Blockers) > 0 {
			outcome = OutcomeBlocked
		} else {
			outcome = OutcomeTaskComplete
		}
	}
	result.Outcome = outcome
	return result, nil
}
