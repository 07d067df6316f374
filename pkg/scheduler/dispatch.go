package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeready-toolchain/swarmweave/pkg/agentregistry"
	"github.com/codeready-toolchain/swarmweave/pkg/blackboard"
	"github.com/codeready-toolchain/swarmweave/pkg/guardrails"
	"github.com/codeready-toolchain/swarmweave/pkg/planner"
	"github.com/codeready-toolchain/swarmweave/pkg/router"
	"github.com/codeready-toolchain/swarmweave/pkg/swarmerrors"
)

// runTask resolves an agent for task, dispatches it through Executor with
// the configured per-task timeout, and retries transient failures with
// backoff before giving up — mirroring spec.md §4.5's "retry the same agent
// up to maxRetries times with backoff, then mark failed".
func (s *Scheduler) runTask(ctx context.Context, dag *planner.DAG, task *planner.Task) {
	res, err := s.router.Resolve(router.Task{Category: task.Category, Description: task.Description}, task.Description)
	if err != nil {
		s.fail(dag, task.ID, "", string(ReasonNoAgent), fmt.Sprintf("no agent available: %v", err))
		return
	}

	if err := s.bb.Assign(task.ID, res.Agent.Name); err != nil {
		s.fail(dag, task.ID, res.Agent.Name, string(ReasonNoAgent), err.Error())
		return
	}
	if err := s.bb.UpdateStatus(task.ID, blackboard.StatusRunning, res.Agent.Name, "dispatched", dag.Dependents); err != nil {
		s.fail(dag, task.ID, res.Agent.Name, string(ReasonNoAgent), err.Error())
		return
	}

	outcome, execErr := s.attempt(ctx, task, res.Agent, res.Query)
	if execErr != nil {
		s.fail(dag, task.ID, res.Agent.Name, string(classifyErr(execErr)), execErr.Error())
		return
	}

	for _, issue := range outcome.BlockingIssues {
		_ = s.bb.AddBlockingIssue(task.ID, issue, res.Agent.Name)
	}
	for i := range outcome.Artifacts {
		a := outcome.Artifacts[i]
		a.CreatedBy = task.ID
		id, err := s.bb.CreateArtifact(a)
		if err != nil {
			slog.Warn("scheduler: artifact rejected", "task", task.ID, "error", err)
			continue
		}
		_ = s.bb.RecordArtifact(task.ID, id)
	}

	if len(outcome.BlockingIssues) > 0 {
		s.fail(dag, task.ID, res.Agent.Name, "blocked", "task reported blocking issues")
		return
	}

	if err := s.bb.UpdateStatus(task.ID, blackboard.StatusCompleted, res.Agent.Name, "completed", dag.Dependents); err != nil {
		slog.Warn("scheduler: completion status update failed", "task", task.ID, "error", err)
	}
}

// attempt runs Executor.Execute with retry-with-backoff on transient errors
// (pkg/retry.Policy), emitting a retry guardrail message before every retry
// and one fallback message once retries are exhausted, when a
// GuardrailManager is configured (spec.md §4.5/§8 ordering: the retry
// message for attempt n always precedes attempt n+1's call).
func (s *Scheduler) attempt(ctx context.Context, task *planner.Task, agent *agentregistry.Descriptor, query string) (Outcome, error) {
	maxRetries := s.opts.MaxRetries
	var lastErr error
	for attemptN := 0; attemptN <= maxRetries; attemptN++ {
		taskCtx, cancel := s.withTaskTimeout(ctx, task.ID)
		out, err := s.executor.Execute(taskCtx, task, agent, query)
		deadlineExceeded := taskCtx.Err() != nil
		cancel()
		s.unregister(task.ID)

		if err == nil {
			return out, nil
		}
		lastErr = err

		if deadlineExceeded {
			return Outcome{}, fmt.Errorf("task %s: %w", task.ID, taskCtx.Err())
		}
		if !swarmerrors.IsRetryable(err) {
			return Outcome{}, err
		}
		if attemptN == maxRetries {
			break
		}

		if s.guard != nil {
			s.guard.EmitRetry(guardrails.PhaseExecution, attemptN+1, maxRetries, s.fallbackModelName())
		}
		time.Sleep(s.opts.BackoffPolicy.Delay(attemptN + 1))
	}
	if s.guard != nil {
		s.guard.EmitRetry(guardrails.PhaseExecution, maxRetries+1, maxRetries, s.fallbackModelName())
	}
	return Outcome{}, fmt.Errorf("task %s: retries exhausted: %w", task.ID, lastErr)
}

func classifyErr(err error) FailureReason {
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	if errors.Is(err, context.Canceled) {
		return ReasonCancelled
	}
	return ReasonProviderError
}

func (s *Scheduler) fail(dag *planner.DAG, taskID, agentName, reason, note string) {
	if err := s.bb.UpdateStatus(taskID, blackboard.StatusFailed, agentName, fmt.Sprintf("%s: %s", reason, note), dag.Dependents); err != nil {
		slog.Warn("scheduler: failure status update failed", "task", taskID, "error", err)
	}
}

func (s *Scheduler) withTaskTimeout(parent context.Context, taskID string) (context.Context, context.CancelFunc) {
	var ctx context.Context
	var cancel context.CancelFunc
	if s.opts.PerTaskTimeout > 0 {
		ctx, cancel = context.WithTimeout(parent, s.opts.PerTaskTimeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}
	s.mu.Lock()
	s.cancels[taskID] = cancel
	s.started[taskID] = time.Now()
	s.mu.Unlock()
	return ctx, cancel
}

func (s *Scheduler) unregister(taskID string) {
	s.mu.Lock()
	delete(s.cancels, taskID)
	delete(s.started, taskID)
	s.mu.Unlock()
}

// fallbackModelName names the secondary model surfaced in the exhausted-
// retries guardrail message. The Scheduler does not itself select fallback
// models — that is the ContentRouter's fallback chain (spec.md §4.8) — so
// this is a fixed label rather than a live lookup.
func (s *Scheduler) fallbackModelName() string {
	return "fallback"
}
