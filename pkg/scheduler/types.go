// Package scheduler walks a planner.DAG and dispatches ready tasks to
// agents with bounded concurrency, retrying transient provider failures
// with backoff, propagating task failure to blocked dependents, and
// honoring per-task timeouts and session-wide cancellation (spec.md §4.5).
//
// The dispatch loop is grounded on two sources layered together: the
// retrieval pack's Kahn's-algorithm ready-queue DAG scheduler (the same
// in-degree/ready-set bookkeeping pkg/planner already uses at plan time,
// applied here at execution time) and the teacher's
// pkg/queue.WorkerPool/Worker goroutine-pool shape — a bounded worker
// count, a WaitGroup, a stopCh, and an in-flight cancel-function registry
// (pkg/queue/pool.go's activeSessions map[string]context.CancelFunc is the
// direct model for Scheduler's in-flight cancel registry). Orphan
// detection (pkg/queue/orphan.go: a background ticker that finds sessions
// stuck past their deadline with no live heartbeat and fails them) is
// adapted into the Scheduler's stale-task sweep.
package scheduler

import (
	"context"
	"time"

	"github.com/codeready-toolchain/swarmweave/pkg/agentregistry"
	"github.com/codeready-toolchain/swarmweave/pkg/blackboard"
	"github.com/codeready-toolchain/swarmweave/pkg/planner"
	"github.com/codeready-toolchain/swarmweave/pkg/retry"
)

// Outcome is what one task execution unit produced.
type Outcome struct {
	Artifacts      []blackboard.Artifact
	BlockingIssues []string
}

// Executor runs a single task against the agent the Router resolved for it.
// Implementations normally build a contentrouter.Request from the task and
// blackboard context, call contentrouter.Router.Generate, and parse the
// response into an Outcome — mirroring the teacher's SessionExecutor
// interface (pkg/queue/types.go), which likewise keeps the worker pool
// ignorant of how a session is actually driven to completion.
type Executor interface {
	Execute(ctx context.Context, task *planner.Task, agent *agentregistry.Descriptor, query string) (Outcome, error)
}

// Options configures one Scheduler run.
type Options struct {
	// MaxConcurrency bounds in-flight task units. Zero means "number of
	// tasks in the DAG", capped by CPU count x2 (spec.md §5 resource caps).
	MaxConcurrency int

	PerTaskTimeout  time.Duration
	SessionDeadline time.Duration // 0 = unbounded

	MaxRetries    int
	BackoffPolicy retry.Policy

	// GracePeriod bounds how long in-flight units are given to exit after
	// cancellation before being force-terminated (spec.md §4.5 step 4,
	// default 5s).
	GracePeriod time.Duration

	// OrphanCheckInterval drives the stale-task sweep. Zero disables it.
	OrphanCheckInterval time.Duration

	// PodID names this Scheduler instance, matching the teacher's
	// WorkerPool.podID (SPEC_FULL.md §9 "pod-scoped worker identity"). The
	// Scheduler stores it in its Options only; it is not added to any log
	// line or Blackboard event.
	PodID string
}

// DefaultOptions returns sane defaults per spec.md §5 and §4.5.
func DefaultOptions() Options {
	return Options{
		PerTaskTimeout:      10 * time.Minute,
		SessionDeadline:     30 * time.Minute,
		MaxRetries:          3,
		BackoffPolicy:       retry.DefaultPolicy(3),
		GracePeriod:         5 * time.Second,
		OrphanCheckInterval: time.Minute,
	}
}

// Result is the Scheduler's terminal summary (spec.md §4.5 step 5).
type Result struct {
	Completed    []string
	Failed       []string
	Blocked      []string
	Artifacts    []blackboard.Artifact
	DurationMs   int64
	CriticalPath []string
}

// FailureReason enumerates why a task's execution unit ended in failure.
type FailureReason string

const (
	ReasonTimeout       FailureReason = "timeout"
	ReasonCancelled     FailureReason = "cancelled"
	ReasonNoAgent       FailureReason = "no-agent"
	ReasonProviderError FailureReason = "provider-error"
)
