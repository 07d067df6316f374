package scheduler

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/codeready-toolchain/swarmweave/pkg/blackboard"
	"github.com/codeready-toolchain/swarmweave/pkg/guardrails"
	"github.com/codeready-toolchain/swarmweave/pkg/phase"
	"github.com/codeready-toolchain/swarmweave/pkg/planner"
	"github.com/codeready-toolchain/swarmweave/pkg/router"
)

// Scheduler walks a planner.DAG to completion, dispatching ready tasks to
// agents with bounded concurrency (spec.md §4.5).
type Scheduler struct {
	bb       *blackboard.Store
	router   *router.Router
	executor Executor
	guard    *guardrails.Manager
	opts     Options

	mu      sync.Mutex
	cancels map[string]context.CancelFunc // in-flight task id -> cancel, grounded on pkg/queue/pool.go's activeSessions registry
	started map[string]time.Time
}

// New builds a Scheduler. guard may be nil, in which case retries are never
// recorded as guardrail messages (useful for callers exercising the
// Scheduler outside a full PhaseOrchestrator session).
func New(bb *blackboard.Store, rt *router.Router, executor Executor, guard *guardrails.Manager, opts Options) *Scheduler {
	return &Scheduler{
		bb:       bb,
		router:   rt,
		executor: executor,
		guard:    guard,
		opts:     opts,
		cancels:  make(map[string]context.CancelFunc),
		started:  make(map[string]time.Time),
	}
}

// RunDAG satisfies pkg/phase.ExecutionRunner, adapting Scheduler's Result
// into the CompletionInput the PhaseOrchestrator's completion predicate
// consumes: no failed or blocked tasks means tests passed; each failed or
// blocked task becomes one blocker description.
func (s *Scheduler) RunDAG(ctx context.Context, dag *planner.DAG) (phase.CompletionInput, error) {
	result, err := s.Run(ctx, dag, nil)
	if err != nil {
		return phase.CompletionInput{}, err
	}

	var blockers []string
	for _, id := range result.Failed {
		st, _ := s.bb.Get(id)
		reason := ""
		if n := len(st.StatusHistory); n > 0 {
			reason = st.StatusHistory[n-1].Note
		}
		blockers = append(blockers, fmt.Sprintf("task %s failed: %s", id, reason))
	}
	for _, id := range result.Blocked {
		blockers = append(blockers, fmt.Sprintf("task %s blocked by upstream failure", id))
	}

	return phase.CompletionInput{
		TestsPassed: len(blockers) == 0,
		Blockers:    blockers,
	}, nil
}

// Run dispatches every task in dag to completion and returns the terminal
// summary (spec.md §4.5 step 5). It registers every task with the
// Blackboard before dispatching, so a caller may inspect per-task status
// mid-run via the same Store.
func (s *Scheduler) Run(ctx context.Context, dag *planner.DAG, criticalPath []string) (Result, error) {
	start := time.Now()

	runCtx := ctx
	var cancelDeadline context.CancelFunc
	if s.opts.SessionDeadline > 0 {
		runCtx, cancelDeadline = context.WithTimeout(ctx, s.opts.SessionDeadline)
		defer cancelDeadline()
	}

	for id := range dag.Tasks {
		s.bb.RegisterTask(id)
	}

	maxConcurrency := s.opts.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = len(dag.Tasks)
		if maxConcurrency == 0 {
			maxConcurrency = 1
		}
		if cpuCap := runtime.NumCPU() * 2; maxConcurrency > cpuCap {
			maxConcurrency = cpuCap
		}
	}

	var stopOrphanSweep context.CancelFunc
	if s.opts.OrphanCheckInterval > 0 {
		var sweepCtx context.Context
		sweepCtx, stopOrphanSweep = context.WithCancel(context.Background())
		go s.sweepOrphans(sweepCtx)
		defer stopOrphanSweep()
	}

	sem := make(chan struct{}, maxConcurrency)
	done := make(chan string, len(dag.Tasks))
	var wg sync.WaitGroup

	dispatched := make(map[string]bool, len(dag.Tasks))

	// dispatchReady launches every currently-ready, not-yet-dispatched task
	// and returns how many it started.
	dispatchReady := func() int {
		ready := s.readyTasks(dag, dispatched)
		for _, t := range ready {
			dispatched[t.ID] = true
			wg.Add(1)
			go func(task *planner.Task) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				s.runTask(runCtx, dag, task)
				done <- task.ID
			}(t)
		}
		return len(ready)
	}

	// The loop terminates either when the session context ends, or when no
	// task is in flight and no further task became ready — the latter means
	// every remaining undispatched task was cascaded to `blocked` by an
	// upstream failure (spec.md §4.3) and will never become ready on its own.
	inFlight := dispatchReady()
	for inFlight > 0 {
		select {
		case <-runCtx.Done():
			inFlight = 0
		case <-done:
			inFlight--
			inFlight += dispatchReady()
		}
	}

	waitCh := make(chan struct{})
	go func() { wg.Wait(); close(waitCh) }()
	select {
	case <-waitCh:
	case <-time.After(s.opts.GracePeriod):
		s.cancelAll()
		<-waitCh
	}

	return s.summarize(dag, start, criticalPath), nil
}

// readyTasks returns not-yet-dispatched tasks whose dependencies have all
// completed, ordered larger-effort-first with lexicographic id tie-break
// (spec.md §4.5 "ordering is deterministic: larger estimated effort first,
// ties broken by task id").
func (s *Scheduler) readyTasks(dag *planner.DAG, dispatched map[string]bool) []*planner.Task {
	var ready []*planner.Task
	for id, task := range dag.Tasks {
		if dispatched[id] {
			continue
		}
		if s.depsSatisfied(dag, id) {
			ready = append(ready, task)
		}
	}
	sort.Slice(ready, func(i, j int) bool {
		if ready[i].Effort != ready[j].Effort {
			return ready[i].Effort > ready[j].Effort
		}
		return ready[i].ID < ready[j].ID
	})
	return ready
}

func (s *Scheduler) depsSatisfied(dag *planner.DAG, id string) bool {
	for _, dep := range dag.Dependencies[id] {
		st, err := s.bb.Get(dep)
		if err != nil || st.Status != blackboard.StatusCompleted {
			return false
		}
	}
	return true
}

func (s *Scheduler) cancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, cancel := range s.cancels {
		cancel()
		delete(s.cancels, id)
	}
}

func (s *Scheduler) summarize(dag *planner.DAG, start time.Time, criticalPath []string) Result {
	result := Result{DurationMs: time.Since(start).Milliseconds(), CriticalPath: criticalPath}
	for id := range dag.Tasks {
		st, err := s.bb.Get(id)
		if err != nil {
			continue
		}
		switch st.Status {
		case blackboard.StatusCompleted:
			result.Completed = append(result.Completed, id)
		case blackboard.StatusFailed:
			result.Failed = append(result.Failed, id)
		case blackboard.StatusBlocked:
			result.Blocked = append(result.Blocked, id)
		}
	}
	result.Artifacts = s.bb.ListArtifacts()
	sort.Strings(result.Completed)
	sort.Strings(result.Failed)
	sort.Strings(result.Blocked)
	return result
}
