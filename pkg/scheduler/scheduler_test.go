package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/swarmweave/pkg/agentregistry"
	"github.com/codeready-toolchain/swarmweave/pkg/blackboard"
	"github.com/codeready-toolchain/swarmweave/pkg/planner"
	"github.com/codeready-toolchain/swarmweave/pkg/retry"
	"github.com/codeready-toolchain/swarmweave/pkg/router"
	"github.com/codeready-toolchain/swarmweave/pkg/swarmerrors"
)

func swarmerrTransient() error {
	return swarmerrors.NewTransientError("server_error", true, fmt.Errorf("upstream 503"))
}

func newTestRegistry(t *testing.T) *agentregistry.Registry {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "general-purpose.md"), []byte(`---
name: general-purpose
description: handles anything
---
Body.
`), 0o644))
	reg := agentregistry.New(dir, "")
	require.NoError(t, reg.Reload())
	return reg
}

// fakeExecutor lets each test script per-task behavior: success, transient
// failure (retried), or permanent failure.
type fakeExecutor struct {
	mu         sync.Mutex
	calls      map[string]int
	behavior   func(taskID string, call int) (Outcome, error)
	maxInFlight int32
	inFlight    int32
}

func (f *fakeExecutor) Execute(ctx context.Context, task *planner.Task, agent *agentregistry.Descriptor, query string) (Outcome, error) {
	n := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		old := atomic.LoadInt32(&f.maxInFlight)
		if n <= old || atomic.CompareAndSwapInt32(&f.maxInFlight, old, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls[task.ID]++
	call := f.calls[task.ID]
	f.mu.Unlock()

	time.Sleep(2 * time.Millisecond)
	return f.behavior(task.ID, call)
}

func simpleDAG(tasks ...planner.Task) *planner.DAG {
	dag := &planner.DAG{
		Tasks:        make(map[string]*planner.Task, len(tasks)),
		Dependencies: make(map[string][]string, len(tasks)),
		Dependents:   make(map[string][]string, len(tasks)),
	}
	for i := range tasks {
		t := tasks[i]
		dag.Tasks[t.ID] = &t
		dag.Dependencies[t.ID] = append([]string(nil), t.Dependencies...)
	}
	for id, deps := range dag.Dependencies {
		for _, dep := range deps {
			dag.Dependents[dep] = append(dag.Dependents[dep], id)
		}
	}
	return dag
}

func TestRunCompletesIndependentTasksWithinConcurrencyBound(t *testing.T) {
	bb := blackboard.New()
	rt := router.New(newTestRegistry(t))
	exec := &fakeExecutor{calls: map[string]int{}, behavior: func(id string, call int) (Outcome, error) {
		return Outcome{Artifacts: []blackboard.Artifact{{Name: id + "-out", Content: "done"}}}, nil
	}}

	dag := simpleDAG(
		planner.Task{ID: "a", Effort: 3},
		planner.Task{ID: "b", Effort: 3},
		planner.Task{ID: "c", Effort: 3},
		planner.Task{ID: "d", Effort: 3},
	)

	opts := DefaultOptions()
	opts.MaxConcurrency = 2
	opts.OrphanCheckInterval = 0
	s := New(bb, rt, exec, nil, opts)

	result, err := s.Run(context.Background(), dag, []string{"a"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c", "d"}, result.Completed)
	assert.Empty(t, result.Failed)
	assert.Empty(t, result.Blocked)
	assert.LessOrEqual(t, int(exec.maxInFlight), 2)
	assert.Len(t, result.Artifacts, 4)
}

func TestRunPropagatesFailureToBlockedDependents(t *testing.T) {
	bb := blackboard.New()
	rt := router.New(newTestRegistry(t))
	exec := &fakeExecutor{calls: map[string]int{}, behavior: func(id string, call int) (Outcome, error) {
		if id == "root" {
			return Outcome{}, fmt.Errorf("permanent failure")
		}
		return Outcome{}, nil
	}}

	dag := simpleDAG(
		planner.Task{ID: "root", Effort: 5},
		planner.Task{ID: "child", Effort: 3, Dependencies: []string{"root"}},
		planner.Task{ID: "grandchild", Effort: 1, Dependencies: []string{"child"}},
	)

	opts := DefaultOptions()
	opts.MaxRetries = 0
	opts.OrphanCheckInterval = 0
	s := New(bb, rt, exec, nil, opts)

	result, err := s.Run(context.Background(), dag, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"root"}, result.Failed)
	assert.ElementsMatch(t, []string{"child", "grandchild"}, result.Blocked)
	assert.Empty(t, result.Completed)
}

func TestRunRetriesTransientFailureThenSucceeds(t *testing.T) {
	bb := blackboard.New()
	rt := router.New(newTestRegistry(t))
	exec := &fakeExecutor{calls: map[string]int{}, behavior: func(id string, call int) (Outcome, error) {
		if call < 3 {
			return Outcome{}, swarmerrTransient()
		}
		return Outcome{}, nil
	}}

	dag := simpleDAG(planner.Task{ID: "flaky", Effort: 1})

	opts := DefaultOptions()
	opts.MaxRetries = 3
	opts.BackoffPolicy = retry.Policy{Base: time.Millisecond, Factor: 1, Cap: time.Millisecond, Jitter: 0, MaxAttempts: 3}
	opts.OrphanCheckInterval = 0
	s := New(bb, rt, exec, nil, opts)

	result, err := s.Run(context.Background(), dag, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"flaky"}, result.Completed)
	assert.Equal(t, 3, exec.calls["flaky"])
}

func TestRunMarksTaskFailedAfterRetriesExhausted(t *testing.T) {
	bb := blackboard.New()
	rt := router.New(newTestRegistry(t))
	exec := &fakeExecutor{calls: map[string]int{}, behavior: func(id string, call int) (Outcome, error) {
		return Outcome{}, swarmerrTransient()
	}}

	dag := simpleDAG(planner.Task{ID: "alwaysflaky", Effort: 1})

	opts := DefaultOptions()
	opts.MaxRetries = 2
	opts.BackoffPolicy = retry.Policy{Base: time.Millisecond, Factor: 1, Cap: time.Millisecond, Jitter: 0, MaxAttempts: 2}
	opts.OrphanCheckInterval = 0
	s := New(bb, rt, exec, nil, opts)

	result, err := s.Run(context.Background(), dag, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"alwaysflaky"}, result.Failed)
	assert.Equal(t, 3, exec.calls["alwaysflaky"]) // initial attempt + 2 retries
}
