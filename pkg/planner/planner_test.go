package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecomposeMVPShape(t *testing.T) {
	result, err := Decompose("Build an MVP for a food delivery app", Preferences{})
	require.NoError(t, err)

	wantIDs := []string{
		"requirements-analysis", "architecture-design", "database-schema",
		"api-design", "backend-implementation", "frontend-setup",
		"ui-components", "frontend-integration", "testing", "deployment",
	}
	for _, id := range wantIDs {
		assert.Contains(t, result.DAG.Tasks, id)
	}

	assert.Empty(t, result.DAG.Tasks["requirements-analysis"].Dependencies)
	assert.Equal(t, []string{"testing"}, result.DAG.Tasks["deployment"].Dependencies)
	assert.Contains(t, result.CriticalPath, "backend-implementation")
	assert.Contains(t, result.CriticalPath, "testing")
	assert.Equal(t, StrategyMVP, result.DAG.Strategy)
}

func TestDecomposeStrategySelectionPriority(t *testing.T) {
	cases := []struct {
		query    string
		strategy string
	}{
		{"Build an MVP for a chat app", StrategyMVP},
		{"build a new application for tracking inventory", StrategyMVP},
		{"Please analyze the current authentication flow", StrategyAnalysis},
		{"We need to refactor the billing module", StrategyRefactoring},
		{"Add a dark mode toggle to settings", StrategyFeature},
		{"What's the weather like", StrategyGeneric},
	}
	for _, tc := range cases {
		result, err := Decompose(tc.query, Preferences{})
		require.NoError(t, err)
		assert.Equal(t, tc.strategy, result.DAG.Strategy, "query: %s", tc.query)
	}
}

func TestDecomposeConsolidatesWhenOverMaxTasks(t *testing.T) {
	result, err := Decompose("Build an MVP for a food delivery app", Preferences{MaxTasks: 5})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(result.DAG.Tasks), 5)
	// implementation-category tasks (backend/frontend chain) collapse into one.
	found := false
	for id := range result.DAG.Tasks {
		if id == "backend-implementation-consolidated" {
			found = true
		}
	}
	assert.True(t, found, "expected consolidated implementation task, got %v", taskIDs(result.DAG))

	// Every surviving dependency must point at a task that actually exists —
	// a merged group's old member ids must never leak through.
	for id, task := range result.DAG.Tasks {
		for _, dep := range task.Dependencies {
			assert.Contains(t, result.DAG.Tasks, dep, "task %s depends on missing id %s", id, dep)
		}
	}
	assert.Contains(t, result.CriticalPath, "backend-implementation-consolidated")
}

func TestDecomposeVagueQueryUsesGenericTemplate(t *testing.T) {
	// MaxTasks of 0 disables consolidation per consolidate's own guard, so
	// this exercises the ordinary generic-template path instead.
	result, err := Decompose("do something vague", Preferences{})
	require.NoError(t, err)
	assert.NotEmpty(t, result.DAG.Tasks)
}

func TestCheckCycleDetectsCycle(t *testing.T) {
	tasks := []Task{
		{ID: "a", Dependencies: []string{"b"}, Effort: 1},
		{ID: "b", Dependencies: []string{"a"}, Effort: 1},
	}
	dag := newDAG(tasks, "cyclic", StrategyGeneric)
	err := checkCycle(dag)
	assert.ErrorIs(t, err, ErrCycle)
}

func TestCriticalPathEffortSum(t *testing.T) {
	tasks := []Task{
		{ID: "root", Effort: 2},
		{ID: "mid", Dependencies: []string{"root"}, Effort: 3},
		{ID: "leaf", Dependencies: []string{"mid"}, Effort: 5},
	}
	dag := newDAG(tasks, "chain", StrategyGeneric)
	path, duration := criticalPath(dag)
	assert.Equal(t, []string{"root", "mid", "leaf"}, path)
	assert.Equal(t, 10, duration)
}

func taskIDs(dag *DAG) []string {
	ids := make([]string, 0, len(dag.Tasks))
	for id := range dag.Tasks {
		ids = append(ids, id)
	}
	return ids
}
