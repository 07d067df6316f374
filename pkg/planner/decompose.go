package planner

import "fmt"

// Decompose converts a natural-language query into a validated DAG, using a
// rule-selected strategy template (see selectStrategy/skeletonFor) and
// consolidating adjacent same-category tasks when the template exceeds
// prefs.MaxTasks. Strategy selection and consolidation are pure functions
// over the skeleton list; this function wires them together, builds the
// DAG, checks it for cycles, and computes the critical path.
func Decompose(query string, prefs Preferences) (Result, error) {
	strategy := selectStrategy(query)
	skels := consolidate(skeletonFor(strategy), prefs.MaxTasks)
	tasks := buildTasks(skels)
	if len(tasks) == 0 {
		return Result{}, ErrEmpty
	}

	dag := newDAG(tasks, query, strategy)
	if err := checkCycle(dag); err != nil {
		return Result{}, err
	}

	criticalPath, duration := criticalPath(dag)

	return Result{
		DAG:               dag,
		Confidence:        confidenceFor(strategy),
		Reasoning:         fmt.Sprintf("selected %q strategy from %d task(s) after consolidation", strategy, len(tasks)),
		EstimatedDuration: duration,
		CriticalPath:      criticalPath,
	}, nil
}

// confidenceFor reflects that the named templates (mvp/analysis/refactoring/
// feature) match a recognized phrasing pattern, while the generic fallback
// is a lower-confidence guess.
func confidenceFor(strategy string) float64 {
	if strategy == StrategyGeneric {
		return 0.5
	}
	return 0.9
}

// criticalPath computes, for every task, effort-to-end = own effort + the
// max effort-to-end among its dependents, then walks from the root with the
// highest effort-to-end down through the dependent carrying that max at
// each step. This is the longest chain in the DAG; its effort sum is the
// estimated project duration.
func criticalPath(dag *DAG) ([]string, int) {
	memo := make(map[string]int, len(dag.Tasks))
	var effortToEnd func(id string) int
	effortToEnd = func(id string) int {
		if v, ok := memo[id]; ok {
			return v
		}
		best := 0
		for _, dep := range dag.Dependents[id] {
			if v := effortToEnd(dep); v > best {
				best = v
			}
		}
		v := dag.Tasks[id].Effort + best
		memo[id] = v
		return v
	}
	for id := range dag.Tasks {
		effortToEnd(id)
	}

	var start string
	best := -1
	for id, v := range memo {
		if v > best {
			best = v
			start = id
		}
	}
	if start == "" {
		return nil, 0
	}

	path := []string{start}
	cur := start
	for {
		var next string
		nextVal := -1
		for _, dep := range dag.Dependents[cur] {
			if memo[dep] > nextVal {
				nextVal = memo[dep]
				next = dep
			}
		}
		if next == "" {
			break
		}
		path = append(path, next)
		cur = next
	}
	return path, best
}
