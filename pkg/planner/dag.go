// Package planner converts a natural-language request into a validated
// directed acyclic graph of typed subtasks, using a small set of
// rule-selected strategy templates. Grounded in the same Kahn's-algorithm
// graph bookkeeping (inDegree/graph/dependents maps) the retrieval pack's
// DAG scheduler example uses for task dispatch, applied here at plan time
// instead of at execution time.
package planner

// Task is an immutable planned unit of work. A Task is never mutated after
// creation — its runtime status lives in the Blackboard, not here.
type Task struct {
	ID              string
	Title           string
	Description     string
	Dependencies    []string
	Effort          int // 1-10, opaque relative weight
	Category        string
	ExpectedOutputs []string
}

// DAG is the planner's output: a set of tasks plus the dependency graph
// and its transpose. dependents is always kept as the exact transpose of
// dependencies — newDAG derives it from the dependencies on every
// construction path (fresh build or consolidation).
type DAG struct {
	Tasks         map[string]*Task
	Dependencies  map[string][]string
	Dependents    map[string][]string
	OriginalQuery string
	Strategy      string
}

// Preferences tunes decomposition behavior.
type Preferences struct {
	MaxTasks              int
	DetailLevel           string // high, medium, low
	ParallelismPreference string // high, medium, low
}

// Result is the full output of Decompose.
type Result struct {
	DAG               *DAG
	Confidence        float64
	Reasoning         string
	EstimatedDuration int
	CriticalPath      []string
}

// newDAG builds a DAG from a task list, computing Dependents as the exact
// transpose of Dependencies.
func newDAG(tasks []Task, query, strategy string) *DAG {
	d := &DAG{
		Tasks:         make(map[string]*Task, len(tasks)),
		Dependencies:  make(map[string][]string, len(tasks)),
		Dependents:    make(map[string][]string, len(tasks)),
		OriginalQuery: query,
		Strategy:      strategy,
	}
	for i := range tasks {
		t := tasks[i]
		d.Tasks[t.ID] = &t
		d.Dependencies[t.ID] = append([]string(nil), t.Dependencies...)
	}
	for id, deps := range d.Dependencies {
		for _, dep := range deps {
			d.Dependents[dep] = append(d.Dependents[dep], id)
		}
	}
	return d
}

// checkCycle runs a Kahn's-algorithm topological sort; failure to consume
// every node means a cycle exists.
func checkCycle(d *DAG) error {
	inDegree := make(map[string]int, len(d.Tasks))
	for id := range d.Tasks {
		inDegree[id] = len(d.Dependencies[id])
	}
	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, dep := range d.Dependents[id] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}
	if visited != len(d.Tasks) {
		return ErrCycle
	}
	return nil
}
