package planner

import "errors"

// ErrCycle is returned when the generated task graph contains a cycle.
var ErrCycle = errors.New("planner: cyclic task dependencies")

// ErrEmpty is returned when decomposition produces zero tasks.
var ErrEmpty = errors.New("planner: empty task list")
