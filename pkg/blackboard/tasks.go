package blackboard

import (
	"fmt"

	"github.com/codeready-toolchain/swarmweave/pkg/swarmerrors"
)

// RegisterTask installs the initial runtime record for a planned task. The
// Scheduler calls this once per task when a DAG is handed off for
// execution; it never mutates an existing record (same planner-owns-DAG,
// Blackboard-owns-status split as spec.md §3).
func (s *Store) RegisterTask(taskID string) {
	s.tasksMu.Lock()
	if _, exists := s.tasks[taskID]; exists {
		s.tasksMu.Unlock()
		return
	}
	t := &TaskStatus{TaskID: taskID, Status: StatusPending}
	s.tasks[taskID] = t
	snapshot := t.clone()
	s.tasksMu.Unlock()
	s.bus.publish(Event{Type: EventTaskStatusChanged, Timestamp: now(), Data: snapshot})
}

// Get returns a copy of the task's runtime status.
func (s *Store) Get(taskID string) (TaskStatus, error) {
	s.tasksMu.RLock()
	defer s.tasksMu.RUnlock()
	t, ok := s.tasks[taskID]
	if !ok {
		return TaskStatus{}, fmt.Errorf("task %s: %w", taskID, swarmerrors.ErrNotFound)
	}
	return t.clone(), nil
}

// ListAll returns a copy of every task's runtime status.
func (s *Store) ListAll() []TaskStatus {
	s.tasksMu.RLock()
	defer s.tasksMu.RUnlock()
	out := make([]TaskStatus, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.clone())
	}
	return out
}

// UpdateStatus transitions a task to status, optionally recording the
// acting agent and a free-form note. Completing a task snaps progress to
// 100; failing a task cascades `blocked` to every not-yet-terminal
// dependent in the same logical operation (spec.md §4.3 invariants).
// dependents maps a task id to the ids of tasks that depend on it — the
// caller (the Scheduler, which owns the DAG) supplies it since the
// Blackboard does not retain dependency edges itself.
func (s *Store) UpdateStatus(taskID string, status TaskLifecycleStatus, agent, note string, dependents map[string][]string) error {
	s.tasksMu.Lock()
	t, ok := s.tasks[taskID]
	if !ok {
		s.tasksMu.Unlock()
		return fmt.Errorf("task %s: %w", taskID, swarmerrors.ErrNotFound)
	}

	t.Status = status
	n := now()
	entry := StatusHistoryEntry{Status: status, Agent: agent, Note: note, At: n}
	t.StatusHistory = append(t.StatusHistory, entry)

	switch status {
	case StatusRunning:
		if t.StartTime == nil {
			t.StartTime = &n
		}
	case StatusCompleted:
		t.Progress = 100
		t.EndTime = &n
	case StatusFailed:
		t.EndTime = &n
	}

	var blocked []string
	if status == StatusFailed {
		blocked = s.cascadeBlockedLocked(taskID, dependents)
	}
	snapshot := t.clone()
	s.tasksMu.Unlock()

	s.bus.publish(Event{Type: EventTaskStatusChanged, Timestamp: n, Agent: agent, Data: snapshot})
	for _, b := range blocked {
		s.tasksMu.RLock()
		bs, ok := s.tasks[b]
		var bsnap TaskStatus
		if ok {
			bsnap = bs.clone()
		}
		s.tasksMu.RUnlock()
		if ok {
			s.bus.publish(Event{Type: EventTaskStatusChanged, Timestamp: n, Data: bsnap})
		}
	}
	return nil
}

// cascadeBlockedLocked marks every not-yet-terminal transitive dependent of
// failedID as blocked. Caller must hold tasksMu.
func (s *Store) cascadeBlockedLocked(failedID string, dependents map[string][]string) []string {
	var affected []string
	visited := map[string]bool{failedID: true}
	queue := append([]string(nil), dependents[failedID]...)
	n := now()
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		t, ok := s.tasks[id]
		if !ok || t.Status.IsTerminal() {
			continue
		}
		t.Status = StatusBlocked
		t.EndTime = &n
		t.StatusHistory = append(t.StatusHistory, StatusHistoryEntry{
			Status: StatusBlocked, Note: "upstream failure", At: n,
		})
		affected = append(affected, id)
		queue = append(queue, dependents[id]...)
	}
	return affected
}

// Assign records which agent a task was dispatched to.
func (s *Store) Assign(taskID, agent string) error {
	s.tasksMu.Lock()
	t, ok := s.tasks[taskID]
	if !ok {
		s.tasksMu.Unlock()
		return fmt.Errorf("task %s: %w", taskID, swarmerrors.ErrNotFound)
	}
	t.AssignedAgent = agent
	snapshot := t.clone()
	s.tasksMu.Unlock()
	s.bus.publish(Event{Type: EventTaskStatusChanged, Timestamp: now(), Agent: agent, Data: snapshot})
	return nil
}

// UpdateProgress sets a task's completion percentage (0-100). The auto-rule
// from spec.md §4.3 applies: progress >= 1 promotes pending to running, and
// progress == 100 completes a still-running task.
func (s *Store) UpdateProgress(taskID string, pct int, agent string) error {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	s.tasksMu.Lock()
	t, ok := s.tasks[taskID]
	if !ok {
		s.tasksMu.Unlock()
		return fmt.Errorf("task %s: %w", taskID, swarmerrors.ErrNotFound)
	}
	t.Progress = pct
	n := now()
	if pct >= 1 && t.Status == StatusPending {
		t.Status = StatusRunning
		t.StartTime = &n
		t.StatusHistory = append(t.StatusHistory, StatusHistoryEntry{Status: StatusRunning, Agent: agent, At: n})
	}
	if pct == 100 && t.Status == StatusRunning {
		t.Status = StatusCompleted
		t.EndTime = &n
		t.StatusHistory = append(t.StatusHistory, StatusHistoryEntry{Status: StatusCompleted, Agent: agent, At: n})
	}
	snapshot := t.clone()
	s.tasksMu.Unlock()
	s.bus.publish(Event{Type: EventTaskStatusChanged, Timestamp: n, Agent: agent, Data: snapshot})
	return nil
}

// AddBlockingIssue appends an unresolved obstacle to a task's record.
func (s *Store) AddBlockingIssue(taskID, text, agent string) error {
	s.tasksMu.Lock()
	t, ok := s.tasks[taskID]
	if !ok {
		s.tasksMu.Unlock()
		return fmt.Errorf("task %s: %w", taskID, swarmerrors.ErrNotFound)
	}
	t.BlockingIssues = append(t.BlockingIssues, BlockingIssue{Text: text, Agent: agent, RaisedAt: now()})
	snapshot := t.clone()
	s.tasksMu.Unlock()
	s.bus.publish(Event{Type: EventTaskStatusChanged, Timestamp: now(), Agent: agent, Data: snapshot})
	return nil
}

// ResolveBlockingIssue marks the blocking issue at index as resolved.
func (s *Store) ResolveBlockingIssue(taskID string, index int, agent string) error {
	s.tasksMu.Lock()
	t, ok := s.tasks[taskID]
	if !ok {
		s.tasksMu.Unlock()
		return fmt.Errorf("task %s: %w", taskID, swarmerrors.ErrNotFound)
	}
	if index < 0 || index >= len(t.BlockingIssues) {
		s.tasksMu.Unlock()
		return fmt.Errorf("blocking issue index %d out of range: %w", index, swarmerrors.ErrNotFound)
	}
	t.BlockingIssues[index].Resolved = true
	t.BlockingIssues[index].ResolvedAt = now()
	snapshot := t.clone()
	s.tasksMu.Unlock()
	s.bus.publish(Event{Type: EventTaskStatusChanged, Timestamp: now(), Agent: agent, Data: snapshot})
	return nil
}

// RecordArtifact appends an artifact id produced by a task's execution to
// the task's record (separate from Artifacts.Create, which owns the
// artifact object itself).
func (s *Store) RecordArtifact(taskID, artifactID string) error {
	s.tasksMu.Lock()
	t, ok := s.tasks[taskID]
	if !ok {
		s.tasksMu.Unlock()
		return fmt.Errorf("task %s: %w", taskID, swarmerrors.ErrNotFound)
	}
	t.Artifacts = append(t.Artifacts, artifactID)
	snapshot := t.clone()
	s.tasksMu.Unlock()
	s.bus.publish(Event{Type: EventTaskStatusChanged, Timestamp: now(), Data: snapshot})
	return nil
}
