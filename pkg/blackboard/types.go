// Package blackboard is the concurrent, event-emitting store of task
// status, artifacts, and inter-agent notes shared by every component of the
// orchestration runtime. It is the single point of truth for runtime state:
// the TaskPlanner builds a DAG whose status lives here, the Scheduler
// mutates it on every state transition, and the GuardrailManager and host
// surface both read it to produce their output.
//
// Every mutating method is safe for concurrent use. Internally each
// resource kind (tasks, artifacts, notes) is guarded by its own RWMutex —
// mirroring the teacher's ConnectionManager, which keeps an independent
// lock for its connection map and its channel-subscription map rather than
// a single global lock — so a slow artifact scan never blocks a task-status
// write.
package blackboard

import "time"

// TaskLifecycleStatus is the status of a task's runtime record.
type TaskLifecycleStatus string

const (
	StatusPending   TaskLifecycleStatus = "pending"
	StatusReady     TaskLifecycleStatus = "ready"
	StatusRunning   TaskLifecycleStatus = "running"
	StatusCompleted TaskLifecycleStatus = "completed"
	StatusFailed    TaskLifecycleStatus = "failed"
	StatusBlocked   TaskLifecycleStatus = "blocked"
)

// IsTerminal reports whether the status can never transition further.
func (s TaskLifecycleStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusBlocked:
		return true
	default:
		return false
	}
}

// StatusHistoryEntry records one transition of a task's status.
type StatusHistoryEntry struct {
	Status    TaskLifecycleStatus `json:"status"`
	Agent     string              `json:"agent,omitempty"`
	Note      string              `json:"note,omitempty"`
	At        time.Time           `json:"at"`
}

// TaskStatus is the runtime record for a planned task. The Task struct
// itself (id, title, dependencies, effort, ...) is owned by the DAG the
// planner produces; TaskStatus is the mutable half the Blackboard owns.
type TaskStatus struct {
	TaskID          string               `json:"task_id"`
	Status          TaskLifecycleStatus  `json:"status"`
	AssignedAgent   string               `json:"assigned_agent,omitempty"`
	StartTime       *time.Time           `json:"start_time,omitempty"`
	EndTime         *time.Time           `json:"end_time,omitempty"`
	Error           string               `json:"error,omitempty"`
	Artifacts       []string             `json:"artifacts,omitempty"`
	Progress        int                  `json:"progress"`
	StatusHistory   []StatusHistoryEntry `json:"status_history,omitempty"`
	BlockingIssues  []BlockingIssue      `json:"blocking_issues,omitempty"`
}

// BlockingIssue is a recorded obstacle preventing a task from progressing.
type BlockingIssue struct {
	Text       string    `json:"text"`
	Agent      string    `json:"agent,omitempty"`
	Resolved   bool      `json:"resolved"`
	RaisedAt   time.Time `json:"raised_at"`
	ResolvedAt time.Time `json:"resolved_at,omitempty"`
}

// clone returns a deep copy safe to hand to a caller without holding the lock.
func (t TaskStatus) clone() TaskStatus {
	c := t
	if t.Artifacts != nil {
		c.Artifacts = append([]string(nil), t.Artifacts...)
	}
	if t.StatusHistory != nil {
		c.StatusHistory = append([]StatusHistoryEntry(nil), t.StatusHistory...)
	}
	if t.BlockingIssues != nil {
		c.BlockingIssues = append([]BlockingIssue(nil), t.BlockingIssues...)
	}
	return c
}

// ArtifactType enumerates the kinds of artifact an agent may produce.
type ArtifactType string

const (
	ArtifactFile     ArtifactType = "file"
	ArtifactDocument ArtifactType = "document"
	ArtifactData     ArtifactType = "data"
	ArtifactReport   ArtifactType = "report"
	ArtifactConfig   ArtifactType = "config"
	ArtifactSchema   ArtifactType = "schema"
	ArtifactOther    ArtifactType = "other"
)

// Artifact is a stored output produced by an agent during task execution.
// Invariant: either Path or Content is populated (enforced in create/update).
type Artifact struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Type         ArtifactType   `json:"type"`
	Path         string         `json:"path,omitempty"`
	Content      string         `json:"content,omitempty"`
	Summary      string         `json:"summary,omitempty"`
	Size         int64          `json:"size,omitempty"`
	MimeType     string         `json:"mime_type,omitempty"`
	CreatedBy    string         `json:"created_by"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Tags         []string       `json:"tags,omitempty"`
	Dependencies []string       `json:"dependencies,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

func (a Artifact) clone() Artifact {
	c := a
	if a.Tags != nil {
		c.Tags = append([]string(nil), a.Tags...)
	}
	if a.Dependencies != nil {
		c.Dependencies = append([]string(nil), a.Dependencies...)
	}
	if a.Metadata != nil {
		c.Metadata = make(map[string]any, len(a.Metadata))
		for k, v := range a.Metadata {
			c.Metadata[k] = v
		}
	}
	return c
}

// NotePriority orders shared notes for triage.
type NotePriority string

const (
	PriorityLow      NotePriority = "low"
	PriorityMedium   NotePriority = "medium"
	PriorityHigh     NotePriority = "high"
	PriorityCritical NotePriority = "critical"
)

// NoteCategory classifies the content of a shared note.
type NoteCategory string

const (
	CategoryInfo       NoteCategory = "info"
	CategoryWarning    NoteCategory = "warning"
	CategoryError      NoteCategory = "error"
	CategoryQuestion   NoteCategory = "question"
	CategorySuggestion NoteCategory = "suggestion"
	CategoryDecision   NoteCategory = "decision"
)

// Acknowledgment records one agent's response to a note requiring ack.
type Acknowledgment struct {
	Agent    string    `json:"agent"`
	Response string    `json:"response,omitempty"`
	At       time.Time `json:"at"`
}

// Note is an inter-agent message posted to the Blackboard. An empty
// TargetAgents means broadcast to all agents.
type Note struct {
	ID              string           `json:"id"`
	Author          string           `json:"author"`
	Title           string           `json:"title"`
	Body            string           `json:"body"`
	Priority        NotePriority     `json:"priority"`
	Category        NoteCategory     `json:"category"`
	TargetAgents    []string         `json:"target_agents,omitempty"`
	RelatedTasks    []string         `json:"related_tasks,omitempty"`
	RelatedArtifacts []string        `json:"related_artifacts,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	ReadBy          []string         `json:"read_by,omitempty"`
	RequiresAck     bool             `json:"requires_ack"`
	Acknowledgments []Acknowledgment `json:"acknowledgments,omitempty"`
}

func (n Note) clone() Note {
	c := n
	if n.TargetAgents != nil {
		c.TargetAgents = append([]string(nil), n.TargetAgents...)
	}
	if n.RelatedTasks != nil {
		c.RelatedTasks = append([]string(nil), n.RelatedTasks...)
	}
	if n.RelatedArtifacts != nil {
		c.RelatedArtifacts = append([]string(nil), n.RelatedArtifacts...)
	}
	if n.ReadBy != nil {
		c.ReadBy = append([]string(nil), n.ReadBy...)
	}
	if n.Acknowledgments != nil {
		c.Acknowledgments = append([]Acknowledgment(nil), n.Acknowledgments...)
	}
	return c
}

// isReadBy reports whether agent appears in ReadBy.
func (n Note) isReadBy(agent string) bool {
	for _, a := range n.ReadBy {
		if a == agent {
			return true
		}
	}
	return false
}

// targets reports whether the note is addressed to agent (broadcast counts).
func (n Note) targets(agent string) bool {
	if len(n.TargetAgents) == 0 {
		return true
	}
	for _, a := range n.TargetAgents {
		if a == agent {
			return true
		}
	}
	return false
}
