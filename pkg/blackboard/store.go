package blackboard

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is the concurrent, event-emitting Blackboard. It exclusively owns
// all TaskStatus, Artifact, and Note records for a running session; the DAG
// itself is owned by the in-flight Scheduler and only ever reaches the
// Store through status updates (spec.md §3, Ownership).
type Store struct {
	tasksMu sync.RWMutex
	tasks   map[string]*TaskStatus

	artifactsMu sync.RWMutex
	artifacts   map[string]*Artifact

	notesMu sync.RWMutex
	notes   map[string]*Note

	bus *eventBus
}

// New creates an empty Blackboard.
func New() *Store {
	return &Store{
		tasks:     make(map[string]*TaskStatus),
		artifacts: make(map[string]*Artifact),
		notes:     make(map[string]*Note),
		bus:       newEventBus(),
	}
}

// On subscribes fn to future events and returns a token for Off.
func (s *Store) On(fn Listener) int { return s.bus.subscribe(fn) }

// Off unsubscribes a listener previously registered with On.
func (s *Store) Off(token int) { s.bus.unsubscribe(token) }

// Stats is a point-in-time summary of Blackboard health, modeled on the
// teacher's PoolHealth/WorkerHealth reporting shape.
type Stats struct {
	TaskCount       int   `json:"task_count"`
	ArtifactCount   int   `json:"artifact_count"`
	NoteCount       int   `json:"note_count"`
	Subscribers     int   `json:"subscribers"`
	DroppedEvents   int64 `json:"dropped_events"`
}

// Stats returns a snapshot summary of the store.
func (s *Store) Stats() Stats {
	s.tasksMu.RLock()
	tc := len(s.tasks)
	s.tasksMu.RUnlock()
	s.artifactsMu.RLock()
	ac := len(s.artifacts)
	s.artifactsMu.RUnlock()
	s.notesMu.RLock()
	nc := len(s.notes)
	s.notesMu.RUnlock()
	return Stats{
		TaskCount:     tc,
		ArtifactCount: ac,
		NoteCount:     nc,
		Subscribers:   s.bus.subscriberCount(),
		DroppedEvents: s.bus.droppedTotal(),
	}
}

// Clear removes all tasks, artifacts, and notes. Subscribers are kept.
func (s *Store) Clear() {
	s.tasksMu.Lock()
	s.tasks = make(map[string]*TaskStatus)
	s.tasksMu.Unlock()

	s.artifactsMu.Lock()
	s.artifacts = make(map[string]*Artifact)
	s.artifactsMu.Unlock()

	s.notesMu.Lock()
	s.notes = make(map[string]*Note)
	s.notesMu.Unlock()
}

func newID() string { return uuid.New().String() }

func now() time.Time { return time.Now() }
