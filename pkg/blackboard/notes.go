package blackboard

import (
	"fmt"

	"github.com/codeready-toolchain/swarmweave/pkg/swarmerrors"
)

// CreateNote posts a new shared note and returns its id.
func (s *Store) CreateNote(n Note) (string, error) {
	if n.ID == "" {
		n.ID = newID()
	}
	n.CreatedAt = now()

	s.notesMu.Lock()
	s.notes[n.ID] = &n
	s.notesMu.Unlock()

	s.bus.publish(Event{Type: EventNoteCreated, Timestamp: n.CreatedAt, Agent: n.Author, Data: n.clone()})
	return n.ID, nil
}

// MarkRead records that agent has read note id. A note is "read by A" iff A
// appears in ReadBy — idempotent if already marked.
func (s *Store) MarkRead(id, agent string) error {
	s.notesMu.Lock()
	n, ok := s.notes[id]
	if !ok {
		s.notesMu.Unlock()
		return fmt.Errorf("note %s: %w", id, swarmerrors.ErrNotFound)
	}
	if !n.isReadBy(agent) {
		n.ReadBy = append(n.ReadBy, agent)
	}
	snapshot := n.clone()
	s.notesMu.Unlock()
	s.bus.publish(Event{Type: EventNoteUpdated, Timestamp: now(), Agent: agent, Data: snapshot})
	return nil
}

// Ack records agent's acknowledgment of note id, optionally with a response.
// An ack for A implies read by A (spec.md §3 invariant).
func (s *Store) Ack(id, agent, response string) error {
	s.notesMu.Lock()
	n, ok := s.notes[id]
	if !ok {
		s.notesMu.Unlock()
		return fmt.Errorf("note %s: %w", id, swarmerrors.ErrNotFound)
	}
	if !n.isReadBy(agent) {
		n.ReadBy = append(n.ReadBy, agent)
	}
	n.Acknowledgments = append(n.Acknowledgments, Acknowledgment{Agent: agent, Response: response, At: now()})
	snapshot := n.clone()
	s.notesMu.Unlock()
	s.bus.publish(Event{Type: EventNoteUpdated, Timestamp: now(), Agent: agent, Data: snapshot})
	return nil
}

// ForAgent returns notes addressed to agent (targeted or broadcast). If
// includeUnreadOnly is true, notes already read by agent are excluded.
func (s *Store) ForAgent(agent string, includeUnreadOnly bool) []Note {
	s.notesMu.RLock()
	defer s.notesMu.RUnlock()
	var out []Note
	for _, n := range s.notes {
		if !n.targets(agent) {
			continue
		}
		if includeUnreadOnly && n.isReadBy(agent) {
			continue
		}
		out = append(out, n.clone())
	}
	return out
}

// GetNote returns a copy of the note by id.
func (s *Store) GetNote(id string) (Note, error) {
	s.notesMu.RLock()
	defer s.notesMu.RUnlock()
	n, ok := s.notes[id]
	if !ok {
		return Note{}, fmt.Errorf("note %s: %w", id, swarmerrors.ErrNotFound)
	}
	return n.clone(), nil
}

// ListNotes returns copies of every note.
func (s *Store) ListNotes() []Note {
	s.notesMu.RLock()
	defer s.notesMu.RUnlock()
	out := make([]Note, 0, len(s.notes))
	for _, n := range s.notes {
		out = append(out, n.clone())
	}
	return out
}
