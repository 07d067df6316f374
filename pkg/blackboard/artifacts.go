package blackboard

import (
	"fmt"

	"github.com/codeready-toolchain/swarmweave/pkg/swarmerrors"
)

// CreateArtifact stores a new artifact and returns its id. Either Path or
// Content must be populated (spec.md §3 invariant); CreatedAt/UpdatedAt and
// ID are stamped here regardless of what the caller supplied.
func (s *Store) CreateArtifact(a Artifact) (string, error) {
	if a.Path == "" && a.Content == "" {
		return "", swarmerrors.NewValidationError("artifact", a.Name, "path|content", fmt.Errorf("one of path or content is required"))
	}
	if a.ID == "" {
		a.ID = newID()
	}
	n := now()
	a.CreatedAt = n
	a.UpdatedAt = n

	s.artifactsMu.Lock()
	s.artifacts[a.ID] = &a
	s.artifactsMu.Unlock()

	s.bus.publish(Event{Type: EventArtifactCreated, Timestamp: n, Agent: a.CreatedBy, Data: a.clone()})
	return a.ID, nil
}

// ArtifactDelta carries the fields an update may change; zero-value fields
// are left untouched except where explicitly noted.
type ArtifactDelta struct {
	Content  *string
	Summary  *string
	Path     *string
	Size     *int64
	MimeType *string
	Tags     []string
	Metadata map[string]any
}

// UpdateArtifact applies delta to an existing artifact. Returns false if the
// artifact does not exist (matching the §4.3 "update(...) → bool" contract
// rather than an error, since a missing artifact during a racing update is
// an expected, non-exceptional outcome for callers).
func (s *Store) UpdateArtifact(id string, delta ArtifactDelta, agent string) bool {
	s.artifactsMu.Lock()
	a, ok := s.artifacts[id]
	if !ok {
		s.artifactsMu.Unlock()
		return false
	}
	if delta.Content != nil {
		a.Content = *delta.Content
	}
	if delta.Summary != nil {
		a.Summary = *delta.Summary
	}
	if delta.Path != nil {
		a.Path = *delta.Path
	}
	if delta.Size != nil {
		a.Size = *delta.Size
	}
	if delta.MimeType != nil {
		a.MimeType = *delta.MimeType
	}
	if delta.Tags != nil {
		a.Tags = append([]string(nil), delta.Tags...)
	}
	if delta.Metadata != nil {
		if a.Metadata == nil {
			a.Metadata = make(map[string]any, len(delta.Metadata))
		}
		for k, v := range delta.Metadata {
			a.Metadata[k] = v
		}
	}
	a.UpdatedAt = now()
	snapshot := a.clone()
	s.artifactsMu.Unlock()

	s.bus.publish(Event{Type: EventArtifactUpdated, Timestamp: snapshot.UpdatedAt, Agent: agent, Data: snapshot})
	return true
}

// GetArtifact returns a copy of the artifact by id.
func (s *Store) GetArtifact(id string) (Artifact, error) {
	s.artifactsMu.RLock()
	defer s.artifactsMu.RUnlock()
	a, ok := s.artifacts[id]
	if !ok {
		return Artifact{}, fmt.Errorf("artifact %s: %w", id, swarmerrors.ErrNotFound)
	}
	return a.clone(), nil
}

// ListArtifactsByTask returns copies of all artifacts created by taskID.
func (s *Store) ListArtifactsByTask(taskID string) []Artifact {
	s.artifactsMu.RLock()
	defer s.artifactsMu.RUnlock()
	var out []Artifact
	for _, a := range s.artifacts {
		if a.CreatedBy == taskID {
			out = append(out, a.clone())
		}
	}
	return out
}

// ListArtifacts returns copies of every artifact.
func (s *Store) ListArtifacts() []Artifact {
	s.artifactsMu.RLock()
	defer s.artifactsMu.RUnlock()
	out := make([]Artifact, 0, len(s.artifacts))
	for _, a := range s.artifacts {
		out = append(out, a.clone())
	}
	return out
}
