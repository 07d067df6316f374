package blackboard

import (
	"regexp"
	"strings"
	"time"
)

// Query composes the per-kind filters from spec.md §4.3: Search returns the
// intersection of whichever fields are non-nil. Each field is independent —
// an empty Query matches everything of the relevant kind.
type Query struct {
	// Artifacts
	ArtifactType *ArtifactType
	Tag          *string
	Author       *string // artifact.CreatedBy or note.Author
	CreatedAfter *time.Time
	CreatedBefore *time.Time
	NamePattern  *regexp.Regexp // matched against artifact Name or note Title/Body

	// Tasks
	AssignedAgent   *string
	ProgressMin     *int
	ProgressMax     *int
	HasBlockingIssue *bool

	// Notes
	ReadBy *string
}

// SearchResult bundles the three kinds of match, since a single Query may
// touch all three resource kinds at once (e.g. Author matches both artifact
// creators and note authors).
type SearchResult struct {
	Tasks     []TaskStatus
	Artifacts []Artifact
	Notes     []Note
}

// Search returns every task, artifact, and note matching every non-nil
// field of q (an AND across the supplied predicates).
func (s *Store) Search(q Query) SearchResult {
	return SearchResult{
		Tasks:     s.searchTasks(q),
		Artifacts: s.searchArtifacts(q),
		Notes:     s.searchNotes(q),
	}
}

func (s *Store) searchTasks(q Query) []TaskStatus {
	s.tasksMu.RLock()
	defer s.tasksMu.RUnlock()
	var out []TaskStatus
	for _, t := range s.tasks {
		if q.AssignedAgent != nil && t.AssignedAgent != *q.AssignedAgent {
			continue
		}
		if q.ProgressMin != nil && t.Progress < *q.ProgressMin {
			continue
		}
		if q.ProgressMax != nil && t.Progress > *q.ProgressMax {
			continue
		}
		if q.HasBlockingIssue != nil {
			has := false
			for _, bi := range t.BlockingIssues {
				if !bi.Resolved {
					has = true
					break
				}
			}
			if has != *q.HasBlockingIssue {
				continue
			}
		}
		out = append(out, t.clone())
	}
	return out
}

func (s *Store) searchArtifacts(q Query) []Artifact {
	s.artifactsMu.RLock()
	defer s.artifactsMu.RUnlock()
	var out []Artifact
	for _, a := range s.artifacts {
		if q.ArtifactType != nil && a.Type != *q.ArtifactType {
			continue
		}
		if q.Tag != nil && !containsString(a.Tags, *q.Tag) {
			continue
		}
		if q.Author != nil && a.CreatedBy != *q.Author {
			continue
		}
		if q.CreatedAfter != nil && a.CreatedAt.Before(*q.CreatedAfter) {
			continue
		}
		if q.CreatedBefore != nil && a.CreatedAt.After(*q.CreatedBefore) {
			continue
		}
		if q.NamePattern != nil && !q.NamePattern.MatchString(a.Name) {
			continue
		}
		out = append(out, a.clone())
	}
	return out
}

func (s *Store) searchNotes(q Query) []Note {
	s.notesMu.RLock()
	defer s.notesMu.RUnlock()
	var out []Note
	for _, n := range s.notes {
		if q.Author != nil && n.Author != *q.Author {
			continue
		}
		if q.CreatedAfter != nil && n.CreatedAt.Before(*q.CreatedAfter) {
			continue
		}
		if q.CreatedBefore != nil && n.CreatedAt.After(*q.CreatedBefore) {
			continue
		}
		if q.NamePattern != nil && !q.NamePattern.MatchString(n.Title) && !q.NamePattern.MatchString(n.Body) {
			continue
		}
		if q.ReadBy != nil && !n.isReadBy(*q.ReadBy) {
			continue
		}
		out = append(out, n.clone())
	}
	return out
}

func containsString(ss []string, v string) bool {
	for _, s := range ss {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
