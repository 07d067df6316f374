package agentregistry

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/codeready-toolchain/swarmweave/pkg/swarmerrors"
)

const scopeProject = "project"
const scopeUser = "user"

// snapshotMap holds one immutable view of the registry's loaded agents,
// swapped atomically on reload — the same "build new map off-line, swap one
// pointer" idiom spec.md §9 prescribes for hot reload.
type snapshotMap map[string]*Descriptor

// Registry loads and serves agent descriptors from a project-local and a
// user-global directory. Reads never block on a reload in progress: List,
// Get, and the lookup helpers read the current snapshot pointer.
type Registry struct {
	projectDir string
	userDir    string

	current atomic.Pointer[snapshotMap]

	// warnings accumulates the last reload's non-fatal parse/collision
	// warnings, for a host to surface without crashing the process.
	warnings atomic.Pointer[[]string]
}

// New creates a Registry rooted at the given project and user agent
// directories. Call Reload once before using it.
func New(projectDir, userDir string) *Registry {
	r := &Registry{projectDir: projectDir, userDir: userDir}
	empty := snapshotMap{}
	r.current.Store(&empty)
	warn := []string{}
	r.warnings.Store(&warn)
	return r
}

// Reload rescans both roots, parses every `.md` file, and atomically
// replaces the in-memory map. Parse errors and name collisions are
// reported as warnings — they never make Reload fail, matching spec.md
// §4.1's "invalid files are reported as warnings, never fatal". Project
// scope always wins on a name collision with user scope.
func (r *Registry) Reload() error {
	var warnings []string

	userAgents, userWarnings := scanDir(r.userDir, scopeUser)
	warnings = append(warnings, userWarnings...)

	projectAgents, projectWarnings := scanDir(r.projectDir, scopeProject)
	warnings = append(warnings, projectWarnings...)

	merged := make(snapshotMap, len(userAgents)+len(projectAgents))
	for name, d := range userAgents {
		merged[name] = d
	}
	for name, d := range projectAgents {
		if _, collide := merged[name]; collide {
			warnings = append(warnings, fmt.Sprintf("agent %q defined in both project and user scope; project scope wins", name))
		}
		merged[name] = d
	}

	r.current.Store(&merged)
	r.warnings.Store(&warnings)

	for _, w := range warnings {
		slog.Warn("agentregistry: reload warning", "detail", w)
	}
	slog.Info("agentregistry: reload complete", "agent_count", len(merged), "warnings", len(warnings))
	return nil
}

// scanDir parses every `.md` file directly under dir. A missing directory
// is not an error — it yields zero agents with a warning (spec.md §7 kind
// 6: "filesystem unavailable for agents directory at startup ... the
// registry starts empty").
func scanDir(dir, scope string) (map[string]*Descriptor, []string) {
	out := make(map[string]*Descriptor)
	var warnings []string
	if dir == "" {
		return out, warnings
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("scanning %s: %v", dir, err))
		return out, warnings
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("reading %s: %v", path, err))
			continue
		}
		d, err := Parse(string(raw), path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("parsing %s: %v", path, err))
			continue
		}
		d.Scope = scope
		if existing, ok := out[d.Name]; ok {
			warnings = append(warnings, fmt.Sprintf("duplicate agent name %q in %s scope: %s shadowed by %s", d.Name, scope, existing.SourcePath, d.SourcePath))
		}
		out[d.Name] = d
	}
	return out, warnings
}

// Warnings returns the warnings produced by the most recent Reload.
func (r *Registry) Warnings() []string {
	return append([]string(nil), *r.warnings.Load()...)
}

// List returns a snapshot of every currently valid agent, sorted by name
// for deterministic output.
func (r *Registry) List() []*Descriptor {
	snap := *r.current.Load()
	out := make([]*Descriptor, 0, len(snap))
	for _, d := range snap {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns the descriptor for name, or ErrNotFound.
func (r *Registry) Get(name string) (*Descriptor, error) {
	snap := *r.current.Load()
	d, ok := snap[name]
	if !ok {
		return nil, fmt.Errorf("agent %q: %w", name, swarmerrors.ErrNotFound)
	}
	return d, nil
}

// LookupByKeyword returns every agent whose Keywords contains keyword
// (case-insensitive), in name order.
func (r *Registry) LookupByKeyword(keyword string) []*Descriptor {
	keyword = strings.ToLower(keyword)
	var out []*Descriptor
	for _, d := range r.List() {
		for _, k := range d.Keywords {
			if strings.ToLower(k) == keyword {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

// LookupByCategory returns every agent whose Keywords contains category,
// treating "category" as a synonym axis over the same field set since
// spec.md's data model does not carve out a separate category field for
// agents (only for Tasks) — an agent's category affinity is expressed via
// its keywords.
func (r *Registry) LookupByCategory(category string) []*Descriptor {
	return r.LookupByKeyword(category)
}
