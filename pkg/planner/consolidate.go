package planner

import (
	"math"
	"strings"
)

// consolidate merges adjacent tasks sharing a category into one task each,
// in a single pass over the ordered skeleton, when the task count exceeds
// maxTasks. "Adjacent" is positional in the strategy's fixed task order,
// not by dependency proximity — this keeps the merge deterministic and
// matches a template's intentional phase grouping (e.g. the MVP template's
// four consecutive implementation-category tasks).
//
// A merged task's effort is floor(0.8 * sum(efforts)), minimum 1; its
// dependencies are the union of the merged tasks' dependencies that point
// outside the merged group; its expected outputs are the union of the
// merged tasks' outputs. Order is preserved.
//
// Merging renames a group's id to its first member's id plus "-consolidated",
// so every dependency reference to a merged member — from another merged
// group, from a surviving single task, or from within the same group — must
// be rewritten through an old-id -> new-id map once every group's new id is
// known; otherwise downstream tasks (and other groups' external deps) keep
// pointing at ids that no longer exist in the DAG.
func consolidate(skels []skeleton, maxTasks int) []skeleton {
	if maxTasks <= 0 || len(skels) <= maxTasks {
		return skels
	}

	var groups [][]skeleton
	i := 0
	for i < len(skels) {
		j := i + 1
		for j < len(skels) && skels[j].category == skels[i].category {
			j++
		}
		groups = append(groups, skels[i:j])
		i = j
	}

	out := make([]skeleton, len(groups))
	idMap := make(map[string]string)
	for g, group := range groups {
		merged := mergeGroup(group)
		out[g] = merged
		for _, sk := range group {
			idMap[sk.id] = merged.id
		}
	}

	for g := range out {
		out[g].deps = remapDeps(out[g].deps, idMap)
	}
	return out
}

// remapDeps rewrites each dependency id through idMap (ids outside the map
// are kept as-is) and deduplicates, since multiple merged members of the
// same external group may map to the same new id.
func remapDeps(deps []string, idMap map[string]string) []string {
	if len(deps) == 0 {
		return deps
	}
	seen := make(map[string]bool, len(deps))
	out := make([]string, 0, len(deps))
	for _, d := range deps {
		mapped := d
		if to, ok := idMap[d]; ok {
			mapped = to
		}
		if !seen[mapped] {
			seen[mapped] = true
			out = append(out, mapped)
		}
	}
	return out
}

func mergeGroup(group []skeleton) skeleton {
	if len(group) == 1 {
		return group[0]
	}

	ids := make(map[string]bool, len(group))
	for _, sk := range group {
		ids[sk.id] = true
	}

	var titles []string
	var effortSum int
	var deps []string
	seenDep := map[string]bool{}
	var outputs []string
	seenOutput := map[string]bool{}

	for _, sk := range group {
		titles = append(titles, sk.title)
		effortSum += sk.effort
		for _, d := range sk.deps {
			if !ids[d] && !seenDep[d] {
				seenDep[d] = true
				deps = append(deps, d)
			}
		}
		for _, o := range sk.outputs {
			if !seenOutput[o] {
				seenOutput[o] = true
				outputs = append(outputs, o)
			}
		}
	}

	mergedEffort := int(math.Floor(0.8 * float64(effortSum)))
	if mergedEffort < 1 {
		mergedEffort = 1
	}

	return skeleton{
		id:       group[0].id + "-consolidated",
		title:    strings.Join(titles, " + "),
		category: group[0].category,
		deps:     deps,
		effort:   mergedEffort,
		outputs:  outputs,
	}
}
