// Package router maps a (task, query) pair to an AgentDescriptor (spec.md
// §4.7). Resolution never executes anything; failures are surfaced to the
// Scheduler, which marks the task failed with reason "no-agent".
//
// Scoring is grounded on the teacher's pkg/config/sub_agent_registry.go
// Filter/Get read surface, generalized from "allowed sub-agent names" to
// "best-matching agent for a task": both walk a flat, sorted entry list
// rather than a secondary index, since the entry counts involved (tens of
// agents) never justify one.
package router

import (
	"regexp"
	"strings"

	"github.com/codeready-toolchain/swarmweave/pkg/agentregistry"
)

// DefaultAgentName is returned when no agent scores above zero (spec.md
// §4.7 "On an empty match, return a default general-purpose agent").
const DefaultAgentName = "general-purpose"

// explicitInvocation matches the `use <agent>: "<query>"` override form.
var explicitInvocation = regexp.MustCompile(`(?is)^\s*use\s+([a-z0-9][a-z0-9-]*)\s*:\s*"(.*)"\s*$`)

// Task is the narrow view of a planner task the router needs to score
// candidates; callers pass the planner's Task fields directly.
type Task struct {
	Category    string
	Description string
}

// Router resolves a task/query pair against an AgentRegistry.
type Router struct {
	registry *agentregistry.Registry
}

// New builds a Router backed by registry.
func New(registry *agentregistry.Registry) *Router {
	return &Router{registry: registry}
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	Agent          *agentregistry.Descriptor
	Query          string // the query to actually send (post explicit-invocation unwrap)
	ExplicitlyUsed bool
	Score          int
}

// Resolve maps (task, query) to an agent. An explicit-invocation override
// (`use <agent>: "<query>"`) bypasses scoring entirely and fails outright
// if the named agent does not exist. Otherwise every registered agent is
// scored by keyword/category/description overlap; ties prefer the agent
// with the narrower tool set (more specialized); an empty match falls back
// to DefaultAgentName if it exists, else resolution fails.
func (r *Router) Resolve(task Task, query string) (Resolution, error) {
	if m := explicitInvocation.FindStringSubmatch(query); m != nil {
		name, innerQuery := m[1], m[2]
		agent, err := r.registry.Get(name)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Agent: agent, Query: innerQuery, ExplicitlyUsed: true}, nil
	}

	candidates := r.registry.List()
	best := -1
	var bestAgent *agentregistry.Descriptor
	for _, a := range candidates {
		score := scoreAgent(a, task, query)
		if score <= 0 {
			continue
		}
		if bestAgent == nil || score > best || (score == best && len(a.Tools) < len(bestAgent.Tools)) {
			best = score
			bestAgent = a
		}
	}

	if bestAgent == nil {
		fallback, err := r.registry.Get(DefaultAgentName)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Agent: fallback, Query: query, Score: 0}, nil
	}
	return Resolution{Agent: bestAgent, Query: query, Score: best}, nil
}

// scoreAgent computes a keyword/category/description overlap score. The
// exact weights are an implementation choice spec.md §9 leaves open ("the
// scoring weights inside the Agent Router; the spec fixes only the
// tie-breaking rules and the fallback agent") — keyword hits count most
// since they are the most deliberate signal an agent author set, category
// match is a medium signal, and free-text description overlap is the
// weakest, least specific signal.
func scoreAgent(a *agentregistry.Descriptor, task Task, query string) int {
	haystack := strings.ToLower(query + " " + task.Description + " " + task.Category)
	score := 0
	for _, kw := range a.Keywords {
		if strings.Contains(haystack, strings.ToLower(kw)) {
			score += 3
		}
	}
	if task.Category != "" {
		lowerCat := strings.ToLower(task.Category)
		for _, kw := range a.Keywords {
			if strings.EqualFold(kw, task.Category) {
				score += 2
			}
		}
		if strings.Contains(strings.ToLower(a.Description), lowerCat) {
			score += 2
		}
	}
	descWords := strings.Fields(strings.ToLower(a.Description))
	for _, w := range descWords {
		if len(w) < 4 {
			continue
		}
		if strings.Contains(haystack, w) {
			score++
		}
	}
	return score
}
