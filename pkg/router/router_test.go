package router

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/swarmweave/pkg/agentregistry"
)

func writeAgent(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".md"), []byte(body), 0o644))
}

func newRegistry(t *testing.T) (*agentregistry.Registry, string) {
	t.Helper()
	dir := t.TempDir()
	writeAgent(t, dir, "backend-engineer", `---
name: backend-engineer
description: implements backend services and APIs
keywords: [backend, api, database]
tools: [read_file, write_file, edit_file]
---
Backend work.
`)
	writeAgent(t, dir, "frontend-engineer", `---
name: frontend-engineer
description: implements UI components
keywords: [frontend, ui, react]
tools: [read_file, write_file, edit_file, browser_screenshot]
---
Frontend work.
`)
	writeAgent(t, dir, "general-purpose", `---
name: general-purpose
description: handles anything not covered by a specialist
---
General work.
`)
	r := agentregistry.New(dir, "")
	require.NoError(t, r.Reload())
	return r, dir
}

func TestResolveScoresKeywordOverlap(t *testing.T) {
	reg, _ := newRegistry(t)
	rt := New(reg)

	res, err := rt.Resolve(Task{Category: "implementation", Description: "build the backend API"}, "implement the database layer")
	require.NoError(t, err)
	assert.Equal(t, "backend-engineer", res.Agent.Name)
	assert.False(t, res.ExplicitlyUsed)
}

func TestResolveFallsBackToGeneralPurpose(t *testing.T) {
	reg, _ := newRegistry(t)
	rt := New(reg)

	res, err := rt.Resolve(Task{Category: "unrelated", Description: "something obscure"}, "zzz nonmatching query qqq")
	require.NoError(t, err)
	assert.Equal(t, DefaultAgentName, res.Agent.Name)
	assert.Equal(t, 0, res.Score)
}

func TestResolveExplicitInvocationBypassesScoring(t *testing.T) {
	reg, _ := newRegistry(t)
	rt := New(reg)

	res, err := rt.Resolve(Task{Category: "frontend"}, `use backend-engineer: "write the auth middleware"`)
	require.NoError(t, err)
	assert.True(t, res.ExplicitlyUsed)
	assert.Equal(t, "backend-engineer", res.Agent.Name)
	assert.Equal(t, "write the auth middleware", res.Query)
}

func TestResolveExplicitInvocationUnknownAgentFails(t *testing.T) {
	reg, _ := newRegistry(t)
	rt := New(reg)

	_, err := rt.Resolve(Task{}, `use nonexistent-agent: "do something"`)
	require.Error(t, err)
}
