package agentregistry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAgent(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".md"), []byte(body), 0o644))
}

const reviewerBody = `---
name: reviewer
description: reviews code changes for correctness
keywords: [review, correctness]
tools: [read_file, grep]
---
You review code.
`

func TestReloadParsesAndListsDescriptors(t *testing.T) {
	projectDir := t.TempDir()
	userDir := t.TempDir()
	writeAgent(t, projectDir, "reviewer", reviewerBody)

	r := New(projectDir, userDir)
	require.NoError(t, r.Reload())

	got := r.List()
	require.Len(t, got, 1)
	assert.Equal(t, "reviewer", got[0].Name)
	assert.Equal(t, scopeProject, got[0].Scope)

	d, err := r.Get("reviewer")
	require.NoError(t, err)
	assert.Equal(t, "You review code.", d.SystemPrompt)
}

func TestReloadProjectScopeWinsOnCollision(t *testing.T) {
	projectDir := t.TempDir()
	userDir := t.TempDir()
	writeAgent(t, userDir, "reviewer", `---
name: reviewer
description: user-scope generic reviewer
---
user body
`)
	writeAgent(t, projectDir, "reviewer", reviewerBody)

	r := New(projectDir, userDir)
	require.NoError(t, r.Reload())

	d, err := r.Get("reviewer")
	require.NoError(t, err)
	assert.Equal(t, scopeProject, d.Scope)
	assert.NotEmpty(t, r.Warnings())
}

func TestReloadInvalidFileIsWarningNotFatal(t *testing.T) {
	projectDir := t.TempDir()
	userDir := t.TempDir()
	writeAgent(t, projectDir, "broken", "not even frontmatter")
	writeAgent(t, projectDir, "reviewer", reviewerBody)

	r := New(projectDir, userDir)
	err := r.Reload()
	require.NoError(t, err)

	assert.Len(t, r.List(), 1)
	assert.NotEmpty(t, r.Warnings())
}

func TestMissingDirectoryYieldsEmptyRegistryNotError(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "does-not-exist"), filepath.Join(t.TempDir(), "also-missing"))
	require.NoError(t, r.Reload())
	assert.Empty(t, r.List())
	assert.NotEmpty(t, r.Warnings())
}

func TestLookupByKeyword(t *testing.T) {
	projectDir := t.TempDir()
	userDir := t.TempDir()
	writeAgent(t, projectDir, "reviewer", reviewerBody)

	r := New(projectDir, userDir)
	require.NoError(t, r.Reload())

	found := r.LookupByKeyword("review")
	require.Len(t, found, 1)
	assert.Equal(t, "reviewer", found[0].Name)

	assert.Empty(t, r.LookupByKeyword("nonexistent"))
}

func TestGetUnknownAgentReturnsNotFound(t *testing.T) {
	r := New(t.TempDir(), t.TempDir())
	require.NoError(t, r.Reload())
	_, err := r.Get("nope")
	assert.Error(t, err)
}
