package hostsync

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portagekit/portage/pkg/discovery"
	"github.com/portagekit/portage/pkg/frontmatter"
)

func writeAsset(t *testing.T, root, subdir, name, content string) {
	t.Helper()
	dir := filepath.Join(root, subdir)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newTestSynchronizer(t *testing.T, projectRoot, userRoot, hostDir string) *Synchronizer {
	t.Helper()
	disc, err := discovery.NewDiscovery(discovery.WithRoots(projectRoot, userRoot))
	require.NoError(t, err)
	return NewSynchronizer(disc, hostDir)
}

func TestSyncAgents(t *testing.T) {
	projectRoot := t.TempDir()
	hostDir := t.TempDir()

	writeAsset(t, projectRoot, "agents", "reviewer.md", `---
name: reviewer
description: Reviews pull requests
tools: Read, Grep
model: sonnet
permission-mode: acceptEdits
---

You are a careful reviewer.
`)

	syncer := newTestSynchronizer(t, projectRoot, t.TempDir(), hostDir)
	synced, err := syncer.SyncAgents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"reviewer"}, synced)

	content, err := os.ReadFile(filepath.Join(hostDir, "agent", "reviewer.md"))
	require.NoError(t, err)

	doc := frontmatter.Parse(string(content))
	assert.Equal(t, "Reviews pull requests", doc.String("description"))
	assert.Equal(t, "subagent", doc.String("mode"))
	assert.Equal(t, "sonnet", doc.String("model"))
	assert.Equal(t, []string{"Read", "Grep"}, doc.Strings("tools"))
	// permission-mode has no host equivalent and must not survive.
	assert.NotContains(t, doc.Meta, "permission-mode")
	assert.Contains(t, doc.Body, "You are a careful reviewer.")
}

func TestSyncAgents_MissingDescriptionSkipped(t *testing.T) {
	projectRoot := t.TempDir()
	hostDir := t.TempDir()

	writeAsset(t, projectRoot, "agents", "good.md", "---\ndescription: fine\n---\n\nbody\n")
	writeAsset(t, projectRoot, "agents", "broken.md", "---\nmodel: sonnet\n---\n\nbody\n")

	syncer := newTestSynchronizer(t, projectRoot, t.TempDir(), hostDir)
	synced, err := syncer.SyncAgents(context.Background())

	assert.Equal(t, []string{"good"}, synced)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")

	_, statErr := os.Stat(filepath.Join(hostDir, "agent", "broken.md"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestSyncCommands(t *testing.T) {
	projectRoot := t.TempDir()
	hostDir := t.TempDir()

	writeAsset(t, projectRoot, "commands", "deploy.md", `---
description: Deploy the service
allowed-tools: Bash
argument-hint: "[environment]"
---

Deploy to $ARGUMENTS now.
`)

	syncer := newTestSynchronizer(t, projectRoot, t.TempDir(), hostDir)
	synced, err := syncer.SyncCommands(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"deploy"}, synced)

	content, err := os.ReadFile(filepath.Join(hostDir, "command", "deploy.md"))
	require.NoError(t, err)

	doc := frontmatter.Parse(string(content))
	assert.Equal(t, "Deploy the service", doc.String("description"))
	assert.Equal(t, []string{"Bash"}, doc.Strings("tools"))
	assert.NotContains(t, doc.Meta, "argument-hint")
	// The body passes through untouched; the host expands placeholders.
	assert.Contains(t, doc.Body, "Deploy to $ARGUMENTS now.")
}

func TestSync_Idempotent(t *testing.T) {
	projectRoot := t.TempDir()
	hostDir := t.TempDir()

	writeAsset(t, projectRoot, "agents", "reviewer.md", `---
description: Reviews pull requests
tools: Read, Grep
---

Body text.
`)

	syncer := newTestSynchronizer(t, projectRoot, t.TempDir(), hostDir)
	ctx := context.Background()

	_, err := syncer.SyncAgents(ctx)
	require.NoError(t, err)
	first, err := os.ReadFile(filepath.Join(hostDir, "agent", "reviewer.md"))
	require.NoError(t, err)

	_, err = syncer.SyncAgents(ctx)
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(hostDir, "agent", "reviewer.md"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSyncAgents_ProjectShadowsUser(t *testing.T) {
	projectRoot := t.TempDir()
	userRoot := t.TempDir()
	hostDir := t.TempDir()

	writeAsset(t, projectRoot, "agents", "x.md", "---\ndescription: project copy\n---\n\nbody\n")
	writeAsset(t, userRoot, "agents", "x.md", "---\ndescription: user copy\n---\n\nbody\n")

	syncer := newTestSynchronizer(t, projectRoot, userRoot, hostDir)
	synced, err := syncer.SyncAgents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, synced)

	content, err := os.ReadFile(filepath.Join(hostDir, "agent", "x.md"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "project copy")
}
