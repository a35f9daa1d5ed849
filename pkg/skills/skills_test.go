package skills

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentlens/agentlens/pkg/types/catalog"
)

func writeSkill(t *testing.T, dir, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "SKILL.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDiscover(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()

	writeSkill(t, filepath.Join(tmpDir, ".claude", "skills", "review"), `---
name: review
description: Reviews pull requests
---

# Review

Step by step instructions.
`)
	writeSkill(t, filepath.Join(tmpDir, "tools", "deploy"), `---
name: deploy
description: Deploys the service
---

Deployment runbook.
`)

	found, err := Discover(ctx, tmpDir)
	require.NoError(t, err)
	require.Len(t, found, 2)

	byName := map[string]catalog.Skill{}
	for _, s := range found {
		byName[s.Name] = s
	}

	review := byName["review"]
	assert.Equal(t, "Reviews pull requests", review.Description)
	assert.Equal(t, ".claude/skills/review/SKILL.md", review.Path)
	assert.Equal(t, "review", review.Directory)
	assert.NotEmpty(t, review.ContentHash)
	assert.Contains(t, review.Content, "# Review")
	assert.NotContains(t, review.Content, "name: review")

	deploy := byName["deploy"]
	assert.Equal(t, "tools/deploy/SKILL.md", deploy.Path)
	assert.Equal(t, "deploy", deploy.Directory)
}

func TestDiscoverCaseInsensitive(t *testing.T) {
	tmpDir := t.TempDir()
	dir := filepath.Join(tmpDir, "mixed")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skill.md"), []byte(`---
name: lowercase
description: Lowercase manifest filename
---

Body.
`), 0o644))

	found, err := Discover(context.Background(), tmpDir)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "lowercase", found[0].Name)
}

func TestDiscoverValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("missing name excluded", func(t *testing.T) {
		tmpDir := t.TempDir()
		writeSkill(t, filepath.Join(tmpDir, "no-name"), `---
description: Missing the name field
---

Body.
`)
		found, err := Discover(ctx, tmpDir)
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("missing description excluded", func(t *testing.T) {
		tmpDir := t.TempDir()
		writeSkill(t, filepath.Join(tmpDir, "no-desc"), `---
name: no-desc
---

Body.
`)
		found, err := Discover(ctx, tmpDir)
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("no frontmatter excluded", func(t *testing.T) {
		tmpDir := t.TempDir()
		writeSkill(t, filepath.Join(tmpDir, "plain"), "# Just markdown\n\nNo frontmatter at all.\n")
		found, err := Discover(ctx, tmpDir)
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("malformed frontmatter excluded", func(t *testing.T) {
		tmpDir := t.TempDir()
		writeSkill(t, filepath.Join(tmpDir, "broken"), "---\nname broken no colon\n\t: bad\n---\n\nBody.\n")
		found, err := Discover(ctx, tmpDir)
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}

func TestDiscoverIgnoredDirs(t *testing.T) {
	tmpDir := t.TempDir()
	writeSkill(t, filepath.Join(tmpDir, "node_modules", "pkg", "skill"), `---
name: hidden-away
description: Should not be found
---

Body.
`)

	found, err := Discover(context.Background(), tmpDir)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestDiscoverMaxDepth(t *testing.T) {
	tmpDir := t.TempDir()
	writeSkill(t, filepath.Join(tmpDir, "shallow"), `---
name: shallow
description: One level down
---

Body.
`)
	writeSkill(t, filepath.Join(tmpDir, "a", "b", "c", "deep"), `---
name: deep
description: Far down the tree
---

Body.
`)

	found, err := Discover(context.Background(), tmpDir, WithMaxDepth(1))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "shallow", found[0].Name)
}

func TestDiscoverMissingBaseDir(t *testing.T) {
	_, err := Discover(context.Background(), "/non/existent/path")
	assert.Error(t, err)
}

func TestSummarizeAndDeduplicate(t *testing.T) {
	content := `---
name: shared
description: The same manifest twice
---

Body.
`
	tmpDir := t.TempDir()
	writeSkill(t, filepath.Join(tmpDir, "first"), content)
	writeSkill(t, filepath.Join(tmpDir, "nested", "deeper", "second"), content)
	writeSkill(t, filepath.Join(tmpDir, "other"), `---
name: other
description: A distinct manifest
---

Body.
`)

	found, err := Discover(context.Background(), tmpDir)
	require.NoError(t, err)
	require.Len(t, found, 3)

	unique, report := SummarizeAndDeduplicate(found)

	assert.Equal(t, 3, report.TotalProcessed)
	assert.Equal(t, 2, report.UniqueCount)
	assert.Equal(t, 1, report.DuplicatesRemoved)
	require.Len(t, unique, 2)

	var shared catalog.Skill
	for _, s := range unique {
		if s.Name == "shared" {
			shared = s
		}
	}
	// The shallower copy wins; the deeper one lands in DuplicatePaths.
	assert.Equal(t, "first/SKILL.md", shared.Path)
	assert.Equal(t, []string{"nested/deeper/second/SKILL.md"}, shared.DuplicatePaths)
	assert.Equal(t, shared.Description, shared.Summary)
}

func TestSummarizeAndDeduplicateEmpty(t *testing.T) {
	unique, report := SummarizeAndDeduplicate(nil)
	assert.Empty(t, unique)
	assert.Equal(t, catalog.SkillReport{}, report)
}
