package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/agentlens/agentlens/pkg/linkdocs"
	"github.com/agentlens/agentlens/pkg/types/catalog"
)

func TestGetScanConfigDefaults(t *testing.T) {
	config := getScanConfig()
	assert.Equal(t, -1, config.MaxDepth)
	assert.Equal(t, 0, config.MaxContentLength)
	assert.Equal(t, linkdocs.DefaultMaxDocs, config.MaxDocs)
	assert.Equal(t, linkdocs.DefaultTimeout, config.Timeout)
	assert.Equal(t, "json", config.Format)
	assert.False(t, config.Quiet)
}

func TestGetScanConfigEnvOverride(t *testing.T) {
	t.Setenv("AGENTLENS_MAX_DEPTH", "3")
	t.Setenv("AGENTLENS_FORMAT", "yaml")
	t.Setenv("AGENTLENS_SUMMARIZER_CMD", "claude -p")

	config := getScanConfig()
	assert.Equal(t, 3, config.MaxDepth)
	assert.Equal(t, "yaml", config.Format)
	assert.Equal(t, "claude -p", config.SummarizerCmd)
}

func TestGetScanConfigFlagBeatsEnv(t *testing.T) {
	t.Setenv("AGENTLENS_CONCURRENCY", "4")
	require.NoError(t, scanCmd.Flags().Set("concurrency", "7"))
	defer scanCmd.Flags().Set("concurrency", "2")

	config := getScanConfig()
	assert.Equal(t, 7, config.Concurrency)
}

func TestLinkOptionsPlumbing(t *testing.T) {
	config := NewScanConfig()
	config.MaxContentLength = 1234
	config.MaxDocs = 5
	config.Concurrency = 3
	config.Timeout = 7 * time.Second

	opts := config.linkOptions()
	assert.Equal(t, 1234, opts.MaxContentLength)
	assert.Equal(t, 5, opts.MaxDocs)
	assert.Equal(t, 3, opts.Concurrency)
	assert.Equal(t, 7*time.Second, opts.Timeout)
	assert.Nil(t, opts.Provider)

	config.SummarizerCmd = "cat"
	assert.NotNil(t, config.linkOptions().Provider)
}

func sampleOutput() scanOutput {
	return scanOutput{
		Artifacts: []catalog.ContextArtifact{
			{Path: "AGENTS.md", Type: catalog.TypeAgents, Content: "# Project"},
		},
		Skills: []catalog.Skill{
			{Name: "review", Description: "Reviews code", Path: ".claude/skills/review/SKILL.md"},
		},
		SkillReport: catalog.SkillReport{TotalProcessed: 1, UniqueCount: 1},
		LinkedDocs:  catalog.LinkedDocsResult{TotalLinksFound: 0},
	}
}

func TestWriteOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeOutput(&buf, sampleOutput(), "json"))

	var parsed scanOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	require.Len(t, parsed.Artifacts, 1)
	assert.Equal(t, "AGENTS.md", parsed.Artifacts[0].Path)
	assert.Equal(t, catalog.TypeAgents, parsed.Artifacts[0].Type)
	assert.Equal(t, 1, parsed.SkillReport.UniqueCount)
}

func TestWriteOutputYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeOutput(&buf, sampleOutput(), "yaml"))

	var parsed scanOutput
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &parsed))
	require.Len(t, parsed.Skills, 1)
	assert.Equal(t, "review", parsed.Skills[0].Name)
}

func TestWriteOutputUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := writeOutput(&buf, sampleOutput(), "xml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}
