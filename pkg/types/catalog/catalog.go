// Package catalog defines the data model shared by the artifact locator,
// the skill catalog builder, and the linked document resolver. Values are
// built once per resolution pass and are not mutated afterwards; callers
// own persistence.
package catalog

// ArtifactType classifies a context artifact by where it was found and
// which agent tooling consumes it.
type ArtifactType string

const (
	// TypeAgents is a generic AGENTS.md context file
	TypeAgents ArtifactType = "agents"
	// TypeClaude is a CLAUDE.md context file
	TypeClaude ArtifactType = "claude"
	// TypeCopilot is a Copilot instructions file
	TypeCopilot ArtifactType = "copilot"
	// TypeRules is a .claude/rules/ rule file
	TypeRules ArtifactType = "rules"
	// TypeCursorRules is a .cursor/rules/ rule file
	TypeCursorRules ArtifactType = "cursor-rules"
	// TypeSkills is a file living under an agent skills directory
	TypeSkills ArtifactType = "skills"
)

// ContextArtifact is a single agent-facing documentation file discovered
// under a repository root. Path is relative to the scanned base directory.
// Content may be truncated, in which case it ends with a truncation marker.
type ContextArtifact struct {
	Path        string       `json:"path" yaml:"path"`
	Type        ArtifactType `json:"type" yaml:"type"`
	Content     string       `json:"content" yaml:"content"`
	Globs       string       `json:"globs,omitempty" yaml:"globs,omitempty"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	AlwaysApply *bool        `json:"alwaysApply,omitempty" yaml:"alwaysApply,omitempty"`
}

// Skill is a SKILL.md manifest with valid frontmatter. Exactly one Skill
// exists per distinct content hash; other files with the same bytes are
// recorded in DuplicatePaths.
type Skill struct {
	Name           string   `json:"name" yaml:"name"`
	Description    string   `json:"description" yaml:"description"`
	Path           string   `json:"path" yaml:"path"`
	Directory      string   `json:"directory" yaml:"directory"`
	ContentHash    string   `json:"contentHash" yaml:"contentHash"`
	DuplicatePaths []string `json:"duplicatePaths,omitempty" yaml:"duplicatePaths,omitempty"`
	Summary        string   `json:"summary" yaml:"summary"`
	Content        string   `json:"content" yaml:"content"`
}

// SkillReport summarizes a skill deduplication pass.
type SkillReport struct {
	TotalProcessed    int `json:"totalProcessed" yaml:"totalProcessed"`
	UniqueCount       int `json:"uniqueCount" yaml:"uniqueCount"`
	DuplicatesRemoved int `json:"duplicatesRemoved" yaml:"duplicatesRemoved"`
}

// ExtractedLink is a Markdown link candidate pulled out of a context
// artifact. It only lives for the duration of a resolution pass.
type ExtractedLink struct {
	RawPath      string `json:"rawPath" yaml:"rawPath"`
	AbsolutePath string `json:"absolutePath" yaml:"absolutePath"`
	LinkText     string `json:"linkText" yaml:"linkText"`
	SourcePath   string `json:"sourcePath" yaml:"sourcePath"`
}

// LinkedDocSummary is a resolved and summarized link target. Exactly one
// instance exists per distinct resolved absolute path across all sources.
type LinkedDocSummary struct {
	Path       string `json:"path" yaml:"path"`
	Summary    string `json:"summary" yaml:"summary"`
	LinkedFrom string `json:"linkedFrom" yaml:"linkedFrom"`
	Content    string `json:"content" yaml:"content"`
}

// LinkedDocsResult is the outcome of a linked document resolution pass.
// TotalLinksFound counts distinct resolved targets before any cap is
// applied; UnresolvedLinks holds the raw link strings whose targets could
// not be read.
type LinkedDocsResult struct {
	Docs            []LinkedDocSummary `json:"docs" yaml:"docs"`
	TotalLinksFound int                `json:"totalLinksFound" yaml:"totalLinksFound"`
	UnresolvedLinks []string           `json:"unresolvedLinks,omitempty" yaml:"unresolvedLinks,omitempty"`
}
