// Package crossref decides whether an AGENTS.md/CLAUDE.md pair is really
// one document: repositories commonly keep a one-line "@CLAUDE.md" pointer
// in one file delegating to its sibling. Detection is pure string
// inspection with no filesystem access.
package crossref

import "strings"

// Pointer identifies which file of an AGENTS.md/CLAUDE.md pair is the
// cross-reference pointer.
type Pointer int

const (
	// PointerNone means neither file is a pure reference to the other
	PointerNone Pointer = iota
	// PointerAgents means AGENTS.md is a pointer and CLAUDE.md holds content
	PointerAgents
	// PointerClaude means CLAUDE.md is a pointer and AGENTS.md holds content
	PointerClaude
)

// Reference is the parsed form of a pure file reference.
type Reference struct {
	// ReferencedFile is the lowercased referenced filename, e.g. "claude.md"
	ReferencedFile string
}

// IsFileReference reports whether content is nothing but a reference to a
// sibling context file. A pure reference is the trimmed content "@<name>"
// with an optional "./" prefix on the name, no path separators, and a name
// case-insensitively equal to agents.md or claude.md.
func IsFileReference(content string) (Reference, bool) {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "@") {
		return Reference{}, false
	}

	name := strings.TrimPrefix(trimmed[1:], "./")
	if strings.ContainsAny(name, "/\\") {
		return Reference{}, false
	}

	lower := strings.ToLower(name)
	if lower != "agents.md" && lower != "claude.md" {
		return Reference{}, false
	}

	return Reference{ReferencedFile: lower}, true
}

// Detect inspects an AGENTS.md/CLAUDE.md pair and reports which file, if
// any, is a pointer to the other. AGENTS.md referencing CLAUDE.md takes
// priority; a file referencing itself does not count. When neither or both
// sides hold plain content, no cross-reference is reported.
func Detect(agentsContent, claudeContent string) Pointer {
	if ref, ok := IsFileReference(agentsContent); ok && ref.ReferencedFile == "claude.md" {
		return PointerAgents
	}
	if ref, ok := IsFileReference(claudeContent); ok && ref.ReferencedFile == "agents.md" {
		return PointerClaude
	}
	return PointerNone
}
