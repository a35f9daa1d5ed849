// Package frontmatter extracts single-line key/value fields from a
// "---" delimited frontmatter block without pulling in a full YAML parser.
// Rule files in the wild carry a loose YAML subset (quoted strings,
// bracket arrays, booleans) and malformed blocks are common; extraction
// therefore returns a tagged result instead of erroring.
package frontmatter

import (
	"regexp"
	"strings"
)

var fieldRe = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_-]*):[ \t]*(.*)$`)

// Block is the parsed view of a frontmatter section. The zero value
// behaves as an empty block.
type Block struct {
	values map[string]string
}

// Parse extracts the frontmatter block from content. The second return
// value is false when content does not open with a --- line or the
// closing --- delimiter is missing. Lines that do not look like a
// single-line "key: value" pair are ignored; bracket-array values are
// passed through verbatim and surrounding quotes are stripped.
func Parse(content string) (Block, bool) {
	lines := strings.Split(content, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return Block{}, false
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end == -1 {
		return Block{}, false
	}

	values := make(map[string]string)
	for _, line := range lines[1:end] {
		m := fieldRe.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		values[m[1]] = stripQuotes(strings.TrimSpace(m[2]))
	}

	return Block{values: values}, true
}

// Get returns the raw value for key and whether it was present with a
// non-empty value.
func (b Block) Get(key string) (string, bool) {
	v, ok := b.values[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// GetBool interprets the value for key as a boolean. Only literal "true"
// and "false" count; anything else reports absence.
func (b Block) GetBool(key string) (bool, bool) {
	v, ok := b.Get(key)
	if !ok {
		return false, false
	}
	switch strings.ToLower(v) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
