// Package osutil provides filesystem helpers shared by the discovery
// pipeline: bounded file reads with a truncation marker, repo-relative
// path depth, and the directory ignore rules applied during scans.
package osutil

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// TruncationMarker is appended to content cut by TruncateContent.
const TruncationMarker = "\n\n[Content truncated...]"

// DefaultMaxContentLength is the hard truncation limit for artifact reads.
const DefaultMaxContentLength = 50000

var ignoredDirs = map[string]struct{}{
	"node_modules": {},
	"dist":         {},
	"build":        {},
	".git":         {},
	"vendor":       {},
	"coverage":     {},
}

// IsIgnoredDir reports whether a directory name is excluded from scans.
// Hidden directories are deliberately not on this list; agent tooling
// lives in .github, .claude, .cursor and friends.
func IsIgnoredDir(name string) bool {
	_, ok := ignoredDirs[name]
	return ok
}

// PathDepth returns the segment depth of a slash- or OS-separated
// relative path. A file at the scan root has depth 0.
func PathDepth(relPath string) int {
	p := filepath.ToSlash(relPath)
	if p == "" || p == "." {
		return 0
	}
	return strings.Count(p, "/")
}

// TruncateContent cuts content at limit characters. The cut prefers the
// last newline within the final 20% of the limit so truncation lands on a
// line boundary; otherwise it is a hard cut. Truncated content gets the
// marker appended.
func TruncateContent(content string, limit int) string {
	if limit <= 0 || len(content) <= limit {
		return content
	}

	cut := content[:limit]
	floor := limit - limit/5
	if idx := strings.LastIndexByte(cut, '\n'); idx >= floor {
		cut = cut[:idx]
	}
	return cut + TruncationMarker
}

// ReadFileTruncated reads path applying TruncateContent with the given
// limit. A non-positive limit falls back to DefaultMaxContentLength.
func ReadFileTruncated(path string, limit int) (string, error) {
	if limit <= 0 {
		limit = DefaultMaxContentLength
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", path)
	}
	return TruncateContent(string(data), limit), nil
}

// RelPath returns path relative to baseDir in slash form, falling back to
// the input when the relative form cannot be computed.
func RelPath(baseDir, path string) string {
	rel, err := filepath.Rel(baseDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
