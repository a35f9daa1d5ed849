package linkdocs

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/agentlens/agentlens/pkg/types/catalog"
)

var (
	// inline links: [text](target.md) with an optional #anchor
	inlineLinkRe = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]+)\)`)
	// reference-style definitions: [ref]: target.md, alone on the line
	refLinkRe = regexp.MustCompile(`(?m)^[ \t]*\[([^\]]+)\]:[ \t]*(\S+)[ \t]*$`)
)

// ExtractMarkdownLinks pulls Markdown link targets out of content,
// keeping only local .md files that are not themselves context artifacts.
// Targets are resolved relative to the directory of sourcePath (absolute
// targets pass through) and deduplicated by resolved path, first
// occurrence wins.
func ExtractMarkdownLinks(content, sourcePath string) []catalog.ExtractedLink {
	sourceDir := filepath.Dir(sourcePath)
	seen := make(map[string]struct{})
	var links []catalog.ExtractedLink

	collect := func(text, target string) {
		stripped, ok := eligibleTarget(target)
		if !ok {
			return
		}

		abs := stripped
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(sourceDir, abs)
		}
		abs = filepath.Clean(abs)

		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}

		links = append(links, catalog.ExtractedLink{
			RawPath:      target,
			AbsolutePath: abs,
			LinkText:     text,
			SourcePath:   sourcePath,
		})
	}

	for _, m := range inlineLinkRe.FindAllStringSubmatchIndex(content, -1) {
		// image embeds share the link syntax with a leading bang
		if m[0] > 0 && content[m[0]-1] == '!' {
			continue
		}
		collect(content[m[2]:m[3]], content[m[4]:m[5]])
	}
	for _, m := range refLinkRe.FindAllStringSubmatch(content, -1) {
		collect(m[1], m[2])
	}

	return links
}

// eligibleTarget filters a raw link target down to a local markdown path
// with its anchor stripped. External URLs, pure anchors, non-markdown
// targets, and context artifacts (which are resolved separately) are all
// rejected.
func eligibleTarget(target string) (string, bool) {
	if strings.HasPrefix(target, "http://") ||
		strings.HasPrefix(target, "https://") ||
		strings.HasPrefix(target, "//") {
		return "", false
	}
	if strings.HasPrefix(target, "#") {
		return "", false
	}

	stripped := target
	if idx := strings.IndexByte(stripped, '#'); idx != -1 {
		stripped = stripped[:idx]
	}
	if stripped == "" {
		return "", false
	}

	lower := strings.ToLower(filepath.ToSlash(stripped))
	if !strings.HasSuffix(lower, ".md") {
		return "", false
	}

	base := filepath.Base(lower)
	switch base {
	case "agents.md", "claude.md", "copilot-instructions.md":
		return "", false
	}
	if strings.HasSuffix(base, ".instructions.md") && strings.Contains(lower, ".github/instructions/") {
		return "", false
	}

	return stripped, true
}
