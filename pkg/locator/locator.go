// Package locator discovers agent-facing context files (AGENTS.md,
// CLAUDE.md, Copilot instructions, rule files) under a repository root and
// canonicalizes them into a deduplicated artifact list. Discovery is
// best-effort: filesystem errors degrade to skipping or keeping individual
// files and only a failed traversal of the root itself is fatal.
package locator

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/agentlens/agentlens/pkg/frontmatter"
	"github.com/agentlens/agentlens/pkg/logger"
	"github.com/agentlens/agentlens/pkg/osutil"
	"github.com/agentlens/agentlens/pkg/types/catalog"
)

// scanPatterns are matched against lowercased slash-relative paths, so
// discovery is case-insensitive. Order is fixed; matches are concatenated
// in this order before deduplication.
var scanPatterns = []string{
	"**/agents.md",
	"**/claude.md",
	"**/.github/**/copilot-instructions.md",
	"**/.github/instructions/**/*.instructions.md",
	".claude/rules/**/*.md",
}

const rulesPatternIndex = 4

// Locator finds and deduplicates context artifacts under a base directory.
type Locator struct {
	maxDepth         int
	maxContentLength int
	extraIgnores     []glob.Glob
}

// Option configures a Locator.
type Option func(*Locator) error

// WithMaxDepth limits discovery to files at most depth segments below the
// base directory. A file directly in the base directory has depth 0.
func WithMaxDepth(depth int) Option {
	return func(l *Locator) error {
		if depth < 0 {
			return errors.New("max depth must be non-negative")
		}
		l.maxDepth = depth
		return nil
	}
}

// WithMaxContentLength overrides the artifact content truncation limit.
func WithMaxContentLength(limit int) Option {
	return func(l *Locator) error {
		if limit <= 0 {
			return errors.New("max content length must be positive")
		}
		l.maxContentLength = limit
		return nil
	}
}

// WithIgnorePatterns adds glob patterns (matched against slash-relative
// paths) excluded from discovery on top of the built-in ignore list.
func WithIgnorePatterns(patterns ...string) Option {
	return func(l *Locator) error {
		for _, p := range patterns {
			g, err := glob.Compile(p, '/')
			if err != nil {
				return errors.Wrapf(err, "invalid ignore pattern %q", p)
			}
			l.extraIgnores = append(l.extraIgnores, g)
		}
		return nil
	}
}

// New creates a Locator with the given options.
func New(opts ...Option) (*Locator, error) {
	l := &Locator{
		maxDepth:         -1,
		maxContentLength: osutil.DefaultMaxContentLength,
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// candidate is a discovered file before deduplication.
type candidate struct {
	abs string
	rel string
}

// Locate discovers, deduplicates, and loads context artifacts under
// baseDir. The returned list is sorted by path depth, shallowest first.
func Locate(ctx context.Context, baseDir string, opts ...Option) ([]catalog.ContextArtifact, error) {
	l, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return l.Locate(ctx, baseDir)
}

// Locate runs the full resolution pass. All canonical-path bookkeeping is
// local to the call; a Locator is safe for concurrent use.
func (l *Locator) Locate(ctx context.Context, baseDir string) ([]catalog.ContextArtifact, error) {
	info, err := os.Stat(baseDir)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot access base directory %s", baseDir)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("base directory %s is not a directory", baseDir)
	}

	candidates, err := l.scan(ctx, baseDir)
	if err != nil {
		return nil, err
	}

	if l.maxDepth >= 0 {
		kept := candidates[:0]
		for _, c := range candidates {
			if osutil.PathDepth(c.rel) <= l.maxDepth {
				kept = append(kept, c)
			}
		}
		candidates = kept
	}

	survivors := resolveSymlinks(ctx, candidates)
	survivors = dedupeDirectoryPairs(ctx, survivors)
	survivors = dedupeCopilotInstructions(ctx, survivors)

	sort.SliceStable(survivors, func(i, j int) bool {
		return osutil.PathDepth(survivors[i].rel) < osutil.PathDepth(survivors[j].rel)
	})

	artifacts := make([]catalog.ContextArtifact, 0, len(survivors))
	for _, c := range survivors {
		if artifact, ok := l.buildArtifact(ctx, c); ok {
			artifacts = append(artifacts, artifact)
		}
	}
	return artifacts, nil
}

// scan runs the five pattern scans concurrently and concatenates their
// matches in pattern order.
func (l *Locator) scan(ctx context.Context, baseDir string) ([]candidate, error) {
	results := make([][]candidate, len(scanPatterns))
	scanErrs := make([]error, len(scanPatterns))

	var wg sync.WaitGroup
	for i := range scanPatterns {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], scanErrs[i] = l.scanPattern(ctx, baseDir, i)
		}(i)
	}
	wg.Wait()

	var merr *multierror.Error
	for _, err := range scanErrs {
		if err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	if err := merr.ErrorOrNil(); err != nil {
		return nil, errors.Wrap(err, "context file discovery failed")
	}

	var candidates []candidate
	for _, matches := range results {
		candidates = append(candidates, matches...)
	}
	return candidates, nil
}

// scanPattern walks baseDir once, matching lowercased relative paths
// against the pattern at patternIdx. Hidden directories are descended
// into; the built-in and user-supplied ignore rules are not.
func (l *Locator) scanPattern(ctx context.Context, baseDir string, patternIdx int) ([]candidate, error) {
	pattern := scanPatterns[patternIdx]
	var matches []candidate

	walkErr := filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == baseDir {
				return err
			}
			logger.G(ctx).WithError(err).WithField("path", path).Debug("skipping unreadable entry")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel := osutil.RelPath(baseDir, path)

		if d.IsDir() {
			if path == baseDir {
				return nil
			}
			if osutil.IsIgnoredDir(d.Name()) || l.matchesExtraIgnore(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if l.matchesExtraIgnore(rel) {
			return nil
		}

		ok, _ := doublestar.Match(pattern, strings.ToLower(rel))
		if !ok {
			return nil
		}
		if patternIdx == rulesPatternIndex && hasHiddenRuleSegment(rel) {
			return nil
		}

		matches = append(matches, candidate{abs: path, rel: rel})
		return nil
	})
	if walkErr != nil {
		return nil, errors.Wrapf(walkErr, "failed to scan %s for %s", baseDir, pattern)
	}
	return matches, nil
}

func (l *Locator) matchesExtraIgnore(rel string) bool {
	for _, g := range l.extraIgnores {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// hasHiddenRuleSegment reports whether any path segment below the rules
// directory starts with a dot. Hidden rule subtrees are not discovered.
func hasHiddenRuleSegment(rel string) bool {
	lower := strings.ToLower(filepath.ToSlash(rel))
	idx := strings.Index(lower, ".claude/rules/")
	if idx == -1 {
		return false
	}
	under := lower[idx+len(".claude/rules/"):]
	for _, segment := range strings.Split(under, "/") {
		if strings.HasPrefix(segment, ".") {
			return true
		}
	}
	return false
}

// buildArtifact reads and classifies one surviving file. Unreadable files
// are dropped silently.
func (l *Locator) buildArtifact(ctx context.Context, c candidate) (catalog.ContextArtifact, bool) {
	content, err := osutil.ReadFileTruncated(c.abs, l.maxContentLength)
	if err != nil {
		logger.G(ctx).WithError(err).WithField("path", c.rel).Debug("skipping unreadable context file")
		return catalog.ContextArtifact{}, false
	}

	artifact := catalog.ContextArtifact{
		Path:    c.rel,
		Type:    inferType(c.rel),
		Content: content,
	}

	switch artifact.Type {
	case catalog.TypeRules:
		if block, ok := frontmatter.Parse(content); ok {
			if globs, found := block.Get("globs"); found {
				artifact.Globs = globs
			}
		}
	case catalog.TypeCursorRules:
		if block, ok := frontmatter.Parse(content); ok {
			if globs, found := block.Get("globs"); found {
				artifact.Globs = globs
			}
			if description, found := block.Get("description"); found {
				artifact.Description = description
			}
			if always, found := block.GetBool("alwaysApply"); found {
				artifact.AlwaysApply = &always
			}
		}
	}

	return artifact, true
}

// inferType classifies a context file by its path, directory markers
// first, then filename.
func inferType(relPath string) catalog.ArtifactType {
	p := strings.ToLower(filepath.ToSlash(relPath))

	switch {
	case strings.Contains(p, ".cursor/rules/"):
		return catalog.TypeCursorRules
	case strings.Contains(p, ".cursor/skills/"),
		strings.Contains(p, ".claude/skills/"),
		strings.Contains(p, ".agents/skills/"),
		strings.Contains(p, ".github/skills/"):
		return catalog.TypeSkills
	case strings.Contains(p, ".claude/rules/"):
		return catalog.TypeRules
	}

	base := filepath.Base(p)
	switch {
	case strings.Contains(base, "agents"):
		return catalog.TypeAgents
	case strings.Contains(base, "claude"):
		return catalog.TypeClaude
	case strings.Contains(base, "copilot"):
		return catalog.TypeCopilot
	case strings.HasSuffix(base, ".instructions.md") && strings.Contains(p, ".github/instructions/"):
		return catalog.TypeCopilot
	}
	return catalog.TypeAgents
}
