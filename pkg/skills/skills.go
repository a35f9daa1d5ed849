// Package skills builds the skill catalog: it discovers SKILL.md
// manifests under a repository root, validates their YAML frontmatter,
// and collapses byte-identical manifests into a single entry keyed by
// content hash.
package skills

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"

	"github.com/agentlens/agentlens/pkg/logger"
	"github.com/agentlens/agentlens/pkg/osutil"
	"github.com/agentlens/agentlens/pkg/types/catalog"
)

const skillPattern = "**/skill.md"

// Builder discovers SKILL.md manifests.
type Builder struct {
	maxDepth int
}

// Option configures a Builder.
type Option func(*Builder) error

// WithMaxDepth limits discovery to manifests at most depth segments below
// the base directory.
func WithMaxDepth(depth int) Option {
	return func(b *Builder) error {
		if depth < 0 {
			return errors.New("max depth must be non-negative")
		}
		b.maxDepth = depth
		return nil
	}
}

// New creates a Builder with the given options.
func New(opts ...Option) (*Builder, error) {
	b := &Builder{maxDepth: -1}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Discover finds all valid SKILL.md manifests under baseDir, sorted by
// path depth ascending. Manifests with missing or malformed frontmatter
// are excluded silently.
func Discover(ctx context.Context, baseDir string, opts ...Option) ([]catalog.Skill, error) {
	b, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return b.Discover(ctx, baseDir)
}

// Discover runs a discovery pass. Only a failed traversal of baseDir
// itself is an error.
func (b *Builder) Discover(ctx context.Context, baseDir string) ([]catalog.Skill, error) {
	info, err := os.Stat(baseDir)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot access base directory %s", baseDir)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("base directory %s is not a directory", baseDir)
	}

	var found []catalog.Skill
	walkErr := filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == baseDir {
				return err
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel := osutil.RelPath(baseDir, path)

		if d.IsDir() {
			if path != baseDir && osutil.IsIgnoredDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if ok, _ := doublestar.Match(skillPattern, strings.ToLower(rel)); !ok {
			return nil
		}
		if b.maxDepth >= 0 && osutil.PathDepth(rel) > b.maxDepth {
			return nil
		}

		skill, err := loadSkill(path)
		if err != nil {
			logger.G(ctx).WithError(err).WithField("path", rel).Debug("excluding invalid skill manifest")
			return nil
		}

		skill.Path = rel
		skill.Directory = filepath.Base(filepath.Dir(path))
		found = append(found, skill)
		return nil
	})
	if walkErr != nil {
		return nil, errors.Wrapf(walkErr, "skill discovery failed under %s", baseDir)
	}

	sort.SliceStable(found, func(i, j int) bool {
		return osutil.PathDepth(found[i].Path) < osutil.PathDepth(found[j].Path)
	})
	return found, nil
}

// loadSkill parses one SKILL.md. The frontmatter must carry non-empty
// name and description fields; anything else is a validation error and
// the manifest is excluded by the caller.
func loadSkill(path string) (catalog.Skill, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return catalog.Skill{}, errors.Wrap(err, "failed to read skill manifest")
	}

	md := goldmark.New(goldmark.WithExtensions(meta.Meta))

	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert(raw, &buf, parser.WithContext(pctx)); err != nil {
		return catalog.Skill{}, errors.Wrap(err, "malformed frontmatter")
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return catalog.Skill{}, errors.New("missing frontmatter")
	}

	name, _ := metaData["name"].(string)
	description, _ := metaData["description"].(string)
	if name == "" {
		return catalog.Skill{}, errors.New("skill name is required in frontmatter")
	}
	if description == "" {
		return catalog.Skill{}, errors.New("skill description is required in frontmatter")
	}

	hash := sha256.Sum256(raw)

	return catalog.Skill{
		Name:        name,
		Description: description,
		ContentHash: hex.EncodeToString(hash[:]),
		Content:     bodyContent(string(raw)),
	}, nil
}

// bodyContent strips the frontmatter block and returns the manifest body.
func bodyContent(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}

	lines := strings.Split(content, "\n")
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.TrimLeft(strings.Join(lines[i+1:], "\n"), "\n")
		}
	}
	return content
}

// SummarizeAndDeduplicate groups skills by content hash, keeping the
// first (shallowest) manifest of each group as representative. The
// representative's summary is its description verbatim; the remaining
// group members' paths become DuplicatePaths. Input is expected in
// depth-ascending order, as produced by Discover.
func SummarizeAndDeduplicate(skills []catalog.Skill) ([]catalog.Skill, catalog.SkillReport) {
	byHash := make(map[string]int)
	unique := make([]catalog.Skill, 0, len(skills))

	for _, skill := range skills {
		if idx, seen := byHash[skill.ContentHash]; seen {
			unique[idx].DuplicatePaths = append(unique[idx].DuplicatePaths, skill.Path)
			continue
		}
		skill.Summary = skill.Description
		byHash[skill.ContentHash] = len(unique)
		unique = append(unique, skill)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return osutil.PathDepth(unique[i].Path) < osutil.PathDepth(unique[j].Path)
	})

	report := catalog.SkillReport{
		TotalProcessed:    len(skills),
		UniqueCount:       len(unique),
		DuplicatesRemoved: len(skills) - len(unique),
	}
	return unique, report
}
