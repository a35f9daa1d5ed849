package locator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/pkg/errors"

	"github.com/agentlens/agentlens/pkg/crossref"
	"github.com/agentlens/agentlens/pkg/logger"
)

// skipReason names why a candidate was dropped during canonicalization.
// Explicit reasons keep the skip/keep decisions visible to tests.
type skipReason string

const (
	skipNone            skipReason = ""
	skipCircularSymlink skipReason = "circular symlink"
	skipBrokenSymlink   skipReason = "broken symlink"
	skipPermission      skipReason = "permission denied"
	skipDuplicateTarget skipReason = "duplicate canonical target"
)

// resolveSymlinks canonicalizes every candidate and keeps the first file
// seen per canonical filesystem target. Symlink failures skip the file;
// any other lstat failure keeps it (fail-open).
func resolveSymlinks(ctx context.Context, candidates []candidate) []candidate {
	seen := make(map[string]string, len(candidates))
	kept := make([]candidate, 0, len(candidates))

	for _, c := range candidates {
		keep, reason := resolveCanonical(c, seen)
		if keep {
			kept = append(kept, c)
			continue
		}
		switch reason {
		case skipDuplicateTarget:
			logger.G(ctx).WithField("path", c.rel).Debug("dropping duplicate of already-claimed canonical target")
		default:
			logger.G(ctx).WithFields(map[string]interface{}{
				"path":   c.rel,
				"reason": string(reason),
			}).Warn("skipping context file")
		}
	}
	return kept
}

func resolveCanonical(c candidate, seen map[string]string) (bool, skipReason) {
	info, err := os.Lstat(c.abs)
	if err != nil {
		if reason := classifySymlinkError(err); reason != skipNone {
			return false, reason
		}
		// Unknown lstat failure: keep the file without claiming a
		// canonical target.
		return true, skipNone
	}

	if info.Mode()&os.ModeSymlink != 0 {
		target, err := filepath.EvalSymlinks(c.abs)
		if err != nil {
			if reason := classifySymlinkError(err); reason != skipNone {
				return false, reason
			}
			return false, skipBrokenSymlink
		}
		if _, claimed := seen[target]; claimed {
			return false, skipDuplicateTarget
		}
		seen[target] = c.abs
		return true, skipNone
	}

	canonical, err := filepath.EvalSymlinks(c.abs)
	if err != nil {
		// A regular file that fails to canonicalize is kept as-is.
		return true, skipNone
	}
	if _, claimed := seen[canonical]; claimed {
		return false, skipDuplicateTarget
	}
	seen[canonical] = c.abs
	return true, skipNone
}

func classifySymlinkError(err error) skipReason {
	switch {
	case errors.Is(err, syscall.ELOOP):
		return skipCircularSymlink
	case os.IsNotExist(err):
		return skipBrokenSymlink
	case os.IsPermission(err):
		return skipPermission
	}
	return skipNone
}

// dedupeDirectoryPairs collapses AGENTS.md/CLAUDE.md pairs living in the
// same directory: identical trimmed content keeps only AGENTS.md, a
// cross-reference pointer keeps only the content file, and anything else
// (including read failures) keeps both. Directories are compared
// concurrently, each writing into its own drop slot.
func dedupeDirectoryPairs(ctx context.Context, candidates []candidate) []candidate {
	type pair struct {
		agents candidate
		claude candidate
	}

	byDir := make(map[string]*pair)
	for _, c := range candidates {
		base := strings.ToLower(filepath.Base(c.abs))
		if base != "agents.md" && base != "claude.md" {
			continue
		}
		dir := filepath.Dir(c.abs)
		p, ok := byDir[dir]
		if !ok {
			p = &pair{}
			byDir[dir] = p
		}
		if base == "agents.md" {
			p.agents = c
		} else {
			p.claude = c
		}
	}

	var pairs []pair
	for _, p := range byDir {
		if p.agents.abs != "" && p.claude.abs != "" {
			pairs = append(pairs, *p)
		}
	}
	if len(pairs) == 0 {
		return candidates
	}

	drops := make([]string, len(pairs))
	var wg sync.WaitGroup
	for i, p := range pairs {
		wg.Add(1)
		go func(i int, p pair) {
			defer wg.Done()
			drops[i] = resolvePair(ctx, p.agents, p.claude)
		}(i, p)
	}
	wg.Wait()

	dropSet := make(map[string]struct{}, len(drops))
	for _, path := range drops {
		if path != "" {
			dropSet[path] = struct{}{}
		}
	}

	kept := candidates[:0]
	for _, c := range candidates {
		if _, dropped := dropSet[c.abs]; dropped {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// resolvePair returns the absolute path to drop from an AGENTS.md and
// CLAUDE.md pair, or "" to keep both.
func resolvePair(ctx context.Context, agents, claude candidate) string {
	agentsRaw, errA := os.ReadFile(agents.abs)
	claudeRaw, errC := os.ReadFile(claude.abs)
	if errA != nil || errC != nil {
		logger.G(ctx).WithField("dir", filepath.Dir(agents.abs)).Debug("pair comparison read failed, keeping both files")
		return ""
	}

	agentsContent := strings.TrimSpace(string(agentsRaw))
	claudeContent := strings.TrimSpace(string(claudeRaw))

	if agentsContent == claudeContent {
		return claude.abs
	}

	switch crossref.Detect(agentsContent, claudeContent) {
	case crossref.PointerAgents:
		return agents.abs
	case crossref.PointerClaude:
		return claude.abs
	}
	return ""
}

// dedupeCopilotInstructions drops any Copilot instructions file whose
// trimmed content exactly matches any surviving AGENTS.md or CLAUDE.md
// anywhere in the tree. Reference contents are loaded once; comparisons
// run concurrently with disjoint verdict slots. Read failures keep the
// file.
func dedupeCopilotInstructions(ctx context.Context, candidates []candidate) []candidate {
	var copilots []int
	var references []int
	for i, c := range candidates {
		base := strings.ToLower(filepath.Base(c.abs))
		switch {
		case isCopilotInstructionsPath(c.rel):
			copilots = append(copilots, i)
		case base == "agents.md" || base == "claude.md":
			references = append(references, i)
		}
	}
	if len(copilots) == 0 || len(references) == 0 {
		return candidates
	}

	refContents := make([]string, len(references))
	refLoaded := make([]bool, len(references))
	var wg sync.WaitGroup
	for slot, idx := range references {
		wg.Add(1)
		go func(slot, idx int) {
			defer wg.Done()
			raw, err := os.ReadFile(candidates[idx].abs)
			if err != nil {
				return
			}
			refContents[slot] = strings.TrimSpace(string(raw))
			refLoaded[slot] = true
		}(slot, idx)
	}
	wg.Wait()

	refSet := make(map[string]struct{}, len(refContents))
	for slot, content := range refContents {
		if refLoaded[slot] {
			refSet[content] = struct{}{}
		}
	}

	dropped := make([]bool, len(copilots))
	for slot, idx := range copilots {
		wg.Add(1)
		go func(slot, idx int) {
			defer wg.Done()
			raw, err := os.ReadFile(candidates[idx].abs)
			if err != nil {
				logger.G(ctx).WithError(err).WithField("path", candidates[idx].rel).Debug("copilot comparison read failed, keeping file")
				return
			}
			if _, match := refSet[strings.TrimSpace(string(raw))]; match {
				dropped[slot] = true
			}
		}(slot, idx)
	}
	wg.Wait()

	dropSet := make(map[int]struct{})
	for slot, idx := range copilots {
		if dropped[slot] {
			dropSet[idx] = struct{}{}
		}
	}
	if len(dropSet) == 0 {
		return candidates
	}

	kept := make([]candidate, 0, len(candidates))
	for i, c := range candidates {
		if _, drop := dropSet[i]; drop {
			logger.G(ctx).WithField("path", c.rel).Debug("dropping copilot instructions duplicating an agents/claude file")
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

func isCopilotInstructionsPath(rel string) bool {
	p := strings.ToLower(filepath.ToSlash(rel))
	base := filepath.Base(p)
	if base == "copilot-instructions.md" {
		return true
	}
	return strings.HasSuffix(base, ".instructions.md") && strings.Contains(p, ".github/instructions/")
}
