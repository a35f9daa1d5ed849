// Package linkdocs resolves the documents that context artifacts link to.
// It extracts Markdown links from each source artifact, deduplicates the
// resolved targets globally, and summarizes each target through an AI
// provider running in an isolated sandbox, with a bounded concurrency
// fan-out and per-link failure isolation.
package linkdocs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/agentlens/agentlens/pkg/logger"
	"github.com/agentlens/agentlens/pkg/osutil"
	"github.com/agentlens/agentlens/pkg/sandbox"
	"github.com/agentlens/agentlens/pkg/types/catalog"
	"github.com/agentlens/agentlens/pkg/types/provider"
)

const (
	// DefaultMaxDocs caps how many linked documents are resolved.
	DefaultMaxDocs = 30
	// DefaultMaxContentLength is the linked-doc truncation limit.
	DefaultMaxContentLength = 8000
	// DefaultConcurrency bounds the summarization fan-out.
	DefaultConcurrency = 2
	// MaxConcurrency is the upper clamp for the fan-out.
	MaxConcurrency = 10
	// DefaultTimeout applies per provider invocation.
	DefaultTimeout = 60 * time.Second

	// minSummaryLength is the shortest provider response accepted as a
	// real summary.
	minSummaryLength = 10
)

// Options configures a linked document resolution pass. A nil Provider
// short-circuits every summary to the fallback text.
type Options struct {
	Provider         provider.Provider
	MaxDocs          int
	MaxContentLength int
	Concurrency      int
	Timeout          time.Duration
	Verbose          bool
}

func (o *Options) applyDefaults() {
	if o.MaxDocs <= 0 {
		o.MaxDocs = DefaultMaxDocs
	}
	if o.MaxContentLength <= 0 {
		o.MaxContentLength = DefaultMaxContentLength
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Concurrency > MaxConcurrency {
		o.Concurrency = MaxConcurrency
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
}

// pendingLink pairs an extracted link with the source path as supplied by
// the caller, which becomes LinkedFrom on the resulting doc.
type pendingLink struct {
	link       catalog.ExtractedLink
	linkedFrom string
}

// linkOutcome is the per-link result slot filled by the fan-out workers.
type linkOutcome struct {
	doc        catalog.LinkedDocSummary
	resolved   bool
	unresolved string
}

// DiscoverLinkedDocs extracts links from the given source artifacts (in
// caller order, so root-level artifacts supplied first win resolution
// priority), deduplicates targets globally, and summarizes up to MaxDocs
// of them. TotalLinksFound counts the deduplicated set before the cap.
// Unreadable targets are reported in UnresolvedLinks by their raw link
// string; summarization failures degrade to fallback summaries and are
// never returned as errors.
func DiscoverLinkedDocs(ctx context.Context, sourcePaths []string, baseDir string, opts Options) (catalog.LinkedDocsResult, error) {
	opts.applyDefaults()

	var pending []pendingLink
	seen := make(map[string]struct{})

	for _, sourcePath := range sourcePaths {
		absSource := sourcePath
		if !filepath.IsAbs(absSource) {
			absSource = filepath.Join(baseDir, sourcePath)
		}

		raw, err := os.ReadFile(absSource)
		if err != nil {
			logger.G(ctx).WithError(err).WithField("source", sourcePath).Debug("skipping unreadable link source")
			continue
		}

		for _, link := range ExtractMarkdownLinks(string(raw), absSource) {
			if _, dup := seen[link.AbsolutePath]; dup {
				continue
			}
			seen[link.AbsolutePath] = struct{}{}
			pending = append(pending, pendingLink{link: link, linkedFrom: sourcePath})
		}
	}

	totalLinksFound := len(pending)
	if len(pending) > opts.MaxDocs {
		pending = pending[:opts.MaxDocs]
	}

	outcomes := make([]linkOutcome, len(pending))
	sem := make(chan struct{}, opts.Concurrency)
	var wg sync.WaitGroup
	for i := range pending {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes[i] = resolveLink(ctx, pending[i], baseDir, opts)
		}(i)
	}
	wg.Wait()

	result := catalog.LinkedDocsResult{TotalLinksFound: totalLinksFound}
	for _, outcome := range outcomes {
		if outcome.resolved {
			result.Docs = append(result.Docs, outcome.doc)
		} else {
			result.UnresolvedLinks = append(result.UnresolvedLinks, outcome.unresolved)
		}
	}
	return result, nil
}

// resolveLink reads and summarizes a single target. Every failure mode is
// local: unreadable targets become unresolved entries, provider failures
// become fallback summaries.
func resolveLink(ctx context.Context, p pendingLink, baseDir string, opts Options) linkOutcome {
	content, err := osutil.ReadFileTruncated(p.link.AbsolutePath, opts.MaxContentLength)
	if err != nil {
		logger.G(ctx).WithError(err).WithField("target", p.link.RawPath).Debug("linked document unreadable")
		return linkOutcome{unresolved: p.link.RawPath}
	}

	relPath := osutil.RelPath(baseDir, p.link.AbsolutePath)

	return linkOutcome{
		resolved: true,
		doc: catalog.LinkedDocSummary{
			Path:       relPath,
			Summary:    summarize(ctx, content, relPath, opts),
			LinkedFrom: p.linkedFrom,
			Content:    content,
		},
	}
}

func summarize(ctx context.Context, content, relPath string, opts Options) string {
	if opts.Provider == nil {
		return fallbackSummary(relPath)
	}

	resp, err := sandbox.InvokeIsolated(ctx, opts.Provider, summaryPrompt(content), provider.InvokeOptions{
		Timeout: opts.Timeout,
		Verbose: opts.Verbose,
	})
	if err != nil {
		logger.G(ctx).WithError(err).WithField("path", relPath).Debug("summarization failed, using fallback")
		return fallbackSummary(relPath)
	}

	summary := strings.TrimSpace(resp.Result)
	if len(summary) < minSummaryLength {
		logger.G(ctx).WithField("path", relPath).Debug("summary too short, using fallback")
		return fallbackSummary(relPath)
	}
	return summary
}

func fallbackSummary(relPath string) string {
	return fmt.Sprintf("Documentation file at %s. Summary unavailable.", relPath)
}

// summaryPrompt builds the fixed summarization prompt. The file path is
// deliberately omitted so the provider summarizes the fenced content
// instead of trying to explore the filesystem.
func summaryPrompt(content string) string {
	return fmt.Sprintf(`Summarize the documentation below in one single detailed sentence. Describe what guidance the document provides and when it applies. Respond with the sentence only, no preamble.

Documentation content:

`+"```\n%s\n```\n", content)
}
