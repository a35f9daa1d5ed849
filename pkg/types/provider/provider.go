// Package provider defines the abstract AI provider contract consumed by
// the summarization pipeline. Concrete adapters (Claude, Codex, Cursor,
// Copilot, ...) live with the orchestration layer; this engine only needs
// "invoke a prompt, get text back".
package provider

import (
	"context"
	"time"
)

// InvokeOptions carries the per-invocation settings passed through to a
// provider. WorkingDir is set by the isolation sandbox and must be
// tolerated even when empty of any files.
type InvokeOptions struct {
	WorkingDir string
	Timeout    time.Duration
	Verbose    bool
}

// Response is the result of a single provider invocation. Cost and
// duration are optional and provider-dependent.
type Response struct {
	Result     string  `json:"result"`
	CostUSD    float64 `json:"cost_usd,omitempty"`
	DurationMS int64   `json:"duration_ms,omitempty"`
}

// Provider invokes a prompt and returns plain text. Implementations must
// honor opts.WorkingDir and opts.Timeout; a timeout surfaces as an
// ordinary error.
type Provider interface {
	Invoke(ctx context.Context, prompt string, opts InvokeOptions) (*Response, error)
}
