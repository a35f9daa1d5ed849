// Package sandbox runs a single AI provider invocation from an ephemeral,
// empty working directory. Summarization prompts deliberately carry no
// file paths; an empty cwd keeps a provider from wandering off into the
// repository instead of summarizing.
package sandbox

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/agentlens/agentlens/pkg/logger"
	"github.com/agentlens/agentlens/pkg/types/provider"
)

const sandboxRoot = "tmp/isolated-prompts"

// InvokeIsolated invokes the provider with a freshly created, uniquely
// named temporary directory as its working directory. The directory is
// removed on both success and failure; cleanup errors never mask the
// invocation result. Concurrent invocations always get distinct
// directories.
func InvokeIsolated(ctx context.Context, p provider.Provider, prompt string, opts provider.InvokeOptions) (*provider.Response, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "failed to determine working directory")
	}

	dir := filepath.Join(cwd, filepath.FromSlash(sandboxRoot), "prompt-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create sandbox directory %s", dir)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			logger.G(ctx).WithError(err).WithField("dir", dir).Debug("sandbox cleanup failed")
		}
	}()

	opts.WorkingDir = dir
	return p.Invoke(ctx, prompt, opts)
}
