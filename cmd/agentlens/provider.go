package main

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/agentlens/agentlens/pkg/logger"
	"github.com/agentlens/agentlens/pkg/types/provider"
)

// execProvider satisfies provider.Provider by shelling out to an external
// summarizer command. The prompt is written to the command's stdin and its
// stdout is taken verbatim as the summary.
type execProvider struct {
	command string
	args    []string
}

func newExecProvider(cmdline string) *execProvider {
	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		return nil
	}
	return &execProvider{command: fields[0], args: fields[1:]}
}

func (e *execProvider) Invoke(ctx context.Context, prompt string, opts provider.InvokeOptions) (*provider.Response, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.command, e.args...)
	cmd.Dir = opts.WorkingDir
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		logger.G(ctx).WithField("command", e.command).WithField("stderr", stderr.String()).Debug("summarizer command failed")
		return nil, errors.Wrapf(err, "summarizer command %q failed", e.command)
	}

	return &provider.Response{
		Result:     stdout.String(),
		DurationMS: time.Since(start).Milliseconds(),
	}, nil
}
