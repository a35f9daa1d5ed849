package sandbox

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentlens/agentlens/pkg/types/provider"
)

type stubProvider struct {
	mu       sync.Mutex
	workDirs []string
	result   string
	err      error
}

func (s *stubProvider) Invoke(_ context.Context, _ string, opts provider.InvokeOptions) (*provider.Response, error) {
	s.mu.Lock()
	s.workDirs = append(s.workDirs, opts.WorkingDir)
	s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	return &provider.Response{Result: s.result}, nil
}

func chtmp(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
	return tmpDir
}

func TestInvokeIsolated(t *testing.T) {
	tmpDir := chtmp(t)

	stub := &stubProvider{result: "a summary"}
	resp, err := InvokeIsolated(context.Background(), stub, "summarize this", provider.InvokeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "a summary", resp.Result)

	require.Len(t, stub.workDirs, 1)
	workDir := stub.workDirs[0]
	assert.Contains(t, workDir, filepath.Join(tmpDir, "tmp", "isolated-prompts", "prompt-"))

	// The sandbox directory is gone after the call.
	_, statErr := os.Stat(workDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestInvokeIsolatedCleansUpOnFailure(t *testing.T) {
	chtmp(t)

	stub := &stubProvider{err: errors.New("provider exploded")}
	_, err := InvokeIsolated(context.Background(), stub, "prompt", provider.InvokeOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider exploded")

	require.Len(t, stub.workDirs, 1)
	_, statErr := os.Stat(stub.workDirs[0])
	assert.True(t, os.IsNotExist(statErr))
}

func TestInvokeIsolatedSandboxIsEmpty(t *testing.T) {
	chtmp(t)

	var entries int
	checker := providerFunc(func(_ context.Context, _ string, opts provider.InvokeOptions) (*provider.Response, error) {
		listed, err := os.ReadDir(opts.WorkingDir)
		if err != nil {
			return nil, err
		}
		entries = len(listed)
		return &provider.Response{Result: "ok"}, nil
	})

	_, err := InvokeIsolated(context.Background(), checker, "prompt", provider.InvokeOptions{})
	require.NoError(t, err)
	assert.Zero(t, entries)
}

func TestInvokeIsolatedConcurrentDirsAreDistinct(t *testing.T) {
	chtmp(t)

	stub := &stubProvider{result: "ok"}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := InvokeIsolated(context.Background(), stub, "prompt", provider.InvokeOptions{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	seen := map[string]struct{}{}
	for _, dir := range stub.workDirs {
		seen[dir] = struct{}{}
	}
	assert.Len(t, seen, 8, "each invocation gets its own sandbox directory")
}

type providerFunc func(ctx context.Context, prompt string, opts provider.InvokeOptions) (*provider.Response, error)

func (f providerFunc) Invoke(ctx context.Context, prompt string, opts provider.InvokeOptions) (*provider.Response, error) {
	return f(ctx, prompt, opts)
}
