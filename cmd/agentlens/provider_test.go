package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentlens/agentlens/pkg/types/provider"
)

func TestNewExecProvider(t *testing.T) {
	p := newExecProvider("claude -p --model haiku")
	require.NotNil(t, p)
	assert.Equal(t, "claude", p.command)
	assert.Equal(t, []string{"-p", "--model", "haiku"}, p.args)

	assert.Nil(t, newExecProvider(""))
	assert.Nil(t, newExecProvider("   "))
}

func TestExecProviderInvoke(t *testing.T) {
	p := newExecProvider("cat")
	require.NotNil(t, p)

	resp, err := p.Invoke(context.Background(), "summarize this", provider.InvokeOptions{
		WorkingDir: t.TempDir(),
		Timeout:    10 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, "summarize this", resp.Result)
	assert.GreaterOrEqual(t, resp.DurationMS, int64(0))
}

func TestExecProviderInvokeFailure(t *testing.T) {
	p := newExecProvider("false")
	require.NotNil(t, p)

	_, err := p.Invoke(context.Background(), "prompt", provider.InvokeOptions{WorkingDir: t.TempDir()})
	assert.Error(t, err)
}

func TestExecProviderTimeout(t *testing.T) {
	p := newExecProvider("sleep 5")
	require.NotNil(t, p)

	start := time.Now()
	_, err := p.Invoke(context.Background(), "prompt", provider.InvokeOptions{
		WorkingDir: t.TempDir(),
		Timeout:    100 * time.Millisecond,
	})
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}
