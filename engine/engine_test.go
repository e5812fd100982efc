package engine

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBinary writes an executable shell script standing in for llama-cli.
func fakeBinary(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes need a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "llama-cli")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func testParams() Params {
	p := DefaultParams()
	p.Prompt = "hello"
	return p
}

func TestRun_StreamsLinesAndEchoes(t *testing.T) {
	bin := fakeBinary(t, `echo "generate: n_ctx = 2048"
echo "to stderr" 1>&2
printf "no newline"`)

	var out bytes.Buffer
	var lines []string
	l := New(bin, WithOutput(&out), WithLineHandler(func(line string) {
		lines = append(lines, line)
	}))

	res, err := l.Run(context.Background(), testParams())
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.False(t, res.EndedAt.Before(res.StartedAt))

	assert.Equal(t, []string{"generate: n_ctx = 2048", "to stderr", "no newline"}, lines)
	assert.Equal(t, "generate: n_ctx = 2048\nto stderr\nno newline", out.String())
}

func TestRun_PassesArguments(t *testing.T) {
	bin := fakeBinary(t, `for a in "$@"; do printf '%s\n' "$a"; done`)

	var lines []string
	l := New(bin, WithLineHandler(func(line string) { lines = append(lines, line) }))

	p := testParams()
	p.Prompt = "two words"
	p.Conversation = true
	_, err := l.Run(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, BuildArgs(p), lines)
}

func TestRun_NonZeroExit(t *testing.T) {
	bin := fakeBinary(t, `echo "partial"; exit 2`)

	var out bytes.Buffer
	res, err := New(bin, WithOutput(&out)).Run(context.Background(), testParams())

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "got %v", err)
	assert.Equal(t, 2, exitErr.Code)
	assert.Equal(t, 2, res.ExitCode)
	assert.Contains(t, err.Error(), "code 2")
	assert.Equal(t, "partial\n", out.String())
}

func TestRun_LaunchFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	_, err := New(missing).Run(context.Background(), testParams())

	var launchErr *LaunchError
	require.True(t, errors.As(err, &launchErr), "got %v", err)
	assert.Equal(t, missing, launchErr.Path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), missing)
}

func TestRun_EmptyPromptNeverStarts(t *testing.T) {
	bin := fakeBinary(t, `echo started`)

	var out bytes.Buffer
	p := testParams()
	p.Prompt = "   "
	_, err := New(bin, WithOutput(&out)).Run(context.Background(), p)

	assert.ErrorIs(t, err, ErrEmptyPrompt)
	assert.Empty(t, out.String())
}

func TestRun_ContextCancelInterrupts(t *testing.T) {
	bin := fakeBinary(t, `echo "generate: n_ctx = 2048"
exec sleep 30`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := New(bin, WithWaitDelay(time.Second), WithLineHandler(func(line string) {
		cancel()
	}))

	start := time.Now()
	_, err := l.Run(ctx, testParams())
	assert.ErrorIs(t, err, ErrInterrupted)
	assert.Less(t, time.Since(start), 20*time.Second)
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	bin := fakeBinary(t, `echo "never"`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	_, err := New(bin, WithOutput(&out)).Run(ctx, testParams())
	assert.ErrorIs(t, err, ErrInterrupted)
	var launchErr *LaunchError
	assert.False(t, errors.As(err, &launchErr))
	assert.Empty(t, out.String())
}

func TestRun_CancelSendsSIGINT(t *testing.T) {
	bin := fakeBinary(t, `trap 'kill $! 2>/dev/null; echo "llama_perf_context_print: eval time = 900.00 ms / 9 runs ( 100.00 ms per token, 10.00 tokens per second)"; exit 0' INT
echo "generate: n_ctx = 2048"
sleep 30 &
wait`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var lines []string
	l := New(bin, WithWaitDelay(5*time.Second), WithLineHandler(func(line string) {
		lines = append(lines, line)
		if strings.HasPrefix(line, "generate:") {
			cancel()
		}
	}))

	_, err := l.Run(ctx, testParams())
	assert.ErrorIs(t, err, ErrInterrupted)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "10.00 tokens per second")
}

func TestBinary(t *testing.T) {
	assert.Equal(t, "build/bin/llama-cli", New("build/bin/llama-cli").Binary())
}

func TestRun_ChildSIGINTCountsAsInterrupt(t *testing.T) {
	bin := fakeBinary(t, `echo "bye"; exit 130`)

	_, err := New(bin).Run(context.Background(), testParams())
	assert.ErrorIs(t, err, ErrInterrupted)
}
