package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, DefaultModel, p.Model)
	assert.Equal(t, 2, p.Threads)
	assert.Equal(t, 128, p.NPredict)
	assert.Equal(t, 2048, p.CtxSize)
	assert.Equal(t, 0.8, p.Temperature)
	assert.False(t, p.Conversation)
	assert.Empty(t, p.Prompt)
}

func TestParamsValidate(t *testing.T) {
	p := DefaultParams()
	assert.ErrorIs(t, p.Validate(), ErrEmptyPrompt)

	p.Prompt = "\t \n"
	assert.ErrorIs(t, p.Validate(), ErrEmptyPrompt)

	p.Prompt = "hello"
	p.Threads = -5
	p.Temperature = 99
	assert.NoError(t, p.Validate())
}

func TestResolveBinary(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "bin", "llama-cli")
	release := filepath.Join(dir, "bin", "Release", "llama-cli.exe")

	assert.Equal(t, plain, ResolveBinary(dir, "linux"))
	assert.Equal(t, plain, ResolveBinary(dir, "darwin"))
	assert.Equal(t, plain, ResolveBinary(dir, "windows"), "falls back when the release build is missing")

	require.NoError(t, os.MkdirAll(filepath.Dir(release), 0o755))
	require.NoError(t, os.WriteFile(release, nil, 0o755))
	assert.Equal(t, release, ResolveBinary(dir, "windows"))
	assert.Equal(t, plain, ResolveBinary(dir, "linux"), "release path is windows-only")
}

func TestLineWriter(t *testing.T) {
	var lines []string
	w := newLineWriter(nil, func(s string) { lines = append(lines, s) })

	_, err := w.Write([]byte("first\r\nsec"))
	require.NoError(t, err)
	_, err = w.Write([]byte("ond\n\nthi"))
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", ""}, lines)

	w.Flush()
	w.Flush()
	assert.Equal(t, []string{"first", "second", "", "thi"}, lines)
}
