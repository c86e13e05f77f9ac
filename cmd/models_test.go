package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModels_ListMarksSelection(t *testing.T) {
	out, err := runCLI(t, "models", "--data-dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "OpenAI")
	assert.Contains(t, out, "* gpt-4o")
	assert.Contains(t, out, "gemini-2.0-flash")
}

func TestModels_UsePersists(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, "models", "use", "gemini", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "gemini/gemini-2.0-flash")

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "provider: gemini")

	out, err = runCLI(t, "models", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "* gemini-2.0-flash")

	_, err = runCLI(t, "models", "use", "anthropic", "claude-3-sonnet", "--data-dir", dir)
	require.NoError(t, err)
	out, err = runCLI(t, "models", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "* claude-3-sonnet")
}

func TestModels_UseRejectsUnknown(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, "models", "use", "mystery", "--data-dir", dir)
	assert.Error(t, err)
	_, err = runCLI(t, "models", "use", "openai", "claude-3-opus", "--data-dir", dir)
	assert.Error(t, err)
}
