package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldt-labs/grantrag-cli/internal/core/ports/driven"
)

func TestPromptStoreLoadsDefaults(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptAskSystem)
	require.NoError(t, err)
	assert.Contains(t, prompt, "grant applications")

	prompt, err = store.Load(driven.PromptRecommendSystem)
	require.NoError(t, err)
	assert.Contains(t, prompt, "DECISION: Fund")
	assert.Contains(t, prompt, "DECISION: Do Not Fund")
	assert.Contains(t, prompt, "DECISION: Partially Fund")
}

func TestPromptStoreCreatesFilesOnFirstLoad(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptAskSystem)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestPromptStoreReadsCustomisedFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	custom := "You are a terse assistant."
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, driven.PromptAskSystem+".txt"), []byte(custom), 0o644))

	prompt, err := store.Load(driven.PromptAskSystem)
	require.NoError(t, err)
	assert.Equal(t, custom, prompt)
}

func TestPromptStoreUnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("no_such_prompt")

	assert.Error(t, err)
}
