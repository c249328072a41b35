package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldt-labs/grantrag-cli/internal/core/domain"
)

func TestProgramStoreDefaults(t *testing.T) {
	dir := t.TempDir()
	store, err := NewProgramStore(dir)
	require.NoError(t, err)

	names, err := store.Programs()
	require.NoError(t, err)

	assert.Equal(t, []string{"F4J (Funding for Justice)", "Oxfam", "UNDP"}, names)

	// First access writes the catalog out for the user to edit.
	_, err = os.Stat(filepath.Join(dir, "programs.toml"))
	assert.NoError(t, err)
}

func TestProgramStoreGet(t *testing.T) {
	store, err := NewProgramStore(t.TempDir())
	require.NoError(t, err)

	program, err := store.Get("Oxfam")
	require.NoError(t, err)

	assert.Equal(t, "Oxfam", program.Name)
	assert.Len(t, program.EligibilityCriteria, 7)
	assert.Len(t, program.ReportQuestions, 10)
	assert.Equal(t, "Legal Entity", program.EligibilityCriteria[0].Name)
}

func TestProgramStoreGetUnknown(t *testing.T) {
	store, err := NewProgramStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get("Nonexistent")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProgramStoreReadsUserFile(t *testing.T) {
	dir := t.TempDir()
	custom := `[[programs]]
name = "Local Fund"
description = "A municipal grant program"

[[programs.eligibility_criteria]]
name = "Residency"
question = "Is the applicant based in the municipality?"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "programs.toml"), []byte(custom), 0o600))

	store, err := NewProgramStore(dir)
	require.NoError(t, err)

	names, err := store.Programs()
	require.NoError(t, err)
	assert.Equal(t, []string{"Local Fund"}, names)

	program, err := store.Get("Local Fund")
	require.NoError(t, err)
	require.Len(t, program.EligibilityCriteria, 1)
	assert.Equal(t, "Residency", program.EligibilityCriteria[0].Name)
}

func TestProgramStoreFallsBackOnEmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "programs.toml"), nil, 0o600))

	store, err := NewProgramStore(dir)
	require.NoError(t, err)

	names, err := store.Programs()
	require.NoError(t, err)
	assert.Len(t, names, 3)
}
