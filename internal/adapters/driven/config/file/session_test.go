package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldt-labs/grantrag-cli/internal/core/domain"
)

func TestSessionStoreLoadEmpty(t *testing.T) {
	store, err := NewSessionStore(t.TempDir())
	require.NoError(t, err)

	session, err := store.Load()
	require.NoError(t, err)

	assert.Empty(t, session.SelectedProgram)
	assert.NotNil(t, session.Eligibility)
	assert.NotNil(t, session.Reports)
}

func TestSessionStoreRoundtrip(t *testing.T) {
	store, err := NewSessionStore(t.TempDir())
	require.NoError(t, err)

	session := domain.NewSession()
	session.SelectedProgram = "Oxfam"
	session.Eligibility["clean-water"] = domain.EligibilityResult{
		Project:   "clean-water",
		Eligible:  true,
		Timestamp: time.Now().UTC(),
		Criteria: []domain.CriterionResult{
			{Name: "Legal Entity", Answer: "Yes, registered.", Met: true},
		},
	}
	session.Recommendations["clean-water"] = domain.Recommendation{
		Project:  "clean-water",
		Decision: domain.DecisionFund,
	}
	require.NoError(t, store.Save(session))

	loaded, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, "Oxfam", loaded.SelectedProgram)
	require.Contains(t, loaded.Eligibility, "clean-water")
	assert.True(t, loaded.Eligibility["clean-water"].Eligible)
	assert.Equal(t, domain.DecisionFund, loaded.Recommendations["clean-water"].Decision)

	// Maps absent from the file are still usable after load.
	loaded.Selection["clean-water"] = domain.SelectionResult{}
}

func TestSessionStoreRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session.json"), []byte("{oops"), 0o600))

	store, err := NewSessionStore(dir)
	require.NoError(t, err)

	_, err = store.Load()
	assert.Error(t, err)
}
