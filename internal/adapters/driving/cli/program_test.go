package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgramListCmd(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "program", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "Oxfam")
	assert.Contains(t, out, "UNDP")
}

func TestProgramShowCmd(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "program", "show", "Oxfam")

	require.NoError(t, err)
	assert.Contains(t, out, "Eligibility criteria:")
	assert.Contains(t, out, "Report questions:")
}

func TestProgramSelectCmd(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "program", "select", "UNDP")
	require.NoError(t, err)
	assert.Contains(t, out, "Selected program: UNDP")

	// The selection is persisted and marked in the listing.
	out, err = execute(t, "program", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "* UNDP")
}

func TestProgramShowCmd_Unknown(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "program", "show", "Nonexistent")

	require.Error(t, err)
}
