package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectListCmd(t *testing.T) {
	cleanup := setupTestServices(t, "clean-water", "solar-power")
	defer cleanup()

	out, err := execute(t, "project", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "clean-water")
	assert.Contains(t, out, "solar-power")
}

func TestProjectStatsCmd(t *testing.T) {
	cleanup := setupTestServices(t, "clean-water")
	defer cleanup()

	out, err := execute(t, "project", "stats", "clean-water")

	require.NoError(t, err)
	assert.Contains(t, out, "Project:   clean-water")
	assert.Contains(t, out, "Documents: 0")
}

func TestProjectStatsCmd_UnknownProject(t *testing.T) {
	cleanup := setupTestServices(t, "clean-water")
	defer cleanup()

	_, err := execute(t, "project", "stats", "missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "project not found")
}
