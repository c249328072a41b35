package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest [project]", ingestCmd.Use)
}

func TestIngestCmd_RequiresProjectOrAll(t *testing.T) {
	cleanup := setupTestServices(t, "clean-water")
	defer cleanup()

	_, err := execute(t, "ingest")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "specify a project name or --all")
}

func TestIngestCmd_UnknownProject(t *testing.T) {
	cleanup := setupTestServices(t, "clean-water")
	defer cleanup()

	_, err := execute(t, "ingest", "missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "project not found")
}

func TestAskCmd_RequiresProjectAndQuestion(t *testing.T) {
	_, err := execute(t, "ask", "clean-water")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 2 arg(s)")
}
