package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veldt-labs/grantrag-cli/internal/adapters/driven/config/file"
	"github.com/veldt-labs/grantrag-cli/internal/adapters/driven/storage/memory"
	"github.com/veldt-labs/grantrag-cli/internal/chunker"
	"github.com/veldt-labs/grantrag-cli/internal/connectors/filesystem"
	"github.com/veldt-labs/grantrag-cli/internal/core/services"
	"github.com/veldt-labs/grantrag-cli/internal/extractors"
)

// setupTestServices wires the package-level services against a temporary
// directory and in-memory storage. The returned cleanup restores the
// previous wiring.
func setupTestServices(t *testing.T, projects ...string) func() {
	t.Helper()

	tmp := t.TempDir()
	projectsDir := filepath.Join(tmp, "projects")

	prevCfg, prevSource, prevAssessment := cfg, source, assessmentService
	prevPrograms, prevSessions, prevPrompts := programStore, sessionStore, promptStore

	var err error
	source, err = filesystem.NewSource(projectsDir)
	require.NoError(t, err)

	for _, name := range projects {
		dir := filepath.Join(projectsDir, name)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "proposal.txt"),
			[]byte("Proposal for "+name+"."), 0o644))
	}

	cfg = &file.Config{ProjectsDir: projectsDir, DataDir: filepath.Join(tmp, "data")}

	programStore, err = file.NewProgramStore(tmp)
	require.NoError(t, err)
	sessionStore, err = file.NewSessionStore(tmp)
	require.NoError(t, err)
	promptStore, err = file.NewPromptStore(filepath.Join(tmp, "prompts"))
	require.NoError(t, err)

	assessmentService = services.NewAssessment(services.Backends{
		Source:     source,
		Extractors: extractors.Defaults(),
		Chunker:    chunker.New(),
		Index:      memory.NewVectorIndex(),
		Ledger:     memory.NewIngestionLedger(),
		QueryCache: memory.NewQueryCache(),
		Answers:    memory.NewAnswerCache(),
		Stats:      memory.NewStatsStore(),
		Prompts:    promptStore,
	})
	require.NoError(t, assessmentService.InitializeProjects(context.Background()))

	return func() {
		cfg, source, assessmentService = prevCfg, prevSource, prevAssessment
		programStore, sessionStore, promptStore = prevPrograms, prevSessions, prevPrompts
	}
}

// execute runs the root command with the given args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
