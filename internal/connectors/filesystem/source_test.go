package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldt-labs/grantrag-cli/internal/core/domain"
)

func setupRoot(t *testing.T) (*Source, string) {
	t.Helper()
	root := t.TempDir()
	source, err := NewSource(root)
	require.NoError(t, err)
	return source, root
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestListProjects(t *testing.T) {
	source, root := setupRoot(t)
	ctx := context.Background()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "water-access"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "climate-resilience"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".hidden"), 0o755))
	writeFile(t, filepath.Join(root, "stray.txt"), "not a project")

	projects, err := source.ListProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"climate-resilience", "water-access"}, projects)
}

func TestListFiles(t *testing.T) {
	source, root := setupRoot(t)
	ctx := context.Background()

	writeFile(t, filepath.Join(root, "water-access", "proposal.txt"), "proposal body")
	writeFile(t, filepath.Join(root, "water-access", "budget", "budget.xlsx"), "xlsx bytes")

	files, err := source.ListFiles(ctx, "water-access")
	require.NoError(t, err)
	require.Len(t, files, 2)

	byName := make(map[string]domain.SourceFile, len(files))
	for _, f := range files {
		byName[f.Name] = f
	}

	proposal := byName["proposal.txt"]
	assert.Equal(t, ".txt", proposal.Extension)
	assert.Equal(t, "proposal.txt", proposal.RelativePath)
	assert.Equal(t, "water-access", proposal.ParentFolder)
	assert.Equal(t, int64(len("proposal body")), proposal.Size)
	assert.False(t, proposal.ModTime.IsZero())

	budget := byName["budget.xlsx"]
	assert.Equal(t, filepath.Join("budget", "budget.xlsx"), budget.RelativePath)
	assert.Equal(t, "budget", budget.ParentFolder)
}

func TestReadFile(t *testing.T) {
	source, root := setupRoot(t)
	ctx := context.Background()

	path := filepath.Join(root, "p", "notes.txt")
	writeFile(t, path, "hello")

	data, err := source.ReadFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
}

func TestStatReportsProjectRelativePath(t *testing.T) {
	source, root := setupRoot(t)
	ctx := context.Background()

	nested := filepath.Join(root, "water-access", "docs", "proposal.txt")
	writeFile(t, nested, "proposal body")

	file, err := source.Stat(ctx, nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("docs", "proposal.txt"), file.RelativePath)
	assert.Equal(t, "proposal.txt", file.Name)

	// Files directly inside a project folder keep just their name.
	top := filepath.Join(root, "water-access", "summary.txt")
	writeFile(t, top, "summary")

	file, err = source.Stat(ctx, top)
	require.NoError(t, err)
	assert.Equal(t, "summary.txt", file.RelativePath)

	// Paths outside any project folder fall back to the base name.
	stray := filepath.Join(root, "stray.txt")
	writeFile(t, stray, "stray")

	file, err = source.Stat(ctx, stray)
	require.NoError(t, err)
	assert.Equal(t, "stray.txt", file.RelativePath)
}

func TestStatMissingFile(t *testing.T) {
	source, root := setupRoot(t)

	_, err := source.Stat(context.Background(), filepath.Join(root, "nope.txt"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddProjectFolder(t *testing.T) {
	source, _ := setupRoot(t)
	ctx := context.Background()

	external := t.TempDir()
	srcDir := filepath.Join(external, "solar-microgrids")
	writeFile(t, filepath.Join(srcDir, "concept.txt"), "concept note")
	writeFile(t, filepath.Join(srcDir, "docs", "annex.txt"), "annex")

	name, err := source.AddProjectFolder(ctx, srcDir)
	require.NoError(t, err)
	assert.Equal(t, "solar-microgrids", name)

	files, err := source.ListFiles(ctx, name)
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = source.AddProjectFolder(ctx, srcDir)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}
