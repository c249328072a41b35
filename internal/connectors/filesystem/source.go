// Package filesystem implements the project source against a local
// directory tree: one folder per project under a common root.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/veldt-labs/grantrag-cli/internal/core/domain"
	"github.com/veldt-labs/grantrag-cli/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.ProjectSource = (*Source)(nil)

// Source exposes project folders under a root directory.
type Source struct {
	root string
}

// NewSource creates a project source rooted at the given directory.
// The directory is created if it does not exist.
func NewSource(root string) (*Source, error) {
	if root == "" {
		return nil, fmt.Errorf("filesystem: projects root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("filesystem: create projects root: %w", err)
	}
	return &Source{root: root}, nil
}

// Root returns the projects root directory.
func (s *Source) Root() string {
	return s.root
}

// ListProjects enumerates project folder names under the root, sorted.
func (s *Source) ListProjects(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("filesystem: read projects root: %w", err)
	}

	var projects []string
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			projects = append(projects, entry.Name())
		}
	}
	sort.Strings(projects)
	return projects, nil
}

// ProjectPath returns the folder for a project.
func (s *Source) ProjectPath(project string) string {
	return filepath.Join(s.root, project)
}

// ListFiles walks a project folder and returns every regular file,
// including files in nested directories. Directories themselves are
// never returned.
func (s *Source) ListFiles(_ context.Context, project string) ([]domain.SourceFile, error) {
	projectPath := s.ProjectPath(project)

	var files []domain.SourceFile
	err := filepath.WalkDir(projectPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(projectPath, path)
		if err != nil {
			rel = d.Name()
		}

		files = append(files, domain.SourceFile{
			Path:         path,
			RelativePath: rel,
			Name:         d.Name(),
			ParentFolder: filepath.Base(filepath.Dir(path)),
			Extension:    strings.ToLower(filepath.Ext(path)),
			ModTime:      info.ModTime(),
			Size:         info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("filesystem: walk %s: %w", projectPath, err)
	}

	return files, nil
}

// ReadFile returns the raw bytes of a file.
func (s *Source) ReadFile(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("filesystem: read %s: %w", path, err)
	}
	return data, nil
}

// Stat returns the file's current metadata.
func (s *Source) Stat(_ context.Context, path string) (*domain.SourceFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("filesystem: stat %s: %w", path, err)
	}

	return &domain.SourceFile{
		Path:         path,
		RelativePath: s.relativeToProject(path),
		Name:         filepath.Base(path),
		ParentFolder: filepath.Base(filepath.Dir(path)),
		Extension:    strings.ToLower(filepath.Ext(path)),
		ModTime:      info.ModTime(),
		Size:         info.Size(),
	}, nil
}

// relativeToProject strips the root and project folder from a path,
// yielding the same project-relative path ListFiles reports. Paths
// outside a project folder fall back to the base name.
func (s *Source) relativeToProject(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.Base(path)
	}
	parts := strings.SplitN(rel, string(filepath.Separator), 2)
	if len(parts) < 2 {
		return filepath.Base(path)
	}
	return parts[1]
}

// AddProjectFolder copies an external folder into the projects root and
// returns the new project's name. Fails if a project with the same name
// already exists.
func (s *Source) AddProjectFolder(ctx context.Context, folder string) (string, error) {
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("filesystem: %w: not a directory: %s", domain.ErrInvalidInput, folder)
	}

	project := filepath.Base(folder)
	target := s.ProjectPath(project)
	if _, err := os.Stat(target); err == nil {
		return "", fmt.Errorf("filesystem: project %s: %w", project, domain.ErrAlreadyExists)
	}

	err = filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rel, err := filepath.Rel(folder, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(target, rel)

		if d.IsDir() {
			return os.MkdirAll(dst, 0o755)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(dst, data, 0o644)
	})
	if err != nil {
		return "", fmt.Errorf("filesystem: copy project folder: %w", err)
	}

	return project, nil
}
