package driven

import (
	"context"

	"github.com/veldt-labs/grantrag-cli/internal/core/domain"
)

// ProjectSource exposes the document corpus: one folder per project, each
// holding that project's files. Whether it is backed by a local filesystem
// or a remote object-storage bucket is an implementation choice behind
// this interface.
type ProjectSource interface {
	// ListProjects enumerates project names under the source root.
	ListProjects(ctx context.Context) ([]string, error)

	// ProjectPath returns the source location for a project.
	ProjectPath(project string) string

	// ListFiles walks a project's folder and returns its files.
	// Directories are not files and are never returned.
	ListFiles(ctx context.Context, project string) ([]domain.SourceFile, error)

	// ReadFile returns the raw bytes of a file.
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// Stat returns the file's current metadata.
	Stat(ctx context.Context, path string) (*domain.SourceFile, error)
}

// ProjectWatcher pushes change events for files under watched projects.
type ProjectWatcher interface {
	// Watch begins watching every project folder and returns a channel of
	// debounced file events. The channel closes when ctx is cancelled.
	Watch(ctx context.Context) (<-chan domain.FileEvent, error)

	// Close releases resources.
	Close() error
}
