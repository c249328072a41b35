package domain

import "time"

// SourceFile describes one document file listed by a project source.
type SourceFile struct {
	// Path is the absolute path (or backend-specific key) of the file.
	Path string

	// RelativePath is the path relative to the project root.
	RelativePath string

	// Name is the base file name.
	Name string

	// ParentFolder is the name of the file's parent directory.
	ParentFolder string

	// Extension is the lowercase file extension including the dot.
	Extension string

	// ModTime is the file's last modification time.
	ModTime time.Time

	// Size is the file size in bytes.
	Size int64
}

// FileEvent signals that a file under a watched project changed on disk.
type FileEvent struct {
	// Project is the owning project name.
	Project string

	// Path is the absolute path of the changed file.
	Path string
}
