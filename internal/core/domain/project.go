package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Project represents a grant application under assessment.
// Each project owns a document folder, a vector index namespace, an
// ingestion ledger and its caches. Namespaces never overlap, so
// cross-project chunk leakage is impossible by construction.
type Project struct {
	// Name is the human-readable project name (the folder name).
	Name string

	// Namespace is the sanitised name used as the vector index namespace
	// and cache scope. Always the output of SanitizeName(Name).
	Namespace string

	// Path is the project's document source location.
	Path string

	// Stats tracks running ingestion statistics.
	Stats ProjectStats
}

// ProjectStats tracks running statistics for a project.
type ProjectStats struct {
	// DocumentsProcessed counts files successfully ingested.
	DocumentsProcessed int `json:"documents_processed"`

	// ChunksStored counts chunks written to the vector index.
	ChunksStored int `json:"chunks_stored"`

	// LastUpdate is when the project was last modified by an ingestion run.
	LastUpdate time.Time `json:"last_update"`
}

var (
	invalidNameChars = regexp.MustCompile(`[^a-zA-Z0-9-]`)
	repeatUnderscore = regexp.MustCompile(`_+`)
	leadingNonAlnum  = regexp.MustCompile(`^[^a-zA-Z0-9]+`)
	trailingNonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+$`)
	ipv4Literal      = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}$`)
)

// SanitizeName converts an arbitrary name into a namespace-safe identifier.
// Rules:
//  1. Contains 3-63 characters
//  2. Starts and ends with an alphanumeric character
//  3. Contains only alphanumerics, underscores or hyphens
//  4. Is not ambiguous with an IPv4 literal
func SanitizeName(name string) string {
	sanitized := invalidNameChars.ReplaceAllString(name, "_")
	sanitized = repeatUnderscore.ReplaceAllString(sanitized, "_")
	sanitized = leadingNonAlnum.ReplaceAllString(sanitized, "")
	sanitized = trailingNonAlnum.ReplaceAllString(sanitized, "")

	if ipv4Literal.MatchString(name) {
		sanitized = sanitized + "_ns"
	}

	if len(sanitized) < 3 {
		sanitized = sanitized + "_collection"
	}
	if len(sanitized) > 63 {
		sanitized = sanitized[:63]
		sanitized = trailingNonAlnum.ReplaceAllString(sanitized, "")
	}

	return sanitized
}

// ChunkID derives the stable identity of a chunk from its source file name
// and position. Re-ingesting the same file always produces the same IDs, so
// stale chunks can be deleted before their replacements are inserted.
func ChunkID(fileName string, index int) string {
	return SanitizeName(fileName) + "_" + strconv.Itoa(index)
}

// DisplayPath returns a shortened path for CLI display.
func (p *Project) DisplayPath() string {
	if home, ok := strings.CutPrefix(p.Path, "/home/"); ok {
		if i := strings.IndexByte(home, '/'); i >= 0 {
			return "~" + home[i:]
		}
	}
	return p.Path
}
