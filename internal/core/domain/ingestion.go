package domain

import "time"

// FileStatus is the terminal state of a single file within an ingestion run.
type FileStatus string

const (
	// FileDone indicates the file was extracted, chunked and indexed,
	// and its modification time committed to the ledger.
	FileDone FileStatus = "done"

	// FileSkipped indicates the ledger showed a modification time at or
	// beyond the file's current one; no extraction work was performed.
	FileSkipped FileStatus = "skipped"

	// FileFailed indicates an unrecoverable per-file error. Other files in
	// the same run are unaffected.
	FileFailed FileStatus = "failed"
)

// FileOutcome records how a single file fared during an ingestion run.
type FileOutcome struct {
	// File is the path relative to the project root.
	File string `json:"file"`

	// FullPath is the absolute path.
	FullPath string `json:"full_path"`

	// Status is the terminal state reached.
	Status FileStatus `json:"status"`

	// Chunks is the number of chunks written (FileDone only).
	Chunks int `json:"chunks,omitempty"`

	// Error is the failure reason (FileFailed only).
	Error string `json:"error,omitempty"`
}

// IngestReport aggregates per-file outcomes for one ingestion run.
// A run never aborts on a single file's failure; the report always gives
// a complete accounting of what succeeded and what did not.
type IngestReport struct {
	// RunID identifies the ingestion run.
	RunID string `json:"run_id"`

	// Project is the project name.
	Project string `json:"project"`

	// Processed lists files that reached FileDone.
	Processed []FileOutcome `json:"processed_files"`

	// Skipped lists files that reached FileSkipped, including files with
	// explicitly unsupported extensions.
	Skipped []FileOutcome `json:"skipped_files"`

	// Errors lists files that reached FileFailed.
	Errors []FileOutcome `json:"error_files"`

	// StartTime and EndTime bound the run.
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	// Elapsed is the wall-clock run duration.
	Elapsed time.Duration `json:"elapsed"`
}

// TotalProcessed returns the number of successfully ingested files.
func (r *IngestReport) TotalProcessed() int { return len(r.Processed) }

// TotalSkipped returns the number of skipped files.
func (r *IngestReport) TotalSkipped() int { return len(r.Skipped) }

// TotalErrors returns the number of failed files.
func (r *IngestReport) TotalErrors() int { return len(r.Errors) }
