package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProjectNotFound indicates the named project is not registered.
	ErrProjectNotFound = errors.New("project not found")

	// Ingestion Errors.

	// ErrUnsupportedFormat indicates a file extension outside the supported set.
	// Ingestion treats this as a skip, never a run failure.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrExtractionFailed indicates the extractor threw or produced empty text.
	// Recorded as a per-file failure; the ingestion run continues.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrEmptyChunkSet indicates the chunker produced nothing from non-empty text.
	ErrEmptyChunkSet = errors.New("no chunks produced")

	// ErrIndexWriteFailed indicates an upsert or delete against the vector index failed.
	ErrIndexWriteFailed = errors.New("index write failed")

	// Retrieval and Synthesis Errors.

	// ErrRetrievalUnavailable indicates similarity search failed after the
	// retry budget was exhausted. Ask degrades to "no relevant information
	// found" rather than failing the whole query.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")

	// ErrSynthesisFailed indicates the language model call failed or returned
	// unparseable content after retries.
	ErrSynthesisFailed = errors.New("synthesis failed")

	// ErrInsufficientProjects indicates a multi-project operation was invoked
	// with fewer than the required minimum of two projects.
	ErrInsufficientProjects = errors.New("at least 2 projects are required")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)
