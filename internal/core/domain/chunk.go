package domain

import "time"

// Chunk represents an indexed unit of extracted document text.
// Identity is (sanitised file name, chunk index), unique within a
// project namespace and stable across re-ingestion of the same file.
type Chunk struct {
	// ID is the stable chunk identifier, derived via ChunkID.
	ID string

	// Content is the chunk text.
	Content string

	// Embedding is the vector representation for similarity search.
	Embedding []float32

	// Metadata carries file provenance and chunk position.
	Metadata ChunkMetadata
}

// ChunkMetadata carries the provenance of a chunk.
// All fields are plain serialisable values so results can be persisted
// and reloaded without re-running retrieval.
type ChunkMetadata struct {
	// Source is the absolute path of the originating file.
	Source string `json:"source"`

	// FileName is the base name of the originating file.
	FileName string `json:"file_name"`

	// ParentFolder is the name of the file's parent directory.
	ParentFolder string `json:"parent_folder"`

	// RelativePath is the path relative to the project root.
	RelativePath string `json:"relative_path"`

	// FileType is the file extension without the leading dot.
	FileType string `json:"file_type"`

	// SheetNames lists spreadsheet sheet names, when applicable.
	SheetNames []string `json:"sheet_names,omitempty"`

	// ChunkIndex is this chunk's position within the file.
	ChunkIndex int `json:"chunk_index"`

	// TotalChunks is the number of chunks the file produced.
	TotalChunks int `json:"total_chunks"`

	// IngestedAt is when the chunk was written to the index.
	IngestedAt time.Time `json:"timestamp"`
}

// RetrievedChunk is a similarity search hit.
type RetrievedChunk struct {
	// Content is the chunk text.
	Content string `json:"content"`

	// Metadata carries the chunk's provenance.
	Metadata ChunkMetadata `json:"metadata"`

	// Score is the cosine similarity to the query, best-first ordering.
	Score float64 `json:"relevance_score"`
}

// ExtractedDocument is the output of a document extractor: the plain text
// plus structural metadata gathered during extraction.
type ExtractedDocument struct {
	// Text is the extracted plain text, prefixed with the
	// "File:"/"Location:" provenance header.
	Text string

	// SheetNames lists spreadsheet sheet names, when applicable.
	SheetNames []string

	// PageCount is the number of pages, when applicable.
	PageCount int
}
