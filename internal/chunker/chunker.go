// Package chunker provides fixed-size overlapping text chunking.
package chunker

import "strings"

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Chunker splits extracted document text into fixed-size overlapping
// windows. Chunking is a pure function: the same input always yields the
// same ordered, fully materialised sequence.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a new chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't exceed chunk size
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// ChunkSize returns the configured window size.
func (c *Chunker) ChunkSize() int { return c.chunkSize }

// Overlap returns the configured window overlap.
func (c *Chunker) Overlap() int { return c.overlap }

// Chunk splits text into windows of at most chunkSize characters, each
// window starting chunkSize-overlap characters after the previous one.
// Windows whose trimmed content is empty are dropped, which can leave the
// tail of the text under-covered by less than one window. Input shorter
// than one window yields at most one chunk.
func (c *Chunker) Chunk(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	step := c.chunkSize - c.overlap
	chunks := make([]string, 0, len(text)/step+1)

	for start := 0; start < len(text); start += step {
		end := start + c.chunkSize
		if end > len(text) {
			end = len(text)
		}

		window := text[start:end]
		if strings.TrimSpace(window) != "" {
			chunks = append(chunks, window)
		}
	}

	return chunks
}
