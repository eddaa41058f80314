// Package chunker provides a fixed-size overlapping text chunker.
package chunker

import (
	"context"
	"fmt"

	"github.com/learnbox/learnbox-search/internal/core/domain"
	"github.com/learnbox/learnbox-search/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Processor splits extracted text into overlapping windows.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between neighbouring chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a chunker. Parameters that would not make progress fail with
// domain.ErrConfig: a non-positive size, a negative overlap, or size <= overlap.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	switch {
	case p.chunkSize <= 0:
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrConfig, p.chunkSize)
	case p.overlap < 0:
		return nil, fmt.Errorf("%w: overlap must not be negative, got %d", domain.ErrConfig, p.overlap)
	case p.chunkSize <= p.overlap:
		return nil, fmt.Errorf("%w: chunk size %d must exceed overlap %d", domain.ErrConfig, p.chunkSize, p.overlap)
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured window size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Split cuts text into windows starting at 0 and advancing by size-overlap.
// Sizes and offsets count characters, not bytes. It stops once a window
// reaches the end of the text.
func (p *Processor) Split(text string) []domain.Chunk {
	if text == "" {
		return nil
	}

	// bounds[i] is the byte offset of character i; the last entry is len(text).
	bounds := make([]int, 0, len(text)+1)
	for i := range text {
		bounds = append(bounds, i)
	}
	bounds = append(bounds, len(text))
	length := len(bounds) - 1

	step := p.chunkSize - p.overlap
	chunks := make([]domain.Chunk, 0, length/step+1)

	for start := 0; ; start += step {
		end := min(start+p.chunkSize, length)
		chunks = append(chunks, domain.Chunk{
			Index: len(chunks),
			Text:  text[bounds[start]:bounds[end]],
			Start: start,
			End:   end,
		})
		if end == length {
			break
		}
	}

	for i := range chunks {
		chunks[i].Total = len(chunks)
	}
	return chunks
}

// Process splits text and stamps every chunk with the document ID.
func (p *Processor) Process(ctx context.Context, documentID, text string) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	chunks := p.Split(text)
	for i := range chunks {
		chunks[i].DocumentID = documentID
	}
	return chunks, nil
}
