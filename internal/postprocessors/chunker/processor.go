// Package chunker splits lesson text into chunks that never span two lessons.
package chunker

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
)

var _ driven.Chunker = (*Processor)(nil)

// Sizes are in runes.
const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 100
)

// Processor splits each lesson section into chunks of at most chunkSize
// runes, either as fixed windows or as packed sentences.
type Processor struct {
	chunkSize  int
	overlap    int
	bySentence bool
	newID      func() string
}

type Option func(*Processor)

// WithChunkSize ignores non-positive sizes.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap ignores negative values. An overlap not smaller than the chunk
// size is reset to a quarter of it.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithSentences packs whole sentences instead of cutting fixed windows.
func WithSentences() Option {
	return func(p *Processor) {
		p.bySentence = true
	}
}

// WithIDFunc replaces the random UUID chunk IDs, mostly for tests.
func WithIDFunc(fn func() string) Option {
	return func(p *Processor) {
		if fn != nil {
			p.newID = fn
		}
	}
}

func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		newID:     func() string { return uuid.New().String() },
	}

	for _, opt := range opts {
		opt(p)
	}
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

func (p *Processor) Name() string {
	if p.bySentence {
		return "sentence-chunker"
	}
	return "chunker"
}

// Chunk splits every non-empty lesson section of doc.
func (p *Processor) Chunk(ctx context.Context, doc *domain.CourseDocument) ([]domain.CourseChunk, error) {
	var chunks []domain.CourseChunk
	index := 0

	for _, section := range doc.Sections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		split := p.split
		if p.bySentence {
			split = p.packSentences
		}
		for _, text := range split(section.Text) {
			chunks = append(chunks, domain.CourseChunk{
				ID:           p.newID(),
				Content:      text,
				CourseTitle:  doc.Course.Title,
				LessonNumber: copyInt(section.LessonNumber),
				ChunkIndex:   index,
			})
			index++
		}
	}

	return chunks, nil
}

// split cuts text into windows of chunkSize runes, stepping by chunkSize-overlap.
func (p *Processor) split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	step := p.chunkSize - p.overlap
	out := make([]string, 0, len(runes)/step+1)

	for start := 0; start < len(runes); start += step {
		end := min(start+p.chunkSize, len(runes))
		if piece := strings.TrimSpace(string(runes[start:end])); piece != "" {
			out = append(out, piece)
		}
		if end == len(runes) {
			break
		}
	}

	return out
}

func copyInt(n *int) *int {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}
