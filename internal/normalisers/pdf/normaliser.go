// Package pdf normalises PDF course documents.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/normalisers/coursedoc"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// ErrNoText is returned when a PDF yields no extractable text.
var ErrNoText = errors.New("pdf contains no extractable text")

// TextExtractor returns the plain text of a PDF.
type TextExtractor func(content []byte) (string, error)

// Normaliser handles PDF course documents.
type Normaliser struct {
	extract TextExtractor
}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{extract: ExtractText}
}

// NewWithExtractor creates a PDF normaliser with a custom text extractor.
func NewWithExtractor(extract TextExtractor) *Normaliser {
	return &Normaliser{extract: extract}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser
}

// Normalise extracts the text layer and parses it as a course document.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.CourseDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text, err := n.extract(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoText
	}

	doc := coursedoc.Parse(text)
	doc.URI = raw.URI
	return doc, nil
}

// ExtractText reads every page's text one row per line, so that lesson
// markers stay at the start of a line.
func ExtractText(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var buf strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i, err)
		}
		for _, row := range rows {
			for _, word := range row.Content {
				buf.WriteString(word.S)
			}
			buf.WriteByte('\n')
		}
	}

	return buf.String(), nil
}
