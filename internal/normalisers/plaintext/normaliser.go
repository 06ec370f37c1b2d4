// Package plaintext normalises course scripts saved as text files.
package plaintext

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/normalisers/coursedoc"
)

var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles text/plain and is the fallback for unknown text types.
type Normaliser struct{}

func New() *Normaliser {
	return &Normaliser{}
}

func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/plain"}
}

// Priority is the lowest of the built-in normalisers.
func (n *Normaliser) Priority() int {
	return 5
}

// Normalise decodes the file and parses it as a course document. A missing
// title is left for the ingest service to derive from the file name.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.CourseDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text, err := decode(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, raw.URI, err)
	}

	doc := coursedoc.Parse(text)
	doc.URI = raw.URI
	return doc, nil
}

// decode honours a UTF-8 or UTF-16 byte order mark and otherwise reads the
// bytes as UTF-8. Invalid sequences become U+FFFD.
func decode(content []byte) (string, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), content)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(out), "\uFFFD"), nil
}
