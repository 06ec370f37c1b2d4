package pdf

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
)

func TestSupportedMIMETypes(t *testing.T) {
	n := New()
	assert.Equal(t, []string{"application/pdf"}, n.SupportedMIMETypes())
	assert.Equal(t, 50, n.Priority())
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_InvalidPDF(t *testing.T) {
	_, err := New().Normalise(context.Background(), &domain.RawDocument{Content: []byte("not a pdf")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_WithExtractor(t *testing.T) {
	n := NewWithExtractor(func(_ []byte) (string, error) {
		return "Course Title: PDF Course\nLesson 1: Pages\nText from page one.\n", nil
	})

	doc, err := n.Normalise(context.Background(), &domain.RawDocument{URI: "c.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "PDF Course", doc.Course.Title)
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "Text from page one.", doc.Sections[0].Text)
	assert.Equal(t, "c.pdf", doc.URI)
}

func TestNormalise_NoText(t *testing.T) {
	n := NewWithExtractor(func(_ []byte) (string, error) { return "  \n", nil })
	_, err := n.Normalise(context.Background(), &domain.RawDocument{})
	assert.ErrorIs(t, err, ErrNoText)
}

func TestNormalise_ExtractorError(t *testing.T) {
	n := NewWithExtractor(func(_ []byte) (string, error) { return "", errors.New("encrypted") })
	_, err := n.Normalise(context.Background(), &domain.RawDocument{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "encrypted")
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = New()
}
