package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

type stubNormaliser struct {
	mimes    []string
	priority int
}

func (s *stubNormaliser) SupportedMIMETypes() []string { return s.mimes }
func (s *stubNormaliser) Priority() int                { return s.priority }
func (s *stubNormaliser) Normalise(_ context.Context, _ *domain.RawDocument) (*domain.CourseDocument, error) {
	return &domain.CourseDocument{}, nil
}

func TestRegistry_PicksHighestPriority(t *testing.T) {
	r := NewRegistry()
	low := &stubNormaliser{mimes: []string{"text/plain"}, priority: 5}
	high := &stubNormaliser{mimes: []string{"text/plain", "text/markdown"}, priority: 50}
	r.Register(low)
	r.Register(high)

	n, err := r.Get("text/plain")
	require.NoError(t, err)
	assert.Same(t, high, n)

	n, err = r.Get("text/markdown")
	require.NoError(t, err)
	assert.Same(t, high, n)
}

func TestRegistry_Unknown(t *testing.T) {
	_, err := NewRegistry().Get("application/zip")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestNewDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()
	for _, mime := range []string{
		"text/plain",
		"text/markdown",
		"text/html",
		"application/pdf",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	} {
		_, err := r.Get(mime)
		assert.NoError(t, err, mime)
	}
	assert.Contains(t, r.MIMETypes(), "application/pdf")
}

func TestNewDefaultRegistry_ParsesPlainText(t *testing.T) {
	n, err := NewDefaultRegistry().Get("text/plain")
	require.NoError(t, err)

	doc, err := n.Normalise(context.Background(), &domain.RawDocument{
		URI:      "/courses/a.txt",
		MIMEType: "text/plain",
		Content:  []byte("Course Title: A\nLesson 1: One\nBody"),
	})
	require.NoError(t, err)
	assert.Equal(t, "A", doc.Course.Title)
	assert.Equal(t, "/courses/a.txt", doc.URI)
}
