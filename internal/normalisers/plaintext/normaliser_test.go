package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

func TestNormaliser_Metadata(t *testing.T) {
	n := New()
	assert.Equal(t, []string{"text/plain"}, n.SupportedMIMETypes())
	assert.Equal(t, 5, n.Priority())
}

func TestNormaliser_NilInput(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormaliser_Normalise(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "/docs/course1_script.txt",
		MIMEType: "text/plain",
		Content:  []byte("Course Title: Prompt Compression\nCourse Instructor: Ada\n\nLesson 1: Why compress\nLong prompts cost money."),
	}

	doc, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, "Prompt Compression", doc.Course.Title)
	assert.Equal(t, "Ada", doc.Course.Instructor)
	assert.Equal(t, "/docs/course1_script.txt", doc.URI)
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "Long prompts cost money.", doc.Sections[0].Text)
}

func TestNormaliser_EmptyContent(t *testing.T) {
	doc, err := New().Normalise(context.Background(), &domain.RawDocument{URI: "empty.txt"})
	require.NoError(t, err)
	assert.Empty(t, doc.Course.Title)
	assert.Empty(t, doc.Sections)
}

func TestDecode(t *testing.T) {
	utf16le := []byte{0xFF, 0xFE, 'L', 0, 'e', 0, 's', 0, 's', 0, 'o', 0, 'n', 0}

	tests := []struct {
		name    string
		content []byte
		want    string
	}{
		{"plain utf-8", []byte("Lesson 0: Intro"), "Lesson 0: Intro"},
		{"utf-8 bom stripped", append([]byte{0xEF, 0xBB, 0xBF}, "Course Title: X"...), "Course Title: X"},
		{"utf-16 little endian", utf16le, "Lesson"},
		{"invalid bytes replaced", []byte{'a', 0xFF, 'b'}, "a\uFFFDb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decode(tt.content)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormaliser_BOMPrefixedTitle(t *testing.T) {
	raw := &domain.RawDocument{
		URI:     "course2_script.txt",
		Content: append([]byte{0xEF, 0xBB, 0xBF}, "Course Title: Retrieval Basics\n"...),
	}

	doc, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "Retrieval Basics", doc.Course.Title)
}
