package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
)

func intPtr(n int) *int { return &n }

func seeded(t *testing.T) *VectorIndex {
	t.Helper()
	ctx := context.Background()
	v := NewVectorIndex()
	require.NoError(t, v.EnsureCollection(ctx, driven.CollectionContent, 2))
	require.NoError(t, v.Upsert(ctx, driven.CollectionContent, []driven.VectorRecord{
		{ID: "a", Vector: []float32{1, 0}, Payload: driven.VectorPayload{CourseTitle: "Go", LessonNumber: intPtr(1)}},
		{ID: "b", Vector: []float32{0, 1}, Payload: driven.VectorPayload{CourseTitle: "Go", LessonNumber: intPtr(2)}},
		{ID: "c", Vector: []float32{1, 1}, Payload: driven.VectorPayload{CourseTitle: "Rust"}},
		{ID: "d", Vector: []float32{2, 0}, Payload: driven.VectorPayload{CourseTitle: "Rust", LessonNumber: intPtr(1)}},
	}))
	return v
}

func ids(hits []driven.VectorHit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.ID
	}
	return out
}

func TestSearch_RanksByCosineWithInsertionOrderTies(t *testing.T) {
	v := seeded(t)

	hits, err := v.Search(context.Background(), driven.CollectionContent, []float32{1, 0}, 10, driven.VectorFilter{})
	require.NoError(t, err)

	// a and d are both parallel to the query; a was inserted first.
	assert.Equal(t, []string{"a", "d", "c", "b"}, ids(hits))
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-9)
	assert.InDelta(t, 0.7071, hits[2].Similarity, 1e-4)
}

func TestSearch_Filters(t *testing.T) {
	v := seeded(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter driven.VectorFilter
		want   []string
	}{
		{"course", driven.VectorFilter{CourseTitle: "Go"}, []string{"a", "b"}},
		{"lesson across courses", driven.VectorFilter{LessonNumber: intPtr(1)}, []string{"a", "d"}},
		{"course and lesson", driven.VectorFilter{CourseTitle: "Rust", LessonNumber: intPtr(1)}, []string{"d"}},
		{"no match", driven.VectorFilter{CourseTitle: "Haskell"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits, err := v.Search(ctx, driven.CollectionContent, []float32{1, 0}, 10, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(hits))
		})
	}
}

func TestSearch_Limit(t *testing.T) {
	v := seeded(t)
	hits, err := v.Search(context.Background(), driven.CollectionContent, []float32{0, 1}, 1, driven.VectorFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(hits))
}

func TestSearch_UnknownCollectionAndBadQuery(t *testing.T) {
	v := seeded(t)
	ctx := context.Background()

	hits, err := v.Search(ctx, "missing", []float32{1, 0}, 3, driven.VectorFilter{})
	require.NoError(t, err)
	assert.Empty(t, hits)

	_, err = v.Search(ctx, driven.CollectionContent, []float32{1, 0, 0}, 3, driven.VectorFilter{})
	assert.Error(t, err)
}

func TestUpsert_ReplaceKeepsPosition(t *testing.T) {
	v := seeded(t)
	ctx := context.Background()

	// Replace a with a vector equal to d; a keeps its earlier position.
	require.NoError(t, v.Upsert(ctx, driven.CollectionContent, []driven.VectorRecord{
		{ID: "a", Vector: []float32{3, 0}, Payload: driven.VectorPayload{CourseTitle: "Go"}},
	}))
	hits, err := v.Search(ctx, driven.CollectionContent, []float32{1, 0}, 2, driven.VectorFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "d"}, ids(hits))
	assert.Equal(t, 4, v.Count(driven.CollectionContent))
}

func TestUpsert_Errors(t *testing.T) {
	v := NewVectorIndex()
	ctx := context.Background()

	err := v.Upsert(ctx, "missing", []driven.VectorRecord{{ID: "x", Vector: []float32{1}}})
	assert.Error(t, err)

	require.NoError(t, v.EnsureCollection(ctx, "c", 2))
	err = v.Upsert(ctx, "c", []driven.VectorRecord{{ID: "x", Vector: []float32{1}}})
	assert.Error(t, err)
	assert.Error(t, v.EnsureCollection(ctx, "c", 3))
}

func TestUpsert_CopiesVector(t *testing.T) {
	v := NewVectorIndex()
	ctx := context.Background()
	require.NoError(t, v.EnsureCollection(ctx, "c", 2))

	vec := []float32{1, 0}
	require.NoError(t, v.Upsert(ctx, "c", []driven.VectorRecord{{ID: "x", Vector: vec}}))
	vec[0], vec[1] = 0, 1

	hits, err := v.Search(ctx, "c", []float32{1, 0}, 1, driven.VectorFilter{})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-9)
}

func TestDelete(t *testing.T) {
	v := seeded(t)
	ctx := context.Background()

	require.NoError(t, v.Delete(ctx, driven.CollectionContent, driven.VectorFilter{CourseTitle: "Rust"}))
	assert.Equal(t, 2, v.Count(driven.CollectionContent))
	require.NoError(t, v.Delete(ctx, "missing", driven.VectorFilter{}))

	require.NoError(t, v.DeleteCollection(ctx, driven.CollectionContent))
	assert.Equal(t, 0, v.Count(driven.CollectionContent))
	require.NoError(t, v.DeleteCollection(ctx, driven.CollectionContent))
	assert.NoError(t, v.Close())
}

func TestCosine_ZeroVector(t *testing.T) {
	assert.Equal(t, 0.0, cosine([]float32{0, 0}, []float32{1, 0}, 0, 1))
}
