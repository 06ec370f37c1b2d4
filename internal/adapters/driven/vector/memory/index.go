// Package memory provides an in-process vector index with exact cosine search.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is a brute-force k-NN index. Suitable for catalogs of a few
// thousand chunks; larger catalogs should use the qdrant backend.
type VectorIndex struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

type collection struct {
	dimensions int
	seq        int
	records    map[string]*entry
}

type entry struct {
	record driven.VectorRecord
	norm   float64
	seq    int
}

// NewVectorIndex creates an empty index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{collections: make(map[string]*collection)}
}

// EnsureCollection creates the collection if it does not exist.
func (v *VectorIndex) EnsureCollection(_ context.Context, name string, dimensions int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if c, ok := v.collections[name]; ok {
		if c.dimensions != dimensions {
			return fmt.Errorf("collection %s has %d dimensions, requested %d", name, c.dimensions, dimensions)
		}
		return nil
	}
	v.collections[name] = &collection{dimensions: dimensions, records: make(map[string]*entry)}
	return nil
}

// Upsert inserts or replaces records. A replaced record keeps its insertion position.
func (v *VectorIndex) Upsert(_ context.Context, name string, records []driven.VectorRecord) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	c, ok := v.collections[name]
	if !ok {
		return fmt.Errorf("collection %s does not exist", name)
	}
	for _, r := range records {
		if len(r.Vector) != c.dimensions {
			return fmt.Errorf("record %s has %d dimensions, collection %s expects %d",
				r.ID, len(r.Vector), name, c.dimensions)
		}
		vec := make([]float32, len(r.Vector))
		copy(vec, r.Vector)
		r.Vector = vec

		seq := c.seq
		if existing, ok := c.records[r.ID]; ok {
			seq = existing.seq
		} else {
			c.seq++
		}
		c.records[r.ID] = &entry{record: r, norm: norm(vec), seq: seq}
	}
	return nil
}

// Search returns the k most similar records matching filter.
func (v *VectorIndex) Search(
	_ context.Context, name string, query []float32, k int, filter driven.VectorFilter,
) ([]driven.VectorHit, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	c, ok := v.collections[name]
	if !ok || k <= 0 {
		return nil, nil
	}
	if len(query) != c.dimensions {
		return nil, fmt.Errorf("query has %d dimensions, collection %s expects %d", len(query), name, c.dimensions)
	}

	qnorm := norm(query)
	type scored struct {
		hit driven.VectorHit
		seq int
	}
	candidates := make([]scored, 0, len(c.records))
	for _, e := range c.records {
		if !filter.Matches(e.record.Payload) {
			continue
		}
		candidates = append(candidates, scored{
			hit: driven.VectorHit{
				ID:         e.record.ID,
				Similarity: cosine(query, e.record.Vector, qnorm, e.norm),
				Payload:    e.record.Payload,
			},
			seq: e.seq,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].hit.Similarity != candidates[j].hit.Similarity {
			return candidates[i].hit.Similarity > candidates[j].hit.Similarity
		}
		return candidates[i].seq < candidates[j].seq
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}
	hits := make([]driven.VectorHit, len(candidates))
	for i, s := range candidates {
		hits[i] = s.hit
	}
	return hits, nil
}

// Delete removes every record matching filter.
func (v *VectorIndex) Delete(_ context.Context, name string, filter driven.VectorFilter) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	c, ok := v.collections[name]
	if !ok {
		return nil
	}
	for id, e := range c.records {
		if filter.Matches(e.record.Payload) {
			delete(c.records, id)
		}
	}
	return nil
}

// DeleteCollection drops a collection. Missing collections are ignored.
func (v *VectorIndex) DeleteCollection(_ context.Context, name string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.collections, name)
	return nil
}

// Count returns the number of records in a collection.
func (v *VectorIndex) Count(name string) int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if c, ok := v.collections[name]; ok {
		return len(c.records)
	}
	return 0
}

// Close releases resources.
func (v *VectorIndex) Close() error {
	return nil
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosine returns 0 when either vector has zero length.
func cosine(a, b []float32, na, nb float64) float64 {
	if na == 0 || nb == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (na * nb)
}
