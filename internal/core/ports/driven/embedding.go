// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// EmbeddingService turns chunk text and queries into vectors. It is optional:
// with no embedder the catalog is searched by keyword only.
//
// Vectors from one service must all have Dimensions() entries, and a
// VectorIndex only ever holds vectors from a single model.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	Dimensions() int
	ModelName() string

	// Ping checks reachability without embedding anything.
	Ping(ctx context.Context) error
	Close() error
}
