package embedding

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrEmptyResult = errors.New("embedding provider returned no vectors")
	ErrCount       = errors.New("embedding provider returned an unexpected number of vectors")
)

// Embedder turns texts into vectors. Implementations must be deterministic for a fixed model and
// safe for concurrent use, since one Embedder serves both the startup corpus and every query.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Model names the embedding model, documents and queries must agree on it.
	Model() string
}

// EmbedOne embeds a single text.
func EmbedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, ErrEmptyResult
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: expected 1, got %d", ErrCount, len(vectors))
	}
	return vectors[0], nil
}
