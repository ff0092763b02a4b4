package search

import (
	"context"

	"github.com/kailas-cloud/vecgate/internal/domain"
)

// Repository defines the retrieval contract for search operations.
// Implementations absorb store failures and answer with empty results.
type Repository interface {
	QuerySimilar(ctx context.Context, vector []float32, topK int) []domain.Hit
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
