package embedding

import (
	"context"

	"github.com/kailas-cloud/vecgate/internal/domain"
)

// Disabled is the embedder installed when vectorization is switched off.
// Every call fails with domain.ErrEmbeddingDisabled; the search operation
// turns that into an empty result set.
type Disabled struct{}

// NewDisabled creates the degraded-mode embedder.
func NewDisabled() Disabled { return Disabled{} }

// Embed always reports that embedding is switched off.
func (Disabled) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, domain.ErrEmbeddingDisabled
}
