// Package search implements the ranked preview operation: one query text in,
// a page of previews out, ordered the way the index ranked them.
package search

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecgate/internal/domain"
	"github.com/kailas-cloud/vecgate/internal/normalize"
)

// TopK bounds. Out-of-range requests are clamped to the nearest bound,
// not rejected.
const (
	MinTopK = 1
	MaxTopK = 25
)

const fallbackTopK = 8

// Service handles similarity search over the hosted index.
type Service struct {
	repo        Repository
	embed       Embedder
	norm        *normalize.Normalizer
	defaultTopK int
	logger      *zap.Logger
}

// New creates a search service. defaultTopK applies when the caller omits
// the result count.
func New(repo Repository, embed Embedder, norm *normalize.Normalizer, defaultTopK int, logger *zap.Logger) *Service {
	if defaultTopK <= 0 {
		defaultTopK = fallbackTopK
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:        repo,
		embed:       embed,
		norm:        norm,
		defaultTopK: defaultTopK,
		logger:      logger,
	}
}

// Search returns ranked previews for the query, preserving index order.
// It never fails: a blank query or a vectorization failure produces an
// empty page, and store failures are absorbed by the repository.
func (s *Service) Search(ctx context.Context, query string, topK int) []domain.SearchResult {
	if topK == 0 {
		topK = s.defaultTopK
	}
	topK = clampTopK(topK)

	cleaned := normalize.CleanText(query)
	if cleaned == "" {
		return []domain.SearchResult{}
	}

	embRes, err := s.embed.Embed(ctx, cleaned)
	if err != nil {
		s.logger.Warn("Query vectorization failed", zap.Error(err))
		return []domain.SearchResult{}
	}

	domain.UsageFromContext(ctx).AddTokens(embRes.TotalTokens)

	hits := s.repo.QuerySimilar(ctx, embRes.Embedding, topK)

	results := make([]domain.SearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, s.norm.Preview(hit))
	}
	return results
}

func clampTopK(topK int) int {
	switch {
	case topK < MinTopK:
		return MinTopK
	case topK > MaxTopK:
		return MaxTopK
	default:
		return topK
	}
}
