package tools

import (
	"context"

	"github.com/kailas-cloud/vecgate/internal/domain"
)

// Searcher runs the ranked preview operation.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) []domain.SearchResult
}

// Fetcher runs the batch document lookup.
type Fetcher interface {
	Fetch(ctx context.Context, objectIDs []string) []domain.FetchObject
}
