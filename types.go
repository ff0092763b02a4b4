package vecgate

import (
	"context"

	"github.com/kailas-cloud/vecgate/internal/domain"
)

// SearchResult is a ranked preview of one matching record. It never
// carries full content; follow up with Fetch for that.
type SearchResult struct {
	ID      string
	Score   float64
	Title   string
	Snippet string
	Source  string
}

// FetchObject is the full stored content of one record plus its metadata.
type FetchObject struct {
	ID        string
	Content   string
	Metadata  map[string]any
	Truncated bool
}

// ToolSpec describes one callable tool.
type ToolSpec struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// Embedder vectorizes query text. Implementations must be safe for
// concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) (Embedding, error)
}

// Embedding carries the vector and the provider's token accounting.
type Embedding struct {
	Vector      []float32
	TotalTokens int
}

func fromSearchResults(results []domain.SearchResult) []SearchResult {
	out := make([]SearchResult, len(results))
	for i, r := range results {
		out[i] = SearchResult{
			ID:      r.ID,
			Score:   r.Score,
			Title:   r.Title,
			Snippet: r.Snippet,
			Source:  r.Source,
		}
	}
	return out
}

func fromFetchObjects(objects []domain.FetchObject) []FetchObject {
	out := make([]FetchObject, len(objects))
	for i, o := range objects {
		out[i] = FetchObject{
			ID:        o.ID,
			Content:   o.Content,
			Metadata:  o.Metadata,
			Truncated: o.Truncated,
		}
	}
	return out
}
