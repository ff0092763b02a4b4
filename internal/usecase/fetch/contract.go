package fetch

import (
	"context"

	"github.com/kailas-cloud/vecgate/internal/domain"
)

// Repository defines the retrieval contract for fetch operations.
// Implementations absorb store failures and answer with an empty map.
type Repository interface {
	GetByIDs(ctx context.Context, ids []string) map[string]domain.StoredRecord
}
