// Package index adapts the hosted vector index to the retrieval use cases.
// Store failures are absorbed here: callers get empty results and a Warn in
// the log, so a degraded index never turns a read into a 500.
package index

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecgate/internal/domain"
	"github.com/kailas-cloud/vecgate/internal/metrics"
)

// store is the consumer interface for the hosted index (ISP).
type store interface {
	Query(ctx context.Context, vector []float32, topK int) ([]domain.Hit, error)
	Fetch(ctx context.Context, ids []string) (map[string]domain.StoredRecord, error)
}

// Repo implements the retrieval repository over a hosted vector index.
type Repo struct {
	store  store
	logger *zap.Logger
}

// New creates an index repository.
func New(s store, logger *zap.Logger) *Repo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{store: s, logger: logger}
}

// QuerySimilar returns up to topK nearest records for vector, preserving
// store order. Scores are clamped into [0, 1]: dot-product indexes report
// values outside the unit range. On store failure it returns an empty slice.
func (r *Repo) QuerySimilar(ctx context.Context, vector []float32, topK int) []domain.Hit {
	start := time.Now()

	hits, err := r.store.Query(ctx, vector, topK)
	r.observe("query", start, len(hits), err)
	if err != nil {
		r.logger.Warn("Vector store query failed",
			zap.Int("top_k", topK),
			zap.Error(err))
		return []domain.Hit{}
	}

	for i := range hits {
		hits[i].Score = clampScore(hits[i].Score)
	}
	return hits
}

// GetByIDs returns stored records keyed by id. IDs the index does not know
// are simply absent from the map. On store failure it returns an empty map.
func (r *Repo) GetByIDs(ctx context.Context, ids []string) map[string]domain.StoredRecord {
	start := time.Now()

	records, err := r.store.Fetch(ctx, ids)
	r.observe("fetch", start, len(records), err)
	if err != nil {
		r.logger.Warn("Vector store fetch failed",
			zap.Int("ids", len(ids)),
			zap.Error(err))
		return map[string]domain.StoredRecord{}
	}
	if records == nil {
		records = map[string]domain.StoredRecord{}
	}
	return records
}

func (r *Repo) observe(op string, start time.Time, matches int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.StoreRequestsTotal.WithLabelValues(op, status).Inc()
	metrics.StoreRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err == nil {
		metrics.StoreMatchesReturned.WithLabelValues(op).Observe(float64(matches))
	}
}

func clampScore(s float64) float64 {
	switch {
	case s < 0:
		return 0
	case s > 1:
		return 1
	default:
		return s
	}
}
