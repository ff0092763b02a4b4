package embedding

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecgate/internal/config"
	"github.com/kailas-cloud/vecgate/internal/db"
	"github.com/kailas-cloud/vecgate/internal/domain"
	"github.com/kailas-cloud/vecgate/internal/metrics"
	"github.com/kailas-cloud/vecgate/internal/repository/embcache"
	"github.com/kailas-cloud/vecgate/internal/transport/openai"
)

// Build assembles the embedder chain from configuration:
// provider adapter → cache decorator (when kv is attached) → bounded retry.
// With embedding disabled it returns the Disabled embedder.
func Build(cfg config.Config, kv db.Store, logger *zap.Logger) (domain.Embedder, error) {
	if !cfg.EmbeddingEnabled() {
		logger.Info("Embedding disabled, search runs degraded")
		return NewDisabled(), nil
	}

	if cfg.Embedding.Provider != "openai" {
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}

	var emb domain.Embedder = openai.NewEmbedder(&openai.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})

	if kv != nil {
		emb = embcache.New(emb, kv, embcache.Config{
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			TTL:        time.Duration(cfg.Cache.TTLSec) * time.Second,
			CacheTotal: metrics.EmbeddingCacheTotal,
			Logger:     logger,
		})
	}

	return NewBounded(
		emb,
		time.Duration(cfg.Store.RequestTimeoutSec)*time.Second,
		cfg.Store.RetryMax,
		logger,
	), nil
}
