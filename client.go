package vecgate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecgate/internal/db"
	dbRedis "github.com/kailas-cloud/vecgate/internal/db/redis"
	"github.com/kailas-cloud/vecgate/internal/domain"
	"github.com/kailas-cloud/vecgate/internal/normalize"
	"github.com/kailas-cloud/vecgate/internal/repository/embcache"
	"github.com/kailas-cloud/vecgate/internal/repository/index"
	openaiEmb "github.com/kailas-cloud/vecgate/internal/transport/openai"
	"github.com/kailas-cloud/vecgate/internal/transport/pinecone"
	embeddinguc "github.com/kailas-cloud/vecgate/internal/usecase/embedding"
	fetchuc "github.com/kailas-cloud/vecgate/internal/usecase/fetch"
	searchuc "github.com/kailas-cloud/vecgate/internal/usecase/search"
	toolsuc "github.com/kailas-cloud/vecgate/internal/usecase/tools"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the vecgate SDK entry point.
type Client struct {
	kv         db.Store
	searchSvc  *searchuc.Service
	fetchSvc   *fetchuc.Service
	dispatcher *toolsuc.Dispatcher
}

// New creates a vecgate Client over an index data plane. The embedding
// cache, when configured, is connected eagerly; everything else talks to
// its backend lazily on first call.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		namespace:       "__default__",
		requestTimeout:  15 * time.Second,
		model:           "text-embedding-3-large",
		dimensions:      3072,
		cacheTTL:        24 * time.Hour,
		textKeys:        []string{"text", "chunk", "content"},
		maxContentChars: 50000,
		snippetChars:    200,
		defaultTopK:     8,
		logger:          zap.NewNop(),
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.host == "" || cfg.apiKey == "" {
		return nil, errors.New("vecgate: index data plane required (use WithPinecone)")
	}

	var kv db.Store
	if cfg.cacheAddr != "" {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    []string{cfg.cacheAddr},
			Password: cfg.cachePassword,
		})
		if err != nil {
			return nil, fmt.Errorf("vecgate: create cache store: %w", err)
		}
		if err := s.WaitForReady(context.Background(), defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("vecgate: cache not ready: %w", err)
		}
		kv = s
	}

	return wireClient(kv, cfg), nil
}

func wireClient(kv db.Store, cfg *clientConfig) *Client {
	store := pinecone.NewClient(pinecone.Config{
		Host:           cfg.host,
		APIKey:         cfg.apiKey,
		Namespace:      cfg.namespace,
		RequestTimeout: cfg.requestTimeout,
		RetryMax:       cfg.retryMax,
		Logger:         cfg.logger,
	})
	repo := index.New(store, cfg.logger)

	norm := normalize.New(cfg.textKeys, cfg.maxContentChars, cfg.snippetChars)
	searchSvc := searchuc.New(repo, buildEmbedder(kv, cfg), norm, cfg.defaultTopK, cfg.logger)
	fetchSvc := fetchuc.New(repo, norm)

	return &Client{
		kv:         kv,
		searchSvc:  searchSvc,
		fetchSvc:   fetchSvc,
		dispatcher: toolsuc.New(searchSvc, fetchSvc),
	}
}

// buildEmbedder assembles the decorator chain: provider -> cached -> bounded.
func buildEmbedder(kv db.Store, cfg *clientConfig) domain.Embedder {
	var base domain.Embedder
	switch {
	case cfg.embedder != nil:
		base = &embedderAdapter{inner: cfg.embedder}
	case cfg.openAIKey != "":
		base = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.openAIKey,
			BaseURL:    cfg.baseURL,
			Model:      cfg.model,
			Dimensions: cfg.dimensions,
			Provider:   "openai",
			Logger:     cfg.logger,
		})
	default:
		return embeddinguc.NewDisabled()
	}

	if kv != nil {
		base = embcache.New(base, kv, embcache.Config{
			Model:      cfg.model,
			Dimensions: cfg.dimensions,
			TTL:        cfg.cacheTTL,
			Logger:     cfg.logger,
		})
	}

	return embeddinguc.NewBounded(base, cfg.requestTimeout, cfg.retryMax, cfg.logger)
}

// Close releases the cache connection if one was configured.
func (c *Client) Close() {
	if c.kv != nil {
		c.kv.Close()
	}
}

// Search returns ranked previews for a text query. topK 0 uses the
// configured default; out-of-range values clamp to the nearest bound.
// Upstream failures degrade to an empty slice.
func (c *Client) Search(ctx context.Context, query string, topK int) []SearchResult {
	return fromSearchResults(c.searchSvc.Search(ctx, query, topK))
}

// Fetch returns full contents for the given ids in input order. Unknown
// ids are skipped, duplicates collapse to the first occurrence.
func (c *Client) Fetch(ctx context.Context, objectIDs []string) []FetchObject {
	return fromFetchObjects(c.fetchSvc.Fetch(ctx, objectIDs))
}

// Call routes a raw tool call through the same dispatcher the gateway
// uses and returns the response envelope as JSON. Unknown tools fail with
// ErrUnknownTool, malformed arguments with ErrInvalidArguments.
func (c *Client) Call(ctx context.Context, tool string, arguments json.RawMessage) (json.RawMessage, error) {
	result, err := c.dispatcher.Dispatch(ctx, domain.ToolCall{Tool: tool, Arguments: arguments})
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", tool, err)
	}
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", tool, err)
	}
	return data, nil
}

// Tools lists the callable tool specs.
func (c *Client) Tools() []ToolSpec {
	specs := c.dispatcher.Manifest()
	out := make([]ToolSpec, len(specs))
	for i, s := range specs {
		out[i] = ToolSpec{
			Name:        s.Name,
			Description: s.Description,
			InputSchema: s.InputSchema,
		}
	}
	return out
}

// embedderAdapter wraps the public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:   r.Vector,
		TotalTokens: r.TotalTokens,
	}, nil
}
