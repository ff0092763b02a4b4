package vecgate

import (
	"time"

	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	host      string
	apiKey    string
	namespace string

	requestTimeout time.Duration
	retryMax       int

	embedder   Embedder
	openAIKey  string
	baseURL    string
	model      string
	dimensions int

	cacheAddr     string
	cachePassword string
	cacheTTL      time.Duration

	textKeys        []string
	maxContentChars int
	snippetChars    int
	defaultTopK     int

	logger *zap.Logger
}

// WithPinecone points the client at an index data plane.
// Host is the index's data-plane base URL, e.g. https://docs-abc.svc.pinecone.io.
func WithPinecone(host, apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.host = host
		c.apiKey = apiKey
	})
}

// WithNamespace scopes all reads to a namespace. Default: "__default__".
func WithNamespace(namespace string) Option {
	return optionFunc(func(c *clientConfig) {
		c.namespace = namespace
	})
}

// WithOpenAI configures query vectorization through the OpenAI embeddings
// API. Without an embedding provider, Search returns empty results.
func WithOpenAI(apiKey, model string, dimensions int) Option {
	return optionFunc(func(c *clientConfig) {
		c.openAIKey = apiKey
		c.model = model
		c.dimensions = dimensions
	})
}

// WithBaseURL points the embedding client at an OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = url
	})
}

// WithEmbedder sets a custom embedding provider. Takes precedence over
// WithOpenAI.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithEmbeddingCache adds a Redis-backed embedding cache. Repeated queries
// skip the provider and cost zero tokens.
func WithEmbeddingCache(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheAddr = addr
		c.cachePassword = password
	})
}

// WithCacheTTL sets the embedding cache entry lifetime. Default: 24h.
func WithCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithRequestTimeout bounds each index and embedding request. Default: 15s.
func WithRequestTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.requestTimeout = d
	})
}

// WithRetryMax sets extra attempts after the first for index and embedding
// requests. Default: 0 (no retries).
func WithRetryMax(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.retryMax = n
	})
}

// WithTextKeys sets the metadata keys probed, in order, for record text.
// Default: text, chunk, content.
func WithTextKeys(keys ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.textKeys = keys
	})
}

// WithContentBounds sets the fetched-content cap and the snippet length,
// both in characters. Defaults: 50000 and 200.
func WithContentBounds(maxContentChars, snippetChars int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxContentChars = maxContentChars
		c.snippetChars = snippetChars
	})
}

// WithDefaultTopK sets the result count used when Search is called with
// topK 0. Default: 8.
func WithDefaultTopK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultTopK = k
	})
}

// WithLogger enables structured logging for client operations.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}
