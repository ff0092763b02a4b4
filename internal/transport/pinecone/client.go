// Package pinecone is a minimal REST client for the Pinecone-compatible
// data plane. Only the read path is implemented: similarity query and
// fetch by id.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	retry "github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecgate/internal/domain"
)

// Client talks to one index's data plane.
type Client struct {
	host      string
	apiKey    string
	namespace string
	retryMax  int
	client    *http.Client
	logger    *zap.Logger
}

// Config holds the data-plane connection settings.
type Config struct {
	Host           string // base URL, e.g. https://docs-abc.svc.pinecone.io
	APIKey         string
	Namespace      string
	RequestTimeout time.Duration
	RetryMax       int // extra attempts after the first, 0 disables retries
	Logger         *zap.Logger
}

// NewClient creates a data-plane client.
func NewClient(cfg Config) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	retryMax := cfg.RetryMax
	if retryMax < 0 {
		retryMax = 0
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		host:      strings.TrimRight(cfg.Host, "/"),
		apiKey:    cfg.APIKey,
		namespace: cfg.Namespace,
		retryMax:  retryMax,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

type queryRequest struct {
	Namespace       string    `json:"namespace,omitempty"`
	TopK            int       `json:"topK"`
	Vector          []float32 `json:"vector"`
	IncludeMetadata bool      `json:"includeMetadata"`
	IncludeValues   bool      `json:"includeValues"`
}

type queryResponse struct {
	Matches []struct {
		ID       string          `json:"id"`
		Score    float64         `json:"score"`
		Metadata domain.Metadata `json:"metadata"`
	} `json:"matches"`
}

type fetchResponse struct {
	Vectors map[string]struct {
		ID       string          `json:"id"`
		Values   []float32       `json:"values"`
		Metadata domain.Metadata `json:"metadata"`
	} `json:"vectors"`
}

// Query runs a similarity search and returns matches in store order with
// raw scores. Vector values are never requested.
func (c *Client) Query(ctx context.Context, vector []float32, topK int) ([]domain.Hit, error) {
	reqBody := queryRequest{
		Namespace:       c.namespace,
		TopK:            topK,
		Vector:          vector,
		IncludeMetadata: true,
		IncludeValues:   false,
	}

	var resp queryResponse
	if err := c.postJSON(ctx, c.host+"/query", reqBody, &resp); err != nil {
		return nil, fmt.Errorf("store query error: %s: %w", err.Error(), domain.ErrStoreUnavailable)
	}

	hits := make([]domain.Hit, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		hits = append(hits, domain.Hit{ID: m.ID, Score: m.Score, Metadata: m.Metadata})
	}
	return hits, nil
}

// Fetch retrieves stored records by id, keyed by record id. Unknown ids are
// simply absent from the result.
func (c *Client) Fetch(ctx context.Context, ids []string) (map[string]domain.StoredRecord, error) {
	q := url.Values{}
	for _, id := range ids {
		q.Add("ids", id)
	}
	if c.namespace != "" {
		q.Set("namespace", c.namespace)
	}

	var resp fetchResponse
	if err := c.getJSON(ctx, c.host+"/vectors/fetch?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("store fetch error: %s: %w", err.Error(), domain.ErrStoreUnavailable)
	}

	records := make(map[string]domain.StoredRecord, len(resp.Vectors))
	for id, v := range resp.Vectors {
		rid := v.ID
		if rid == "" {
			rid = id
		}
		records[rid] = domain.StoredRecord{ID: rid, Metadata: v.Metadata, Vector: v.Values}
	}
	return records, nil
}

func (c *Client) postJSON(ctx context.Context, rawURL string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, rawURL, data, out)
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	return c.do(ctx, http.MethodGet, rawURL, nil, out)
}

// do runs one data-plane call with a bounded fibonacci retry budget.
// Transport failures and 5xx/429 responses retry; other statuses and
// malformed payloads fail immediately.
func (c *Client) do(ctx context.Context, method, rawURL string, body []byte, out any) error {
	b := retry.NewFibonacci(200 * time.Millisecond)
	return retry.Do(ctx, retry.WithMaxRetries(uint64(c.retryMax), b), func(ctx context.Context) error {
		err := c.once(ctx, method, rawURL, body, out)
		if err == nil {
			return nil
		}
		if isRetryable(err) {
			c.logger.Warn("store call failed, will retry",
				zap.String("method", method),
				zap.Error(err),
			)
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *Client) once(ctx context.Context, method, rawURL string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &apiError{status: resp.StatusCode, body: strings.TrimSpace(string(snippet))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// apiError is a non-2xx data-plane response.
type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("status %d: %s", e.status, e.body)
}

func isRetryable(err error) bool {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.status >= 500 || apiErr.status == http.StatusTooManyRequests
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
