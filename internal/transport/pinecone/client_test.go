package pinecone

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecgate/internal/domain"
)

func newTestClient(t *testing.T, handler http.Handler, retryMax int) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	c := NewClient(Config{
		Host:      server.URL,
		APIKey:    "pc-test-key",
		Namespace: "ns1",
		RetryMax:  retryMax,
		Logger:    zap.NewNop(),
	})
	return c, server
}

func TestQuery_Success(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/query" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Api-Key") != "pc-test-key" {
			t.Errorf("unexpected api key header: %s", r.Header.Get("Api-Key"))
		}

		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req["namespace"] != "ns1" {
			t.Errorf("namespace = %v", req["namespace"])
		}
		if req["topK"] != float64(5) {
			t.Errorf("topK = %v", req["topK"])
		}
		if req["includeMetadata"] != true || req["includeValues"] != false {
			t.Errorf("include flags wrong: %v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"matches":[
			{"id":"a","score":0.91,"metadata":{"title":"A","text":"alpha"}},
			{"id":"b","score":0.12,"metadata":{}}
		]}`))
	}), 0)

	hits, err := c.Query(context.Background(), []float32{0.1, 0.2}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].ID != "a" || hits[0].Score != 0.91 {
		t.Errorf("first hit wrong: %+v", hits[0])
	}
	if hits[0].Metadata.String("title") != "A" {
		t.Errorf("metadata lost: %+v", hits[0].Metadata)
	}
	// порядок должен совпадать с ответом стора
	if hits[1].ID != "b" {
		t.Errorf("order not preserved: %+v", hits)
	}
}

func TestQuery_RetriesOn5xx(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"matches":[{"id":"a","score":0.5,"metadata":{}}]}`))
	}), 2)

	hits, err := c.Query(context.Background(), []float32{0.1}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected 2 attempts, got %d", got)
	}
}

func TestQuery_NoRetryOn4xx(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"bad key"}`))
	}), 3)

	_, err := c.Query(context.Background(), []float32{0.1}, 3)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("4xx must not retry, got %d attempts", got)
	}
}

func TestQuery_ExhaustsRetryBudget(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}), 2)

	_, err := c.Query(context.Background(), []float32{0.1}, 3)
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 attempts (1 + 2 retries), got %d", got)
	}
}

func TestQuery_GarbageBody(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json at all"))
	}), 0)

	_, err := c.Query(context.Background(), []float32{0.1}, 3)
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable for undecodable body, got %v", err)
	}
}

func TestFetch_Success(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/vectors/fetch" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		ids := r.URL.Query()["ids"]
		if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
			t.Errorf("unexpected ids: %v", ids)
		}
		if r.URL.Query().Get("namespace") != "ns1" {
			t.Errorf("namespace = %q", r.URL.Query().Get("namespace"))
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"vectors":{
			"a":{"id":"a","values":[0.1],"metadata":{"text":"alpha"}},
			"b":{"values":[0.2],"metadata":{"text":"beta"}}
		}}`))
	}), 0)

	records, err := c.Fetch(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records["a"].Metadata.String("text") != "alpha" {
		t.Errorf("record a metadata wrong: %+v", records["a"])
	}
	// id берётся из ключа, если в теле записи его нет
	if records["b"].ID != "b" {
		t.Errorf("record b id not backfilled: %+v", records["b"])
	}
}

func TestFetch_StoreDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused

	c := NewClient(Config{
		Host:   server.URL,
		APIKey: "pc-test-key",
		Logger: zap.NewNop(),
	})

	_, err := c.Fetch(context.Background(), []string{"a"})
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}
