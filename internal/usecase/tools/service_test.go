package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/kailas-cloud/vecgate/internal/domain"
)

// --- Mocks ---

type mockSearcher struct {
	results   []domain.SearchResult
	lastQuery string
	lastTopK  int
}

func (m *mockSearcher) Search(_ context.Context, query string, topK int) []domain.SearchResult {
	m.lastQuery = query
	m.lastTopK = topK
	if m.results == nil {
		return []domain.SearchResult{}
	}
	return m.results
}

type mockFetcher struct {
	objects []domain.FetchObject
	lastIDs []string
}

func (m *mockFetcher) Fetch(_ context.Context, objectIDs []string) []domain.FetchObject {
	m.lastIDs = objectIDs
	if m.objects == nil {
		return []domain.FetchObject{}
	}
	return m.objects
}

// --- Tests ---

func TestDispatch_Search(t *testing.T) {
	searcher := &mockSearcher{results: []domain.SearchResult{
		{ID: "doc-1", Score: 0.9, Snippet: "preview"},
	}}
	d := New(searcher, &mockFetcher{})

	out, err := d.Dispatch(context.Background(), domain.ToolCall{
		Tool:      "search",
		Arguments: json.RawMessage(`{"query":"foxes","top_k":5}`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if searcher.lastQuery != "foxes" || searcher.lastTopK != 5 {
		t.Errorf("arguments not threaded: query=%q topK=%d", searcher.lastQuery, searcher.lastTopK)
	}
	page, ok := out.(domain.SearchPage)
	if !ok {
		t.Fatalf("expected SearchPage, got %T", out)
	}
	if len(page.Results) != 1 || page.Results[0].ID != "doc-1" {
		t.Errorf("unexpected page: %+v", page)
	}
}

func TestDispatch_SearchEnvelopeShape(t *testing.T) {
	d := New(&mockSearcher{}, &mockFetcher{})

	out, err := d.Dispatch(context.Background(), domain.ToolCall{
		Tool:      "search",
		Arguments: json.RawMessage(`{"query":"nothing matches"}`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	// Пустая страница — [], не null
	if string(body) != `{"results":[]}` {
		t.Errorf("unexpected envelope: %s", body)
	}
}

func TestDispatch_Fetch(t *testing.T) {
	fetcher := &mockFetcher{objects: []domain.FetchObject{
		{ID: "doc-1", Content: "full text", Metadata: domain.Metadata{"truncated": false}},
	}}
	d := New(&mockSearcher{}, fetcher)

	out, err := d.Dispatch(context.Background(), domain.ToolCall{
		Tool:      "fetch",
		Arguments: json.RawMessage(`{"object_ids":["doc-1","doc-2"]}`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fetcher.lastIDs) != 2 {
		t.Errorf("ids not threaded: %v", fetcher.lastIDs)
	}
	page, ok := out.(domain.FetchPage)
	if !ok {
		t.Fatalf("expected FetchPage, got %T", out)
	}
	if len(page.Objects) != 1 || page.Objects[0].Content != "full text" {
		t.Errorf("unexpected page: %+v", page)
	}
}

func TestDispatch_FetchEnvelopeShape(t *testing.T) {
	d := New(&mockSearcher{}, &mockFetcher{})

	out, err := d.Dispatch(context.Background(), domain.ToolCall{
		Tool:      "fetch",
		Arguments: json.RawMessage(`{"object_ids":[]}`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(body) != `{"objects":[]}` {
		t.Errorf("unexpected envelope: %s", body)
	}
}

func TestDispatch_UnknownTool(t *testing.T) {
	d := New(&mockSearcher{}, &mockFetcher{})

	_, err := d.Dispatch(context.Background(), domain.ToolCall{Tool: "delete_everything"})
	if !errors.Is(err, domain.ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
}

func TestDispatch_InvalidArguments(t *testing.T) {
	d := New(&mockSearcher{}, &mockFetcher{})

	tests := []struct {
		name string
		tool string
		args string
	}{
		{"garbage json", "search", `{"query": `},
		{"wrong type top_k", "search", `{"query":"x","top_k":"five"}`},
		{"wrong type ids", "fetch", `{"object_ids":"doc-1"}`},
		{"array instead of object", "search", `["query"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Dispatch(context.Background(), domain.ToolCall{
				Tool:      tt.tool,
				Arguments: json.RawMessage(tt.args),
			})
			if !errors.Is(err, domain.ErrInvalidArguments) {
				t.Fatalf("expected ErrInvalidArguments, got %v", err)
			}
		})
	}
}

func TestDispatch_AbsentArguments(t *testing.T) {
	searcher := &mockSearcher{}
	d := New(searcher, &mockFetcher{})

	out, err := d.Dispatch(context.Background(), domain.ToolCall{Tool: "search"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if searcher.lastQuery != "" || searcher.lastTopK != 0 {
		t.Errorf("expected zero-value args, got query=%q topK=%d", searcher.lastQuery, searcher.lastTopK)
	}
	if _, ok := out.(domain.SearchPage); !ok {
		t.Fatalf("expected SearchPage, got %T", out)
	}
}

func TestPrepare_ValidatesWithoutExecuting(t *testing.T) {
	searcher := &mockSearcher{}
	d := New(searcher, &mockFetcher{})

	task, err := d.Prepare(domain.ToolCall{
		Tool:      "search",
		Arguments: json.RawMessage(`{"query":"later"}`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if searcher.lastQuery != "" {
		t.Error("Prepare must not run the operation")
	}

	out := task(context.Background())
	if searcher.lastQuery != "later" {
		t.Errorf("task did not thread arguments: %q", searcher.lastQuery)
	}
	if _, ok := out.(domain.SearchPage); !ok {
		t.Fatalf("expected SearchPage, got %T", out)
	}
}

func TestManifest(t *testing.T) {
	d := New(&mockSearcher{}, &mockFetcher{})

	specs := d.Manifest()
	if len(specs) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(specs))
	}
	names := map[string]bool{}
	for _, s := range specs {
		names[s.Name] = true
		if s.Description == "" {
			t.Errorf("tool %s has no description", s.Name)
		}
		if s.InputSchema["type"] != "object" {
			t.Errorf("tool %s schema must be an object", s.Name)
		}
	}
	if !names[ToolSearch] || !names[ToolFetch] {
		t.Errorf("expected search and fetch, got %v", names)
	}
}
