package embedding

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/kailas-cloud/vecgate/internal/db"
	"github.com/kailas-cloud/vecgate/internal/domain"
)

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
	calls   atomic.Int32
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls.Add(1)
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{}, nil
}

// fakeStore is a no-op db.Store for factory wiring tests.
type fakeStore struct{}

func (fakeStore) Ping(context.Context) error                  { return nil }
func (fakeStore) Get(context.Context, string) ([]byte, error) { return nil, db.ErrKeyNotFound }
func (fakeStore) Set(context.Context, string, []byte) error   { return nil }
func (fakeStore) SetWithTTL(context.Context, string, []byte, time.Duration) error {
	return nil
}
func (fakeStore) Close() {}
func (fakeStore) WaitForReady(context.Context, time.Duration) error { return nil }
