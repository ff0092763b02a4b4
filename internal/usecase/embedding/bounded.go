// Package embedding assembles the query vectorization chain: provider
// adapter, optional cache, timeout and retry bounds.
package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecgate/internal/domain"
)

const (
	defaultTimeout = 15 * time.Second
	retryBaseDelay = 200 * time.Millisecond
)

// Bounded wraps an Embedder with a per-call deadline and a bounded
// fibonacci retry. A hung or flapping provider costs at most
// (retryMax+1) attempts of timeout each, never an unbounded wait.
type Bounded struct {
	inner    domain.Embedder
	timeout  time.Duration
	retryMax uint64
	logger   *zap.Logger
}

// NewBounded creates the bounding decorator. retryMax counts extra attempts
// after the first one; 0 disables retries.
func NewBounded(inner domain.Embedder, timeout time.Duration, retryMax int, logger *zap.Logger) *Bounded {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if retryMax < 0 {
		retryMax = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bounded{
		inner:    inner,
		timeout:  timeout,
		retryMax: uint64(retryMax),
		logger:   logger,
	}
}

// Embed calls the inner embedder under a deadline. Provider errors are
// retried with backoff; parent context cancellation is terminal.
func (b *Bounded) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	var result domain.EmbeddingResult

	backoff := retry.NewFibonacci(retryBaseDelay)
	err := retry.Do(ctx, retry.WithMaxRetries(b.retryMax, backoff), func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, b.timeout)
		defer cancel()

		res, err := b.inner.Embed(callCtx, text)
		if err != nil {
			if ctx.Err() != nil {
				return err // вызывающий отменил — не ретраим
			}
			b.logger.Warn("Embedding attempt failed", zap.Error(err))
			return retry.RetryableError(err)
		}
		result = res
		return nil
	})
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	return result, nil
}
