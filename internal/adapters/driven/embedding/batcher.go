// Package embedding provides a batching and rate-limiting decorator
// shared by the provider-specific embedding adapters.
package embedding

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/veldt-labs/ragkit/internal/core/domain"
	"github.com/veldt-labs/ragkit/internal/core/ports/driven"
)

// Ensure Batcher implements the interface.
var _ driven.EmbeddingService = (*Batcher)(nil)

// Default batching parameters.
const (
	// DefaultBatchSize is the number of texts embedded per group.
	DefaultBatchSize = 10

	// DefaultConcurrency is the number of in-flight embeds within a group.
	DefaultConcurrency = 3

	// DefaultMaxInputLength is the character cap applied to any single
	// input before it is sent to the provider.
	DefaultMaxInputLength = 8000

	// DefaultBatchesPerSecond is the sustained group rate. The token
	// bucket replaces a fixed inter-batch sleep as backpressure.
	DefaultBatchesPerSecond = 2.0
)

// Batcher wraps an EmbeddingService with input truncation, fixed-size
// batching, bounded concurrency within each batch and a token-bucket
// limiter between batches. Cancellation is cooperative: the context is
// checked between batches, not mid-batch.
type Batcher struct {
	inner       driven.EmbeddingService
	batchSize   int
	concurrency int
	maxInput    int
	limiter     *rate.Limiter
}

// BatcherOption configures the batcher.
type BatcherOption func(*Batcher)

// WithBatchSize sets the number of texts per group.
func WithBatchSize(n int) BatcherOption {
	return func(b *Batcher) {
		if n > 0 {
			b.batchSize = n
		}
	}
}

// WithConcurrency sets the number of in-flight embeds within a group.
func WithConcurrency(n int) BatcherOption {
	return func(b *Batcher) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithMaxInputLength sets the character cap for a single input.
func WithMaxInputLength(n int) BatcherOption {
	return func(b *Batcher) {
		if n > 0 {
			b.maxInput = n
		}
	}
}

// WithRate sets the sustained batch rate and burst size.
func WithRate(batchesPerSecond float64, burst int) BatcherOption {
	return func(b *Batcher) {
		if batchesPerSecond > 0 && burst > 0 {
			b.limiter = rate.NewLimiter(rate.Limit(batchesPerSecond), burst)
		}
	}
}

// NewBatcher wraps an embedding service with batching and rate limiting.
func NewBatcher(inner driven.EmbeddingService, opts ...BatcherOption) *Batcher {
	b := &Batcher{
		inner:       inner,
		batchSize:   DefaultBatchSize,
		concurrency: DefaultConcurrency,
		maxInput:    DefaultMaxInputLength,
		limiter:     rate.NewLimiter(rate.Limit(DefaultBatchesPerSecond), 1),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Embed generates a vector embedding for a single text.
func (b *Batcher) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	embedding, err := b.inner.Embed(ctx, b.truncate(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}
	return embedding, nil
}

// EmbedBatch generates embeddings for multiple texts, preserving input
// order. Texts are processed in fixed-size groups; each group runs with
// bounded concurrency and groups are paced by the token bucket.
func (b *Batcher) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	errs := make([]error, len(texts))

	for start := 0; start < len(texts); start += b.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		end := start + b.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		sem := make(chan struct{}, b.concurrency)
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int) {
				defer wg.Done()
				defer func() { <-sem }()
				out[i], errs[i] = b.inner.Embed(ctx, b.truncate(texts[i]))
			}(i)
		}
		wg.Wait()
	}

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("%w: text %d: %w", domain.ErrEmbedding, i, err)
		}
	}
	return out, nil
}

// Dimensions returns the embedding vector size of the wrapped service.
func (b *Batcher) Dimensions() int {
	return b.inner.Dimensions()
}

// ModelName returns the wrapped service's model name.
func (b *Batcher) ModelName() string {
	return b.inner.ModelName()
}

// Ping validates the wrapped service is reachable.
func (b *Batcher) Ping(ctx context.Context) error {
	return b.inner.Ping(ctx)
}

// Close releases the wrapped service's resources.
func (b *Batcher) Close() error {
	return b.inner.Close()
}

// truncate caps a single input at the provider's accepted length,
// cutting back to a word boundary when one is close enough.
func (b *Batcher) truncate(text string) string {
	if len(text) <= b.maxInput {
		return text
	}
	cut := text[:b.maxInput]
	if idx := strings.LastIndexByte(cut, ' '); idx > b.maxInput*9/10 {
		cut = cut[:idx]
	}
	return cut
}
