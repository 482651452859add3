// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/poiesic/coursefind/cache"
)

// CacheStats reports query embedding cache activity.
type CacheStats struct {
	Hits   int64
	Misses int64
	Size   int
}

// CachedEmbedder memoizes embeddings by exact text and retries failed calls
// with exponential backoff. Failures are never cached.
//
// Returned vectors are shared with the cache and must not be modified.
type CachedEmbedder struct {
	embedder    Embedder
	cache       *cache.FIFO[string, []float32]
	maxAttempts int
	baseDelay   time.Duration
	hits        atomic.Int64
	misses      atomic.Int64
	logger      *slog.Logger
}

var _ Embedder = (*CachedEmbedder)(nil)

// CachedEmbedderOption configures a CachedEmbedder.
type CachedEmbedderOption func(*CachedEmbedder)

// WithCacheCapacity sets how many embeddings are retained.
func WithCacheCapacity(capacity int) CachedEmbedderOption {
	return func(c *CachedEmbedder) {
		c.cache = cache.NewFIFO[string, []float32](capacity)
	}
}

// WithRetryPolicy sets the attempt budget and first backoff delay.
func WithRetryPolicy(maxAttempts int, baseDelay time.Duration) CachedEmbedderOption {
	return func(c *CachedEmbedder) {
		c.maxAttempts = maxAttempts
		c.baseDelay = baseDelay
	}
}

// WithCacheLogger sets the logger.
func WithCacheLogger(logger *slog.Logger) CachedEmbedderOption {
	return func(c *CachedEmbedder) {
		c.logger = logger
	}
}

// NewCachedEmbedder wraps embedder. By default it keeps DefaultCacheSize
// entries and makes DefaultMaxAttempts attempts starting at DefaultBaseDelay.
func NewCachedEmbedder(embedder Embedder, opts ...CachedEmbedderOption) *CachedEmbedder {
	c := &CachedEmbedder{
		embedder:    embedder,
		cache:       cache.NewFIFO[string, []float32](DefaultCacheSize),
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "cached-embedder")
	return c
}

// NewCachedEmbedderFromConfig wraps embedder using cfg's cache and retry settings.
func NewCachedEmbedderFromConfig(embedder Embedder, cfg *Config, opts ...CachedEmbedderOption) *CachedEmbedder {
	base := []CachedEmbedderOption{
		WithCacheCapacity(cfg.CacheSize),
		WithRetryPolicy(cfg.MaxAttempts, cfg.BaseDelay),
	}
	return NewCachedEmbedder(embedder, append(base, opts...)...)
}

// EmbedText returns the cached vector for text or computes and caches it.
func (c *CachedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.cache.Get(text); ok {
		c.hits.Add(1)
		return v, nil
	}
	c.misses.Add(1)

	var vector []float32
	err := RetryWithBackoff(ctx, func() error {
		v, err := c.embedder.EmbedText(ctx, text)
		if err != nil {
			return err
		}
		if len(v) == 0 {
			return TerminalError(ErrEmptyEmbedding)
		}
		vector = v
		return nil
	}, c.maxAttempts, c.baseDelay)
	if err != nil {
		c.logger.Error("failed to embed text", "attempts", c.maxAttempts, "err", err)
		return nil, terminal(err)
	}

	c.cache.Put(text, vector)
	return vector, nil
}

// EmbedTexts serves cached texts from memory and embeds the rest in one batch.
func (c *CachedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	var missing []int
	for i, text := range texts {
		if v, ok := c.cache.Get(text); ok {
			c.hits.Add(1)
			result[i] = v
			continue
		}
		c.misses.Add(1)
		missing = append(missing, i)
	}
	if len(missing) == 0 {
		return result, nil
	}

	batch := make([]string, len(missing))
	for j, i := range missing {
		batch[j] = texts[i]
	}

	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		vs, err := c.embedder.EmbedTexts(ctx, batch)
		if err != nil {
			return err
		}
		if len(vs) != len(batch) {
			return TerminalError(fmt.Errorf("%w: got %d vectors for %d texts", ErrEmptyEmbedding, len(vs), len(batch)))
		}
		vectors = vs
		return nil
	}, c.maxAttempts, c.baseDelay)
	if err != nil {
		c.logger.Error("failed to embed texts", "count", len(batch), "err", err)
		return nil, terminal(err)
	}

	for j, i := range missing {
		result[i] = vectors[j]
		c.cache.Put(texts[i], vectors[j])
	}
	return result, nil
}

// Stats returns cache hit and miss counters.
func (c *CachedEmbedder) Stats() CacheStats {
	return CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   c.cache.Len(),
	}
}

// terminal surfaces the final failure of a retried call. Once attempts are
// spent nothing is worth retrying, so the result is always a terminal
// EmbeddingServiceError.
func terminal(err error) error {
	if svcErr, ok := err.(*EmbeddingServiceError); ok {
		if !svcErr.Retryable {
			return err
		}
		return &EmbeddingServiceError{Retryable: false, Err: svcErr.Err}
	}
	var svcErr *EmbeddingServiceError
	if errors.As(err, &svcErr) && !svcErr.Retryable {
		return err
	}
	return TerminalError(err)
}
