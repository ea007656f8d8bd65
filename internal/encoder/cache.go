// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package encoder

import (
	"context"
	"time"

	"github.com/tomtom215/shikisai/internal/cache"
	"github.com/tomtom215/shikisai/internal/metrics"
)

// CachingEncoder memoizes embeddings by exact text. Color prompts repeat
// often, so most color requests skip the embedding server entirely.
// Errors are never cached.
type CachingEncoder struct {
	next  Encoder
	cache *cache.LRU[[]float32]
}

// NewCachingEncoder wraps next with an LRU of size entries kept for ttl.
func NewCachingEncoder(next Encoder, size int, ttl time.Duration) *CachingEncoder {
	return &CachingEncoder{next: next, cache: cache.NewLRU[[]float32](size, ttl)}
}

// Encode returns a copy of the cached embedding or asks next.
func (c *CachingEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.cache.Get(text); ok {
		metrics.EncoderCacheLookups.WithLabelValues("hit").Inc()
		return append([]float32(nil), v...), nil
	}
	metrics.EncoderCacheLookups.WithLabelValues("miss").Inc()

	v, err := c.next.Encode(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(text, append([]float32(nil), v...))
	return v, nil
}

// State forwards the breaker state when next has one.
func (c *CachingEncoder) State() string {
	if s, ok := c.next.(interface{ State() string }); ok {
		return s.State()
	}
	return ""
}

// Prune drops expired embeddings and returns how many were removed.
func (c *CachingEncoder) Prune() int {
	return c.cache.CleanupExpired()
}

// Stats returns cache hits, misses and size.
func (c *CachingEncoder) Stats() (hits, misses int64, size int) {
	return c.cache.Stats()
}
