// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Pruner is satisfied by *encoder.CachingEncoder.
type Pruner interface {
	Prune() int
}

// CachePrunerService periodically drops expired prompt embeddings so
// entries that are never read again do not sit in memory until evicted.
type CachePrunerService struct {
	cache    Pruner
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewCachePrunerService creates the pruner. A non-positive interval means
// one hour.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCachePrunerService(cache Pruner, interval time.Duration, logger zerolog.Logger) *CachePrunerService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &CachePrunerService{
		cache:    cache,
		interval: interval,
		logger:   logger.With().Str("service", "cache-pruner").Logger(),
		name:     "cache-pruner",
	}
}

// Serve implements suture.Service.
func (s *CachePrunerService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := s.cache.Prune(); n > 0 {
				s.logger.Debug().Int("removed", n).Msg("Expired prompt embeddings pruned")
			}
		}
	}
}

// String implements fmt.Stringer for suture log messages.
func (s *CachePrunerService) String() string {
	return s.name
}
