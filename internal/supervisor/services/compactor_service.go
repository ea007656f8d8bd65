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

// Compactor is satisfied by *catalog.Journal.
type Compactor interface {
	Compact(ctx context.Context, cutoff time.Time) (int, error)
	Retention() time.Duration
}

// JournalCompactorService periodically deletes confirmed journal entries
// older than the journal retention.
type JournalCompactorService struct {
	journal  Compactor
	interval time.Duration
	logger   zerolog.Logger
	now      func() time.Time
	name     string
}

// NewJournalCompactorService creates the compactor. A non-positive interval
// means one hour.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewJournalCompactorService(journal Compactor, interval time.Duration, logger zerolog.Logger) *JournalCompactorService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &JournalCompactorService{
		journal:  journal,
		interval: interval,
		logger:   logger.With().Str("service", "journal-compactor").Logger(),
		now:      time.Now,
		name:     "journal-compactor",
	}
}

// Serve implements suture.Service. A failed pass is logged and retried on the
// next tick rather than restarting the service.
func (s *JournalCompactorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.compact(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.compact(ctx)
		}
	}
}

func (s *JournalCompactorService) compact(ctx context.Context) {
	cutoff := s.now().Add(-s.journal.Retention())
	deleted, err := s.journal.Compact(ctx, cutoff)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn().Err(err).Msg("Journal compaction failed")
		}
		return
	}
	if deleted > 0 {
		s.logger.Info().Int("deleted", deleted).Time("cutoff", cutoff).Msg("Journal compacted")
	}
}

// String implements fmt.Stringer for suture log messages.
func (s *JournalCompactorService) String() string {
	return s.name
}
