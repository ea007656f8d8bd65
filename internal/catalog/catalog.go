// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

// Package catalog is the persisted vector catalog: normalized track
// embeddings aligned row-for-row with track metadata, searched exactly by
// inner product.
//
// Writes are serialized. Each successful batch produces a new immutable
// Snapshot that is published atomically, so concurrent readers see either the
// state before a batch or the state after it. On disk the catalog is three
// artifacts (index, vectors, metadata) that are each replaced atomically; an
// optional badger Journal records batches so a crash between artifact writes
// is repaired on the next Load.
package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shikisai/internal/metrics"
)

// Defaults applied by ingestion when a source lacks audio features.
const (
	DefaultValence          = 0.5
	DefaultEnergy           = 0.5
	DefaultInstrumentalness = 0.0
	DefaultSpeechiness      = 0.05
	DefaultPopularity       = 0
	DefaultReleaseYear      = 2010
)

// Track is the metadata stored for one catalog row.
type Track struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Artists          []string `json:"artists"`
	Genres           []string `json:"genres"`
	Valence          float64  `json:"valence"`
	Energy           float64  `json:"energy"`
	Instrumentalness float64  `json:"instrumentalness"`
	Speechiness      float64  `json:"speechiness"`
	Popularity       float64  `json:"popularity"`
	ReleaseYear      int      `json:"release_year"`
	Source           string   `json:"source,omitempty"`
}

// Record is a track offered to AddBatch with its raw text embedding.
type Record struct {
	Track     Track     `json:"track"`
	Embedding []float32 `json:"embedding"`
}

// BatchResult counts what AddBatch did with each offered record.
type BatchResult struct {
	Added          int `json:"added"`
	Skipped        int `json:"skipped"`
	EncodeFailures int `json:"encode_failures"`
}

// Match is a search result.
type Match struct {
	Score float64 `json:"score"`
	Track Track   `json:"track"`
}

// Options configures a Catalog.
type Options struct {
	// Dir holds the three artifacts. Empty keeps the catalog in memory only.
	Dir string

	// Journal is optional.
	Journal *Journal

	Logger zerolog.Logger
}

// Catalog is the vector catalog. The zero value is not usable; call New.
type Catalog struct {
	dir     string
	journal *Journal
	logger  zerolog.Logger

	// writeMu serializes AddBatch and Load. seen is only touched under it.
	writeMu sync.Mutex
	seen    map[string]struct{}

	snap atomic.Pointer[Snapshot]
}

// New returns an empty catalog. Call Load to pick up persisted artifacts.
//
//nolint:gocritic // Options carries a zerolog.Logger by value
func New(opts Options) *Catalog {
	c := &Catalog{
		dir:     opts.Dir,
		journal: opts.Journal,
		logger:  opts.Logger.With().Str("component", "catalog").Logger(),
		seen:    make(map[string]struct{}),
	}
	c.snap.Store(&Snapshot{dim: FullDim})
	return c
}

// Snapshot returns the current immutable view.
func (c *Catalog) Snapshot() *Snapshot {
	return c.snap.Load()
}

// Len returns the number of stored tracks.
func (c *Catalog) Len() int {
	return c.snap.Load().Len()
}

// Loaded reports whether an index exists, i.e. whether Search can succeed.
func (c *Catalog) Loaded() bool {
	return c.snap.Load().index != nil
}

// AddBatch validates, normalizes and appends records, then rebuilds the index
// and persists all artifacts. Bad records are counted, never fatal. An error
// means the batch could not be made durable; the in-memory catalog is then
// left unchanged and the journal entry is abandoned, so the caller owns the
// retry and Load never replays a rejected batch.
func (c *Catalog) AddBatch(ctx context.Context, records []Record) (BatchResult, error) {
	if err := ctx.Err(); err != nil {
		return BatchResult{}, err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	accepted, result := c.prepare(records)
	defer func() {
		metrics.RecordIngest(result.Added, result.Skipped, result.EncodeFailures)
	}()

	if len(accepted) == 0 {
		c.logger.Info().
			Int("offered", len(records)).
			Int("skipped", result.Skipped).
			Int("encode_failures", result.EncodeFailures).
			Msg("Batch added no tracks")
		return result, nil
	}

	var entryID string
	if c.journal != nil {
		id, err := c.journal.Begin(ctx, accepted)
		if err != nil {
			result.Added = 0
			return result, fmt.Errorf("journal batch: %w", err)
		}
		entryID = id
		metrics.CatalogJournalPending.Inc()
	}

	next := c.snap.Load().withRecords(accepted)
	if err := c.persist(next); err != nil {
		if entryID != "" {
			if aerr := c.journal.Abandon(ctx, entryID); aerr != nil {
				c.logger.Warn().Err(aerr).Str("entry_id", entryID).Msg("Failed to abandon journal entry")
			} else {
				metrics.CatalogJournalPending.Dec()
			}
		}
		result.Added = 0
		return result, fmt.Errorf("persist catalog: %w", err)
	}
	c.publish(next, accepted)

	if entryID != "" {
		if err := c.journal.Confirm(ctx, entryID); err != nil {
			c.logger.Warn().Err(err).Str("entry_id", entryID).Msg("Failed to confirm journal entry")
		} else {
			metrics.CatalogJournalPending.Dec()
		}
	}

	result.Added = len(accepted)
	c.logger.Info().
		Int("added", result.Added).
		Int("skipped", result.Skipped).
		Int("encode_failures", result.EncodeFailures).
		Int("total", next.Len()).
		Msg("Batch added to catalog")
	return result, nil
}

// prepare filters and fits records. Must be called with writeMu held.
func (c *Catalog) prepare(records []Record) ([]Record, BatchResult) {
	var result BatchResult
	accepted := make([]Record, 0, len(records))
	batchSeen := make(map[string]struct{}, len(records))

	for _, rec := range records {
		id := rec.Track.ID
		if id == "" {
			result.Skipped++
			c.logger.Debug().Err(errMissingID).Str("name", rec.Track.Name).Msg("Skipping record")
			continue
		}
		_, stored := c.seen[id]
		_, inBatch := batchSeen[id]
		if stored || inBatch {
			result.Skipped++
			c.logger.Debug().Err(errDuplicateID).Str("id", id).Msg("Skipping record")
			continue
		}
		if err := checkEmbedding(rec.Embedding); err != nil {
			result.EncodeFailures++
			c.logger.Debug().Err(err).Str("id", id).Msg("Skipping record")
			continue
		}
		batchSeen[id] = struct{}{}
		accepted = append(accepted, Record{Track: rec.Track, Embedding: resized(rec.Embedding, TextDim)})
	}
	return accepted, result
}

// publish swaps in next and marks its new ids seen. Must be called with
// writeMu held.
func (c *Catalog) publish(next *Snapshot, added []Record) {
	for _, rec := range added {
		c.seen[rec.Track.ID] = struct{}{}
	}
	c.snap.Store(next)
	metrics.CatalogTracks.Set(float64(next.Len()))
}

// persist writes vectors, then metadata, then the index. Each file is
// replaced atomically; the index is written last because Load can always
// rebuild it.
func (c *Catalog) persist(s *Snapshot) error {
	if c.dir == "" {
		return nil
	}
	start := time.Now()
	defer func() { metrics.CatalogPersistDuration.Observe(time.Since(start).Seconds()) }()

	m := matrix{dim: s.dim, count: s.Len(), generation: s.generation, data: s.vectors}
	if err := writeMatrix(filepath.Join(c.dir, VectorsFile), vectorsMagic, m); err != nil {
		return fmt.Errorf("write vectors: %w", err)
	}
	if err := writeMetadata(filepath.Join(c.dir, MetadataFile), s.tracks); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := writeMatrix(filepath.Join(c.dir, IndexFile), indexMagic, m); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// Search returns the k tracks whose stored vectors have the highest inner
// product with query, best first. The query must have FullDim entries.
func (c *Catalog) Search(ctx context.Context, query []float32, k int) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := c.snap.Load()
	if s.index == nil {
		return nil, ErrNotLoaded
	}
	if len(query) != s.dim {
		return nil, &DimensionError{Got: len(query), Want: s.dim}
	}

	start := time.Now()
	hits := s.index.Search(normalized(query), k)
	metrics.CatalogSearchDuration.Observe(time.Since(start).Seconds())

	out := make([]Match, len(hits))
	for i, h := range hits {
		out[i] = Match{Score: h.Score, Track: s.tracks[h.Row]}
	}
	return out, nil
}
