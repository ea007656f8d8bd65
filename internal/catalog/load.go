// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package catalog

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/tomtom215/shikisai/internal/metrics"
)

// Load restores the catalog from its data directory and replays any pending
// journal batches. Missing artifacts leave the catalog empty. Recoverable
// inconsistencies are repaired and logged:
//
//   - a matrix with a stale column count is padded or truncated to FullDim
//   - a row/metadata count mismatch keeps the common prefix
//   - a missing, unreadable or out-of-date index is rebuilt from the matrix
//
// A matrix or metadata file that cannot be decoded at all is an error.
func (c *Catalog) Load(ctx context.Context) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	snap, dirty, err := c.readArtifacts()
	if err != nil {
		return err
	}

	c.seen = make(map[string]struct{}, snap.Len())
	for _, t := range snap.tracks {
		c.seen[t.ID] = struct{}{}
	}
	c.snap.Store(snap)
	metrics.CatalogTracks.Set(float64(snap.Len()))

	replayed, err := c.replayJournal(ctx)
	if err != nil {
		return err
	}
	if dirty && !replayed {
		if err := c.persist(c.snap.Load()); err != nil {
			return fmt.Errorf("persist repaired catalog: %w", err)
		}
	}

	s := c.snap.Load()
	c.logger.Info().
		Int("tracks", s.Len()).
		Uint64("generation", s.generation).
		Bool("indexed", s.index != nil).
		Msg("Catalog loaded")
	return nil
}

// readArtifacts builds a snapshot from disk. dirty reports that a repair
// changed the on-disk state and the artifacts must be rewritten.
func (c *Catalog) readArtifacts() (*Snapshot, bool, error) {
	empty := &Snapshot{dim: FullDim}
	if c.dir == "" {
		return empty, false, nil
	}

	tracks, err := readMetadata(filepath.Join(c.dir, MetadataFile))
	metaMissing := isNotExist(err)
	if err != nil && !metaMissing {
		return nil, false, fmt.Errorf("read metadata: %w", err)
	}

	m, err := readMatrix(filepath.Join(c.dir, VectorsFile), vectorsMagic)
	matrixMissing := isNotExist(err)
	if err != nil && !matrixMissing {
		return nil, false, fmt.Errorf("read vectors: %w", err)
	}

	if metaMissing && matrixMissing {
		return empty, false, nil
	}

	dirty := false
	if matrixMissing {
		m = matrix{dim: FullDim}
	}

	if m.dim != FullDim {
		c.logger.Warn().
			Int("stored_dim", m.dim).
			Int("dim", FullDim).
			Int("rows", m.count).
			Msg("Repairing stale vector width")
		m = repairWidth(m, FullDim)
		metrics.CatalogRepairs.WithLabelValues("dimension").Inc()
		dirty = true
	}

	if m.count != len(tracks) {
		n := m.count
		if len(tracks) < n {
			n = len(tracks)
		}
		c.logger.Warn().
			Int("rows", m.count).
			Int("metadata", len(tracks)).
			Int("kept", n).
			Msg("Vector rows and metadata disagree, keeping common prefix")
		m.data = m.data[:n*m.dim]
		m.count = n
		m.checksum = checksum(m.data)
		tracks = tracks[:n]
		metrics.CatalogRepairs.WithLabelValues("row_mismatch").Inc()
		dirty = true
	}

	snap := &Snapshot{
		dim:        m.dim,
		vectors:    m.data,
		tracks:     tracks,
		generation: m.generation,
	}
	if dirty {
		snap.generation++
	}
	snap.index = newFlatIndex(snap.dim, len(tracks), snap.vectors)

	if !dirty && !c.indexValid(m) {
		c.logger.Warn().Msg("Persisted index missing or stale, rebuilt from vectors")
		metrics.CatalogRepairs.WithLabelValues("index_rebuild").Inc()
		dirty = true
	}
	return snap, dirty, nil
}

// indexValid reports whether the persisted index describes exactly m.
func (c *Catalog) indexValid(m matrix) bool {
	ix, err := readMatrix(filepath.Join(c.dir, IndexFile), indexMagic)
	if err != nil {
		if !isNotExist(err) {
			c.logger.Warn().Err(err).Msg("Unreadable index")
		}
		return false
	}
	return ix.dim == m.dim &&
		ix.count == m.count &&
		ix.generation == m.generation &&
		ix.checksum == m.checksum
}

// repairWidth pads or truncates every row to dim and re-normalizes it.
func repairWidth(m matrix, dim int) matrix {
	out := matrix{dim: dim, count: m.count, generation: m.generation}
	out.data = make([]float32, 0, dim*m.count)
	for r := 0; r < m.count; r++ {
		row := resized(m.data[r*m.dim:(r+1)*m.dim], dim)
		out.data = append(out.data, normalized(row)...)
	}
	out.checksum = checksum(out.data)
	return out
}

// replayJournal re-applies pending batches. Duplicate ids are skipped, so a
// batch that reached disk before the crash is a no-op. Reports whether
// anything was persisted.
func (c *Catalog) replayJournal(ctx context.Context) (bool, error) {
	if c.journal == nil {
		return false, nil
	}
	pending, err := c.journal.Pending(ctx)
	if err != nil {
		return false, fmt.Errorf("read journal: %w", err)
	}
	metrics.CatalogJournalPending.Set(float64(len(pending)))
	if len(pending) == 0 {
		return false, nil
	}

	persisted := false
	for _, entry := range pending {
		accepted, _ := c.prepare(entry.Records)
		if len(accepted) > 0 {
			next := c.snap.Load().withRecords(accepted)
			if err := c.persist(next); err != nil {
				return persisted, fmt.Errorf("persist replayed batch %s: %w", entry.ID, err)
			}
			c.publish(next, accepted)
			persisted = true
		}
		if err := c.journal.Confirm(ctx, entry.ID); err != nil {
			return persisted, fmt.Errorf("confirm replayed batch %s: %w", entry.ID, err)
		}
		metrics.CatalogJournalPending.Dec()
		metrics.CatalogRepairs.WithLabelValues("journal_replay").Inc()
		c.logger.Info().
			Str("entry_id", entry.ID).
			Int("added", len(accepted)).
			Int("offered", len(entry.Records)).
			Msg("Replayed journal batch")
	}
	return persisted, nil
}
