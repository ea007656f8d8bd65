// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package catalog

// Snapshot is an immutable view of the catalog. It is safe for concurrent
// use and never changes after it is published.
type Snapshot struct {
	dim        int
	vectors    []float32 // row-major, len == dim*len(tracks)
	tracks     []Track
	generation uint64
	index      *FlatIndex // nil until the first build or load
}

// Len returns the number of rows.
func (s *Snapshot) Len() int { return len(s.tracks) }

// Generation increments every time the catalog is persisted with new content.
func (s *Snapshot) Generation() uint64 { return s.generation }

// Track returns the metadata of row i.
func (s *Snapshot) Track(i int) Track { return s.tracks[i] }

// Vector returns row i. Callers must not modify it.
func (s *Snapshot) Vector(i int) []float32 {
	return s.vectors[i*s.dim : (i+1)*s.dim]
}

// TextSimilarity is the cosine between the text block of row i and q, where
// q comes from NormalizeTextQuery.
func (s *Snapshot) TextSimilarity(i int, q []float32) float64 {
	text := s.vectors[i*s.dim : i*s.dim+TextDim]
	return dot(text, q) / (norm(text) + normEpsilon)
}

// withRecords returns a new snapshot with records appended and the index
// rebuilt. Records must already be fitted to TextDim.
//
// The new slices may share a backing array with s. Elements past s's length
// are never visible through s, so s stays valid for readers.
func (s *Snapshot) withRecords(records []Record) *Snapshot {
	vectors := s.vectors
	tracks := s.tracks
	for _, rec := range records {
		vectors = append(vectors, composeRow(rec.Embedding)...)
		tracks = append(tracks, rec.Track)
	}
	next := &Snapshot{
		dim:        s.dim,
		vectors:    vectors,
		tracks:     tracks,
		generation: s.generation + 1,
	}
	next.index = newFlatIndex(next.dim, len(tracks), vectors)
	return next
}
