// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrNotLoaded is returned by Search before any index has been built or
	// loaded. Ingesting a first batch builds one.
	ErrNotLoaded = errors.New("catalog: index not loaded")

	// ErrDimensionMismatch is matched by every *DimensionError.
	ErrDimensionMismatch = errors.New("catalog: dimension mismatch")

	// ErrCorruptArtifact is returned by Load when the vector matrix or the
	// metadata file cannot be parsed. A corrupt index is rebuilt instead.
	ErrCorruptArtifact = errors.New("catalog: corrupt artifact")

	// ErrJournalClosed is returned by journal operations after Close.
	ErrJournalClosed = errors.New("catalog: journal is closed")

	// ErrEntryNotFound is returned when confirming an unknown journal entry.
	ErrEntryNotFound = errors.New("catalog: journal entry not found")
)

// Reasons a single record is not stored. They are counted in BatchResult,
// never returned.
var (
	errMissingID      = errors.New("missing external id")
	errDuplicateID    = errors.New("duplicate external id")
	errEmptyEmbedding = errors.New("empty embedding")
	errNonFinite      = errors.New("embedding contains NaN or Inf")
	errZeroNorm       = errors.New("embedding has zero norm")
)

// DimensionError reports a vector whose length does not match the catalog.
type DimensionError struct {
	Got  int
	Want int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("catalog: dimension mismatch: got %d, want %d", e.Got, e.Want)
}

// Is makes errors.Is(err, ErrDimensionMismatch) hold.
func (e *DimensionError) Is(target error) bool {
	return target == ErrDimensionMismatch
}
