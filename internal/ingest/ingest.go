// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

// Package ingest feeds track sources into the catalog: it describes each
// track in words, encodes the description and appends the result as one
// catalog batch.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shikisai/internal/catalog"
	"github.com/tomtom215/shikisai/internal/encoder"
)

// Source is a track offered for ingestion. Audio features are optional;
// missing ones get the catalog defaults.
type Source struct {
	ID      string   `json:"external_id" validate:"required,max=256"`
	Title   string   `json:"title" validate:"required,max=512"`
	Artists []string `json:"artists" validate:"max=64,dive,max=256"`
	Genres  []string `json:"genres" validate:"max=64,dive,max=128"`

	Valence          *float64 `json:"valence,omitempty" validate:"omitempty,gte=0,lte=1"`
	Energy           *float64 `json:"energy,omitempty" validate:"omitempty,gte=0,lte=1"`
	Instrumentalness *float64 `json:"instrumentalness,omitempty" validate:"omitempty,gte=0,lte=1"`
	Speechiness      *float64 `json:"speechiness,omitempty" validate:"omitempty,gte=0,lte=1"`
	Popularity       *float64 `json:"popularity,omitempty" validate:"omitempty,gte=0,lte=100"`
	ReleaseYear      *int     `json:"release_year,omitempty" validate:"omitempty,gte=1000,lte=3000"`

	Origin string `json:"source,omitempty" validate:"max=64"`
}

// Result summarizes one ingestion run.
type Result struct {
	Offered        int           `json:"offered"`
	Added          int           `json:"added"`
	Skipped        int           `json:"skipped"`
	EncodeFailures int           `json:"encode_failures"`
	Duration       time.Duration `json:"duration_ns"`
}

// Sink receives encoded batches. *catalog.Catalog implements it.
type Sink interface {
	AddBatch(ctx context.Context, records []catalog.Record) (catalog.BatchResult, error)
}

// Ingestor encodes sources and appends them to a sink.
type Ingestor struct {
	encoder encoder.Encoder
	sink    Sink
	logger  zerolog.Logger
}

// New creates an Ingestor.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(enc encoder.Encoder, sink Sink, logger zerolog.Logger) *Ingestor {
	return &Ingestor{
		encoder: enc,
		sink:    sink,
		logger:  logger.With().Str("component", "ingest").Logger(),
	}
}

// Ingest encodes every source and appends the batch. A source that fails to
// encode is counted as a skip and never aborts the run. The returned error is
// a context or catalog persistence failure.
func (in *Ingestor) Ingest(ctx context.Context, sources []Source) (Result, error) {
	start := time.Now()
	res := Result{Offered: len(sources)}

	records := make([]catalog.Record, 0, len(sources))
	for i := range sources {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		src := &sources[i]
		if strings.TrimSpace(src.ID) == "" {
			res.Skipped++
			continue
		}
		vec, err := in.encoder.Encode(ctx, Describe(src.Title, src.Artists, src.Genres))
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			in.logger.Debug().Err(err).Str("id", src.ID).Msg("encode failed, skipping source")
			res.Skipped++
			res.EncodeFailures++
			continue
		}
		records = append(records, catalog.Record{Track: src.Track(), Embedding: vec})
	}

	batch, err := in.sink.AddBatch(ctx, records)
	res.Added = batch.Added
	res.Skipped += batch.Skipped + batch.EncodeFailures
	res.EncodeFailures += batch.EncodeFailures
	res.Duration = time.Since(start)
	if err != nil {
		return res, fmt.Errorf("add batch: %w", err)
	}

	in.logger.Info().
		Int("offered", res.Offered).
		Int("added", res.Added).
		Int("skipped", res.Skipped).
		Int("encode_failures", res.EncodeFailures).
		Dur("duration", res.Duration).
		Msg("ingestion complete")
	return res, nil
}

// Describe renders the text that is embedded for a track.
func Describe(title string, artists, genres []string) string {
	g := "unknown"
	if len(genres) > 0 {
		g = strings.Join(genres, ", ")
	}
	return fmt.Sprintf("Song '%s' by %s. Genres: %s.", title, strings.Join(artists, ", "), g)
}

// Track converts the source to catalog metadata, filling missing features.
func (s *Source) Track() catalog.Track {
	return catalog.Track{
		ID:               s.ID,
		Name:             s.Title,
		Artists:          s.Artists,
		Genres:           s.Genres,
		Valence:          orDefault(s.Valence, catalog.DefaultValence),
		Energy:           orDefault(s.Energy, catalog.DefaultEnergy),
		Instrumentalness: orDefault(s.Instrumentalness, catalog.DefaultInstrumentalness),
		Speechiness:      orDefault(s.Speechiness, catalog.DefaultSpeechiness),
		Popularity:       orDefault(s.Popularity, catalog.DefaultPopularity),
		ReleaseYear:      orDefault(s.ReleaseYear, catalog.DefaultReleaseYear),
		Source:           s.Origin,
	}
}

func orDefault[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}
