// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package api

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shikisai/internal/catalog"
	"github.com/tomtom215/shikisai/internal/encoder"
	"github.com/tomtom215/shikisai/internal/ingest"
	"github.com/tomtom215/shikisai/internal/mood"
	"github.com/tomtom215/shikisai/internal/recommend"
)

// Version is reported by the health endpoint. Set at build time with
// -ldflags "-X github.com/tomtom215/shikisai/internal/api.Version=...".
var Version = "dev"

// Catalog is the part of *catalog.Catalog the handlers use.
type Catalog interface {
	Snapshot() *catalog.Snapshot
	Loaded() bool
	Search(ctx context.Context, query []float32, k int) ([]catalog.Match, error)
}

// Recommender is satisfied by *recommend.Engine.
type Recommender interface {
	Recommend(ctx context.Context, q recommend.Query) (*recommend.Response, error)
}

// Ingester is satisfied by *ingest.Ingestor.
type Ingester interface {
	Ingest(ctx context.Context, sources []ingest.Source) (ingest.Result, error)
}

// BreakerState reports the encoder circuit breaker state.
type BreakerState interface {
	State() string
}

// Dependencies are the components the handlers serve.
type Dependencies struct {
	Catalog Catalog
	Engine  Recommender
	Palette *mood.Palette
	Logger  zerolog.Logger

	// Encoder and Ingester are nil when no encoder URL is configured; the
	// routes that need them answer 503.
	Encoder  encoder.Encoder
	Ingester Ingester

	// LocalAudioDir enables POST /api/v1/catalog/local.
	LocalAudioDir string

	MaxBodyBytes   int64
	RequestTimeout time.Duration
}

// Handler serves the HTTP API.
type Handler struct {
	catalog        Catalog
	engine         Recommender
	palette        *mood.Palette
	encoder        encoder.Encoder
	ingester       Ingester
	localAudioDir  string
	maxBodyBytes   int64
	requestTimeout time.Duration
	logger         zerolog.Logger
	startTime      time.Time
}

// NewHandler checks deps and creates a Handler.
//
//nolint:gocritic // Dependencies is built once at startup
func NewHandler(deps Dependencies) (*Handler, error) {
	if deps.Catalog == nil {
		return nil, errors.New("api: catalog is required")
	}
	if deps.Engine == nil {
		return nil, errors.New("api: engine is required")
	}
	if deps.Palette == nil {
		deps.Palette = mood.DefaultPalette()
	}
	if deps.MaxBodyBytes <= 0 {
		deps.MaxBodyBytes = 8 << 20
	}
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = 30 * time.Second
	}
	return &Handler{
		catalog:        deps.Catalog,
		engine:         deps.Engine,
		palette:        deps.Palette,
		encoder:        deps.Encoder,
		ingester:       deps.Ingester,
		localAudioDir:  deps.LocalAudioDir,
		maxBodyBytes:   deps.MaxBodyBytes,
		requestTimeout: deps.RequestTimeout,
		logger:         deps.Logger.With().Str("component", "api").Logger(),
		startTime:      time.Now(),
	}, nil
}
