// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package recommend

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shikisai/internal/catalog"
	"github.com/tomtom215/shikisai/internal/logging"
	"github.com/tomtom215/shikisai/internal/metrics"
)

// SpotifyTrackURL is the external link template for catalog ids.
const SpotifyTrackURL = "https://open.spotify.com/track/"

// CatalogSource provides the snapshot a request runs against.
// *catalog.Catalog implements it.
type CatalogSource interface {
	Snapshot() *catalog.Snapshot
}

// Engine runs the filter, score and select pipeline. It is safe for
// concurrent use; requests share nothing mutable except the seed generator.
type Engine struct {
	config *Config
	source CatalogSource
	logger zerolog.Logger

	requestCount atomic.Int64
	emptyCount   atomic.Int64

	// Random source for unseeded requests (protected by rngMu)
	rng   *rand.Rand
	rngMu sync.Mutex
}

// NewEngine creates a recommendation engine over source.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, source CatalogSource, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if source == nil {
		return nil, fmt.Errorf("catalog source is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = 42
	}

	return &Engine{
		config: cfg.Clone(),
		source: source,
		logger: logger.With().Str("component", "recommend").Logger(),
		rng:    rand.New(rand.NewSource(seed)), //nolint:gosec // math/rand is fine for recommendation shuffling
	}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Stats returns the number of requests served and how many were empty.
func (e *Engine) Stats() (requests, empty int64) {
	return e.requestCount.Load(), e.emptyCount.Load()
}

// Recommend runs the pipeline for q against the current catalog snapshot.
// An empty or fully filtered catalog yields an empty list, not an error.
//
//nolint:gocritic // hugeParam: q passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, q Query) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	if err := e.validate(&q); err != nil {
		return nil, err
	}
	q = e.prepareQuery(q)
	seed := e.seedFor(q)
	logger := e.createRequestLogger(ctx, q)

	snap := e.source.Snapshot()
	intent := ClassifyHex(q.ColorHex)
	intentW := intentTable[intent]
	weights, prior := e.config.resolve(q.Preferences)
	arousal := e.config.ArousalBlend*q.Arousal + (1-e.config.ArousalBlend)*prior

	resp := &Response{
		Items:           []Recommendation{},
		Intent:          intent,
		AdjustedArousal: arousal,
	}

	cands := make([]Candidate, snap.Len())
	for i := range cands {
		cands[i] = newCandidate(i, snap.Track(i), q.Valence, arousal)
	}
	resp.Stages.Total = len(cands)

	filters := []Filter{
		BlacklistFilter(e.config.BlacklistInstrumentalness),
		EmotionFilter(e.config.Cutoffs.For(intent)),
		GameFilter(e.avoidGames(q.Taste)),
	}
	stageCounts := []*int{&resp.Stages.AfterBlacklist, &resp.Stages.AfterEmotion, &resp.Stages.AfterGame}
	for i, f := range filters {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("filter %s: %w", f.Name, err)
		}
		cands = f.apply(cands)
		*stageCounts[i] = len(cands)
	}

	if len(cands) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("score candidates: %w", err)
		}
		query := catalog.NormalizeTextQuery(q.Embedding)
		scorer := &Scorer{
			Weights:     weights,
			Intent:      intent,
			IntentW:     intentW,
			Adjustments: e.config.Adjustments,
			Decay:       e.config.EmotionDecay,
			Arousal:     arousal,
			Similarity: func(row int) float64 {
				return snap.TextSimilarity(row, query)
			},
		}
		scorer.WithTaste(q.Taste)
		for i := range cands {
			scorer.Score(&cands[i])
		}

		rng := rand.New(rand.NewSource(seed)) //nolint:gosec // per-request shuffle source
		for _, c := range Select(cands, q.Limit, e.config.Selection, rng) {
			resp.Items = append(resp.Items, toRecommendation(c))
		}
	}
	resp.Stages.Selected = len(resp.Items)
	if len(resp.Items) == 0 {
		e.emptyCount.Add(1)
	}

	resp.Metadata = ResponseMetadata{
		RequestID:         q.RequestID,
		Seed:              seed,
		CatalogGeneration: snap.Generation(),
		LatencyMS:         time.Since(start).Milliseconds(),
		Timestamp:         time.Now(),
	}

	metrics.RecordRecommend(intent.String(), time.Since(start), map[string]int{
		"total":           resp.Stages.Total,
		"after_blacklist": resp.Stages.AfterBlacklist,
		"after_emotion":   resp.Stages.AfterEmotion,
		"after_game":      resp.Stages.AfterGame,
		"selected":        resp.Stages.Selected,
	})

	logger.Debug().
		Str("intent", intent.String()).
		Float64("adjusted_arousal", arousal).
		Int("total", resp.Stages.Total).
		Int("after_blacklist", resp.Stages.AfterBlacklist).
		Int("after_emotion", resp.Stages.AfterEmotion).
		Int("after_game", resp.Stages.AfterGame).
		Int("selected", resp.Stages.Selected).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

// validate rejects queries that cannot be served.
func (e *Engine) validate(q *Query) error {
	if len(q.Embedding) < catalog.TextDim {
		return &ValidationError{
			Field:   "embedding",
			Message: fmt.Sprintf("need at least %d values, got %d", catalog.TextDim, len(q.Embedding)),
		}
	}
	for _, v := range q.Embedding[:catalog.TextDim] {
		if f := float64(v); math.IsNaN(f) || math.IsInf(f, 0) {
			return &ValidationError{Field: "embedding", Message: "contains a non-finite value"}
		}
	}
	if !inUnit(q.Valence) {
		return &ValidationError{Field: "valence", Message: fmt.Sprintf("must be in [0, 1], got %v", q.Valence)}
	}
	if !inUnit(q.Arousal) {
		return &ValidationError{Field: "arousal", Message: fmt.Sprintf("must be in [0, 1], got %v", q.Arousal)}
	}
	if p := q.Preferences; p != nil {
		for name, w := range map[string]*float64{
			"w_clap":        p.WClap,
			"w_emotion":     p.WEmotion,
			"w_modern":      p.WModern,
			"w_energy_pref": p.WEnergyPref,
		} {
			if w != nil && (*w < 0 || math.IsNaN(*w) || math.IsInf(*w, 0)) {
				return &ValidationError{Field: "preferences." + name, Message: "must be a non-negative number"}
			}
		}
		if p.EnergyPref != nil && !inUnit(*p.EnergyPref) {
			return &ValidationError{Field: "preferences.energy_pref", Message: "must be in [0, 1]"}
		}
	}
	return nil
}

// prepareQuery applies defaults and generates a request ID if needed.
//
//nolint:gocritic // hugeParam: q passed by value for immutability
func (e *Engine) prepareQuery(q Query) Query {
	if q.RequestID == "" {
		q.RequestID = logging.GenerateRequestID()
	}
	if q.Limit <= 0 {
		q.Limit = e.config.Limits.DefaultLimit
	}
	if q.Limit > e.config.Limits.MaxLimit {
		q.Limit = e.config.Limits.MaxLimit
	}
	return q
}

// seedFor returns the request seed, drawing one from the engine generator
// when the query has none.
//
//nolint:gocritic // hugeParam: q passed by value for immutability
func (e *Engine) seedFor(q Query) int64 {
	if q.Seed != nil {
		return *q.Seed
	}
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return e.rng.Int63()
}

func (e *Engine) avoidGames(taste *TasteProfile) bool {
	if taste != nil && taste.AvoidGameSoundtracks != nil {
		return *taste.AvoidGameSoundtracks
	}
	return e.config.AvoidGameSoundtracks
}

// createRequestLogger creates a logger with request context.
//
//nolint:gocritic // hugeParam: q passed by value for immutability
func (e *Engine) createRequestLogger(ctx context.Context, q Query) zerolog.Logger {
	lc := e.logger.With().Str("request_id", q.RequestID)
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		lc = lc.Str("correlation_id", id)
	}
	return lc.Logger()
}

//nolint:gocritic // hugeParam: Candidate copied into the response
func toRecommendation(c Candidate) Recommendation {
	artists := c.Track.Artists
	if artists == nil {
		artists = []string{}
	}
	return Recommendation{
		ID:          c.Track.ID,
		Name:        c.Track.Name,
		Artists:     artists,
		ExternalURL: SpotifyTrackURL + c.Track.ID,
		Score:       c.Score,
	}
}

func inUnit(x float64) bool {
	return x >= 0 && x <= 1
}
