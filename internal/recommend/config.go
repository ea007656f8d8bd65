// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package recommend

import (
	"fmt"
	"math"
)

// Config contains all tunables of the recommendation pipeline.
type Config struct {
	// Weights are the default base-score coefficients. Query.Preferences
	// overrides them per request.
	Weights Weights

	// EnergyPrior is the listener energy preference blended into arousal.
	EnergyPrior float64

	// ArousalBlend is the share of the requested arousal in the adjusted
	// arousal; the rest comes from EnergyPrior.
	ArousalBlend float64

	// EmotionDecay is the rate of the exponential emotion score.
	EmotionDecay float64

	Cutoffs CutoffConfig

	// BlacklistInstrumentalness is the instrumentalness above which a
	// blacklisted track is purged.
	BlacklistInstrumentalness float64

	Adjustments AdjustmentConfig
	Selection   SelectionConfig
	Limits      LimitsConfig

	// AvoidGameSoundtracks is the default when a taste profile does not say.
	AvoidGameSoundtracks bool

	// Seed initializes the engine generator that seeds unseeded requests.
	// Zero means 42.
	Seed int64
}

// CutoffConfig holds the maximum emotion distance per intent.
type CutoffConfig struct {
	Default   float64
	PerIntent map[Intent]float64
}

// For returns the cutoff for an intent.
func (c CutoffConfig) For(intent Intent) float64 {
	if v, ok := c.PerIntent[intent]; ok {
		return v
	}
	return c.Default
}

// AdjustmentConfig holds the magnitudes of the post-base adjustments.
type AdjustmentConfig struct {
	TasteBoost           float64
	ThemePenalty         float64
	InstrumentalPenalty  float64
	PopularityBoost      float64
	DistinctivenessBoost float64
}

// SelectionConfig bounds diversity during selection.
type SelectionConfig struct {
	// PerArtistCap is the maximum number of tracks per artist group.
	PerArtistCap int

	// ClassicalQuota is the maximum number of classical pieces.
	ClassicalQuota int

	// PoolFactor sizes the pool walked for the final name dedup, as a
	// multiple of the limit.
	PoolFactor int
}

// LimitsConfig bounds the result size.
type LimitsConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: Weights{
			Clap:       1.0,
			Emotion:    1.0,
			Modern:     0.5,
			EnergyPref: 0.3,
		},
		EnergyPrior:  0.3,
		ArousalBlend: 0.7,
		EmotionDecay: 3.5,
		Cutoffs: CutoffConfig{
			Default: 0.45,
			PerIntent: map[Intent]float64{
				IntentWarmSoft:  0.45,
				IntentCoolSoft:  0.42,
				IntentDarkMoody: 0.40,
			},
		},
		BlacklistInstrumentalness: 0.75,
		Adjustments: AdjustmentConfig{
			TasteBoost:           0.35,
			ThemePenalty:         0.6,
			InstrumentalPenalty:  0.35,
			PopularityBoost:      0.15,
			DistinctivenessBoost: 0.35,
		},
		Selection: SelectionConfig{
			PerArtistCap:   2,
			ClassicalQuota: 2,
			PoolFactor:     2,
		},
		Limits: LimitsConfig{
			DefaultLimit: 10,
			MaxLimit:     100,
		},
		AvoidGameSoundtracks: true,
		Seed:                 42,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	weights := map[string]float64{
		"weights.clap":        c.Weights.Clap,
		"weights.emotion":     c.Weights.Emotion,
		"weights.modern":      c.Weights.Modern,
		"weights.energy_pref": c.Weights.EnergyPref,
	}
	for name, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%s must be a non-negative number, got %f", name, w)
		}
	}

	if c.EnergyPrior < 0 || c.EnergyPrior > 1 {
		return fmt.Errorf("energy_prior must be in [0, 1], got %f", c.EnergyPrior)
	}
	if c.ArousalBlend < 0 || c.ArousalBlend > 1 {
		return fmt.Errorf("arousal_blend must be in [0, 1], got %f", c.ArousalBlend)
	}
	if c.EmotionDecay <= 0 {
		return fmt.Errorf("emotion_decay must be positive, got %f", c.EmotionDecay)
	}

	if c.Cutoffs.Default <= 0 {
		return fmt.Errorf("cutoffs.default must be positive, got %f", c.Cutoffs.Default)
	}
	for intent, v := range c.Cutoffs.PerIntent {
		if _, ok := intentTable[intent]; !ok {
			return fmt.Errorf("cutoffs: unknown intent %q", intent)
		}
		if v <= 0 {
			return fmt.Errorf("cutoffs.%s must be positive, got %f", intent, v)
		}
	}

	if c.BlacklistInstrumentalness < 0 || c.BlacklistInstrumentalness > 1 {
		return fmt.Errorf("blacklist_instrumentalness must be in [0, 1], got %f", c.BlacklistInstrumentalness)
	}

	if c.Selection.PerArtistCap < 1 {
		return fmt.Errorf("selection.per_artist_cap must be positive, got %d", c.Selection.PerArtistCap)
	}
	if c.Selection.ClassicalQuota < 0 {
		return fmt.Errorf("selection.classical_quota must be non-negative, got %d", c.Selection.ClassicalQuota)
	}
	if c.Selection.PoolFactor < 1 {
		return fmt.Errorf("selection.pool_factor must be positive, got %d", c.Selection.PoolFactor)
	}

	if c.Limits.DefaultLimit < 1 {
		return fmt.Errorf("limits.default_limit must be positive, got %d", c.Limits.DefaultLimit)
	}
	if c.Limits.MaxLimit < c.Limits.DefaultLimit {
		return fmt.Errorf("limits.max_limit must be >= limits.default_limit, got %d < %d", c.Limits.MaxLimit, c.Limits.DefaultLimit)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	if c.Cutoffs.PerIntent != nil {
		out.Cutoffs.PerIntent = make(map[Intent]float64, len(c.Cutoffs.PerIntent))
		for k, v := range c.Cutoffs.PerIntent {
			out.Cutoffs.PerIntent[k] = v
		}
	}
	return &out
}

// resolve applies per-request preferences over the configured weights.
func (c *Config) resolve(p *Preferences) (Weights, float64) {
	w := c.Weights
	prior := c.EnergyPrior
	if p == nil {
		return w, prior
	}
	if p.WClap != nil {
		w.Clap = *p.WClap
	}
	if p.WEmotion != nil {
		w.Emotion = *p.WEmotion
	}
	if p.WModern != nil {
		w.Modern = *p.WModern
	}
	if p.WEnergyPref != nil {
		w.EnergyPref = *p.WEnergyPref
	}
	if p.EnergyPref != nil {
		prior = *p.EnergyPref
	}
	return w, prior
}
