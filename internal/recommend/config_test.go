// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package recommend

import (
	"math"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	if cfg.Weights != (Weights{Clap: 1.0, Emotion: 1.0, Modern: 0.5, EnergyPref: 0.3}) {
		t.Errorf("Weights = %+v", cfg.Weights)
	}

	cutoffs := map[Intent]float64{
		IntentWarmSoft:      0.45,
		IntentCoolSoft:      0.42,
		IntentDarkMoody:     0.40,
		IntentBrightPlayful: 0.45,
		IntentChaoticEnergy: 0.45,
	}
	for intent, want := range cutoffs {
		if got := cfg.Cutoffs.For(intent); got != want {
			t.Errorf("Cutoffs.For(%s) = %v, want %v", intent, got, want)
		}
	}

	if !cfg.AvoidGameSoundtracks {
		t.Error("AvoidGameSoundtracks should default to true")
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative weight", func(c *Config) { c.Weights.Clap = -1 }},
		{"NaN weight", func(c *Config) { c.Weights.Modern = math.NaN() }},
		{"energy prior above one", func(c *Config) { c.EnergyPrior = 1.5 }},
		{"arousal blend negative", func(c *Config) { c.ArousalBlend = -0.1 }},
		{"zero decay", func(c *Config) { c.EmotionDecay = 0 }},
		{"zero default cutoff", func(c *Config) { c.Cutoffs.Default = 0 }},
		{"unknown cutoff intent", func(c *Config) { c.Cutoffs.PerIntent["sparkly"] = 0.3 }},
		{"negative intent cutoff", func(c *Config) { c.Cutoffs.PerIntent[IntentCoolSoft] = -0.3 }},
		{"blacklist threshold", func(c *Config) { c.BlacklistInstrumentalness = 2 }},
		{"artist cap", func(c *Config) { c.Selection.PerArtistCap = 0 }},
		{"classical quota", func(c *Config) { c.Selection.ClassicalQuota = -1 }},
		{"pool factor", func(c *Config) { c.Selection.PoolFactor = 0 }},
		{"default limit", func(c *Config) { c.Limits.DefaultLimit = 0 }},
		{"max below default", func(c *Config) { c.Limits.MaxLimit = 5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.Cutoffs.PerIntent[IntentWarmSoft] = 0.1
	clone.Weights.Clap = 3

	if cfg.Cutoffs.PerIntent[IntentWarmSoft] != 0.45 {
		t.Error("Clone shares the cutoff map")
	}
	if cfg.Weights.Clap != 1.0 {
		t.Error("Clone shares weights")
	}
}

func TestConfigResolve(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	w, prior := cfg.resolve(nil)
	if w != cfg.Weights || prior != 0.3 {
		t.Errorf("resolve(nil) = %+v, %v", w, prior)
	}

	clap, energy := 2.0, 0.8
	w, prior = cfg.resolve(&Preferences{WClap: &clap, EnergyPref: &energy})
	if w.Clap != 2.0 || w.Emotion != 1.0 || w.Modern != 0.5 || w.EnergyPref != 0.3 {
		t.Errorf("resolve overrides = %+v", w)
	}
	if prior != 0.8 {
		t.Errorf("prior = %v, want 0.8", prior)
	}
}
