// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

// Package config loads the Shikisai server configuration.
//
// Configuration is layered with koanf: struct defaults first, then an
// optional YAML file, then environment variables. Later layers win.
//
// Example config.yaml:
//
//	server:
//	  port: 8000
//	catalog:
//	  data_dir: /data/catalog
//	encoder:
//	  url: http://clap:9000
//	recommend:
//	  weights:
//	    clap: 1.0
//	    emotion: 1.2
//	  cutoffs:
//	    default: 0.45
//	    per_intent:
//	      dark_moody: 0.38
package config

import (
	"net"
	"strconv"
	"time"

	"github.com/tomtom215/shikisai/internal/catalog"
	"github.com/tomtom215/shikisai/internal/encoder"
	"github.com/tomtom215/shikisai/internal/recommend"
	"github.com/tomtom215/shikisai/internal/supervisor"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Catalog    CatalogConfig    `koanf:"catalog"`
	Journal    JournalConfig    `koanf:"journal"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Encoder    EncoderConfig    `koanf:"encoder"`
	Palette    PaletteConfig    `koanf:"palette"`
	Logging    LoggingConfig    `koanf:"logging"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// CORSOrigins accepts a comma-separated list from the environment.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitReqs requests per RateLimitWindow per client IP.
	// Zero disables rate limiting.
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// MaxBodyBytes caps JSON request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

// CatalogConfig configures catalog storage.
type CatalogConfig struct {
	// DataDir holds the vector and metadata artifacts.
	DataDir string `koanf:"data_dir"`

	// LocalAudioDir is scanned by POST /api/v1/catalog/local.
	// Empty disables the route.
	LocalAudioDir string `koanf:"local_audio_dir"`
}

// JournalConfig configures the catalog batch journal.
type JournalConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Path            string        `koanf:"path"`
	SyncWrites      bool          `koanf:"sync_writes"`
	Compression     bool          `koanf:"compression"`
	Retention       time.Duration `koanf:"retention"`
	CompactInterval time.Duration `koanf:"compact_interval"`
	CloseTimeout    time.Duration `koanf:"close_timeout"`
}

// RecommendConfig mirrors the tunables of recommend.Config.
type RecommendConfig struct {
	Weights                   recommend.Weights `koanf:"weights"`
	EnergyPrior               float64           `koanf:"energy_prior"`
	ArousalBlend              float64           `koanf:"arousal_blend"`
	EmotionDecay              float64           `koanf:"emotion_decay"`
	Cutoffs                   CutoffConfig      `koanf:"cutoffs"`
	BlacklistInstrumentalness float64           `koanf:"blacklist_instrumentalness"`
	TasteBoost                float64           `koanf:"taste_boost"`
	ThemePenalty              float64           `koanf:"theme_penalty"`
	InstrumentalPenalty       float64           `koanf:"instrumental_penalty"`
	PopularityBoost           float64           `koanf:"popularity_boost"`
	DistinctivenessBoost      float64           `koanf:"distinctiveness_boost"`
	PerArtistCap              int               `koanf:"per_artist_cap"`
	ClassicalQuota            int               `koanf:"classical_quota"`
	PoolFactor                int               `koanf:"pool_factor"`
	DefaultLimit              int               `koanf:"default_limit"`
	MaxLimit                  int               `koanf:"max_limit"`
	AvoidGameSoundtracks      bool              `koanf:"avoid_game_soundtracks"`
	Seed                      int64             `koanf:"seed"`
}

// CutoffConfig holds emotion-distance cutoffs keyed by intent name.
type CutoffConfig struct {
	Default   float64            `koanf:"default"`
	PerIntent map[string]float64 `koanf:"per_intent"`
}

// EncoderConfig configures the text embedding server client.
type EncoderConfig struct {
	// URL of the embedding server. Empty disables routes that encode text.
	URL        string        `koanf:"url"`
	Model      string        `koanf:"model"`
	Timeout    time.Duration `koanf:"timeout"`
	RateLimit  float64       `koanf:"rate_limit"`
	Burst      int           `koanf:"burst"`
	MaxRetries int           `koanf:"max_retries"`

	// CacheSize prompt embeddings are kept for CacheTTL. Zero disables.
	CacheSize int           `koanf:"cache_size"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`

	BreakerMaxRequests  uint32        `koanf:"breaker_max_requests"`
	BreakerInterval     time.Duration `koanf:"breaker_interval"`
	BreakerTimeout      time.Duration `koanf:"breaker_timeout"`
	BreakerMinRequests  uint32        `koanf:"breaker_min_requests"`
	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio"`
}

// PaletteConfig selects the color palette.
type PaletteConfig struct {
	// Path to a JSON object of hex to emotions. Empty uses the built-in palette.
	Path string `koanf:"path"`
}

// LoggingConfig configures zerolog.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	// Caller adds file:line to log entries.
	Caller bool `koanf:"caller"`
}

// SupervisorConfig configures the suture tree.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// ToEngineConfig converts the recommend section to a recommend.Config.
func (r *RecommendConfig) ToEngineConfig() *recommend.Config {
	cfg := &recommend.Config{
		Weights:      r.Weights,
		EnergyPrior:  r.EnergyPrior,
		ArousalBlend: r.ArousalBlend,
		EmotionDecay: r.EmotionDecay,
		Cutoffs: recommend.CutoffConfig{
			Default:   r.Cutoffs.Default,
			PerIntent: make(map[recommend.Intent]float64, len(r.Cutoffs.PerIntent)),
		},
		BlacklistInstrumentalness: r.BlacklistInstrumentalness,
		Adjustments: recommend.AdjustmentConfig{
			TasteBoost:           r.TasteBoost,
			ThemePenalty:         r.ThemePenalty,
			InstrumentalPenalty:  r.InstrumentalPenalty,
			PopularityBoost:      r.PopularityBoost,
			DistinctivenessBoost: r.DistinctivenessBoost,
		},
		Selection: recommend.SelectionConfig{
			PerArtistCap:   r.PerArtistCap,
			ClassicalQuota: r.ClassicalQuota,
			PoolFactor:     r.PoolFactor,
		},
		Limits: recommend.LimitsConfig{
			DefaultLimit: r.DefaultLimit,
			MaxLimit:     r.MaxLimit,
		},
		AvoidGameSoundtracks: r.AvoidGameSoundtracks,
		Seed:                 r.Seed,
	}
	for name, v := range r.Cutoffs.PerIntent {
		cfg.Cutoffs.PerIntent[recommend.Intent(name)] = v
	}
	return cfg
}

// ToJournalConfig converts the journal section to a catalog.JournalConfig.
func (j *JournalConfig) ToJournalConfig() catalog.JournalConfig {
	return catalog.JournalConfig{
		Path:         j.Path,
		SyncWrites:   j.SyncWrites,
		Compression:  j.Compression,
		Retention:    j.Retention,
		CloseTimeout: j.CloseTimeout,
	}
}

// ToClientConfig converts the encoder section to an encoder.Config.
func (e *EncoderConfig) ToClientConfig() encoder.Config {
	return encoder.Config{
		BaseURL:    e.URL,
		Model:      e.Model,
		Timeout:    e.Timeout,
		RateLimit:  e.RateLimit,
		Burst:      e.Burst,
		MaxRetries: e.MaxRetries,
	}
}

// ToBreakerConfig converts the encoder breaker settings.
func (e *EncoderConfig) ToBreakerConfig() encoder.BreakerConfig {
	return encoder.BreakerConfig{
		Name:         "encoder",
		MaxRequests:  e.BreakerMaxRequests,
		Interval:     e.BreakerInterval,
		Timeout:      e.BreakerTimeout,
		MinRequests:  e.BreakerMinRequests,
		FailureRatio: e.BreakerFailureRatio,
	}
}

// ToTreeConfig converts the supervisor section to a supervisor.TreeConfig.
func (s *SupervisorConfig) ToTreeConfig() supervisor.TreeConfig {
	return supervisor.TreeConfig{
		FailureThreshold: s.FailureThreshold,
		FailureDecay:     s.FailureDecay,
		FailureBackoff:   s.FailureBackoff,
		ShutdownTimeout:  s.ShutdownTimeout,
	}
}
