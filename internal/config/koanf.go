// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/shikisai/internal/encoder"
	"github.com/tomtom215/shikisai/internal/recommend"
	"github.com/tomtom215/shikisai/internal/supervisor"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/shikisai/config.yaml",
	"/etc/shikisai/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	rec := recommend.DefaultConfig()
	perIntent := make(map[string]float64, len(rec.Cutoffs.PerIntent))
	for intent, v := range rec.Cutoffs.PerIntent {
		perIntent[string(intent)] = v
	}
	breaker := encoder.DefaultBreakerConfig()
	tree := supervisor.DefaultTreeConfig()

	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			MaxBodyBytes:    8 << 20, // 8MB, a batch of tracks with embeddings
		},
		Catalog: CatalogConfig{
			DataDir:       "data/catalog",
			LocalAudioDir: "",
		},
		Journal: JournalConfig{
			Enabled:         true,
			Path:            "data/journal",
			SyncWrites:      true,
			Compression:     true,
			Retention:       24 * time.Hour,
			CompactInterval: time.Hour,
			CloseTimeout:    30 * time.Second,
		},
		Recommend: RecommendConfig{
			Weights:      rec.Weights,
			EnergyPrior:  rec.EnergyPrior,
			ArousalBlend: rec.ArousalBlend,
			EmotionDecay: rec.EmotionDecay,
			Cutoffs: CutoffConfig{
				Default:   rec.Cutoffs.Default,
				PerIntent: perIntent,
			},
			BlacklistInstrumentalness: rec.BlacklistInstrumentalness,
			TasteBoost:                rec.Adjustments.TasteBoost,
			ThemePenalty:              rec.Adjustments.ThemePenalty,
			InstrumentalPenalty:       rec.Adjustments.InstrumentalPenalty,
			PopularityBoost:           rec.Adjustments.PopularityBoost,
			DistinctivenessBoost:      rec.Adjustments.DistinctivenessBoost,
			PerArtistCap:              rec.Selection.PerArtistCap,
			ClassicalQuota:            rec.Selection.ClassicalQuota,
			PoolFactor:                rec.Selection.PoolFactor,
			DefaultLimit:              rec.Limits.DefaultLimit,
			MaxLimit:                  rec.Limits.MaxLimit,
			AvoidGameSoundtracks:      rec.AvoidGameSoundtracks,
			Seed:                      rec.Seed,
		},
		Encoder: EncoderConfig{
			URL:                 "",
			Model:               "clap",
			Timeout:             10 * time.Second,
			RateLimit:           20,
			Burst:               5,
			MaxRetries:          3,
			CacheSize:           1024,
			CacheTTL:            time.Hour,
			BreakerMaxRequests:  breaker.MaxRequests,
			BreakerInterval:     breaker.Interval,
			BreakerTimeout:      breaker.Timeout,
			BreakerMinRequests:  breaker.MinRequests,
			BreakerFailureRatio: breaker.FailureRatio,
		},
		Palette: PaletteConfig{
			Path: "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: tree.FailureThreshold,
			FailureDecay:     tree.FailureDecay,
			FailureBackoff:   tree.FailureBackoff,
			ShutdownTimeout:  tree.ShutdownTimeout,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf with layered sources:
//  1. Default values (from struct)
//  2. Config file (optional, YAML)
//  3. Environment variables (highest priority)
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables
	// HTTP_PORT -> server.port, W_CLAP -> recommend.weights.clap
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "" if none.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_host":         "server.host",
	"http_port":         "server.port",
	"http_timeout":      "server.write_timeout",
	"cors_origins":      "server.cors_origins",
	"rate_limit_reqs":   "server.rate_limit_reqs",
	"rate_limit_window": "server.rate_limit_window",
	"max_body_bytes":    "server.max_body_bytes",

	// Catalog
	"data_dir":        "catalog.data_dir",
	"local_audio_dir": "catalog.local_audio_dir",

	// Journal
	"journal_enabled":          "journal.enabled",
	"journal_path":             "journal.path",
	"journal_sync_writes":      "journal.sync_writes",
	"journal_retention":        "journal.retention",
	"journal_compact_interval": "journal.compact_interval",

	// Recommendation
	"w_clap":                     "recommend.weights.clap",
	"w_emotion":                  "recommend.weights.emotion",
	"w_modern":                   "recommend.weights.modern",
	"w_energy_pref":              "recommend.weights.energy_pref",
	"energy_pref":                "recommend.energy_prior",
	"emotion_cutoff":             "recommend.cutoffs.default",
	"recommend_default_limit":    "recommend.default_limit",
	"recommend_max_limit":        "recommend.max_limit",
	"recommend_per_artist_cap":   "recommend.per_artist_cap",
	"recommend_classical_quota":  "recommend.classical_quota",
	"avoid_game_soundtracks":     "recommend.avoid_game_soundtracks",
	"recommend_seed":             "recommend.seed",
	"blacklist_instrumentalness": "recommend.blacklist_instrumentalness",

	// Encoder
	"encoder_url":         "encoder.url",
	"encoder_model":       "encoder.model",
	"encoder_timeout":     "encoder.timeout",
	"encoder_rate_limit":  "encoder.rate_limit",
	"encoder_max_retries": "encoder.max_retries",
	"encoder_cache_size":  "encoder.cache_size",
	"encoder_cache_ttl":   "encoder.cache_ttl",

	// Palette
	"palette_path": "palette.path",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Supervisor
	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",
}

// envTransformFunc maps environment variable names to koanf paths.
// Unmapped variables return "" and are skipped so unrelated environment
// does not leak into the configuration.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
