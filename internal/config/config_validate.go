// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package config

import (
	"fmt"
	"net/url"
)

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateJournal(); err != nil {
		return err
	}
	if err := c.validateEncoder(); err != nil {
		return err
	}
	if err := c.Recommend.ToEngineConfig().Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RateLimitReqs < 0 {
		return fmt.Errorf("RATE_LIMIT_REQS must be non-negative")
	}
	if c.Server.RateLimitReqs > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive when rate limiting is enabled")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required")
	}
	return nil
}

func (c *Config) validateJournal() error {
	if !c.Journal.Enabled {
		return nil
	}
	if c.Journal.Path == "" {
		return fmt.Errorf("JOURNAL_PATH is required when JOURNAL_ENABLED=true")
	}
	if c.Journal.Retention <= 0 {
		return fmt.Errorf("JOURNAL_RETENTION must be positive")
	}
	if c.Journal.CompactInterval <= 0 {
		return fmt.Errorf("JOURNAL_COMPACT_INTERVAL must be positive")
	}
	return nil
}

func (c *Config) validateEncoder() error {
	if c.Encoder.URL != "" {
		u, err := url.Parse(c.Encoder.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("ENCODER_URL must be an http(s) URL, got %q", c.Encoder.URL)
		}
	}
	if c.Encoder.Timeout <= 0 {
		return fmt.Errorf("ENCODER_TIMEOUT must be positive")
	}
	if c.Encoder.RateLimit < 0 {
		return fmt.Errorf("ENCODER_RATE_LIMIT must be non-negative")
	}
	if c.Encoder.MaxRetries < 0 {
		return fmt.Errorf("ENCODER_MAX_RETRIES must be non-negative")
	}
	if c.Encoder.CacheSize < 0 {
		return fmt.Errorf("ENCODER_CACHE_SIZE must be non-negative")
	}
	if c.Encoder.BreakerFailureRatio <= 0 || c.Encoder.BreakerFailureRatio > 1 {
		return fmt.Errorf("encoder breaker_failure_ratio must be in (0, 1]")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
