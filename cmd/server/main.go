// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/shikisai/internal/api"
	"github.com/tomtom215/shikisai/internal/catalog"
	"github.com/tomtom215/shikisai/internal/config"
	"github.com/tomtom215/shikisai/internal/encoder"
	"github.com/tomtom215/shikisai/internal/ingest"
	"github.com/tomtom215/shikisai/internal/logging"
	"github.com/tomtom215/shikisai/internal/mood"
	"github.com/tomtom215/shikisai/internal/recommend"
	"github.com/tomtom215/shikisai/internal/supervisor"
	"github.com/tomtom215/shikisai/internal/supervisor/services"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("data_dir", cfg.Catalog.DataDir).
		Bool("journal", cfg.Journal.Enabled).
		Bool("encoder", cfg.Encoder.URL != "").
		Msg("Starting Shikisai with supervisor tree")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Catalog.DataDir != "" {
		if err := os.MkdirAll(cfg.Catalog.DataDir, 0o750); err != nil {
			logging.Fatal().Err(err).Str("dir", cfg.Catalog.DataDir).Msg("Failed to create data directory")
		}
	}

	var journal *catalog.Journal
	if cfg.Journal.Enabled {
		journal, err = catalog.OpenJournal(cfg.Journal.ToJournalConfig(), logging.WithComponent("journal"))
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to open ingest journal")
		}
		defer func() {
			if err := journal.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing ingest journal")
			}
		}()
	}

	cat := catalog.New(catalog.Options{
		Dir:     cfg.Catalog.DataDir,
		Journal: journal,
		Logger:  logging.Logger(),
	})
	if err := cat.Load(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Failed to load catalog")
	}

	engine, err := recommend.NewEngine(cfg.Recommend.ToEngineConfig(), cat, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}

	palette := mood.DefaultPalette()
	if cfg.Palette.Path != "" {
		palette, err = mood.LoadPalette(cfg.Palette.Path)
		if err != nil {
			logging.Fatal().Err(err).Str("path", cfg.Palette.Path).Msg("Failed to load palette")
		}
	}
	logging.Info().Int("colors", palette.Len()).Msg("Palette loaded")

	deps := api.Dependencies{
		Catalog:        cat,
		Engine:         engine,
		Palette:        palette,
		Logger:         logging.WithComponent("api"),
		LocalAudioDir:  cfg.Catalog.LocalAudioDir,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		RequestTimeout: cfg.Server.WriteTimeout,
	}
	var promptCache *encoder.CachingEncoder
	if cfg.Encoder.URL != "" {
		client, err := encoder.NewClient(cfg.Encoder.ToClientConfig())
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to create encoder client")
		}
		breaker := encoder.NewBreakerClient(client, cfg.Encoder.ToBreakerConfig())
		deps.Encoder = breaker
		if cfg.Encoder.CacheSize > 0 {
			promptCache = encoder.NewCachingEncoder(breaker, cfg.Encoder.CacheSize, cfg.Encoder.CacheTTL)
			deps.Encoder = promptCache
		}
		deps.Ingester = ingest.New(breaker, cat, logging.WithComponent("ingest"))
		logging.Info().Str("url", cfg.Encoder.URL).Str("model", cfg.Encoder.Model).Msg("Text encoder configured")
	} else {
		logging.Warn().Msg("No encoder URL configured; color recommendations and ingestion are disabled")
	}

	handler, err := api.NewHandler(deps)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create API handler")
	}

	mwConfig := api.DefaultChiMiddlewareConfig()
	mwConfig.CORSAllowedOrigins = cfg.Server.CORSOrigins
	mwConfig.RateLimitRequests = cfg.Server.RateLimitReqs
	mwConfig.RateLimitWindow = cfg.Server.RateLimitWindow

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewRouter(handler, api.NewChiMiddleware(mwConfig)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// === BUILD SUPERVISOR TREE ===

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), cfg.Supervisor.ToTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if journal != nil {
		tree.AddDataService(services.NewJournalCompactorService(journal, cfg.Journal.CompactInterval, logging.WithComponent("journal-compactor")))
		logging.Info().Dur("interval", cfg.Journal.CompactInterval).Msg("Journal compactor added to supervisor tree")
	}

	if promptCache != nil {
		tree.AddDataService(services.NewCachePrunerService(promptCache, cfg.Encoder.CacheTTL, logging.WithComponent("cache-pruner")))
		logging.Info().Dur("interval", cfg.Encoder.CacheTTL).Msg("Prompt cache pruner added to supervisor tree")
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logging.WithComponent("http")))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
		err = <-errCh
	case err = <-errCh:
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	engineRequests, engineEmpty := engine.Stats()
	logging.Info().
		Int64("requests", engineRequests).
		Int64("empty", engineEmpty).
		Msg("Application stopped gracefully")
}
