// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

/*
Package main is the entry point for the Shikisai server.

Shikisai turns a color into music. A hex color is mapped to emotion words,
the words become a text prompt, a text encoder embeds the prompt, and the
recommendation engine ranks an embedded track catalog against it with mood,
taste and diversity rules.

# Application Architecture

Long-running components run under a Suture v4 supervisor tree:

	RootSupervisor ("shikisai")
	├── DataSupervisor ("data-layer")
	│   └── Journal compactor (when the journal is enabled)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config file and environment
 2. Logging: zerolog with JSON or console output
 3. Journal: optional BadgerDB ingest journal
 4. Catalog: artifacts loaded from the data directory, pending batches replayed
 5. Engine: recommendation pipeline configuration
 6. Encoder: HTTP text encoder behind a circuit breaker (optional)
 7. HTTP Server: Chi router with middleware stack
 8. Supervisor Tree: runs the services until SIGINT or SIGTERM

# Configuration

Configuration is loaded with the highest priority last:
  - Built-in defaults
  - Config file (config.yaml, or the path in CONFIG_PATH)
  - Environment variables (HTTP_PORT, DATA_DIR, ENCODER_URL, LOG_LEVEL, ...)

Without ENCODER_URL the server still answers health, search and explicit
embedding requests; color recommendations and ingestion answer 503.

# Example Usage

	export ENCODER_URL=http://localhost:9000
	export DATA_DIR=/var/lib/shikisai/catalog
	./shikisai

	curl 'http://localhost:8000/api/v1/recommend?hex=%23FFB6C1&k=5'
*/
package main
