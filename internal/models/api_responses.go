// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

// Package models holds the JSON shapes returned by the HTTP API.
package models

import (
	"time"

	"github.com/tomtom215/shikisai/internal/catalog"
	"github.com/tomtom215/shikisai/internal/ingest"
	"github.com/tomtom215/shikisai/internal/recommend"
)

// APIResponse wraps every HTTP response.
//
// Status is "success" or "error". Error is set only for errors.
//
//	{
//	  "status": "error",
//	  "data": null,
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z", "request_id": "..."},
//	  "error": {"code": "CATALOG_NOT_LOADED", "message": "..."}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata is attached to every response.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}

// APIError is the error part of the envelope.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is returned by the health endpoints.
type HealthStatus struct {
	Status            string  `json:"status"`
	Version           string  `json:"version"`
	CatalogTracks     int     `json:"catalog_tracks"`
	CatalogLoaded     bool    `json:"catalog_loaded"`
	CatalogGeneration uint64  `json:"catalog_generation"`
	EncoderConfigured bool    `json:"encoder_configured"`
	EncoderState      string  `json:"encoder_state,omitempty"`
	Uptime            float64 `json:"uptime_seconds"`
}

// VAD is the valence/arousal pair used for a color request.
type VAD struct {
	Valence float64 `json:"valence"`
	Arousal float64 `json:"arousal"`
}

// ColorRecommendations is the result of GET /api/v1/recommend.
type ColorRecommendations struct {
	Hex             string                     `json:"hex"`
	Prompt          string                     `json:"prompt"`
	Emotions        string                     `json:"emotions"`
	VAD             VAD                        `json:"vad"`
	Intent          recommend.Intent           `json:"intent"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
	Stages          recommend.StageCounts      `json:"stages"`
	Seed            int64                      `json:"seed"`
}

// IngestResult is returned by the catalog ingestion endpoints.
type IngestResult struct {
	ingest.Result
	CatalogTracks int `json:"catalog_tracks"`
}

// SearchResult is returned by POST /api/v1/catalog/search.
type SearchResult struct {
	Matches []catalog.Match `json:"matches"`
	Count   int             `json:"count"`
}
