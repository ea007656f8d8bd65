// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/shikisai/internal/ingest"
	"github.com/tomtom215/shikisai/internal/models"
)

const defaultSearchK = 10

// IngestTracks handles POST /api/v1/catalog/tracks.
func (h *Handler) IngestTracks(w http.ResponseWriter, r *http.Request) {
	if h.ingester == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "No text encoder configured", nil)
		return
	}

	var req IngestRequest
	if !decodeJSON(w, r, h.maxBodyBytes, &req) {
		return
	}
	h.ingest(w, r, req.Tracks)
}

// IngestLocal handles POST /api/v1/catalog/local. It ingests the audio files
// found in the configured local directory.
func (h *Handler) IngestLocal(w http.ResponseWriter, r *http.Request) {
	if h.localAudioDir == "" {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "No local audio directory configured", nil)
		return
	}
	if h.ingester == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "No text encoder configured", nil)
		return
	}

	sources, err := ingest.ScanLocalDir(h.localAudioDir)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to scan local audio directory", err)
		return
	}
	h.ingest(w, r, sources)
}

func (h *Handler) ingest(w http.ResponseWriter, r *http.Request, sources []ingest.Source) {
	start := time.Now()
	res, err := h.ingester.Ingest(r.Context(), sources)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, models.IngestResult{
		Result:        res,
		CatalogTracks: h.catalog.Snapshot().Len(),
	}, time.Since(start))
}

// SearchCatalog handles POST /api/v1/catalog/search with a full catalog vector.
func (h *Handler) SearchCatalog(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req SearchRequest
	if !decodeJSON(w, r, h.maxBodyBytes, &req) {
		return
	}
	k := req.K
	if k == 0 {
		k = defaultSearchK
	}

	matches, err := h.catalog.Search(r.Context(), req.Vector, k)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, models.SearchResult{Matches: matches, Count: len(matches)}, time.Since(start))
}
