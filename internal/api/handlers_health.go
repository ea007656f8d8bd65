// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/shikisai/internal/models"
)

// Health handles GET /api/v1/health. It always answers 200 while the
// process serves requests; status is "degraded" without a catalog index.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := h.healthStatus()
	respondJSON(w, r, http.StatusOK, health, 0)
}

// HealthReady handles GET /api/v1/health/ready. It answers 503 until the
// catalog has an index to search.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	health := h.healthStatus()
	if !health.CatalogLoaded {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeCatalogNotLoaded, "Catalog not loaded", nil)
		return
	}
	respondJSON(w, r, http.StatusOK, health, 0)
}

func (h *Handler) healthStatus() models.HealthStatus {
	snap := h.catalog.Snapshot()
	health := models.HealthStatus{
		Status:            "healthy",
		Version:           Version,
		CatalogTracks:     snap.Len(),
		CatalogLoaded:     h.catalog.Loaded(),
		CatalogGeneration: snap.Generation(),
		EncoderConfigured: h.encoder != nil,
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	if b, ok := h.encoder.(BreakerState); ok {
		health.EncoderState = b.State()
		if health.EncoderState == "open" {
			health.Status = "degraded"
		}
	}
	if !health.CatalogLoaded {
		health.Status = "degraded"
	}
	return health
}
