// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/shikisai/internal/catalog"
	"github.com/tomtom215/shikisai/internal/logging"
	"github.com/tomtom215/shikisai/internal/models"
	"github.com/tomtom215/shikisai/internal/mood"
	"github.com/tomtom215/shikisai/internal/recommend"
)

// RecommendByColor handles GET /api/v1/recommend?hex=&k=&valence=&arousal=&seed=&genre=
//
// The palette turns the color into a prompt, the encoder embeds it and the
// engine ranks the catalog. Valence and arousal default to the palette's
// emotion words.
func (h *Handler) RecommendByColor(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, err := parseColorRecommendRequest(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}
	if h.encoder == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "No text encoder configured", nil)
		return
	}

	prompt, emotions := h.palette.Prompt(req.Hex)
	vad := mood.EmotionsToVAD(emotions)
	valence, arousal := vad.Valence, vad.Arousal
	if req.Valence != nil {
		valence = *req.Valence
	}
	if req.Arousal != nil {
		arousal = *req.Arousal
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	embedding, err := h.encoder.Encode(ctx, prompt)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	query := recommend.Query{
		Embedding: catalog.FitText(embedding),
		Valence:   valence,
		Arousal:   arousal,
		ColorHex:  req.Hex,
		Limit:     req.K,
		Seed:      req.Seed,
		RequestID: logging.RequestIDFromContext(r.Context()),
	}
	if len(req.Genres) > 0 {
		query.Taste = recommend.BuildTasteProfile([][]string{req.Genres}, recommend.DefaultTopGenres)
	}

	resp, err := h.engine.Recommend(ctx, query)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, models.ColorRecommendations{
		Hex:             req.Hex,
		Prompt:          prompt,
		Emotions:        emotions,
		VAD:             models.VAD{Valence: valence, Arousal: arousal},
		Intent:          resp.Intent,
		Recommendations: resp.Items,
		Stages:          resp.Stages,
		Seed:            resp.Metadata.Seed,
	}, time.Since(start))
}

// Recommend handles POST /api/v1/recommend with an explicit embedding.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req RecommendRequest
	if !decodeJSON(w, r, h.maxBodyBytes, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	query := req.toQuery()
	query.RequestID = logging.RequestIDFromContext(r.Context())
	resp, err := h.engine.Recommend(ctx, query)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, resp, time.Since(start))
}
