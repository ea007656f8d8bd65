// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/tomtom215/shikisai/internal/ingest"
	"github.com/tomtom215/shikisai/internal/recommend"
)

// ColorRecommendRequest holds the query parameters of GET /api/v1/recommend.
type ColorRecommendRequest struct {
	Hex     string   `json:"hex" validate:"required,colorhex"`
	K       int      `json:"k" validate:"gte=0,lte=100"`
	Valence *float64 `json:"valence" validate:"omitempty,gte=0,lte=1"`
	Arousal *float64 `json:"arousal" validate:"omitempty,gte=0,lte=1"`
	Seed    *int64   `json:"seed"`
	Genres  []string `json:"genre" validate:"max=50,dive,max=64"`
}

// RecommendRequest is the body of POST /api/v1/recommend.
type RecommendRequest struct {
	Embedding   []float32               `json:"embedding" validate:"required"`
	Valence     float64                 `json:"valence" validate:"gte=0,lte=1"`
	Arousal     float64                 `json:"arousal" validate:"gte=0,lte=1"`
	Hex         string                  `json:"hex" validate:"omitempty,colorhex"`
	K           int                     `json:"k" validate:"gte=0,lte=100"`
	Seed        *int64                  `json:"seed"`
	Taste       *recommend.TasteProfile `json:"taste"`
	Genres      [][]string              `json:"genres" validate:"max=500"`
	Preferences *recommend.Preferences  `json:"preferences"`
}

// IngestRequest is the body of POST /api/v1/catalog/tracks.
type IngestRequest struct {
	Tracks []ingest.Source `json:"tracks" validate:"required,min=1,max=1000,dive"`
}

// SearchRequest is the body of POST /api/v1/catalog/search.
type SearchRequest struct {
	Vector []float32 `json:"vector" validate:"required"`
	K      int       `json:"k" validate:"gte=0,lte=200"`
}

// toQuery converts the body to an engine query. An explicit taste wins over
// taste built from genre lists.
func (req *RecommendRequest) toQuery() recommend.Query {
	taste := req.Taste
	if taste == nil && len(req.Genres) > 0 {
		taste = recommend.BuildTasteProfile(req.Genres, recommend.DefaultTopGenres)
	}
	return recommend.Query{
		Embedding:   req.Embedding,
		Valence:     req.Valence,
		Arousal:     req.Arousal,
		ColorHex:    req.Hex,
		Taste:       taste,
		Preferences: req.Preferences,
		Limit:       req.K,
		Seed:        req.Seed,
	}
}

// parseColorRecommendRequest reads the query string. Malformed numbers are
// errors rather than silently defaulted.
func parseColorRecommendRequest(r *http.Request) (*ColorRecommendRequest, error) {
	q := r.URL.Query()
	req := &ColorRecommendRequest{Hex: strings.TrimSpace(q.Get("hex"))}

	if v := q.Get("k"); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("k must be an integer")
		}
		req.K = k
	}
	var err error
	if req.Valence, err = parseOptionalFloat(q.Get("valence"), "valence"); err != nil {
		return nil, err
	}
	if req.Arousal, err = parseOptionalFloat(q.Get("arousal"), "arousal"); err != nil {
		return nil, err
	}
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("seed must be an integer")
		}
		req.Seed = &seed
	}
	for _, g := range q["genre"] {
		for _, part := range strings.Split(g, ",") {
			if part = strings.TrimSpace(part); part != "" {
				req.Genres = append(req.Genres, part)
			}
		}
	}
	return req, nil
}

func parseOptionalFloat(raw, name string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", name)
	}
	return &v, nil
}
