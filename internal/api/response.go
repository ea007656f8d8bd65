// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/shikisai/internal/catalog"
	"github.com/tomtom215/shikisai/internal/encoder"
	"github.com/tomtom215/shikisai/internal/logging"
	"github.com/tomtom215/shikisai/internal/models"
	"github.com/tomtom215/shikisai/internal/recommend"
	"github.com/tomtom215/shikisai/internal/validation"
)

// Error codes for API responses
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeValidation         = validation.CodeValidation
	ErrCodeCatalogNotLoaded   = "CATALOG_NOT_LOADED"
	ErrCodeDimensionMismatch  = "DIMENSION_MISMATCH"
	ErrCodeEncoderFailed      = "ENCODER_FAILED"
	ErrCodeTimeout            = "TIMEOUT"
)

// sanitizeLogValue escapes control characters so request data cannot forge
// log lines.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// respondJSON writes a success envelope.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}, queryTime time.Duration) {
	writeEnvelope(w, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: queryTime.Milliseconds(),
			RequestID:   logging.RequestIDFromContext(r.Context()),
		},
	})
}

// respondError writes an error envelope. err is logged, never sent.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	respondAPIError(w, r, status, &models.APIError{Code: code, Message: message}, err)
}

func respondAPIError(w http.ResponseWriter, r *http.Request, status int, apiErr *models.APIError, err error) {
	if err != nil {
		event := logging.Ctx(r.Context()).Warn()
		if status >= http.StatusInternalServerError {
			event = logging.Ctx(r.Context()).Error()
		}
		event.Str("code", apiErr.Code).Str("error", sanitizeLogValue(err.Error())).Msg("API error")
	}
	writeEnvelope(w, status, &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
		Error: apiErr,
	})
}

func writeEnvelope(w http.ResponseWriter, status int, response *models.APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Debug().Err(err).Msg("Failed to write JSON response")
	}
}

// validateRequest runs go-playground/validator on v.
func validateRequest(v interface{}) *models.APIError {
	verr := validation.ValidateStruct(v)
	if verr == nil {
		return nil
	}
	apiErr := verr.ToAPIError()
	return &models.APIError{Code: apiErr.Code, Message: apiErr.Message, Details: apiErr.Details}
}

// decodeJSON reads a JSON body of at most maxBytes into dst and validates it.
// It writes the error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			respondError(w, r, http.StatusRequestEntityTooLarge, ErrCodeBadRequest,
				fmt.Sprintf("Request body exceeds %d bytes", maxBytes), nil)
		case errors.Is(err, io.EOF):
			respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Request body is empty", nil)
		default:
			respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body", err)
		}
		return false
	}
	if apiErr := validateRequest(dst); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr, nil)
		return false
	}
	return true
}

// respondDomainError maps errors from the catalog, engine and encoder to
// HTTP statuses.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *recommend.ValidationError
	var dimErr *catalog.DimensionError
	var statusErr *encoder.StatusError

	switch {
	case errors.As(err, &verr):
		respondAPIError(w, r, http.StatusBadRequest, &models.APIError{
			Code:    ErrCodeValidation,
			Message: verr.Error(),
			Details: map[string]interface{}{"field": verr.Field},
		}, nil)
	case errors.As(err, &dimErr):
		respondAPIError(w, r, http.StatusBadRequest, &models.APIError{
			Code:    ErrCodeDimensionMismatch,
			Message: dimErr.Error(),
			Details: map[string]interface{}{"got": dimErr.Got, "want": dimErr.Want},
		}, nil)
	case errors.Is(err, catalog.ErrNotLoaded):
		respondError(w, r, http.StatusConflict, ErrCodeCatalogNotLoaded,
			"Catalog has no index yet; ingest tracks first", nil)
	case errors.Is(err, encoder.ErrEmptyText):
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Nothing to encode", nil)
	case errors.Is(err, encoder.ErrUnavailable):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Text encoder unavailable", err)
	case errors.As(err, &statusErr), errors.Is(err, encoder.ErrEmptyEmbedding):
		respondError(w, r, http.StatusBadGateway, ErrCodeEncoderFailed, "Text encoder failed", err)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusGatewayTimeout, ErrCodeTimeout, "Request timed out", err)
	case errors.Is(err, context.Canceled):
		// Client went away; the status is never seen.
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Request canceled", nil)
	default:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Internal server error", err)
	}
}
