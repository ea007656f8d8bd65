// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package validation

import (
	"strings"
	"testing"
)

type nested struct {
	Weight *float64 `json:"w_clap" validate:"omitempty,gte=0,lte=10"`
}

type request struct {
	Hex    string   `json:"hex" validate:"omitempty,colorhex"`
	Limit  int      `json:"k" validate:"gte=0,lte=100"`
	ID     string   `json:"external_id" validate:"required,max=8"`
	Tags   []string `json:"tags" validate:"max=2,dive,max=4"`
	Prefs  *nested  `json:"preferences"`
	Hidden string   `json:"-"`
}

func TestGetValidatorSingleton(t *testing.T) {
	t.Parallel()

	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same instance")
	}
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	neg := -1.0
	tests := []struct {
		name  string
		req   request
		field string
		tag   string
	}{
		{"valid", request{Hex: "#FFB6C1", ID: "t1"}, "", ""},
		{"valid without hash", request{Hex: "ffb6c1", ID: "t1", Limit: 100}, "", ""},
		{"bad hex", request{Hex: "#fff", ID: "t1"}, "hex", "colorhex"},
		{"limit too high", request{ID: "t1", Limit: 101}, "k", "lte"},
		{"missing id", request{}, "external_id", "required"},
		{"long id", request{ID: "123456789"}, "external_id", "max"},
		{"too many tags", request{ID: "t1", Tags: []string{"a", "b", "c"}}, "tags", "max"},
		{"long tag", request{ID: "t1", Tags: []string{"toolong"}}, "tags[0]", "max"},
		{"nested weight", request{ID: "t1", Prefs: &nested{Weight: &neg}}, "preferences.w_clap", "gte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			verr := ValidateStruct(&tt.req)
			if tt.field == "" {
				if verr != nil {
					t.Fatalf("unexpected error: %v", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("expected validation error")
			}
			errs := verr.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors: %v", len(errs), verr)
			}
			if errs[0].Field() != tt.field || errs[0].Tag() != tt.tag {
				t.Errorf("error = %s/%s, want %s/%s", errs[0].Field(), errs[0].Tag(), tt.field, tt.tag)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	t.Parallel()

	verr := ValidateStruct(&request{ID: "t1", Limit: 500})
	apiErr := verr.ToAPIError()
	if apiErr.Code != CodeValidation {
		t.Errorf("Code = %q", apiErr.Code)
	}
	if apiErr.Message != "k must be less than or equal to 100" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "k" {
		t.Errorf("Details = %v", apiErr.Details)
	}

	verr = ValidateStruct(&request{Hex: "zz", Limit: -1})
	apiErr = verr.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 3 {
		t.Fatalf("Details = %v", apiErr.Details)
	}
	if !strings.Contains(apiErr.Message, "; ") {
		t.Errorf("Message = %q", apiErr.Message)
	}

	empty := &RequestValidationError{}
	if empty.ToAPIError().Message != "Validation failed" || empty.Error() != "validation failed" {
		t.Error("empty error formatting")
	}
}
