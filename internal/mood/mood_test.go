// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package mood

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPaletteEmotions(t *testing.T) {
	t.Parallel()

	p, err := NewPalette(map[string]string{
		"#FF0000": "passionate, intense",
		"0000ff":  "calm, mysterious",
	})
	if err != nil {
		t.Fatalf("NewPalette: %v", err)
	}

	tests := []struct {
		name string
		hex  string
		want string
	}{
		{"exact", "#ff0000", "passionate, intense"},
		{"exact without hash", "0000FF", "calm, mysterious"},
		{"nearest red", "#e01010", "passionate, intense"},
		{"nearest blue", "#1010a0", "calm, mysterious"},
		{"unparseable", "teal", FallbackEmotions},
		{"empty", "", FallbackEmotions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := p.Emotions(tt.hex); got != tt.want {
				t.Errorf("Emotions(%q) = %q, want %q", tt.hex, got, tt.want)
			}
		})
	}
}

func TestPaletteEmptyAndInvalid(t *testing.T) {
	t.Parallel()

	empty, err := NewPalette(nil)
	if err != nil {
		t.Fatalf("NewPalette(nil): %v", err)
	}
	if got := empty.Emotions("#123456"); got != FallbackEmotions {
		t.Errorf("empty palette = %q", got)
	}

	if _, err := NewPalette(map[string]string{"#12": "sad"}); err == nil {
		t.Error("expected error for short hex key")
	}
}

func TestDefaultPalette(t *testing.T) {
	t.Parallel()

	p := DefaultPalette()
	if p.Len() == 0 {
		t.Fatal("default palette is empty")
	}
	// every default entry resolves to at least one known word
	for hex := range defaultPalette {
		if v := EmotionsToVAD(p.Emotions(hex)); v == Neutral && !strings.Contains(p.Emotions(hex), "neutral") {
			t.Errorf("%s has no known emotion word: %q", hex, p.Emotions(hex))
		}
	}
}

func TestLoadPalette(t *testing.T) {
	t.Parallel()

	p, err := LoadPalette("")
	if err != nil || p.Len() != len(defaultPalette) {
		t.Fatalf("LoadPalette(\"\") = %d entries, %v", p.Len(), err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "palette.json")
	if err := os.WriteFile(path, []byte(`{"#00ff00": "fresh, vibrant"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	p, err = LoadPalette(path)
	if err != nil {
		t.Fatalf("LoadPalette: %v", err)
	}
	if got := p.Emotions("#00ee00"); got != "fresh, vibrant" {
		t.Errorf("Emotions = %q", got)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`["not", "an", "object"]`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPalette(bad); err == nil {
		t.Error("expected parse error")
	}
	if _, err := LoadPalette(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected read error")
	}
}

func TestPrompt(t *testing.T) {
	t.Parallel()

	p, _ := NewPalette(map[string]string{"#ffb6c1": "romantic, warm"})
	prompt, emotions := p.Prompt("#ffb6c1")
	if emotions != "romantic, warm" {
		t.Errorf("emotions = %q", emotions)
	}
	want := "This color conveys emotional qualities of romantic, warm. " +
		"Based on color psychology, it expresses feelings such as romantic, warm. " +
		"The atmosphere of this color can be described as romantic, warm."
	if prompt != want {
		t.Errorf("prompt = %q", prompt)
	}
}

func TestEmotionsToVAD(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want VAD
	}{
		{"warm, energetic", VAD{0.65, 0.65, 0.6}},
		{"Calm / Peaceful", VAD{0.75, 0.2, 0.6}},
		{"sad", VAD{0.2, 0.2, 0.3}},
		{"sad, unknown", VAD{0.2, 0.2, 0.3}},
		{"", Neutral},
		{"sparkly", Neutral},
	}

	for _, tt := range tests {
		got := EmotionsToVAD(tt.in)
		if math.Abs(got.Valence-tt.want.Valence) > 1e-9 ||
			math.Abs(got.Arousal-tt.want.Arousal) > 1e-9 ||
			math.Abs(got.Dominance-tt.want.Dominance) > 1e-9 {
			t.Errorf("EmotionsToVAD(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
