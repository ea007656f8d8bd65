// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

// Package mood translates colors into words: a palette maps colors to
// emotions, the emotions become a text prompt for the embedding model, and a
// small valence/arousal/dominance lexicon turns them into a mood target.
package mood

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/shikisai/internal/recommend"
)

// FallbackEmotions is returned when a palette has no usable entry.
const FallbackEmotions = "neutral, calm"

// defaultPalette is used when no palette file is configured.
var defaultPalette = map[string]string{
	"#ff0000": "passionate, intense",
	"#8b0000": "anger, aggressive",
	"#ff7f50": "warm, energetic",
	"#ffa500": "energetic, happy",
	"#ffd700": "joyful, bright",
	"#ffff00": "happy, bright",
	"#7fff00": "fresh, vibrant",
	"#228b22": "fresh, grounded",
	"#2e8b57": "calm, grounded",
	"#40e0d0": "fresh, calm",
	"#87ceeb": "peaceful, calm",
	"#0000ff": "calm, mysterious",
	"#000080": "sad, mysterious",
	"#e6e6fa": "dreamy, peaceful",
	"#800080": "mysterious, dreamy",
	"#ff69b4": "romantic, joyful",
	"#ffb6c1": "romantic, warm",
	"#a52a2a": "warm, grounded",
	"#d2b48c": "warm, calm",
	"#808080": "neutral, calm",
	"#2f4f4f": "sad, grounded",
	"#000000": "mysterious, intense",
	"#ffffff": "peaceful, fresh",
}

type entry struct {
	hex      string
	r, g, b  uint8
	emotions string
}

// Palette maps colors to emotion strings. It is immutable and safe for
// concurrent use.
type Palette struct {
	entries []entry
	byHex   map[string]string
}

// DefaultPalette returns the built-in palette.
func DefaultPalette() *Palette {
	p, err := NewPalette(defaultPalette)
	if err != nil {
		panic(fmt.Sprintf("mood: built-in palette: %v", err))
	}
	return p
}

// NewPalette builds a palette from hex keys to emotion strings. Keys may omit
// the leading '#'.
func NewPalette(colors map[string]string) (*Palette, error) {
	p := &Palette{byHex: make(map[string]string, len(colors))}
	for hex, emotions := range colors {
		key := normalizeHex(hex)
		r, g, b, ok := recommend.ParseHex(key)
		if !ok {
			return nil, fmt.Errorf("invalid palette color %q", hex)
		}
		p.byHex[key] = emotions
		p.entries = append(p.entries, entry{hex: key, r: r, g: g, b: b, emotions: emotions})
	}
	// Deterministic nearest-color ties.
	sort.Slice(p.entries, func(i, j int) bool { return p.entries[i].hex < p.entries[j].hex })
	return p, nil
}

// LoadPalette reads a JSON object of {"#rrggbb": "emotion, emotion"}. An
// empty path returns the built-in palette.
func LoadPalette(path string) (*Palette, error) {
	if path == "" {
		return DefaultPalette(), nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("read palette: %w", err)
	}
	var colors map[string]string
	if err := json.Unmarshal(data, &colors); err != nil {
		return nil, fmt.Errorf("parse palette %s: %w", path, err)
	}
	p, err := NewPalette(colors)
	if err != nil {
		return nil, fmt.Errorf("palette %s: %w", path, err)
	}
	return p, nil
}

// Len returns the number of colors in the palette.
func (p *Palette) Len() int {
	return len(p.entries)
}

// Emotions returns the emotions of hex, or of the nearest palette color by
// squared RGB distance. An unparseable color or an empty palette yields
// FallbackEmotions.
func (p *Palette) Emotions(hex string) string {
	key := normalizeHex(hex)
	if e, ok := p.byHex[key]; ok {
		return e
	}
	r, g, b, ok := recommend.ParseHex(key)
	if !ok || len(p.entries) == 0 {
		return FallbackEmotions
	}

	best, bestDist := -1, -1
	for i, e := range p.entries {
		dr, dg, db := int(r)-int(e.r), int(g)-int(e.g), int(b)-int(e.b)
		d := dr*dr + dg*dg + db*db
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if p.entries[best].emotions == "" {
		return FallbackEmotions
	}
	return p.entries[best].emotions
}

// Prompt returns the text prompt for hex and the emotions it was built from.
func (p *Palette) Prompt(hex string) (prompt, emotions string) {
	emotions = p.Emotions(hex)
	return BuildPrompt(emotions), emotions
}

// BuildPrompt renders the color psychology prompt for an emotion string.
func BuildPrompt(emotions string) string {
	return fmt.Sprintf("This color conveys emotional qualities of %[1]s. "+
		"Based on color psychology, it expresses feelings such as %[1]s. "+
		"The atmosphere of this color can be described as %[1]s.", emotions)
}

func normalizeHex(hex string) string {
	hex = strings.ToLower(strings.TrimSpace(hex))
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	return hex
}
