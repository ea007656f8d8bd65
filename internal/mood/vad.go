// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package mood

import "strings"

// VAD is a point in valence/arousal/dominance space, each in [0, 1].
type VAD struct {
	Valence   float64 `json:"valence"`
	Arousal   float64 `json:"arousal"`
	Dominance float64 `json:"dominance"`
}

// Neutral is the VAD of text with no known emotion word.
var Neutral = VAD{Valence: 0.5, Arousal: 0.4, Dominance: 0.5}

var lexicon = map[string]VAD{
	"anger":      {0.2, 0.9, 0.6},
	"aggressive": {0.1, 0.9, 0.7},
	"passionate": {0.7, 0.8, 0.7},
	"intense":    {0.4, 0.9, 0.6},
	"sad":        {0.2, 0.2, 0.3},
	"calm":       {0.7, 0.2, 0.6},
	"peaceful":   {0.8, 0.2, 0.6},
	"happy":      {0.9, 0.6, 0.5},
	"joyful":     {0.95, 0.7, 0.5},
	"energetic":  {0.6, 0.9, 0.6},
	"vibrant":    {0.7, 0.9, 0.6},
	"romantic":   {0.8, 0.5, 0.5},
	"dreamy":     {0.6, 0.3, 0.4},
	"mysterious": {0.3, 0.3, 0.6},
	"bright":     {0.85, 0.7, 0.5},
	"fresh":      {0.75, 0.4, 0.5},
	"warm":       {0.7, 0.4, 0.6},
	"grounded":   {0.5, 0.3, 0.7},
	"neutral":    Neutral,
}

// EmotionsToVAD averages the known words of a comma or slash separated
// emotion string. Unknown words are ignored.
func EmotionsToVAD(emotions string) VAD {
	words := strings.Split(strings.ReplaceAll(emotions, "/", ","), ",")

	var sum VAD
	n := 0
	for _, w := range words {
		v, ok := lexicon[strings.ToLower(strings.TrimSpace(w))]
		if !ok {
			continue
		}
		sum.Valence += v.Valence
		sum.Arousal += v.Arousal
		sum.Dominance += v.Dominance
		n++
	}
	if n == 0 {
		return Neutral
	}
	return VAD{
		Valence:   sum.Valence / float64(n),
		Arousal:   sum.Arousal / float64(n),
		Dominance: sum.Dominance / float64(n),
	}
}
