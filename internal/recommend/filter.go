// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package recommend

import (
	"math"
	"strings"

	"github.com/tomtom215/shikisai/internal/catalog"
)

// Candidate is a catalog row moving through the pipeline.
type Candidate struct {
	Row   int
	Track catalog.Track

	// Text is lower(name) + " " + lower(artists joined by ", ").
	Text string

	// ArtistKey groups tracks by their exact artist list.
	ArtistKey string

	// Distance is the euclidean distance from (valence, energy) to the mood
	// target.
	Distance float64

	Score     float64
	Breakdown ScoreBreakdown
}

// ScoreBreakdown keeps the main score terms for diagnostics.
type ScoreBreakdown struct {
	Clap    float64 `json:"clap"`
	Emotion float64 `json:"emotion"`
	Base    float64 `json:"base"`
}

// newCandidate builds the candidate for one row against a mood target.
//
//nolint:gocritic // hugeParam: Track is copied once per row
func newCandidate(row int, track catalog.Track, valence, arousal float64) Candidate {
	artists := strings.Join(track.Artists, ", ")
	return Candidate{
		Row:       row,
		Track:     track,
		Text:      strings.ToLower(track.Name) + " " + strings.ToLower(artists),
		ArtistKey: artists,
		Distance:  math.Hypot(track.Valence-valence, track.Energy-arousal),
	}
}

// Filter is one ordered predicate of the filter pipeline.
type Filter struct {
	Name string
	Keep func(c *Candidate) bool
}

// BlacklistFilter drops heavy instrumentals that look like soundtracks,
// unless they carry an allow-list term.
func BlacklistFilter(instrumentalness float64) Filter {
	return Filter{
		Name: "blacklist",
		Keep: func(c *Candidate) bool {
			return !(blacklistKeywords.Contains(c.Text) &&
				c.Track.Instrumentalness > instrumentalness &&
				!allowKeywords.Contains(c.Text))
		},
	}
}

// EmotionFilter drops candidates farther than cutoff from the mood target.
func EmotionFilter(cutoff float64) Filter {
	return Filter{
		Name: "emotion",
		Keep: func(c *Candidate) bool {
			return c.Distance <= cutoff
		},
	}
}

// GameFilter drops game soundtracks. Allowed titles survive only when avoid
// is false.
func GameFilter(avoid bool) Filter {
	return Filter{
		Name: "game",
		Keep: func(c *Candidate) bool {
			if !gameKeywords.Contains(c.Text) {
				return true
			}
			if avoid {
				return false
			}
			return allowKeywords.Contains(c.Text)
		},
	}
}

// apply keeps the candidates accepted by f, reusing the backing array.
func (f Filter) apply(cands []Candidate) []Candidate {
	out := cands[:0]
	for i := range cands {
		if f.Keep(&cands[i]) {
			out = append(out, cands[i])
		}
	}
	return out
}
