// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package recommend

import (
	"math"
	"strings"

	"github.com/tomtom215/shikisai/internal/textmatch"
)

const (
	yearBase = 1990
	yearSpan = 35.0

	// neutral mood point for the distinctiveness bonus
	neutralValence = 0.5
	neutralEnergy  = 0.5
)

// Scorer computes the final score of a candidate.
type Scorer struct {
	Weights     Weights
	Intent      Intent
	IntentW     IntentWeights
	Adjustments AdjustmentConfig
	Decay       float64

	// Arousal is the adjusted arousal a'.
	Arousal float64

	// Similarity returns the text cosine of a catalog row to the query.
	Similarity func(row int) float64

	taste *textmatch.KeywordSet
}

// WithTaste enables the taste boost for the profile's top genres.
func (s *Scorer) WithTaste(profile *TasteProfile) {
	if profile == nil || len(profile.TopGenres) == 0 {
		s.taste = nil
		return
	}
	s.taste = textmatch.New(profile.TopGenres...)
	if s.taste.Len() == 0 {
		s.taste = nil
	}
}

// Score fills c.Score and c.Breakdown.
func (s *Scorer) Score(c *Candidate) {
	t := &c.Track

	clap := s.Similarity(c.Row)
	emotion := math.Exp(-s.Decay * c.Distance)
	yearNorm := clamp01(float64(t.ReleaseYear-yearBase) / yearSpan)

	base := s.Weights.Clap*s.IntentW.ClapWeight*clap +
		s.Weights.Emotion*emotion +
		s.Weights.Modern*yearNorm +
		s.Weights.EnergyPref*(1-math.Abs(t.Energy-s.Arousal))

	score := base
	if s.taste != nil && s.taste.Contains(c.Text) {
		score += s.Adjustments.TasteBoost
	}
	if themeKeywords.Contains(c.Text) {
		score -= s.Adjustments.ThemePenalty
	}
	score -= s.Adjustments.InstrumentalPenalty * t.Instrumentalness
	score += s.Adjustments.PopularityBoost * (t.Popularity / 100)
	score += s.Adjustments.DistinctivenessBoost * math.Hypot(t.Valence-neutralValence, t.Energy-neutralEnergy)

	score += s.IntentW.EnergyBias*t.Energy +
		s.IntentW.VocalBoost*t.Speechiness -
		s.IntentW.InstrumentalPenalty*t.Instrumentalness

	switch s.Intent {
	case IntentWarmSoft:
		score += 0.4*t.Valence - 0.4*t.Energy - 0.3*(1-t.Speechiness)
	case IntentCoolSoft:
		score += -0.3*t.Energy + 0.1*(1-t.Valence)
	case IntentDarkMoody:
		score += -0.2*t.Energy + 0.3*(1-t.Valence)
	}

	if s.IntentW.RomanceBias > 0 && romanceKeywords.Contains(strings.ToLower(t.Name)) {
		score += s.IntentW.RomanceBias
	}

	c.Score = math.Max(score, 0)
	c.Breakdown = ScoreBreakdown{Clap: clap, Emotion: emotion, Base: base}
}

func clamp01(x float64) float64 {
	return math.Min(math.Max(x, 0), 1)
}
