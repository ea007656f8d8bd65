// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package recommend

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/tomtom215/shikisai/internal/catalog"
)

func track(id, name string, artists ...string) catalog.Track {
	return catalog.Track{
		ID:          id,
		Name:        name,
		Artists:     artists,
		Valence:     0.5,
		Energy:      0.5,
		Speechiness: 0.05,
		ReleaseYear: 2010,
	}
}

func TestBlacklistFilter(t *testing.T) {
	t.Parallel()

	f := BlacklistFilter(0.75)
	tests := []struct {
		name  string
		title string
		instr float64
		keep  bool
	}{
		{"soundtrack instrumental", "Hyrule Field (Original Soundtrack)", 0.9, false},
		{"soundtrack with vocals", "Hyrule Field (Original Soundtrack)", 0.3, true},
		{"threshold is exclusive", "Piano Cover", 0.75, true},
		{"allow-listed opening", "Opening Theme", 0.9, true},
		{"anime allowed", "Piano Medley anime", 0.95, true},
		{"run-on keyword", "Scoretitle Theme", 0.9, false},
		{"clean title", "Walking", 0.99, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tr := track("x", tt.title, "Koji")
			tr.Instrumentalness = tt.instr
			c := newCandidate(0, tr, 0.5, 0.5)
			if got := f.Keep(&c); got != tt.keep {
				t.Errorf("Keep(%q, instr=%v) = %v, want %v", tt.title, tt.instr, got, tt.keep)
			}
		})
	}
}

func TestEmotionFilter(t *testing.T) {
	t.Parallel()

	f := EmotionFilter(0.45)
	near := track("a", "Near", "X")
	near.Valence, near.Energy = 0.6, 0.6
	far := track("b", "Far", "X")
	far.Valence, far.Energy = 0.0, 0.0

	cn := newCandidate(0, near, 0.5, 0.44)
	cf := newCandidate(1, far, 0.5, 0.44)
	if !f.Keep(&cn) {
		t.Errorf("near track dropped, distance %.3f", cn.Distance)
	}
	if f.Keep(&cf) {
		t.Errorf("far track kept, distance %.3f", cf.Distance)
	}
}

func TestGameFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title      string
		keepAvoid  bool
		keepPermit bool
	}{
		{"Boss Fight", false, false},
		{"Battle in the anime", false, true},
		{"Zelda Main Theme", false, false},
		{"Sunday Morning", true, true},
	}

	avoid, permit := GameFilter(true), GameFilter(false)
	for _, tt := range tests {
		c := newCandidate(0, track("x", tt.title, "Band"), 0.5, 0.5)
		if got := avoid.Keep(&c); got != tt.keepAvoid {
			t.Errorf("avoid Keep(%q) = %v, want %v", tt.title, got, tt.keepAvoid)
		}
		if got := permit.Keep(&c); got != tt.keepPermit {
			t.Errorf("permit Keep(%q) = %v, want %v", tt.title, got, tt.keepPermit)
		}
	}
}

func TestFilterApply(t *testing.T) {
	t.Parallel()

	cands := []Candidate{
		newCandidate(0, track("a", "Keep Me", "X"), 0.5, 0.5),
		newCandidate(1, track("b", "Boss Fight", "X"), 0.5, 0.5),
		newCandidate(2, track("c", "Keep Me Too", "Y"), 0.5, 0.5),
	}
	out := GameFilter(true).apply(cands)
	if len(out) != 2 || out[0].Row != 0 || out[1].Row != 2 {
		t.Errorf("apply kept rows %v", rows(out))
	}
}

func newTestScorer(intent Intent) *Scorer {
	cfg := DefaultConfig()
	return &Scorer{
		Weights:     cfg.Weights,
		Intent:      intent,
		IntentW:     intentTable[intent],
		Adjustments: cfg.Adjustments,
		Decay:       cfg.EmotionDecay,
		Arousal:     0.44,
		Similarity:  func(int) float64 { return 0.5 },
	}
}

func TestScorerBase(t *testing.T) {
	t.Parallel()

	s := newTestScorer(IntentBrightPlayful)
	tr := track("a", "Sunrise", "Band")
	tr.Valence, tr.Energy = 0.5, 0.44
	tr.ReleaseYear = 2025
	c := newCandidate(0, tr, 0.5, 0.44)
	s.Score(&c)

	// clap 1.0*1.0*0.5, emotion exp(0)=1, modern 0.5*1, energy 0.3*1
	wantBase := 0.5 + 1 + 0.5 + 0.3
	if math.Abs(c.Breakdown.Base-wantBase) > 1e-9 {
		t.Errorf("Base = %v, want %v", c.Breakdown.Base, wantBase)
	}
	if c.Breakdown.Emotion != 1 || c.Breakdown.Clap != 0.5 {
		t.Errorf("Breakdown = %+v", c.Breakdown)
	}
}

func TestScorerAdjustments(t *testing.T) {
	t.Parallel()

	base := track("a", "Sunrise", "Band")
	scoreOf := func(s *Scorer, tr catalog.Track) float64 {
		c := newCandidate(0, tr, 0.5, 0.44)
		s.Score(&c)
		return c.Score
	}

	t.Run("taste boost", func(t *testing.T) {
		t.Parallel()
		s := newTestScorer(IntentBrightPlayful)
		plain := scoreOf(s, base)
		s.WithTaste(&TasteProfile{TopGenres: []string{"BAND"}})
		if d := scoreOf(s, base) - plain; math.Abs(d-0.35) > 1e-9 {
			t.Errorf("taste delta = %v, want 0.35", d)
		}
		s.WithTaste(&TasteProfile{})
		if scoreOf(s, base) != plain {
			t.Error("empty profile changed the score")
		}
	})

	t.Run("theme penalty", func(t *testing.T) {
		t.Parallel()
		s := newTestScorer(IntentBrightPlayful)
		themed := base
		themed.Name = "Sunrise Main Theme"
		if d := scoreOf(s, base) - scoreOf(s, themed); math.Abs(d-0.6) > 1e-9 {
			t.Errorf("theme delta = %v, want 0.6", d)
		}
	})

	t.Run("romance bias", func(t *testing.T) {
		t.Parallel()
		s := newTestScorer(IntentRomanticDreamy)
		love := base
		love.Name = "Love Letter"
		plain := scoreOf(s, love)
		s.IntentW.RomanceBias = 0.5
		if d := scoreOf(s, love) - plain; math.Abs(d-0.5) > 1e-9 {
			t.Errorf("romance delta = %v, want 0.5", d)
		}
		biased := scoreOf(s, base)
		s.IntentW.RomanceBias = 0
		if scoreOf(s, base) != biased {
			t.Error("romance bias applied to a name without romance words")
		}
	})

	t.Run("popularity", func(t *testing.T) {
		t.Parallel()
		s := newTestScorer(IntentBrightPlayful)
		popular := base
		popular.Popularity = 100
		if d := scoreOf(s, popular) - scoreOf(s, base); math.Abs(d-0.15) > 1e-9 {
			t.Errorf("popularity delta = %v, want 0.15", d)
		}
	})

	t.Run("clamped at zero", func(t *testing.T) {
		t.Parallel()
		s := newTestScorer(IntentWarmSoft)
		s.Similarity = func(int) float64 { return -1 }
		bad := base
		bad.Name = "Theme from the Soundtrack"
		bad.Instrumentalness = 1
		bad.Energy = 1
		bad.ReleaseYear = 1960
		if got := scoreOf(s, bad); got != 0 {
			t.Errorf("score = %v, want 0", got)
		}
	})
}

func TestScorerIntentShaping(t *testing.T) {
	t.Parallel()

	// valence 0.8, energy 0.2, speechiness 0.3
	tests := []struct {
		intent  Intent
		shaping float64
	}{
		{IntentWarmSoft, 0.4*0.8 - 0.4*0.2 - 0.3*0.7},
		{IntentCoolSoft, -0.3*0.2 + 0.1*0.2},
		{IntentDarkMoody, -0.2*0.2 + 0.3*0.2},
		{IntentBrightPlayful, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.intent), func(t *testing.T) {
			t.Parallel()

			tr := track("a", "Sunrise", "Band")
			tr.Valence, tr.Energy, tr.Speechiness = 0.8, 0.2, 0.3

			s := newTestScorer(tt.intent)
			c := newCandidate(0, tr, 0.8, 0.2)
			s.Score(&c)

			iw := intentTable[tt.intent]
			want := c.Breakdown.Base +
				0.35*math.Hypot(0.3, -0.3) +
				iw.EnergyBias*0.2 + iw.VocalBoost*0.3 +
				tt.shaping
			want = math.Max(want, 0)
			if math.Abs(c.Score-want) > 1e-9 {
				t.Errorf("%s score = %v, want %v", tt.intent, c.Score, want)
			}
		})
	}
}

func TestClassicalKeywordsAreLiteral(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want bool
	}{
		{"nocturne op. 9 no. 2 chopin", true},
		{"prelude in c major", true},
		{"pop song", false},
		{"top down", false},
		{"opal", false},
	}
	for _, tt := range tests {
		if got := classicalKeywords.Contains(tt.text); got != tt.want {
			t.Errorf("classical(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestSelectCaps(t *testing.T) {
	t.Parallel()

	var cands []Candidate
	for i := 0; i < 30; i++ {
		c := newCandidate(i, track(fmt.Sprint(i), fmt.Sprintf("Song %d", i), fmt.Sprintf("Artist %d", i%3)), 0.5, 0.5)
		c.Score = float64(100 - i)
		cands = append(cands, c)
	}

	out := Select(cands, 10, DefaultConfig().Selection, rand.New(rand.NewSource(1)))
	if len(out) != 6 {
		t.Fatalf("got %d items, want 6 (3 artists x 2)", len(out))
	}
	per := map[string]int{}
	for _, c := range out {
		per[c.ArtistKey]++
	}
	for artist, n := range per {
		if n > 2 {
			t.Errorf("artist %s has %d items", artist, n)
		}
	}
	if out[0].Row != 0 || out[0].Score < out[len(out)-1].Score {
		t.Errorf("not ordered by score: rows %v", rows(out))
	}
}

func TestSelectDedup(t *testing.T) {
	t.Parallel()

	cands := []Candidate{
		newCandidate(0, track("1", "Same Song", "A"), 0.5, 0.5),
		newCandidate(1, track("2", " same song ", "a"), 0.5, 0.5),
		newCandidate(2, track("3", "Same Song", "B"), 0.5, 0.5),
		newCandidate(3, track("4", "Other", "C"), 0.5, 0.5),
	}
	for i := range cands {
		cands[i].Score = float64(10 - i)
	}

	out := Select(cands, 10, DefaultConfig().Selection, rand.New(rand.NewSource(1)))
	if got := rows(out); len(got) != 2 || got[0] != 0 || got[1] != 3 {
		t.Errorf("rows = %v, want [0 3]", got)
	}
}

func TestSelectClassicalQuota(t *testing.T) {
	t.Parallel()

	var cands []Candidate
	for i := 0; i < 5; i++ {
		c := newCandidate(i, track(fmt.Sprint(i), fmt.Sprintf("Prelude No. %d", i), fmt.Sprintf("Pianist %d", i)), 0.5, 0.5)
		c.Score = 10
		cands = append(cands, c)
	}
	for i := 5; i < 8; i++ {
		c := newCandidate(i, track(fmt.Sprint(i), fmt.Sprintf("Pop %d", i), fmt.Sprintf("Singer %d", i)), 0.5, 0.5)
		c.Score = 1
		cands = append(cands, c)
	}

	out := Select(cands, 10, DefaultConfig().Selection, rand.New(rand.NewSource(7)))
	classical := 0
	for _, c := range out {
		if strings.HasPrefix(c.Track.Name, "Prelude") {
			classical++
		}
	}
	if classical != 2 {
		t.Errorf("classical = %d, want 2", classical)
	}
	if len(out) != 5 {
		t.Errorf("len = %d, want 5", len(out))
	}
}

func TestSelectEmpty(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))
	if out := Select(nil, 10, DefaultConfig().Selection, rng); out != nil {
		t.Errorf("Select(nil) = %v", out)
	}
	cands := []Candidate{newCandidate(0, track("1", "A", "B"), 0.5, 0.5)}
	if out := Select(cands, 0, DefaultConfig().Selection, rng); out != nil {
		t.Errorf("Select(limit 0) = %v", out)
	}
}

func TestBuildTasteProfile(t *testing.T) {
	t.Parallel()

	if p := BuildTasteProfile(nil, 5); p != nil {
		t.Errorf("BuildTasteProfile(nil) = %+v", p)
	}

	p := BuildTasteProfile([][]string{
		{"Rock", "indie"},
		{"jazz", "rock"},
		{"k-pop", " Jazz "},
		{"metal"},
		{"blues", "soul", ""},
	}, 3)
	want := []string{"rock", "jazz", "indie"}
	if strings.Join(p.TopGenres, ",") != strings.Join(want, ",") {
		t.Errorf("TopGenres = %v, want %v", p.TopGenres, want)
	}
	if p.GenreCounts["rock"] != 2 || p.GenreCounts["jazz"] != 2 || p.GenreCounts["soul"] != 1 {
		t.Errorf("GenreCounts = %v", p.GenreCounts)
	}
	if !p.PrefersSoft || !p.PrefersPop {
		t.Errorf("flags soft=%v pop=%v", p.PrefersSoft, p.PrefersPop)
	}

	p = BuildTasteProfile([][]string{{"metal"}}, 0)
	if p.PrefersSoft || p.PrefersPop || len(p.TopGenres) != 1 {
		t.Errorf("metal profile = %+v", p)
	}
}

func rows(cands []Candidate) []int {
	out := make([]int, len(cands))
	for i, c := range cands {
		out[i] = c.Row
	}
	return out
}
