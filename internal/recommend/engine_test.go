// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shikisai/internal/catalog"
)

func embedding(seed int64) []float32 {
	rng := rand.New(rand.NewSource(seed))
	v := make([]float32, catalog.TextDim)
	for i := range v {
		v[i] = float32(rng.NormFloat64())
	}
	return v
}

// newTestEngine builds an engine over an in-memory catalog holding tracks.
// Track i gets embedding(int64(i)+1).
func newTestEngine(t *testing.T, cfg *Config, tracks ...catalog.Track) *Engine {
	t.Helper()

	cat := catalog.New(catalog.Options{Logger: zerolog.Nop()})
	if len(tracks) > 0 {
		records := make([]catalog.Record, len(tracks))
		for i, tr := range tracks {
			records[i] = catalog.Record{Track: tr, Embedding: embedding(int64(i) + 1)}
		}
		res, err := cat.AddBatch(context.Background(), records)
		if err != nil {
			t.Fatalf("AddBatch: %v", err)
		}
		if res.Added != len(tracks) {
			t.Fatalf("Added = %d, want %d", res.Added, len(tracks))
		}
	}

	engine, err := NewEngine(cfg, cat, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine
}

func seed(v int64) *int64 { return &v }

func TestNewEngine(t *testing.T) {
	t.Parallel()

	cat := catalog.New(catalog.Options{Logger: zerolog.Nop()})
	if _, err := NewEngine(nil, cat, zerolog.Nop()); err != nil {
		t.Errorf("NewEngine(nil config) error = %v", err)
	}
	if _, err := NewEngine(nil, nil, zerolog.Nop()); err == nil {
		t.Error("NewEngine without source should fail")
	}
	bad := DefaultConfig()
	bad.Limits.DefaultLimit = 0
	if _, err := NewEngine(bad, cat, zerolog.Nop()); err == nil {
		t.Error("NewEngine with invalid config should fail")
	}
}

func TestRecommendWarmSoftScenario(t *testing.T) {
	t.Parallel()

	t1 := catalog.Track{
		ID:          "t1",
		Name:        "Sunny Day",
		Artists:     []string{"Band"},
		Valence:     0.9,
		Energy:      0.2,
		Speechiness: 0.3,
		Popularity:  80,
		ReleaseYear: 2020,
	}
	engine := newTestEngine(t, nil, t1)

	resp, err := engine.Recommend(context.Background(), Query{
		Embedding: embedding(1),
		Valence:   0.9,
		Arousal:   0.2,
		ColorHex:  "#FFFFFF",
		Seed:      seed(1),
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if resp.Intent != IntentWarmSoft {
		t.Errorf("Intent = %s, want warm_soft", resp.Intent)
	}
	if len(resp.Items) != 1 || resp.Items[0].ID != "t1" {
		t.Fatalf("Items = %+v, want t1", resp.Items)
	}
	item := resp.Items[0]
	if item.Score <= 0 {
		t.Errorf("Score = %v, want > 0", item.Score)
	}
	if item.ExternalURL != "https://open.spotify.com/track/t1" {
		t.Errorf("ExternalURL = %q", item.ExternalURL)
	}
	if item.AlbumImage != nil || item.PreviewURL != nil {
		t.Error("album image and preview should be nil")
	}
	if want := 0.7*0.2 + 0.3*0.3; math.Abs(resp.AdjustedArousal-want) > 1e-9 {
		t.Errorf("AdjustedArousal = %v, want %v", resp.AdjustedArousal, want)
	}
	if resp.Stages != (StageCounts{Total: 1, AfterBlacklist: 1, AfterEmotion: 1, AfterGame: 1, Selected: 1}) {
		t.Errorf("Stages = %+v", resp.Stages)
	}
	if resp.Metadata.Seed != 1 || resp.Metadata.RequestID == "" {
		t.Errorf("Metadata = %+v", resp.Metadata)
	}
}

func TestRecommendBlacklistScenario(t *testing.T) {
	t.Parallel()

	ost := track("ost", "Hyrule Field (Original Soundtrack)", "Koji")
	ost.Instrumentalness = 0.9
	ost.Popularity = 100
	engine := newTestEngine(t, nil, ost, track("keep", "Sunny Day", "Band"))

	resp, err := engine.Recommend(context.Background(), Query{
		Embedding: embedding(1),
		Valence:   0.5,
		Arousal:   0.5,
		ColorHex:  "#FFFFFF",
		Seed:      seed(3),
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if resp.Stages.Total != 2 || resp.Stages.AfterBlacklist != 1 {
		t.Errorf("Stages = %+v", resp.Stages)
	}
	for _, it := range resp.Items {
		if it.ID == "ost" {
			t.Error("soundtrack survived the blacklist")
		}
	}
}

func TestRecommendEmptyCutoffScenario(t *testing.T) {
	t.Parallel()

	var tracks []catalog.Track
	for i := 0; i < 6; i++ {
		tr := track(fmt.Sprint(i), fmt.Sprintf("Track %d", i), "Band")
		if i%2 == 0 {
			tr.Valence, tr.Energy = 0, 0
		} else {
			tr.Valence, tr.Energy = 1, 1
		}
		tracks = append(tracks, tr)
	}
	engine := newTestEngine(t, nil, tracks...)

	resp, err := engine.Recommend(context.Background(), Query{
		Embedding: embedding(1),
		Valence:   0.5,
		Arousal:   0.5,
		ColorHex:  "#FFFFFF",
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(resp.Items) != 0 || resp.Items == nil {
		t.Errorf("Items = %+v, want empty non-nil", resp.Items)
	}
	if resp.Stages.AfterEmotion != 0 || resp.Stages.Total != 6 {
		t.Errorf("Stages = %+v", resp.Stages)
	}
	if _, empty := engine.Stats(); empty != 1 {
		t.Errorf("empty count = %d, want 1", empty)
	}
}

func TestRecommendEmptyCatalog(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, nil)
	resp, err := engine.Recommend(context.Background(), Query{
		Embedding: embedding(1),
		Valence:   0.5,
		Arousal:   0.5,
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(resp.Items) != 0 || resp.Stages.Total != 0 {
		t.Errorf("resp = %+v", resp)
	}
}

// moodCatalog returns tracks close to (0.7, 0.44) spread over ten artists
// with repeating names.
func moodCatalog(n int) []catalog.Track {
	tracks := make([]catalog.Track, n)
	for i := range tracks {
		tr := track(fmt.Sprintf("id%d", i), fmt.Sprintf("Track %d", i%25), fmt.Sprintf("Artist %d", i%10))
		tr.Valence = 0.7 + float64(i%5)*0.01
		tr.Energy = 0.44 - float64(i%3)*0.01
		tr.Popularity = float64(i % 100)
		tracks[i] = tr
	}
	return tracks
}

func TestRecommendLimitsAndDiversity(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Limits.MaxLimit = 12
	engine := newTestEngine(t, cfg, moodCatalog(60)...)

	tests := []struct {
		name  string
		limit int
		max   int
	}{
		{"explicit", 5, 5},
		{"default", 0, 10},
		{"negative", -3, 10},
		{"clamped", 50, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			resp, err := engine.Recommend(context.Background(), Query{
				Embedding: embedding(99),
				Valence:   0.7,
				Arousal:   0.5,
				ColorHex:  "#FFFFFF",
				Limit:     tt.limit,
			})
			if err != nil {
				t.Fatalf("Recommend: %v", err)
			}
			if len(resp.Items) == 0 || len(resp.Items) > tt.max {
				t.Fatalf("got %d items, want 1..%d", len(resp.Items), tt.max)
			}

			names := map[string]bool{}
			artists := map[string]int{}
			for i, it := range resp.Items {
				name := strings.ToLower(it.Name)
				if names[name] {
					t.Errorf("duplicate name %q", it.Name)
				}
				names[name] = true
				artists[strings.Join(it.Artists, ", ")]++
				if i > 0 && it.Score > resp.Items[i-1].Score {
					t.Errorf("item %d scores above item %d", i, i-1)
				}
			}
			for artist, n := range artists {
				if n > 2 {
					t.Errorf("artist %s has %d items", artist, n)
				}
			}
		})
	}
}

func TestRecommendSeedReordersTiesOnly(t *testing.T) {
	t.Parallel()

	// Twelve identical tracks and one that only differs by popularity.
	shared := embedding(7)
	var records []catalog.Record
	for i := 0; i < 12; i++ {
		tr := track(fmt.Sprintf("tie%d", i), fmt.Sprintf("Track %d", i), fmt.Sprintf("Artist %d", i))
		tr.Valence, tr.Energy = 0.7, 0.44
		records = append(records, catalog.Record{Track: tr, Embedding: shared})
	}
	win := track("win", "Track Best", "Artist Best")
	win.Valence, win.Energy, win.Popularity = 0.7, 0.44, 100
	records = append(records, catalog.Record{Track: win, Embedding: shared})

	cat := catalog.New(catalog.Options{Logger: zerolog.Nop()})
	if _, err := cat.AddBatch(context.Background(), records); err != nil {
		t.Fatalf("AddBatch: %v", err)
	}
	engine, err := NewEngine(nil, cat, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	orders := make(map[string]bool)
	for s := int64(1); s <= 10; s++ {
		resp, err := engine.Recommend(context.Background(), Query{
			Embedding: shared,
			Valence:   0.7,
			Arousal:   0.5,
			ColorHex:  "#FFFFFF",
			Limit:     len(records),
			Seed:      seed(s),
		})
		if err != nil {
			t.Fatalf("seed %d: Recommend: %v", s, err)
		}
		if len(resp.Items) != len(records) {
			t.Fatalf("seed %d: got %d items, want %d", s, len(resp.Items), len(records))
		}
		if resp.Items[0].ID != "win" {
			t.Errorf("seed %d: first = %s, want win", s, resp.Items[0].ID)
		}
		orders[ids(resp)] = true
	}
	if len(orders) < 2 {
		t.Errorf("tied tracks kept one order across 10 seeds: %v", orders)
	}
}

func TestRecommendSeededDeterminism(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, nil, moodCatalog(60)...)
	q := Query{
		Embedding: embedding(5),
		Valence:   0.7,
		Arousal:   0.5,
		ColorHex:  "#FFFFFF",
		Seed:      seed(1234),
	}

	first, err := engine.Recommend(context.Background(), q)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := engine.Recommend(context.Background(), q)
		if err != nil {
			t.Fatalf("Recommend: %v", err)
		}
		if ids(again) != ids(first) {
			t.Fatalf("run %d = %s, want %s", i, ids(again), ids(first))
		}
	}

	// An unseeded response can be replayed from its reported seed.
	q.Seed = nil
	unseeded, err := engine.Recommend(context.Background(), q)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	q.Seed = seed(unseeded.Metadata.Seed)
	replay, err := engine.Recommend(context.Background(), q)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if ids(replay) != ids(unseeded) {
		t.Errorf("replay = %s, want %s", ids(replay), ids(unseeded))
	}
}

func TestRecommendGameSoundtrackPreference(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, nil,
		track("game", "Battle Theme (anime)", "Studio"),
		track("song", "Sunny Day", "Band"),
	)
	q := Query{Embedding: embedding(1), Valence: 0.5, Arousal: 0.5, ColorHex: "#FFFFFF", Seed: seed(1)}

	resp, err := engine.Recommend(context.Background(), q)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if resp.Stages.AfterGame != 1 {
		t.Errorf("default AfterGame = %d, want 1", resp.Stages.AfterGame)
	}

	avoid := false
	q.Taste = &TasteProfile{AvoidGameSoundtracks: &avoid}
	resp, err = engine.Recommend(context.Background(), q)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if resp.Stages.AfterGame != 2 {
		t.Errorf("permissive AfterGame = %d, want 2", resp.Stages.AfterGame)
	}
}

func TestRecommendValidation(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, nil, track("a", "Sunny Day", "Band"))
	negative := -1.0

	tests := []struct {
		name  string
		query Query
		field string
	}{
		{"short embedding", Query{Embedding: make([]float32, 100)}, "embedding"},
		{"valence out of range", Query{Embedding: embedding(1), Valence: 1.5}, "valence"},
		{"arousal out of range", Query{Embedding: embedding(1), Arousal: -0.2}, "arousal"},
		{"negative weight", Query{Embedding: embedding(1), Preferences: &Preferences{WClap: &negative}}, "preferences.w_clap"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := engine.Recommend(context.Background(), tt.query)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestRecommendAcceptsFullVector(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, nil, track("a", "Sunny Day", "Band"))
	full := make([]float32, catalog.FullDim)
	copy(full, embedding(1))

	resp, err := engine.Recommend(context.Background(), Query{Embedding: full, Valence: 0.5, Arousal: 0.5, Seed: seed(1)})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(resp.Items) != 1 {
		t.Errorf("Items = %+v", resp.Items)
	}
}

func TestRecommendCanceled(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, nil, track("a", "Sunny Day", "Band"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Recommend(ctx, Query{Embedding: embedding(1), Valence: 0.5, Arousal: 0.5})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestRecommendConcurrent(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, nil, moodCatalog(40)...)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := engine.Recommend(context.Background(), Query{
				Embedding: embedding(int64(i)),
				Valence:   0.7,
				Arousal:   0.5,
				ColorHex:  "#FFFFFF",
			})
			if err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Recommend: %v", err)
	}
	if requests, _ := engine.Stats(); requests != 16 {
		t.Errorf("requests = %d, want 16", requests)
	}
}

func ids(resp *Response) string {
	out := make([]string, len(resp.Items))
	for i, it := range resp.Items {
		out[i] = it.ID
	}
	return strings.Join(out, ",")
}
