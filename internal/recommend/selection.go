// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package recommend

import (
	"math/rand"
	"sort"
	"strings"
)

// Select picks at most limit candidates: dedup by song, cap per artist,
// bound classical pieces, shuffle ties with rng, then dedup by name.
// cands is reordered in place.
func Select(cands []Candidate, limit int, cfg SelectionConfig, rng *rand.Rand) []Candidate {
	if limit <= 0 || len(cands) == 0 {
		return nil
	}

	byScore(cands)

	seenSong := make(map[string]struct{}, len(cands))
	perArtist := make(map[string]int)
	var rest, classical []Candidate
	for i := range cands {
		c := cands[i]
		key := songKey(&c)
		if _, dup := seenSong[key]; dup {
			continue
		}
		seenSong[key] = struct{}{}

		if perArtist[c.ArtistKey] >= cfg.PerArtistCap {
			continue
		}
		perArtist[c.ArtistKey]++

		if classicalKeywords.Contains(c.Text) {
			classical = append(classical, c)
		} else {
			rest = append(rest, c)
		}
	}
	if len(classical) > cfg.ClassicalQuota {
		classical = classical[:cfg.ClassicalQuota]
	}
	pool := append(rest, classical...)

	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	byScore(pool)
	if n := cfg.PoolFactor * limit; len(pool) > n {
		pool = pool[:n]
	}

	out := make([]Candidate, 0, limit)
	seenName := make(map[string]struct{}, len(pool))
	for _, c := range pool {
		name := strings.ToLower(c.Track.Name)
		if _, dup := seenName[name]; dup {
			continue
		}
		seenName[name] = struct{}{}
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out
}

func byScore(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Score > cands[j].Score
	})
}

func songKey(c *Candidate) string {
	return strings.ToLower(strings.TrimSpace(c.Track.Name)) + "___" +
		strings.ToLower(strings.TrimSpace(c.ArtistKey))
}
