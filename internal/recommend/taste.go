// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package recommend

import (
	"sort"
	"strings"
)

// DefaultTopGenres is the number of genres kept by BuildTasteProfile.
const DefaultTopGenres = 5

var softGenres = map[string]struct{}{
	"indie": {}, "acoustic": {}, "lo-fi": {}, "folk": {},
}

// BuildTasteProfile summarizes the genre lists of a listener's tracks, one
// list per track. It returns nil when there are no tracks. topN <= 0 means
// DefaultTopGenres.
func BuildTasteProfile(genreLists [][]string, topN int) *TasteProfile {
	if len(genreLists) == 0 {
		return nil
	}
	if topN <= 0 {
		topN = DefaultTopGenres
	}

	profile := &TasteProfile{GenreCounts: make(map[string]int)}
	var order []string
	for _, genres := range genreLists {
		for _, g := range genres {
			g = strings.ToLower(strings.TrimSpace(g))
			if g == "" {
				continue
			}
			if _, seen := profile.GenreCounts[g]; !seen {
				order = append(order, g)
			}
			profile.GenreCounts[g]++

			if _, ok := softGenres[g]; ok {
				profile.PrefersSoft = true
			}
			if strings.Contains(g, "pop") {
				profile.PrefersPop = true
			}
		}
	}

	// Stable sort keeps first appearance order among equal counts.
	sort.SliceStable(order, func(i, j int) bool {
		return profile.GenreCounts[order[i]] > profile.GenreCounts[order[j]]
	})
	if len(order) > topN {
		order = order[:topN]
	}
	profile.TopGenres = order
	return profile
}
