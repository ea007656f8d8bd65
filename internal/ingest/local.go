// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LocalPrefix prefixes the ids of tracks found on disk.
const LocalPrefix = "local::"

var audioExtensions = map[string]struct{}{
	".mp3": {}, ".wav": {}, ".flac": {}, ".m4a": {},
}

// ScanLocalDir lists the audio files directly inside dir as sources, sorted
// by file name. Subdirectories are not descended.
func ScanLocalDir(dir string) ([]Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan local dir: %w", err)
	}

	var sources []Source
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if _, ok := audioExtensions[ext]; !ok {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		sources = append(sources, Source{
			ID:      LocalPrefix + stem,
			Title:   stem,
			Artists: []string{"local"},
			Genres:  []string{"local"},
			Origin:  "local",
		})
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].ID < sources[j].ID })
	return sources, nil
}
