// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package recommend

import "github.com/tomtom215/shikisai/internal/textmatch"

// Keyword lists matched against the lowercased "name artists" text of a
// candidate. All matching is substring matching.
var (
	// "scoretitle theme" is one keyword, not "score" and "title theme".
	blacklistKeywords = textmatch.New(
		"soundtrack", "ost", "original soundtrack", "theme",
		"opening", "ending", "legend of zelda", "pokémon",
		"final fantasy", "piano", "instrumental", "scoretitle theme",
		"end credits", "main theme",
		"felt piano", "piano version", "piano cover",
		"game music", "bgm", "sleepy piano",
	)

	allowKeywords = textmatch.New(
		"anime", "animation", "op", "ed",
		"opening", "ending",
		"drama", "tv", "television",
		"k-drama", "kdrama", "c-drama", "cdrama", "j-drama",
		"电视剧", "動畫", "アニメ", "片尾曲", "插曲",
	)

	themeKeywords = textmatch.New(
		"theme", "title theme", "main theme",
		"file select", "soundtrack", "ost",
		"from ", "opening", "ending",
	)

	// Matched against the lowercased name only.
	romanceKeywords = textmatch.New(
		"love", "kiss", "heart", "darling",
		"fall", "you", "us", "night", "baby",
	)

	gameKeywords = textmatch.New(
		// franchises and publishers
		"pokemon", "pokémon", "zelda", "fire emblem",
		"final fantasy", "chrono", "kingdom hearts",
		"nintendo", "square enix", "capcom", "atlus",
		// game music vocabulary
		"title screen", "main menu", "overworld",
		"route", "battle", "boss", "stage", "level",
		"theme from", "video game", "game music",
		"game bgm", "game soundtrack", `from "`,
	)

	classicalKeywords = textmatch.New(
		"bach", "chopin", "mozart", "beethoven",
		"prelude", "sonata", "symphony",
		"concerto", "op.", "opus", "movement",
	)
)
