// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

// Package recommend turns a color and a target mood into a short list of
// catalog tracks.
//
// # Pipeline
//
// Every request runs the same linear pipeline over one catalog snapshot:
//
//  1. Intent: the color is mapped to one of ten intents (ClassifyHex). Each
//     intent carries a static weight record that shapes scoring.
//  2. Filters: blacklisted instrumentals, tracks too far from the mood target
//     and game soundtracks are removed, in that order.
//  3. Scoring: text similarity to the query embedding, closeness to the mood
//     target, recency and energy fit are combined, then adjusted for taste,
//     themes, instrumentals, popularity, distinctiveness and the intent.
//  4. Selection: duplicates are removed, each artist is capped, classical
//     pieces get a small quota, ties are shuffled with the request seed and
//     the list is cut to the requested limit.
//
// # Determinism
//
// A request with a Seed always produces the same output for the same catalog
// snapshot. Without a seed the engine draws one from its own generator and
// reports it in the response metadata, so any response can be replayed.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), cat, logger)
//	if err != nil {
//	    return err
//	}
//	resp, err := engine.Recommend(ctx, recommend.Query{
//	    Embedding: embedding,
//	    Valence:   0.8,
//	    Arousal:   0.6,
//	    ColorHex:  "#ffb6c1",
//	    Limit:     10,
//	})
package recommend
