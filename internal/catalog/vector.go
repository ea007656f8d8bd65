// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package catalog

import "math"

// Vector layout. Only the text block carries signal today; the audio and mood
// blocks are reserved and always zero.
const (
	TextDim  = 512
	AudioDim = 512
	MoodDim  = 3
	FullDim  = TextDim + AudioDim + MoodDim

	// normEpsilon is added to every norm before dividing.
	normEpsilon = 1e-9
)

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// normalized returns v / (‖v‖ + ε) as a new slice.
func normalized(v []float32) []float32 {
	scale := 1 / (norm(v) + normEpsilon)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) * scale)
	}
	return out
}

// resized truncates or zero-pads v to dim, always returning a new slice.
func resized(v []float32, dim int) []float32 {
	out := make([]float32, dim)
	copy(out, v)
	return out
}

// checkEmbedding rejects vectors that cannot be normalized meaningfully.
func checkEmbedding(v []float32) error {
	if len(v) == 0 {
		return errEmptyEmbedding
	}
	for _, x := range v {
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return errNonFinite
		}
	}
	if norm(v) == 0 {
		return errZeroNorm
	}
	return nil
}

// composeRow builds the stored FullDim row from a text embedding that has
// already been fitted to TextDim.
func composeRow(text []float32) []float32 {
	full := make([]float32, FullDim)
	copy(full, text)
	return normalized(full)
}

// NormalizeTextQuery fits a query embedding to TextDim and L2-normalizes it,
// the form expected by Snapshot.TextSimilarity.
func NormalizeTextQuery(q []float32) []float32 {
	return normalized(resized(q, TextDim))
}

// FitText truncates or zero-pads an encoder embedding to TextDim.
func FitText(v []float32) []float32 {
	return resized(v, TextDim)
}
