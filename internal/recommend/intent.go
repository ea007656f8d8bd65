// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package recommend

import (
	"math"
	"strconv"
	"strings"
)

var intentTable = map[Intent]IntentWeights{
	IntentWarmSoft:        {VocalBoost: 0.6, InstrumentalPenalty: 0.6, EnergyBias: -0.25, ValenceBias: 0.4, ClapWeight: 0.7},
	IntentBrightPlayful:   {VocalBoost: 0.3, InstrumentalPenalty: 0.2, EnergyBias: 0.45, ValenceBias: 0.3, ClapWeight: 1.0},
	IntentCoolSoft:        {VocalBoost: 0.1, InstrumentalPenalty: 0.1, EnergyBias: -0.35, ValenceBias: 0, ClapWeight: 1.0},
	IntentMelancholySoft:  {VocalBoost: 0.2, InstrumentalPenalty: 0.2, EnergyBias: -0.4, ValenceBias: -0.35, ClapWeight: 0.9},
	IntentDarkMoody:       {VocalBoost: 0.2, InstrumentalPenalty: 0.4, EnergyBias: -0.15, ValenceBias: -0.4, ClapWeight: 0.85},
	IntentBoldConfident:   {VocalBoost: 0.25, InstrumentalPenalty: 0.15, EnergyBias: 0.6, ValenceBias: 0.2, ClapWeight: 1.1},
	IntentNostalgicWarm:   {VocalBoost: 0.35, InstrumentalPenalty: 0.25, EnergyBias: -0.15, ValenceBias: 0.1, ClapWeight: 0.9},
	IntentRomanticDreamy:  {VocalBoost: 0.5, InstrumentalPenalty: 0.3, EnergyBias: -0.1, ValenceBias: 0.25, ClapWeight: 0.85},
	IntentMysticalAmbient: {VocalBoost: 0, InstrumentalPenalty: 0, EnergyBias: -0.5, ValenceBias: 0, ClapWeight: 1.0},
	IntentChaoticEnergy:   {VocalBoost: 0.1, InstrumentalPenalty: 0, EnergyBias: 0.9, ValenceBias: 0, ClapWeight: 1.1},
}

// Intents returns every intent in classification order.
func Intents() []Intent {
	return []Intent{
		IntentWarmSoft, IntentBrightPlayful, IntentCoolSoft, IntentMelancholySoft,
		IntentDarkMoody, IntentBoldConfident, IntentNostalgicWarm,
		IntentRomanticDreamy, IntentMysticalAmbient, IntentChaoticEnergy,
	}
}

// WeightsFor returns the weight record of an intent.
func WeightsFor(intent Intent) (IntentWeights, bool) {
	w, ok := intentTable[intent]
	return w, ok
}

// ClassifyHex maps a hex color to an intent. Rules are checked in order and
// the first match wins.
func ClassifyHex(hex string) Intent {
	h, s, v := hexToHSV(hex)

	switch {
	case s < 0.20 && v > 0.70:
		return IntentWarmSoft
	case h >= 70 && h <= 150 && s > 0.40:
		return IntentBrightPlayful
	case h >= 200 && h <= 260 && s < 0.40:
		return IntentCoolSoft
	case v < 0.25:
		return IntentDarkMoody
	case s < 0.25 && v < 0.60:
		return IntentMelancholySoft
	case h >= 0 && h <= 20 && s > 0.60:
		return IntentBoldConfident
	case h >= 20 && h <= 60 && s < 0.40:
		return IntentNostalgicWarm
	case h >= 260 && h <= 320:
		return IntentRomanticDreamy
	case s < 0.15:
		return IntentMysticalAmbient
	default:
		return IntentCoolSoft
	}
}

// ParseHex parses "#rrggbb" or "rrggbb" into 8-bit channels.
func ParseHex(hex string) (r, g, b uint8, ok bool) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(n >> 16), uint8(n >> 8), uint8(n), true
}

// hexToHSV returns hue in degrees and saturation and value in [0, 1]. An
// empty or unparseable color is a neutral gray (0, 0, 0.5).
func hexToHSV(hex string) (h, s, v float64) {
	r8, g8, b8, ok := ParseHex(hex)
	if !ok {
		return 0, 0, 0.5
	}
	r, g, b := float64(r8)/255, float64(g8)/255, float64(b8)/255

	maxc := math.Max(r, math.Max(g, b))
	minc := math.Min(r, math.Min(g, b))
	v = maxc
	if maxc == minc {
		return 0, 0, v
	}
	delta := maxc - minc
	s = delta / maxc

	rc := (maxc - r) / delta
	gc := (maxc - g) / delta
	bc := (maxc - b) / delta
	switch maxc {
	case r:
		h = bc - gc
	case g:
		h = 2 + rc - bc
	default:
		h = 4 + gc - rc
	}
	h = math.Mod(h/6, 1)
	if h < 0 {
		h++
	}
	return h * 360, s, v
}
