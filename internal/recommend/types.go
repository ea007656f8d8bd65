// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package recommend

import (
	"fmt"
	"time"
)

// Intent is the listening intent derived from a color.
type Intent string

// The closed set of intents.
const (
	IntentWarmSoft        Intent = "warm_soft"
	IntentBrightPlayful   Intent = "bright_playful"
	IntentCoolSoft        Intent = "cool_soft"
	IntentMelancholySoft  Intent = "melancholy_soft"
	IntentDarkMoody       Intent = "dark_moody"
	IntentBoldConfident   Intent = "bold_confident"
	IntentNostalgicWarm   Intent = "nostalgic_warm"
	IntentRomanticDreamy  Intent = "romantic_dreamy"
	IntentMysticalAmbient Intent = "mystical_ambient"
	IntentChaoticEnergy   Intent = "chaotic_energy"
)

// String returns the wire name of the intent.
func (i Intent) String() string {
	return string(i)
}

// IntentWeights shapes scoring for one intent.
type IntentWeights struct {
	VocalBoost          float64 `json:"vocal_boost"`
	InstrumentalPenalty float64 `json:"instrumental_penalty"`
	EnergyBias          float64 `json:"energy_bias"`
	ValenceBias         float64 `json:"valence_bias"`
	ClapWeight          float64 `json:"clap_weight"`
	RomanceBias         float64 `json:"romance_bias"`
}

// TasteProfile biases results toward a listener's genres. A nil profile is
// neutral.
type TasteProfile struct {
	TopGenres   []string       `json:"top_genres"`
	GenreCounts map[string]int `json:"genre_counts,omitempty"`

	// AvoidGameSoundtracks drops every game soundtrack match, even allowed
	// ones. Nil means Config.AvoidGameSoundtracks.
	AvoidGameSoundtracks *bool `json:"avoid_game_soundtracks,omitempty"`

	PrefersSoft bool `json:"prefers_soft"`
	PrefersPop  bool `json:"prefers_pop"`
}

// Preferences overrides individual scoring weights. Nil fields keep the
// configured value.
type Preferences struct {
	WClap       *float64 `json:"w_clap,omitempty" validate:"omitempty,gte=0,lte=10"`
	WEmotion    *float64 `json:"w_emotion,omitempty" validate:"omitempty,gte=0,lte=10"`
	WModern     *float64 `json:"w_modern,omitempty" validate:"omitempty,gte=0,lte=10"`
	WEnergyPref *float64 `json:"w_energy_pref,omitempty" validate:"omitempty,gte=0,lte=10"`
	EnergyPref  *float64 `json:"energy_pref,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// Weights are the coefficients of the base score.
type Weights struct {
	Clap       float64 `koanf:"clap" json:"w_clap"`
	Emotion    float64 `koanf:"emotion" json:"w_emotion"`
	Modern     float64 `koanf:"modern" json:"w_modern"`
	EnergyPref float64 `koanf:"energy_pref" json:"w_energy_pref"`
}

// Query is one recommendation request.
type Query struct {
	// Embedding is the text embedding of the mood prompt. At least TextDim
	// values; extra values are ignored, so a full catalog vector is accepted.
	Embedding []float32

	// Valence and Arousal are the mood target, both in [0, 1].
	Valence float64
	Arousal float64

	ColorHex    string
	Taste       *TasteProfile
	Preferences *Preferences

	// Limit <= 0 means Config.Limits.DefaultLimit.
	Limit int

	// Seed makes the result reproducible. Nil draws a fresh seed.
	Seed *int64

	RequestID string
}

// Recommendation is one selected track.
type Recommendation struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Artists     []string `json:"artists"`
	AlbumImage  *string  `json:"album_image"`
	PreviewURL  *string  `json:"preview_url"`
	ExternalURL string   `json:"external_url"`
	Score       float64  `json:"score"`
}

// StageCounts records how many candidates survived each pipeline stage.
type StageCounts struct {
	Total          int `json:"total"`
	AfterBlacklist int `json:"after_blacklist"`
	AfterEmotion   int `json:"after_emotion"`
	AfterGame      int `json:"after_game"`
	Selected       int `json:"selected"`
}

// Response is the result of a recommendation request.
type Response struct {
	Items           []Recommendation `json:"items"`
	Intent          Intent           `json:"intent"`
	AdjustedArousal float64          `json:"adjusted_arousal"`
	Stages          StageCounts      `json:"stages"`
	Metadata        ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains information about how a response was produced.
type ResponseMetadata struct {
	RequestID         string    `json:"request_id"`
	Seed              int64     `json:"seed"`
	CatalogGeneration uint64    `json:"catalog_generation"`
	LatencyMS         int64     `json:"latency_ms"`
	Timestamp         time.Time `json:"timestamp"`
}

// ValidationError reports a query that cannot be served.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
