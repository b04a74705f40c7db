// extractor.go: per-category interpretation rules mapping sensor payloads
// into indicator sets with confidence contributions.
package threat

import (
	"slices"

	"github.com/wildguard/wildguard-go/internal/datastore"
)

// analyzer interprets one sensor category's payload. Each category has its
// own rule set; adding a category means adding an analyzer, existing rules
// stay untouched.
type analyzer interface {
	analyze(r *Reading) (IndicatorSet, float64, string)
}

var analyzers = map[string]analyzer{
	datastore.SensorOpticalTrap:     opticalTrapAnalyzer{},
	datastore.SensorAcoustic:        acousticAnalyzer{},
	datastore.SensorMotion:          motionAnalyzer{},
	datastore.SensorCollarTelemetry: collarTelemetryAnalyzer{},
	datastore.SensorWeather:         weatherAnalyzer{},
}

// Extract maps a raw sensor reading into a normalized indicator set, a
// confidence contribution and a human-readable description. Unknown sensor
// categories degrade to a generic zero-confidence interpretation rather
// than failing; callers must re-clamp confidence after combining.
func Extract(r *Reading) (IndicatorSet, float64, string) {
	a, ok := analyzers[r.Category]
	if !ok {
		return IndicatorSet{}, 0, "Activity detected"
	}
	return a.analyze(r)
}

func hasAny(labels []string, wanted ...string) bool {
	for _, w := range wanted {
		if slices.Contains(labels, w) {
			return true
		}
	}
	return false
}

// opticalTrapAnalyzer interprets camera trap detections.
type opticalTrapAnalyzer struct{}

func (opticalTrapAnalyzer) analyze(r *Reading) (IndicatorSet, float64, string) {
	var indicators IndicatorSet
	confidence := 0.0
	description := "Camera activation detected"

	labels := r.Value.Labels

	if hasAny(labels, "person", "human") {
		indicators.HumanPresence = true
		confidence += 0.4
		description += " - Human presence detected"

		if hasAny(labels, "multiple_persons") {
			indicators.MultiplePersons = true
			confidence += 0.3
			description += " (multiple individuals)"
		}
	}

	if hasAny(labels, "vehicle", "motorcycle") {
		indicators.VehicleMovement = true
		confidence += 0.5
		description += " - Vehicle detected"
	}

	if hasAny(labels, "weapon", "gun") {
		confidence += 0.8
		description += " - WEAPON DETECTED"
	}

	if hasAny(labels, "night_vision", "flashlight") {
		indicators.NightVision = true
		confidence += 0.3
		description += " - Night equipment detected"
	}

	// Rapid successive captures suggest movement through the frame
	if r.Metadata.RapidSuccession {
		confidence += 0.2
		description += " - Rapid movement pattern"
	}

	return indicators, confidence, description
}

// acousticAnalyzer interprets acoustic sensor classifications.
type acousticAnalyzer struct{}

func (acousticAnalyzer) analyze(r *Reading) (IndicatorSet, float64, string) {
	var indicators IndicatorSet
	confidence := 0.0
	description := "Audio event detected"

	sounds := r.Value.Labels

	if hasAny(sounds, "gunshot", "rifle") {
		indicators.Gunshot = true
		confidence += 0.9
		description += " - GUNSHOT DETECTED"
	}

	if hasAny(sounds, "chainsaw", "cutting") {
		indicators.Chainsaw = true
		confidence += 0.7
		description += " - Chainsaw/cutting detected"
	}

	if hasAny(sounds, "human_voices", "shouting") {
		indicators.HumanPresence = true
		confidence += 0.4
		description += " - Human voices detected"
	}

	if hasAny(sounds, "vehicle_engine", "motorcycle") {
		indicators.VehicleMovement = true
		confidence += 0.5
		description += " - Vehicle engine detected"
	}

	if hasAny(sounds, "animal_distress", "animal_panic") {
		indicators.AnimalDistress = true
		confidence += 0.6
		description += " - Animal distress calls detected"
	}

	// High decibel level
	if r.Value.Intensity > 80 {
		confidence += 0.2
		description += " - High intensity sound"
	}

	return indicators, confidence, description
}

// motionAnalyzer interprets motion sensor pattern reports.
type motionAnalyzer struct{}

func (motionAnalyzer) analyze(r *Reading) (IndicatorSet, float64, string) {
	var indicators IndicatorSet
	confidence := 0.0
	description := "Motion detected"

	switch r.Value.MotionPattern {
	case "human_walking", "bipedal":
		indicators.HumanPresence = true
		confidence += 0.5
		description += " - Human movement pattern"
	case "vehicle_movement":
		indicators.VehicleMovement = true
		confidence += 0.6
		description += " - Vehicle movement detected"
	case "multiple_signatures":
		indicators.MultiplePersons = true
		confidence += 0.3
		description += " - Multiple movement signatures"
	}

	// Motion deep in the night is suspicious on its own
	hour := r.CapturedAt.Hour()
	if hour >= 23 || hour <= 4 {
		confidence += 0.3
		description += " - Late night activity"
	}

	return indicators, confidence, description
}

// collarTelemetryAnalyzer interprets GPS collar behavior analysis.
type collarTelemetryAnalyzer struct{}

func (collarTelemetryAnalyzer) analyze(r *Reading) (IndicatorSet, float64, string) {
	var indicators IndicatorSet
	confidence := 0.0
	description := "GPS tracking update"

	behaviors := r.Value.Behaviors

	if hasAny(behaviors, "panic_movement", "flight_response") {
		indicators.AnimalDistress = true
		confidence += 0.7
		description += " - Animal panic/flight behavior detected"
	}

	if hasAny(behaviors, "herd_scattering", "sudden_direction_change") {
		indicators.AnimalDistress = true
		confidence += 0.6
		description += " - Herd disturbance detected"
	}

	if hasAny(behaviors, "unusual_night_movement") {
		confidence += 0.4
		description += " - Unusual nighttime animal movement"
	}

	// Rapid acceleration in meters/minute
	if r.Value.SpeedChange > 500 {
		confidence += 0.5
		description += " - Rapid animal movement detected"
	}

	return indicators, confidence, description
}

// weatherAnalyzer covers weather stations, which produce environmental data
// with no threat semantics of their own.
type weatherAnalyzer struct{}

func (weatherAnalyzer) analyze(r *Reading) (IndicatorSet, float64, string) {
	return IndicatorSet{}, 0, "Environmental reading"
}
