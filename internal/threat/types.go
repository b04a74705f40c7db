// Package threat implements the sensor-signal interpretation stage of the
// engine: it maps raw sensor readings into normalized indicator sets and
// classifies them into discrete threat levels.
package threat

import (
	"time"
)

// Level is the discrete threat classification of a single event.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Payload is the structured value carried by a sensor reading. Sensor
// payloads arrive with coarse semantic labels already attached; the engine
// only combines and scores them. All fields are optional, absent fields
// contribute nothing.
type Payload struct {
	// Labels carries semantic detection labels from optical trap and
	// acoustic sensors, e.g. "person", "vehicle", "gunshot".
	Labels []string `json:"labels,omitempty"`
	// MotionPattern is the named movement pattern reported by motion sensors.
	MotionPattern string `json:"motion_pattern,omitempty"`
	// Behaviors carries behavior tags from collar telemetry analysis.
	Behaviors []string `json:"behaviors,omitempty"`
	// Intensity is the sound level in dB for acoustic readings.
	Intensity float64 `json:"intensity,omitempty"`
	// SpeedChange is the animal speed delta in meters/minute for telemetry.
	SpeedChange float64 `json:"speed_change,omitempty"`
}

// Metadata carries optional sensor-specific context for a reading.
type Metadata struct {
	// RapidSuccession marks optical trap captures triggered in quick series.
	RapidSuccession bool `json:"rapid_succession,omitempty"`
}

// Reading is one raw sensor data point as received by the pipeline. It is
// immutable once received and owned by the pipeline for a single processing
// pass.
type Reading struct {
	SensorID   string    `json:"sensorId"`
	Category   string    `json:"category"`
	Value      Payload   `json:"value"`
	Metadata   Metadata  `json:"metadata,omitempty"`
	CapturedAt time.Time `json:"capturedAt"`
}

// IndicatorSet holds the boolean evidence flags derived from one reading.
// Derived, never mutated after creation.
type IndicatorSet struct {
	HumanPresence   bool `json:"humanPresence"`
	VehicleMovement bool `json:"vehicleMovement"`
	AnimalDistress  bool `json:"animalDistress"`
	Gunshot         bool `json:"gunshot"`
	Chainsaw        bool `json:"chainsaw"`
	NightVision     bool `json:"nightVision"`
	MultiplePersons bool `json:"multiplePersons"`
}

// Any reports whether at least one indicator is set.
func (s IndicatorSet) Any() bool {
	return s.HumanPresence || s.VehicleMovement || s.AnimalDistress ||
		s.Gunshot || s.Chainsaw || s.NightVision || s.MultiplePersons
}

// Assessment is the result of classifying one reading. It is not persisted
// directly, only its consequences are.
type Assessment struct {
	Indicators  IndicatorSet `json:"indicators"`
	Confidence  float64      `json:"confidence"` // clamped to [0,1]
	Level       Level        `json:"threatLevel"`
	Description string       `json:"description"`
	Nighttime   bool         `json:"isNighttime"`
}

// Clamp limits a confidence or risk value to the [0,1] range.
func Clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// IsNightHour reports whether the given hour falls in the elevated-risk
// night window of 22:00 through 05:59.
func IsNightHour(hour int) bool {
	return hour >= 22 || hour <= 5
}
