// classify.go: combines an indicator set and time-of-day context into a
// discrete threat level with a final confidence.
package threat

import "time"

// nightConfidenceBoost reflects the materially higher risk carried by
// threat signals during low-visibility hours.
const nightConfidenceBoost = 1.3

// Classify combines the indicator set and extraction confidence into a
// threat assessment. Rules are evaluated in precedence order:
//
//  1. high: gunshot, or human presence + vehicle movement + animal distress
//     all set simultaneously.
//  2. medium: combined confidence above 0.6, or chainsaw, or human presence
//     with night-vision equipment, or multiple persons with animal distress.
//  3. low otherwise.
//
// During the night window a non-low assessment gets its confidence boosted
// and a medium level is promoted to high. The returned confidence is always
// clamped to [0,1].
func Classify(indicators IndicatorSet, confidence float64, description string, now time.Time) Assessment {
	level := calculateLevel(indicators, confidence)

	nighttime := IsNightHour(now.Hour())
	if nighttime && level != LevelLow {
		confidence *= nightConfidenceBoost
		if level == LevelMedium {
			level = LevelHigh
		}
	}

	return Assessment{
		Indicators:  indicators,
		Confidence:  Clamp(confidence),
		Level:       level,
		Description: description,
		Nighttime:   nighttime,
	}
}

func calculateLevel(indicators IndicatorSet, confidence float64) Level {
	if indicators.Gunshot ||
		(indicators.HumanPresence && indicators.VehicleMovement && indicators.AnimalDistress) {
		return LevelHigh
	}

	if confidence > 0.6 ||
		indicators.Chainsaw ||
		(indicators.HumanPresence && indicators.NightVision) ||
		(indicators.MultiplePersons && indicators.AnimalDistress) {
		return LevelMedium
	}

	return LevelLow
}
