// Package escalation orchestrates the response to classified sensor threats:
// alert creation, responder notification, heightened monitoring, automated
// incident records and prediction persistence.
package escalation

import (
	"time"

	"github.com/google/uuid"

	"github.com/wildguard/wildguard-go/internal/risk"
	"github.com/wildguard/wildguard-go/internal/threat"
)

// Alert categories, named after the triggering evidence class.
const (
	CategoryUnusualSound   = "unusual_sound"
	CategoryCameraTrigger  = "camera_triggered"
	CategoryGPSAnomaly     = "gps_anomaly"
	CategoryMotionDetected = "motion_detected"
)

// Alert is the escalation record produced for a medium or high threat.
type Alert struct {
	ID                string         `json:"id"`
	Timestamp         time.Time      `json:"timestamp"`
	Location          *risk.Location `json:"location,omitempty"`
	Category          string         `json:"category"`
	Confidence        float64        `json:"confidence"`
	SensorID          string         `json:"sensorId"`
	Level             threat.Level   `json:"threatLevel"`
	RecommendedAction string         `json:"recommendedAction"`
}

// newAlert builds the alert for an assessment. The category reflects the
// highest-priority indicator present.
func newAlert(a threat.Assessment, sensorID string, loc *risk.Location, now time.Time) *Alert {
	return &Alert{
		ID:                uuid.New().String(),
		Timestamp:         now,
		Location:          loc,
		Category:          alertCategory(a.Indicators),
		Confidence:        a.Confidence,
		SensorID:          sensorID,
		Level:             a.Level,
		RecommendedAction: recommendedAction(a.Indicators, a.Nighttime),
	}
}

// alertCategory picks the alert category by indicator priority: weapons
// first, then confirmed human presence, then wildlife anomalies.
func alertCategory(ind threat.IndicatorSet) string {
	switch {
	case ind.Gunshot:
		return CategoryUnusualSound
	case ind.HumanPresence:
		return CategoryCameraTrigger
	case ind.AnimalDistress:
		return CategoryGPSAnomaly
	default:
		return CategoryMotionDetected
	}
}

// recommendedAction maps the indicator combination to the field response
// protocol. Rules are ordered most severe first.
func recommendedAction(ind threat.IndicatorSet, nighttime bool) string {
	switch {
	case ind.Gunshot:
		return "IMMEDIATE RANGER RESPONSE - Possible active poaching with weapons"
	case ind.HumanPresence && ind.VehicleMovement:
		return "Urgent patrol dispatch - Human intrusion with vehicle detected"
	case ind.Chainsaw:
		return "Anti-logging team response - Illegal logging activity detected"
	case ind.AnimalDistress && ind.HumanPresence:
		return "Investigate possible human-wildlife conflict or poaching"
	case ind.MultiplePersons && nighttime:
		return "Monitor closely - Group activity during night hours"
	default:
		return "Continue monitoring - Standard protocol"
	}
}
