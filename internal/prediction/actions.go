// Package prediction persists and serves time-bounded threat forecasts
// derived from risk scoring.
package prediction

import (
	"github.com/wildguard/wildguard-go/internal/datastore"
	"github.com/wildguard/wildguard-go/internal/risk"
)

// Action is a single recommended response step attached to a prediction.
type Action struct {
	Action      string `json:"action"`
	Priority    string `json:"priority"`
	Description string `json:"description"`
}

// GenerateActions derives the recommended action list for a scored pattern.
// Extra actions supplied by the caller (for example the field response an
// alert already requested) come first, then the score- and pattern-driven
// ones.
func GenerateActions(pattern risk.Pattern, extra []Action) []Action {
	actions := make([]Action, 0, len(extra)+4)
	actions = append(actions, extra...)

	switch {
	case pattern.RiskScore > 0.7:
		actions = append(actions, Action{
			Action:      "immediate_patrol",
			Priority:    datastore.PriorityUrgent,
			Description: "Deploy patrol team to the area immediately",
		})
	case pattern.RiskScore > 0.5:
		actions = append(actions, Action{
			Action:      "scheduled_patrol",
			Priority:    datastore.PriorityHigh,
			Description: "Schedule a patrol within the next 24 hours",
		})
	}

	for _, tag := range pattern.TimePatterns {
		switch tag {
		case risk.PatternNightActivity:
			actions = append(actions, Action{
				Action:      "night_surveillance",
				Priority:    datastore.PriorityMedium,
				Description: "Increase night-time monitoring in this area",
			})
		case risk.PatternEscalatingThreat:
			actions = append(actions, Action{
				Action:      "community_alert",
				Priority:    datastore.PriorityHigh,
				Description: "Alert nearby communities about escalating activity",
			})
		}
	}

	if pattern.Frequency > 5 {
		actions = append(actions, Action{
			Action:      "sensor_deployment",
			Priority:    datastore.PriorityMedium,
			Description: "Deploy additional sensors to this hotspot",
		})
	}

	return actions
}

// predictionType maps an incident type to the forecast category it feeds.
func predictionType(incidentType string) string {
	switch incidentType {
	case datastore.IncidentPoaching:
		return "poaching_risk"
	case datastore.IncidentFire:
		return "fire_risk"
	default:
		return "human_activity"
	}
}
