// Package risk computes contextual risk scores for locations from
// historical incidents and recent sensor alerts, and detects recurring
// time patterns in the incident history.
package risk

import (
	"log/slog"
	"time"

	"github.com/wildguard/wildguard-go/internal/conf"
	"github.com/wildguard/wildguard-go/internal/datastore"
	"github.com/wildguard/wildguard-go/internal/logging"
)

// Location is a geographic point. A nil *Location means the event carried
// no usable geolocation.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Factors holds the contextual inputs to the risk score calculation.
type Factors struct {
	HistoricalIncidents int    `json:"historicalIncidents"`
	RecentActivity      int    `json:"recentActivity"` // incidents in the last 7 days
	SensorAlerts        int    `json:"sensorAlerts"`
	TimeOfDay           string `json:"timeOfDay"` // high, medium or low
	Season              string `json:"season"`    // high, medium or low
	Proximity           string `json:"proximity"` // village, road, border or remote
}

// Pattern is the scored threat pattern for a location and incident type.
type Pattern struct {
	Type             string   `json:"type"`
	Location         Location `json:"location"`
	Frequency        int      `json:"frequency"` // historical incident count
	RiskScore        float64  `json:"riskScore"` // clamped to [0,1]
	TimePatterns     []string `json:"timePatterns"`
	RelatedIncidents []string `json:"relatedIncidents"`
}

// Per-type base scores. Unknown report types default to 0.3.
var typeScores = map[string]float64{
	datastore.IncidentPoaching:           0.8,
	datastore.IncidentSuspiciousActivity: 0.7,
	datastore.IncidentIllegalLogging:     0.6,
	datastore.IncidentFire:               0.9,
	datastore.IncidentWildlifeSighting:   0.2,
	datastore.IncidentInjury:             0.4,
	datastore.IncidentFenceBreach:        0.5,
}

const defaultTypeScore = 0.3

var timeMultipliers = map[string]float64{
	"high":   1.3,
	"medium": 1.1,
	"low":    1.0,
}

var proximityMultipliers = map[string]float64{
	ProximityVillage: 1.2,
	ProximityRoad:    1.4,
	ProximityBorder:  1.6,
	ProximityRemote:  0.8,
}

// recentActivityWindow is the window treated as "recent" for the activity
// multiplier and the escalating-threat pattern.
const recentActivityWindow = 7 * 24 * time.Hour

// Scorer computes location risk from the record store history.
type Scorer struct {
	settings *conf.Settings
	ds       datastore.Interface
	geo      ProximityClassifier
	log      *slog.Logger
}

// NewScorer creates a risk scorer over the given store and proximity
// classifier.
func NewScorer(settings *conf.Settings, ds datastore.Interface, geo ProximityClassifier) *Scorer {
	logger := logging.ForService("risk")
	if logger == nil {
		logger = slog.Default().With("service", "risk")
	}
	return &Scorer{
		settings: settings,
		ds:       ds,
		geo:      geo,
		log:      logger,
	}
}

// Score analyzes the threat pattern at a location for a given report type.
// A nil location skips the history lookups and produces a reduced-context
// score with remote proximity. Store failures degrade the same way: the
// scorer logs and continues with whatever context it has.
func (s *Scorer) Score(loc *Location, reportType string, now time.Time) Pattern {
	var incidents []datastore.Incident
	var sensorAlerts []datastore.SensorReading

	if loc != nil {
		radius := s.settings.Engine.HistoryRadiusDeg
		box := datastore.NewBox(loc.Lat, loc.Lng, radius)

		lookback := time.Duration(s.settings.Engine.LookbackDays) * 24 * time.Hour
		var err error
		incidents, err = s.ds.IncidentsWithin(box, now.Add(-lookback))
		if err != nil {
			s.log.Warn("incident history lookup failed, scoring with reduced context", "error", err)
		}

		alertLookback := time.Duration(s.settings.Engine.SensorAlertLookbackDays) * 24 * time.Hour
		sensorAlerts, err = s.ds.SensorAlertsWithin(box, now.Add(-alertLookback), 50)
		if err != nil {
			s.log.Warn("sensor alert lookup failed, scoring with reduced context", "error", err)
		}
	}

	factors := s.deriveFactors(incidents, sensorAlerts, loc, now)
	score := calculateScore(factors, reportType)
	patterns := identifyTimePatterns(incidents, now)

	pattern := Pattern{
		Type:             reportType,
		Frequency:        len(incidents),
		RiskScore:        score,
		TimePatterns:     patterns,
		RelatedIncidents: incidentIDs(incidents),
	}
	if loc != nil {
		pattern.Location = *loc
	}

	s.log.Debug("risk scoring completed",
		"type", reportType,
		"riskScore", score,
		"incidents", len(incidents),
		"patterns", patterns)

	return pattern
}

// deriveFactors builds the contextual factor set for the score calculation.
func (s *Scorer) deriveFactors(incidents []datastore.Incident, sensorAlerts []datastore.SensorReading, loc *Location, now time.Time) Factors {
	recent := 0
	for i := range incidents {
		if now.Sub(incidents[i].ReportedAt) <= recentActivityWindow {
			recent++
		}
	}

	proximity := ProximityRemote
	if loc != nil && s.geo != nil {
		proximity = s.geo.Classify(loc.Lat, loc.Lng)
	}

	return Factors{
		HistoricalIncidents: len(incidents),
		RecentActivity:      recent,
		SensorAlerts:        len(sensorAlerts),
		TimeOfDay:           timeOfDayBucket(now.Hour()),
		Season:              seasonBucket(now.Month()),
		Proximity:           proximity,
	}
}

// calculateScore applies the scoring model: per-type base score, additive
// history and sensor terms, then the multiplier chain. The result is
// clamped to [0,1].
func calculateScore(factors Factors, reportType string) float64 {
	score, ok := typeScores[reportType]
	if !ok {
		score = defaultTypeScore
	}

	// Historical incident factor, capped
	score += min(0.3, 0.05*float64(factors.HistoricalIncidents))

	// Recent activity multiplier
	if factors.RecentActivity > 0 {
		score *= 1.5
	}

	// Sensor alerts factor, capped
	score += min(0.2, 0.1*float64(factors.SensorAlerts))

	score *= timeMultipliers[factors.TimeOfDay]
	score *= timeMultipliers[factors.Season]
	score *= proximityMultipliers[factors.Proximity]

	return clamp(score)
}

// timeOfDayBucket classifies the hour by typical poaching activity: night
// hours are the riskiest, dawn and dusk moderately so.
func timeOfDayBucket(hour int) string {
	switch {
	case hour >= 22 || hour <= 5:
		return "high"
	case hour <= 8 || hour >= 18:
		return "medium"
	default:
		return "low"
	}
}

// seasonBucket classifies the month. Both dry season windows carry elevated
// risk; there is no low season for poaching pressure.
func seasonBucket(month time.Month) string {
	if (month >= time.June && month <= time.September) ||
		month == time.December || month <= time.February {
		return "high"
	}
	return "medium"
}

func incidentIDs(incidents []datastore.Incident) []string {
	ids := make([]string, len(incidents))
	for i := range incidents {
		ids[i] = incidents[i].ID
	}
	return ids
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
