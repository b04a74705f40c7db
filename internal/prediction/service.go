package prediction

import (
	"encoding/json"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/wildguard/wildguard-go/internal/conf"
	"github.com/wildguard/wildguard-go/internal/datastore"
	"github.com/wildguard/wildguard-go/internal/errors"
	"github.com/wildguard/wildguard-go/internal/logging"
	"github.com/wildguard/wildguard-go/internal/risk"
)

const (
	summaryCacheKey = "daily_summary"
	summaryCacheTTL = 5 * time.Minute

	// summaryFetchLimit bounds the rows scanned for a summary; counts are
	// taken over this window, not the full table.
	summaryFetchLimit = 10

	highRiskFloor   = 0.7
	mediumRiskFloor = 0.4

	maxRecommendations = 5
)

// SummaryEntry is one hotspot in the daily summary, ordered by risk.
type SummaryEntry struct {
	Location  risk.Location `json:"location"`
	RiskScore float64       `json:"riskScore"`
	Type      string        `json:"type"`
	Actions   []Action      `json:"actions"`
}

// Summary aggregates the predictions active during one calendar day.
type Summary struct {
	Date            string         `json:"date"`
	TotalThreats    int            `json:"totalThreats"`
	HighRiskAreas   int            `json:"highRiskAreas"`
	MediumRiskAreas int            `json:"mediumRiskAreas"`
	Recommendations []SummaryEntry `json:"recommendations"`
}

// Service answers read queries against the prediction store.
type Service struct {
	settings *conf.Settings
	ds       datastore.Interface
	cache    *gocache.Cache
	log      *slog.Logger
}

// NewService creates the prediction query service.
func NewService(settings *conf.Settings, ds datastore.Interface) *Service {
	logger := logging.ForService("prediction")
	if logger == nil {
		logger = slog.Default().With("service", "prediction")
	}
	return &Service{
		settings: settings,
		ds:       ds,
		cache:    gocache.New(summaryCacheTTL, 10*time.Minute),
		log:      logger,
	}
}

// CurrentThreats returns the predictions valid at the given instant whose
// location falls within radiusDeg of the coordinate, highest risk first.
// A zero or negative radius matches nothing.
func (s *Service) CurrentThreats(lat, lng, radiusDeg float64, at time.Time) ([]datastore.ThreatPrediction, error) {
	if radiusDeg <= 0 {
		return nil, nil
	}
	box := datastore.NewBox(lat, lng, radiusDeg)
	predictions, err := s.ds.PredictionsWithin(box, at)
	if err != nil {
		return nil, errors.New(err).
			Component("prediction").
			Category(errors.CategoryDatabase).
			Build()
	}
	return predictions, nil
}

// DailySummary aggregates the predictions whose validity overlaps the
// calendar day containing now. Results are cached briefly because ranger
// dashboards poll this endpoint.
func (s *Service) DailySummary(now time.Time) (*Summary, error) {
	if cached, found := s.cache.Get(summaryCacheKey); found {
		if summary, ok := cached.(*Summary); ok {
			return summary, nil
		}
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	predictions, err := s.ds.PredictionsActiveBetween(dayStart, dayEnd, summaryFetchLimit)
	if err != nil {
		return nil, errors.New(err).
			Component("prediction").
			Category(errors.CategoryDatabase).
			Build()
	}

	summary := &Summary{
		Date:            dayStart.Format("2006-01-02"),
		TotalThreats:    len(predictions),
		Recommendations: []SummaryEntry{},
	}

	for i := range predictions {
		p := &predictions[i]
		switch {
		case p.RiskScore > highRiskFloor:
			summary.HighRiskAreas++
		case p.RiskScore > mediumRiskFloor:
			summary.MediumRiskAreas++
		}

		if len(summary.Recommendations) < maxRecommendations {
			summary.Recommendations = append(summary.Recommendations, SummaryEntry{
				Location:  risk.Location{Lat: p.Latitude, Lng: p.Longitude},
				RiskScore: p.RiskScore,
				Type:      p.PredictionType,
				Actions:   decodeActions(p.RecommendedActions, s.log),
			})
		}
	}

	s.cache.Set(summaryCacheKey, summary, gocache.DefaultExpiration)
	return summary, nil
}

// decodeActions unpacks a stored action list. Malformed rows degrade to an
// empty list rather than failing the summary.
func decodeActions(raw string, log *slog.Logger) []Action {
	if raw == "" {
		return []Action{}
	}
	var actions []Action
	if err := json.Unmarshal([]byte(raw), &actions); err != nil {
		log.Warn("skipping malformed recommended actions", "error", err)
		return []Action{}
	}
	return actions
}
