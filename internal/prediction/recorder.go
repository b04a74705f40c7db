package prediction

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/wildguard/wildguard-go/internal/conf"
	"github.com/wildguard/wildguard-go/internal/datastore"
	"github.com/wildguard/wildguard-go/internal/errors"
	"github.com/wildguard/wildguard-go/internal/logging"
	"github.com/wildguard/wildguard-go/internal/risk"
)

// factorSnapshot is the JSON shape stored in a prediction's Factors column.
type factorSnapshot struct {
	HistoricalIncidents int      `json:"historicalIncidents"`
	TimePatterns        []string `json:"timePatterns"`
	RelatedIncidents    []string `json:"relatedIncidents"`
}

// Recorder turns scored patterns into persisted predictions when they clear
// the configured risk threshold.
type Recorder struct {
	settings *conf.Settings
	ds       datastore.Interface
	log      *slog.Logger
}

// NewRecorder creates a prediction recorder over the given store.
func NewRecorder(settings *conf.Settings, ds datastore.Interface) *Recorder {
	logger := logging.ForService("prediction")
	if logger == nil {
		logger = slog.Default().With("service", "prediction")
	}
	return &Recorder{
		settings: settings,
		ds:       ds,
		log:      logger,
	}
}

// Record persists a prediction for the pattern if its risk score exceeds the
// configured threshold. Extra actions are placed ahead of the generated ones.
// It returns the stored prediction, or nil when the score stays below the
// threshold.
func (r *Recorder) Record(pattern risk.Pattern, extra []Action, now time.Time) (*datastore.ThreatPrediction, error) {
	if pattern.RiskScore <= r.settings.Engine.PredictionRiskThreshold {
		return nil, nil
	}

	factors, err := json.Marshal(factorSnapshot{
		HistoricalIncidents: pattern.Frequency,
		TimePatterns:        pattern.TimePatterns,
		RelatedIncidents:    pattern.RelatedIncidents,
	})
	if err != nil {
		return nil, errors.New(err).
			Component("prediction").
			Category(errors.CategoryPrediction).
			Build()
	}

	actions, err := json.Marshal(GenerateActions(pattern, extra))
	if err != nil {
		return nil, errors.New(err).
			Component("prediction").
			Category(errors.CategoryPrediction).
			Build()
	}

	validity := time.Duration(r.settings.Engine.PredictionValidityHours) * time.Hour
	p := &datastore.ThreatPrediction{
		PredictionType:     predictionType(pattern.Type),
		Latitude:           pattern.Location.Lat,
		Longitude:          pattern.Location.Lng,
		RiskScore:          pattern.RiskScore,
		Confidence:         r.settings.Engine.ModelConfidence,
		TimeWindow:         "next_24h",
		Factors:            string(factors),
		RecommendedActions: string(actions),
		ValidFrom:          now,
		ValidTo:            now.Add(validity),
		CreatedAt:          now,
	}

	if err := r.ds.SavePrediction(p); err != nil {
		return nil, errors.New(err).
			Component("prediction").
			Category(errors.CategoryDatabase).
			Context("prediction_type", p.PredictionType).
			Build()
	}

	r.log.Info("threat prediction stored",
		"type", p.PredictionType,
		"riskScore", p.RiskScore,
		"validTo", p.ValidTo)

	return p, nil
}
