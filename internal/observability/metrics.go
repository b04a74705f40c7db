// Package observability provides Prometheus metrics for the threat
// intelligence pipeline.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	ReadingsProcessed    *prometheus.CounterVec
	AlertsCreated        *prometheus.CounterVec
	PredictionsStored    prometheus.Counter
	NotificationFailures prometheus.Counter
	AssessmentDuration   prometheus.Histogram
}

// NewMetrics creates and registers the engine metrics with the given
// registerer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ReadingsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wildguard_readings_processed_total",
			Help: "Total number of sensor readings processed, by sensor category.",
		}, []string{"category"}),
		AlertsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wildguard_alerts_created_total",
			Help: "Total number of alerts created, by threat level.",
		}, []string{"threat_level"}),
		PredictionsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wildguard_predictions_stored_total",
			Help: "Total number of threat predictions persisted.",
		}),
		NotificationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wildguard_notification_failures_total",
			Help: "Total number of failed responder notification dispatches.",
		}),
		AssessmentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wildguard_assessment_duration_seconds",
			Help:    "Time spent assessing a single sensor reading.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	collectors := []prometheus.Collector{
		m.ReadingsProcessed,
		m.AlertsCreated,
		m.PredictionsStored,
		m.NotificationFailures,
		m.AssessmentDuration,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}
