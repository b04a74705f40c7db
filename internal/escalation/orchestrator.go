package escalation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/wildguard/wildguard-go/internal/conf"
	"github.com/wildguard/wildguard-go/internal/datastore"
	"github.com/wildguard/wildguard-go/internal/errors"
	"github.com/wildguard/wildguard-go/internal/logging"
	"github.com/wildguard/wildguard-go/internal/notification"
	"github.com/wildguard/wildguard-go/internal/observability"
	"github.com/wildguard/wildguard-go/internal/prediction"
	"github.com/wildguard/wildguard-go/internal/risk"
	"github.com/wildguard/wildguard-go/internal/sensorctl"
	"github.com/wildguard/wildguard-go/internal/threat"
)

// Sensor metadata changes rarely, so lookups are cached per sensor.
const (
	sensorCacheTTL     = 10 * time.Minute
	sensorCacheCleanup = 30 * time.Minute
)

// Approximate km per degree of latitude, used to size monitoring queries.
const kmPerDegree = 111.0

// Orchestrator runs the full response pipeline for incoming sensor readings.
// Side effects after alert creation are isolated: a failed notification,
// monitoring activation, incident write or prediction write is logged and the
// rest of the pipeline continues.
type Orchestrator struct {
	settings    *conf.Settings
	ds          datastore.Interface
	scorer      *risk.Scorer
	recorder    *prediction.Recorder
	notifier    notification.Gateway
	sensors     sensorctl.Controller
	metrics     *observability.Metrics
	sensorCache *gocache.Cache
	log         *slog.Logger
}

// NewOrchestrator wires the escalation pipeline. Metrics may be nil.
func NewOrchestrator(
	settings *conf.Settings,
	ds datastore.Interface,
	scorer *risk.Scorer,
	recorder *prediction.Recorder,
	notifier notification.Gateway,
	sensors sensorctl.Controller,
	metrics *observability.Metrics,
) *Orchestrator {
	logger := logging.ForService("escalation")
	if logger == nil {
		logger = slog.Default().With("service", "escalation")
	}
	return &Orchestrator{
		settings:    settings,
		ds:          ds,
		scorer:      scorer,
		recorder:    recorder,
		notifier:    notifier,
		sensors:     sensors,
		metrics:     metrics,
		sensorCache: gocache.New(sensorCacheTTL, sensorCacheCleanup),
		log:         logger,
	}
}

// ProcessReading assesses one sensor reading and escalates it when warranted.
// The assessment is always returned and the reading is always persisted; the
// alert is nil when the threat level stays low. Only reading persistence
// failures surface as errors.
func (o *Orchestrator) ProcessReading(ctx context.Context, r *threat.Reading, now time.Time) (threat.Assessment, *Alert, error) {
	started := time.Now()

	indicators, confidence, description := threat.Extract(r)
	assessment := threat.Classify(indicators, confidence, description, now)

	loc := o.sensorLocation(r.SensorID)

	if err := o.persistReading(r, assessment, loc, now); err != nil {
		return assessment, nil, err
	}

	if o.metrics != nil {
		o.metrics.ReadingsProcessed.WithLabelValues(r.Category).Inc()
		o.metrics.AssessmentDuration.Observe(time.Since(started).Seconds())
	}

	if assessment.Level == threat.LevelLow {
		o.log.Debug("threat below escalation threshold",
			"sensor", r.SensorID,
			"confidence", assessment.Confidence)
		return assessment, nil, nil
	}

	alert := newAlert(assessment, r.SensorID, loc, now)
	o.log.Info("threat alert created",
		"alert", alert.ID,
		"level", alert.Level,
		"category", alert.Category,
		"sensor", alert.SensorID,
		"action", alert.RecommendedAction)
	if o.metrics != nil {
		o.metrics.AlertsCreated.WithLabelValues(string(alert.Level)).Inc()
	}

	incidentType := o.recordIncident(alert, assessment, now)
	o.notifyResponders(ctx, alert, assessment)
	o.activateNearbySensors(ctx, alert)
	o.forecastRisk(alert, incidentType, now)

	return assessment, alert, nil
}

// sensorLocation resolves a sensor's deployed position, caching lookups.
// Unknown sensors yield a nil location and a reduced-context escalation.
func (o *Orchestrator) sensorLocation(sensorID string) *risk.Location {
	if cached, found := o.sensorCache.Get(sensorID); found {
		if loc, ok := cached.(*risk.Location); ok {
			return loc
		}
	}

	sensor, err := o.ds.GetSensor(sensorID)
	if err != nil {
		o.log.Warn("sensor lookup failed, escalating without location",
			"sensor", sensorID, "error", err)
		return nil
	}

	loc := &risk.Location{Lat: sensor.Latitude, Lng: sensor.Longitude}
	o.sensorCache.Set(sensorID, loc, gocache.DefaultExpiration)
	return loc
}

// persistReading stores the processed reading with its assessment outcome.
func (o *Orchestrator) persistReading(r *threat.Reading, a threat.Assessment, loc *risk.Location, now time.Time) error {
	payload, err := json.Marshal(r.Value)
	if err != nil {
		return errors.New(err).
			Component("escalation").
			Category(errors.CategoryValidation).
			Build()
	}
	metadata, err := json.Marshal(r.Metadata)
	if err != nil {
		return errors.New(err).
			Component("escalation").
			Category(errors.CategoryValidation).
			Build()
	}

	reading := &datastore.SensorReading{
		SensorID:    r.SensorID,
		Category:    r.Category,
		Payload:     string(payload),
		Metadata:    string(metadata),
		Confidence:  a.Confidence,
		ThreatLevel: string(a.Level),
		Description: a.Description,
		CapturedAt:  r.CapturedAt,
		ProcessedAt: now,
	}
	if loc != nil {
		reading.Latitude = loc.Lat
		reading.Longitude = loc.Lng
	}

	if err := o.ds.SaveReading(reading); err != nil {
		return errors.New(err).
			Component("escalation").
			Category(errors.CategoryDatabase).
			Context("sensor", r.SensorID).
			Build()
	}
	return nil
}

// recordIncident writes the automated incident for the alert and returns the
// incident type used, which also drives risk scoring.
func (o *Orchestrator) recordIncident(alert *Alert, a threat.Assessment, now time.Time) string {
	incidentType := datastore.IncidentSuspiciousActivity
	priority := datastore.PriorityHigh
	if alert.Level == threat.LevelHigh {
		incidentType = datastore.IncidentPoaching
		priority = datastore.PriorityUrgent
	}

	incident := &datastore.Incident{
		Type:     incidentType,
		Priority: priority,
		Description: fmt.Sprintf("Automated sensor alert: %s (confidence %.2f). Recommended: %s",
			a.Description, a.Confidence, alert.RecommendedAction),
		Source:             "sensor",
		VerificationStatus: datastore.VerificationPending,
		ReportedAt:         now,
	}
	if alert.Location != nil {
		incident.Latitude = alert.Location.Lat
		incident.Longitude = alert.Location.Lng
	}

	if err := o.ds.SaveIncident(incident); err != nil {
		o.log.Error("automated incident write failed", "alert", alert.ID, "error", err)
		return incidentType
	}

	o.log.Info("automated incident recorded",
		"incident", incident.ID,
		"type", incidentType,
		"priority", priority)
	return incidentType
}

// notifyResponders dispatches the alert to the on-duty roster, capped by
// configuration. Immediate-tier alerts flag the first responders for voice
// follow-up.
func (o *Orchestrator) notifyResponders(ctx context.Context, alert *Alert, a threat.Assessment) {
	if !o.settings.Notification.Enabled {
		return
	}

	tier := notification.TierUrgent
	if alert.Level == threat.LevelHigh {
		tier = notification.TierImmediate
	}

	responders, err := o.ds.OnDutyResponders(o.settings.Engine.MaxAlertRecipients)
	if err != nil {
		o.log.Error("responder roster lookup failed", "alert", alert.ID, "error", err)
		return
	}
	if len(responders) == 0 {
		o.log.Warn("no on-duty responders for alert", "alert", alert.ID)
		return
	}

	addresses := make([]string, 0, len(responders))
	for i := range responders {
		addresses = append(addresses, responders[i].ContactAddress)
	}

	n := notification.New(tier,
		fmt.Sprintf("%s THREAT - %s", levelTitle(alert.Level), alert.Category),
		alertMessage(alert, a)).
		WithComponent("escalation").
		WithMetadata("alert_id", alert.ID).
		WithMetadata("sensor_id", alert.SensorID)

	if err := o.notifier.Send(ctx, addresses, n); err != nil {
		o.log.Error("responder notification failed", "alert", alert.ID, "error", err)
		if o.metrics != nil {
			o.metrics.NotificationFailures.Inc()
		}
	}

	if tier == notification.TierImmediate {
		voice := min(o.settings.Engine.VoiceCallRecipients, len(responders))
		for i := 0; i < voice; i++ {
			o.log.Info("voice contact requested for responder",
				"alert", alert.ID,
				"responder", responders[i].ID,
				"name", responders[i].Name)
		}
	}
}

// activateNearbySensors requests heightened monitoring around the alert when
// active sensors are deployed inside the monitoring radius. Fire and forget,
// a failure never aborts the escalation.
func (o *Orchestrator) activateNearbySensors(ctx context.Context, alert *Alert) {
	if alert.Location == nil {
		return
	}
	radius := o.settings.Engine.MonitoringRadiusKm

	box := datastore.NewBox(alert.Location.Lat, alert.Location.Lng, radius/kmPerDegree)
	nearby, err := o.ds.SensorsWithin(box)
	if err != nil {
		// Broadcast anyway, the fleet query is advisory
		o.log.Warn("nearby sensor query failed, broadcasting regardless",
			"alert", alert.ID, "error", err)
	} else if len(nearby) == 0 {
		o.log.Debug("no active sensors in monitoring radius",
			"alert", alert.ID, "radius_km", radius)
		return
	}

	err = o.sensors.ActivateHeightenedMonitoring(ctx, alert.Location.Lat, alert.Location.Lng, radius)
	if err != nil {
		o.log.Warn("heightened monitoring activation failed",
			"alert", alert.ID, "error", err)
		return
	}
	o.log.Info("heightened monitoring requested",
		"alert", alert.ID,
		"radius_km", radius,
		"sensors", len(nearby))
}

// forecastRisk scores the alert location and persists a prediction when the
// score clears the threshold. The alert's own field response leads the
// recommended action list.
func (o *Orchestrator) forecastRisk(alert *Alert, incidentType string, now time.Time) {
	pattern := o.scorer.Score(alert.Location, incidentType, now)

	extra := []prediction.Action{{
		Action:      "alert_response",
		Priority:    datastore.PriorityUrgent,
		Description: alert.RecommendedAction,
	}}

	stored, err := o.recorder.Record(pattern, extra, now)
	if err != nil {
		o.log.Error("prediction write failed", "alert", alert.ID, "error", err)
		return
	}
	if stored != nil && o.metrics != nil {
		o.metrics.PredictionsStored.Inc()
	}
}

func levelTitle(level threat.Level) string {
	switch level {
	case threat.LevelHigh:
		return "HIGH"
	case threat.LevelMedium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

func alertMessage(alert *Alert, a threat.Assessment) string {
	msg := fmt.Sprintf("%s\nRecommended: %s\nConfidence: %.0f%%",
		a.Description, alert.RecommendedAction, alert.Confidence*100)
	if alert.Location != nil {
		msg += fmt.Sprintf("\nLocation: %.5f, %.5f", alert.Location.Lat, alert.Location.Lng)
	}
	if a.Nighttime {
		msg += "\nNight-time activity"
	}
	return msg
}
