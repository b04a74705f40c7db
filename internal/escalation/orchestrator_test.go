package escalation

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildguard/wildguard-go/internal/conf"
	"github.com/wildguard/wildguard-go/internal/datastore"
	"github.com/wildguard/wildguard-go/internal/errors"
	"github.com/wildguard/wildguard-go/internal/notification"
	"github.com/wildguard/wildguard-go/internal/prediction"
	"github.com/wildguard/wildguard-go/internal/risk"
	"github.com/wildguard/wildguard-go/internal/threat"
)

type capturingGateway struct {
	sent []sentNotification
	err  error
}

type sentNotification struct {
	addresses    []string
	notification *notification.Notification
}

func (g *capturingGateway) Send(ctx context.Context, addresses []string, n *notification.Notification) error {
	g.sent = append(g.sent, sentNotification{addresses: addresses, notification: n})
	return g.err
}

type capturingController struct {
	activations int
	err         error
}

func (c *capturingController) Connect(ctx context.Context) error { return nil }
func (c *capturingController) IsConnected() bool                 { return true }
func (c *capturingController) Disconnect()                       {}
func (c *capturingController) ActivateHeightenedMonitoring(ctx context.Context, lat, lng, radiusKm float64) error {
	c.activations++
	return c.err
}

type fixture struct {
	settings *conf.Settings
	ds       datastore.Interface
	notifier *capturingGateway
	sensors  *capturingController
	orch     *Orchestrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	settings := &conf.Settings{}
	settings.Engine.PredictionRiskThreshold = 0.3
	settings.Engine.ModelConfidence = 0.85
	settings.Engine.PredictionValidityHours = 24
	settings.Engine.LookbackDays = 30
	settings.Engine.SensorAlertLookbackDays = 7
	settings.Engine.HistoryRadiusDeg = 0.01
	settings.Engine.MonitoringRadiusKm = 2.0
	settings.Engine.MaxAlertRecipients = 5
	settings.Engine.VoiceCallRecipients = 2
	settings.Notification.Enabled = true
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = filepath.Join(t.TempDir(), "test.db")

	ds, err := datastore.New(settings)
	require.NoError(t, err)
	require.NoError(t, ds.Open())
	t.Cleanup(func() { _ = ds.Close() })

	notifier := &capturingGateway{}
	sensors := &capturingController{}
	scorer := risk.NewScorer(settings, ds, risk.NewGeofenceClassifier(nil))
	recorder := prediction.NewRecorder(settings, ds)

	return &fixture{
		settings: settings,
		ds:       ds,
		notifier: notifier,
		sensors:  sensors,
		orch:     NewOrchestrator(settings, ds, scorer, recorder, notifier, sensors, nil),
	}
}

func (f *fixture) saveSensor(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, f.ds.SaveSensor(&datastore.Sensor{
		ID:        id,
		DeviceID:  id,
		Category:  datastore.SensorAcoustic,
		Latitude:  -1.0,
		Longitude: 35.0,
		Status:    "active",
	}))
}

func (f *fixture) saveResponders(t *testing.T, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		require.NoError(t, f.ds.SaveResponder(&datastore.Responder{
			Name:           "ranger",
			ContactAddress: "logger://",
			OnDuty:         true,
			LastActiveAt:   time.Now(),
		}))
	}
}

func (f *fixture) predictions(t *testing.T, at time.Time) []datastore.ThreatPrediction {
	t.Helper()
	predictions, err := f.ds.PredictionsWithin(datastore.NewBox(-1.0, 35.0, 0.1), at)
	require.NoError(t, err)
	return predictions
}

var noonUTC = time.Date(2026, 4, 15, 12, 0, 0, 0, time.UTC)

func TestProcessReadingGunshot(t *testing.T) {
	f := newFixture(t)
	f.saveSensor(t, "mic-1")
	f.saveResponders(t, 3)

	reading := &threat.Reading{
		SensorID:   "mic-1",
		Category:   datastore.SensorAcoustic,
		Value:      threat.Payload{Labels: []string{"gunshot"}},
		CapturedAt: noonUTC,
	}

	assessment, alert, err := f.orch.ProcessReading(context.Background(), reading, noonUTC)
	require.NoError(t, err)
	require.NotNil(t, alert)

	assert.Equal(t, threat.LevelHigh, assessment.Level)
	assert.Equal(t, CategoryUnusualSound, alert.Category)
	assert.Equal(t, "IMMEDIATE RANGER RESPONSE - Possible active poaching with weapons", alert.RecommendedAction)
	require.NotNil(t, alert.Location)
	assert.InDelta(t, -1.0, alert.Location.Lat, 1e-9)

	// Automated incident: high threat maps to a poaching record
	incidents, err := f.ds.IncidentsWithin(datastore.NewBox(-1.0, 35.0, 0.1), noonUTC.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, incidents, 1)
	assert.Equal(t, datastore.IncidentPoaching, incidents[0].Type)
	assert.Equal(t, datastore.PriorityUrgent, incidents[0].Priority)
	assert.Equal(t, "sensor", incidents[0].Source)
	assert.Equal(t, datastore.VerificationPending, incidents[0].VerificationStatus)

	// Immediate-tier dispatch to the on-duty roster
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, notification.TierImmediate, f.notifier.sent[0].notification.Tier)
	assert.Len(t, f.notifier.sent[0].addresses, 3)

	// Heightened monitoring around the sensor
	assert.Equal(t, 1, f.sensors.activations)

	// Poaching at a known hotspot clears the prediction threshold
	stored := f.predictions(t, noonUTC)
	require.Len(t, stored, 1)
	assert.Equal(t, "poaching_risk", stored[0].PredictionType)
	assert.Equal(t, noonUTC.Add(24*time.Hour).Unix(), stored[0].ValidTo.Unix())
}

func TestProcessReadingMediumThreat(t *testing.T) {
	f := newFixture(t)
	f.saveSensor(t, "cam-1")
	f.saveResponders(t, 2)

	reading := &threat.Reading{
		SensorID:   "cam-1",
		Category:   datastore.SensorOpticalTrap,
		Value:      threat.Payload{Labels: []string{"person", "vehicle"}},
		CapturedAt: noonUTC,
	}

	assessment, alert, err := f.orch.ProcessReading(context.Background(), reading, noonUTC)
	require.NoError(t, err)
	require.NotNil(t, alert)

	assert.Equal(t, threat.LevelMedium, assessment.Level)
	assert.Equal(t, CategoryCameraTrigger, alert.Category)
	assert.Equal(t, "Urgent patrol dispatch - Human intrusion with vehicle detected", alert.RecommendedAction)

	incidents, err := f.ds.IncidentsWithin(datastore.NewBox(-1.0, 35.0, 0.1), noonUTC.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, incidents, 1)
	assert.Equal(t, datastore.IncidentSuspiciousActivity, incidents[0].Type)
	assert.Equal(t, datastore.PriorityHigh, incidents[0].Priority)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, notification.TierUrgent, f.notifier.sent[0].notification.Tier)
}

func TestProcessReadingLowThreatIsSuppressed(t *testing.T) {
	f := newFixture(t)
	f.saveSensor(t, "wx-1")
	f.saveResponders(t, 2)

	reading := &threat.Reading{
		SensorID:   "wx-1",
		Category:   datastore.SensorWeather,
		CapturedAt: noonUTC,
	}

	assessment, alert, err := f.orch.ProcessReading(context.Background(), reading, noonUTC)
	require.NoError(t, err)
	assert.Nil(t, alert)
	assert.Equal(t, threat.LevelLow, assessment.Level)

	// The reading is still persisted with its assessment outcome
	readings, err := f.ds.SensorAlertsWithin(datastore.NewBox(-1.0, 35.0, 0.1), noonUTC.Add(-time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, readings) // low threat never counts as an alert

	assert.Empty(t, f.notifier.sent)
	assert.Zero(t, f.sensors.activations)
	assert.Empty(t, f.predictions(t, noonUTC))
}

func TestProcessReadingUnknownSensor(t *testing.T) {
	f := newFixture(t)
	f.saveResponders(t, 1)

	reading := &threat.Reading{
		SensorID:   "ghost-1",
		Category:   datastore.SensorAcoustic,
		Value:      threat.Payload{Labels: []string{"gunshot"}},
		CapturedAt: noonUTC,
	}

	_, alert, err := f.orch.ProcessReading(context.Background(), reading, noonUTC)
	require.NoError(t, err)
	require.NotNil(t, alert)

	assert.Nil(t, alert.Location)
	// No location means no monitoring activation
	assert.Zero(t, f.sensors.activations)
	// Escalation still notifies
	require.Len(t, f.notifier.sent, 1)
}

func TestProcessReadingSideEffectFailuresAreIsolated(t *testing.T) {
	f := newFixture(t)
	f.saveSensor(t, "mic-2")
	f.saveResponders(t, 2)
	f.notifier.err = errors.Newf("gateway down").Build()
	f.sensors.err = errors.Newf("broker down").Build()

	reading := &threat.Reading{
		SensorID:   "mic-2",
		Category:   datastore.SensorAcoustic,
		Value:      threat.Payload{Labels: []string{"gunshot"}},
		CapturedAt: noonUTC,
	}

	_, alert, err := f.orch.ProcessReading(context.Background(), reading, noonUTC)
	require.NoError(t, err)
	require.NotNil(t, alert)

	// Incident and prediction still land despite dispatch failures
	incidents, err := f.ds.IncidentsWithin(datastore.NewBox(-1.0, 35.0, 0.1), noonUTC.Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, incidents, 1)
	assert.NotEmpty(t, f.predictions(t, noonUTC))
}

func TestProcessReadingNoActiveSensorsNearby(t *testing.T) {
	f := newFixture(t)
	f.saveResponders(t, 2)
	// The reporting sensor is down for maintenance and no active units are
	// deployed nearby, so the broadcast would reach nothing
	require.NoError(t, f.ds.SaveSensor(&datastore.Sensor{
		ID:        "mic-4",
		DeviceID:  "mic-4",
		Category:  datastore.SensorAcoustic,
		Latitude:  -1.0,
		Longitude: 35.0,
		Status:    "maintenance",
	}))

	reading := &threat.Reading{
		SensorID:   "mic-4",
		Category:   datastore.SensorAcoustic,
		Value:      threat.Payload{Labels: []string{"gunshot"}},
		CapturedAt: noonUTC,
	}

	_, alert, err := f.orch.ProcessReading(context.Background(), reading, noonUTC)
	require.NoError(t, err)
	require.NotNil(t, alert)
	require.NotNil(t, alert.Location)

	assert.Zero(t, f.sensors.activations)
	// Responders are still notified
	require.Len(t, f.notifier.sent, 1)
}

func TestProcessReadingNotificationsDisabled(t *testing.T) {
	f := newFixture(t)
	f.settings.Notification.Enabled = false
	f.saveSensor(t, "mic-3")
	f.saveResponders(t, 2)

	reading := &threat.Reading{
		SensorID:   "mic-3",
		Category:   datastore.SensorAcoustic,
		Value:      threat.Payload{Labels: []string{"gunshot"}},
		CapturedAt: noonUTC,
	}

	_, alert, err := f.orch.ProcessReading(context.Background(), reading, noonUTC)
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Empty(t, f.notifier.sent)
}

func TestAlertCategoryPriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		indicators threat.IndicatorSet
		want       string
	}{
		{"gunshot outranks everything", threat.IndicatorSet{Gunshot: true, HumanPresence: true, AnimalDistress: true}, CategoryUnusualSound},
		{"human presence before distress", threat.IndicatorSet{HumanPresence: true, AnimalDistress: true}, CategoryCameraTrigger},
		{"distress alone", threat.IndicatorSet{AnimalDistress: true}, CategoryGPSAnomaly},
		{"nothing specific", threat.IndicatorSet{VehicleMovement: true}, CategoryMotionDetected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, alertCategory(tt.indicators))
		})
	}
}

func TestRecommendedActionRules(t *testing.T) {
	t.Parallel()

	assert.Contains(t, recommendedAction(threat.IndicatorSet{Chainsaw: true}, false), "Anti-logging")
	assert.Contains(t, recommendedAction(threat.IndicatorSet{AnimalDistress: true, HumanPresence: true}, false), "human-wildlife conflict")
	assert.Contains(t, recommendedAction(threat.IndicatorSet{MultiplePersons: true}, true), "Group activity during night")
	assert.Contains(t, recommendedAction(threat.IndicatorSet{MultiplePersons: true}, false), "Continue monitoring")
	assert.Contains(t, recommendedAction(threat.IndicatorSet{}, false), "Continue monitoring")
}
