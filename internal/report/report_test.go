package report

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
)

type capturingGateway struct {
	sent []*notification.Notification
}

func (g *capturingGateway) Send(ctx context.Context, addresses []string, n *notification.Notification) error {
	g.sent = append(g.sent, n)
	return nil
}

type fixture struct {
	ds       datastore.Interface
	notifier *capturingGateway
	service  *Service
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
	settings.Engine.MaxAlertRecipients = 5
	settings.Notification.Enabled = true
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = filepath.Join(t.TempDir(), "test.db")

	ds, err := datastore.New(settings)
	require.NoError(t, err)
	require.NoError(t, ds.Open())
	t.Cleanup(func() { _ = ds.Close() })

	require.NoError(t, ds.SaveResponder(&datastore.Responder{
		Name:           "ranger",
		ContactAddress: "logger://",
		OnDuty:         true,
		LastActiveAt:   time.Now(),
	}))

	notifier := &capturingGateway{}
	scorer := risk.NewScorer(settings, ds, risk.NewGeofenceClassifier(nil))
	recorder := prediction.NewRecorder(settings, ds)

	return &fixture{
		ds:       ds,
		notifier: notifier,
		service:  NewService(settings, ds, scorer, recorder, notifier),
	}
}

var reportTime = time.Date(2026, 4, 15, 12, 0, 0, 0, time.UTC)

func TestSubmitRejectsUnknownType(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Submit(context.Background(), &SubmitRequest{Type: "ufo_sighting"}, reportTime)
	require.Error(t, err)
	assert.Equal(t, errors.CategoryValidation, errors.GetCategory(err))
}

func TestSubmitRecordsCommunityIncident(t *testing.T) {
	f := newFixture(t)

	incident, err := f.service.Submit(context.Background(), &SubmitRequest{
		ReporterID:   "member-12",
		Type:         datastore.IncidentWildlifeSighting,
		Description:  "zebra herd near the river",
		ReportMethod: "sms",
	}, reportTime)
	require.NoError(t, err)

	assert.NotEmpty(t, incident.ID)
	assert.Equal(t, "community", incident.Source)
	assert.Equal(t, datastore.PriorityMedium, incident.Priority) // default
	assert.Equal(t, datastore.VerificationPending, incident.VerificationStatus)

	// A routine sighting does not page the rangers
	assert.Empty(t, f.notifier.sent)
}

func TestSubmitUrgentTypeAlertsRangers(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Submit(context.Background(), &SubmitRequest{
		Type:        datastore.IncidentPoaching,
		Description: "shots heard near the waterhole",
	}, reportTime)
	require.NoError(t, err)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, notification.TierUrgent, f.notifier.sent[0].Tier)
}

func TestSubmitUrgentPriorityUsesImmediateTier(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Submit(context.Background(), &SubmitRequest{
		Type:        datastore.IncidentFenceBreach,
		Priority:    datastore.PriorityUrgent,
		Description: "fence cut, tracks leading in",
	}, reportTime)
	require.NoError(t, err)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, notification.TierImmediate, f.notifier.sent[0].Tier)
}

func TestSubmitHighValueSpeciesIsUrgent(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Submit(context.Background(), &SubmitRequest{
		Type:          datastore.IncidentWildlifeSighting,
		AnimalSpecies: "Black Rhino",
		Description:   "rhino with calf spotted",
	}, reportTime)
	require.NoError(t, err)
	assert.Len(t, f.notifier.sent, 1)
}

func TestSubmitGeolocatedReportStoresPrediction(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Submit(context.Background(), &SubmitRequest{
		Type:        datastore.IncidentPoaching,
		Location:    &risk.Location{Lat: -1.0, Lng: 35.0},
		Description: "snares found",
	}, reportTime)
	require.NoError(t, err)

	predictions, err := f.ds.PredictionsWithin(datastore.NewBox(-1.0, 35.0, 0.1), reportTime)
	require.NoError(t, err)
	require.Len(t, predictions, 1)
	assert.Equal(t, "poaching_risk", predictions[0].PredictionType)
}

func TestVerify(t *testing.T) {
	f := newFixture(t)

	incident, err := f.service.Submit(context.Background(), &SubmitRequest{
		Type:        datastore.IncidentIllegalLogging,
		Description: "stumps along the boundary",
	}, reportTime)
	require.NoError(t, err)

	t.Run("invalid status is rejected", func(t *testing.T) {
		err := f.service.Verify(incident.ID, "confirmed", "ranger-1", "")
		require.Error(t, err)
		assert.Equal(t, errors.CategoryValidation, errors.GetCategory(err))
	})

	t.Run("missing incident reports not found", func(t *testing.T) {
		err := f.service.Verify("missing-id", datastore.VerificationVerified, "ranger-1", "")
		require.Error(t, err)
		assert.Equal(t, errors.CategoryNotFound, errors.GetCategory(err))
	})

	t.Run("verification raises reporter trust", func(t *testing.T) {
		withReporter, err := f.service.Submit(context.Background(), &SubmitRequest{
			ReporterID:  "member-9",
			Type:        datastore.IncidentFenceBreach,
			Description: "wire cut near gate 4",
		}, reportTime)
		require.NoError(t, err)

		reporter, err := f.ds.GetReporter("member-9")
		require.NoError(t, err)
		assert.Equal(t, 50, reporter.TrustScore)
		assert.Equal(t, 1, reporter.ReportsSubmitted)

		require.NoError(t, f.service.Verify(withReporter.ID, datastore.VerificationVerified, "ranger-1", ""))
		reporter, err = f.ds.GetReporter("member-9")
		require.NoError(t, err)
		assert.Equal(t, 55, reporter.TrustScore)
		assert.Equal(t, 1, reporter.ReportsVerified)
	})

	t.Run("rejection lowers reporter trust", func(t *testing.T) {
		rejected, err := f.service.Submit(context.Background(), &SubmitRequest{
			ReporterID:  "member-9",
			Type:        datastore.IncidentWildlifeSighting,
			Description: "unclear photo",
		}, reportTime)
		require.NoError(t, err)

		require.NoError(t, f.service.Verify(rejected.ID, datastore.VerificationRejected, "ranger-1", "no evidence"))
		reporter, err := f.ds.GetReporter("member-9")
		require.NoError(t, err)
		assert.Equal(t, 45, reporter.TrustScore)
	})

	t.Run("verification outcome is persisted", func(t *testing.T) {
		require.NoError(t, f.service.Verify(incident.ID, datastore.VerificationVerified, "ranger-1", "confirmed"))
		got, err := f.ds.GetIncident(incident.ID)
		require.NoError(t, err)
		assert.Equal(t, datastore.VerificationVerified, got.VerificationStatus)
		assert.Equal(t, "ranger-1", got.VerifiedBy)
	})
}
