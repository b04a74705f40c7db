// Package report handles community incident report intake and verification.
// Reports arrive over SMS, USSD, voice and app channels; intake normalizes
// them into incident records, flags urgent ones for ranger response and feeds
// geolocated reports into risk scoring.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/wildguard/wildguard-go/internal/conf"
	"github.com/wildguard/wildguard-go/internal/datastore"
	"github.com/wildguard/wildguard-go/internal/errors"
	"github.com/wildguard/wildguard-go/internal/logging"
	"github.com/wildguard/wildguard-go/internal/notification"
	"github.com/wildguard/wildguard-go/internal/prediction"
	"github.com/wildguard/wildguard-go/internal/risk"
)

// Incident types that always warrant immediate ranger attention.
var urgentTypes = map[string]bool{
	datastore.IncidentPoaching:           true,
	datastore.IncidentSuspiciousActivity: true,
	datastore.IncidentFire:               true,
}

// Species whose involvement escalates any report.
var highValueSpecies = []string{"rhino", "elephant", "lion", "leopard"}

// Reporter trust scoring. Scores run 0-100; new reporters start neutral and
// move with verification outcomes.
const (
	defaultTrustScore = 50
	trustGainVerified = 5
	trustLossRejected = 10
	maxTrustScore     = 100
)

var validTypes = map[string]bool{
	datastore.IncidentPoaching:           true,
	datastore.IncidentIllegalLogging:     true,
	datastore.IncidentWildlifeSighting:   true,
	datastore.IncidentSuspiciousActivity: true,
	datastore.IncidentInjury:             true,
	datastore.IncidentFenceBreach:        true,
	datastore.IncidentFire:               true,
}

var validVerificationStatuses = map[string]bool{
	datastore.VerificationVerified:      true,
	datastore.VerificationRejected:      true,
	datastore.VerificationInvestigating: true,
}

// SubmitRequest is a community report as received from a reporting channel.
type SubmitRequest struct {
	ReporterID     string         `json:"reporterId"`
	Type           string         `json:"type"`
	Priority       string         `json:"priority,omitempty"`
	Location       *risk.Location `json:"location,omitempty"`
	Description    string         `json:"description"`
	AnimalSpecies  string         `json:"animalSpecies,omitempty"`
	EstimatedCount int            `json:"estimatedCount,omitempty"`
	ReportMethod   string         `json:"reportMethod,omitempty"` // sms, ussd, voice, app
}

// Service implements report intake and verification.
type Service struct {
	settings *conf.Settings
	ds       datastore.Interface
	scorer   *risk.Scorer
	recorder *prediction.Recorder
	notifier notification.Gateway
	log      *slog.Logger
}

// NewService creates the report processing service.
func NewService(
	settings *conf.Settings,
	ds datastore.Interface,
	scorer *risk.Scorer,
	recorder *prediction.Recorder,
	notifier notification.Gateway,
) *Service {
	logger := logging.ForService("report")
	if logger == nil {
		logger = slog.Default().With("service", "report")
	}
	return &Service{
		settings: settings,
		ds:       ds,
		scorer:   scorer,
		recorder: recorder,
		notifier: notifier,
		log:      logger,
	}
}

// Submit records a community report as a pending incident. Urgent reports
// trigger a ranger notification and geolocated ones feed risk scoring; both
// are best-effort and never fail the intake.
func (s *Service) Submit(ctx context.Context, req *SubmitRequest, now time.Time) (*datastore.Incident, error) {
	if !validTypes[req.Type] {
		return nil, errors.Newf("unknown report type %q", req.Type).
			Component("report").
			Category(errors.CategoryValidation).
			Build()
	}

	priority := req.Priority
	if priority == "" {
		priority = datastore.PriorityMedium
	}

	incident := &datastore.Incident{
		ReporterID:         req.ReporterID,
		Type:               req.Type,
		Priority:           priority,
		Description:        req.Description,
		AnimalSpecies:      req.AnimalSpecies,
		EstimatedCount:     req.EstimatedCount,
		Source:             "community",
		ReportMethod:       req.ReportMethod,
		VerificationStatus: datastore.VerificationPending,
		ReportedAt:         now,
	}
	if req.Location != nil {
		incident.Latitude = req.Location.Lat
		incident.Longitude = req.Location.Lng
	}

	if err := s.ds.SaveIncident(incident); err != nil {
		return nil, errors.New(err).
			Component("report").
			Category(errors.CategoryDatabase).
			Context("type", req.Type).
			Build()
	}

	s.log.Info("community report recorded",
		"incident", incident.ID,
		"type", incident.Type,
		"priority", incident.Priority,
		"method", incident.ReportMethod)

	if req.ReporterID != "" {
		s.trackSubmission(req.ReporterID, now)
	}
	if s.isUrgent(incident) {
		s.alertRangers(ctx, incident)
	}
	if req.Location != nil {
		s.forecastRisk(req.Location, incident.Type, now)
	}

	return incident, nil
}

// Verify records the verification outcome for a reported incident.
func (s *Service) Verify(incidentID, status, verifierID, notes string) error {
	if !validVerificationStatuses[status] {
		return errors.Newf("invalid verification status %q", status).
			Component("report").
			Category(errors.CategoryValidation).
			Build()
	}
	if err := s.ds.UpdateIncidentVerification(incidentID, status, verifierID, notes); err != nil {
		category := errors.CategoryDatabase
		if errors.Is(err, gorm.ErrRecordNotFound) {
			category = errors.CategoryNotFound
		}
		return errors.New(err).
			Component("report").
			Category(category).
			Context("incident", incidentID).
			Build()
	}
	s.log.Info("incident verification updated",
		"incident", incidentID,
		"status", status,
		"verifier", verifierID)

	s.adjustReporterTrust(incidentID, status)
	return nil
}

// trackSubmission counts a submission against the reporter's record, creating
// the record with a neutral trust score on first contact. Best-effort.
func (s *Service) trackSubmission(reporterID string, now time.Time) {
	reporter, err := s.ds.GetReporter(reporterID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn("reporter lookup failed", "reporter", reporterID, "error", err)
			return
		}
		reporter = datastore.Reporter{
			ID:         reporterID,
			TrustScore: defaultTrustScore,
			CreatedAt:  now,
		}
	}
	reporter.ReportsSubmitted++
	if err := s.ds.SaveReporter(&reporter); err != nil {
		s.log.Warn("reporter record update failed", "reporter", reporterID, "error", err)
	}
}

// adjustReporterTrust moves the reporter's trust score after a verification
// outcome: verified reports raise it, rejected ones cost more than a
// verification earns. Best-effort.
func (s *Service) adjustReporterTrust(incidentID, status string) {
	if status != datastore.VerificationVerified && status != datastore.VerificationRejected {
		return
	}

	incident, err := s.ds.GetIncident(incidentID)
	if err != nil || incident.ReporterID == "" {
		return
	}
	reporter, err := s.ds.GetReporter(incident.ReporterID)
	if err != nil {
		s.log.Warn("reporter lookup failed for trust adjustment",
			"reporter", incident.ReporterID, "error", err)
		return
	}

	switch status {
	case datastore.VerificationVerified:
		reporter.TrustScore = min(maxTrustScore, reporter.TrustScore+trustGainVerified)
		reporter.ReportsVerified++
	case datastore.VerificationRejected:
		reporter.TrustScore = max(0, reporter.TrustScore-trustLossRejected)
	}

	if err := s.ds.SaveReporter(&reporter); err != nil {
		s.log.Warn("reporter trust update failed", "reporter", reporter.ID, "error", err)
		return
	}
	s.log.Info("reporter trust adjusted",
		"reporter", reporter.ID,
		"status", status,
		"trustScore", reporter.TrustScore)
}

// isUrgent reports whether the incident needs immediate ranger attention:
// inherently urgent types, urgent reporter priority, or a high-value species.
func (s *Service) isUrgent(incident *datastore.Incident) bool {
	if urgentTypes[incident.Type] || incident.Priority == datastore.PriorityUrgent {
		return true
	}
	species := strings.ToLower(incident.AnimalSpecies)
	for _, hv := range highValueSpecies {
		if strings.Contains(species, hv) {
			return true
		}
	}
	return false
}

// alertRangers notifies the on-duty roster about an urgent community report.
func (s *Service) alertRangers(ctx context.Context, incident *datastore.Incident) {
	if !s.settings.Notification.Enabled {
		return
	}

	tier := notification.TierUrgent
	if incident.Priority == datastore.PriorityUrgent {
		tier = notification.TierImmediate
	}

	responders, err := s.ds.OnDutyResponders(s.settings.Engine.MaxAlertRecipients)
	if err != nil {
		s.log.Error("responder roster lookup failed", "incident", incident.ID, "error", err)
		return
	}
	if len(responders) == 0 {
		s.log.Warn("no on-duty responders for urgent report", "incident", incident.ID)
		return
	}

	addresses := make([]string, 0, len(responders))
	for i := range responders {
		addresses = append(addresses, responders[i].ContactAddress)
	}

	msg := fmt.Sprintf("Community report: %s\n%s", incident.Type, incident.Description)
	if incident.AnimalSpecies != "" {
		msg += fmt.Sprintf("\nSpecies: %s", incident.AnimalSpecies)
	}
	if incident.Latitude != 0 || incident.Longitude != 0 {
		msg += fmt.Sprintf("\nLocation: %.5f, %.5f", incident.Latitude, incident.Longitude)
	}

	n := notification.New(tier, fmt.Sprintf("URGENT REPORT - %s", incident.Type), msg).
		WithComponent("report").
		WithMetadata("incident_id", incident.ID)

	if err := s.notifier.Send(ctx, addresses, n); err != nil {
		s.log.Error("ranger notification failed", "incident", incident.ID, "error", err)
	}
}

// forecastRisk scores the report location and persists a prediction when the
// score clears the threshold.
func (s *Service) forecastRisk(loc *risk.Location, incidentType string, now time.Time) {
	pattern := s.scorer.Score(loc, incidentType, now)
	if _, err := s.recorder.Record(pattern, nil, now); err != nil {
		s.log.Error("prediction write failed for report", "type", incidentType, "error", err)
	}
}
