// model.go this code defines the data model for the application
package datastore

import "time"

// Sensor categories recognized by the indicator extractor.
const (
	SensorOpticalTrap     = "optical_trap"
	SensorAcoustic        = "acoustic"
	SensorMotion          = "motion"
	SensorCollarTelemetry = "collar_telemetry"
	SensorWeather         = "weather"
)

// Incident types, a fixed taxonomy shared with the mobile reporting channels.
const (
	IncidentPoaching           = "poaching"
	IncidentIllegalLogging     = "illegal_logging"
	IncidentWildlifeSighting   = "wildlife_sighting"
	IncidentSuspiciousActivity = "suspicious_activity"
	IncidentInjury             = "injury"
	IncidentFenceBreach        = "fence_breach"
	IncidentFire               = "fire"
)

// Incident priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Incident verification statuses.
const (
	VerificationPending       = "pending"
	VerificationVerified      = "verified"
	VerificationRejected      = "rejected"
	VerificationInvestigating = "investigating"
)

// Threat levels attached to processed sensor readings.
const (
	ThreatNone   = "none"
	ThreatLow    = "low"
	ThreatMedium = "medium"
	ThreatHigh   = "high"
)

// Sensor represents a deployed monitoring device.
type Sensor struct {
	ID           string  `gorm:"primaryKey;type:varchar(36)"`
	DeviceID     string  `gorm:"uniqueIndex"`
	Name         string
	Category     string  `gorm:"index:idx_sensors_category"`
	Latitude     float64 `gorm:"index:idx_sensors_location"`
	Longitude    float64 `gorm:"index:idx_sensors_location"`
	Status       string  `gorm:"index:idx_sensors_status"` // active, inactive, maintenance, battery_low
	BatteryLevel int
	LastSeenAt   time.Time
	InstalledAt  time.Time
}

// SensorReading represents a single processed sensor data point. Payload and
// Metadata hold the raw structured data as JSON; the confidence, threat level
// and description columns carry the result of the assessment pass.
type SensorReading struct {
	ID          string  `gorm:"primaryKey;type:varchar(36)"`
	SensorID    string  `gorm:"index:idx_readings_sensor"`
	Category    string
	Payload     string  `gorm:"type:text"` // JSON-encoded payload value
	Metadata    string  `gorm:"type:text"` // JSON-encoded optional metadata
	Latitude    float64 `gorm:"index:idx_readings_location"`
	Longitude   float64 `gorm:"index:idx_readings_location"`
	Confidence  float64
	ThreatLevel string `gorm:"index:idx_readings_threat"`
	Description string `gorm:"type:text"`
	CapturedAt  time.Time `gorm:"index:idx_readings_captured"`
	ProcessedAt time.Time
}

// Incident represents a reported or auto-generated conservation incident.
type Incident struct {
	ID                 string  `gorm:"primaryKey;type:varchar(36)"`
	ReporterID         string  // empty for automated sensor reports
	Type               string  `gorm:"index:idx_incidents_type"`
	Priority           string
	Latitude           float64 `gorm:"index:idx_incidents_location"`
	Longitude          float64 `gorm:"index:idx_incidents_location"`
	Description        string  `gorm:"type:text"`
	AnimalSpecies      string
	EstimatedCount     int
	Source             string // community or sensor
	ReportMethod       string // sms, ussd, voice, app
	VerificationStatus string `gorm:"index:idx_incidents_status"`
	VerifiedBy         string
	VerificationNotes  string
	ReportedAt         time.Time `gorm:"index:idx_incidents_reported"`
	VerifiedAt         *time.Time
}

// ThreatPrediction is a time-bounded forecast of elevated risk at a location.
// Predictions are additive records; they expire by validity filtering rather
// than deletion.
type ThreatPrediction struct {
	ID                 string  `gorm:"primaryKey;type:varchar(36)"`
	PredictionType     string  // poaching_risk, fire_risk, human_activity
	Latitude           float64 `gorm:"index:idx_predictions_location"`
	Longitude          float64 `gorm:"index:idx_predictions_location"`
	RiskScore          float64 `gorm:"index:idx_predictions_risk"`
	Confidence         float64
	TimeWindow         string
	Factors            string    `gorm:"type:text"` // JSON-encoded contributing factors
	RecommendedActions string    `gorm:"type:text"` // JSON-encoded ordered action list
	ValidFrom          time.Time `gorm:"index:idx_predictions_validity"`
	ValidTo            time.Time `gorm:"index:idx_predictions_validity"`
	CreatedAt          time.Time
}

// Reporter represents a community member who submits incident reports.
// TrustScore runs 0-100 and moves with verification outcomes.
type Reporter struct {
	ID               string `gorm:"primaryKey;type:varchar(36)"`
	Name             string
	PhoneNumber      string `gorm:"uniqueIndex"`
	TrustScore       int
	ReportsSubmitted int
	ReportsVerified  int
	CreatedAt        time.Time
}

// Responder represents a field responder reachable for alert dispatch.
type Responder struct {
	ID             string `gorm:"primaryKey;type:varchar(36)"`
	Name           string
	ContactAddress string // notification gateway address, e.g. a service URL
	OnDuty         bool   `gorm:"index:idx_responders_onduty"`
	LastActiveAt   time.Time
}
