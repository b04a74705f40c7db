// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wildguard/wildguard-go/internal/conf"
	"github.com/wildguard/wildguard-go/internal/errors"
)

// Box is an axis-aligned bounding box in degrees used for location queries.
type Box struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// NewBox returns a bounding box centered on the given coordinate with the
// given half-width in degrees.
func NewBox(lat, lng, radiusDeg float64) Box {
	return Box{
		MinLat: lat - radiusDeg,
		MaxLat: lat + radiusDeg,
		MinLng: lng - radiusDeg,
		MaxLng: lng + radiusDeg,
	}
}

// Contains reports whether the box contains the given coordinate.
func (b Box) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// Interface abstracts the underlying database implementation and defines the
// operations the engine needs: record saves that assign identifiers, and
// bounding-box plus time-range lookups.
type Interface interface {
	Open() error
	Close() error

	SaveSensor(sensor *Sensor) error
	GetSensor(id string) (Sensor, error)
	SensorsWithin(box Box) ([]Sensor, error)

	SaveReading(reading *SensorReading) error
	SensorAlertsWithin(box Box, since time.Time, limit int) ([]SensorReading, error)

	SaveIncident(incident *Incident) error
	GetIncident(id string) (Incident, error)
	UpdateIncidentVerification(id, status, verifierID, notes string) error
	IncidentsWithin(box Box, since time.Time) ([]Incident, error)

	SavePrediction(prediction *ThreatPrediction) error
	PredictionsWithin(box Box, at time.Time) ([]ThreatPrediction, error)
	PredictionsActiveBetween(from, to time.Time, limit int) ([]ThreatPrediction, error)

	OnDutyResponders(limit int) ([]Responder, error)
	SaveResponder(responder *Responder) error

	GetReporter(id string) (Reporter, error)
	SaveReporter(reporter *Reporter) error
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// New creates a new datastore instance based on the provided configuration.
func New(settings *conf.Settings) (Interface, error) {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{Settings: settings}, nil
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{Settings: settings}, nil
	default:
		return nil, errors.Newf("no database output enabled in configuration").
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Build()
	}
}

// SaveSensor inserts or updates a sensor record, assigning an identifier if
// one is not set.
func (ds *DataStore) SaveSensor(sensor *Sensor) error {
	if sensor.ID == "" {
		sensor.ID = uuid.New().String()
	}
	if err := ds.DB.Save(sensor).Error; err != nil {
		return fmt.Errorf("saving sensor %s: %w", sensor.DeviceID, err)
	}
	return nil
}

// GetSensor retrieves a sensor by its identifier.
func (ds *DataStore) GetSensor(id string) (Sensor, error) {
	var sensor Sensor
	if err := ds.DB.First(&sensor, "id = ?", id).Error; err != nil {
		return Sensor{}, fmt.Errorf("getting sensor %s: %w", id, err)
	}
	return sensor, nil
}

// SensorsWithin returns active sensors inside the bounding box.
func (ds *DataStore) SensorsWithin(box Box) ([]Sensor, error) {
	var sensors []Sensor
	err := ds.DB.
		Where("latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat).
		Where("longitude BETWEEN ? AND ?", box.MinLng, box.MaxLng).
		Where("status = ?", "active").
		Find(&sensors).Error
	if err != nil {
		return nil, fmt.Errorf("querying sensors in box: %w", err)
	}
	return sensors, nil
}

// SaveReading inserts a processed sensor reading, assigning an identifier if
// one is not set.
func (ds *DataStore) SaveReading(reading *SensorReading) error {
	if reading.ID == "" {
		reading.ID = uuid.New().String()
	}
	if err := ds.DB.Create(reading).Error; err != nil {
		return fmt.Errorf("saving sensor reading: %w", err)
	}
	return nil
}

// SensorAlertsWithin returns medium and high threat readings captured inside
// the bounding box since the given time, newest first.
func (ds *DataStore) SensorAlertsWithin(box Box, since time.Time, limit int) ([]SensorReading, error) {
	var readings []SensorReading
	query := ds.DB.
		Where("captured_at >= ?", since).
		Where("threat_level IN ?", []string{ThreatMedium, ThreatHigh}).
		Where("latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat).
		Where("longitude BETWEEN ? AND ?", box.MinLng, box.MaxLng).
		Order("captured_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&readings).Error; err != nil {
		return nil, fmt.Errorf("querying sensor alerts in box: %w", err)
	}
	return readings, nil
}

// SaveIncident inserts an incident record, assigning an identifier if one is
// not set.
func (ds *DataStore) SaveIncident(incident *Incident) error {
	if incident.ID == "" {
		incident.ID = uuid.New().String()
	}
	if err := ds.DB.Create(incident).Error; err != nil {
		return fmt.Errorf("saving incident: %w", err)
	}
	return nil
}

// GetIncident retrieves an incident by its identifier.
func (ds *DataStore) GetIncident(id string) (Incident, error) {
	var incident Incident
	if err := ds.DB.First(&incident, "id = ?", id).Error; err != nil {
		return Incident{}, fmt.Errorf("getting incident %s: %w", id, err)
	}
	return incident, nil
}

// UpdateIncidentVerification sets the verification outcome for an incident.
func (ds *DataStore) UpdateIncidentVerification(id, status, verifierID, notes string) error {
	now := time.Now()
	result := ds.DB.Model(&Incident{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"verification_status": status,
			"verified_by":         verifierID,
			"verification_notes":  notes,
			"verified_at":         &now,
		})
	if result.Error != nil {
		return fmt.Errorf("updating incident verification %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("updating incident verification %s: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

// IncidentsWithin returns incidents reported inside the bounding box since
// the given time, newest first.
func (ds *DataStore) IncidentsWithin(box Box, since time.Time) ([]Incident, error) {
	var incidents []Incident
	err := ds.DB.
		Where("reported_at >= ?", since).
		Where("latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat).
		Where("longitude BETWEEN ? AND ?", box.MinLng, box.MaxLng).
		Order("reported_at DESC").
		Find(&incidents).Error
	if err != nil {
		return nil, fmt.Errorf("querying incidents in box: %w", err)
	}
	return incidents, nil
}

// SavePrediction inserts a threat prediction, assigning an identifier if one
// is not set.
func (ds *DataStore) SavePrediction(prediction *ThreatPrediction) error {
	if prediction.ID == "" {
		prediction.ID = uuid.New().String()
	}
	if err := ds.DB.Create(prediction).Error; err != nil {
		return fmt.Errorf("saving threat prediction: %w", err)
	}
	return nil
}

// PredictionsWithin returns predictions whose validity interval contains the
// given instant and whose location falls inside the bounding box, ordered by
// descending risk score.
func (ds *DataStore) PredictionsWithin(box Box, at time.Time) ([]ThreatPrediction, error) {
	var predictions []ThreatPrediction
	err := ds.DB.
		Where("valid_from <= ?", at).
		Where("valid_to > ?", at).
		Where("latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat).
		Where("longitude BETWEEN ? AND ?", box.MinLng, box.MaxLng).
		Order("risk_score DESC").
		Find(&predictions).Error
	if err != nil {
		return nil, fmt.Errorf("querying predictions in box: %w", err)
	}
	return predictions, nil
}

// PredictionsActiveBetween returns predictions whose validity interval
// overlaps [from, to), ordered by descending risk score.
func (ds *DataStore) PredictionsActiveBetween(from, to time.Time, limit int) ([]ThreatPrediction, error) {
	var predictions []ThreatPrediction
	query := ds.DB.
		Where("valid_to > ?", from).
		Where("valid_from < ?", to).
		Order("risk_score DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&predictions).Error; err != nil {
		return nil, fmt.Errorf("querying active predictions: %w", err)
	}
	return predictions, nil
}

// OnDutyResponders returns responders currently marked on duty.
func (ds *DataStore) OnDutyResponders(limit int) ([]Responder, error) {
	var responders []Responder
	query := ds.DB.Where("on_duty = ?", true).Order("last_active_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&responders).Error; err != nil {
		return nil, fmt.Errorf("querying on-duty responders: %w", err)
	}
	return responders, nil
}

// SaveResponder inserts or updates a responder record.
func (ds *DataStore) SaveResponder(responder *Responder) error {
	if responder.ID == "" {
		responder.ID = uuid.New().String()
	}
	if err := ds.DB.Save(responder).Error; err != nil {
		return fmt.Errorf("saving responder: %w", err)
	}
	return nil
}

// GetReporter retrieves a reporter by its identifier.
func (ds *DataStore) GetReporter(id string) (Reporter, error) {
	var reporter Reporter
	if err := ds.DB.First(&reporter, "id = ?", id).Error; err != nil {
		return Reporter{}, fmt.Errorf("getting reporter %s: %w", id, err)
	}
	return reporter, nil
}

// SaveReporter inserts or updates a reporter record.
func (ds *DataStore) SaveReporter(reporter *Reporter) error {
	if reporter.ID == "" {
		reporter.ID = uuid.New().String()
	}
	if err := ds.DB.Save(reporter).Error; err != nil {
		return fmt.Errorf("saving reporter: %w", err)
	}
	return nil
}
