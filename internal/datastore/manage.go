package datastore

import (
	"fmt"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wildguard/wildguard-go/internal/logging"
)

// createGormLogger configures and returns a new GORM logger instance.
func createGormLogger(debug bool) gormlogger.Interface {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return gormlogger.Default.LogMode(level)
}

// performAutoMigration runs GORM auto-migration for all engine models.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(
		&Sensor{},
		&SensorReading{},
		&Incident{},
		&ThreatPrediction{},
		&Responder{},
		&Reporter{},
	); err != nil {
		return fmt.Errorf("failed to auto-migrate %s database: %w", dbType, err)
	}

	if debug {
		logging.Debug("Database connection initialized",
			"type", dbType,
			"connection", connectionInfo)
	}

	return nil
}
