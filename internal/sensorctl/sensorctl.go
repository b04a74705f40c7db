// Package sensorctl provides the sensor control channel used to request
// heightened monitoring from field sensors near an alert. Activation is
// fire-and-forget: failures are logged by callers and never abort the
// escalation pipeline.
package sensorctl

import (
	"context"
	"log/slog"

	"github.com/wildguard/wildguard-go/internal/conf"
	"github.com/wildguard/wildguard-go/internal/logging"
)

// Controller defines the sensor control operations.
type Controller interface {
	// Connect attempts to connect to the control channel backend.
	Connect(ctx context.Context) error

	// ActivateHeightenedMonitoring requests increased capture frequency and
	// sensitivity from sensors within radiusKm of the coordinate.
	ActivateHeightenedMonitoring(ctx context.Context, lat, lng, radiusKm float64) error

	// IsConnected returns true if the control channel is usable.
	IsConnected() bool

	// Disconnect closes the control channel.
	Disconnect()
}

// Package-level logger for sensor control events
var sensorctlLogger *slog.Logger

func serviceLogger() *slog.Logger {
	if sensorctlLogger == nil {
		if l := logging.ForService("sensorctl"); l != nil {
			sensorctlLogger = l
		} else {
			sensorctlLogger = slog.Default().With("service", "sensorctl")
		}
	}
	return sensorctlLogger
}

// NewController builds the controller selected by configuration. When the
// control channel is disabled a noop controller stands in.
func NewController(settings *conf.Settings) Controller {
	if !settings.SensorControl.Enabled {
		return &NoopController{}
	}
	return NewMQTTController(settings)
}

// NoopController satisfies Controller for deployments without a sensor
// control channel.
type NoopController struct{}

func (c *NoopController) Connect(ctx context.Context) error { return nil }

func (c *NoopController) ActivateHeightenedMonitoring(ctx context.Context, lat, lng, radiusKm float64) error {
	serviceLogger().Debug("sensor control disabled, skipping heightened monitoring request",
		"lat", lat, "lng", lng, "radius_km", radiusKm)
	return nil
}

func (c *NoopController) IsConnected() bool { return true }

func (c *NoopController) Disconnect() {}
