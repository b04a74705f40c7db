// config.go: This file contains the configuration for the WildGuard engine.
// It defines the settings struct and functions to load and save the settings.
package conf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// MainSettings contains general application settings.
type MainSettings struct {
	Name string // node name, used in notifications and MQTT client id
	Log  struct {
		Enabled bool   // true to enable file logging
		Path    string // path to log file
	}
}

// EngineSettings contains tuning for the threat intelligence engine.
// The risk threshold and model confidence are heuristics carried over from
// field calibration; they are configurable pending validation against real
// outcome data.
type EngineSettings struct {
	PredictionRiskThreshold float64 // persist predictions above this risk score
	ModelConfidence         float64 // confidence recorded on stored predictions
	PredictionValidityHours int     // validity window for stored predictions
	LookbackDays            int     // incident history window for risk scoring
	SensorAlertLookbackDays int     // sensor alert history window
	HistoryRadiusDeg        float64 // bounding box half-width for history queries
	QueryRadiusDeg          float64 // default radius for API threat queries
	MonitoringRadiusKm      float64 // heightened monitoring activation radius
	MaxAlertRecipients      int     // cap on responders notified per alert
	VoiceCallRecipients     int     // responders flagged for voice on immediate tier
}

// GeoFeature describes a mapped geographic feature used for proximity
// classification. Type is one of "village", "road" or "border".
type GeoFeature struct {
	Type      string  `yaml:"type"`
	Name      string  `yaml:"name"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	RadiusKm  float64 `yaml:"radiuskm"`
}

// GeofenceSettings holds the mapped features consulted by the proximity
// classifier. An empty list classifies every location as remote.
type GeofenceSettings struct {
	Features []GeoFeature
}

// NotificationSettings contains settings for responder notification dispatch.
type NotificationSettings struct {
	Enabled        bool
	Provider       string // "shoutrrr" or "log"
	TimeoutSeconds int    // per-send timeout
}

// SensorControlSettings contains settings for the MQTT sensor control channel.
type SensorControlSettings struct {
	Enabled      bool
	Broker       string // MQTT broker URL, e.g. tcp://localhost:1883
	Username     string
	Password     string
	CommandTopic string // topic heightened monitoring commands are published to
}

// SQLiteSettings contains settings for the SQLite database output.
type SQLiteSettings struct {
	Enabled bool
	Path    string
}

// MySQLSettings contains settings for the MySQL database output.
type MySQLSettings struct {
	Enabled  bool
	Username string
	Password string
	Database string
	Host     string
	Port     string
}

// OutputSettings selects and configures the record store backend.
type OutputSettings struct {
	SQLite SQLiteSettings
	MySQL  MySQLSettings
}

// WebServerSettings contains settings for the HTTP API server.
type WebServerSettings struct {
	Enabled bool
	Port    string
}

// Settings is the root configuration structure.
type Settings struct {
	Debug bool

	Main          MainSettings
	Engine        EngineSettings
	Geofence      GeofenceSettings
	Notification  NotificationSettings
	SensorControl SensorControlSettings
	Output        OutputSettings
	WebServer     WebServerSettings
}

// Load reads the configuration from disk, applying defaults for any value
// not present.
func Load() (*Settings, error) {
	setDefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	for _, path := range configPaths() {
		viper.AddConfigPath(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults apply
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("fatal error reading config file: %w", err)
		}
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}
	return settings, nil
}

// SaveAs writes the current settings to the given path as YAML.
func (s *Settings) SaveAs(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// configPaths returns the list of directories searched for a config file.
func configPaths() []string {
	paths := []string{"."}
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", "wildguard-go"))
	}
	paths = append(paths, "/etc/wildguard-go")
	return paths
}
