// defaults.go: default configuration values applied before reading the
// config file, so a fresh install runs with sensible behavior.
package conf

import (
	"github.com/spf13/viper"
)

func setDefaultConfig() {
	viper.SetDefault("debug", false)

	// Main settings
	viper.SetDefault("main.name", "WildGuard-Go")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/wildguard.log")

	// Threat engine settings. The risk threshold and model confidence are
	// inherited heuristics, flagged for calibration against outcome data.
	viper.SetDefault("engine.predictionriskthreshold", 0.3)
	viper.SetDefault("engine.modelconfidence", 0.85)
	viper.SetDefault("engine.predictionvalidityhours", 24)
	viper.SetDefault("engine.lookbackdays", 30)
	viper.SetDefault("engine.sensoralertlookbackdays", 7)
	viper.SetDefault("engine.historyradiusdeg", 0.01)
	viper.SetDefault("engine.queryradiusdeg", 0.05)
	viper.SetDefault("engine.monitoringradiuskm", 2.0)
	viper.SetDefault("engine.maxalertrecipients", 5)
	viper.SetDefault("engine.voicecallrecipients", 2)

	// Geofence features for proximity classification, empty by default
	viper.SetDefault("geofence.features", []map[string]any{})

	// Responder notification settings
	viper.SetDefault("notification.enabled", true)
	viper.SetDefault("notification.provider", "log")
	viper.SetDefault("notification.timeoutseconds", 10)

	// Sensor control channel settings
	viper.SetDefault("sensorcontrol.enabled", false)
	viper.SetDefault("sensorcontrol.broker", "tcp://localhost:1883")
	viper.SetDefault("sensorcontrol.username", "")
	viper.SetDefault("sensorcontrol.password", "")
	viper.SetDefault("sensorcontrol.commandtopic", "wildguard/sensors/commands")

	// Database output settings
	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "wildguard.db")
	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "wildguard")
	viper.SetDefault("output.mysql.password", "wildguard")
	viper.SetDefault("output.mysql.database", "wildguard")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")

	// Web server settings
	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.port", "8080")
}
