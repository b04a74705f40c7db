// Package serve implements the serve command, the long-running engine
// process: datastore, escalation pipeline and HTTP API.
package serve

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/wildguard/wildguard-go/internal/api"
	"github.com/wildguard/wildguard-go/internal/conf"
	"github.com/wildguard/wildguard-go/internal/datastore"
	"github.com/wildguard/wildguard-go/internal/escalation"
	"github.com/wildguard/wildguard-go/internal/logging"
	"github.com/wildguard/wildguard-go/internal/notification"
	"github.com/wildguard/wildguard-go/internal/observability"
	"github.com/wildguard/wildguard-go/internal/prediction"
	"github.com/wildguard/wildguard-go/internal/report"
	"github.com/wildguard/wildguard-go/internal/risk"
	"github.com/wildguard/wildguard-go/internal/sensorctl"
)

const shutdownTimeout = 10 * time.Second

// Command creates the serve command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the threat intelligence engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(settings)
		},
	}
}

func run(settings *conf.Settings) error {
	if settings.Main.Log.Enabled {
		level := slog.LevelInfo
		if settings.Debug {
			level = slog.LevelDebug
		}
		closeLog, err := logging.EnableFileLogging(settings.Main.Log.Path, level)
		if err != nil {
			logging.Warn("File logging setup failed, continuing with console output", "error", err)
		} else {
			defer func() {
				if err := closeLog(); err != nil {
					logging.Error("Failed to close log file", "error", err)
				}
			}()
		}
	}

	if hr := logging.HumanReadable(); hr != nil {
		hr.Info("Starting WildGuard engine", "node", settings.Main.Name, "port", settings.WebServer.Port)
	}

	ds, err := datastore.New(settings)
	if err != nil {
		return err
	}
	if err := ds.Open(); err != nil {
		return fmt.Errorf("opening datastore: %w", err)
	}
	defer func() {
		if err := ds.Close(); err != nil {
			logging.Error("Failed to close datastore", "error", err)
		}
	}()

	registry := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	geo := risk.NewGeofenceClassifier(settings.Geofence.Features)
	scorer := risk.NewScorer(settings, ds, geo)
	recorder := prediction.NewRecorder(settings, ds)
	predictions := prediction.NewService(settings, ds)
	notifier := notification.NewGateway(settings)
	reports := report.NewService(settings, ds, scorer, recorder, notifier)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sensors := sensorctl.NewController(settings)
	if settings.SensorControl.Enabled {
		if err := sensors.Connect(ctx); err != nil {
			// The engine degrades to assessment without sensor control
			logging.Warn("Sensor control connection failed, continuing without it", "error", err)
		}
	}
	defer sensors.Disconnect()

	orchestrator := escalation.NewOrchestrator(settings, ds, scorer, recorder, notifier, sensors, metrics)
	server := api.New(settings, orchestrator, reports, predictions, registry)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
