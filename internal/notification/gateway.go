// gateway.go: the dispatch contract and the log-only fallback provider.
package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/wildguard/wildguard-go/internal/conf"
	"github.com/wildguard/wildguard-go/internal/logging"
)

// Gateway sends a notification to a set of responder contact addresses.
// Implementations are best-effort and may fail independently per address;
// a non-nil error reports the addresses that could not be reached.
type Gateway interface {
	Send(ctx context.Context, addresses []string, n *Notification) error
}

// NewGateway builds the gateway selected by configuration. Unknown provider
// names fall back to the log-only gateway so escalation keeps working.
func NewGateway(settings *conf.Settings) Gateway {
	timeout := time.Duration(settings.Notification.TimeoutSeconds) * time.Second
	switch settings.Notification.Provider {
	case "shoutrrr":
		return NewShoutrrrGateway(timeout)
	case "log":
		return NewLogGateway()
	default:
		logging.Warn("Unknown notification provider, falling back to log-only dispatch",
			"provider", settings.Notification.Provider)
		return NewLogGateway()
	}
}

// LogGateway records dispatch requests in the service log without delivering
// them anywhere. It backs tests and deployments without a messaging service.
type LogGateway struct {
	log *slog.Logger
}

// NewLogGateway creates a log-only notification gateway.
func NewLogGateway() *LogGateway {
	logger := logging.ForService("notification")
	if logger == nil {
		logger = slog.Default().With("service", "notification")
	}
	return &LogGateway{log: logger}
}

// Send logs the notification for each address.
func (g *LogGateway) Send(ctx context.Context, addresses []string, n *Notification) error {
	for _, addr := range addresses {
		g.log.Info("notification dispatched (log only)",
			"address", addr,
			"tier", n.Tier,
			"title", n.Title)
	}
	return nil
}
