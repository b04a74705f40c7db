// shoutrrr.go: notification gateway backed by nicholas-fedor/shoutrrr.
// Responder contact addresses are shoutrrr service URLs, which lets a
// deployment mix SMS bridges, Telegram, email and webhooks per responder.
package notification

import (
	"context"
	"io"
	"log"
	"log/slog"
	"time"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/wildguard/wildguard-go/internal/errors"
	"github.com/wildguard/wildguard-go/internal/logging"
)

// ShoutrrrGateway sends via nicholas-fedor/shoutrrr. A sender is created
// per dispatch because the address set varies with the on-duty roster.
type ShoutrrrGateway struct {
	timeout time.Duration
	log     *slog.Logger
}

// NewShoutrrrGateway creates a shoutrrr-backed notification gateway.
func NewShoutrrrGateway(timeout time.Duration) *ShoutrrrGateway {
	logger := logging.ForService("notification")
	if logger == nil {
		logger = slog.Default().With("service", "notification")
	}
	return &ShoutrrrGateway{
		timeout: timeout,
		log:     logger,
	}
}

// Send delivers the notification to each address. Failures are isolated per
// address: every address is attempted and the joined error reports the ones
// that failed.
func (g *ShoutrrrGateway) Send(ctx context.Context, addresses []string, n *Notification) error {
	if len(addresses) == 0 {
		return nil
	}

	sender, err := shoutrrr.CreateSender(addresses...)
	if err != nil {
		return errors.New(err).
			Component("notification").
			Category(errors.CategoryNotification).
			Context("addresses", len(addresses)).
			Build()
	}
	if g.timeout > 0 {
		sender.Timeout = g.timeout
	}
	sender.SetLogger(log.New(io.Discard, "", 0))

	params := stypes.Params{}
	if n.Title != "" {
		params.SetTitle(n.Title)
	}

	var failed []error
	for i, sendErr := range sender.Send(n.Message, &params) {
		if sendErr == nil {
			continue
		}
		g.log.Warn("notification delivery failed",
			"address_index", i,
			"tier", n.Tier,
			"error", sendErr)
		failed = append(failed, sendErr)
	}

	if len(failed) > 0 {
		return errors.New(errors.Join(failed...)).
			Component("notification").
			Category(errors.CategoryNotification).
			Context("failed", len(failed)).
			Context("total", len(addresses)).
			Build()
	}
	return nil
}
