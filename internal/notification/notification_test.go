package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildguard/wildguard-go/internal/conf"
)

func TestNew(t *testing.T) {
	t.Parallel()

	n := New(TierImmediate, "HIGH THREAT", "gunshot detected").
		WithComponent("escalation").
		WithMetadata("alert_id", "a-1")

	assert.NotEmpty(t, n.ID)
	assert.False(t, n.Timestamp.IsZero())
	assert.Equal(t, TierImmediate, n.Tier)
	assert.Equal(t, "escalation", n.Component)
	assert.Equal(t, "a-1", n.Metadata["alert_id"])
}

func TestLogGatewaySend(t *testing.T) {
	t.Parallel()

	g := NewLogGateway()
	n := New(TierNormal, "test", "message")
	require.NoError(t, g.Send(context.Background(), []string{"logger://", "logger://"}, n))
	require.NoError(t, g.Send(context.Background(), nil, n))
}

func TestNewGatewaySelection(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{}

	settings.Notification.Provider = "log"
	assert.IsType(t, &LogGateway{}, NewGateway(settings))

	settings.Notification.Provider = "shoutrrr"
	assert.IsType(t, &ShoutrrrGateway{}, NewGateway(settings))

	settings.Notification.Provider = "carrier-pigeon"
	assert.IsType(t, &LogGateway{}, NewGateway(settings))
}
