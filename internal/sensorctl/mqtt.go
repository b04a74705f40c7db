// mqtt.go: MQTT-backed sensor control channel. Heightened monitoring
// commands are published as JSON to a shared command topic; sensors filter
// on their own position.
package sensorctl

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"context"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/wildguard/wildguard-go/internal/conf"
	"github.com/wildguard/wildguard-go/internal/errors"
)

const (
	connectTimeout    = 30 * time.Second
	publishTimeout    = 10 * time.Second
	disconnectQuiesce = 250 // milliseconds, paho API takes uint
)

// monitoringCommand is the wire format of a heightened monitoring request.
type monitoringCommand struct {
	Command   string    `json:"command"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	RadiusKm  float64   `json:"radius_km"`
	IssuedAt  time.Time `json:"issued_at"`
}

// MQTTController implements Controller over an MQTT broker.
type MQTTController struct {
	broker         string
	clientID       string
	username       string
	password       string
	commandTopic   string
	internalClient mqtt.Client
	mu             sync.Mutex
}

// NewMQTTController creates a sensor controller for the configured broker.
func NewMQTTController(settings *conf.Settings) *MQTTController {
	return &MQTTController{
		broker:       settings.SensorControl.Broker,
		clientID:     settings.Main.Name,
		username:     settings.SensorControl.Username,
		password:     settings.SensorControl.Password,
		commandTopic: settings.SensorControl.CommandTopic,
	}
}

// Connect attempts to establish a connection to the MQTT broker.
func (c *MQTTController) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	opts := mqtt.NewClientOptions()
	opts.AddBroker(c.broker)
	opts.SetClientID(c.clientID)
	opts.SetUsername(c.username)
	opts.SetPassword(c.password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)

	c.internalClient = mqtt.NewClient(opts)

	token := c.internalClient.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return errors.Newf("connection timeout to broker %s", c.broker).
			Component("sensorctl").
			Category(errors.CategoryNetwork).
			Build()
	}
	if err := token.Error(); err != nil {
		return errors.New(fmt.Errorf("connection error: %w", err)).
			Component("sensorctl").
			Category(errors.CategorySensorControl).
			Build()
	}

	serviceLogger().Info("connected to sensor control broker", "broker", c.broker)
	return nil
}

// ActivateHeightenedMonitoring publishes a monitoring command covering the
// given area.
func (c *MQTTController) ActivateHeightenedMonitoring(ctx context.Context, lat, lng, radiusKm float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isConnectedLocked() {
		return errors.Newf("not connected to sensor control broker").
			Component("sensorctl").
			Category(errors.CategorySensorControl).
			Build()
	}

	payload, err := json.Marshal(monitoringCommand{
		Command:   "heightened_monitoring",
		Latitude:  lat,
		Longitude: lng,
		RadiusKm:  radiusKm,
		IssuedAt:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("encoding monitoring command: %w", err)
	}

	token := c.internalClient.Publish(c.commandTopic, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return errors.Newf("publish timeout for topic %s", c.commandTopic).
			Component("sensorctl").
			Category(errors.CategorySensorControl).
			Build()
	}
	return token.Error()
}

// IsConnected returns true if the client is currently connected to the broker.
func (c *MQTTController) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isConnectedLocked()
}

func (c *MQTTController) isConnectedLocked() bool {
	return c.internalClient != nil && c.internalClient.IsConnected()
}

// Disconnect closes the connection to the MQTT broker.
func (c *MQTTController) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.internalClient != nil && c.internalClient.IsConnected() {
		c.internalClient.Disconnect(disconnectQuiesce)
	}
}
