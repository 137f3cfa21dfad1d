// Package emitter publishes committed face readings, scan completion events
// and health heartbeats to an MQTT broker.
package emitter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/brunoaduarte/rubik-solver/internal/config"
	"github.com/brunoaduarte/rubik-solver/internal/cube"
	"github.com/brunoaduarte/rubik-solver/internal/types"
)

// FacePayload is the wire form of one committed face reading. Encoded with
// msgpack for compactness.
type FacePayload struct {
	InstanceID string    `msgpack:"instance_id"`
	Face       int       `msgpack:"face"`
	Stickers   [9]string `msgpack:"stickers"`
	Seq        uint64    `msgpack:"seq"`
	Timestamp  int64     `msgpack:"timestamp_ms"`
}

// CompletePayload is published once all six faces are scanned.
type CompletePayload struct {
	InstanceID string       `msgpack:"instance_id"`
	Faces      [6][9]string `msgpack:"faces"`
	Timestamp  int64        `msgpack:"timestamp_ms"`
}

// HealthPayload is the periodic heartbeat. Plain JSON so dashboards can read
// it without a msgpack decoder.
type HealthPayload struct {
	InstanceID   string  `json:"instance_id"`
	UptimeS      float64 `json:"uptime_s"`
	FacesScanned int     `json:"faces_scanned"`
	Commits      uint64  `json:"commits"`
}

// MQTTEmitter publishes scanner events to an MQTT broker
type MQTTEmitter struct {
	cfg    *config.Config
	client mqtt.Client

	mu        sync.RWMutex
	published map[string]uint64 // count per topic
	errors    uint64
	connected bool
}

// NewMQTTEmitter creates a new MQTT emitter
func NewMQTTEmitter(cfg *config.Config) *MQTTEmitter {
	return &MQTTEmitter{
		cfg:       cfg,
		published: make(map[string]uint64),
	}
}

// Connect establishes connection to the MQTT broker
func (e *MQTTEmitter) Connect(ctx context.Context) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", e.cfg.MQTT.Broker))
	opts.SetClientID(e.cfg.InstanceID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = func(c mqtt.Client) {
		e.mu.Lock()
		e.connected = true
		e.mu.Unlock()
		slog.Info("mqtt connection established",
			"broker", e.cfg.MQTT.Broker,
			"client_id", e.cfg.InstanceID,
		)
	}

	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		e.mu.Lock()
		e.connected = false
		e.mu.Unlock()
		slog.Warn("mqtt connection lost, will auto-reconnect",
			"error", err,
			"broker", e.cfg.MQTT.Broker,
		)
	}

	e.client = mqtt.NewClient(opts)

	slog.Info("connecting to mqtt broker", "broker", e.cfg.MQTT.Broker)

	token := e.client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("mqtt connection timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connection failed: %w", err)
	}

	e.mu.Lock()
	e.connected = true
	e.mu.Unlock()

	return nil
}

// PublishFace publishes one committed face update
func (e *MQTTEmitter) PublishFace(update cube.Update) error {
	payload := FacePayload{
		InstanceID: e.cfg.InstanceID,
		Face:       update.Face,
		Stickers:   StickerNames(update.Reading),
		Seq:        update.Seq,
		Timestamp:  update.Timestamp.UnixMilli(),
	}

	data, err := msgpack.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal face payload: %w", err)
	}

	return e.publish(e.cfg.MQTT.Topics.Faces, e.qos("faces"), data)
}

// PublishComplete publishes the full cube once all faces are scanned
func (e *MQTTEmitter) PublishComplete(snapshot [cube.NumFaces][9]string) error {
	payload := CompletePayload{
		InstanceID: e.cfg.InstanceID,
		Faces:      snapshot,
		Timestamp:  time.Now().UnixMilli(),
	}

	data, err := msgpack.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal complete payload: %w", err)
	}

	return e.publish(e.cfg.MQTT.Topics.Complete, e.qos("complete"), data)
}

// PublishHealth publishes a health heartbeat
func (e *MQTTEmitter) PublishHealth(health HealthPayload) error {
	data, err := json.Marshal(health)
	if err != nil {
		return fmt.Errorf("failed to marshal health payload: %w", err)
	}

	return e.publish(e.cfg.MQTT.Topics.Health, e.qos("health"), data)
}

// Disconnect closes the MQTT connection
func (e *MQTTEmitter) Disconnect() error {
	if e.client != nil && e.client.IsConnected() {
		e.client.Disconnect(250) // 250ms grace period
		slog.Info("mqtt disconnected")
	}

	e.mu.Lock()
	e.connected = false
	e.mu.Unlock()

	return nil
}

// Stats returns emitter statistics
func (e *MQTTEmitter) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	published := make(map[string]uint64)
	for k, v := range e.published {
		published[k] = v
	}

	return Stats{
		Connected: e.connected,
		Published: published,
		Errors:    e.errors,
	}
}

// Stats contains emitter statistics
type Stats struct {
	Connected bool
	Published map[string]uint64
	Errors    uint64
}

func (e *MQTTEmitter) publish(topic string, qos byte, payload []byte) error {
	if !e.isConnected() {
		e.mu.Lock()
		e.errors++
		e.mu.Unlock()
		return fmt.Errorf("mqtt not connected")
	}

	token := e.client.Publish(topic, qos, false, payload)
	if !token.WaitTimeout(2 * time.Second) {
		e.mu.Lock()
		e.errors++
		e.mu.Unlock()
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		e.mu.Lock()
		e.errors++
		e.mu.Unlock()
		return fmt.Errorf("publish failed: %w", err)
	}

	e.mu.Lock()
	e.published[topic]++
	e.mu.Unlock()

	slog.Debug("event published",
		"topic", topic,
		"qos", qos,
		"size", len(payload),
	)

	return nil
}

func (e *MQTTEmitter) isConnected() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.connected
}

func (e *MQTTEmitter) qos(event string) byte {
	if q, ok := e.cfg.MQTT.QoS[event]; ok {
		return q
	}
	return 0
}

// StickerNames converts a reading to color names for the wire.
func StickerNames(reading types.FaceReading) [9]string {
	var out [9]string
	for i, c := range reading {
		out[i] = c.String()
	}
	return out
}
