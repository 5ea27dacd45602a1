package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/sweeney/air-monitor/internal/sensor"
)

// RealPublisher publishes to an actual MQTT broker, queueing messages
// while disconnected and replaying them on reconnect.
type RealPublisher struct {
	client paho.Client

	mu     sync.Mutex
	queued *outbox
}

// NewRealPublisher creates a publisher that connects to the given
// broker in the background and keeps retrying.
func NewRealPublisher(broker string) *RealPublisher {
	p := &RealPublisher{queued: newOutbox(64)}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("air-monitor").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Warnf("mqtt connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	p.client.Connect() // retries in the background; token intentionally not awaited
	return p
}

// onConnect replays any messages queued while the link was down.
func (p *RealPublisher) onConnect(client paho.Client) {
	p.mu.Lock()
	backlog := p.queued.drain()
	p.mu.Unlock()

	if len(backlog) == 0 {
		log.Info("mqtt connected")
		return
	}
	log.Infof("mqtt connected, replaying %d queued messages", len(backlog))
	for _, msg := range backlog {
		token := client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
		if !token.WaitTimeout(5 * time.Second) {
			log.Warn("mqtt replay timeout, dropping remainder")
			return
		}
		if err := token.Error(); err != nil {
			log.Warnf("mqtt replay failed: %v", err)
			return
		}
	}
}

func (p *RealPublisher) publish(topic string, payload []byte, qos byte, retained bool) error {
	if !p.client.IsConnected() {
		p.mu.Lock()
		p.queued.push(queuedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		p.mu.Unlock()
		return nil
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// PublishTelemetry sends one reading to the broker.
func (p *RealPublisher) PublishTelemetry(r sensor.Reading, level sensor.AlertLevel) error {
	payload, err := FormatTelemetry(r, level)
	if err != nil {
		return fmt.Errorf("format telemetry: %w", err)
	}
	// QoS 0: the next reading supersedes a lost one.
	return p.publish(TopicTelemetry, payload, 0, false)
}

// PublishSystem sends a lifecycle event to the broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystem(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	// QoS 1 for lifecycle events - sleep/startup must not vanish.
	return p.publish(TopicSystem, payload, 1, event.Retained)
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // milliseconds to flush in-flight messages
	return nil
}
