// Package mqtt publishes stored readings to an MQTT broker.
package mqtt

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/config"
	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/types"
)

const (
	publishQoS     = byte(1)
	publishTimeout = 5 * time.Second
	retryInterval  = 5 * time.Second
)

type Publisher struct {
	client    mqtt.Client
	prefix    string
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewPublisher(cfg config.Config, logger *slog.Logger) *Publisher {
	return newPublisher(cfg, logger, retryInterval)
}

func newPublisher(cfg config.Config, logger *slog.Logger, retry time.Duration) *Publisher {
	logger = logger.With("component", "mqtt")
	p := &Publisher{
		prefix: cfg.MQTTTopicPrefix,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(retry)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		p.setConnected(true)
		logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		p.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	p.client = mqtt.NewClient(opts)
	return p
}

// Connect waits for the broker to accept the connection. When ctx ends first
// the client keeps retrying in the background and the publisher comes online
// once the broker is reachable; only Disconnect aborts the attempt.
func (p *Publisher) Connect(ctx context.Context) error {
	select {
	case <-p.stopCh:
		return fmt.Errorf("publisher stopped")
	default:
	}

	if p.IsConnected() {
		return nil
	}

	token := p.client.Connect()

	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.stopCh:
			p.client.Disconnect(0)
			return fmt.Errorf("publisher stopped")
		default:
		}
	}
}

// PublishReading sends r as a retained QoS 1 message on its slot topic.
func (p *Publisher) PublishReading(ctx context.Context, r types.Reading) error {
	if !p.IsConnected() {
		return fmt.Errorf("mqtt client not connected")
	}

	payload, err := FormatPayload(r)
	if err != nil {
		return err
	}
	topic := Topic(p.prefix, r.Slot)

	token := p.client.Publish(topic, publishQoS, true, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(publishTimeout):
		return fmt.Errorf("publish timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	p.logger.Debug("published reading", "topic", topic, "date", r.Date, "temperature", r.Temperature)
	return nil
}

func (p *Publisher) IsConnected() bool {
	p.mu.RLock()
	connected := p.connected
	p.mu.RUnlock()
	return connected && p.client.IsConnected()
}

// Disconnect stops the publisher and closes the connection. Safe to call more
// than once.
func (p *Publisher) Disconnect() {
	p.stopOnce.Do(func() { close(p.stopCh) })

	if p.client != nil {
		p.client.Disconnect(250)
	}

	p.setConnected(false)
	p.logger.Info("mqtt publisher disconnected")
}

func (p *Publisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}
