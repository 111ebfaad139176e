// Package mqtt publishes Febos entities to an MQTT broker using Home
// Assistant discovery.
package mqtt

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"febos_exporter/internal/config"
	"febos_exporter/internal/entity"
)

// Connection constants.
const (
	defaultConnectTimeout    = 10 * time.Second
	defaultPublishTimeout    = 5 * time.Second
	defaultDisconnectQuiesce = 1000 // milliseconds
	defaultKeepAlive         = 60 * time.Second
)

// client is the subset of pahomqtt.Client the publisher needs.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
	Disconnect(quiesce uint)
}

// Publisher announces entities and publishes their states after every
// refresh. It implements the coordinator's refresh listener.
type Publisher struct {
	client client
	topics Topics
	qos    byte
	logger *slog.Logger

	// announced holds the keys whose discovery config was published on the
	// current connection.
	announced map[string]bool
	mu        sync.Mutex
}

// Connect connects to the broker. The availability topic carries a retained
// last will so consumers see the exporter go offline.
func Connect(cfg config.MQTTConfig, logger *slog.Logger) (*Publisher, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	topics := Topics{DiscoveryPrefix: cfg.DiscoveryPrefix, TopicPrefix: cfg.TopicPrefix}
	opts := buildClientOptions(cfg, topics)

	p := &Publisher{
		topics:    topics,
		qos:       byte(cfg.QoS),
		logger:    logger,
		announced: make(map[string]bool),
	}

	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		p.handleConnect()
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		logger.Warn("MQTT connection lost", "error", err)
	})

	c := pahomqtt.NewClient(opts)
	p.client = c
	token := c.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	logger.Info("Connected to MQTT broker", "broker", cfg.Broker)
	return p, nil
}

func buildClientOptions(cfg config.MQTTConfig, topics Topics) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)
	opts.SetWill(topics.Availability(), PayloadOffline, byte(cfg.QoS), true)
	return opts
}

// handleConnect runs on every (re)connect. Retained discovery configs may
// have been lost by the broker, so everything is announced again.
func (p *Publisher) handleConnect() {
	p.mu.Lock()
	p.announced = make(map[string]bool)
	p.mu.Unlock()

	if err := p.publish(p.topics.Availability(), PayloadOnline, true); err != nil {
		p.logger.Warn("Failed to publish availability", "error", err)
	}
}

// OnRefresh announces new records and publishes every state.
func (p *Publisher) OnRefresh(ctx context.Context, records []entity.Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var failed int
	var firstErr error
	for _, r := range records {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := p.publishRecord(r); err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d records: %w", failed, len(records), firstErr)
	}
	return nil
}

func (p *Publisher) publishRecord(r entity.Record) error {
	if !p.announced[r.Key] {
		payload, err := DiscoveryPayload(p.topics, r)
		if err != nil {
			return fmt.Errorf("discovery payload %s: %w", r.Key, err)
		}
		if err := p.publish(p.topics.Discovery(r.Kind, r.Key), payload, true); err != nil {
			return err
		}
		p.announced[r.Key] = true
		p.logger.Debug("Announced entity", "key", r.Key, "kind", r.Kind)
	}

	state, ok := StatePayload(r)
	if !ok {
		return nil
	}
	return p.publish(p.topics.State(r.Key), state, true)
}

func (p *Publisher) publish(topic string, payload interface{}, retained bool) error {
	token := p.client.Publish(topic, p.qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: %s: timeout after %v", ErrPublishFailed, topic, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPublishFailed, topic, err)
	}
	return nil
}

// Close publishes the offline status and disconnects.
func (p *Publisher) Close() error {
	if p.client == nil {
		return nil
	}
	if err := p.publish(p.topics.Availability(), PayloadOffline, true); err != nil {
		p.logger.Warn("Failed to publish offline status", "error", err)
	}
	p.client.Disconnect(defaultDisconnectQuiesce)
	return nil
}
