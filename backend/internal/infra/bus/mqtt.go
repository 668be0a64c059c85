package bus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"process-entry-app/backend/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	mqttQoS             byte = 0
	mqttDisconnectQuiet uint = 250
	mqttDefaultTimeout       = 5 * time.Second
)

// mqttClient is the subset of mqtt.Client the publisher uses.
type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTPublisher publishes at QoS 0, not retained.
type MQTTPublisher struct {
	client  mqttClient
	timeout time.Duration
	log     *zap.SugaredLogger

	mu     sync.RWMutex
	closed bool
}

// MQTTClientOptions translates cfg into paho client options.
func MQTTClientOptions(cfg config.MQTTConfig) *mqtt.ClientOptions {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "process-entry-" + uuid.NewString()[:8]
	}
	keepAlive := cfg.KeepAlive
	if keepAlive <= 0 {
		keepAlive = 60 * time.Second
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Broker, cfg.Port))
	opts.SetClientID(clientID)
	opts.SetKeepAlive(keepAlive)
	opts.SetCleanSession(true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	return opts
}

// NewMQTTPublisher connects to the broker and returns a publisher.
func NewMQTTPublisher(cfg config.MQTTConfig, timeout time.Duration, log *zap.SugaredLogger) (*MQTTPublisher, error) {
	if timeout <= 0 {
		timeout = mqttDefaultTimeout
	}
	opts := MQTTClientOptions(cfg)
	opts.SetConnectTimeout(timeout)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warnw("mqtt connection lost", "error", err)
	})

	c := mqtt.NewClient(opts)
	token := c.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, fmt.Errorf("connect mqtt %s:%d: %w", cfg.Broker, cfg.Port, ErrPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect mqtt %s:%d: %w", cfg.Broker, cfg.Port, err)
	}

	log.Infow("mqtt connected", "broker", cfg.Broker, "port", cfg.Port)
	return newMQTTPublisher(c, timeout, log), nil
}

func newMQTTPublisher(c mqttClient, timeout time.Duration, log *zap.SugaredLogger) *MQTTPublisher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &MQTTPublisher{client: c, timeout: timeout, log: log}
}

// Publish hands the payload to the client and waits at most the configured
// timeout (or the context deadline) for it to be written out.
func (p *MQTTPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	if topic == "" {
		return ErrTopicRequired
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	token := p.client.Publish(topic, mqttQoS, false, payload)

	wait := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < wait {
			wait = remaining
		}
	}

	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("mqtt publish %s: %w", topic, ctx.Err())
	case <-time.After(wait):
		return fmt.Errorf("mqtt publish %s: %w", topic, ErrPublishTimeout)
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish %s: %w", topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.client.Disconnect(mqttDisconnectQuiet)
	return nil
}
