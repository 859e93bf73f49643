// Package mqtt adapts the paho client into the message source the core
// consumes: connect, subscribe to the configured filters, and hand each
// inbound (topic, payload) to a handler.
package mqtt

import (
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"mqttnotifier/internal/config"
	logx "mqttnotifier/pkg/logx"
)

// Handler consumes one inbound message. It runs on the paho message
// router's goroutine with in-order delivery, so a slow handler blocks the
// whole client; that is the intended backpressure boundary.
type Handler func(topic string, payload []byte)

const (
	connectTimeout = 10 * time.Second
	disconnectMs   = 250
)

// Source is one broker connection session.
type Source struct {
	client  paho.Client
	log     logx.Logger
	filters []string

	lost chan error
}

// NewSource builds a client for one session. Auto-reconnect stays off:
// an unexpected disconnect ends the session and the outer restart loop
// decides what happens next.
func NewSource(cfg config.BrokerConfig, filters []string, h Handler, log logx.Logger) *Source {
	if log.IsZero() {
		log = logx.Nop()
	}

	s := &Source{
		log:     log,
		filters: filters,
		lost:    make(chan error, 1),
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = fmt.Sprintf("mqttnotifier-%d", os.Getpid())
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Addr()).
		SetClientID(clientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetCleanSession(true).
		SetAutoReconnect(false).
		SetOrderMatters(true).
		SetConnectTimeout(connectTimeout).
		SetDefaultPublishHandler(func(_ paho.Client, msg paho.Message) {
			h(msg.Topic(), msg.Payload())
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Error("broker connection lost", logx.Err(err))
			select {
			case s.lost <- err:
			default:
			}
		})

	s.client = paho.NewClient(opts)
	return s
}

// Connect dials the broker and subscribes to every configured filter.
func (s *Source) Connect() error {
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect broker: %w", token.Error())
	}
	s.log.Info("connected to broker")

	for _, f := range s.filters {
		if token := s.client.Subscribe(f, 0, nil); token.Wait() && token.Error() != nil {
			s.Close()
			return fmt.Errorf("subscribe %q: %w", f, token.Error())
		}
		s.log.Info("subscribed", logx.String("filter", f))
	}
	return nil
}

// Lost delivers the error that ended the connection, once.
func (s *Source) Lost() <-chan error { return s.lost }

// Close disconnects from the broker, letting in-flight work drain briefly.
func (s *Source) Close() {
	if s.client.IsConnected() {
		s.client.Disconnect(disconnectMs)
	}
}
