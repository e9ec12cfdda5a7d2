package messaging

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/stan.go"
)

// Publisher sends domain events. Failures never abort the operation that raised them.
type Publisher interface {
	Publish(subject string, data any) error
	Close() error
}

type Config struct {
	Enabled   bool
	URL       string
	ClusterID string
	ClientID  string
}

type NATSClient struct {
	conn stan.Conn
}

// New returns a NATS Streaming publisher when enabled, a logging no-op otherwise.
func New(cfg Config) (Publisher, error) {
	if !cfg.Enabled {
		slog.Info("NATS disabled, events will only be logged")
		return NopPublisher{}, nil
	}
	return NewNATSClient(cfg)
}

func NewNATSClient(cfg Config) (*NATSClient, error) {
	// Unique client id so that api and consumers replicas do not collide
	uniqueClientID := fmt.Sprintf("%s-%s", cfg.ClientID, uuid.New().String()[:8])

	conn, err := stan.Connect(cfg.ClusterID, uniqueClientID,
		stan.NatsURL(cfg.URL),
		stan.ConnectWait(5*time.Second),
		stan.SetConnectionLostHandler(func(_ stan.Conn, reason error) {
			slog.Error("NATS Streaming connection lost", "error", reason)
		}))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS Streaming: %w", err)
	}

	slog.Info("Connected to NATS Streaming",
		"url", cfg.URL, "cluster", cfg.ClusterID, "client", uniqueClientID)

	return &NATSClient{conn: conn}, nil
}

func (nc *NATSClient) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	if err := nc.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}

	slog.Debug("Published message", "subject", subject)
	return nil
}

func (nc *NATSClient) SubscribeQueue(subject, queue string, handler stan.MsgHandler) (stan.Subscription, error) {
	sub, err := nc.conn.QueueSubscribe(subject, queue, handler,
		stan.DurableName(subject+"-"+queue+"-durable"),
		stan.SetManualAckMode(),
		stan.AckWait(30*time.Second),
		stan.MaxInflight(1))
	if err != nil {
		return nil, fmt.Errorf("failed to queue subscribe to subject %s: %w", subject, err)
	}

	slog.Info("Subscribed to subject", "subject", subject, "queue", queue)
	return sub, nil
}

func (nc *NATSClient) Close() error {
	if nc.conn != nil {
		return nc.conn.Close()
	}
	return nil
}

// NopPublisher logs events instead of sending them.
type NopPublisher struct{}

func (NopPublisher) Publish(subject string, data any) error {
	if _, err := json.Marshal(data); err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}
	slog.Debug("Event not published, messaging disabled", "subject", subject)
	return nil
}

func (NopPublisher) Close() error { return nil }
