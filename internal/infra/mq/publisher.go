package mq

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"shuttlecourt/internal/pkg/config"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

func Connect(cfg config.MQConfig) (*amqp.Connection, func(), error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		conn.Close()
	}
	return conn, cleanup, nil
}

// Publisher pushes customer-facing events onto a topic exchange. Publishing
// is fire-and-forget: a broker outage is logged, never propagated, because
// no booking or settlement outcome may depend on the notification fabric.
type Publisher struct {
	channel  *amqp.Channel
	exchange string
	logger   *slog.Logger
}

func NewPublisher(conn *amqp.Connection, cfg config.MQConfig, logger *slog.Logger) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	err = ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, err
	}
	return &Publisher{channel: ch, exchange: cfg.Exchange, logger: logger}, nil
}

type event struct {
	Event      string         `json:"event"`
	CustomerID uuid.UUID      `json:"customer_id"`
	Payload    map[string]any `json:"payload,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func (p *Publisher) Notify(ctx context.Context, customerID uuid.UUID, name string, payload map[string]any) {
	body, err := json.Marshal(event{
		Event:      name,
		CustomerID: customerID,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		p.logger.Error("failed to marshal event", slog.String("event", name), slog.String("error", err.Error()))
		return
	}

	err = p.channel.PublishWithContext(ctx, p.exchange, name, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		p.logger.Warn("failed to publish event",
			slog.String("event", name),
			slog.String("error", err.Error()),
		)
	}
}

func (p *Publisher) Close() error {
	return p.channel.Close()
}
