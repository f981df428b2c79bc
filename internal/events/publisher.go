// Package events publishes message-lifecycle envelopes to a RabbitMQ topic
// exchange for downstream consumers (analytics, CRM sync). Publishing is
// best-effort: failures are logged and never block the dispatch path.
package events

import (
	"context"
	"encoding/json"
	"time"

	"onboarding-hub/internal/common/logger"
	"onboarding-hub/internal/models"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

const (
	KeyMessageDispatched    = "message.dispatched"
	KeyMessageStatusChanged = "message.status_changed"
	KeyMessageEscalated     = "message.escalated"
)

// Envelope is the wire format for lifecycle events.
type Envelope struct {
	Meta    Meta        `json:"meta"`
	Payload interface{} `json:"payload"`
}

type Meta struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	OccurredAt time.Time `json:"occurredAt"`
}

// StatusChangePayload accompanies KeyMessageStatusChanged.
type StatusChangePayload struct {
	Log      models.MessageLog    `json:"log"`
	Previous models.MessageStatus `json:"previous"`
}

// Publisher emits lifecycle events. The zero value (nil) is a no-op, so
// callers don't need to guard for a disabled event bus.
type Publisher struct {
	conn     *amqp091.Connection
	exchange string
	logger   logger.Logger
}

func NewPublisher(url, exchange string, log logger.Logger) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, err
	}

	return &Publisher{
		conn:     conn,
		exchange: exchange,
		logger:   log.WithFields(map[string]interface{}{"component": "event-publisher"}),
	}, nil
}

func (p *Publisher) Close() error {
	if p == nil || p.conn == nil {
		return nil
	}
	return p.conn.Close()
}

// Publish sends one envelope on the given routing key.
func (p *Publisher) Publish(ctx context.Context, key string, payload interface{}) {
	if p == nil || p.conn == nil {
		return
	}

	env := Envelope{
		Meta: Meta{
			ID:         uuid.NewString(),
			Kind:       key,
			OccurredAt: time.Now().UTC(),
		},
		Payload: payload,
	}

	body, err := json.Marshal(env)
	if err != nil {
		p.logger.Error("event marshal failed", map[string]interface{}{"key": key, "error": err})
		return
	}

	ch, err := p.conn.Channel()
	if err != nil {
		p.logger.Error("event channel open failed", map[string]interface{}{"key": key, "error": err})
		return
	}
	defer ch.Close()

	err = ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp091.Publishing{
		ContentType: "application/json",
		MessageId:   env.Meta.ID,
		Timestamp:   env.Meta.OccurredAt,
		Body:        body,
	})
	if err != nil {
		p.logger.Error("event publish failed", map[string]interface{}{"key": key, "error": err})
	}
}

func (p *Publisher) MessageDispatched(ctx context.Context, log models.MessageLog) {
	p.Publish(ctx, KeyMessageDispatched, log)
}

func (p *Publisher) MessageStatusChanged(ctx context.Context, log models.MessageLog, previous models.MessageStatus) {
	p.Publish(ctx, KeyMessageStatusChanged, StatusChangePayload{Log: log, Previous: previous})
}

func (p *Publisher) MessageEscalated(ctx context.Context, log models.MessageLog) {
	p.Publish(ctx, KeyMessageEscalated, log)
}
