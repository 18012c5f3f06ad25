package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/festival-coordinator/internal/logging"
)

// Publisher sends call events. Callers treat failures as non-fatal.
type Publisher interface {
	PublishCallEvent(ctx context.Context, ev CallEvent) error
}

// NopPublisher drops every event. It is used when the queue is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishCallEvent(context.Context, CallEvent) error { return nil }

// AMQPPublisher publishes persistent JSON messages to CallEventsQueue on
// the default exchange. It dials per message; call volume is a handful
// per conversation.
type AMQPPublisher struct {
	URL string
}

func NewAMQPPublisher(url string) *AMQPPublisher { return &AMQPPublisher{URL: url} }

func (p *AMQPPublisher) PublishCallEvent(ctx context.Context, ev CallEvent) error {
	log := logging.FromContext(ctx).WithField("event", ev.Type)
	if ev.CorrelationID == "" {
		ev.CorrelationID = logging.CorrelationIDFromContext(ctx)
	}

	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.WithError(err).Warn("rabbitmq: dial failed")
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.WithError(err).Warn("rabbitmq: channel open failed")
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := declareQueue(ch); err != nil {
		log.WithError(err).Warn("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ev.Type, err)
	}
	msg := amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		Timestamp:     time.Now().UTC(),
		Type:          string(ev.Type),
		CorrelationId: ev.CorrelationID,
		Body:          body,
	}
	if err := ch.PublishWithContext(ctx, "", CallEventsQueue, false, false, msg); err != nil {
		log.WithError(err).Warn("rabbitmq: publish failed")
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

// declareQueue is idempotent. The queue is durable so messages survive
// broker restarts.
func declareQueue(ch *amqp.Channel) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(CallEventsQueue, true, false, false, false, nil)
	if err != nil {
		return q, fmt.Errorf("queue declare: %w", err)
	}
	return q, nil
}
