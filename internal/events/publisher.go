package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/cart"
)

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Publisher struct {
	ch       channel
	seqRepo  SequenceRepository
	producer string
}

func NewPublisher(conn *amqp.Connection, seqRepo SequenceRepository, producer string) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareEventsExchange(ch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}

	if producer == "" {
		producer = ShopServiceProducer
	}
	return &Publisher{ch: ch, seqRepo: seqRepo, producer: producer}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

// PublishCartUpdated announces the committed state of a cart.
func (p *Publisher) PublishCartUpdated(ctx context.Context, meta EventMeta, userID string, c cart.Cart) error {
	seq, err := p.seqRepo.NextSequence(ctx, CartPartitionKey(c.ID))
	if err != nil {
		return fmt.Errorf("reserve sequence: %w", err)
	}

	ev := newCartUpdatedEvent(meta, seq, p.producer, userID, c, time.Now().UTC())
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal CartUpdated envelope: %w", err)
	}
	return p.publishJSON(ctx, CartUpdatedRoutingKey, ev.EventID, body)
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey, messageID string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    messageID,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}
