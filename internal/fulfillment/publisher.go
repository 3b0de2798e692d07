// Package fulfillment hands emitted orders to downstream purchasing systems.
package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
	pkgkafka "github.com/andresuchdata/autopo-reorder/pkg/kafka"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

const OrderCreatedEvent = "reorder.order_created"

// OrderPublisher announces the orders of a run.
type OrderPublisher interface {
	PublishOrders(ctx context.Context, run *domain.ReorderRun) error
	Close() error
}

// OrderPayload is the body of an order event.
type OrderPayload struct {
	SKU       string           `json:"sku"`
	Warehouse domain.Warehouse `json:"warehouse"`
	Quantity  int              `json:"quantity"`
	RunDate   string           `json:"run_date"`
}

// OrderEvent is the envelope written to the orders topic.
type OrderEvent struct {
	EventID   string       `json:"event_id"`
	RunID     string       `json:"run_id"`
	Type      string       `json:"type"`
	CreatedAt time.Time    `json:"created_at"`
	Payload   OrderPayload `json:"payload"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes one message per order, keyed by SKU.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

// NewKafkaPublisher returns a noop publisher when no brokers are configured.
func NewKafkaPublisher(client *pkgkafka.Client, topic string) (OrderPublisher, error) {
	writer, err := client.NewWriter(topic)
	if errors.Is(err, pkgkafka.ErrDisabled) {
		log.Info().Msg("fulfillment: kafka brokers not configured, orders will not be published")
		return NoopPublisher{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &KafkaPublisher{writer: writer, topic: topic}, nil
}

func (p *KafkaPublisher) PublishOrders(ctx context.Context, run *domain.ReorderRun) error {
	if len(run.Orders) == 0 {
		return nil
	}

	msgs, err := orderMessages(run, time.Now().UTC())
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to publish %d orders to %s: %w", len(msgs), p.topic, err)
	}

	log.Info().
		Str("run_id", run.ID).
		Str("topic", p.topic).
		Int("orders", len(msgs)).
		Msg("fulfillment: orders published")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func orderMessages(run *domain.ReorderRun, now time.Time) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(run.Orders))
	for _, o := range run.Orders {
		evt := OrderEvent{
			EventID:   uuid.NewString(),
			RunID:     run.ID,
			Type:      OrderCreatedEvent,
			CreatedAt: now,
			Payload: OrderPayload{
				SKU:       o.SKU,
				Warehouse: o.Warehouse,
				Quantity:  o.Quantity,
				RunDate:   run.Date.Format(domain.DateLayout),
			},
		}
		msg, err := pkgkafka.JSONMessage(o.SKU, evt)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// NoopPublisher drops orders.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrders(context.Context, *domain.ReorderRun) error { return nil }

func (NoopPublisher) Close() error { return nil }
