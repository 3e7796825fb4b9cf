package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/retailpos/pos-system/internal/core/domain"
	"github.com/retailpos/pos-system/internal/core/ports"
)

const DefaultTopic = "pos.sales"

var _ ports.SaleEventPublisher = (*SalePublisher)(nil)

// SalePublisher writes sale events to Kafka, keyed by sale number so every
// event of one sale lands on the same partition.
type SalePublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      zerolog.Logger
}

// NewSalePublisher connects a synchronous producer to brokers.
func NewSalePublisher(brokers []string, topic string, log zerolog.Logger) (*SalePublisher, error) {
	config := sarama.NewConfig()
	config.ClientID = "pos-system"
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1
	config.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	log.Info().Strs("brokers", brokers).Str("topic", topic).Msg("kafka publisher initialized")
	return NewSalePublisherWithProducer(producer, topic, log), nil
}

// NewSalePublisherWithProducer wraps an existing producer.
func NewSalePublisherWithProducer(producer sarama.SyncProducer, topic string, log zerolog.Logger) *SalePublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &SalePublisher{producer: producer, topic: topic, log: log}
}

func (p *SalePublisher) Publish(ctx context.Context, ev domain.SaleEvent) error {
	tracer := otel.Tracer("github.com/retailpos/pos-system/internal/infrastructure/events")
	ctx, span := tracer.Start(ctx, "kafka.publish "+string(ev.Type),
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", p.topic),
			attribute.String("event.type", string(ev.Type)),
			attribute.String("event.id", ev.ID),
			attribute.String("sale.number", ev.SaleNumber),
		),
	)
	defer span.End()

	payload, err := json.Marshal(ev)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "marshal event")
		return fmt.Errorf("marshal sale event: %w", err)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(ev.Type)},
		{Key: []byte("event_id"), Value: []byte(ev.ID)},
	}
	for k, v := range carrier {
		headers = append(headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}

	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(ev.SaleNumber),
		Value:     sarama.ByteEncoder(payload),
		Headers:   headers,
		Timestamp: ev.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send message")
		return fmt.Errorf("send sale event: %w", err)
	}

	span.SetAttributes(
		attribute.Int("messaging.kafka.partition", int(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)
	p.log.Debug().
		Str("event_id", ev.ID).
		Str("event_type", string(ev.Type)).
		Str("sale_number", ev.SaleNumber).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("sale event published")
	return nil
}

func (p *SalePublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NopPublisher drops events. It is used when no brokers are configured.
type NopPublisher struct {
	Log zerolog.Logger
}

func (p NopPublisher) Publish(_ context.Context, ev domain.SaleEvent) error {
	p.Log.Debug().Str("event_type", string(ev.Type)).Str("sale_number", ev.SaleNumber).Msg("sale event dropped, no broker configured")
	return nil
}
