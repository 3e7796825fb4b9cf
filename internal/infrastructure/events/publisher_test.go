package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailpos/pos-system/internal/core/domain"
)

func sampleEvent() domain.SaleEvent {
	sale := &domain.Sale{
		ID:            "65f0c0ffee0000000000abcd",
		SaleNumber:    "SALE-20260502-000042",
		CashierID:     "cashier-1",
		Total:         decimal.RequireFromString("22.00"),
		PaymentMethod: domain.PaymentCard,
		Items:         []domain.SaleItem{{ProductID: "p1", Quantity: 2}},
	}
	return domain.NewSaleEvent(domain.EventSaleCompleted, sale, time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC))
}

func TestSalePublisher_SendsKeyedMessage(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	ev := sampleEvent()

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "pos.sales.test" {
			return errors.New("wrong topic " + msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != ev.SaleNumber {
			return errors.New("wrong key " + string(key))
		}
		raw, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var got domain.SaleEvent
		if err := json.Unmarshal(raw, &got); err != nil {
			return err
		}
		if got.ID != ev.ID || got.Type != domain.EventSaleCompleted {
			return errors.New("unexpected payload")
		}
		return nil
	})

	pub := NewSalePublisherWithProducer(producer, "pos.sales.test", zerolog.Nop())
	require.NoError(t, pub.Publish(context.Background(), ev))
	require.NoError(t, pub.Close())
}

func TestSalePublisher_ReturnsBrokerError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrNotLeaderForPartition)

	pub := NewSalePublisherWithProducer(producer, "", zerolog.Nop())
	err := pub.Publish(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, sarama.ErrNotLeaderForPartition)
	assert.Equal(t, DefaultTopic, pub.topic)
	require.NoError(t, pub.Close())
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{Log: zerolog.Nop()}.Publish(context.Background(), sampleEvent()))
}
