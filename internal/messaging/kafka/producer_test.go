package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

func testOrder() domain.OrderWithItems {
	return domain.OrderWithItems{
		Order: domain.Order{
			ID:            "order-1",
			CreatedAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			Total:         500,
			PaymentMethod: domain.PaymentMethodCard,
		},
		Items: []domain.OrderItem{
			{ID: "order-1-item-1", OrderID: "order-1", ProductID: "soda", ProductName: "Soda", UnitPrice: 200, Quantity: 1, Total: 200},
			{ID: "order-1-item-2", OrderID: "order-1", ProductID: "bar", ProductName: "Bar", UnitPrice: 100, Quantity: 3, Total: 300},
		},
	}
}

func TestProducer_OrderCreated(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := NewProducerFromSync(mockProducer, "", log.WithField("component", "kafka-producer-test"))

	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		require.Equal(t, TopicOrderEvents, msg.Topic)

		key, err := msg.Key.Encode()
		require.NoError(t, err)
		require.Equal(t, "order-1", string(key))

		require.Len(t, msg.Headers, 1)
		require.Equal(t, HeaderEventType, string(msg.Headers[0].Key))
		require.Equal(t, string(EventTypeOrderCreated), string(msg.Headers[0].Value))

		value, err := msg.Value.Encode()
		require.NoError(t, err)
		var event OrderEvent
		require.NoError(t, json.Unmarshal(value, &event))
		require.Equal(t, EventTypeOrderCreated, event.EventType)
		require.Equal(t, int64(500), event.Total)
		require.Equal(t, "card", event.PaymentMethod)
		require.Len(t, event.Items, 2)
		require.Equal(t, int64(300), event.Items[1].Total)
		return nil
	})

	require.NoError(t, producer.OrderCreated(context.Background(), testOrder()))
	require.NoError(t, producer.Close())
}

func TestProducer_DatabaseReset(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := NewProducerFromSync(mockProducer, "pos.custom", nil)

	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		require.Equal(t, "pos.custom", msg.Topic)

		value, err := msg.Value.Encode()
		require.NoError(t, err)
		var event OrderEvent
		require.NoError(t, json.Unmarshal(value, &event))
		require.Equal(t, EventTypeDatabaseReset, event.EventType)
		require.Empty(t, event.OrderID)
		return nil
	})

	require.NoError(t, producer.DatabaseReset(context.Background()))
	require.NoError(t, producer.Close())
}

func TestProducer_SendError(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := NewProducerFromSync(mockProducer, "", nil)

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := producer.OrderCreated(context.Background(), testOrder())
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, producer.Close())
}

func TestNewProducer_InvalidBroker(t *testing.T) {
	_, err := NewProducer([]string{"invalid-broker:9092"}, TopicOrderEvents)
	require.Error(t, err)
}

func TestNewOrderCreatedEvent(t *testing.T) {
	event := NewOrderCreatedEvent(testOrder())

	require.Equal(t, EventTypeOrderCreated, event.EventType)
	require.Equal(t, "order-1", event.OrderID)
	require.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), event.CreatedAt)
	require.Equal(t, []OrderEventItem{
		{ProductID: "soda", ProductName: "Soda", UnitPrice: 200, Quantity: 1, Total: 200},
		{ProductID: "bar", ProductName: "Bar", UnitPrice: 100, Quantity: 3, Total: 300},
	}, event.Items)
	require.False(t, event.Timestamp.IsZero())
}
