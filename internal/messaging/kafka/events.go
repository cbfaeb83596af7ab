package kafka

import (
	"time"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

// EventType определяет тип события
type EventType string

const (
	EventTypeOrderCreated  EventType = domain.EventTypeOrderCreated
	EventTypeDatabaseReset EventType = domain.EventTypeDatabaseReset
)

// TopicOrderEvents: топик событий о продажах.
const TopicOrderEvents = "pos.order.events"

// HeaderEventType дублирует тип события в заголовке, чтобы потребители могли
// фильтровать сообщения без разбора тела.
const HeaderEventType = "x-event-type"

// resetKey: ключ партиционирования для событий без заказа.
const resetKey = "database"

// OrderEventItem: позиция заказа в событии.
type OrderEventItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int64  `json:"quantity"`
	Total       int64  `json:"total"`
}

// OrderEvent: событие о завершённой продаже.
type OrderEvent struct {
	EventType     EventType        `json:"event_type"`
	OrderID       string           `json:"order_id,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	Total         int64            `json:"total"`
	PaymentMethod string           `json:"payment_method,omitempty"`
	Items         []OrderEventItem `json:"items,omitempty"`
	Timestamp     time.Time        `json:"timestamp"`
}

// NewOrderCreatedEvent создаёт событие из сохранённого заказа.
func NewOrderCreatedEvent(order domain.OrderWithItems) *OrderEvent {
	items := make([]OrderEventItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderEventItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Total:       item.Total,
		})
	}

	return &OrderEvent{
		EventType:     EventTypeOrderCreated,
		OrderID:       order.ID,
		CreatedAt:     order.CreatedAt,
		Total:         order.Total,
		PaymentMethod: order.PaymentMethod.String(),
		Items:         items,
		Timestamp:     time.Now().UTC(),
	}
}

// NewDatabaseResetEvent создаёт событие о сбросе базы: вся история продаж удалена.
func NewDatabaseResetEvent() *OrderEvent {
	return &OrderEvent{
		EventType: EventTypeDatabaseReset,
		Timestamp: time.Now().UTC(),
	}
}
