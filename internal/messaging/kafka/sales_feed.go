package kafka

import (
	"context"
	"sync"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

// FeedSnapshot: накопленные итоги ленты продаж.
type FeedSnapshot struct {
	Orders           int64            `json:"orders"`
	Revenue          int64            `json:"revenue"`
	RevenueByPayment map[string]int64 `json:"revenue_by_payment"`
	Resets           int64            `json:"resets"`
	LastOrderID      string           `json:"last_order_id,omitempty"`
}

// SalesFeed сворачивает события о продажах в бегущие итоги.
// Событие database.reset обнуляет итоги так же, как сброс обнуляет историю в кассе.
type SalesFeed struct {
	mu     sync.Mutex
	state  FeedSnapshot
	logger *log.Entry
}

func NewSalesFeed(logger *log.Entry) *SalesFeed {
	if logger == nil {
		logger = log.WithField("component", "sales-feed")
	}
	return &SalesFeed{
		state:  FeedSnapshot{RevenueByPayment: make(map[string]int64)},
		logger: logger,
	}
}

// Handle: MessageHandler для Consumer.
// Неизвестные типы событий пропускаются: сообщение маркируется как обработанное.
func (f *SalesFeed) Handle(_ context.Context, message *sarama.ConsumerMessage) error {
	event, err := ParseOrderEvent(message)
	if err != nil {
		return err
	}
	f.Apply(event)
	return nil
}

// Apply применяет одно событие к итогам.
func (f *SalesFeed) Apply(event *OrderEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch event.EventType {
	case EventTypeOrderCreated:
		f.state.Orders++
		f.state.Revenue += event.Total
		f.state.RevenueByPayment[event.PaymentMethod] += event.Total
		f.state.LastOrderID = event.OrderID
		f.logger.WithFields(log.Fields{
			"order_id":       event.OrderID,
			"total":          event.Total,
			"payment_method": event.PaymentMethod,
			"revenue":        f.state.Revenue,
		}).Info("продажа учтена")
	case EventTypeDatabaseReset:
		resets := f.state.Resets + 1
		f.state = FeedSnapshot{RevenueByPayment: make(map[string]int64), Resets: resets}
		f.logger.Warn("database reset received, totals cleared")
	default:
		f.logger.WithField("event_type", event.EventType).Debug("skipping unknown event")
	}
}

// Snapshot возвращает копию текущих итогов.
func (f *SalesFeed) Snapshot() FeedSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := f.state
	out.RevenueByPayment = make(map[string]int64, len(f.state.RevenueByPayment))
	for k, v := range f.state.RevenueByPayment {
		out.RevenueByPayment[k] = v
	}
	return out
}
