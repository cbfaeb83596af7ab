package domain

import "context"

// Типы событий о продажах.
const (
	EventTypeOrderCreated  = "order.created"
	EventTypeDatabaseReset = "database.reset"
)

// EventPublisher публикует события о продажах во внешние системы.
// Публикация происходит после коммита и не влияет на результат операции.
type EventPublisher interface {
	OrderCreated(ctx context.Context, order OrderWithItems) error
	DatabaseReset(ctx context.Context) error
}

// NoopPublisher ничего не публикует; используется, когда брокер не настроен.
type NoopPublisher struct{}

func (NoopPublisher) OrderCreated(context.Context, OrderWithItems) error { return nil }

func (NoopPublisher) DatabaseReset(context.Context) error { return nil }

var _ EventPublisher = NoopPublisher{}
