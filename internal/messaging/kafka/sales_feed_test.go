package kafka

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSalesFeed_Apply(t *testing.T) {
	feed := NewSalesFeed(nil)

	feed.Apply(NewOrderCreatedEvent(testOrder()))
	cash := NewOrderCreatedEvent(testOrder())
	cash.OrderID = "order-2"
	cash.PaymentMethod = "cash"
	cash.Total = 400
	feed.Apply(cash)
	feed.Apply(&OrderEvent{EventType: "order.refunded", Total: 1000})

	snapshot := feed.Snapshot()
	require.Equal(t, int64(2), snapshot.Orders)
	require.Equal(t, int64(900), snapshot.Revenue)
	require.Equal(t, map[string]int64{"card": 500, "cash": 400}, snapshot.RevenueByPayment)
	require.Equal(t, "order-2", snapshot.LastOrderID)

	// копия не связана с внутренним состоянием
	snapshot.RevenueByPayment["card"] = 0
	require.Equal(t, int64(500), feed.Snapshot().RevenueByPayment["card"])

	feed.Apply(NewDatabaseResetEvent())
	snapshot = feed.Snapshot()
	require.Zero(t, snapshot.Orders)
	require.Zero(t, snapshot.Revenue)
	require.Empty(t, snapshot.RevenueByPayment)
	require.Equal(t, int64(1), snapshot.Resets)
}
