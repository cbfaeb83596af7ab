package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

type orderRepository struct {
	store *Store
}

// NewOrderRepository создаёт SQLite-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{store: store}
}

// Create сохраняет заказ и позиции одной транзакцией. Если хоть одна позиция
// не вставилась (например, неизвестный товар), в базе не остаётся ничего.
func (r *orderRepository) Create(ctx context.Context, order domain.OrderWithItems) error {
	return r.store.inTx(ctx, "create order", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO orders (id, created_at, total, payment_method)
			VALUES (?, ?, ?, ?)
		`,
			order.ID, formatTimestamp(order.CreatedAt), order.Total, order.PaymentMethod,
		)
		if err != nil {
			switch constraintOf(err) {
			case constraintUnique:
				return fmt.Errorf("order %w: %s", domain.ErrAlreadyExists, order.ID)
			case constraintCheck:
				return fmt.Errorf("%w: %s", domain.ErrValidation, err)
			}
			return queryError("insert order", err)
		}

		for _, item := range order.Items {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO order_items (
					id, order_id, product_id, product_name, unit_price, quantity, total
				) VALUES (?, ?, ?, ?, ?, ?, ?)
			`,
				item.ID, order.ID, item.ProductID, item.ProductName,
				item.UnitPrice, item.Quantity, item.Total,
			); err != nil {
				switch constraintOf(err) {
				case constraintForeignKey:
					return fmt.Errorf("%w: %s", domain.ErrUnknownProduct, item.ProductID)
				case constraintCheck:
					return fmt.Errorf("%w %d for product %s", domain.ErrInvalidQuantity, item.Quantity, item.ProductID)
				case constraintUnique:
					return fmt.Errorf("order item %w: %s", domain.ErrAlreadyExists, item.ID)
				}
				return queryError("insert order item", err)
			}
		}
		return nil
	})
}

// List возвращает все заказы от новых к старым. При равном created_at
// первым идёт заказ, вставленный позже.
func (r *orderRepository) List(ctx context.Context) ([]domain.OrderWithItems, error) {
	orders := make([]domain.OrderWithItems, 0)
	err := r.store.withLock(func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `
			SELECT id, created_at, total, payment_method
			FROM orders
			ORDER BY created_at DESC, rowid DESC
		`)
		if err != nil {
			return queryError("list orders", err)
		}

		index := make(map[string]int)
		for rows.Next() {
			var (
				o         domain.OrderWithItems
				createdAt string
			)
			if err := rows.Scan(&o.ID, &createdAt, &o.Total, &o.PaymentMethod); err != nil {
				_ = rows.Close()
				return rowMappingError("scan order row", err)
			}
			if o.CreatedAt, err = parseTimestamp(createdAt); err != nil {
				_ = rows.Close()
				return rowMappingError("parse order created_at", err)
			}
			o.Items = make([]domain.OrderItem, 0)
			index[o.ID] = len(orders)
			orders = append(orders, o)
		}
		if err := rows.Err(); err != nil {
			_ = rows.Close()
			return queryError("iterate order rows", err)
		}
		_ = rows.Close()

		if len(orders) == 0 {
			return nil
		}
		return loadOrderItems(ctx, db, orders, index)
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// loadOrderItems забирает позиции всех заказов одним запросом и раскладывает их по заказам.
func loadOrderItems(ctx context.Context, db *sql.DB, orders []domain.OrderWithItems, index map[string]int) error {
	rows, err := db.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, unit_price, quantity, total
		FROM order_items
		ORDER BY order_id, rowid
	`)
	if err != nil {
		return queryError("list order items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.UnitPrice, &item.Quantity, &item.Total,
		); err != nil {
			return rowMappingError("scan order item row", err)
		}
		i, ok := index[item.OrderID]
		if !ok {
			continue
		}
		orders[i].Items = append(orders[i].Items, item)
	}
	if err := rows.Err(); err != nil {
		return queryError("iterate order item rows", err)
	}
	return nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(domain.TimestampLayout)
}

func parseTimestamp(raw string) (time.Time, error) {
	t, err := time.Parse(domain.TimestampLayout, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
