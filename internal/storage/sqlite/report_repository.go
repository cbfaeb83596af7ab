package sqlite

import (
	"context"
	"database/sql"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

type reportRepository struct {
	store *Store
}

// NewReportRepository создаёт SQLite-реализацию ReportRepository.
func NewReportRepository(store *Store) domain.ReportRepository {
	return &reportRepository{store: store}
}

// DashboardSummary считает выручку по всем заказам, по товарам и по способам оплаты.
// Все три запроса выполняются под одной блокировкой и видят одно и то же состояние.
func (r *reportRepository) DashboardSummary(ctx context.Context) (domain.DashboardSummary, error) {
	summary := domain.DashboardSummary{
		PerProduct:       make([]domain.ProductSalesSummary, 0),
		PerPaymentMethod: make([]domain.PaymentMethodBreakdown, 0),
	}

	err := r.store.withLock(func(db *sql.DB) error {
		if err := db.QueryRowContext(ctx, `
			SELECT COALESCE(SUM(total), 0), COUNT(*) FROM orders
		`).Scan(&summary.TotalRevenue, &summary.TotalTransactions); err != nil {
			return queryError("sum orders", err)
		}

		perProduct, err := salesPerProduct(ctx, db)
		if err != nil {
			return err
		}
		summary.PerProduct = perProduct

		perMethod, err := salesPerPaymentMethod(ctx, db)
		if err != nil {
			return err
		}
		summary.PerPaymentMethod = perMethod
		return nil
	})
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	return summary, nil
}

// salesPerProduct группирует позиции по product_id. Название берётся из любой позиции
// группы: это снимок на момент продажи, а не текущее имя в каталоге.
func salesPerProduct(ctx context.Context, db *sql.DB) ([]domain.ProductSalesSummary, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT product_id, MAX(product_name), SUM(quantity), SUM(total) AS revenue
		FROM order_items
		GROUP BY product_id
		ORDER BY revenue DESC, product_id ASC
	`)
	if err != nil {
		return nil, queryError("sales per product", err)
	}
	defer rows.Close()

	out := make([]domain.ProductSalesSummary, 0)
	for rows.Next() {
		var s domain.ProductSalesSummary
		if err := rows.Scan(&s.ProductID, &s.ProductName, &s.TotalQuantity, &s.TotalRevenue); err != nil {
			return nil, rowMappingError("scan product sales row", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("iterate product sales rows", err)
	}
	return out, nil
}

func salesPerPaymentMethod(ctx context.Context, db *sql.DB) ([]domain.PaymentMethodBreakdown, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT payment_method, SUM(total), COUNT(*)
		FROM orders
		GROUP BY payment_method
		ORDER BY payment_method ASC
	`)
	if err != nil {
		return nil, queryError("sales per payment method", err)
	}
	defer rows.Close()

	out := make([]domain.PaymentMethodBreakdown, 0)
	for rows.Next() {
		var b domain.PaymentMethodBreakdown
		if err := rows.Scan(&b.PaymentMethod, &b.TotalRevenue, &b.TransactionCount); err != nil {
			return nil, rowMappingError("scan payment method row", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("iterate payment method rows", err)
	}
	return out, nil
}

var _ domain.ReportRepository = (*reportRepository)(nil)
