package sqlite

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

// seed заливает начальный каталог. INSERT OR IGNORE не трогает записи,
// которые уже есть в базе, поэтому вызов безопасен при каждом старте.
func seed(ctx context.Context, db execer, f domain.Fixtures) (int64, error) {
	var inserted int64

	for _, c := range f.Categories {
		res, err := db.ExecContext(ctx, `
			INSERT OR IGNORE INTO categories (id, label, color)
			VALUES (?, ?, ?)
		`, c.ID, c.Label, c.Color)
		if err != nil {
			return inserted, queryError(fmt.Sprintf("seed category %s", c.ID), err)
		}
		inserted += affected(res)
	}

	for _, p := range f.Products {
		res, err := db.ExecContext(ctx, `
			INSERT OR IGNORE INTO products (id, name, price, category_id, available)
			VALUES (?, ?, ?, ?, 1)
		`, p.ID, p.Name, p.Price, p.CategoryID)
		if err != nil {
			return inserted, queryError(fmt.Sprintf("seed product %s", p.ID), err)
		}
		inserted += affected(res)
	}

	return inserted, nil
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func affected(res rowsAffecter) int64 {
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}
