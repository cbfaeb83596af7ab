package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

type productRepository struct {
	store *Store
	newID func() string
}

// NewProductRepository создаёт SQLite-реализацию ProductRepository.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepository{store: store, newID: uuid.NewString}
}

const selectProductColumns = `SELECT id, name, price, category_id, available FROM products`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var (
		p         domain.Product
		available int64
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.CategoryID, &available); err != nil {
		return domain.Product{}, err
	}
	p.Available = available != 0
	return p, nil
}

func boolToInt(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	products := make([]domain.Product, 0)
	err := r.store.withLock(func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, selectProductColumns+` ORDER BY name ASC, id ASC`)
		if err != nil {
			return queryError("list products", err)
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanProduct(rows)
			if err != nil {
				return rowMappingError("scan product row", err)
			}
			products = append(products, p)
		}
		if err := rows.Err(); err != nil {
			return queryError("iterate product rows", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := r.store.withLock(func(db *sql.DB) error {
		var err error
		p, err = getProduct(ctx, db, id)
		return err
	})
	return p, err
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getProduct(ctx context.Context, q queryRower, id string) (domain.Product, error) {
	p, err := scanProduct(q.QueryRowContext(ctx, selectProductColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	if err != nil {
		return domain.Product{}, queryError("select product", err)
	}
	return p, nil
}

func (r *productRepository) Create(ctx context.Context, in domain.CreateProductInput) (domain.Product, error) {
	p := domain.Product{
		ID:         r.newID(),
		Name:       in.Name,
		Price:      in.Price,
		CategoryID: in.CategoryID,
		Available:  true,
	}
	err := r.store.withLock(func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO products (id, name, price, category_id, available)
			VALUES (?, ?, ?, ?, ?)
		`, p.ID, p.Name, p.Price, p.CategoryID, boolToInt(p.Available))
		if err != nil {
			if constraintOf(err) == constraintForeignKey {
				return fmt.Errorf("%w: %s", domain.ErrUnknownCategory, p.CategoryID)
			}
			return queryError("insert product", err)
		}
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (r *productRepository) Update(ctx context.Context, in domain.UpdateProductInput) (domain.Product, error) {
	p := domain.Product{
		ID:         in.ID,
		Name:       in.Name,
		Price:      in.Price,
		CategoryID: in.CategoryID,
		Available:  in.Available,
	}
	err := r.store.withLock(func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, `
			UPDATE products
			SET name = ?,
			    price = ?,
			    category_id = ?,
			    available = ?
			WHERE id = ?
		`, p.Name, p.Price, p.CategoryID, boolToInt(p.Available), p.ID)
		if err != nil {
			if constraintOf(err) == constraintForeignKey {
				return fmt.Errorf("%w: %s", domain.ErrUnknownCategory, p.CategoryID)
			}
			return queryError("update product", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return queryError("update product: rows affected", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", domain.ErrProductNotFound, p.ID)
		}
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// ToggleAvailability инвертирует флаг в одной транзакции и возвращает новое значение.
func (r *productRepository) ToggleAvailability(ctx context.Context, id string) (bool, error) {
	var available bool
	err := r.store.inTx(ctx, "toggle product availability", func(tx *sql.Tx) error {
		p, err := getProduct(ctx, tx, id)
		if err != nil {
			return err
		}
		available = !p.Available

		if _, err := tx.ExecContext(ctx, `
			UPDATE products SET available = ? WHERE id = ?
		`, boolToInt(available), id); err != nil {
			return queryError("update product availability", err)
		}
		return nil
	})
	return available, err
}

// Delete запрещён, пока товар встречается в позициях заказов: история продаж неизменна.
func (r *productRepository) Delete(ctx context.Context, id string) error {
	return r.store.inTx(ctx, "delete product", func(tx *sql.Tx) error {
		var refs int64
		if err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM order_items WHERE product_id = ?
		`, id).Scan(&refs); err != nil {
			return queryError("count product order items", err)
		}
		if refs > 0 {
			return &domain.ReferencedError{Entity: "product", ID: id, Count: refs, Dependent: "order item(s)"}
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
		if err != nil {
			if constraintOf(err) == constraintForeignKey {
				return &domain.ReferencedError{Entity: "product", ID: id, Count: 1, Dependent: "order item(s)"}
			}
			return queryError("delete product", err)
		}
		if affected(res) == 0 {
			return fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
		}
		return nil
	})
}

var _ domain.ProductRepository = (*productRepository)(nil)
