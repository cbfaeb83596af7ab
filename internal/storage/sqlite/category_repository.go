package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

type categoryRepository struct {
	store *Store
}

// NewCategoryRepository создаёт SQLite-реализацию CategoryRepository.
func NewCategoryRepository(store *Store) domain.CategoryRepository {
	return &categoryRepository{store: store}
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	categories := make([]domain.Category, 0)
	err := r.store.withLock(func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `
			SELECT id, label, color
			FROM categories
			ORDER BY label ASC, id ASC
		`)
		if err != nil {
			return queryError("list categories", err)
		}
		defer rows.Close()

		for rows.Next() {
			var c domain.Category
			if err := rows.Scan(&c.ID, &c.Label, &c.Color); err != nil {
				return rowMappingError("scan category row", err)
			}
			categories = append(categories, c)
		}
		if err := rows.Err(); err != nil {
			return queryError("iterate category rows", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) Get(ctx context.Context, id string) (domain.Category, error) {
	var c domain.Category
	err := r.store.withLock(func(db *sql.DB) error {
		err := db.QueryRowContext(ctx, `
			SELECT id, label, color FROM categories WHERE id = ?
		`, id).Scan(&c.ID, &c.Label, &c.Color)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", domain.ErrCategoryNotFound, id)
		}
		if err != nil {
			return queryError("select category", err)
		}
		return nil
	})
	return c, err
}

func (r *categoryRepository) Create(ctx context.Context, in domain.CreateCategoryInput) (domain.Category, error) {
	c := domain.Category{ID: in.ID, Label: in.Label, Color: in.Color}
	err := r.store.withLock(func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO categories (id, label, color) VALUES (?, ?, ?)
		`, c.ID, c.Label, c.Color)
		if err != nil {
			if constraintOf(err) == constraintUnique {
				return fmt.Errorf("%w: %s", domain.ErrCategoryExists, c.ID)
			}
			return queryError("insert category", err)
		}
		return nil
	})
	if err != nil {
		return domain.Category{}, err
	}
	return c, nil
}

func (r *categoryRepository) Update(ctx context.Context, in domain.UpdateCategoryInput) (domain.Category, error) {
	c := domain.Category{ID: in.ID, Label: in.Label, Color: in.Color}
	err := r.store.withLock(func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, `
			UPDATE categories SET label = ?, color = ? WHERE id = ?
		`, c.Label, c.Color, c.ID)
		if err != nil {
			return queryError("update category", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return queryError("update category: rows affected", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", domain.ErrCategoryNotFound, c.ID)
		}
		return nil
	})
	if err != nil {
		return domain.Category{}, err
	}
	return c, nil
}

// Delete сначала считает ссылающиеся товары: удаление категории с товарами запрещено.
func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	return r.store.inTx(ctx, "delete category", func(tx *sql.Tx) error {
		var refs int64
		if err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM products WHERE category_id = ?
		`, id).Scan(&refs); err != nil {
			return queryError("count category products", err)
		}
		if refs > 0 {
			return &domain.ReferencedError{Entity: "category", ID: id, Count: refs, Dependent: "product(s)"}
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
		if err != nil {
			if constraintOf(err) == constraintForeignKey {
				return &domain.ReferencedError{Entity: "category", ID: id, Count: 1, Dependent: "product(s)"}
			}
			return queryError("delete category", err)
		}
		if affected(res) == 0 {
			return fmt.Errorf("%w: %s", domain.ErrCategoryNotFound, id)
		}
		return nil
	})
}

var _ domain.CategoryRepository = (*categoryRepository)(nil)
