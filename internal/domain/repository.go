package domain

import "context"

// CategoryRepository описывает хранилище категорий.
type CategoryRepository interface {
	// List возвращает категории, отсортированные по label.
	List(ctx context.Context) ([]Category, error)
	// Get возвращает категорию или ErrCategoryNotFound.
	Get(ctx context.Context, id string) (Category, error)
	// Create сохраняет категорию; ErrCategoryExists, если ID занят.
	Create(ctx context.Context, in CreateCategoryInput) (Category, error)
	// Update перезаписывает label и color; ErrCategoryNotFound, если записи нет.
	Update(ctx context.Context, in UpdateCategoryInput) (Category, error)
	// Delete удаляет категорию, если на неё не ссылается ни один товар.
	Delete(ctx context.Context, id string) error
}

// ProductRepository описывает хранилище товаров.
type ProductRepository interface {
	// List возвращает товары, отсортированные по name.
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (Product, error)
	// Create генерирует новый ID; товар сразу доступен для продажи.
	Create(ctx context.Context, in CreateProductInput) (Product, error)
	Update(ctx context.Context, in UpdateProductInput) (Product, error)
	// ToggleAvailability инвертирует флаг и возвращает новое значение.
	ToggleAvailability(ctx context.Context, id string) (bool, error)
	// Delete удаляет товар, если он не встречается ни в одной позиции заказа.
	Delete(ctx context.Context, id string) error
}

// OrderRepository описывает хранилище заказов.
type OrderRepository interface {
	// Create атомарно сохраняет заказ и все его позиции.
	Create(ctx context.Context, order OrderWithItems) error
	// List возвращает заказы от новых к старым вместе с позициями.
	List(ctx context.Context) ([]OrderWithItems, error)
}

// ReportRepository строит агрегаты по продажам.
type ReportRepository interface {
	DashboardSummary(ctx context.Context) (DashboardSummary, error)
}

// StoreAdmin: обслуживающие операции над хранилищем целиком.
type StoreAdmin interface {
	// Reset пересоздаёт схему и заново заливает начальный каталог.
	Reset(ctx context.Context) error
	Ping(ctx context.Context) error
}
