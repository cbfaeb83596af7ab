package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/pos/internal/domain"
	"github.com/vladislavdragonenkov/pos/internal/storage/sqlite"
)

func TestCategoryRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewCategoryRepository(newTestStore(t))

	created, err := repo.Create(ctx, domain.CreateCategoryInput{ID: "alcohol", Label: "Alcool", Color: "#ef4444"})
	require.NoError(t, err)
	require.Equal(t, domain.Category{ID: "alcohol", Label: "Alcool", Color: "#ef4444"}, created)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, []string{"Alcool", "Drinks", "Snacks"}, []string{list[0].Label, list[1].Label, list[2].Label})

	updated, err := repo.Update(ctx, domain.UpdateCategoryInput{ID: "alcohol", Label: "Bar", Color: "#111111"})
	require.NoError(t, err)
	require.Equal(t, "Bar", updated.Label)

	got, err := repo.Get(ctx, "alcohol")
	require.NoError(t, err)
	require.Equal(t, updated, got)

	require.NoError(t, repo.Delete(ctx, "alcohol"))
	_, err = repo.Get(ctx, "alcohol")
	require.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestCategoryRepository_CreateDuplicate(t *testing.T) {
	repo := sqlite.NewCategoryRepository(newTestStore(t))

	_, err := repo.Create(context.Background(), domain.CreateCategoryInput{ID: "drinks", Label: "Dup", Color: "#000"})
	require.ErrorIs(t, err, domain.ErrCategoryExists)
	require.Equal(t, domain.KindAlreadyExists, domain.KindOf(err))
}

func TestCategoryRepository_UpdateMissing(t *testing.T) {
	repo := sqlite.NewCategoryRepository(newTestStore(t))

	_, err := repo.Update(context.Background(), domain.UpdateCategoryInput{ID: "ghost", Label: "Ghost"})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCategoryRepository_DeleteReferenced(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewCategoryRepository(newTestStore(t))

	err := repo.Delete(ctx, "drinks")
	require.ErrorIs(t, err, domain.ErrConflict)
	require.EqualError(t, err, "cannot delete category 'drinks': it is referenced by 1 product(s)")

	_, err = repo.Get(ctx, "drinks")
	require.NoError(t, err)
}

func TestCategoryRepository_DeleteMissing(t *testing.T) {
	err := sqlite.NewCategoryRepository(newTestStore(t)).Delete(context.Background(), "ghost")
	require.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestProductRepository_CreateAndList(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewProductRepository(newTestStore(t))

	created, err := repo.Create(ctx, domain.CreateProductInput{Name: "Apple juice", Price: 250, CategoryID: "drinks"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.True(t, created.Available)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "Apple juice", list[0].Name)
	require.Equal(t, "Bar", list[1].Name)
	require.Equal(t, "Soda", list[2].Name)
}

func TestProductRepository_CreateUnknownCategory(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	repo := sqlite.NewProductRepository(store)

	_, err := repo.Create(ctx, domain.CreateProductInput{Name: "Ghost", Price: 1, CategoryID: "ghost"})
	require.ErrorIs(t, err, domain.ErrUnknownCategory)
	require.True(t, domain.IsValidation(err))

	counts, err := store.Counts(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), counts.Products)
}

func TestProductRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewProductRepository(newTestStore(t))

	updated, err := repo.Update(ctx, domain.UpdateProductInput{
		ID: "soda", Name: "Cola", Price: 250, CategoryID: "snacks", Available: false,
	})
	require.NoError(t, err)

	got, err := repo.Get(ctx, "soda")
	require.NoError(t, err)
	require.Equal(t, updated, got)
	require.False(t, got.Available)

	_, err = repo.Update(ctx, domain.UpdateProductInput{ID: "ghost", Name: "x", CategoryID: "drinks"})
	require.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = repo.Update(ctx, domain.UpdateProductInput{ID: "soda", Name: "x", CategoryID: "ghost"})
	require.ErrorIs(t, err, domain.ErrUnknownCategory)
}

func TestProductRepository_ToggleAvailability(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewProductRepository(newTestStore(t))

	available, err := repo.ToggleAvailability(ctx, "soda")
	require.NoError(t, err)
	require.False(t, available)

	available, err = repo.ToggleAvailability(ctx, "soda")
	require.NoError(t, err)
	require.True(t, available)

	got, err := repo.Get(ctx, "soda")
	require.NoError(t, err)
	require.True(t, got.Available)

	_, err = repo.ToggleAvailability(ctx, "ghost")
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestProductRepository_DeleteReferencedByOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	products := sqlite.NewProductRepository(store)

	require.NoError(t, sqlite.NewOrderRepository(store).Create(ctx, mustBuildOrder(t, "o1", time.Now(), domain.PaymentMethodCard,
		domain.CreateOrderItemInput{ProductID: "soda", ProductName: "Soda", UnitPrice: 200, Quantity: 2},
	)))

	err := products.Delete(ctx, "soda")
	require.ErrorIs(t, err, domain.ErrConflict)
	require.Contains(t, err.Error(), "referenced by 1 order item(s)")

	require.NoError(t, products.Delete(ctx, "bar"))
	require.ErrorIs(t, products.Delete(ctx, "bar"), domain.ErrProductNotFound)
}
