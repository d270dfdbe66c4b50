package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/product-catalogue/internal/model"
	"github.com/tuanvumaihuynh/product-catalogue/internal/repository"
	"github.com/tuanvumaihuynh/product-catalogue/internal/storage/db"
	"github.com/tuanvumaihuynh/product-catalogue/pkg/ptr"
)

// setupRepository connects to the database named by POSTGRES_TEST_DSN, applies the
// schema and truncates the products table.
func setupRepository(t *testing.T) repository.ProductRepository {
	t.Helper()

	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	if err := pool.Ping(ctx); err != nil {
		t.Skipf("postgres not available: %v", err)
	}

	require.NoError(t, db.Migrate(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE products RESTART IDENTITY`)
	require.NoError(t, err)

	return repository.NewProductRepository(db.NewClient(pool))
}

func newProduct(name, category string, price float64, status model.ProductStatus) model.Product {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return model.Product{
		Name:      name,
		Price:     price,
		Category:  category,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestProductRepository(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	t.Run("Should assign ids on create and read them back", func(t *testing.T) {
		p := newProduct("Widget", "tools", 10.5, model.ProductStatusActive)
		p.Description = ptr.New("small widget")

		created, err := repo.CreateProduct(ctx, p)
		require.NoError(t, err)
		assert.NotZero(t, created.ID)

		got, err := repo.GetProduct(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Widget", got.Name)
		assert.Equal(t, "small widget", ptr.Deref(got.Description))
		assert.InDelta(t, 10.5, got.Price, 0.001)
		assert.Equal(t, model.ProductStatusActive, got.Status)
	})

	t.Run("Should report missing rows", func(t *testing.T) {
		_, err := repo.GetProduct(ctx, 999999)
		assert.ErrorIs(t, err, repository.ErrProductNotFound)

		_, err = repo.UpdateProduct(ctx, model.Product{ID: 999999, Name: "x", UpdatedAt: time.Now()})
		assert.ErrorIs(t, err, repository.ErrProductNotFound)

		_, err = repo.MarkProductDeleted(ctx, 999999, time.Now())
		assert.ErrorIs(t, err, repository.ErrProductNotFound)
	})

	t.Run("Should never write status or category on update", func(t *testing.T) {
		created, err := repo.CreateProduct(ctx, newProduct("Hammer", "tools", 20, model.ProductStatusActive))
		require.NoError(t, err)

		created.Category = "garden"
		created.Name = "Big Hammer"
		created.Status = model.ProductStatusDeleted
		updated, err := repo.UpdateProduct(ctx, created)
		require.NoError(t, err)

		assert.Equal(t, "tools", updated.Category)
		assert.Equal(t, "Big Hammer", updated.Name)
		assert.Equal(t, model.ProductStatusActive, updated.Status)
	})

	t.Run("Should leave deleted rows untouched", func(t *testing.T) {
		created, err := repo.CreateProduct(ctx, newProduct("Saw", "tools", 30, model.ProductStatusActive))
		require.NoError(t, err)

		deleted, err := repo.MarkProductDeleted(ctx, created.ID, time.Now().UTC())
		require.NoError(t, err)
		assert.Equal(t, model.ProductStatusDeleted, deleted.Status)

		created.Name = "Revived Saw"
		_, err = repo.UpdateProduct(ctx, created)
		require.ErrorIs(t, err, repository.ErrProductDeleted)

		_, err = repo.MarkProductDeleted(ctx, created.ID, time.Now().UTC())
		require.ErrorIs(t, err, repository.ErrProductDeleted)

		got, err := repo.GetProduct(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Saw", got.Name)
		assert.Equal(t, model.ProductStatusDeleted, got.Status)
	})

	t.Run("Should filter by category and status and order premium by price", func(t *testing.T) {
		for _, p := range []model.Product{
			newProduct("Lamp", "lights", 800, model.ProductStatusActive),
			newProduct("Bulb", "lights", 500, model.ProductStatusActive),
			newProduct("Old Lamp", "lights", 900, model.ProductStatusDeleted),
		} {
			_, err := repo.CreateProduct(ctx, p)
			require.NoError(t, err)
		}

		lights, err := repo.ListProductsByCategoryAndStatus(ctx, "lights", model.ProductStatusActive)
		require.NoError(t, err)
		assert.Len(t, lights, 2)

		premium, err := repo.ListProductsByStatusAndMinPrice(ctx, model.ProductStatusActive, model.PremiumPriceThreshold)
		require.NoError(t, err)
		require.Len(t, premium, 2)
		assert.Equal(t, "Bulb", premium[0].Name)
		assert.Equal(t, "Lamp", premium[1].Name)
	})
}
