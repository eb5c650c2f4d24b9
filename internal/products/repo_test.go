package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/veloraworld/velora-backend/pkg/db/models"
	"github.com/veloraworld/velora-backend/pkg/types"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  category TEXT NOT NULL,
  price_cents INTEGER NOT NULL,
  discount_percent INTEGER NOT NULL DEFAULT 0,
  image_url TEXT NOT NULL,
  hover_image_url TEXT,
  images TEXT,
  sizes TEXT,
  inventory TEXT,
  recommended INTEGER NOT NULL DEFAULT 0,
  is_featured INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	require.NoError(t, db.Exec("DELETE FROM products").Error)
	return db
}

func seedProduct(t *testing.T, repo Repository, name, category string, recommended bool) *models.Product {
	t.Helper()
	created, err := repo.Create(context.Background(), &models.Product{
		Name:       name,
		Category:   category,
		PriceCents: 1500000,
		ImageURL:   "https://cdn.velora.test/" + name + ".jpg",
		Sizes:      types.StringList{"S", "M"},
		Inventory:  types.InventoryMap{"S": 2, "M": 1},
		Recommended: recommended,
	})
	require.NoError(t, err)
	return created
}

func TestRepositoryCreateAndFind(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created := seedProduct(t, repo, "Crop Hoodie", "hoodies", false)
	require.NotEqual(t, uuid.Nil, created.ID)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Crop Hoodie", found.Name)
	assert.Equal(t, types.StringList{"S", "M"}, found.Sizes)
	assert.Equal(t, 2, found.Inventory["S"])
}

func TestRepositoryFindMissingProduct(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListFilters(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedProduct(t, repo, "Varsity Jacket", "jackets", true)
	seedProduct(t, repo, "Denim Jacket", "jackets", false)
	seedProduct(t, repo, "Logo Tee", "tees", false)

	jackets, err := repo.List(ctx, ListFilters{Category: "jackets"})
	require.NoError(t, err)
	assert.Len(t, jackets, 2)

	denim, err := repo.List(ctx, ListFilters{Search: "denim"})
	require.NoError(t, err)
	require.Len(t, denim, 1)
	assert.Equal(t, "Denim Jacket", denim[0].Name)

	recommended, err := repo.ListRecommended(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recommended, 1)
	assert.Equal(t, "Varsity Jacket", recommended[0].Name)
}

func TestRepositorySaveRoundTripsInventory(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created := seedProduct(t, repo, "Cargo Pants", "pants", false)
	created.Inventory["M"] = 7

	require.NoError(t, repo.Save(ctx, created))

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, found.Inventory["M"])
}

func TestRepositoryDelete(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created := seedProduct(t, repo, "Bucket Hat", "accessories", false)
	require.NoError(t, repo.Delete(ctx, created.ID))

	_, err := repo.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, created.ID), gorm.ErrRecordNotFound)
}
