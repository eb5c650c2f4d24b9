package coupons

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/veloraworld/velora-backend/pkg/db/models"
)

func setupCouponsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS coupons (
  code TEXT PRIMARY KEY,
  amount_cents INTEGER NOT NULL,
  used INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	require.NoError(t, db.Exec("DELETE FROM coupons").Error)
	return db
}

func TestRepositoryCreateNormalizesCode(t *testing.T) {
	db := setupCouponsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Coupon{Code: "  welcome10 ", AmountCents: 100000})
	require.NoError(t, err)
	assert.Equal(t, "WELCOME10", created.Code)

	found, err := repo.FindByCode(ctx, "welcome10")
	require.NoError(t, err)
	assert.Equal(t, 100000, found.AmountCents)
	assert.False(t, found.Used)
}

func TestRepositoryMarkUsed(t *testing.T) {
	db := setupCouponsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.Coupon{Code: "SPRING", AmountCents: 50000})
	require.NoError(t, err)

	require.NoError(t, repo.MarkUsed(ctx, "spring"))

	found, err := repo.FindByCode(ctx, "SPRING")
	require.NoError(t, err)
	assert.True(t, found.Used)

	assert.ErrorIs(t, repo.MarkUsed(ctx, "SPRING"), gorm.ErrRecordNotFound, "second mark finds no unused row")
}

func TestRepositoryFindMissingCode(t *testing.T) {
	db := setupCouponsTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByCode(context.Background(), "NOPE")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
