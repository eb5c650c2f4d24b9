package coupons

import (
	"context"

	"gorm.io/gorm"

	"github.com/veloraworld/velora-backend/pkg/db/models"
)

// Repository defines persistence operations for discount codes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error)
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	List(ctx context.Context) ([]models.Coupon, error)
	MarkUsed(ctx context.Context, code string) error
	Delete(ctx context.Context, code string) error
}
