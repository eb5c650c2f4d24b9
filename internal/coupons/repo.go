package coupons

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/veloraworld/velora-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a coupon repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error) {
	coupon.Code = normalizeCode(coupon.Code)
	if err := r.db.WithContext(ctx).Create(coupon).Error; err != nil {
		return nil, err
	}
	return coupon, nil
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).Where("code = ?", normalizeCode(code)).First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *repository) List(ctx context.Context) ([]models.Coupon, error) {
	var rows []models.Coupon
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) MarkUsed(ctx context.Context, code string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("code = ? AND used = ?", normalizeCode(code), false).
		Update("used", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, code string) error {
	result := r.db.WithContext(ctx).Where("code = ?", normalizeCode(code)).Delete(&models.Coupon{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
