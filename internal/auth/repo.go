package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veloraworld/velora-backend/pkg/db/models"
)

// Repository defines persistence for admin console accounts.
type Repository interface {
	Create(ctx context.Context, admin *models.Admin) (*models.Admin, error)
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an admin repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}
	admin.Email = normalizeEmail(admin.Email)
	if err := r.db.WithContext(ctx).Create(admin).Error; err != nil {
		return nil, err
	}
	return admin, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
