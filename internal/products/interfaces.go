package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veloraworld/velora-backend/pkg/db/models"
)

// Repository defines persistence operations for the product catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Save(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, filters ListFilters) ([]models.Product, error)
	ListRecommended(ctx context.Context, limit int) ([]models.Product, error)
}
