package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veloraworld/velora-backend/pkg/db/models"
	"github.com/veloraworld/velora-backend/pkg/pagination"
)

// Repository defines persistence operations for paid orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, query ListQuery) ([]models.Order, error)
}

// ListQuery narrows the admin order listing.
type ListQuery struct {
	Limit  int
	Cursor *pagination.Cursor
	Email  string
}
