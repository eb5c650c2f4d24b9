package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/veloraworld/velora-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Save persists the full product row. Serialized columns (images, sizes,
// inventory) only round-trip correctly through struct writes, so updates go
// through load-mutate-save rather than partial update maps.
func (r *repository) Save(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDForUpdate locks the row for the duration of the surrounding
// transaction. SQLite serializes writers itself, so the lock clause is only
// applied on Postgres.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}

	var product models.Product
	err := query.Where("id = ?", id).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if category := strings.TrimSpace(filters.Category); category != "" {
		query = query.Where("category = ?", category)
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if filters.Recommended != nil {
		query = query.Where("recommended = ?", *filters.Recommended)
	}
	if filters.Featured != nil {
		query = query.Where("is_featured = ?", *filters.Featured)
	}

	var rows []models.Product
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListRecommended(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 8
	}
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("recommended = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
