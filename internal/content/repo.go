package content

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/veloraworld/velora-backend/pkg/db/models"
)

// Repository defines persistence for keyed content blocks.
type Repository interface {
	Find(ctx context.Context, key string) (*models.ContentBlock, error)
	Upsert(ctx context.Context, block *models.ContentBlock) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a content repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Find(ctx context.Context, key string) (*models.ContentBlock, error) {
	var block models.ContentBlock
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&block).Error
	if err != nil {
		return nil, err
	}
	return &block, nil
}

func (r *repository) Upsert(ctx context.Context, block *models.ContentBlock) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"video_url", "image_url", "updated_at"}),
		}).
		Create(block).Error
}
