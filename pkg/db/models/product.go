package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/veloraworld/velora-backend/pkg/types"
)

// Product represents a storefront listing with per-size inventory counters.
// Every key in Inventory must correspond to an entry in Sizes; counters never
// go negative. Only settlement decrements and the admin console mutate it.
type Product struct {
	ID              uuid.UUID          `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name            string             `gorm:"column:name;not null" json:"name"`
	Category        string             `gorm:"column:category;not null" json:"category"`
	PriceCents      int                `gorm:"column:price_cents;not null" json:"price_cents"`
	DiscountPercent int                `gorm:"column:discount_percent;not null;default:0" json:"discount_percent"`
	ImageURL        string             `gorm:"column:image_url;not null" json:"image_url"`
	HoverImageURL   *string            `gorm:"column:hover_image_url" json:"hover_image_url,omitempty"`
	Images          types.StringList   `gorm:"column:images;type:jsonb;serializer:json" json:"images"`
	Sizes           types.StringList   `gorm:"column:sizes;type:jsonb;serializer:json" json:"sizes"`
	Inventory       types.InventoryMap `gorm:"column:inventory;type:jsonb;serializer:json" json:"inventory"`
	Recommended     bool               `gorm:"column:recommended;not null;default:false" json:"recommended"`
	IsFeatured      bool               `gorm:"column:is_featured;not null;default:false" json:"is_featured"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TotalStock sums all per-size counters for out-of-stock badges.
func (p *Product) TotalStock() int {
	if p == nil {
		return 0
	}
	return p.Inventory.TotalStock()
}
