package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/veloraworld/velora-backend/pkg/enums"
	"github.com/veloraworld/velora-backend/pkg/types"
)

// Order is the paid order record written exactly once per settlement attempt.
// It is immutable after creation.
type Order struct {
	ID               uuid.UUID          `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CustomerName     string             `gorm:"column:customer_name;not null" json:"customer_name"`
	CustomerEmail    string             `gorm:"column:customer_email;not null" json:"customer_email"`
	CustomerPhone    *string            `gorm:"column:customer_phone" json:"customer_phone,omitempty"`
	Address          string             `gorm:"column:address;not null" json:"address"`
	DeliveryZone     enums.DeliveryZone `gorm:"column:delivery_zone;not null" json:"delivery_zone"`
	Items            types.OrderLines   `gorm:"column:items;type:jsonb;serializer:json" json:"items"`
	SubtotalCents    int                `gorm:"column:subtotal_cents;not null" json:"subtotal_cents"`
	DiscountCents    int                `gorm:"column:discount_cents;not null;default:0" json:"discount_cents"`
	DeliveryFeeCents int                `gorm:"column:delivery_fee_cents;not null;default:0" json:"delivery_fee_cents"`
	TotalCents       int                `gorm:"column:total_cents;not null" json:"total_cents"`
	PaymentRef       string             `gorm:"column:payment_ref;not null" json:"payment_ref"`
	Status           enums.OrderStatus  `gorm:"column:status;not null;default:'paid'" json:"status"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
