package models

import "time"

// Coupon is a single-use discount code applied at checkout.
type Coupon struct {
	Code        string    `gorm:"column:code;primaryKey" json:"code"`
	AmountCents int       `gorm:"column:amount_cents;not null" json:"amount_cents"`
	Used        bool      `gorm:"column:used;not null;default:false" json:"used"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
