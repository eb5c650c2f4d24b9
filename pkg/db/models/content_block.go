package models

import "time"

// ContentBlock stores keyed homepage media (hero video/image URLs).
type ContentBlock struct {
	Key       string    `gorm:"column:key;primaryKey" json:"key"`
	VideoURL  *string   `gorm:"column:video_url" json:"video_url,omitempty"`
	ImageURL  *string   `gorm:"column:image_url" json:"image_url,omitempty"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
