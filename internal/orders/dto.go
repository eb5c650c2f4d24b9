package orders

import (
	"github.com/veloraworld/velora-backend/pkg/db/models"
)

// ListFilters are the optional admin listing filters.
type ListFilters struct {
	Email string
}

// OrderList is one page of the admin order feed.
type OrderList struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}
