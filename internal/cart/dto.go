package cart

import (
	"github.com/veloraworld/velora-backend/pkg/types"
)

// AddItemInput is the storefront payload for adding a line to the cart.
type AddItemInput struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Size      string `json:"size" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// Snapshot is the full cart state returned to the storefront. Lines carry the
// unit price recorded when they were first added.
type Snapshot struct {
	Items         types.OrderLines `json:"items"`
	SubtotalCents int              `json:"subtotal_cents"`
}

func snapshotOf(items types.OrderLines) *Snapshot {
	subtotal := 0
	for _, item := range items {
		subtotal += item.UnitPriceCents * item.Quantity
	}
	if items == nil {
		items = types.OrderLines{}
	}
	return &Snapshot{Items: items, SubtotalCents: subtotal}
}
