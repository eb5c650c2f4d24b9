package types

// OrderLine is the immutable snapshot of one cart line captured at settlement.
// Prices are the ones recorded at add-to-cart time, never re-fetched.
type OrderLine struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	Size           string `json:"size"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int    `json:"unit_price_cents"`
	ImageURL       string `json:"image_url,omitempty"`
}

// OrderLines is the JSON-serialized line item snapshot stored on an order.
type OrderLines []OrderLine
