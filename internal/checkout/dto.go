package checkout

import (
	"github.com/google/uuid"

	"github.com/veloraworld/velora-backend/pkg/enums"
	"github.com/veloraworld/velora-backend/pkg/types"
)

// QuoteInput asks for a checkout summary for the session's cart.
type QuoteInput struct {
	Session      string
	DeliveryZone enums.DeliveryZone `json:"delivery_zone" validate:"required"`
	CouponCode   string             `json:"coupon_code,omitempty"`
}

// Quote is the server-side checkout summary. All amounts are minor units.
type Quote struct {
	Items            types.OrderLines `json:"items"`
	SubtotalCents    int              `json:"subtotal_cents"`
	DiscountCents    int              `json:"discount_cents"`
	DeliveryFeeCents int              `json:"delivery_fee_cents"`
	TotalCents       int              `json:"total_cents"`
}

// SettleInput carries everything needed to settle a paid checkout.
type SettleInput struct {
	Session       string
	CustomerName  string             `json:"customer_name" validate:"required"`
	CustomerEmail string             `json:"customer_email" validate:"required,email"`
	CustomerPhone *string            `json:"customer_phone,omitempty"`
	Address       string             `json:"address" validate:"required"`
	DeliveryZone  enums.DeliveryZone `json:"delivery_zone" validate:"required"`
	CouponCode    string             `json:"coupon_code,omitempty"`
	PaymentRef    string             `json:"payment_ref" validate:"required"`
}

// SettlementResult reports a settlement attempt. A non-nil result with an
// error means payment was taken but the order could not be committed; the
// caller clears the cart either way and flags the order for manual follow-up.
type SettlementResult struct {
	OrderID    uuid.UUID `json:"order_id"`
	TotalCents int       `json:"total_cents"`
	Committed  bool      `json:"committed"`
}
