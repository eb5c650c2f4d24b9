package enums

// OrderStatus tracks the lifecycle of a settled order. Orders are only ever
// written after payment capture, so "paid" is the single terminal state today.
type OrderStatus string

const (
	OrderStatusPaid OrderStatus = "paid"
)

func (s OrderStatus) IsValid() bool {
	return s == OrderStatusPaid
}
