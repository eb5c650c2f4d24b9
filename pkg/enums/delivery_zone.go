package enums

// DeliveryZone selects the flat delivery fee applied at checkout.
type DeliveryZone string

const (
	DeliveryZoneLagos        DeliveryZone = "Lagos"
	DeliveryZoneOutsideLagos DeliveryZone = "OutsideLagos"
)

func (z DeliveryZone) IsValid() bool {
	switch z {
	case DeliveryZoneLagos, DeliveryZoneOutsideLagos:
		return true
	}
	return false
}
