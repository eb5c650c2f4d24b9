package types

// StringList is a JSON-serialized ordered list of strings (size labels,
// gallery image URLs). Stored as jsonb on Postgres and TEXT on SQLite.
type StringList []string

// InventoryMap maps a size label to its remaining non-negative stock count.
type InventoryMap map[string]int

// TotalStock sums the per-size counters; used for out-of-stock roll-ups.
func (m InventoryMap) TotalStock() int {
	total := 0
	for _, qty := range m {
		if qty > 0 {
			total += qty
		}
	}
	return total
}

// Contains reports whether the list holds the given value.
func (l StringList) Contains(value string) bool {
	for _, v := range l {
		if v == value {
			return true
		}
	}
	return false
}
