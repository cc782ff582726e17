package domain

// StockItem is a product's inventory position.
type StockItem struct {
	ProductID    string `json:"productID"`
	Name         string `json:"name"`
	OnHand       int64  `json:"onHand"`
	Reserved     int64  `json:"reserved"`
	MinThreshold int64  `json:"minThreshold"`
	AuditFields
}

// Available is on-hand minus reserved.
func (s StockItem) Available() int64 {
	return s.OnHand - s.Reserved
}

// LowStock reports whether available stock is at or below the threshold.
func (s StockItem) LowStock() bool {
	return s.Available() <= s.MinThreshold
}

// StockCheck is the outcome of validating a requested quantity.
type StockCheck struct {
	Valid     bool   `json:"valid"`
	Available int64  `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// Stock check reasons.
const (
	StockReasonInvalidQuantity = "invalid_quantity"
	StockReasonInsufficient    = "insufficient_stock"
)
