package models

// StockItem is a row of the stock_items table.
type StockItem struct {
	ProductID    string `db:"product_id"`
	Name         string `db:"name"`
	OnHand       int64  `db:"on_hand"`
	Reserved     int64  `db:"reserved"`
	MinThreshold int64  `db:"min_threshold"`
	AuditFields
}
