package models

import "github.com/shopspring/decimal"

// PurchaseOrder is a row of the purchase_orders table. ProductID is NULL
// for orders that do not restock an item.
type PurchaseOrder struct {
	PurchaseOrderID string          `db:"purchase_order_id"`
	DistributorID   string          `db:"distributor_id"`
	ProductID       *string         `db:"product_id"`
	Quantity        int64           `db:"quantity"`
	UnitCost        decimal.Decimal `db:"unit_cost"`
	Total           decimal.Decimal `db:"total"`
	AmountPaid      decimal.Decimal `db:"amount_paid"`
	PaymentState    string          `db:"payment_state"`
	CurrencyCode    string          `db:"currency_code"`
	AuditFields
}
