package models

import "github.com/shopspring/decimal"

// Sale is a row of the sales table. The fixed distribution and the part
// already written to the ledger are stored as separate column triples.
type Sale struct {
	SaleID             string          `db:"sale_id"`
	ClientID           string          `db:"client_id"`
	ProductID          string          `db:"product_id"`
	Quantity           int64           `db:"quantity"`
	UnitSalePrice      decimal.Decimal `db:"unit_sale_price"`
	UnitCostPrice      decimal.Decimal `db:"unit_cost_price"`
	UnitFreightPrice   decimal.Decimal `db:"unit_freight_price"`
	Total              decimal.Decimal `db:"total"`
	AmountPaid         decimal.Decimal `db:"amount_paid"`
	PaymentState       string          `db:"payment_state"`
	Status             string          `db:"status"`
	CurrencyCode       string          `db:"currency_code"`
	DistCost           decimal.Decimal `db:"dist_cost"`
	DistFreight        decimal.Decimal `db:"dist_freight"`
	DistProfit         decimal.Decimal `db:"dist_profit"`
	DistributedCost    decimal.Decimal `db:"distributed_cost"`
	DistributedFreight decimal.Decimal `db:"distributed_freight"`
	DistributedProfit  decimal.Decimal `db:"distributed_profit"`
	AuditFields
}
