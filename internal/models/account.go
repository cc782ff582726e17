package models

import (
	"github.com/shopspring/decimal"
)

// Account is a row of the accounts table.
type Account struct {
	AccountID        string          `db:"account_id"`
	Name             string          `db:"name"`
	CurrencyCode     string          `db:"currency_code"`
	Balance          decimal.Decimal `db:"balance"`
	LifetimeInflows  decimal.Decimal `db:"lifetime_inflows"`
	LifetimeOutflows decimal.Decimal `db:"lifetime_outflows"`
	AuditFields
}
