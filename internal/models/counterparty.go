package models

import "github.com/shopspring/decimal"

// Counterparty is a row of the counterparties table. NormalizedName backs
// the per-kind unique constraint.
type Counterparty struct {
	CounterpartyID string          `db:"counterparty_id"`
	Kind           string          `db:"kind"`
	Name           string          `db:"name"`
	NormalizedName string          `db:"normalized_name"`
	TotalBilled    decimal.Decimal `db:"total_billed"`
	TotalPaid      decimal.Decimal `db:"total_paid"`
	AuditFields
}
