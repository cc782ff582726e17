package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CounterpartyKind distinguishes clients from distributors.
type CounterpartyKind string

const (
	Client      CounterpartyKind = "client"
	Distributor CounterpartyKind = "distributor"
)

// Valid reports whether k is a known kind.
func (k CounterpartyKind) Valid() bool {
	return k == Client || k == Distributor
}

// Counterparty is a client or distributor with cached money aggregates.
type Counterparty struct {
	CounterpartyID string           `json:"counterpartyID"`
	Kind           CounterpartyKind `json:"kind"`
	Name           string           `json:"name"`
	TotalBilled    decimal.Decimal  `json:"totalBilled"`
	TotalPaid      decimal.Decimal  `json:"totalPaid"`
	AuditFields
}

// TotalOwed is billed minus paid.
func (c Counterparty) TotalOwed() decimal.Decimal {
	return c.TotalBilled.Sub(c.TotalPaid)
}

// NormalizeName is the key used for name based deduplication.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
