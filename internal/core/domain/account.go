package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is one of the fixed named money pools ("vaults").
type Account struct {
	AccountID        string          `json:"accountID"`
	Name             string          `json:"name"`
	CurrencyCode     string          `json:"currencyCode"`
	Balance          decimal.Decimal `json:"balance"`
	LifetimeInflows  decimal.Decimal `json:"lifetimeInflows"`
	LifetimeOutflows decimal.Decimal `json:"lifetimeOutflows"`
	AuditFields
}

// InvariantHolds reports whether balance equals inflows minus outflows.
func (a Account) InvariantHolds() bool {
	return a.Balance.Equal(a.LifetimeInflows.Sub(a.LifetimeOutflows))
}

// Apply returns a copy of the account with the delta applied to the
// balance and the matching lifetime total.
func (a Account) Apply(kind EntryKind, amount decimal.Decimal) Account {
	switch kind {
	case Inflow:
		a.Balance = a.Balance.Add(amount)
		a.LifetimeInflows = a.LifetimeInflows.Add(amount)
	case Outflow:
		a.Balance = a.Balance.Sub(amount)
		a.LifetimeOutflows = a.LifetimeOutflows.Add(amount)
	}
	return a
}

// Revert undoes a previously applied delta.
func (a Account) Revert(kind EntryKind, amount decimal.Decimal) Account {
	switch kind {
	case Inflow:
		a.Balance = a.Balance.Sub(amount)
		a.LifetimeInflows = a.LifetimeInflows.Sub(amount)
	case Outflow:
		a.Balance = a.Balance.Add(amount)
		a.LifetimeOutflows = a.LifetimeOutflows.Sub(amount)
	}
	return a
}

// AccountSeed describes an account created at bootstrap.
type AccountSeed struct {
	AccountID    string
	Name         string
	CurrencyCode string
}

// Well-known account ids.
const (
	AccountVaultMain     = "vault-main"
	AccountFreight       = "freight"
	AccountProfit        = "profit"
	AccountOperatingCash = "operating-cash"
	AccountBank          = "bank"
	AccountSavings       = "savings"
	AccountPettyCash     = "petty-cash"
)

// DefaultAccountSeeds is the fixed account set created at bootstrap.
func DefaultAccountSeeds(currency string) []AccountSeed {
	return []AccountSeed{
		{AccountVaultMain, "Main Vault", currency},
		{AccountFreight, "Freight Pool", currency},
		{AccountProfit, "Profit Pool", currency},
		{AccountOperatingCash, "Operating Cash", currency},
		{AccountBank, "Bank", currency},
		{AccountSavings, "Savings", currency},
		{AccountPettyCash, "Petty Cash", currency},
	}
}

// NewAccount returns an empty account for seed.
func NewAccount(seed AccountSeed, now time.Time) Account {
	return Account{
		AccountID:        seed.AccountID,
		Name:             seed.Name,
		CurrencyCode:     seed.CurrencyCode,
		Balance:          decimal.Zero,
		LifetimeInflows:  decimal.Zero,
		LifetimeOutflows: decimal.Zero,
		AuditFields: AuditFields{
			CreatedAt:     now,
			CreatedBy:     SystemActor,
			LastUpdatedAt: now,
			LastUpdatedBy: SystemActor,
		},
	}
}
