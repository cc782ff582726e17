package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountReconciliation compares an account's stored balance with the one
// recomputed from its ledger entries.
type AccountReconciliation struct {
	AccountID        string          `json:"accountID"`
	StoredBalance    decimal.Decimal `json:"storedBalance"`
	ComputedBalance  decimal.Decimal `json:"computedBalance"`
	Drift            decimal.Decimal `json:"drift"`
	StoredInflows    decimal.Decimal `json:"storedInflows"`
	StoredOutflows   decimal.Decimal `json:"storedOutflows"`
	ComputedInflows  decimal.Decimal `json:"computedInflows"`
	ComputedOutflows decimal.Decimal `json:"computedOutflows"`
	EntryCount       int64           `json:"entryCount"`
	InvariantHolds   bool            `json:"invariantHolds"`
	Issue            string          `json:"issue,omitempty"`
	CheckedAt        time.Time       `json:"checkedAt"`
}

// HasDrift reports whether any stored figure disagrees with the ledger.
func (r AccountReconciliation) HasDrift() bool {
	return !r.Drift.IsZero() ||
		!r.StoredInflows.Equal(r.ComputedInflows) ||
		!r.StoredOutflows.Equal(r.ComputedOutflows)
}

// CounterpartyReconciliation compares cached debt with the recomputed debt.
type CounterpartyReconciliation struct {
	CounterpartyID string          `json:"counterpartyID"`
	StoredBilled   decimal.Decimal `json:"storedBilled"`
	StoredPaid     decimal.Decimal `json:"storedPaid"`
	ComputedBilled decimal.Decimal `json:"computedBilled"`
	ComputedPaid   decimal.Decimal `json:"computedPaid"`
	StoredDebt     decimal.Decimal `json:"storedDebt"`
	ComputedDebt   decimal.Decimal `json:"computedDebt"`
	Drift          decimal.Decimal `json:"drift"`
	Issue          string          `json:"issue,omitempty"`
	CheckedAt      time.Time       `json:"checkedAt"`
}

// HasDrift reports whether the cached aggregates disagree with the records.
func (r CounterpartyReconciliation) HasDrift() bool {
	return !r.StoredBilled.Equal(r.ComputedBilled) || !r.StoredPaid.Equal(r.ComputedPaid)
}

// ChainVerification is the result of re-hashing an account's entry chain.
type ChainVerification struct {
	AccountID     string `json:"accountID"`
	Entries       int64  `json:"entries"`
	Valid         bool   `json:"valid"`
	BrokenEntryID string `json:"brokenEntryID,omitempty"`
}
