package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind is the direction of a ledger entry.
type EntryKind string

const (
	Inflow  EntryKind = "inflow"
	Outflow EntryKind = "outflow"
)

// Valid reports whether k is a known kind.
func (k EntryKind) Valid() bool {
	return k == Inflow || k == Outflow
}

// ReferenceType names the business object that originated an entry.
type ReferenceType string

const (
	RefSale             ReferenceType = "sale"
	RefSaleCancellation ReferenceType = "sale_cancellation"
	RefPurchaseOrder    ReferenceType = "purchase_order"
	RefTransfer         ReferenceType = "transfer"
	RefExpense          ReferenceType = "expense"
	RefIncome           ReferenceType = "income"
	RefDebtPayment      ReferenceType = "debt_payment"
)

// Reference points at the business object behind an entry.
type Reference struct {
	Type ReferenceType `json:"type,omitempty"`
	ID   string        `json:"id,omitempty"`
}

// IsZero reports whether no reference is set.
func (r Reference) IsZero() bool { return r.Type == "" && r.ID == "" }

// LedgerEntry is an immutable record of one inflow or outflow against one account.
type LedgerEntry struct {
	EntryID   string          `json:"entryID"`
	Sequence  int64           `json:"sequence"`
	AccountID string          `json:"accountID"`
	Kind      EntryKind       `json:"kind"`
	Amount    decimal.Decimal `json:"amount"`
	Concept   string          `json:"concept"`
	Reference Reference       `json:"reference"`
	CreatedAt time.Time       `json:"createdAt"`
	CreatedBy string          `json:"createdBy"`
	Checksum  string          `json:"checksum"`
}

// Signed returns the amount with outflows negated.
func (e LedgerEntry) Signed() decimal.Decimal {
	if e.Kind == Outflow {
		return e.Amount.Neg()
	}
	return e.Amount
}

// EntrySums aggregates entries of one account.
type EntrySums struct {
	Inflows  decimal.Decimal `json:"inflows"`
	Outflows decimal.Decimal `json:"outflows"`
	Count    int64           `json:"count"`
}

// Net is inflows minus outflows.
func (s EntrySums) Net() decimal.Decimal {
	return s.Inflows.Sub(s.Outflows)
}

// Add folds one entry into the sums.
func (s EntrySums) Add(e LedgerEntry) EntrySums {
	if e.Kind == Inflow {
		s.Inflows = s.Inflows.Add(e.Amount)
	} else {
		s.Outflows = s.Outflows.Add(e.Amount)
	}
	s.Count++
	return s
}

// EntryPage is one page of entries plus an opaque token for the next page.
type EntryPage struct {
	Entries   []LedgerEntry
	NextToken *string
}
