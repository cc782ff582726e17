package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is a row of the append-only ledger_entries table.
type LedgerEntry struct {
	EntryID       string          `db:"entry_id"`
	Sequence      int64           `db:"sequence"`
	AccountID     string          `db:"account_id"`
	Kind          string          `db:"kind"`
	Amount        decimal.Decimal `db:"amount"`
	Concept       string          `db:"concept"`
	ReferenceType string          `db:"reference_type"`
	ReferenceID   string          `db:"reference_id"`
	CreatedAt     time.Time       `db:"created_at"`
	CreatedBy     string          `db:"created_by"`
	Checksum      string          `db:"checksum"`
}
