package domain

import "github.com/shopspring/decimal"

// TransferInput moves money between two accounts.
type TransferInput struct {
	SourceAccountID string
	DestAccountID   string
	Amount          decimal.Decimal
	Concept         string
	Actor           string
}

// Transfer is the result of a completed transfer.
type Transfer struct {
	TransferID string      `json:"transferID"`
	Outflow    LedgerEntry `json:"outflow"`
	Inflow     LedgerEntry `json:"inflow"`
	Source     Account     `json:"source"`
	Dest       Account     `json:"dest"`
}

// MovementInput records a single expense or income against one account.
type MovementInput struct {
	AccountID string
	Amount    decimal.Decimal
	Concept   string
	Actor     string
}

// Movement is the result of a recorded expense or income.
type Movement struct {
	Entry   LedgerEntry `json:"entry"`
	Account Account     `json:"account"`
}
