package repositories

import (
	"context"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for accounts.
type AccountReader interface {
	// FindAccountByID returns apperrors.ErrAccountNotFound when the id is unknown.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}

// AccountWriter defines write operations for accounts.
type AccountWriter interface {
	// SaveAccount inserts a new account; apperrors.ErrDuplicate if it exists.
	SaveAccount(ctx context.Context, account domain.Account) error

	// ApplyDelta is the only balance mutation: balance and the matching
	// lifetime total change together or not at all.
	ApplyDelta(ctx context.Context, accountID string, kind domain.EntryKind, amount decimal.Decimal, actor string) (*domain.Account, error)

	// OverwriteTotals replaces lifetime totals and balance. Used only by resync.
	OverwriteTotals(ctx context.Context, accountID string, inflows, outflows decimal.Decimal, actor string) (*domain.Account, error)
}

// AccountRepositoryFacade combines all account repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
