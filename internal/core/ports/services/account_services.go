package services

import (
	"context"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
)

// AccountReaderSvc defines read operations for accounts and their entries.
type AccountReaderSvc interface {
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	ListEntries(ctx context.Context, accountID string, dateRange domain.DateRange, limit int, nextToken *string) (*domain.EntryPage, error)
	// SummarizeAccount sums an account's entries inside dateRange.
	SummarizeAccount(ctx context.Context, accountID string, dateRange domain.DateRange) (domain.EntrySums, error)
}

// AccountBootstrapSvc creates the fixed account set.
type AccountBootstrapSvc interface {
	// Bootstrap creates any missing seed account and leaves existing ones untouched.
	Bootstrap(ctx context.Context, seeds []domain.AccountSeed) ([]domain.Account, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountBootstrapSvc
}
