package repositories

import (
	"context"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
)

// LedgerReader defines read operations on the append-only entry log.
type LedgerReader interface {
	// ListEntriesByAccount pages through an account's entries in insertion order.
	ListEntriesByAccount(ctx context.Context, accountID string, dateRange domain.DateRange, limit int, nextToken *string) (*domain.EntryPage, error)

	// WalkEntriesByAccount streams an account's entries in insertion order.
	// Iteration stops at the first error returned by fn.
	WalkEntriesByAccount(ctx context.Context, accountID string, dateRange domain.DateRange, fn func(domain.LedgerEntry) error) error

	SumByAccount(ctx context.Context, accountID string, dateRange domain.DateRange) (domain.EntrySums, error)
	FindEntriesByReference(ctx context.Context, ref domain.Reference) ([]domain.LedgerEntry, error)
}

// LedgerWriter appends entries. Entries are never updated.
type LedgerWriter interface {
	// AppendEntries stores the entries, assigning sequence and checksum, and
	// applies each entry's delta to its account in the same atomic unit.
	AppendEntries(ctx context.Context, entries []domain.LedgerEntry) ([]domain.LedgerEntry, error)

	// RevertEntries removes entries written by an operation that failed before
	// completing and reverses their deltas, atomically.
	RevertEntries(ctx context.Context, entryIDs []string) error
}

// LedgerRepositoryFacade combines all ledger repository interfaces.
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}
