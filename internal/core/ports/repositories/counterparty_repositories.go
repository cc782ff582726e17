package repositories

import (
	"context"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

type CounterpartyReader interface {
	FindCounterpartyByID(ctx context.Context, counterpartyID string) (*domain.Counterparty, error)
	// FindCounterpartyByName matches on domain.NormalizeName within a kind.
	FindCounterpartyByName(ctx context.Context, kind domain.CounterpartyKind, name string) (*domain.Counterparty, error)
	ListCounterparties(ctx context.Context, kind domain.CounterpartyKind) ([]domain.Counterparty, error)
}

type CounterpartyWriter interface {
	// SaveCounterparty returns apperrors.ErrDuplicate when the normalized name
	// is already taken for that kind.
	SaveCounterparty(ctx context.Context, counterparty domain.Counterparty) error
	AdjustCounterpartyTotals(ctx context.Context, counterpartyID string, billedDelta, paidDelta decimal.Decimal, actor string) (*domain.Counterparty, error)
	OverwriteCounterpartyTotals(ctx context.Context, counterpartyID string, billed, paid decimal.Decimal, actor string) (*domain.Counterparty, error)
	// DeleteCounterparty removes a counterparty that nothing has billed or
	// referenced yet; otherwise it returns apperrors.ErrConcurrencyConflict.
	DeleteCounterparty(ctx context.Context, counterpartyID string) error
}

type CounterpartyRepositoryFacade interface {
	CounterpartyReader
	CounterpartyWriter
}
