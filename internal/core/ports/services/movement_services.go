package services

import (
	"context"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
)

// MovementSvcFacade moves money between or into/out of accounts.
type MovementSvcFacade interface {
	Transfer(ctx context.Context, input domain.TransferInput) (*domain.Transfer, error)
	RecordExpense(ctx context.Context, input domain.MovementInput) (*domain.Movement, error)
	RecordIncome(ctx context.Context, input domain.MovementInput) (*domain.Movement, error)
}
