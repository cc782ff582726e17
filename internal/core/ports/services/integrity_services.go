package services

import (
	"context"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
)

// IntegritySvcFacade recomputes derived values from the ledger and reports drift.
type IntegritySvcFacade interface {
	ReconcileAccount(ctx context.Context, accountID string) (*domain.AccountReconciliation, error)
	ReconcileAll(ctx context.Context) ([]domain.AccountReconciliation, error)
	// ResyncAccount overwrites the stored balance with the computed one.
	ResyncAccount(ctx context.Context, accountID string, actor string) (*domain.AccountReconciliation, error)
	ReconcileCounterpartyDebt(ctx context.Context, counterpartyID string) (*domain.CounterpartyReconciliation, error)
	ResyncCounterparty(ctx context.Context, counterpartyID string, actor string) (*domain.CounterpartyReconciliation, error)
	VerifyLedgerChain(ctx context.Context, accountID string) (*domain.ChainVerification, error)
	ValidateStock(ctx context.Context, productID string, requestedQty int64) (*domain.StockCheck, error)
}
