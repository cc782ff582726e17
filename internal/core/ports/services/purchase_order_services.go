package services

import (
	"context"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
)

type PurchaseOrderSvcFacade interface {
	CreatePurchaseOrder(ctx context.Context, input domain.CreatePurchaseOrderInput) (*domain.PurchaseOrder, error)
	GetPurchaseOrder(ctx context.Context, purchaseOrderID string) (*domain.PurchaseOrder, error)
	// PayCounterpartyDebt pays a distributor from one account.
	PayCounterpartyDebt(ctx context.Context, input domain.PayDebtInput) (*domain.DebtPayment, error)
}
