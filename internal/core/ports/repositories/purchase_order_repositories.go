package repositories

import (
	"context"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
)

type PurchaseOrderReader interface {
	FindPurchaseOrderByID(ctx context.Context, purchaseOrderID string) (*domain.PurchaseOrder, error)
	// ListPurchaseOrdersByDistributor returns orders oldest first.
	ListPurchaseOrdersByDistributor(ctx context.Context, distributorID string) ([]domain.PurchaseOrder, error)
}

type PurchaseOrderWriter interface {
	SavePurchaseOrder(ctx context.Context, order domain.PurchaseOrder) error
	UpdatePurchaseOrder(ctx context.Context, order domain.PurchaseOrder) error
	DeletePurchaseOrder(ctx context.Context, purchaseOrderID string) error
}

type PurchaseOrderRepositoryFacade interface {
	PurchaseOrderReader
	PurchaseOrderWriter
}
