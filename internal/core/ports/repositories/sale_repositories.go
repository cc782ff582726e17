package repositories

import (
	"context"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
)

type SaleReader interface {
	FindSaleByID(ctx context.Context, saleID string) (*domain.Sale, error)
	ListSalesByClient(ctx context.Context, clientID string) ([]domain.Sale, error)
}

type SaleWriter interface {
	SaveSale(ctx context.Context, sale domain.Sale) error
	UpdateSale(ctx context.Context, sale domain.Sale) error
	DeleteSale(ctx context.Context, saleID string) error
}

type SaleRepositoryFacade interface {
	SaleReader
	SaleWriter
}
