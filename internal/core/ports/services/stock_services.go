package services

import (
	"context"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
)

type StockSvcFacade interface {
	CreateStockItem(ctx context.Context, item domain.StockItem, actor string) (*domain.StockItem, error)
	GetStockItem(ctx context.Context, productID string) (*domain.StockItem, error)
}
