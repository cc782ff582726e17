package repositories

import (
	"context"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
)

type StockReader interface {
	FindStockItemByID(ctx context.Context, productID string) (*domain.StockItem, error)
}

// StockWriter mutates inventory. Every method is atomic per product.
type StockWriter interface {
	SaveStockItem(ctx context.Context, item domain.StockItem) error
	// ReserveStock checks availability and reserves in one step;
	// apperrors.ErrInsufficientStock when on_hand - reserved < qty.
	ReserveStock(ctx context.Context, productID string, qty int64) (*domain.StockItem, error)
	ReleaseStock(ctx context.Context, productID string, qty int64) (*domain.StockItem, error)
	// CommitStock decrements on-hand and the reservation together.
	CommitStock(ctx context.Context, productID string, qty int64) (*domain.StockItem, error)
	RestockItem(ctx context.Context, productID string, qty int64) (*domain.StockItem, error)
}

type StockRepositoryFacade interface {
	StockReader
	StockWriter
}
