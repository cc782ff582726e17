package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/vault_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/vault_ledger/internal/models"
	"github.com/SscSPs/vault_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const stockColumns = `product_id, name, on_hand, reserved, min_threshold,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxStockRepository struct {
	BaseRepository
}

func newPgxStockRepository(pool *pgxpool.Pool) *PgxStockRepository {
	return &PgxStockRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.StockRepositoryFacade = (*PgxStockRepository)(nil)

func (r *PgxStockRepository) FindStockItemByID(ctx context.Context, productID string) (*domain.StockItem, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+stockColumns+` FROM stock_items WHERE product_id = $1`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query product %s: %w", productID, err)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.StockItem])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: product %s", apperrors.ErrNotFound, productID)
		}
		return nil, fmt.Errorf("failed to read product %s: %w", productID, err)
	}
	item := mapping.ToDomainStockItem(m)
	return &item, nil
}

func (r *PgxStockRepository) SaveStockItem(ctx context.Context, item domain.StockItem) error {
	m := mapping.ToModelStockItem(item)
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO stock_items (`+stockColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ProductID, m.Name, m.OnHand, m.Reserved, m.MinThreshold,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: product %s", apperrors.ErrDuplicate, m.ProductID)
		}
		if isCheckViolation(err) {
			return fmt.Errorf("%w: product %s has inconsistent quantities", apperrors.ErrValidation, m.ProductID)
		}
		return fmt.Errorf("failed to save product %s: %w", m.ProductID, err)
	}
	return nil
}

// mutateStock runs a guarded single-row UPDATE. When no row matches, the
// product is read back to tell a missing product from a failed guard, and
// rejected builds the error for the latter.
func (r *PgxStockRepository) mutateStock(ctx context.Context, productID string, qty int64, set, guard string, rejected func(domain.StockItem) error) (*domain.StockItem, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", apperrors.ErrValidation)
	}
	rows, err := r.Pool.Query(ctx, `
		UPDATE stock_items SET `+set+`, last_updated_at = $3
		WHERE product_id = $1 AND `+guard+`
		RETURNING `+stockColumns,
		productID, qty, domain.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", productID, err)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.StockItem])
	if err == nil {
		item := mapping.ToDomainStockItem(m)
		return &item, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to update product %s: %w", productID, err)
	}
	current, findErr := r.FindStockItemByID(ctx, productID)
	if findErr != nil {
		return nil, findErr
	}
	return nil, rejected(*current)
}

func (r *PgxStockRepository) ReserveStock(ctx context.Context, productID string, qty int64) (*domain.StockItem, error) {
	return r.mutateStock(ctx, productID, qty, "reserved = reserved + $2", "on_hand - reserved >= $2",
		func(item domain.StockItem) error {
			return fmt.Errorf("%w: product %s has %d available, %d requested", apperrors.ErrInsufficientStock, productID, item.Available(), qty)
		})
}

func (r *PgxStockRepository) ReleaseStock(ctx context.Context, productID string, qty int64) (*domain.StockItem, error) {
	return r.mutateStock(ctx, productID, qty, "reserved = reserved - $2", "reserved >= $2",
		func(item domain.StockItem) error {
			return fmt.Errorf("%w: product %s has %d reserved, cannot release %d", apperrors.ErrValidation, productID, item.Reserved, qty)
		})
}

func (r *PgxStockRepository) CommitStock(ctx context.Context, productID string, qty int64) (*domain.StockItem, error) {
	return r.mutateStock(ctx, productID, qty, "reserved = reserved - $2, on_hand = on_hand - $2", "reserved >= $2",
		func(item domain.StockItem) error {
			return fmt.Errorf("%w: product %s has %d reserved, cannot commit %d", apperrors.ErrValidation, productID, item.Reserved, qty)
		})
}

func (r *PgxStockRepository) RestockItem(ctx context.Context, productID string, qty int64) (*domain.StockItem, error) {
	return r.mutateStock(ctx, productID, qty, "on_hand = on_hand + $2", "TRUE",
		func(domain.StockItem) error {
			return fmt.Errorf("%w: product %s cannot be restocked", apperrors.ErrConcurrencyConflict, productID)
		})
}
