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

// purchaseOrderColumns leaves out seq, which only orders rows.
const purchaseOrderColumns = `purchase_order_id, distributor_id, product_id, quantity, unit_cost, total,
	amount_paid, payment_state, currency_code,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxPurchaseOrderRepository struct {
	BaseRepository
}

func newPgxPurchaseOrderRepository(pool *pgxpool.Pool) *PgxPurchaseOrderRepository {
	return &PgxPurchaseOrderRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PurchaseOrderRepositoryFacade = (*PgxPurchaseOrderRepository)(nil)

func (r *PgxPurchaseOrderRepository) FindPurchaseOrderByID(ctx context.Context, purchaseOrderID string) (*domain.PurchaseOrder, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE purchase_order_id = $1`, purchaseOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase order %s: %w", purchaseOrderID, err)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.PurchaseOrder])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: purchase order %s", apperrors.ErrNotFound, purchaseOrderID)
		}
		return nil, fmt.Errorf("failed to read purchase order %s: %w", purchaseOrderID, err)
	}
	order := mapping.ToDomainPurchaseOrder(m)
	return &order, nil
}

func (r *PgxPurchaseOrderRepository) ListPurchaseOrdersByDistributor(ctx context.Context, distributorID string) ([]domain.PurchaseOrder, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+purchaseOrderColumns+` FROM purchase_orders
		WHERE distributor_id = $1
		ORDER BY seq`, distributorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase orders of %s: %w", distributorID, err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.PurchaseOrder])
	if err != nil {
		return nil, fmt.Errorf("failed to read purchase orders of %s: %w", distributorID, err)
	}
	return mapping.ToDomainPurchaseOrderSlice(ms), nil
}

func (r *PgxPurchaseOrderRepository) SavePurchaseOrder(ctx context.Context, order domain.PurchaseOrder) error {
	m := mapping.ToModelPurchaseOrder(order)
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO purchase_orders (`+purchaseOrderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		m.PurchaseOrderID, m.DistributorID, m.ProductID, m.Quantity, m.UnitCost, m.Total,
		m.AmountPaid, m.PaymentState, m.CurrencyCode,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: purchase order %s", apperrors.ErrDuplicate, m.PurchaseOrderID)
		}
		if isCheckViolation(err) {
			return fmt.Errorf("%w: purchase order %s violates amount constraints", apperrors.ErrValidation, m.PurchaseOrderID)
		}
		return fmt.Errorf("failed to save purchase order %s: %w", m.PurchaseOrderID, err)
	}
	return nil
}

func (r *PgxPurchaseOrderRepository) UpdatePurchaseOrder(ctx context.Context, order domain.PurchaseOrder) error {
	m := mapping.ToModelPurchaseOrder(order)
	tag, err := r.Pool.Exec(ctx, `
		UPDATE purchase_orders
		SET amount_paid = $2, payment_state = $3, last_updated_at = $4, last_updated_by = $5
		WHERE purchase_order_id = $1`,
		m.PurchaseOrderID, m.AmountPaid, m.PaymentState, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("%w: purchase order %s violates amount constraints", apperrors.ErrValidation, m.PurchaseOrderID)
		}
		return fmt.Errorf("failed to update purchase order %s: %w", m.PurchaseOrderID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: purchase order %s", apperrors.ErrNotFound, m.PurchaseOrderID)
	}
	return nil
}

func (r *PgxPurchaseOrderRepository) DeletePurchaseOrder(ctx context.Context, purchaseOrderID string) error {
	if _, err := r.Pool.Exec(ctx, `DELETE FROM purchase_orders WHERE purchase_order_id = $1`, purchaseOrderID); err != nil {
		return fmt.Errorf("failed to delete purchase order %s: %w", purchaseOrderID, err)
	}
	return nil
}
