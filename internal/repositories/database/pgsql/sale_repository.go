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

const saleColumns = `sale_id, client_id, product_id, quantity, unit_sale_price, unit_cost_price, unit_freight_price,
	total, amount_paid, payment_state, status, currency_code,
	dist_cost, dist_freight, dist_profit, distributed_cost, distributed_freight, distributed_profit,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxSaleRepository struct {
	BaseRepository
}

func newPgxSaleRepository(pool *pgxpool.Pool) *PgxSaleRepository {
	return &PgxSaleRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SaleRepositoryFacade = (*PgxSaleRepository)(nil)

func (r *PgxSaleRepository) FindSaleByID(ctx context.Context, saleID string) (*domain.Sale, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+saleColumns+` FROM sales WHERE sale_id = $1`, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sale %s: %w", saleID, err)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Sale])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: sale %s", apperrors.ErrNotFound, saleID)
		}
		return nil, fmt.Errorf("failed to read sale %s: %w", saleID, err)
	}
	sale := mapping.ToDomainSale(m)
	return &sale, nil
}

func (r *PgxSaleRepository) ListSalesByClient(ctx context.Context, clientID string) ([]domain.Sale, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+saleColumns+` FROM sales
		WHERE client_id = $1
		ORDER BY created_at, sale_id`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales of client %s: %w", clientID, err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Sale])
	if err != nil {
		return nil, fmt.Errorf("failed to read sales of client %s: %w", clientID, err)
	}
	return mapping.ToDomainSaleSlice(ms), nil
}

func (r *PgxSaleRepository) SaveSale(ctx context.Context, sale domain.Sale) error {
	m := mapping.ToModelSale(sale)
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO sales (`+saleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`,
		m.SaleID, m.ClientID, m.ProductID, m.Quantity, m.UnitSalePrice, m.UnitCostPrice, m.UnitFreightPrice,
		m.Total, m.AmountPaid, m.PaymentState, m.Status, m.CurrencyCode,
		m.DistCost, m.DistFreight, m.DistProfit, m.DistributedCost, m.DistributedFreight, m.DistributedProfit,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: sale %s", apperrors.ErrDuplicate, m.SaleID)
		}
		if isCheckViolation(err) {
			return fmt.Errorf("%w: sale %s violates amount constraints", apperrors.ErrValidation, m.SaleID)
		}
		return fmt.Errorf("failed to save sale %s: %w", m.SaleID, err)
	}
	return nil
}

// UpdateSale rewrites the mutable payment and status columns.
func (r *PgxSaleRepository) UpdateSale(ctx context.Context, sale domain.Sale) error {
	m := mapping.ToModelSale(sale)
	tag, err := r.Pool.Exec(ctx, `
		UPDATE sales
		SET amount_paid = $2, payment_state = $3, status = $4,
			distributed_cost = $5, distributed_freight = $6, distributed_profit = $7,
			last_updated_at = $8, last_updated_by = $9
		WHERE sale_id = $1`,
		m.SaleID, m.AmountPaid, m.PaymentState, m.Status,
		m.DistributedCost, m.DistributedFreight, m.DistributedProfit,
		m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("%w: sale %s violates amount constraints", apperrors.ErrValidation, m.SaleID)
		}
		return fmt.Errorf("failed to update sale %s: %w", m.SaleID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: sale %s", apperrors.ErrNotFound, m.SaleID)
	}
	return nil
}

func (r *PgxSaleRepository) DeleteSale(ctx context.Context, saleID string) error {
	if _, err := r.Pool.Exec(ctx, `DELETE FROM sales WHERE sale_id = $1`, saleID); err != nil {
		return fmt.Errorf("failed to delete sale %s: %w", saleID, err)
	}
	return nil
}
