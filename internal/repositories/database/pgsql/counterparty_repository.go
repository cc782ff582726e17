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
	"github.com/shopspring/decimal"
)

const counterpartyColumns = `counterparty_id, kind, name, normalized_name, total_billed, total_paid,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxCounterpartyRepository struct {
	BaseRepository
}

func newPgxCounterpartyRepository(pool *pgxpool.Pool) *PgxCounterpartyRepository {
	return &PgxCounterpartyRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CounterpartyRepositoryFacade = (*PgxCounterpartyRepository)(nil)

func collectCounterparty(rows pgx.Rows, notFound string) (*domain.Counterparty, error) {
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Counterparty])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrNotFound, notFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", notFound, err)
	}
	c := mapping.ToDomainCounterparty(m)
	return &c, nil
}

func (r *PgxCounterpartyRepository) FindCounterpartyByID(ctx context.Context, counterpartyID string) (*domain.Counterparty, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+counterpartyColumns+` FROM counterparties WHERE counterparty_id = $1`, counterpartyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query counterparty %s: %w", counterpartyID, err)
	}
	return collectCounterparty(rows, "counterparty "+counterpartyID)
}

func (r *PgxCounterpartyRepository) FindCounterpartyByName(ctx context.Context, kind domain.CounterpartyKind, name string) (*domain.Counterparty, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+counterpartyColumns+` FROM counterparties
		WHERE kind = $1 AND normalized_name = $2`,
		string(kind), domain.NormalizeName(name))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s named %q: %w", kind, name, err)
	}
	return collectCounterparty(rows, fmt.Sprintf("%s named %q", kind, name))
}

func (r *PgxCounterpartyRepository) ListCounterparties(ctx context.Context, kind domain.CounterpartyKind) ([]domain.Counterparty, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+counterpartyColumns+` FROM counterparties
		WHERE $1::text = '' OR kind = $1::text
		ORDER BY name, counterparty_id`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to list counterparties: %w", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Counterparty])
	if err != nil {
		return nil, fmt.Errorf("failed to read counterparties: %w", err)
	}
	return mapping.ToDomainCounterpartySlice(ms), nil
}

func (r *PgxCounterpartyRepository) SaveCounterparty(ctx context.Context, c domain.Counterparty) error {
	m := mapping.ToModelCounterparty(c)
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO counterparties (`+counterpartyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		m.CounterpartyID, m.Kind, m.Name, m.NormalizedName, m.TotalBilled, m.TotalPaid,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s named %q", apperrors.ErrDuplicate, c.Kind, c.Name)
		}
		return fmt.Errorf("failed to save counterparty %s: %w", m.CounterpartyID, err)
	}
	return nil
}

func (r *PgxCounterpartyRepository) AdjustCounterpartyTotals(ctx context.Context, counterpartyID string, billedDelta, paidDelta decimal.Decimal, actor string) (*domain.Counterparty, error) {
	rows, err := r.Pool.Query(ctx, `
		UPDATE counterparties
		SET total_billed = total_billed + $2, total_paid = total_paid + $3,
			last_updated_at = $4, last_updated_by = $5
		WHERE counterparty_id = $1
		RETURNING `+counterpartyColumns,
		counterpartyID, billedDelta, paidDelta, domain.Now(), actor)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust counterparty %s: %w", counterpartyID, err)
	}
	return collectCounterparty(rows, "counterparty "+counterpartyID)
}

func (r *PgxCounterpartyRepository) OverwriteCounterpartyTotals(ctx context.Context, counterpartyID string, billed, paid decimal.Decimal, actor string) (*domain.Counterparty, error) {
	rows, err := r.Pool.Query(ctx, `
		UPDATE counterparties
		SET total_billed = $2, total_paid = $3,
			last_updated_at = $4, last_updated_by = $5
		WHERE counterparty_id = $1
		RETURNING `+counterpartyColumns,
		counterpartyID, billed, paid, domain.Now(), actor)
	if err != nil {
		return nil, fmt.Errorf("failed to overwrite counterparty %s: %w", counterpartyID, err)
	}
	return collectCounterparty(rows, "counterparty "+counterpartyID)
}

func (r *PgxCounterpartyRepository) DeleteCounterparty(ctx context.Context, counterpartyID string) error {
	tag, err := r.Pool.Exec(ctx, `
		DELETE FROM counterparties
		WHERE counterparty_id = $1 AND total_billed = 0 AND total_paid = 0`,
		counterpartyID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: counterparty %s is referenced", apperrors.ErrConcurrencyConflict, counterpartyID)
		}
		return fmt.Errorf("failed to delete counterparty %s: %w", counterpartyID, err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.FindCounterpartyByID(ctx, counterpartyID); err != nil {
			return err
		}
		return fmt.Errorf("%w: counterparty %s has billed totals", apperrors.ErrConcurrencyConflict, counterpartyID)
	}
	return nil
}
