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

const accountColumns = `account_id, name, currency_code, balance, lifetime_inflows, lifetime_outflows,
	created_at, created_by, last_updated_at, last_updated_by`

// applyDeltaSQL moves the balance and one lifetime total in the same statement;
// the table's check constraint rejects any row where they disagree.
const applyDeltaSQL = `
	UPDATE accounts
	SET balance = balance + $2,
		lifetime_inflows = lifetime_inflows + $3,
		lifetime_outflows = lifetime_outflows + $4,
		last_updated_at = $5,
		last_updated_by = $6
	WHERE account_id = $1
	RETURNING ` + accountColumns

type PgxAccountRepository struct {
	BaseRepository
}

func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// deltaArgs returns the balance, inflow and outflow deltas for one entry.
// With revert set the signs are flipped.
func deltaArgs(kind domain.EntryKind, amount decimal.Decimal, revert bool) (balance, inflows, outflows decimal.Decimal) {
	if revert {
		amount = amount.Neg()
	}
	if kind == domain.Inflow {
		return amount, amount, decimal.Zero
	}
	return amount.Neg(), decimal.Zero, amount
}

func checkDelta(accountID string, kind domain.EntryKind, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w (account %s, amount %s)", apperrors.ErrNegativeAmount, accountID, amount)
	}
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown entry kind %q", apperrors.ErrValidation, kind)
	}
	return nil
}

func collectAccount(rows pgx.Rows, accountID string) (*domain.Account, error) {
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w %s", apperrors.ErrAccountNotFound, accountID)
		}
		return nil, fmt.Errorf("failed to read account %s: %w", accountID, err)
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE account_id = $1`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query account %s: %w", accountID, err)
	}
	return collectAccount(rows, accountID)
}

func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return out, nil
	}
	rows, err := r.Pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE account_id = ANY($1)`, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs: %w", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}
	for _, m := range ms {
		out[m.AccountID] = mapping.ToDomainAccount(m)
	}
	return out, nil
}

func (r *PgxAccountRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY account_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}
	return mapping.ToDomainAccountSlice(ms), nil
}

func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		m.AccountID, m.Name, m.CurrencyCode, m.Balance, m.LifetimeInflows, m.LifetimeOutflows,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, m.AccountID)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

func (r *PgxAccountRepository) ApplyDelta(ctx context.Context, accountID string, kind domain.EntryKind, amount decimal.Decimal, actor string) (*domain.Account, error) {
	if err := checkDelta(accountID, kind, amount); err != nil {
		return nil, err
	}
	return applyDelta(ctx, r.Pool, accountID, kind, amount, false, actor)
}

func applyDelta(ctx context.Context, q querier, accountID string, kind domain.EntryKind, amount decimal.Decimal, revert bool, actor string) (*domain.Account, error) {
	bal, in, out := deltaArgs(kind, amount, revert)
	rows, err := q.Query(ctx, applyDeltaSQL, accountID, bal, in, out, domain.Now(), actor)
	if err != nil {
		return nil, fmt.Errorf("failed to update account %s: %w", accountID, err)
	}
	return collectAccount(rows, accountID)
}

func (r *PgxAccountRepository) OverwriteTotals(ctx context.Context, accountID string, inflows, outflows decimal.Decimal, actor string) (*domain.Account, error) {
	rows, err := r.Pool.Query(ctx, `
		UPDATE accounts
		SET lifetime_inflows = $2, lifetime_outflows = $3, balance = $4,
			last_updated_at = $5, last_updated_by = $6
		WHERE account_id = $1
		RETURNING `+accountColumns,
		accountID, inflows, outflows, inflows.Sub(outflows), domain.Now(), actor,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to overwrite totals of account %s: %w", accountID, err)
	}
	return collectAccount(rows, accountID)
}

// lockAccounts takes row locks on ids in sorted order and fails with
// ErrAccountNotFound naming the first missing account.
func lockAccounts(ctx context.Context, tx pgx.Tx, ids []string) error {
	rows, err := tx.Query(ctx, `SELECT account_id FROM accounts WHERE account_id = ANY($1) ORDER BY account_id FOR UPDATE`, ids)
	if err != nil {
		return fmt.Errorf("failed to lock accounts: %w", err)
	}
	locked, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("failed to lock accounts: %w", err)
	}
	found := make(map[string]struct{}, len(locked))
	for _, id := range locked {
		found[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return fmt.Errorf("%w %s", apperrors.ErrAccountNotFound, id)
		}
	}
	return nil
}
