package pgsql

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/vault_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/vault_ledger/internal/models"
	"github.com/SscSPs/vault_ledger/internal/utils/accounting"
	"github.com/SscSPs/vault_ledger/internal/utils/mapping"
	"github.com/SscSPs/vault_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const entryColumns = `entry_id, sequence, account_id, kind, amount, concept, reference_type, reference_id,
	created_at, created_by, checksum`

type PgxLedgerRepository struct {
	BaseRepository
}

func newPgxLedgerRepository(pool *pgxpool.Pool) *PgxLedgerRepository {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

func distinctAccountIDs(entries []domain.LedgerEntry) []string {
	seen := make(map[string]struct{}, len(entries))
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.AccountID]; !ok {
			seen[e.AccountID] = struct{}{}
			ids = append(ids, e.AccountID)
		}
	}
	sort.Strings(ids)
	return ids
}

// AppendEntries inserts the entries and applies their deltas in one
// transaction. Account rows are locked first so the checksum chain head read
// below cannot move before the new entries are linked to it.
func (r *PgxLedgerRepository) AppendEntries(ctx context.Context, entries []domain.LedgerEntry) ([]domain.LedgerEntry, error) {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.EntryID == "" {
			return nil, fmt.Errorf("%w: entry id is required", apperrors.ErrValidation)
		}
		if _, dup := seen[e.EntryID]; dup {
			return nil, fmt.Errorf("%w: entry %s repeated in batch", apperrors.ErrDuplicate, e.EntryID)
		}
		seen[e.EntryID] = struct{}{}
		if err := checkDelta(e.AccountID, e.Kind, e.Amount); err != nil {
			return nil, err
		}
	}
	if len(entries) == 0 {
		return []domain.LedgerEntry{}, nil
	}

	stored := make([]domain.LedgerEntry, len(entries))
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		ids := distinctAccountIDs(entries)
		if err := lockAccounts(ctx, tx, ids); err != nil {
			return err
		}
		heads, err := chainHeads(ctx, tx, ids)
		if err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for i, e := range entries {
			e.Checksum = accounting.EntryChecksum(heads[e.AccountID], e)
			heads[e.AccountID] = e.Checksum
			stored[i] = e

			m := mapping.ToModelLedgerEntry(e)
			batch.Queue(`
				INSERT INTO ledger_entries (entry_id, account_id, kind, amount, concept, reference_type, reference_id, created_at, created_by, checksum)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
				RETURNING sequence`,
				m.EntryID, m.AccountID, m.Kind, m.Amount, m.Concept, m.ReferenceType, m.ReferenceID, m.CreatedAt, m.CreatedBy, m.Checksum,
			)
			bal, in, out := deltaArgs(e.Kind, e.Amount, false)
			batch.Queue(applyDeltaSQL, e.AccountID, bal, in, out, e.CreatedAt, e.CreatedBy)
		}

		br := tx.SendBatch(ctx, batch)
		defer br.Close()
		for i := range stored {
			if err := br.QueryRow().Scan(&stored[i].Sequence); err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("%w: entry %s already exists", apperrors.ErrDuplicate, stored[i].EntryID)
				}
				return fmt.Errorf("failed to insert ledger entry %s: %w", stored[i].EntryID, err)
			}
			rows, err := br.Query()
			if err != nil {
				return fmt.Errorf("failed to update account %s: %w", stored[i].AccountID, err)
			}
			rows.Close()
			if err := rows.Err(); err != nil {
				if isCheckViolation(err) {
					return fmt.Errorf("%w: account %s balance invariant", apperrors.ErrIntegrityDrift, stored[i].AccountID)
				}
				return fmt.Errorf("failed to update account %s: %w", stored[i].AccountID, err)
			}
		}
		return br.Close()
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// chainHeads returns the checksum of the newest entry of every account in ids.
func chainHeads(ctx context.Context, tx pgx.Tx, ids []string) (map[string]string, error) {
	rows, err := tx.Query(ctx, `
		SELECT DISTINCT ON (account_id) account_id, checksum
		FROM ledger_entries
		WHERE account_id = ANY($1)
		ORDER BY account_id, sequence DESC`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to read checksum chain heads: %w", err)
	}
	defer rows.Close()
	heads := make(map[string]string, len(ids))
	for rows.Next() {
		var id, sum string
		if err := rows.Scan(&id, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan checksum chain head: %w", err)
		}
		heads[id] = sum
	}
	return heads, rows.Err()
}

// RevertEntries deletes the entries and reverses their deltas in one
// transaction. Every id must exist.
func (r *PgxLedgerRepository) RevertEntries(ctx context.Context, entryIDs []string) error {
	if len(entryIDs) == 0 {
		return nil
	}
	return r.withTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT `+entryColumns+` FROM ledger_entries WHERE entry_id = ANY($1) ORDER BY sequence`, entryIDs)
		if err != nil {
			return fmt.Errorf("failed to read entries to revert: %w", err)
		}
		ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.LedgerEntry])
		if err != nil {
			return fmt.Errorf("failed to read entries to revert: %w", err)
		}
		if len(ms) != len(entryIDs) {
			return fmt.Errorf("%w: %d of %d ledger entries to revert", apperrors.ErrNotFound, len(entryIDs)-len(ms), len(entryIDs))
		}
		entries := mapping.ToDomainLedgerEntrySlice(ms)
		if err := lockAccounts(ctx, tx, distinctAccountIDs(entries)); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM ledger_entries WHERE entry_id = ANY($1)`, entryIDs); err != nil {
			return fmt.Errorf("failed to delete ledger entries: %w", err)
		}
		for _, e := range entries {
			if _, err := applyDelta(ctx, tx, e.AccountID, e.Kind, e.Amount, true, e.CreatedBy); err != nil {
				return err
			}
		}
		return nil
	})
}

// entryFilter builds the WHERE clause shared by the account queries.
func entryFilter(accountID string, dateRange domain.DateRange, afterSeq int64) (string, []any) {
	conds := []string{"account_id = $1"}
	args := []any{accountID}
	if afterSeq > 0 {
		args = append(args, afterSeq)
		conds = append(conds, "sequence > $"+strconv.Itoa(len(args)))
	}
	if !dateRange.From.IsZero() {
		args = append(args, dateRange.From)
		conds = append(conds, "created_at >= $"+strconv.Itoa(len(args)))
	}
	if !dateRange.To.IsZero() {
		args = append(args, dateRange.To)
		conds = append(conds, "created_at < $"+strconv.Itoa(len(args)))
	}
	return strings.Join(conds, " AND "), args
}

func (r *PgxLedgerRepository) requireAccount(ctx context.Context, accountID string) error {
	var exists bool
	if err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE account_id = $1)`, accountID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check account %s: %w", accountID, err)
	}
	if !exists {
		return fmt.Errorf("%w %s", apperrors.ErrAccountNotFound, accountID)
	}
	return nil
}

func (r *PgxLedgerRepository) ListEntriesByAccount(ctx context.Context, accountID string, dateRange domain.DateRange, limit int, nextToken *string) (*domain.EntryPage, error) {
	after := int64(0)
	if nextToken != nil && *nextToken != "" {
		seq, err := pagination.DecodeSequenceToken(*nextToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		after = seq
	}
	if err := r.requireAccount(ctx, accountID); err != nil {
		return nil, err
	}

	where, args := entryFilter(accountID, dateRange, after)
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE ` + where + ` ORDER BY sequence`
	if limit > 0 {
		// one extra row tells whether another page exists
		args = append(args, limit+1)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries of account %s: %w", accountID, err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.LedgerEntry])
	if err != nil {
		return nil, fmt.Errorf("failed to read entries of account %s: %w", accountID, err)
	}

	page := &domain.EntryPage{Entries: []domain.LedgerEntry{}}
	if limit > 0 && len(ms) > limit {
		ms = ms[:limit]
		token := pagination.EncodeSequenceToken(ms[len(ms)-1].Sequence)
		page.NextToken = &token
	}
	page.Entries = append(page.Entries, mapping.ToDomainLedgerEntrySlice(ms)...)
	return page, nil
}

func (r *PgxLedgerRepository) WalkEntriesByAccount(ctx context.Context, accountID string, dateRange domain.DateRange, fn func(domain.LedgerEntry) error) error {
	if err := r.requireAccount(ctx, accountID); err != nil {
		return err
	}
	where, args := entryFilter(accountID, dateRange, 0)
	rows, err := r.Pool.Query(ctx, `SELECT `+entryColumns+` FROM ledger_entries WHERE `+where+` ORDER BY sequence`, args...)
	if err != nil {
		return fmt.Errorf("failed to walk entries of account %s: %w", accountID, err)
	}
	defer rows.Close()
	for rows.Next() {
		m, err := pgx.RowToStructByName[models.LedgerEntry](rows)
		if err != nil {
			return fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		if err := fn(mapping.ToDomainLedgerEntry(m)); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *PgxLedgerRepository) SumByAccount(ctx context.Context, accountID string, dateRange domain.DateRange) (domain.EntrySums, error) {
	if err := r.requireAccount(ctx, accountID); err != nil {
		return domain.EntrySums{}, err
	}
	where, args := entryFilter(accountID, dateRange, 0)
	var sums domain.EntrySums
	err := r.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount) FILTER (WHERE kind = 'inflow'), 0),
			COALESCE(SUM(amount) FILTER (WHERE kind = 'outflow'), 0),
			COUNT(*)
		FROM ledger_entries WHERE `+where, args...,
	).Scan(&sums.Inflows, &sums.Outflows, &sums.Count)
	if err != nil {
		return domain.EntrySums{}, fmt.Errorf("failed to sum entries of account %s: %w", accountID, err)
	}
	return sums, nil
}

func (r *PgxLedgerRepository) FindEntriesByReference(ctx context.Context, ref domain.Reference) ([]domain.LedgerEntry, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+entryColumns+` FROM ledger_entries
		WHERE reference_type = $1 AND reference_id = $2
		ORDER BY sequence`, string(ref.Type), ref.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entries for %s %s: %w", ref.Type, ref.ID, err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.LedgerEntry])
	if err != nil {
		return nil, fmt.Errorf("failed to read entries for %s %s: %w", ref.Type, ref.ID, err)
	}
	return mapping.ToDomainLedgerEntrySlice(ms), nil
}
