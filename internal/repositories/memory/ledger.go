package memory

import (
	"context"
	"fmt"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/SscSPs/vault_ledger/internal/utils/accounting"
	"github.com/SscSPs/vault_ledger/internal/utils/pagination"
)

func (s *Store) AppendEntries(_ context.Context, entries []domain.LedgerEntry) ([]domain.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.EntryID == "" {
			return nil, fmt.Errorf("%w: entry id is required", apperrors.ErrValidation)
		}
		if _, dup := s.entryAccount[e.EntryID]; dup {
			return nil, fmt.Errorf("%w: entry %s already exists", apperrors.ErrDuplicate, e.EntryID)
		}
		if _, dup := seen[e.EntryID]; dup {
			return nil, fmt.Errorf("%w: entry %s repeated in batch", apperrors.ErrDuplicate, e.EntryID)
		}
		seen[e.EntryID] = struct{}{}
		if err := s.checkDeltaLocked(e.AccountID, e.Kind, e.Amount); err != nil {
			return nil, err
		}
	}

	stored := make([]domain.LedgerEntry, 0, len(entries))
	for _, e := range entries {
		s.seq++
		e.Sequence = s.seq
		prev := ""
		if chain := s.entries[e.AccountID]; len(chain) > 0 {
			prev = chain[len(chain)-1].Checksum
		}
		e.Checksum = accounting.EntryChecksum(prev, e)
		s.entries[e.AccountID] = append(s.entries[e.AccountID], e)
		s.entryAccount[e.EntryID] = e.AccountID
		s.applyDeltaLocked(e.AccountID, e.Kind, e.Amount, e.CreatedBy, e.CreatedAt)
		stored = append(stored, e)
	}
	return stored, nil
}

func (s *Store) RevertEntries(_ context.Context, entryIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range entryIDs {
		if _, ok := s.entryAccount[id]; !ok {
			return fmt.Errorf("%w: ledger entry %s", apperrors.ErrNotFound, id)
		}
	}
	drop := make(map[string]struct{}, len(entryIDs))
	for _, id := range entryIDs {
		drop[id] = struct{}{}
	}
	touched := make(map[string]struct{})
	for _, id := range entryIDs {
		touched[s.entryAccount[id]] = struct{}{}
	}
	for accountID := range touched {
		chain := s.entries[accountID]
		kept := chain[:0:0]
		for _, e := range chain {
			if _, ok := drop[e.EntryID]; ok {
				acc := s.accounts[accountID].Revert(e.Kind, e.Amount)
				s.accounts[accountID] = acc
				delete(s.entryAccount, e.EntryID)
				continue
			}
			kept = append(kept, e)
		}
		s.entries[accountID] = kept
	}
	return nil
}

func (s *Store) ListEntriesByAccount(_ context.Context, accountID string, dateRange domain.DateRange, limit int, nextToken *string) (*domain.EntryPage, error) {
	after := int64(0)
	if nextToken != nil && *nextToken != "" {
		seq, err := pagination.DecodeSequenceToken(*nextToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		after = seq
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.accounts[accountID]; !ok {
		return nil, fmt.Errorf("%w %s", apperrors.ErrAccountNotFound, accountID)
	}

	page := &domain.EntryPage{Entries: []domain.LedgerEntry{}}
	for _, e := range s.entries[accountID] {
		if e.Sequence <= after || !dateRange.Contains(e.CreatedAt) {
			continue
		}
		if limit > 0 && len(page.Entries) == limit {
			token := pagination.EncodeSequenceToken(page.Entries[len(page.Entries)-1].Sequence)
			page.NextToken = &token
			break
		}
		page.Entries = append(page.Entries, e)
	}
	return page, nil
}

func (s *Store) WalkEntriesByAccount(ctx context.Context, accountID string, dateRange domain.DateRange, fn func(domain.LedgerEntry) error) error {
	s.mu.RLock()
	if _, ok := s.accounts[accountID]; !ok {
		s.mu.RUnlock()
		return fmt.Errorf("%w %s", apperrors.ErrAccountNotFound, accountID)
	}
	// iterate over a snapshot so fn may call back into the store
	chain := append([]domain.LedgerEntry(nil), s.entries[accountID]...)
	s.mu.RUnlock()

	for _, e := range chain {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !dateRange.Contains(e.CreatedAt) {
			continue
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) SumByAccount(ctx context.Context, accountID string, dateRange domain.DateRange) (domain.EntrySums, error) {
	sums := domain.EntrySums{}
	err := s.WalkEntriesByAccount(ctx, accountID, dateRange, func(e domain.LedgerEntry) error {
		sums = sums.Add(e)
		return nil
	})
	return sums, err
}

func (s *Store) FindEntriesByReference(_ context.Context, ref domain.Reference) ([]domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.LedgerEntry
	for _, chain := range s.entries {
		for _, e := range chain {
			if e.Reference == ref {
				out = append(out, e)
			}
		}
	}
	sortBySequence(out)
	return out, nil
}
