package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

func (s *Store) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w %s", apperrors.ErrAccountNotFound, accountID)
	}
	return &acc, nil
}

func (s *Store) FindAccountsByIDs(_ context.Context, accountIDs []string) (map[string]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if acc, ok := s.accounts[id]; ok {
			out[id] = acc
		}
	}
	return out, nil
}

func (s *Store) ListAccounts(_ context.Context) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		out = append(out, acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out, nil
}

func (s *Store) SaveAccount(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[account.AccountID]; exists {
		return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, account.AccountID)
	}
	s.accounts[account.AccountID] = account
	return nil
}

func (s *Store) ApplyDelta(_ context.Context, accountID string, kind domain.EntryKind, amount decimal.Decimal, actor string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkDeltaLocked(accountID, kind, amount); err != nil {
		return nil, err
	}
	acc := s.applyDeltaLocked(accountID, kind, amount, actor, domain.Now())
	return &acc, nil
}

func (s *Store) OverwriteTotals(_ context.Context, accountID string, inflows, outflows decimal.Decimal, actor string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w %s", apperrors.ErrAccountNotFound, accountID)
	}
	acc.LifetimeInflows = inflows
	acc.LifetimeOutflows = outflows
	acc.Balance = inflows.Sub(outflows)
	acc.LastUpdatedAt = domain.Now()
	acc.LastUpdatedBy = actor
	s.accounts[accountID] = acc
	return &acc, nil
}

func (s *Store) checkDeltaLocked(accountID string, kind domain.EntryKind, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w (account %s, amount %s)", apperrors.ErrNegativeAmount, accountID, amount)
	}
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown entry kind %q", apperrors.ErrValidation, kind)
	}
	if _, ok := s.accounts[accountID]; !ok {
		return fmt.Errorf("%w %s", apperrors.ErrAccountNotFound, accountID)
	}
	return nil
}

func (s *Store) applyDeltaLocked(accountID string, kind domain.EntryKind, amount decimal.Decimal, actor string, at time.Time) domain.Account {
	acc := s.accounts[accountID].Apply(kind, amount)
	acc.LastUpdatedAt = at
	acc.LastUpdatedBy = actor
	s.accounts[accountID] = acc
	return acc
}
