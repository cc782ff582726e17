package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

func nameKey(kind domain.CounterpartyKind, name string) string {
	return string(kind) + "|" + domain.NormalizeName(name)
}

func (s *Store) FindCounterpartyByID(_ context.Context, counterpartyID string) (*domain.Counterparty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.counterparties[counterpartyID]
	if !ok {
		return nil, fmt.Errorf("%w: counterparty %s", apperrors.ErrNotFound, counterpartyID)
	}
	return &c, nil
}

func (s *Store) FindCounterpartyByName(_ context.Context, kind domain.CounterpartyKind, name string) (*domain.Counterparty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.names[nameKey(kind, name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s named %q", apperrors.ErrNotFound, kind, name)
	}
	c := s.counterparties[id]
	return &c, nil
}

func (s *Store) ListCounterparties(_ context.Context, kind domain.CounterpartyKind) ([]domain.Counterparty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Counterparty, 0, len(s.counterparties))
	for _, c := range s.counterparties {
		if kind == "" || c.Kind == kind {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) SaveCounterparty(_ context.Context, c domain.Counterparty) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := nameKey(c.Kind, c.Name)
	if _, exists := s.names[key]; exists {
		return fmt.Errorf("%w: %s named %q", apperrors.ErrDuplicate, c.Kind, c.Name)
	}
	if _, exists := s.counterparties[c.CounterpartyID]; exists {
		return fmt.Errorf("%w: counterparty %s", apperrors.ErrDuplicate, c.CounterpartyID)
	}
	s.counterparties[c.CounterpartyID] = c
	s.names[key] = c.CounterpartyID
	return nil
}

func (s *Store) AdjustCounterpartyTotals(_ context.Context, counterpartyID string, billedDelta, paidDelta decimal.Decimal, actor string) (*domain.Counterparty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counterparties[counterpartyID]
	if !ok {
		return nil, fmt.Errorf("%w: counterparty %s", apperrors.ErrNotFound, counterpartyID)
	}
	c.TotalBilled = c.TotalBilled.Add(billedDelta)
	c.TotalPaid = c.TotalPaid.Add(paidDelta)
	c.LastUpdatedAt = domain.Now()
	c.LastUpdatedBy = actor
	s.counterparties[counterpartyID] = c
	return &c, nil
}

func (s *Store) OverwriteCounterpartyTotals(_ context.Context, counterpartyID string, billed, paid decimal.Decimal, actor string) (*domain.Counterparty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counterparties[counterpartyID]
	if !ok {
		return nil, fmt.Errorf("%w: counterparty %s", apperrors.ErrNotFound, counterpartyID)
	}
	c.TotalBilled = billed
	c.TotalPaid = paid
	c.LastUpdatedAt = domain.Now()
	c.LastUpdatedBy = actor
	s.counterparties[counterpartyID] = c
	return &c, nil
}

func (s *Store) DeleteCounterparty(_ context.Context, counterpartyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counterparties[counterpartyID]
	if !ok {
		return fmt.Errorf("%w: counterparty %s", apperrors.ErrNotFound, counterpartyID)
	}
	inUse := !c.TotalBilled.IsZero() || !c.TotalPaid.IsZero()
	for _, sale := range s.sales {
		inUse = inUse || sale.ClientID == counterpartyID
	}
	for _, order := range s.orders {
		inUse = inUse || order.DistributorID == counterpartyID
	}
	if inUse {
		return fmt.Errorf("%w: counterparty %s is in use", apperrors.ErrConcurrencyConflict, counterpartyID)
	}
	delete(s.counterparties, counterpartyID)
	delete(s.names, nameKey(c.Kind, c.Name))
	return nil
}
