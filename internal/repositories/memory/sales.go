package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
)

func (s *Store) FindSaleByID(_ context.Context, saleID string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sale, ok := s.sales[saleID]
	if !ok {
		return nil, fmt.Errorf("%w: sale %s", apperrors.ErrNotFound, saleID)
	}
	return &sale, nil
}

func (s *Store) ListSalesByClient(_ context.Context, clientID string) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Sale
	for _, sale := range s.sales {
		if sale.ClientID == clientID {
			out = append(out, sale)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].SaleID < out[j].SaleID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) SaveSale(_ context.Context, sale domain.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sales[sale.SaleID]; exists {
		return fmt.Errorf("%w: sale %s", apperrors.ErrDuplicate, sale.SaleID)
	}
	s.sales[sale.SaleID] = sale
	return nil
}

func (s *Store) UpdateSale(_ context.Context, sale domain.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sales[sale.SaleID]; !exists {
		return fmt.Errorf("%w: sale %s", apperrors.ErrNotFound, sale.SaleID)
	}
	s.sales[sale.SaleID] = sale
	return nil
}

func (s *Store) DeleteSale(_ context.Context, saleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sales, saleID)
	return nil
}

func sortBySequence(entries []domain.LedgerEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Sequence < entries[j].Sequence })
}
