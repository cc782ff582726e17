package memory

import (
	"context"
	"fmt"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
)

func (s *Store) FindStockItemByID(_ context.Context, productID string) (*domain.StockItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.stock[productID]
	if !ok {
		return nil, fmt.Errorf("%w: product %s", apperrors.ErrNotFound, productID)
	}
	return &item, nil
}

func (s *Store) SaveStockItem(_ context.Context, item domain.StockItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.stock[item.ProductID]; exists {
		return fmt.Errorf("%w: product %s", apperrors.ErrDuplicate, item.ProductID)
	}
	s.stock[item.ProductID] = item
	return nil
}

func (s *Store) ReserveStock(_ context.Context, productID string, qty int64) (*domain.StockItem, error) {
	return s.mutateStock(productID, qty, func(item *domain.StockItem) error {
		if item.Available() < qty {
			return fmt.Errorf("%w: product %s has %d available, %d requested", apperrors.ErrInsufficientStock, productID, item.Available(), qty)
		}
		item.Reserved += qty
		return nil
	})
}

func (s *Store) ReleaseStock(_ context.Context, productID string, qty int64) (*domain.StockItem, error) {
	return s.mutateStock(productID, qty, func(item *domain.StockItem) error {
		if item.Reserved < qty {
			return fmt.Errorf("%w: product %s has %d reserved, cannot release %d", apperrors.ErrValidation, productID, item.Reserved, qty)
		}
		item.Reserved -= qty
		return nil
	})
}

func (s *Store) CommitStock(_ context.Context, productID string, qty int64) (*domain.StockItem, error) {
	return s.mutateStock(productID, qty, func(item *domain.StockItem) error {
		if item.Reserved < qty || item.OnHand < qty {
			return fmt.Errorf("%w: product %s has %d reserved, cannot commit %d", apperrors.ErrValidation, productID, item.Reserved, qty)
		}
		item.Reserved -= qty
		item.OnHand -= qty
		return nil
	})
}

func (s *Store) RestockItem(_ context.Context, productID string, qty int64) (*domain.StockItem, error) {
	return s.mutateStock(productID, qty, func(item *domain.StockItem) error {
		item.OnHand += qty
		return nil
	})
}

func (s *Store) mutateStock(productID string, qty int64, fn func(*domain.StockItem) error) (*domain.StockItem, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", apperrors.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.stock[productID]
	if !ok {
		return nil, fmt.Errorf("%w: product %s", apperrors.ErrNotFound, productID)
	}
	if err := fn(&item); err != nil {
		return nil, err
	}
	item.LastUpdatedAt = domain.Now()
	s.stock[productID] = item
	return &item, nil
}
