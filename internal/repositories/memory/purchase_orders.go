package memory

import (
	"context"
	"fmt"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
)

func (s *Store) FindPurchaseOrderByID(_ context.Context, purchaseOrderID string) (*domain.PurchaseOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[purchaseOrderID]
	if !ok {
		return nil, fmt.Errorf("%w: purchase order %s", apperrors.ErrNotFound, purchaseOrderID)
	}
	return &order, nil
}

func (s *Store) ListPurchaseOrdersByDistributor(_ context.Context, distributorID string) ([]domain.PurchaseOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.PurchaseOrder
	for _, id := range s.orderIDs {
		if order, ok := s.orders[id]; ok && order.DistributorID == distributorID {
			out = append(out, order)
		}
	}
	return out, nil
}

func (s *Store) SavePurchaseOrder(_ context.Context, order domain.PurchaseOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orders[order.PurchaseOrderID]; exists {
		return fmt.Errorf("%w: purchase order %s", apperrors.ErrDuplicate, order.PurchaseOrderID)
	}
	s.orders[order.PurchaseOrderID] = order
	s.orderIDs = append(s.orderIDs, order.PurchaseOrderID)
	return nil
}

func (s *Store) UpdatePurchaseOrder(_ context.Context, order domain.PurchaseOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orders[order.PurchaseOrderID]; !exists {
		return fmt.Errorf("%w: purchase order %s", apperrors.ErrNotFound, order.PurchaseOrderID)
	}
	s.orders[order.PurchaseOrderID] = order
	return nil
}

func (s *Store) DeletePurchaseOrder(_ context.Context, purchaseOrderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orders[purchaseOrderID]; !exists {
		return nil
	}
	delete(s.orders, purchaseOrderID)
	for i, id := range s.orderIDs {
		if id == purchaseOrderID {
			s.orderIDs = append(s.orderIDs[:i], s.orderIDs[i+1:]...)
			break
		}
	}
	return nil
}
