package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/vault_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
)

type stockService struct {
	BaseService
	repo portsrepo.StockRepositoryFacade
}

// NewStockService creates the product inventory service.
func NewStockService(repo portsrepo.StockRepositoryFacade) portssvc.StockSvcFacade {
	return &stockService{repo: repo}
}

var _ portssvc.StockSvcFacade = (*stockService)(nil)

func (s *stockService) CreateStockItem(ctx context.Context, item domain.StockItem, actor string) (*domain.StockItem, error) {
	const op = "CreateStockItem"
	item.ProductID = strings.TrimSpace(item.ProductID)
	item.Name = strings.TrimSpace(item.Name)
	switch {
	case item.ProductID == "":
		return nil, apperrors.New(op, apperrors.ErrValidation, "product id is required")
	case item.Name == "":
		return nil, apperrors.New(op, apperrors.ErrValidation, "name is required")
	case item.OnHand < 0 || item.MinThreshold < 0:
		return nil, apperrors.New(op, apperrors.ErrValidation, "quantities cannot be negative").
			With("on_hand", item.OnHand).
			With("min_threshold", item.MinThreshold)
	}

	actor = actorOr(actor)
	now := domain.Now()
	item.Reserved = 0
	item.AuditFields = domain.AuditFields{CreatedAt: now, CreatedBy: actor, LastUpdatedAt: now, LastUpdatedBy: actor}
	if err := s.repo.SaveStockItem(ctx, item); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save stock item", slog.String("product_id", item.ProductID))
		}
		return nil, err
	}
	s.LogInfo(ctx, "Stock item created", slog.String("product_id", item.ProductID), slog.Int64("on_hand", item.OnHand))
	return &item, nil
}

func (s *stockService) GetStockItem(ctx context.Context, productID string) (*domain.StockItem, error) {
	item, err := s.repo.FindStockItemByID(ctx, productID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find stock item", slog.String("product_id", productID))
		}
		return nil, err
	}
	return item, nil
}
