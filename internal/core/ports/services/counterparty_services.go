package services

import (
	"context"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
)

type CounterpartySvcFacade interface {
	// CreateCounterparty returns the existing counterparty when the name is
	// already registered for that kind.
	CreateCounterparty(ctx context.Context, kind domain.CounterpartyKind, name string, actor string) (*domain.Counterparty, error)
	GetCounterparty(ctx context.Context, counterpartyID string) (*domain.Counterparty, error)
	ListCounterparties(ctx context.Context, kind domain.CounterpartyKind) ([]domain.Counterparty, error)
}
