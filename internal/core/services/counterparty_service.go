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
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type counterpartyService struct {
	BaseService
	repo portsrepo.CounterpartyRepositoryFacade
}

// NewCounterpartyService creates the client and distributor directory.
func NewCounterpartyService(repo portsrepo.CounterpartyRepositoryFacade) portssvc.CounterpartySvcFacade {
	return &counterpartyService{repo: repo}
}

var _ portssvc.CounterpartySvcFacade = (*counterpartyService)(nil)

func (s *counterpartyService) CreateCounterparty(ctx context.Context, kind domain.CounterpartyKind, name string, actor string) (*domain.Counterparty, error) {
	if !kind.Valid() {
		return nil, apperrors.New("CreateCounterparty", apperrors.ErrValidation, "unknown counterparty kind").With("kind", kind)
	}
	cp, _, err := resolveCounterparty(ctx, &s.BaseService, s.repo, kind, "", name, actorOr(actor))
	return cp, err
}

func (s *counterpartyService) GetCounterparty(ctx context.Context, counterpartyID string) (*domain.Counterparty, error) {
	cp, err := s.repo.FindCounterpartyByID(ctx, counterpartyID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find counterparty", slog.String("counterparty_id", counterpartyID))
		}
		return nil, err
	}
	return cp, nil
}

func (s *counterpartyService) ListCounterparties(ctx context.Context, kind domain.CounterpartyKind) ([]domain.Counterparty, error) {
	if kind != "" && !kind.Valid() {
		return nil, apperrors.New("ListCounterparties", apperrors.ErrValidation, "unknown counterparty kind").With("kind", kind)
	}
	list, err := s.repo.ListCounterparties(ctx, kind)
	if err != nil {
		s.LogError(ctx, err, "Failed to list counterparties")
		return nil, err
	}
	if list == nil {
		return []domain.Counterparty{}, nil
	}
	return list, nil
}

// resolveCounterparty finds a counterparty by id, or by name within kind,
// registering a new one when the name is unknown. created reports whether
// this call stored the record. Concurrent registrations of the same name
// resolve to whichever was stored first.
func resolveCounterparty(ctx context.Context, base *BaseService, repo portsrepo.CounterpartyRepositoryFacade, kind domain.CounterpartyKind, id, name, actor string) (cp *domain.Counterparty, created bool, err error) {
	const op = "ResolveCounterparty"
	if id != "" {
		cp, err := repo.FindCounterpartyByID(ctx, id)
		if err != nil {
			return nil, false, err
		}
		if cp.Kind != kind {
			return nil, false, apperrors.New(op, apperrors.ErrValidation, "counterparty has the wrong kind").
				With("counterparty_id", id).
				With("expected", kind).
				With("actual", cp.Kind)
		}
		return cp, false, nil
	}

	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return nil, false, apperrors.New(op, apperrors.ErrValidation, "a counterparty id or name is required").With("kind", kind)
	}

	cp, err = repo.FindCounterpartyByName(ctx, kind, name)
	if err == nil {
		return cp, false, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, false, err
	}

	now := domain.Now()
	record := domain.Counterparty{
		CounterpartyID: uuid.NewString(),
		Kind:           kind,
		Name:           name,
		TotalBilled:    decimal.Zero,
		TotalPaid:      decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor,
			LastUpdatedAt: now,
			LastUpdatedBy: actor,
		},
	}
	if err := repo.SaveCounterparty(ctx, record); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			cp, err = repo.FindCounterpartyByName(ctx, kind, name)
			return cp, false, err
		}
		base.LogError(ctx, err, "Failed to register counterparty", slog.String("kind", string(kind)))
		return nil, false, err
	}
	base.LogInfo(ctx, "Counterparty registered",
		slog.String("counterparty_id", record.CounterpartyID),
		slog.String("kind", string(kind)))
	return &record, true, nil
}

// forgetCounterparty undoes the registration of a counterparty created by an
// operation that then failed. A record another operation has started using
// in the meantime is kept.
func forgetCounterparty(repo portsrepo.CounterpartyRepositoryFacade, counterpartyID string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		err := repo.DeleteCounterparty(ctx, counterpartyID)
		if errors.Is(err, apperrors.ErrConcurrencyConflict) || errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}
}
