package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/vault_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
	"github.com/SscSPs/vault_ledger/internal/utils"
	"github.com/SscSPs/vault_ledger/internal/utils/pagination"
)

const (
	defaultEntryPageSize = 50
	maxEntryPageSize     = 500
)

type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	ledgerRepo  portsrepo.LedgerReader
}

// NewAccountService creates the account read and bootstrap service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, ledgerRepo portsrepo.LedgerReader) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo, ledgerRepo: ledgerRepo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, err
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

func (s *accountService) ListEntries(ctx context.Context, accountID string, dateRange domain.DateRange, limit int, nextToken *string) (*domain.EntryPage, error) {
	limit = pagination.ClampLimit(limit, defaultEntryPageSize, maxEntryPageSize)
	page, err := s.ledgerRepo.ListEntriesByAccount(ctx, accountID, dateRange, limit, nextToken)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to list ledger entries", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return page, nil
}

func (s *accountService) SummarizeAccount(ctx context.Context, accountID string, dateRange domain.DateRange) (domain.EntrySums, error) {
	if !dateRange.From.IsZero() && !dateRange.To.IsZero() && !dateRange.From.Before(dateRange.To) {
		return domain.EntrySums{}, apperrors.New("SummarizeAccount", apperrors.ErrValidation, "from must be before to")
	}
	if _, err := s.GetAccount(ctx, accountID); err != nil {
		return domain.EntrySums{}, err
	}
	return s.ledgerRepo.SumByAccount(ctx, accountID, dateRange)
}

func (s *accountService) Bootstrap(ctx context.Context, seeds []domain.AccountSeed) ([]domain.Account, error) {
	const op = "Bootstrap"
	out := make([]domain.Account, 0, len(seeds))
	for _, seed := range seeds {
		if seed.AccountID == "" || seed.Name == "" {
			return nil, apperrors.New(op, apperrors.ErrValidation, "seed account needs an id and a name")
		}
		if err := utils.ValidateCurrency(seed.CurrencyCode); err != nil {
			return nil, apperrors.Wrap(op, apperrors.ErrValidation, err, "invalid seed currency").With("account_id", seed.AccountID)
		}

		existing, err := s.accountRepo.FindAccountByID(ctx, seed.AccountID)
		if err == nil {
			out = append(out, *existing)
			continue
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}

		now := domain.Now()
		account := domain.NewAccount(seed, now)
		if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
			if !errors.Is(err, apperrors.ErrDuplicate) {
				s.LogError(ctx, err, "Failed to create seed account", slog.String("account_id", seed.AccountID))
				return nil, err
			}
			// another instance bootstrapped it first
			existing, err := s.accountRepo.FindAccountByID(ctx, seed.AccountID)
			if err != nil {
				return nil, err
			}
			account = *existing
		} else {
			s.LogInfo(ctx, "Seed account created", slog.String("account_id", seed.AccountID))
		}
		out = append(out, account)
	}
	return out, nil
}
