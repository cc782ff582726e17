package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
	"github.com/google/uuid"
)

type movementService struct {
	*ledgerCore
}

var _ portssvc.MovementSvcFacade = (*movementService)(nil)

func (s *movementService) Transfer(ctx context.Context, in domain.TransferInput) (*domain.Transfer, error) {
	const op = "Transfer"
	actor := actorOr(in.Actor)
	logger := s.GetLogger(ctx).With(slog.String("op", op))

	if in.SourceAccountID == "" || in.DestAccountID == "" {
		return nil, apperrors.New(op, apperrors.ErrValidation, "source and destination accounts are required")
	}
	if in.SourceAccountID == in.DestAccountID {
		return nil, apperrors.New(op, apperrors.ErrSameAccountTransfer, "cannot transfer to the same account").With("account_id", in.SourceAccountID)
	}
	if err := s.checkAmount(op, "amount", in.Amount); err != nil {
		return nil, err
	}

	unlock, err := s.lock(ctx, op, accountKeys(in.SourceAccountID, in.DestAccountID)...)
	if err != nil {
		return nil, err
	}
	defer unlock()

	accounts, err := s.accounts(ctx, op, in.SourceAccountID, in.DestAccountID)
	if err != nil {
		return nil, err
	}
	source, dest := accounts[in.SourceAccountID], accounts[in.DestAccountID]
	if source.CurrencyCode != dest.CurrencyCode {
		return nil, apperrors.New(op, apperrors.ErrValidation, "accounts use different currencies").
			With("source_currency", source.CurrencyCode).
			With("dest_currency", dest.CurrencyCode)
	}
	if err := requireFunds(op, source, in.Amount); err != nil {
		return nil, err
	}

	transferID := uuid.NewString()
	ref := domain.Reference{Type: domain.RefTransfer, ID: transferID}
	concept := conceptOr(in.Concept, "Transfer "+in.SourceAccountID+" -> "+in.DestAccountID)

	sg := newSaga(logger)
	sg.Done(string(domain.StageValidated), nil)
	entries, touched, err := s.post(ctx, sg, op, []domain.LedgerEntry{
		s.newEntry(in.SourceAccountID, domain.Outflow, in.Amount, concept, ref, actor),
		s.newEntry(in.DestAccountID, domain.Inflow, in.Amount, concept, ref, actor),
	})
	if err != nil {
		return nil, sg.Fail(ctx, err)
	}
	sg.Done(string(domain.StageCommitted), nil)

	logger.Info("Transfer completed",
		slog.String("transfer_id", transferID),
		slog.String("source_account_id", in.SourceAccountID),
		slog.String("dest_account_id", in.DestAccountID),
		slog.String("amount", in.Amount.String()))
	s.publish(ctx, domain.EventTransferCompleted, actor, ref, map[string]string{
		"source_account_id": in.SourceAccountID,
		"dest_account_id":   in.DestAccountID,
		"amount":            in.Amount.String(),
	})

	return &domain.Transfer{
		TransferID: transferID,
		Outflow:    entries[0],
		Inflow:     entries[1],
		Source:     touched[in.SourceAccountID],
		Dest:       touched[in.DestAccountID],
	}, nil
}

func (s *movementService) RecordExpense(ctx context.Context, in domain.MovementInput) (*domain.Movement, error) {
	return s.record(ctx, "RecordExpense", domain.Outflow, domain.RefExpense, domain.EventExpenseRecorded, in)
}

func (s *movementService) RecordIncome(ctx context.Context, in domain.MovementInput) (*domain.Movement, error) {
	return s.record(ctx, "RecordIncome", domain.Inflow, domain.RefIncome, domain.EventIncomeRecorded, in)
}

// record writes a single entry against one account.
func (s *movementService) record(ctx context.Context, op string, kind domain.EntryKind, refType domain.ReferenceType, event domain.EventType, in domain.MovementInput) (*domain.Movement, error) {
	actor := actorOr(in.Actor)
	logger := s.GetLogger(ctx).With(slog.String("op", op), slog.String("account_id", in.AccountID))

	if in.AccountID == "" {
		return nil, apperrors.New(op, apperrors.ErrValidation, "account id is required")
	}
	if err := s.checkAmount(op, "amount", in.Amount); err != nil {
		return nil, err
	}

	unlock, err := s.lock(ctx, op, accountKeys(in.AccountID)...)
	if err != nil {
		return nil, err
	}
	defer unlock()

	accounts, err := s.accounts(ctx, op, in.AccountID)
	if err != nil {
		return nil, err
	}
	if kind == domain.Outflow {
		if err := requireFunds(op, accounts[in.AccountID], in.Amount); err != nil {
			return nil, err
		}
	}

	ref := domain.Reference{Type: refType, ID: uuid.NewString()}
	sg := newSaga(logger)
	sg.Done(string(domain.StageValidated), nil)
	entries, touched, err := s.post(ctx, sg, op, []domain.LedgerEntry{
		s.newEntry(in.AccountID, kind, in.Amount, conceptOr(in.Concept, string(refType)), ref, actor),
	})
	if err != nil {
		return nil, sg.Fail(ctx, err)
	}
	sg.Done(string(domain.StageCommitted), nil)

	logger.Info("Movement recorded", slog.String("kind", string(kind)), slog.String("amount", in.Amount.String()))
	s.publish(ctx, event, actor, ref, map[string]string{
		"account_id": in.AccountID,
		"amount":     in.Amount.String(),
	})
	return &domain.Movement{Entry: entries[0], Account: touched[in.AccountID]}, nil
}

func conceptOr(concept, fallback string) string {
	if c := strings.TrimSpace(concept); c != "" {
		return c
	}
	return fallback
}
