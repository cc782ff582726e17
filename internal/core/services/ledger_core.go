package services

import (
	"context"
	"log/slog"
	"sort"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/SscSPs/vault_ledger/internal/core/ports"
	portsrepo "github.com/SscSPs/vault_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/vault_ledger/internal/utils"
	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Settings are the business rules every orchestrated operation follows.
type Settings struct {
	Currency      string
	Rounding      domain.RoundingPolicy
	MarginWarnPct decimal.Decimal
	Accounts      domain.DistributionAccounts
}

// ledgerCore is shared by the services that move money.
type ledgerCore struct {
	BaseService
	repos    portsrepo.RepositoryProvider
	locker   ports.Locker
	events   ports.EventPublisher
	ids      *snowflake.Node
	settings Settings
	places   int32
}

func newLedgerCore(repos portsrepo.RepositoryProvider, locker ports.Locker, events ports.EventPublisher, ids *snowflake.Node, settings Settings) (*ledgerCore, error) {
	places, err := utils.CurrencyPlaces(settings.Currency)
	if err != nil {
		return nil, err
	}
	if settings.Rounding == "" {
		settings.Rounding = domain.RoundLargestRemainder
	}
	return &ledgerCore{
		repos:    repos,
		locker:   locker,
		events:   events,
		ids:      ids,
		settings: settings,
		places:   places,
	}, nil
}

func actorOr(actor string) string {
	if actor == "" {
		return domain.SystemActor
	}
	return actor
}

// checkAmount rejects non-positive amounts and amounts finer than the
// ledger currency allows.
func (c *ledgerCore) checkAmount(op, field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.New(op, apperrors.ErrNegativeAmount, field+" must be greater than zero").With(field, amount)
	}
	return c.checkPlaces(op, field, amount)
}

func (c *ledgerCore) checkPlaces(op, field string, amount decimal.Decimal) error {
	if !utils.HasAtMostPlaces(amount, c.places) {
		return apperrors.New(op, apperrors.ErrValidation, field+" has more decimal places than the currency allows").
			With(field, amount).
			With("currency", c.settings.Currency)
	}
	return nil
}

func (c *ledgerCore) lock(ctx context.Context, op string, keys ...string) (ports.Unlock, error) {
	unlock, err := c.locker.Lock(ctx, keys...)
	if err != nil {
		c.LogWarn(ctx, "Failed to acquire locks", slog.String("op", op), slog.Any("keys", keys), slog.String("error", err.Error()))
		return nil, err
	}
	return unlock, nil
}

func (c *ledgerCore) newEntry(accountID string, kind domain.EntryKind, amount decimal.Decimal, concept string, ref domain.Reference, actor string) domain.LedgerEntry {
	return domain.LedgerEntry{
		EntryID:   c.ids.Generate().String(),
		AccountID: accountID,
		Kind:      kind,
		Amount:    amount,
		Concept:   concept,
		Reference: ref,
		CreatedAt: domain.Now(),
		CreatedBy: actor,
	}
}

// splitEntries builds one entry per non-zero part of d, in cost, freight,
// profit order.
func (c *ledgerCore) splitEntries(d domain.Distribution, kind domain.EntryKind, concept string, ref domain.Reference, actor string) []domain.LedgerEntry {
	ids := c.settings.Accounts.IDs()
	parts := d.Parts()
	entries := make([]domain.LedgerEntry, 0, len(parts))
	for i, amount := range parts {
		if !amount.IsPositive() {
			continue
		}
		entries = append(entries, c.newEntry(ids[i], kind, amount, concept, ref, actor))
	}
	return entries
}

// accounts loads every id or fails with ErrAccountNotFound naming the first
// missing one.
func (c *ledgerCore) accounts(ctx context.Context, op string, ids ...string) (map[string]domain.Account, error) {
	found, err := c.repos.AccountRepo.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return nil, apperrors.New(op, apperrors.ErrAccountNotFound, "account does not exist").With("account_id", id)
		}
	}
	return found, nil
}

// requireFunds fails with ErrInsufficientFunds when the account balance is
// below amount. Callers must hold the account lock.
func requireFunds(op string, account domain.Account, amount decimal.Decimal) error {
	if account.Balance.LessThan(amount) {
		return apperrors.New(op, apperrors.ErrInsufficientFunds, "account balance cannot cover the amount").
			With("account_id", account.AccountID).
			With("balance", account.Balance).
			With("amount", amount)
	}
	return nil
}

// post appends entries as one atomic unit and then re-reads every touched
// account to confirm its balance invariant. It records the LedgerWritten and
// BalancesUpdated stages on sg.
func (c *ledgerCore) post(ctx context.Context, sg *saga, op string, entries []domain.LedgerEntry) ([]domain.LedgerEntry, map[string]domain.Account, error) {
	if len(entries) == 0 {
		sg.Done(string(domain.StageLedgerWritten), nil)
		sg.Done(string(domain.StageBalancesUpdated), nil)
		return []domain.LedgerEntry{}, map[string]domain.Account{}, nil
	}

	written, err := c.repos.LedgerRepo.AppendEntries(ctx, entries)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]string, len(written))
	for i, e := range written {
		ids[i] = e.EntryID
	}
	sg.Done(string(domain.StageLedgerWritten), func(ctx context.Context) error {
		return c.repos.LedgerRepo.RevertEntries(ctx, ids)
	})

	touched, err := c.verifyInvariant(ctx, op, written)
	if err != nil {
		return nil, nil, err
	}
	sg.Done(string(domain.StageBalancesUpdated), nil)
	return written, touched, nil
}

func (c *ledgerCore) verifyInvariant(ctx context.Context, op string, entries []domain.LedgerEntry) (map[string]domain.Account, error) {
	seen := make(map[string]struct{}, len(entries))
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.AccountID]; !ok {
			seen[e.AccountID] = struct{}{}
			ids = append(ids, e.AccountID)
		}
	}
	sort.Strings(ids)
	touched, err := c.accounts(ctx, op, ids...)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		acc := touched[id]
		if !acc.InvariantHolds() {
			return nil, apperrors.Wrap(op, apperrors.ErrIntegrityDrift, &apperrors.IntegrityDriftError{
				Subject:  "account",
				ID:       id,
				Stored:   acc.Balance,
				Computed: acc.LifetimeInflows.Sub(acc.LifetimeOutflows),
			}, "balance invariant violated after posting")
		}
	}
	return touched, nil
}

// publish emits an audit event. It never fails the caller.
func (c *ledgerCore) publish(ctx context.Context, typ domain.EventType, actor string, ref domain.Reference, attrs map[string]string) {
	if c.events == nil {
		return
	}
	c.events.Publish(ctx, domain.Event{
		EventID:    uuid.NewString(),
		Type:       typ,
		OccurredAt: domain.Now(),
		Actor:      actor,
		Reference:  ref,
		Attributes: attrs,
	})
}

func accountKeys(ids ...string) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = ports.AccountKey(id)
	}
	return keys
}
