package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/SscSPs/vault_ledger/internal/core/ports"
	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
	"github.com/SscSPs/vault_ledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	reconcileConcurrency = 4
	// a reconciliation read is retried when a write lands between the two reads
	stableReadAttempts = 3
)

type integrityService struct {
	*ledgerCore
}

var _ portssvc.IntegritySvcFacade = (*integrityService)(nil)

// computeAccount replays an account's entries. The stored account is read
// before and after the replay; if it changed in between the replay is
// repeated so the two sides describe the same ledger position.
func (s *integrityService) computeAccount(ctx context.Context, accountID string) (*domain.AccountReconciliation, error) {
	var lastErr error
	for attempt := 0; attempt < stableReadAttempts; attempt++ {
		before, err := s.repos.AccountRepo.FindAccountByID(ctx, accountID)
		if err != nil {
			return nil, err
		}
		sums := domain.EntrySums{Inflows: decimal.Zero, Outflows: decimal.Zero}
		err = s.repos.LedgerRepo.WalkEntriesByAccount(ctx, accountID, domain.DateRange{}, func(e domain.LedgerEntry) error {
			sums = sums.Add(e)
			return nil
		})
		if err != nil {
			return nil, err
		}
		after, err := s.repos.AccountRepo.FindAccountByID(ctx, accountID)
		if err != nil {
			return nil, err
		}
		if !sameTotals(*before, *after) {
			lastErr = apperrors.New("ReconcileAccount", apperrors.ErrConcurrencyConflict, "account changed while reconciling").With("account_id", accountID)
			continue
		}

		computed := sums.Net()
		r := &domain.AccountReconciliation{
			AccountID:        accountID,
			StoredBalance:    after.Balance,
			ComputedBalance:  computed,
			Drift:            after.Balance.Sub(computed),
			StoredInflows:    after.LifetimeInflows,
			StoredOutflows:   after.LifetimeOutflows,
			ComputedInflows:  sums.Inflows,
			ComputedOutflows: sums.Outflows,
			EntryCount:       sums.Count,
			InvariantHolds:   after.InvariantHolds(),
			CheckedAt:        domain.Now(),
		}
		if r.HasDrift() {
			r.Issue = (&apperrors.IntegrityDriftError{
				Subject:  "account",
				ID:       accountID,
				Stored:   r.StoredBalance,
				Computed: r.ComputedBalance,
			}).Error()
		}
		return r, nil
	}
	return nil, lastErr
}

func sameTotals(a, b domain.Account) bool {
	return a.Balance.Equal(b.Balance) &&
		a.LifetimeInflows.Equal(b.LifetimeInflows) &&
		a.LifetimeOutflows.Equal(b.LifetimeOutflows)
}

func (s *integrityService) ReconcileAccount(ctx context.Context, accountID string) (*domain.AccountReconciliation, error) {
	r, err := s.computeAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if r.HasDrift() {
		s.reportDrift(ctx, r)
	} else {
		s.LogDebug(ctx, "Account reconciled", slog.String("account_id", accountID), slog.Int64("entries", r.EntryCount))
	}
	return r, nil
}

func (s *integrityService) reportDrift(ctx context.Context, r *domain.AccountReconciliation) {
	s.LogWarn(ctx, "Account drift detected",
		slog.String("account_id", r.AccountID),
		slog.String("stored_balance", r.StoredBalance.String()),
		slog.String("computed_balance", r.ComputedBalance.String()),
		slog.String("drift", r.Drift.String()))
	s.publish(ctx, domain.EventDriftDetected, domain.SystemActor, domain.Reference{}, map[string]string{
		"subject":  "account",
		"id":       r.AccountID,
		"stored":   r.StoredBalance.String(),
		"computed": r.ComputedBalance.String(),
		"drift":    r.Drift.String(),
	})
}

func (s *integrityService) ReconcileAll(ctx context.Context) ([]domain.AccountReconciliation, error) {
	accounts, err := s.repos.AccountRepo.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]domain.AccountReconciliation, len(accounts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reconcileConcurrency)
	for i, acc := range accounts {
		g.Go(func() error {
			r, err := s.ReconcileAccount(gctx, acc.AccountID)
			if err != nil {
				return err
			}
			results[i] = *r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.LogError(ctx, err, "Reconciliation run failed")
		return nil, err
	}
	return results, nil
}

func (s *integrityService) ResyncAccount(ctx context.Context, accountID string, actor string) (*domain.AccountReconciliation, error) {
	const op = "ResyncAccount"
	actor = actorOr(actor)

	unlock, err := s.lock(ctx, op, ports.AccountKey(accountID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	r, err := s.computeAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !r.HasDrift() && r.InvariantHolds {
		return r, nil
	}
	if _, err := s.repos.AccountRepo.OverwriteTotals(ctx, accountID, r.ComputedInflows, r.ComputedOutflows, actor); err != nil {
		s.LogError(ctx, err, "Failed to resync account", slog.String("account_id", accountID))
		return nil, err
	}
	s.LogWarn(ctx, "Account resynced from ledger",
		slog.String("account_id", accountID),
		slog.String("previous_balance", r.StoredBalance.String()),
		slog.String("balance", r.ComputedBalance.String()),
		slog.String("actor", actor))
	s.publish(ctx, domain.EventAccountResynced, actor, domain.Reference{}, map[string]string{
		"account_id":       accountID,
		"previous_balance": r.StoredBalance.String(),
		"balance":          r.ComputedBalance.String(),
	})
	return r, nil
}

// computeCounterparty sums a counterparty's sales or purchase orders,
// re-reading the stored totals the same way computeAccount does.
func (s *integrityService) computeCounterparty(ctx context.Context, counterpartyID string) (*domain.CounterpartyReconciliation, error) {
	var lastErr error
	for attempt := 0; attempt < stableReadAttempts; attempt++ {
		before, err := s.repos.CounterpartyRepo.FindCounterpartyByID(ctx, counterpartyID)
		if err != nil {
			return nil, err
		}
		billed, paid, err := s.documentTotals(ctx, *before)
		if err != nil {
			return nil, err
		}
		after, err := s.repos.CounterpartyRepo.FindCounterpartyByID(ctx, counterpartyID)
		if err != nil {
			return nil, err
		}
		if !before.TotalBilled.Equal(after.TotalBilled) || !before.TotalPaid.Equal(after.TotalPaid) {
			lastErr = apperrors.New("ReconcileCounterpartyDebt", apperrors.ErrConcurrencyConflict, "counterparty changed while reconciling").With("counterparty_id", counterpartyID)
			continue
		}

		r := &domain.CounterpartyReconciliation{
			CounterpartyID: counterpartyID,
			StoredBilled:   after.TotalBilled,
			StoredPaid:     after.TotalPaid,
			ComputedBilled: billed,
			ComputedPaid:   paid,
			StoredDebt:     after.TotalOwed(),
			ComputedDebt:   billed.Sub(paid),
			CheckedAt:      domain.Now(),
		}
		r.Drift = r.StoredDebt.Sub(r.ComputedDebt)
		if r.HasDrift() {
			r.Issue = (&apperrors.IntegrityDriftError{
				Subject:  "counterparty",
				ID:       counterpartyID,
				Stored:   r.StoredDebt,
				Computed: r.ComputedDebt,
			}).Error()
		}
		return r, nil
	}
	return nil, lastErr
}

// documentTotals sums what the counterparty's live documents bill and pay.
func (s *integrityService) documentTotals(ctx context.Context, cp domain.Counterparty) (billed, paid decimal.Decimal, err error) {
	billed, paid = decimal.Zero, decimal.Zero
	switch cp.Kind {
	case domain.Client:
		sales, err := s.repos.SaleRepo.ListSalesByClient(ctx, cp.CounterpartyID)
		if err != nil {
			return billed, paid, err
		}
		for _, sale := range sales {
			if sale.Status == domain.SaleCancelled {
				continue
			}
			billed = billed.Add(sale.Total)
			paid = paid.Add(sale.AmountPaid)
		}
	case domain.Distributor:
		orders, err := s.repos.PurchaseOrderRepo.ListPurchaseOrdersByDistributor(ctx, cp.CounterpartyID)
		if err != nil {
			return billed, paid, err
		}
		for _, o := range orders {
			billed = billed.Add(o.Total)
			paid = paid.Add(o.AmountPaid)
		}
	}
	return billed, paid, nil
}

func (s *integrityService) ReconcileCounterpartyDebt(ctx context.Context, counterpartyID string) (*domain.CounterpartyReconciliation, error) {
	r, err := s.computeCounterparty(ctx, counterpartyID)
	if err != nil {
		return nil, err
	}
	if r.HasDrift() {
		s.LogWarn(ctx, "Counterparty drift detected",
			slog.String("counterparty_id", counterpartyID),
			slog.String("stored_debt", r.StoredDebt.String()),
			slog.String("computed_debt", r.ComputedDebt.String()))
		s.publish(ctx, domain.EventDriftDetected, domain.SystemActor, domain.Reference{}, map[string]string{
			"subject":  "counterparty",
			"id":       counterpartyID,
			"stored":   r.StoredDebt.String(),
			"computed": r.ComputedDebt.String(),
			"drift":    r.Drift.String(),
		})
	}
	return r, nil
}

func (s *integrityService) ResyncCounterparty(ctx context.Context, counterpartyID string, actor string) (*domain.CounterpartyReconciliation, error) {
	const op = "ResyncCounterparty"
	actor = actorOr(actor)

	unlock, err := s.lock(ctx, op, ports.CounterpartyKey(counterpartyID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	r, err := s.computeCounterparty(ctx, counterpartyID)
	if err != nil {
		return nil, err
	}
	if !r.HasDrift() {
		return r, nil
	}
	if _, err := s.repos.CounterpartyRepo.OverwriteCounterpartyTotals(ctx, counterpartyID, r.ComputedBilled, r.ComputedPaid, actor); err != nil {
		s.LogError(ctx, err, "Failed to resync counterparty", slog.String("counterparty_id", counterpartyID))
		return nil, err
	}
	s.LogWarn(ctx, "Counterparty resynced",
		slog.String("counterparty_id", counterpartyID),
		slog.String("previous_debt", r.StoredDebt.String()),
		slog.String("debt", r.ComputedDebt.String()))
	s.publish(ctx, domain.EventCounterpartyResynced, actor, domain.Reference{}, map[string]string{
		"counterparty_id": counterpartyID,
		"previous_debt":   r.StoredDebt.String(),
		"debt":            r.ComputedDebt.String(),
	})
	return r, nil
}

func (s *integrityService) VerifyLedgerChain(ctx context.Context, accountID string) (*domain.ChainVerification, error) {
	var entries []domain.LedgerEntry
	err := s.repos.LedgerRepo.WalkEntriesByAccount(ctx, accountID, domain.DateRange{}, func(e domain.LedgerEntry) error {
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	broken := accounting.VerifyChain(entries)
	res := &domain.ChainVerification{
		AccountID:     accountID,
		Entries:       int64(len(entries)),
		Valid:         broken == "",
		BrokenEntryID: broken,
	}
	if !res.Valid {
		s.LogWarn(ctx, "Ledger checksum chain broken", slog.String("account_id", accountID), slog.String("entry_id", broken))
	}
	return res, nil
}

func (s *integrityService) ValidateStock(ctx context.Context, productID string, requestedQty int64) (*domain.StockCheck, error) {
	item, err := s.repos.StockRepo.FindStockItemByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	check := &domain.StockCheck{Valid: true, Available: item.Available()}
	switch {
	case requestedQty <= 0:
		check.Valid = false
		check.Reason = domain.StockReasonInvalidQuantity
	case requestedQty > item.Available():
		check.Valid = false
		check.Reason = domain.StockReasonInsufficient
	}
	return check, nil
}

// RunIntegrityMonitor reconciles every account each interval until ctx is
// done. Drift is reported by ReconcileAccount; nothing is corrected.
func RunIntegrityMonitor(ctx context.Context, svc portssvc.IntegritySvcFacade, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			results, err := svc.ReconcileAll(ctx)
			if err != nil {
				logger.Error("Periodic reconciliation failed", slog.String("error", err.Error()))
				continue
			}
			drifted := 0
			for _, r := range results {
				if r.HasDrift() {
					drifted++
				}
			}
			logger.Info("Periodic reconciliation finished", slog.Int("accounts", len(results)), slog.Int("drifted", drifted))
		}
	}
}
