package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/vault_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
	"github.com/SscSPs/vault_ledger/internal/core/services"
	"github.com/SscSPs/vault_ledger/internal/platform/config"
	"github.com/SscSPs/vault_ledger/internal/platform/events"
	"github.com/SscSPs/vault_ledger/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// faults makes a wrapped repository method fail on its n-th call.
type faults struct {
	mu    sync.Mutex
	rules map[string]faultRule
	calls map[string]int
}

type faultRule struct {
	onCall int
	err    error
	before func()
}

func newFaults() *faults {
	return &faults{rules: map[string]faultRule{}, calls: map[string]int{}}
}

func (f *faults) failOn(method string, call int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[method] = faultRule{onCall: call, err: err}
	f.calls[method] = 0
}

// interleave runs fn just before the n-th call of method reaches the store.
func (f *faults) interleave(method string, call int, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[method] = faultRule{onCall: call, before: fn}
	f.calls[method] = 0
}

func (f *faults) hit(method string) error {
	f.mu.Lock()
	f.calls[method]++
	r, ok := f.rules[method]
	fire := ok && f.calls[method] == r.onCall
	f.mu.Unlock()
	if !fire {
		return nil
	}
	if r.before != nil {
		r.before()
	}
	return r.err
}

type faultyAccounts struct {
	portsrepo.AccountRepositoryFacade
	f *faults
}

func (w faultyAccounts) FindAccountsByIDs(ctx context.Context, ids []string) (map[string]domain.Account, error) {
	if err := w.f.hit("FindAccountsByIDs"); err != nil {
		return nil, err
	}
	return w.AccountRepositoryFacade.FindAccountsByIDs(ctx, ids)
}

type faultyLedger struct {
	portsrepo.LedgerRepositoryFacade
	f *faults
}

func (w faultyLedger) AppendEntries(ctx context.Context, entries []domain.LedgerEntry) ([]domain.LedgerEntry, error) {
	if err := w.f.hit("AppendEntries"); err != nil {
		return nil, err
	}
	return w.LedgerRepositoryFacade.AppendEntries(ctx, entries)
}

type faultyCounterparties struct {
	portsrepo.CounterpartyRepositoryFacade
	f *faults
}

func (w faultyCounterparties) AdjustCounterpartyTotals(ctx context.Context, id string, billed, paid decimal.Decimal, actor string) (*domain.Counterparty, error) {
	if err := w.f.hit("AdjustCounterpartyTotals"); err != nil {
		return nil, err
	}
	return w.CounterpartyRepositoryFacade.AdjustCounterpartyTotals(ctx, id, billed, paid, actor)
}

type faultySales struct {
	portsrepo.SaleRepositoryFacade
	f *faults
}

func (w faultySales) SaveSale(ctx context.Context, sale domain.Sale) error {
	if err := w.f.hit("SaveSale"); err != nil {
		return err
	}
	return w.SaleRepositoryFacade.SaveSale(ctx, sale)
}

func (w faultySales) ListSalesByClient(ctx context.Context, clientID string) ([]domain.Sale, error) {
	if err := w.f.hit("ListSalesByClient"); err != nil {
		return nil, err
	}
	return w.SaleRepositoryFacade.ListSalesByClient(ctx, clientID)
}

func (w faultySales) UpdateSale(ctx context.Context, sale domain.Sale) error {
	if err := w.f.hit("UpdateSale"); err != nil {
		return err
	}
	return w.SaleRepositoryFacade.UpdateSale(ctx, sale)
}

type faultyStock struct {
	portsrepo.StockRepositoryFacade
	f *faults
}

func (w faultyStock) CommitStock(ctx context.Context, productID string, qty int64) (*domain.StockItem, error) {
	if err := w.f.hit("CommitStock"); err != nil {
		return nil, err
	}
	return w.StockRepositoryFacade.CommitStock(ctx, productID, qty)
}

func (w faultyStock) RestockItem(ctx context.Context, productID string, qty int64) (*domain.StockItem, error) {
	if err := w.f.hit("RestockItem"); err != nil {
		return nil, err
	}
	return w.StockRepositoryFacade.RestockItem(ctx, productID, qty)
}

type faultyOrders struct {
	portsrepo.PurchaseOrderRepositoryFacade
	f *faults
}

func (w faultyOrders) UpdatePurchaseOrder(ctx context.Context, order domain.PurchaseOrder) error {
	if err := w.f.hit("UpdatePurchaseOrder"); err != nil {
		return err
	}
	return w.PurchaseOrderRepositoryFacade.UpdatePurchaseOrder(ctx, order)
}

// harness is a fully wired ledger on the in-memory store.
type harness struct {
	ctx    context.Context
	store  *memory.Store
	repos  portsrepo.RepositoryProvider
	faults *faults
	events *events.Recorder
	svc    *portssvc.ServiceContainer
}

var errInjected = errors.New("injected failure")

const (
	widget      = "widget"
	widgetStock = 100
)

func testConfig(policy domain.RoundingPolicy) *config.Config {
	return &config.Config{
		DefaultCurrency:      "USD",
		RoundingPolicy:       policy,
		MarginWarningPercent: decimal.NewFromInt(10),
		DistributionAccounts: domain.DistributionAccounts{
			Cost:    domain.AccountVaultMain,
			Freight: domain.AccountFreight,
			Profit:  domain.AccountProfit,
		},
		LockWait: 5 * time.Second,
		LockTTL:  30 * time.Second,
		NodeID:   1,
	}
}

func newHarness(t *testing.T, policy domain.RoundingPolicy) *harness {
	t.Helper()
	store := memory.NewStore()
	base := memory.NewRepositoryProvider(store)
	f := newFaults()
	repos := portsrepo.RepositoryProvider{
		AccountRepo:       faultyAccounts{base.AccountRepo, f},
		LedgerRepo:        faultyLedger{base.LedgerRepo, f},
		SaleRepo:          faultySales{base.SaleRepo, f},
		PurchaseOrderRepo: faultyOrders{base.PurchaseOrderRepo, f},
		CounterpartyRepo:  faultyCounterparties{base.CounterpartyRepo, f},
		StockRepo:         faultyStock{base.StockRepo, f},
	}
	recorder := events.NewRecorder()
	svc, err := services.NewServiceContainer(testConfig(policy), repos, services.WithEventPublisher(recorder))
	require.NoError(t, err)

	h := &harness{ctx: context.Background(), store: store, repos: repos, faults: f, events: recorder, svc: svc}
	_, err = svc.Account.Bootstrap(h.ctx, domain.DefaultAccountSeeds("USD"))
	require.NoError(t, err)
	_, err = svc.Stock.CreateStockItem(h.ctx, domain.StockItem{ProductID: widget, Name: "Widget", OnHand: widgetStock, MinThreshold: 5}, "test")
	require.NoError(t, err)
	return h
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (h *harness) balance(t *testing.T, accountID string) decimal.Decimal {
	t.Helper()
	acc, err := h.svc.Account.GetAccount(h.ctx, accountID)
	require.NoError(t, err)
	return acc.Balance
}

func (h *harness) balances(t *testing.T) map[string]string {
	t.Helper()
	accounts, err := h.svc.Account.ListAccounts(h.ctx)
	require.NoError(t, err)
	out := make(map[string]string, len(accounts))
	for _, a := range accounts {
		require.True(t, a.InvariantHolds(), "invariant broken on %s", a.AccountID)
		out[a.AccountID] = a.Balance.String() + "/" + a.LifetimeInflows.String() + "/" + a.LifetimeOutflows.String()
	}
	return out
}

func (h *harness) stock(t *testing.T) domain.StockItem {
	t.Helper()
	item, err := h.svc.Stock.GetStockItem(h.ctx, widget)
	require.NoError(t, err)
	return *item
}

func (h *harness) fund(t *testing.T, accountID, amount string) {
	t.Helper()
	_, err := h.svc.Movement.RecordIncome(h.ctx, domain.MovementInput{AccountID: accountID, Amount: dec(amount), Concept: "opening", Actor: "test"})
	require.NoError(t, err)
}

func (h *harness) requireNoDrift(t *testing.T) {
	t.Helper()
	results, err := h.svc.Integrity.ReconcileAll(h.ctx)
	require.NoError(t, err)
	for _, r := range results {
		require.False(t, r.HasDrift(), "drift on %s: %s", r.AccountID, r.Issue)
	}
}

func saleInput(client string, qty int64, sale, cost, freight, paid string) domain.CreateSaleInput {
	return domain.CreateSaleInput{
		ClientName:       client,
		ProductID:        widget,
		Quantity:         qty,
		UnitSalePrice:    dec(sale),
		UnitCostPrice:    dec(cost),
		UnitFreightPrice: dec(freight),
		InitialPayment:   dec(paid),
		Actor:            "clerk",
	}
}
