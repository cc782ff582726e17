package memory_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/SscSPs/vault_ledger/internal/repositories/memory"
	"github.com/SscSPs/vault_ledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type StoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *memory.Store
}

func (suite *StoreTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = memory.NewStore()
	for _, id := range []string{"vault-main", "profit"} {
		suite.Require().NoError(suite.store.SaveAccount(suite.ctx, domain.Account{AccountID: id, Name: id, CurrencyCode: "USD"}))
	}
	suite.Require().NoError(suite.store.SaveStockItem(suite.ctx, domain.StockItem{ProductID: "widget", OnHand: 10}))
}

func TestStore(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func entry(id, account string, kind domain.EntryKind, amount string) domain.LedgerEntry {
	return domain.LedgerEntry{
		EntryID:   id,
		AccountID: account,
		Kind:      kind,
		Amount:    decimal.RequireFromString(amount),
		Concept:   "test",
		CreatedAt: domain.Now(),
		CreatedBy: "tester",
	}
}

func (suite *StoreTestSuite) TestAppendEntries_AppliesDeltas() {
	stored, err := suite.store.AppendEntries(suite.ctx, []domain.LedgerEntry{
		entry("e1", "vault-main", domain.Inflow, "100"),
		entry("e2", "vault-main", domain.Outflow, "30"),
		entry("e3", "profit", domain.Inflow, "5"),
	})
	suite.Require().NoError(err)
	suite.Len(stored, 3)
	suite.Equal(int64(1), stored[0].Sequence)
	suite.Equal(int64(3), stored[2].Sequence)
	suite.NotEmpty(stored[1].Checksum)

	acc, err := suite.store.FindAccountByID(suite.ctx, "vault-main")
	suite.Require().NoError(err)
	suite.True(acc.Balance.Equal(decimal.NewFromInt(70)))
	suite.True(acc.LifetimeInflows.Equal(decimal.NewFromInt(100)))
	suite.True(acc.LifetimeOutflows.Equal(decimal.NewFromInt(30)))
	suite.True(acc.InvariantHolds())

	var chain []domain.LedgerEntry
	suite.Require().NoError(suite.store.WalkEntriesByAccount(suite.ctx, "vault-main", domain.DateRange{}, func(e domain.LedgerEntry) error {
		chain = append(chain, e)
		return nil
	}))
	suite.Empty(accounting.VerifyChain(chain))
}

func (suite *StoreTestSuite) TestAppendEntries_AllOrNothing() {
	_, err := suite.store.AppendEntries(suite.ctx, []domain.LedgerEntry{
		entry("e1", "vault-main", domain.Inflow, "100"),
		entry("e2", "missing", domain.Inflow, "1"),
	})
	suite.ErrorIs(err, apperrors.ErrAccountNotFound)

	_, err = suite.store.AppendEntries(suite.ctx, []domain.LedgerEntry{
		entry("e3", "vault-main", domain.Inflow, "0"),
	})
	suite.ErrorIs(err, apperrors.ErrNegativeAmount)

	acc, err := suite.store.FindAccountByID(suite.ctx, "vault-main")
	suite.Require().NoError(err)
	suite.True(acc.Balance.IsZero())
	sums, err := suite.store.SumByAccount(suite.ctx, "vault-main", domain.DateRange{})
	suite.Require().NoError(err)
	suite.Equal(int64(0), sums.Count)
}

func (suite *StoreTestSuite) TestRevertEntries() {
	_, err := suite.store.AppendEntries(suite.ctx, []domain.LedgerEntry{entry("keep", "vault-main", domain.Inflow, "50")})
	suite.Require().NoError(err)
	_, err = suite.store.AppendEntries(suite.ctx, []domain.LedgerEntry{
		entry("r1", "vault-main", domain.Outflow, "20"),
		entry("r2", "profit", domain.Inflow, "20"),
	})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.store.RevertEntries(suite.ctx, []string{"r1", "r2"}))

	main, _ := suite.store.FindAccountByID(suite.ctx, "vault-main")
	profit, _ := suite.store.FindAccountByID(suite.ctx, "profit")
	suite.True(main.Balance.Equal(decimal.NewFromInt(50)))
	suite.True(main.LifetimeOutflows.IsZero())
	suite.True(profit.Balance.IsZero())
	suite.True(profit.LifetimeInflows.IsZero())

	refs, err := suite.store.FindEntriesByReference(suite.ctx, domain.Reference{})
	suite.Require().NoError(err)
	suite.Len(refs, 1)

	suite.ErrorIs(suite.store.RevertEntries(suite.ctx, []string{"r1"}), apperrors.ErrNotFound)
}

func (suite *StoreTestSuite) TestListEntriesByAccount_Pages() {
	for i := 0; i < 5; i++ {
		_, err := suite.store.AppendEntries(suite.ctx, []domain.LedgerEntry{entry(fmt.Sprintf("e%d", i), "vault-main", domain.Inflow, "1")})
		suite.Require().NoError(err)
	}
	page, err := suite.store.ListEntriesByAccount(suite.ctx, "vault-main", domain.DateRange{}, 2, nil)
	suite.Require().NoError(err)
	suite.Len(page.Entries, 2)
	suite.Require().NotNil(page.NextToken)

	var ids []string
	for page != nil {
		for _, e := range page.Entries {
			ids = append(ids, e.EntryID)
		}
		if page.NextToken == nil {
			break
		}
		page, err = suite.store.ListEntriesByAccount(suite.ctx, "vault-main", domain.DateRange{}, 2, page.NextToken)
		suite.Require().NoError(err)
	}
	suite.Equal([]string{"e0", "e1", "e2", "e3", "e4"}, ids)

	future := domain.DateRange{From: time.Now().Add(time.Hour)}
	page, err = suite.store.ListEntriesByAccount(suite.ctx, "vault-main", future, 10, nil)
	suite.Require().NoError(err)
	suite.Empty(page.Entries)

	bad := "%%%"
	_, err = suite.store.ListEntriesByAccount(suite.ctx, "vault-main", domain.DateRange{}, 2, &bad)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *StoreTestSuite) TestStockLifecycle() {
	item, err := suite.store.ReserveStock(suite.ctx, "widget", 4)
	suite.Require().NoError(err)
	suite.Equal(int64(4), item.Reserved)

	_, err = suite.store.ReserveStock(suite.ctx, "widget", 7)
	suite.ErrorIs(err, apperrors.ErrInsufficientStock)

	item, err = suite.store.CommitStock(suite.ctx, "widget", 3)
	suite.Require().NoError(err)
	suite.Equal(int64(7), item.OnHand)
	suite.Equal(int64(1), item.Reserved)

	item, err = suite.store.ReleaseStock(suite.ctx, "widget", 1)
	suite.Require().NoError(err)
	suite.Equal(int64(0), item.Reserved)

	_, err = suite.store.ReleaseStock(suite.ctx, "widget", 1)
	suite.ErrorIs(err, apperrors.ErrValidation)

	item, err = suite.store.RestockItem(suite.ctx, "widget", 3)
	suite.Require().NoError(err)
	suite.Equal(int64(10), item.OnHand)
}

func (suite *StoreTestSuite) TestCounterpartyNameIsUniquePerKind() {
	suite.Require().NoError(suite.store.SaveCounterparty(suite.ctx, domain.Counterparty{CounterpartyID: "c1", Kind: domain.Client, Name: "Acme  Corp"}))
	err := suite.store.SaveCounterparty(suite.ctx, domain.Counterparty{CounterpartyID: "c2", Kind: domain.Client, Name: "acme corp"})
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.NoError(suite.store.SaveCounterparty(suite.ctx, domain.Counterparty{CounterpartyID: "d1", Kind: domain.Distributor, Name: "Acme Corp"}))

	found, err := suite.store.FindCounterpartyByName(suite.ctx, domain.Client, " ACME corp ")
	suite.Require().NoError(err)
	suite.Equal("c1", found.CounterpartyID)
}

func (suite *StoreTestSuite) TestDeleteCounterparty_OnlyWhenUnused() {
	suite.Require().NoError(suite.store.SaveCounterparty(suite.ctx, domain.Counterparty{CounterpartyID: "c1", Kind: domain.Client, Name: "Acme"}))
	suite.Require().NoError(suite.store.SaveCounterparty(suite.ctx, domain.Counterparty{CounterpartyID: "c2", Kind: domain.Client, Name: "Globex"}))
	_, err := suite.store.AdjustCounterpartyTotals(suite.ctx, "c2", decimal.NewFromInt(10), decimal.Zero, "tester")
	suite.Require().NoError(err)

	suite.ErrorIs(suite.store.DeleteCounterparty(suite.ctx, "c2"), apperrors.ErrConcurrencyConflict)
	suite.Require().NoError(suite.store.DeleteCounterparty(suite.ctx, "c1"))
	suite.ErrorIs(suite.store.DeleteCounterparty(suite.ctx, "c1"), apperrors.ErrNotFound)

	_, err = suite.store.FindCounterpartyByName(suite.ctx, domain.Client, "acme")
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.NoError(suite.store.SaveCounterparty(suite.ctx, domain.Counterparty{CounterpartyID: "c3", Kind: domain.Client, Name: "Acme"}))
}

func TestReserveStock_NeverOversells(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.SaveStockItem(ctx, domain.StockItem{ProductID: "p", OnHand: 25}))

	var wg sync.WaitGroup
	var ok, short int64
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.ReserveStock(ctx, "p", 1); err == nil {
				atomic.AddInt64(&ok, 1)
			} else if assert.ErrorIs(t, err, apperrors.ErrInsufficientStock) {
				atomic.AddInt64(&short, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(25), ok)
	assert.Equal(t, int64(75), short)
}
