package services_test

import (
	"testing"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCounterparty_DeduplicatesByName(t *testing.T) {
	h := newHarness(t, domain.RoundLargestRemainder)

	first, err := h.svc.Counterparty.CreateCounterparty(h.ctx, domain.Client, "  Jane   Doe ", "clerk")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", first.Name)

	again, err := h.svc.Counterparty.CreateCounterparty(h.ctx, domain.Client, "jane doe", "clerk")
	require.NoError(t, err)
	assert.Equal(t, first.CounterpartyID, again.CounterpartyID)

	// the same name as a distributor is a different counterparty
	supplier, err := h.svc.Counterparty.CreateCounterparty(h.ctx, domain.Distributor, "Jane Doe", "clerk")
	require.NoError(t, err)
	assert.NotEqual(t, first.CounterpartyID, supplier.CounterpartyID)

	clients, err := h.svc.Counterparty.ListCounterparties(h.ctx, domain.Client)
	require.NoError(t, err)
	assert.Len(t, clients, 1)

	all, err := h.svc.Counterparty.ListCounterparties(h.ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCreateCounterparty_Validation(t *testing.T) {
	h := newHarness(t, domain.RoundLargestRemainder)

	_, err := h.svc.Counterparty.CreateCounterparty(h.ctx, "supplier", "Acme", "clerk")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = h.svc.Counterparty.CreateCounterparty(h.ctx, domain.Client, "   ", "clerk")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = h.svc.Counterparty.GetCounterparty(h.ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestBootstrap_IsIdempotent(t *testing.T) {
	h := newHarness(t, domain.RoundLargestRemainder)
	h.fund(t, domain.AccountBank, "40")

	accounts, err := h.svc.Account.Bootstrap(h.ctx, domain.DefaultAccountSeeds("USD"))
	require.NoError(t, err)
	assert.Len(t, accounts, 7)
	assert.True(t, h.balance(t, domain.AccountBank).Equal(dec("40")))

	_, err = h.svc.Account.Bootstrap(h.ctx, []domain.AccountSeed{{AccountID: "extra", Name: "Extra", CurrencyCode: "XXX1"}})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestListEntries_Paginates(t *testing.T) {
	h := newHarness(t, domain.RoundLargestRemainder)
	for _, amount := range []string{"1", "2", "3"} {
		h.fund(t, domain.AccountBank, amount)
	}

	page, err := h.svc.Account.ListEntries(h.ctx, domain.AccountBank, domain.DateRange{}, 2, nil)
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	require.NotNil(t, page.NextToken)
	assert.Less(t, page.Entries[0].Sequence, page.Entries[1].Sequence)

	rest, err := h.svc.Account.ListEntries(h.ctx, domain.AccountBank, domain.DateRange{}, 2, page.NextToken)
	require.NoError(t, err)
	require.Len(t, rest.Entries, 1)
	assert.True(t, rest.Entries[0].Amount.Equal(dec("3")))
	assert.Nil(t, rest.NextToken)

	bad := "not-a-token"
	_, err = h.svc.Account.ListEntries(h.ctx, domain.AccountBank, domain.DateRange{}, 2, &bad)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = h.svc.Account.ListEntries(h.ctx, "nowhere", domain.DateRange{}, 2, nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSummarizeAccount_RejectsInvertedRange(t *testing.T) {
	h := newHarness(t, domain.RoundLargestRemainder)
	now := domain.Now()
	_, err := h.svc.Account.SummarizeAccount(h.ctx, domain.AccountBank, domain.DateRange{From: now, To: now.Add(-1)})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
