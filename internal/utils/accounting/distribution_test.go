package accounting_test

import (
	"testing"
	"time"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/SscSPs/vault_ledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, d(want).Equal(got), append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func TestComputeSaleDistribution(t *testing.T) {
	tests := []struct {
		name                              string
		sale, cost, freight               string
		qty                               int64
		wantCost, wantFreight, wantProfit string
		wantTotal, wantGross, wantNet     string
	}{
		{"reference sale", "10000", "6300", "500", 10, "63000", "5000", "32000", "100000", "37", "32"},
		{"small units", "100", "60", "10", 10, "600", "100", "300", "1000", "40", "30"},
		{"fractional prices", "19.99", "12.50", "1.25", 3, "37.50", "3.75", "18.72", "59.97", "37.47", "31.22"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := accounting.ComputeSaleDistribution(d(tt.sale), d(tt.cost), d(tt.freight), tt.qty)
			assertDecimal(t, tt.wantCost, got.Cost)
			assertDecimal(t, tt.wantFreight, got.Freight)
			assertDecimal(t, tt.wantProfit, got.Profit)
			assertDecimal(t, tt.wantTotal, got.Total)
			assertDecimal(t, tt.wantGross, got.GrossMarginPct)
			assertDecimal(t, tt.wantNet, got.NetMarginPct)
			assert.True(t, got.Sum().Equal(got.Total), "parts must sum to total")
		})
	}
}

func TestComputeProportionalDistribution_HalfPaid(t *testing.T) {
	full := accounting.ComputeSaleDistribution(d("100"), d("60"), d("10"), 10).Distribution

	for _, policy := range []domain.RoundingPolicy{domain.RoundIndependent, domain.RoundLargestRemainder} {
		t.Run(string(policy), func(t *testing.T) {
			got, err := accounting.ComputeProportionalDistribution(full, d("0.5"), 2, policy)
			require.NoError(t, err)
			assertDecimal(t, "300", got.Cost)
			assertDecimal(t, "50", got.Freight)
			assertDecimal(t, "150", got.Profit)
			assertDecimal(t, "500", got.Total)
			assert.True(t, got.Drift.IsZero())
		})
	}
}

func TestComputeProportionalDistribution_DriftIsReported(t *testing.T) {
	full := domain.Distribution{Cost: d("1"), Freight: d("1"), Profit: d("1"), Total: d("3")}

	independent, err := accounting.ComputeProportionalDistribution(full, d("0.5"), 0, domain.RoundIndependent)
	require.NoError(t, err)
	// each part 0.5 rounds up to 1, the total 1.5 rounds to 2
	assertDecimal(t, "1", independent.Cost)
	assertDecimal(t, "1", independent.Freight)
	assertDecimal(t, "1", independent.Profit)
	assertDecimal(t, "2", independent.Total)
	assertDecimal(t, "-1", independent.Drift)

	lr, err := accounting.ComputeProportionalDistribution(full, d("0.5"), 0, domain.RoundLargestRemainder)
	require.NoError(t, err)
	assertDecimal(t, "1", lr.Cost)
	assertDecimal(t, "1", lr.Freight)
	assertDecimal(t, "0", lr.Profit)
	assertDecimal(t, "2", lr.Total)
	assert.True(t, lr.Drift.IsZero())
}

func TestComputeProportionalDistribution_RejectsFractionOutOfRange(t *testing.T) {
	full := domain.Distribution{Cost: d("1"), Freight: d("1"), Profit: d("1"), Total: d("3")}
	_, err := accounting.ComputeProportionalDistribution(full, d("1.01"), 2, domain.RoundIndependent)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = accounting.ComputeProportionalDistribution(full, d("-0.1"), 2, domain.RoundIndependent)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestIncrementalDistribution_ConservesAcrossPayments(t *testing.T) {
	full := accounting.ComputeSaleDistribution(d("100"), d("60"), d("10"), 10).Distribution
	payments := []string{"333.33", "0.01", "333.32", "333.34"}

	for _, policy := range []domain.RoundingPolicy{domain.RoundIndependent, domain.RoundLargestRemainder} {
		t.Run(string(policy), func(t *testing.T) {
			distributed := domain.Distribution{Cost: decimal.Zero, Freight: decimal.Zero, Profit: decimal.Zero, Total: decimal.Zero}
			paid := decimal.Zero
			for _, p := range payments {
				paid = paid.Add(d(p))
				inc, err := accounting.IncrementalDistribution(full, distributed, paid, 2, policy)
				require.NoError(t, err)
				for _, part := range inc.Parts() {
					assert.False(t, part.IsNegative(), "increment parts never negative")
				}
				assertDecimal(t, p, inc.Total)
				if policy == domain.RoundLargestRemainder {
					assert.True(t, inc.Sum().Equal(inc.Total), "largest remainder parts sum to the payment")
				}
				distributed = distributed.Add(inc.Distribution)
			}
			assert.True(t, distributed.Cost.Equal(full.Cost))
			assert.True(t, distributed.Freight.Equal(full.Freight))
			assert.True(t, distributed.Profit.Equal(full.Profit))
			assert.True(t, distributed.Total.Equal(full.Total))
		})
	}
}

func TestIncrementalDistribution_IndependentDriftVisible(t *testing.T) {
	full := domain.Distribution{Cost: d("1"), Freight: d("1"), Profit: d("1"), Total: d("3")}
	zero := domain.Distribution{Cost: decimal.Zero, Freight: decimal.Zero, Profit: decimal.Zero, Total: decimal.Zero}

	inc, err := accounting.IncrementalDistribution(full, zero, d("1"), 0, domain.RoundIndependent)
	require.NoError(t, err)
	assert.True(t, inc.Sum().IsZero())
	assertDecimal(t, "1", inc.Drift)

	inc, err = accounting.IncrementalDistribution(full, zero, d("1"), 0, domain.RoundLargestRemainder)
	require.NoError(t, err)
	assertDecimal(t, "1", inc.Cost)
	assert.True(t, inc.Drift.IsZero())
}

func TestValidateMargin(t *testing.T) {
	tests := []struct {
		name                string
		sale, cost, freight string
		wantValid           bool
		wantReason          string
		wantWarning         string
		wantMargin          string
	}{
		{"loss", "1000", "1500", "100", false, domain.MarginReasonLoss, "", "-60"},
		{"break even", "1100", "1000", "100", false, domain.MarginReasonNoMargin, "", "0"},
		{"low margin", "100", "85", "10", true, "", domain.MarginWarningLow, "5"},
		{"healthy", "100", "60", "10", true, "", "", "30"},
		{"zero price", "0", "0", "0", false, domain.MarginReasonLoss, "", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := accounting.ValidateMargin(d(tt.sale), d(tt.cost), d(tt.freight), d("10"))
			assert.Equal(t, tt.wantValid, got.Valid)
			assert.Equal(t, tt.wantReason, got.Reason)
			assert.Equal(t, tt.wantWarning, got.Warning)
			assertDecimal(t, tt.wantMargin, got.MarginPct)
		})
	}
}

func TestAllocate(t *testing.T) {
	got, err := accounting.Allocate(d("100"), []decimal.Decimal{d("1"), d("1"), d("1")}, 2)
	require.NoError(t, err)
	assertDecimal(t, "33.34", got[0])
	assertDecimal(t, "33.33", got[1])
	assertDecimal(t, "33.33", got[2])

	got, err = accounting.Allocate(d("10"), []decimal.Decimal{d("0"), d("3"), d("7")}, 0)
	require.NoError(t, err)
	assertDecimal(t, "0", got[0])
	assertDecimal(t, "3", got[1])
	assertDecimal(t, "7", got[2])

	got, err = accounting.Allocate(d("0"), []decimal.Decimal{d("0"), d("0")}, 2)
	require.NoError(t, err)
	assert.True(t, got[0].IsZero() && got[1].IsZero())

	_, err = accounting.Allocate(d("-1"), []decimal.Decimal{d("1")}, 2)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = accounting.Allocate(d("1"), []decimal.Decimal{d("0"), d("0")}, 2)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = accounting.Allocate(d("1.005"), []decimal.Decimal{d("1")}, 2)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestEntryChecksumChain(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	entries := []domain.LedgerEntry{
		{EntryID: "1", AccountID: "profit", Kind: domain.Inflow, Amount: d("150"), Concept: "sale", CreatedAt: at},
		{EntryID: "2", AccountID: "profit", Kind: domain.Outflow, Amount: d("20.5"), Concept: "expense", CreatedAt: at.Add(time.Minute)},
		{EntryID: "3", AccountID: "profit", Kind: domain.Inflow, Amount: d("1"), Concept: "income", CreatedAt: at.Add(2 * time.Minute)},
	}
	prev := ""
	for i := range entries {
		entries[i].Checksum = accounting.EntryChecksum(prev, entries[i])
		prev = entries[i].Checksum
	}
	assert.Empty(t, accounting.VerifyChain(entries))

	// trailing zeros do not change the canonical amount
	entries[0].Amount = d("150.00")
	assert.Empty(t, accounting.VerifyChain(entries))

	entries[1].Amount = d("2.05")
	assert.Equal(t, "2", accounting.VerifyChain(entries))
}
