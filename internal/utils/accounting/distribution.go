package accounting

import (
	"fmt"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeSaleDistribution splits a sale into cost, freight and profit.
// The parts always sum exactly to the total; margins are informational and
// rounded to two decimals.
func ComputeSaleDistribution(salePrice, costPrice, freightPrice decimal.Decimal, quantity int64) domain.SaleDistribution {
	q := decimal.NewFromInt(quantity)
	d := domain.SaleDistribution{
		Distribution: domain.Distribution{
			Cost:    costPrice.Mul(q),
			Freight: freightPrice.Mul(q),
			Profit:  salePrice.Sub(costPrice).Sub(freightPrice).Mul(q),
			Total:   salePrice.Mul(q),
		},
		GrossMarginPct: decimal.Zero,
		NetMarginPct:   decimal.Zero,
	}
	if salePrice.IsPositive() {
		d.GrossMarginPct = salePrice.Sub(costPrice).Div(salePrice).Mul(hundred).Round(2)
		d.NetMarginPct = salePrice.Sub(costPrice).Sub(freightPrice).Div(salePrice).Mul(hundred).Round(2)
	}
	return d
}

// ComputeProportionalDistribution scales each part of d by paidFraction.
//
// With RoundIndependent every part and the total are rounded half-up on their
// own and the difference is reported as Drift. With RoundLargestRemainder the
// total is rounded and then allocated across the parts, so Drift is zero.
func ComputeProportionalDistribution(d domain.Distribution, paidFraction decimal.Decimal, places int32, policy domain.RoundingPolicy) (domain.ScaledDistribution, error) {
	if paidFraction.IsNegative() || paidFraction.GreaterThan(decimal.NewFromInt(1)) {
		return domain.ScaledDistribution{}, fmt.Errorf("%w: paid fraction %s outside [0,1]", apperrors.ErrValidation, paidFraction)
	}
	total := d.Total.Mul(paidFraction).Round(places)
	return scale(d, paidFraction, total, places, policy)
}

// DistributionForPaid is ComputeProportionalDistribution for an absolute paid
// amount; the scaled total is exactly paid.
func DistributionForPaid(d domain.Distribution, paid decimal.Decimal, places int32, policy domain.RoundingPolicy) (domain.ScaledDistribution, error) {
	if paid.IsNegative() || paid.GreaterThan(d.Total) {
		return domain.ScaledDistribution{}, fmt.Errorf("%w: paid amount %s outside [0,%s]", apperrors.ErrValidation, paid, d.Total)
	}
	if d.Total.IsZero() {
		return domain.ScaledDistribution{Distribution: zeroDistribution(), Drift: decimal.Zero}, nil
	}
	return scale(d, paid.Div(d.Total), paid.Round(places), places, policy)
}

func scale(d domain.Distribution, fraction, total decimal.Decimal, places int32, policy domain.RoundingPolicy) (domain.ScaledDistribution, error) {
	var out domain.Distribution
	switch policy {
	case domain.RoundIndependent:
		out = domain.Distribution{
			Cost:    d.Cost.Mul(fraction).Round(places),
			Freight: d.Freight.Mul(fraction).Round(places),
			Profit:  d.Profit.Mul(fraction).Round(places),
			Total:   total,
		}
	case domain.RoundLargestRemainder, "":
		parts := d.Parts()
		alloc, err := Allocate(total, parts[:], places)
		if err != nil {
			return domain.ScaledDistribution{}, err
		}
		out = domain.Distribution{Cost: alloc[0], Freight: alloc[1], Profit: alloc[2], Total: total}
	default:
		return domain.ScaledDistribution{}, fmt.Errorf("%w: unknown rounding policy %q", apperrors.ErrValidation, policy)
	}
	return domain.ScaledDistribution{Distribution: out, Drift: out.Total.Sub(out.Sum())}, nil
}

// IncrementalDistribution returns the parts to write to the ledger when a
// sale's paid amount moves to newPaid, given what is already distributed.
//
// RoundIndependent follows the proportional formula: the increment is the
// scaled distribution at newPaid minus the distributed amounts; it is never
// negative because half-up rounding is monotonic. RoundLargestRemainder
// allocates the payment across the amounts still undistributed, so every
// increment is non-negative and the parts sum exactly to the payment.
func IncrementalDistribution(full, distributed domain.Distribution, newPaid decimal.Decimal, places int32, policy domain.RoundingPolicy) (domain.ScaledDistribution, error) {
	payment := newPaid.Sub(distributed.Total)
	if payment.IsNegative() {
		return domain.ScaledDistribution{}, fmt.Errorf("%w: paid amount cannot decrease", apperrors.ErrValidation)
	}
	switch policy {
	case domain.RoundIndependent:
		target, err := DistributionForPaid(full, newPaid, places, policy)
		if err != nil {
			return domain.ScaledDistribution{}, err
		}
		inc := target.Distribution.Sub(distributed)
		inc.Total = payment
		return domain.ScaledDistribution{Distribution: inc, Drift: inc.Total.Sub(inc.Sum())}, nil
	case domain.RoundLargestRemainder, "":
		if newPaid.GreaterThan(full.Total) {
			return domain.ScaledDistribution{}, fmt.Errorf("%w: paid amount %s exceeds total %s", apperrors.ErrValidation, newPaid, full.Total)
		}
		remaining := full.Sub(distributed).Parts()
		alloc, err := Allocate(payment, remaining[:], places)
		if err != nil {
			return domain.ScaledDistribution{}, err
		}
		inc := domain.Distribution{Cost: alloc[0], Freight: alloc[1], Profit: alloc[2], Total: payment}
		return domain.ScaledDistribution{Distribution: inc, Drift: decimal.Zero}, nil
	default:
		return domain.ScaledDistribution{}, fmt.Errorf("%w: unknown rounding policy %q", apperrors.ErrValidation, policy)
	}
}

// ValidateMargin checks a unit sale price against its unit costs. A price at
// or below cost plus freight is invalid; a margin below warnBelowPct is valid
// with a warning.
func ValidateMargin(salePrice, costPrice, freightPrice, warnBelowPct decimal.Decimal) domain.MarginCheck {
	unitCost := costPrice.Add(freightPrice)
	check := domain.MarginCheck{MarginPct: decimal.Zero}
	if salePrice.IsPositive() {
		check.MarginPct = salePrice.Sub(unitCost).Div(salePrice).Mul(hundred).Round(2)
	}
	switch {
	case salePrice.LessThan(unitCost) || !salePrice.IsPositive():
		check.Reason = domain.MarginReasonLoss
	case salePrice.Equal(unitCost):
		check.Reason = domain.MarginReasonNoMargin
	default:
		check.Valid = true
		if check.MarginPct.LessThan(warnBelowPct) {
			check.Warning = domain.MarginWarningLow
		}
	}
	return check
}

func zeroDistribution() domain.Distribution {
	return domain.Distribution{Cost: decimal.Zero, Freight: decimal.Zero, Profit: decimal.Zero, Total: decimal.Zero}
}
