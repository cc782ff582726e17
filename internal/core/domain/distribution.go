package domain

import "github.com/shopspring/decimal"

// Distribution is the three-way split of a sale's proceeds.
type Distribution struct {
	Cost    decimal.Decimal `json:"cost"`
	Freight decimal.Decimal `json:"freight"`
	Profit  decimal.Decimal `json:"profit"`
	Total   decimal.Decimal `json:"total"`
}

// Parts returns cost, freight and profit in that order.
func (d Distribution) Parts() [3]decimal.Decimal {
	return [3]decimal.Decimal{d.Cost, d.Freight, d.Profit}
}

// Sum is cost + freight + profit.
func (d Distribution) Sum() decimal.Decimal {
	return d.Cost.Add(d.Freight).Add(d.Profit)
}

// Sub returns d minus o component-wise.
func (d Distribution) Sub(o Distribution) Distribution {
	return Distribution{
		Cost:    d.Cost.Sub(o.Cost),
		Freight: d.Freight.Sub(o.Freight),
		Profit:  d.Profit.Sub(o.Profit),
		Total:   d.Total.Sub(o.Total),
	}
}

// Add returns d plus o component-wise.
func (d Distribution) Add(o Distribution) Distribution {
	return Distribution{
		Cost:    d.Cost.Add(o.Cost),
		Freight: d.Freight.Add(o.Freight),
		Profit:  d.Profit.Add(o.Profit),
		Total:   d.Total.Add(o.Total),
	}
}

// SaleDistribution is a full sale split plus informational margins.
type SaleDistribution struct {
	Distribution
	GrossMarginPct decimal.Decimal `json:"grossMarginPct"`
	NetMarginPct   decimal.Decimal `json:"netMarginPct"`
}

// ScaledDistribution is a distribution scaled to a paid fraction. Drift is
// Total minus the sum of the parts after rounding.
type ScaledDistribution struct {
	Distribution
	Drift decimal.Decimal `json:"drift"`
}

// RoundingPolicy selects how scaled components are rounded.
type RoundingPolicy string

const (
	// RoundIndependent rounds each component on its own; parts may not sum to the total.
	RoundIndependent RoundingPolicy = "independent"
	// RoundLargestRemainder rounds the total and allocates it across parts exactly.
	RoundLargestRemainder RoundingPolicy = "largest_remainder"
)

// MarginCheck is the outcome of validating a unit price against its costs.
type MarginCheck struct {
	Valid     bool            `json:"valid"`
	MarginPct decimal.Decimal `json:"marginPct"`
	Reason    string          `json:"reason,omitempty"`
	Warning   string          `json:"warning,omitempty"`
}

// Margin check reasons and warnings.
const (
	MarginReasonLoss     = "loss"
	MarginReasonNoMargin = "no_margin"
	MarginWarningLow     = "low_margin"
)

// DistributionAccounts names where each component of a sale lands.
type DistributionAccounts struct {
	Cost    string
	Freight string
	Profit  string
}

// IDs returns the three account ids in cost, freight, profit order.
func (a DistributionAccounts) IDs() [3]string {
	return [3]string{a.Cost, a.Freight, a.Profit}
}
