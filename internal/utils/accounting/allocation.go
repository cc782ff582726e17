package accounting

import (
	"fmt"
	"sort"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Allocate splits amount across weights in proportion, rounded to places,
// using the largest remainder method: every share is first rounded down and
// the leftover units go to the shares with the largest fractional remainder
// (ties to the lower index). The shares always sum to amount.
func Allocate(amount decimal.Decimal, weights []decimal.Decimal, places int32) ([]decimal.Decimal, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: cannot allocate negative amount %s", apperrors.ErrValidation, amount)
	}
	if !amount.Equal(amount.Round(places)) {
		return nil, fmt.Errorf("%w: amount %s has more than %d decimal places", apperrors.ErrValidation, amount, places)
	}
	shares := make([]decimal.Decimal, len(weights))
	sum := decimal.Zero
	for i, w := range weights {
		if w.IsNegative() {
			return nil, fmt.Errorf("%w: negative allocation weight %s", apperrors.ErrValidation, w)
		}
		sum = sum.Add(w)
		shares[i] = decimal.Zero
	}
	if amount.IsZero() {
		return shares, nil
	}
	if sum.IsZero() {
		return nil, fmt.Errorf("%w: cannot allocate %s across zero weights", apperrors.ErrValidation, amount)
	}

	type remainder struct {
		idx  int
		frac decimal.Decimal
	}
	rems := make([]remainder, len(weights))
	allocated := decimal.Zero
	for i, w := range weights {
		raw := amount.Mul(w).DivRound(sum, places+8)
		floor := raw.RoundFloor(places)
		shares[i] = floor
		allocated = allocated.Add(floor)
		rems[i] = remainder{idx: i, frac: raw.Sub(floor)}
	}

	unit := decimal.New(1, -places)
	left := amount.Sub(allocated).Div(unit).IntPart()
	sort.SliceStable(rems, func(a, b int) bool {
		return rems[a].frac.GreaterThan(rems[b].frac)
	})
	for i := int64(0); i < left; i++ {
		idx := rems[int(i)%len(rems)].idx
		shares[idx] = shares[idx].Add(unit)
	}
	return shares, nil
}
