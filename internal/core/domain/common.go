package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// SystemActor is recorded when no caller identity is available.
const SystemActor = "system"

// DateRange bounds a query by creation time. Zero values are open ends;
// From is inclusive and To is exclusive.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}

// PaymentState tracks how much of an amount owed has been settled.
type PaymentState string

const (
	PaymentPending  PaymentState = "pending"
	PaymentPartial  PaymentState = "partial"
	PaymentComplete PaymentState = "complete"
)

// PaymentStateFor derives the state for paid against total.
func PaymentStateFor(paid, total decimal.Decimal) PaymentState {
	switch {
	case paid.IsZero():
		return PaymentPending
	case paid.GreaterThanOrEqual(total):
		return PaymentComplete
	default:
		return PaymentPartial
	}
}

func (s PaymentState) rank() int {
	switch s {
	case PaymentPartial:
		return 1
	case PaymentComplete:
		return 2
	default:
		return 0
	}
}

// Advance returns the later of s and next; payment states never regress.
func (s PaymentState) Advance(next PaymentState) PaymentState {
	if next.rank() < s.rank() {
		return s
	}
	return next
}

// Now returns the current UTC time truncated to the precision the store keeps.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
