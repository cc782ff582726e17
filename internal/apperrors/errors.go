package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Common application error kinds. Callers match them with errors.Is.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrValidation          = errors.New("validation error")
	ErrDuplicate           = errors.New("resource already exists")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrOverpayment         = errors.New("payment exceeds outstanding amount")
	ErrSameAccountTransfer = errors.New("source and destination accounts are the same")
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	ErrIntegrityDrift      = errors.New("integrity drift detected")
)

// Narrower kinds that still match their parent kind.
var (
	ErrAccountNotFound = fmt.Errorf("%w: account", ErrNotFound)
	ErrNegativeAmount  = fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
)

// Error is an operation failure with enough context for an operator to
// reconstruct what was attempted.
type Error struct {
	Op      string
	Kind    error
	Message string
	Context map[string]string
	Err     error
}

// New creates an Error of the given kind for operation op.
func New(op string, kind error, message string) *Error {
	return &Error{Op: op, Kind: kind, Message: message}
}

// Wrap creates an Error of the given kind that also carries a cause.
func Wrap(op string, kind error, err error, message string) *Error {
	return &Error{Op: op, Kind: kind, Message: message, Err: err}
}

// With attaches a context field and returns the receiver.
func (e *Error) With(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	switch v := value.(type) {
	case decimal.Decimal:
		e.Context[key] = v.String()
	case fmt.Stringer:
		e.Context[key] = v.String()
	default:
		e.Context[key] = fmt.Sprint(v)
	}
	return e
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" [")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(k)
			b.WriteString("=")
			b.WriteString(e.Context[k])
		}
		b.WriteString("]")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// IntegrityDriftError reports a stored aggregate that disagrees with the
// value recomputed from the ledger.
type IntegrityDriftError struct {
	Subject  string // "account" or "counterparty"
	ID       string
	Stored   decimal.Decimal
	Computed decimal.Decimal
}

// Drift is stored minus computed.
func (e *IntegrityDriftError) Drift() decimal.Decimal {
	return e.Stored.Sub(e.Computed)
}

func (e *IntegrityDriftError) Error() string {
	return fmt.Sprintf("%s: %s %s stored=%s computed=%s drift=%s",
		ErrIntegrityDrift, e.Subject, e.ID, e.Stored, e.Computed, e.Drift())
}

func (e *IntegrityDriftError) Unwrap() error { return ErrIntegrityDrift }

// Kind returns the first known kind err matches, or nil.
func Kind(err error) error {
	for _, k := range []error{
		ErrValidation, ErrNotFound, ErrDuplicate, ErrInsufficientStock,
		ErrInsufficientFunds, ErrOverpayment, ErrSameAccountTransfer,
		ErrConcurrencyConflict, ErrIntegrityDrift,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Code returns a stable machine-readable code for err.
func Code(err error) string {
	switch Kind(err) {
	case ErrValidation:
		return "validation_error"
	case ErrNotFound:
		return "not_found"
	case ErrDuplicate:
		return "duplicate"
	case ErrInsufficientStock:
		return "insufficient_stock"
	case ErrInsufficientFunds:
		return "insufficient_funds"
	case ErrOverpayment:
		return "overpayment"
	case ErrSameAccountTransfer:
		return "same_account_transfer"
	case ErrConcurrencyConflict:
		return "concurrency_conflict"
	case ErrIntegrityDrift:
		return "integrity_drift"
	default:
		return "internal_error"
	}
}

// ContextOf returns the context fields carried by err, if any.
func ContextOf(err error) map[string]string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Context
	}
	return nil
}
