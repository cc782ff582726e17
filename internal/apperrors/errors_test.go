package apperrors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestError_MatchesKindAndCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := apperrors.Wrap("Transfer", apperrors.ErrInsufficientFunds, cause, "source cannot cover amount").
		With("account_id", "vault-main").
		With("amount", decimal.RequireFromString("150.50"))

	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, "Transfer: insufficient funds: source cannot cover amount [account_id=vault-main amount=150.5]: connection reset", err.Error())
	assert.Equal(t, map[string]string{"account_id": "vault-main", "amount": "150.5"}, apperrors.ContextOf(err))
}

func TestNarrowKinds(t *testing.T) {
	assert.ErrorIs(t, apperrors.ErrAccountNotFound, apperrors.ErrNotFound)
	assert.ErrorIs(t, apperrors.ErrNegativeAmount, apperrors.ErrValidation)

	wrapped := fmt.Errorf("outer: %w", apperrors.New("ApplyDelta", apperrors.ErrAccountNotFound, "missing"))
	assert.ErrorIs(t, wrapped, apperrors.ErrNotFound)
	assert.Equal(t, "not_found", apperrors.Code(wrapped))
}

func TestCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{apperrors.ErrValidation, "validation_error"},
		{apperrors.ErrInsufficientStock, "insufficient_stock"},
		{apperrors.ErrOverpayment, "overpayment"},
		{apperrors.ErrSameAccountTransfer, "same_account_transfer"},
		{apperrors.ErrConcurrencyConflict, "concurrency_conflict"},
		{errors.New("boom"), "internal_error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, apperrors.Code(tt.err))
	}
}

func TestIntegrityDriftError(t *testing.T) {
	err := &apperrors.IntegrityDriftError{
		Subject:  "account",
		ID:       "profit",
		Stored:   decimal.NewFromInt(110),
		Computed: decimal.NewFromInt(100),
	}
	assert.ErrorIs(t, err, apperrors.ErrIntegrityDrift)
	assert.True(t, err.Drift().Equal(decimal.NewFromInt(10)))
	assert.Contains(t, err.Error(), "drift=10")
}
