package utils

import (
	"testing"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrencyPlaces(t *testing.T) {
	places, err := CurrencyPlaces("USD")
	require.NoError(t, err)
	assert.Equal(t, int32(2), places)

	places, err = CurrencyPlaces("jpy")
	require.NoError(t, err)
	assert.Equal(t, int32(0), places)

	_, err = CurrencyPlaces("ZZZ")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$1,234.50", FormatMoney(decimal.RequireFromString("1234.5"), "USD"))
	assert.Equal(t, "12.5 ZZZ", FormatMoney(decimal.RequireFromString("12.5"), "ZZZ"))
}

func TestHasAtMostPlaces(t *testing.T) {
	assert.True(t, HasAtMostPlaces(decimal.RequireFromString("10.25"), 2))
	assert.False(t, HasAtMostPlaces(decimal.RequireFromString("10.255"), 2))
	assert.True(t, HasAtMostPlaces(decimal.RequireFromString("10"), 0))
}
