package utils

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// CurrencyPlaces returns the number of minor-unit digits for an ISO 4217 code.
// Example: USD returns 2, JPY returns 0.
func CurrencyPlaces(code string) (int32, error) {
	c := money.GetCurrency(strings.ToUpper(code))
	if c == nil {
		return 0, fmt.Errorf("%w: unknown currency code %q", apperrors.ErrValidation, code)
	}
	return int32(c.Fraction), nil
}

// ValidateCurrency checks that code is a known ISO 4217 currency.
func ValidateCurrency(code string) error {
	_, err := CurrencyPlaces(code)
	return err
}

// FormatWithPrecision formats an amount with the given precision
func FormatWithPrecision(amount decimal.Decimal, precision int32) string {
	return amount.StringFixed(precision)
}

// FormatMoney renders an amount with the currency's symbol and grouping,
// e.g. 1234.5 USD returns "$1,234.50". Unknown codes fall back to plain digits.
func FormatMoney(amount decimal.Decimal, code string) string {
	places, err := CurrencyPlaces(code)
	if err != nil {
		return amount.String() + " " + code
	}
	minor := amount.Shift(places).Round(0).IntPart()
	return money.New(minor, strings.ToUpper(code)).Display()
}

// HasAtMostPlaces reports whether amount needs no more than places decimals.
func HasAtMostPlaces(amount decimal.Decimal, places int32) bool {
	return amount.Equal(amount.Round(places))
}
