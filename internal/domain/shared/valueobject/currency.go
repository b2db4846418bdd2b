package valueobject

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Currency is an ISO 4217 currency code
type Currency string

const (
	EUR Currency = "EUR"
	USD Currency = "USD"
	GBP Currency = "GBP"
	CHF Currency = "CHF"
	JPY Currency = "JPY"
)

// DefaultCurrency is the functional currency used when a tenant configures none
const DefaultCurrency = EUR

// fallbackMinorUnits applies to codes unknown to the ISO table
const fallbackMinorUnits int32 = 2

// ParseCurrency normalises and validates an ISO 4217 code
func ParseCurrency(code string) (Currency, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return "", fmt.Errorf("unknown currency code %q: %w", code, err)
	}
	return Currency(unit.String()), nil
}

// IsValid reports whether the code is a recognised ISO 4217 currency
func (c Currency) IsValid() bool {
	_, err := currency.ParseISO(string(c))
	return err == nil
}

// String returns the currency code
func (c Currency) String() string {
	return string(c)
}

// MinorUnits returns the number of decimal places of the currency's smallest unit
// (EUR 2, JPY 0, ...)
func (c Currency) MinorUnits() int32 {
	unit, err := currency.ParseISO(string(c))
	if err != nil {
		return fallbackMinorUnits
	}
	scale, _ := currency.Standard.Rounding(unit)
	return int32(scale)
}

// RoundAmount rounds half away from zero to the currency's minor units.
// This is the single rounding rule applied to every computed ledger amount.
func RoundAmount(amount decimal.Decimal, c Currency) decimal.Decimal {
	return amount.Round(c.MinorUnits())
}
