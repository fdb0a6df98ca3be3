// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing budget amounts from form input
// and validating ISO 4217 currency codes.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// ParseAmount converts a decimal string to an exact decimal amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Signs,
// exponents and grouping separators are rejected.
//
// Examples:
//
//	ParseAmount("1000")    -> 1000
//	ParseAmount("1000,50") -> 1000.5
//	ParseAmount("-1")      -> error
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ValidateAmount rejects negative totals.
func ValidateAmount(d decimal.Decimal) error {
	if d.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// NormalizeCurrency upper-cases and trims a currency code.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateCurrency accepts 3-letter ISO 4217 codes only.
func ValidateCurrency(code string) error {
	if len(code) != 3 {
		return ErrInvalidCurrency
	}
	if _, err := currency.ParseISO(code); err != nil {
		return ErrInvalidCurrency
	}
	return nil
}

// FormatAmount renders an amount with two decimals followed by its currency code.
func FormatAmount(d decimal.Decimal, code string) string {
	if code == "" {
		return d.StringFixed(2)
	}
	return d.StringFixed(2) + " " + code
}
