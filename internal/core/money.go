// Package core provides the ledger and location domain types.
//
// This file contains amount parsing, totals and display formatting. Amounts
// are stored as float64; sums go through decimal arithmetic so the running
// total matches the stored values without accumulated binary drift.
package core

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user input to an amount.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted. Only
// parse-ability is checked: zero and negative values are allowed.
//
// Examples:
//
//	ParseAmount("12.5")  -> 12.5, nil
//	ParseAmount("12,5")  -> 12.5, nil
//	ParseAmount("")      -> 0, ErrEmptyAmount
//	ParseAmount("abc")   -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmptyAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// Total sums the amounts of all given expenses.
func Total(expenses []Expense) float64 {
	sum := decimal.Zero
	for _, e := range expenses {
		sum = sum.Add(decimal.NewFromFloat(e.Amount))
	}
	f, _ := sum.Float64()
	return f
}

// FormatAmount renders an amount followed by the currency symbol, e.g. "12.5 $".
func FormatAmount(amount float64, currency string) string {
	return decimal.NewFromFloat(amount).String() + " " + currency
}

// FormatExpense renders a list line: "Coffee: 12.5 $".
func FormatExpense(e Expense, currency string) string {
	return e.Description + ": " + FormatAmount(e.Amount, currency)
}
