// Package core defines the split domain types and money handling utilities.
//
// This file contains the cent-rounding helper used by the calculation engine
// and the fixed-point Money type used by the settlement ledger.
package core

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrNegativeCents = errors.New("amount cannot be negative")
)

// Money is a fixed-point monetary amount in cents. The settlement ledger
// works exclusively in cents so share sums are exact, with no tolerance.
type Money struct {
	Cents int64
}

// Round rounds a monetary value to two decimal places, ties away from zero.
//
// The engine intentionally uses half-away-from-zero rounding (not banker's
// rounding): 1.005 becomes 1.01 and -1.005 becomes -1.01.
func Round(v float64) float64 {
	return roundCents(v) / 100
}

// CentsFromFloat converts a decimal amount to cents, rounding ties away from
// zero. Returns an error for negative amounts; the ledger never holds debt.
func CentsFromFloat(v float64) (int64, error) {
	if v < 0 {
		return 0, ErrNegativeCents
	}
	return int64(roundCents(v)), nil
}

// roundCents scales a value to cents and rounds ties away from zero. The
// nudge toward the value's sign compensates for binary representation of
// decimal ties: 1.005 scales to 100.4999…, which would otherwise lose its
// tie before math.Round ever sees it.
func roundCents(v float64) float64 {
	return math.Round(v*100 + math.Copysign(1e-9, v))
}

// Float returns the decimal value for boundary representations. Calculations
// on the ledger side stay in cents; this is for display and JSON only.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) String() string {
	return fmt.Sprintf("%d.%02d", m.Cents/100, m.Cents%100)
}

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third decimal place. It accepts both dot (12.34) and comma
// (12,34) separators. Unlike amounts in a calculation request, a parsed
// deposit must be strictly positive.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}
