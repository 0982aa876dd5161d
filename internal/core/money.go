// Package core holds the domain model: entities, categories, money,
// filter predicates, pagination, and the premium gate.
package core

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Money is a fixed-point amount in cents. All arithmetic happens on
// cents; floats appear only at display boundaries.
type Money struct {
	Cents int64
}

var ErrInvalidAmount = errors.New("invalid amount")

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third decimal place. Both dot (12.34) and comma
// (12,34) separators are accepted. Returns an error for invalid
// formats, negative values, or zero amounts.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, ErrInvalidAmount
	}

	whole, frac, _ := strings.Cut(s, ".")
	if strings.Contains(frac, ".") || !allDigits(whole) || !allDigits(frac) {
		return 0, ErrInvalidAmount
	}
	if whole == "" {
		whole = "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units > math.MaxInt64/100 {
		return 0, ErrInvalidAmount
	}

	cents := units * 100
	if len(frac) >= 1 {
		cents += int64(frac[0]-'0') * 10
	}
	if len(frac) >= 2 {
		cents += int64(frac[1] - '0')
		if len(frac) > 2 && frac[2] >= '5' {
			cents++
		}
	}

	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatCents renders cents as a plain decimal string with two places
// (e.g. 1234 -> "12.34"). This is the wire representation of amounts.
func FormatCents(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := strconv.FormatInt(cents/100, 10) + "." + pad2(cents%100)
	if neg {
		return "-" + s
	}
	return s
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

// String implements fmt.Stringer using the wire representation.
func (m Money) String() string {
	return FormatCents(m.Cents)
}
