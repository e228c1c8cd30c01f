// Package core provides money parsing and handling utilities.
//
// Amounts are kept as integer cents so ledger totals stay exact. The
// persisted document and the API speak whole shillings with an optional
// fractional part, so this file converts in both directions.
package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// MaxAmount bounds any single amount: a transaction, a budget or income.
// Keeping inputs at a trillion shillings leaves int64 headroom for totals
// and percentage maths.
var MaxAmount = Money{Cents: 100_000_000_000_000}

// maxTotalCents bounds summed spend and budgets so that PercentUsed can
// multiply them by 100 without overflowing.
const maxTotalCents = math.MaxInt64 / 100

// ParseAmountToCents converts a shilling amount such as "2,500.00" to cents.
//
// Commas are thousands separators and are dropped. Half-up rounding applies
// on the third decimal place. Only strictly positive amounts are accepted.
//
// Examples:
//
//	ParseAmountToCents("2,500.00") -> 250000, nil
//	ParseAmountToCents("12.345")   -> 1235, nil (rounds up)
//	ParseAmountToCents("0")        -> 0, ErrInvalidAmount
//
// Amounts above MaxAmount are rejected.
func ParseAmountToCents(s string) (int64, error) {
	cents, err := parseDecimal(s)
	if err != nil {
		return 0, err
	}
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// parseDecimal is ParseAmountToCents without the positivity check; zero is
// allowed because stored budgets and totals may legitimately be zero.
func parseDecimal(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, ErrInvalidAmount
	}
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
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil || iv > MaxAmount.Cents/100 {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents > MaxAmount.Cents {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// Shillings builds a Money value from whole shillings.
func Shillings(units int64) Money {
	return Money{Cents: units * 100}
}

// Validate accepts strictly positive transaction amounts up to MaxAmount.
func (m Money) Validate() error {
	if m.Cents <= 0 || m.Cents > MaxAmount.Cents {
		return ErrInvalidAmount
	}
	return nil
}

// InRange reports whether m lies within [0, MaxAmount], the range for
// budgets and income.
func (m Money) InRange() bool {
	return m.Cents >= 0 && m.Cents <= MaxAmount.Cents
}

// addCents adds b to a, failing with ErrInvalidAmount instead of wrapping.
func addCents(a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, ErrInvalidAmount
	}
	return a + b, nil
}

// Units returns the amount in shillings as a float64 for display and
// percentage maths. Use Cents for arithmetic.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}

// RoundedUnits rounds to the nearest whole shilling, halves rounding up.
func (m Money) RoundedUnits() int64 {
	q := m.Cents + 50
	units := q / 100
	if q%100 != 0 && q < 0 {
		units--
	}
	return units
}

// Decimal renders the amount as a plain decimal string: "2500", "2500.5".
func (m Money) Decimal() string {
	sign := ""
	c := m.Cents
	if c < 0 {
		sign = "-"
		c = -c
	}
	units, frac := c/100, c%100
	if frac == 0 {
		return fmt.Sprintf("%s%d", sign, units)
	}
	out := fmt.Sprintf("%s%d.%02d", sign, units, frac)
	return strings.TrimSuffix(out, "0")
}

func (m Money) String() string {
	return FormatKSh(m)
}

// MarshalJSON encodes the amount as a JSON number in shillings.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal()), nil
}

// UnmarshalJSON accepts a JSON number or a string such as "2,500.00".
// Negative values decode, since read models such as Remaining are signed;
// the ledger operations and DecodeState check the sign where it matters.
// Magnitudes above MaxAmount are rejected.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		m.Cents = 0
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = s
	}
	trimmed := strings.TrimSpace(raw)
	sign := int64(1)
	if unsigned, ok := strings.CutPrefix(trimmed, "-"); ok {
		sign = -1
		trimmed = unsigned
	}
	if cents, err := parseDecimal(trimmed); err == nil {
		m.Cents = sign * cents
		return nil
	}
	// Exponent forms fall back to float parsing. The range check runs on
	// the float so a huge exponent never reaches the int64 conversion.
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(f) || f < 0 || f*100 > float64(MaxAmount.Cents) {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, raw)
	}
	m.Cents = sign * int64(math.Round(f*100))
	return nil
}
