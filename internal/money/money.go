// Package money implements the fixed-point amount representation used
// throughout the ledger in place of the source project's binary floats.
package money

import (
	"fmt"
	"strconv"
	"strings"
)

// decimals is the number of fractional digits an Amount carries.
const decimals = 8

// scale is 10^decimals, the number of base units per whole sanch.
const scale = 100_000_000

// Amount is a quantity of value in base units (1 sanch = 1e8 units).
// It replaces the source's binary float amounts so that conservation
// checks (invariant 3 in spec.md §8) never drift from rounding error.
type Amount int64

// Zero is the additive identity.
const Zero Amount = 0

// FromUnits builds an Amount directly from base units.
func FromUnits(units int64) Amount { return Amount(units) }

// Units returns the raw base-unit integer.
func (a Amount) Units() int64 { return int64(a) }

// Add returns a+b.
func (a Amount) Add(b Amount) Amount { return a + b }

// Sub returns a-b.
func (a Amount) Sub(b Amount) Amount { return a - b }

// Cmp returns -1, 0 or 1 as a is less than, equal to, or greater than b.
func (a Amount) Cmp(b Amount) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// IsPositive reports whether a > 0.
func (a Amount) IsPositive() bool { return a > 0 }

// IsNegative reports whether a < 0.
func (a Amount) IsNegative() bool { return a < 0 }

// Fee computes a * ppm / 1_000_000, rounding toward zero, the miner fee
// owed on an amount given config.MinerFeesPPM.
func (a Amount) Fee(ppm int64) Amount {
	return Amount(int64(a) * ppm / 1_000_000)
}

// String renders the canonical decimal textual form: the exact value at
// 8 fractional digits with trailing zeros (and a bare trailing '.') trimmed.
// Two implementations computing the same Amount always produce the same
// string, which is what the canonical encoding in spec.md §4.2 requires.
func (a Amount) String() string {
	neg := a < 0
	units := int64(a)
	if neg {
		units = -units
	}
	whole := units / scale
	frac := units % scale

	fracStr := fmt.Sprintf("%0*d", decimals, frac)
	fracStr = strings.TrimRight(fracStr, "0")

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	sb.WriteString(strconv.FormatInt(whole, 10))
	if fracStr != "" {
		sb.WriteByte('.')
		sb.WriteString(fracStr)
	}
	return sb.String()
}

// ParseAmount parses the canonical decimal textual form back into an Amount.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("money: empty amount")
	}

	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	} else if s[0] == '+' {
		s = s[1:]
	}

	wholePart, fracPart, hasFrac := strings.Cut(s, ".")
	if wholePart == "" {
		wholePart = "0"
	}
	if len(fracPart) > decimals {
		return 0, fmt.Errorf("money: too many fractional digits in %q", s)
	}
	if hasFrac {
		fracPart = fracPart + strings.Repeat("0", decimals-len(fracPart))
	} else {
		fracPart = strings.Repeat("0", decimals)
	}

	whole, err := strconv.ParseInt(wholePart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("money: invalid amount %q: %w", s, err)
	}
	frac, err := strconv.ParseInt(fracPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("money: invalid amount %q: %w", s, err)
	}

	units := whole*scale + frac
	if neg {
		units = -units
	}
	return Amount(units), nil
}

// MarshalJSON renders the Amount as a bare JSON number token holding the
// canonical decimal text, matching the "floats are a fixed decimal textual
// form" rule in spec.md §4.2.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON parses a bare JSON number token into an Amount.
func (a *Amount) UnmarshalJSON(data []byte) error {
	parsed, err := ParseAmount(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
