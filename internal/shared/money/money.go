// Package money represents storefront prices as integer minor currency units.
package money

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MinorPerMajor is the number of minor units (paise) in one major unit (rupee).
const MinorPerMajor = 100

// Amount is a monetary value expressed in minor currency units.
type Amount int64

// FromMajor converts a decimal major-unit value, rounding half away from zero
// to the nearest minor unit. Non-finite input yields zero.
func FromMajor(v float64) Amount {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return Amount(math.Round(v * MinorPerMajor))
}

// ParseMajor parses a decimal string such as "49.90". ok is false when the
// text is not a finite number.
func ParseMajor(s string) (Amount, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return FromMajor(f), true
}

// Minor returns the raw minor-unit count.
func (a Amount) Minor() int64 { return int64(a) }

// Major returns the value in major units.
func (a Amount) Major() float64 { return float64(a) / MinorPerMajor }

// Mul multiplies the amount by an integer quantity.
func (a Amount) Mul(n int) Amount { return a * Amount(n) }

// String renders the major-unit value without trailing zeros ("100", "100.5").
func (a Amount) String() string {
	return strconv.FormatFloat(a.Major(), 'f', -1, 64)
}

// Fixed renders the major-unit value with exactly two decimals ("100.50").
func (a Amount) Fixed() string {
	v := int64(a)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/MinorPerMajor, v%MinorPerMajor)
}

// MarshalJSON writes the amount as a major-unit JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a major-unit JSON number or a numeric string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = 0
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*a = FromMajor(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	parsed, ok := ParseMajor(s)
	if !ok {
		return fmt.Errorf("amount: %q is not a number", s)
	}
	*a = parsed
	return nil
}
