// Package money holds the integer minor-unit amount type used by every balance
// in the service. Amounts never pass through floating point.
package money

import (
	"errors"
	"strconv"

	"github.com/shopspring/decimal"
)

// Cents is an amount in minor currency units.
type Cents int64

// MaxCents is the largest amount a balance may hold (2^53-1), the safe integer
// boundary of the JSON clients reading these values.
const MaxCents Cents = 1<<53 - 1

const bpsDenominator = 10000

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrAmountOutOfRange = errors.New("amount out of range")
)

var hundred = decimal.NewFromInt(100)

// Positive reports whether c is a usable operation amount: 0 < c <= MaxCents.
func (c Cents) Positive() error {
	if c <= 0 {
		return ErrInvalidAmount
	}
	if c > MaxCents {
		return ErrAmountOutOfRange
	}
	return nil
}

// Add returns c+o or ErrAmountOutOfRange when the sum leaves [0, MaxCents].
func (c Cents) Add(o Cents) (Cents, error) {
	if c < 0 || o < 0 || c > MaxCents || o > MaxCents {
		return 0, ErrAmountOutOfRange
	}
	sum := c + o
	if sum > MaxCents {
		return 0, ErrAmountOutOfRange
	}
	return sum, nil
}

// Sub returns c-o or ErrAmountOutOfRange when the result would be negative.
func (c Cents) Sub(o Cents) (Cents, error) {
	if o < 0 || o > c {
		return 0, ErrAmountOutOfRange
	}
	return c - o, nil
}

// ApplyBPS returns c * bps / 10000 rounded half away from zero.
func (c Cents) ApplyBPS(bps int64) (Cents, error) {
	if c < 0 || bps < 0 {
		return 0, ErrInvalidAmount
	}
	v := decimal.NewFromInt(int64(c)).
		Mul(decimal.NewFromInt(bps)).
		Div(decimal.NewFromInt(bpsDenominator)).
		Round(0)
	if v.GreaterThan(decimal.NewFromInt(int64(MaxCents))) {
		return 0, ErrAmountOutOfRange
	}
	return Cents(v.IntPart()), nil
}

// Major returns the amount in major units.
func (c Cents) Major() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// MajorUnits returns the whole major units of c, dropping the fraction.
func (c Cents) MajorUnits() int64 {
	return int64(c) / 100
}

func (c Cents) String() string {
	return c.Major().StringFixed(2)
}

// FromMajor converts a major-unit decimal into cents. More than two fractional
// digits or a negative value is rejected rather than rounded.
func FromMajor(d decimal.Decimal) (Cents, error) {
	if d.IsNegative() {
		return 0, ErrInvalidAmount
	}
	cents := d.Mul(hundred)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, ErrInvalidAmount
	}
	if cents.GreaterThan(decimal.NewFromInt(int64(MaxCents))) {
		return 0, ErrAmountOutOfRange
	}
	return Cents(cents.IntPart()), nil
}

// ParseMajor parses a major-unit string such as "80" or "80.50".
func ParseMajor(s string) (Cents, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return FromMajor(d)
}

// ParseCents parses a plain integer cents string.
func ParseCents(s string) (Cents, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	c := Cents(v)
	if err := c.Positive(); err != nil {
		return 0, err
	}
	return c, nil
}
