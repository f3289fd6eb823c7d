package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCents_Add(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Cents
		want    Cents
		wantErr error
	}{
		{name: "Simple sum", a: 100, b: 250, want: 350},
		{name: "Up to the max", a: MaxCents - 1, b: 1, want: MaxCents},
		{name: "Overflow past the max", a: MaxCents, b: 1, wantErr: ErrAmountOutOfRange},
		{name: "Negative operand", a: 10, b: -1, wantErr: ErrAmountOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.a.Add(tt.b)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCents_Sub(t *testing.T) {
	got, err := Cents(1000).Sub(999)
	require.NoError(t, err)
	assert.Equal(t, Cents(1), got)

	_, err = Cents(999).Sub(1000)
	assert.ErrorIs(t, err, ErrAmountOutOfRange)
}

func TestCents_ApplyBPS(t *testing.T) {
	tests := []struct {
		name   string
		amount Cents
		bps    int64
		want   Cents
	}{
		{name: "Tier 1 three percent", amount: 4999, bps: 300, want: 150},
		{name: "Tier 2 five percent", amount: 8000, bps: 500, want: 400},
		{name: "Tier 3 ten percent", amount: 12345, bps: 1000, want: 1235},
		{name: "Half rounds up", amount: 50, bps: 100, want: 1},
		{name: "Zero rate", amount: 8000, bps: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.amount.ApplyBPS(tt.bps)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMajor(t *testing.T) {
	tests := []struct {
		in      string
		want    Cents
		wantErr error
	}{
		{in: "80", want: 8000},
		{in: "80.5", want: 8050},
		{in: "0.01", want: 1},
		{in: "1.001", wantErr: ErrInvalidAmount},
		{in: "-3", wantErr: ErrInvalidAmount},
		{in: "abc", wantErr: ErrInvalidAmount},
		{in: "90071992547409.92", wantErr: ErrAmountOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMajor(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromMajor(t *testing.T) {
	got, err := FromMajor(decimal.RequireFromString("12.30"))
	require.NoError(t, err)
	assert.Equal(t, Cents(1230), got)
	assert.Equal(t, "12.30", got.String())
	assert.Equal(t, int64(12), got.MajorUnits())
}

func TestCents_Positive(t *testing.T) {
	assert.NoError(t, Cents(1).Positive())
	assert.ErrorIs(t, Cents(0).Positive(), ErrInvalidAmount)
	assert.ErrorIs(t, Cents(-5).Positive(), ErrInvalidAmount)
	assert.ErrorIs(t, (MaxCents + 1).Positive(), ErrAmountOutOfRange)
}
