package amount

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		decimals uint8
		want     string
		wantErr  bool
	}{
		{
			name:     "whole number at 18 decimals",
			value:    "1",
			decimals: 18,
			want:     "1000000000000000000",
		},
		{
			name:     "fraction at 18 decimals",
			value:    "1.5",
			decimals: 18,
			want:     "1500000000000000000",
		},
		{
			name:     "truncates beyond precision",
			value:    "1.2345",
			decimals: 2,
			want:     "123",
		},
		{
			name:     "truncates never rounds up",
			value:    "0.999",
			decimals: 2,
			want:     "99",
		},
		{
			name:     "truncation keeps round trip exact",
			value:    "1.23",
			decimals: 2,
			want:     "123",
		},
		{
			name:     "six decimal token",
			value:    "100.25",
			decimals: 6,
			want:     "100250000",
		},
		{
			name:     "leading dot",
			value:    ".5",
			decimals: 6,
			want:     "500000",
		},
		{
			name:     "zero decimals",
			value:    "42",
			decimals: 0,
			want:     "42",
		},
		{
			name:     "fraction at zero decimals truncates",
			value:    "42.9",
			decimals: 0,
			want:     "42",
		},
		{
			name:     "negative",
			value:    "-1.5",
			decimals: 2,
			want:     "-150",
		},
		{
			name:     "empty",
			value:    "",
			decimals: 18,
			wantErr:  true,
		},
		{
			name:     "not a number",
			value:    "abc",
			decimals: 18,
			wantErr:  true,
		},
		{
			name:     "two dots",
			value:    "1.2.3",
			decimals: 18,
			wantErr:  true,
		},
		{
			name:     "lone dot",
			value:    ".",
			decimals: 18,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.value, tt.decimals)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got.String())
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		decimals uint8
		want     string
	}{
		{
			name:     "wei to ether",
			value:    "1234500000000000000",
			decimals: 18,
			want:     "1.2345",
		},
		{
			name:     "trims trailing zeros",
			value:    "1000000000000000000",
			decimals: 18,
			want:     "1",
		},
		{
			name:     "below one",
			value:    "500000",
			decimals: 6,
			want:     "0.5",
		},
		{
			name:     "zero",
			value:    "0",
			decimals: 18,
			want:     "0",
		},
		{
			name:     "zero decimals",
			value:    "42",
			decimals: 0,
			want:     "42",
		},
		{
			name:     "negative",
			value:    "-150",
			decimals: 2,
			want:     "-1.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := new(big.Int).SetString(tt.value, 10)
			require.True(t, ok)
			require.Equal(t, tt.want, Format(v, tt.decimals))
		})
	}
}

// Round trip: formatting a smallest-unit value and parsing it back must
// return the original value for amounts representable at the token's
// precision.
func TestRoundTrip(t *testing.T) {
	values := []string{"1", "123", "99", "1500000000000000000", "100250000", "7"}
	decimals := []uint8{0, 2, 6, 18}

	for _, d := range decimals {
		for _, raw := range values {
			v, ok := new(big.Int).SetString(raw, 10)
			require.True(t, ok)
			back, err := Parse(Format(v, d), d)
			require.NoError(t, err)
			require.Equal(t, v.String(), back.String(), "decimals=%d value=%s", d, raw)
		}
	}
}
