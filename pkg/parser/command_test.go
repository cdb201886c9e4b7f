package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dexswap/pkg/swap"
)

func TestParseSwapCommand(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    swap.QuoteParams
		wantErr bool
	}{
		{
			name:    "simple swap",
			command: "1 ETH to USDC",
			want:    swap.QuoteParams{Amount: "1", FromSymbol: "ETH", ToSymbol: "USDC"},
		},
		{
			name:    "decimal amount",
			command: "1.5 ETH to DAI",
			want:    swap.QuoteParams{Amount: "1.5", FromSymbol: "ETH", ToSymbol: "DAI"},
		},
		{
			name:    "leading swap keyword",
			command: "swap 100 USDC to WETH",
			want:    swap.QuoteParams{Amount: "100", FromSymbol: "USDC", ToSymbol: "WETH"},
		},
		{
			name:    "lowercase symbols",
			command: "0.25 eth to usdt",
			want:    swap.QuoteParams{Amount: "0.25", FromSymbol: "ETH", ToSymbol: "USDT"},
		},
		{
			name:    "surrounding whitespace",
			command: "  2 DAI to USDC  ",
			want:    swap.QuoteParams{Amount: "2", FromSymbol: "DAI", ToSymbol: "USDC"},
		},
		{
			name:    "missing destination",
			command: "1 ETH to",
			wantErr: true,
		},
		{
			name:    "missing amount",
			command: "ETH to USDC",
			wantErr: true,
		},
		{
			name:    "negative amount",
			command: "-1 ETH to USDC",
			wantErr: true,
		},
		{
			name:    "empty command",
			command: "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSwapCommand(tt.command)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.Amount, got.Amount)
			assert.Equal(t, tt.want.FromSymbol, got.FromSymbol)
			assert.Equal(t, tt.want.ToSymbol, got.ToSymbol)
		})
	}
}

func TestValidateQuoteParams(t *testing.T) {
	valid := &swap.QuoteParams{Amount: "1", FromSymbol: "ETH", ToSymbol: "USDC"}
	assert.NoError(t, ValidateQuoteParams(valid))

	assert.Error(t, ValidateQuoteParams(&swap.QuoteParams{FromSymbol: "ETH", ToSymbol: "USDC"}))
	assert.Error(t, ValidateQuoteParams(&swap.QuoteParams{Amount: "1", ToSymbol: "USDC"}))
	assert.Error(t, ValidateQuoteParams(&swap.QuoteParams{Amount: "1", FromSymbol: "ETH"}))
}
