// Package tokens holds the known token set for the target chain:
// addresses and decimal precision, plus symbol lookup helpers.
package tokens

import (
	"fmt"
	"strings"
)

// Token describes a swappable asset on the target chain.
type Token struct {
	Symbol   string
	Address  string
	Decimals uint8
	Native   bool
}

// Ethereum mainnet token set. The aggregator uses the 0xeee... sentinel
// address for the native asset.
var registry = []Token{
	{Symbol: "ETH", Address: "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee", Decimals: 18, Native: true},
	{Symbol: "WETH", Address: "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", Decimals: 18},
	{Symbol: "USDC", Address: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", Decimals: 6},
	{Symbol: "USDT", Address: "0xdac17f958d2ee523a2206206994597c13d831ec7", Decimals: 6},
	{Symbol: "DAI", Address: "0x6b175474e89094c44da98b954eedeac495271d0f", Decimals: 18},
}

// All returns the known token set.
func All() []Token {
	out := make([]Token, len(registry))
	copy(out, registry)
	return out
}

// Find looks a token up by symbol (case-insensitive).
func Find(symbol string) (Token, error) {
	symbol = Normalize(symbol)
	for _, t := range registry {
		if t.Symbol == symbol {
			return t, nil
		}
	}
	return Token{}, fmt.Errorf("token '%s' not found", symbol)
}

// FindByAddress looks a token up by its contract address.
func FindByAddress(address string) (Token, error) {
	address = strings.ToLower(strings.TrimSpace(address))
	for _, t := range registry {
		if t.Address == address {
			return t, nil
		}
	}
	return Token{}, fmt.Errorf("token address '%s' not known", address)
}

// Normalize uppercases and trims a symbol.
func Normalize(symbol string) string {
	return strings.TrimSpace(strings.ToUpper(symbol))
}
