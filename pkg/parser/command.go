package parser

import (
	"fmt"
	"regexp"
	"strings"

	"dexswap/pkg/swap"
)

// swapPattern matches "<amount> <source_token> TO <dest_token>", e.g.
// "1 ETH TO USDC", "1.5 ETH TO DAI", "100.25 USDC TO WETH".
var swapPattern = regexp.MustCompile(`^(\d+\.?\d*)\s+([A-Z0-9]+)\s+TO\s+([A-Z0-9]+)$`)

// ParseSwapCommand parses a natural language swap command
// Examples:
//   - "swap 1 ETH to USDC"
//   - "1.5 ETH to DAI"
//   - "100 USDC to WETH"
func ParseSwapCommand(command string) (*swap.QuoteParams, error) {
	// Normalize the command
	command = strings.TrimSpace(strings.ToUpper(command))

	// Remove the word "SWAP" if present at the beginning
	command = strings.TrimPrefix(command, "SWAP ")

	matches := swapPattern.FindStringSubmatch(command)
	if matches == nil {
		return nil, fmt.Errorf("invalid swap command format. Expected: '<amount> <token> to <token>' (e.g., '1 ETH to USDC')")
	}

	return &swap.QuoteParams{
		Amount:     matches[1],
		FromSymbol: matches[2],
		ToSymbol:   matches[3],
	}, nil
}

// ValidateQuoteParams validates that the parsed parameters are
// complete.
func ValidateQuoteParams(params *swap.QuoteParams) error {
	if params.Amount == "" {
		return fmt.Errorf("amount is required")
	}
	if params.FromSymbol == "" {
		return fmt.Errorf("source token is required")
	}
	if params.ToSymbol == "" {
		return fmt.Errorf("destination token is required")
	}
	return nil
}
