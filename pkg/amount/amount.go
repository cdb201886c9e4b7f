// Package amount converts between human decimal strings and
// smallest-unit integer amounts using exact integer math. Fractional
// digits beyond the token's precision are truncated, never rounded up.
package amount

import (
	"fmt"
	"math/big"
	"strings"
)

// Parse converts a decimal string like "1.2345" into a smallest-unit
// integer for a token with the given number of decimals. Fractional
// digits beyond the token's precision are dropped: "1.2345" at 2
// decimals yields 123, never the rounded-up 124.
func Parse(value string, decimals uint8) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("empty amount")
	}

	neg := false
	if strings.HasPrefix(value, "-") {
		neg = true
		value = value[1:]
	} else if strings.HasPrefix(value, "+") {
		value = value[1:]
	}

	intPart := value
	fracPart := ""
	if i := strings.IndexByte(value, '.'); i >= 0 {
		intPart = value[:i]
		fracPart = value[i+1:]
		if strings.IndexByte(fracPart, '.') >= 0 {
			return nil, fmt.Errorf("invalid amount format: %s", value)
		}
	}
	if intPart == "" && fracPart == "" {
		return nil, fmt.Errorf("invalid amount format: %s", value)
	}
	if intPart == "" {
		intPart = "0"
	}

	if !isDigits(intPart) || (fracPart != "" && !isDigits(fracPart)) {
		return nil, fmt.Errorf("invalid amount format: %s", value)
	}

	// Truncate fractional digits beyond the token's precision.
	if len(fracPart) > int(decimals) {
		fracPart = fracPart[:decimals]
	}
	fracPart += strings.Repeat("0", int(decimals)-len(fracPart))

	result, ok := new(big.Int).SetString(intPart+fracPart, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount format: %s", value)
	}
	if neg {
		result.Neg(result)
	}
	return result, nil
}

// Format converts a smallest-unit integer into a decimal string,
// trimming trailing zeros. 1234500000000000000 at 18 decimals yields
// "1.2345".
func Format(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	if decimals == 0 {
		return value.String()
	}

	abs := new(big.Int).Abs(value)
	digits := abs.String()
	if len(digits) <= int(decimals) {
		digits = strings.Repeat("0", int(decimals)-len(digits)+1) + digits
	}

	split := len(digits) - int(decimals)
	intPart := digits[:split]
	fracPart := strings.TrimRight(digits[split:], "0")

	out := intPart
	if fracPart != "" {
		out += "." + fracPart
	}
	if value.Sign() < 0 && out != "0" {
		out = "-" + out
	}
	return out
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
