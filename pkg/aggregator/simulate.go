package aggregator

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"dexswap/pkg/amount"
	"dexswap/pkg/tokens"
)

// Fixed reference prices in USD for simulated mode. Deliberately
// static: simulated quotes only exercise the flow, they are never
// authoritative and never executable.
var simulatedPricesUSD = map[string]string{
	"ETH":  "3000",
	"WETH": "3000",
	"USDC": "1",
	"USDT": "1",
	"DAI":  "1",
}

func simulateOutAmount(inBaseUnits string, from, to tokens.Token) (string, error) {
	inRaw, ok := new(big.Int).SetString(inBaseUnits, 10)
	if !ok {
		return "", fmt.Errorf("invalid base-unit amount: %s", inBaseUnits)
	}

	fromPrice, ok := simulatedPricesUSD[from.Symbol]
	if !ok {
		return "", fmt.Errorf("no simulated price for %s", from.Symbol)
	}
	toPrice, ok := simulatedPricesUSD[to.Symbol]
	if !ok {
		return "", fmt.Errorf("no simulated price for %s", to.Symbol)
	}

	inValue, err := decimal.NewFromString(amount.Format(inRaw, from.Decimals))
	if err != nil {
		return "", err
	}
	pFrom, _ := decimal.NewFromString(fromPrice)
	pTo, _ := decimal.NewFromString(toPrice)

	outValue := inValue.Mul(pFrom).Div(pTo)
	outBaseUnits := outValue.Shift(int32(to.Decimals)).Truncate(0)
	return outBaseUnits.String(), nil
}
