package aggregator

import "fmt"

// codeOK is the application-level success sentinel in the service's
// response envelope. Any other code is an application error carrying
// the envelope message.
const codeOK = "0"

// quoteEnvelope is the GET /quote response.
type quoteEnvelope struct {
	Code string      `json:"code"`
	Msg  string      `json:"msg"`
	Data []quoteData `json:"data"`
}

type quoteData struct {
	ChainID               string `json:"chainId"`
	InTokenAddress        string `json:"inTokenAddress"`
	OutTokenAddress       string `json:"outTokenAddress"`
	InTokenSymbol         string `json:"inTokenSymbol"`
	OutTokenSymbol        string `json:"outTokenSymbol"`
	InAmount              string `json:"inAmount"`
	OutAmount             string `json:"outAmount"`
	EstimatedGas          string `json:"estimatedGas"`
	MinAmountOut          string `json:"minAmountOut"`
	Router                string `json:"router"`
	RouterStr             string `json:"routerStr"`
	FeeAmount             string `json:"feeAmount"`
	PriceImpactPercentage string `json:"priceImpactPercentage"`
}

// swapEnvelope is the GET /swap response.
type swapEnvelope struct {
	Code string     `json:"code"`
	Msg  string     `json:"msg"`
	Data []swapData `json:"data"`
}

type swapData struct {
	Tx swapTx `json:"tx"`
}

type swapTx struct {
	To       string `json:"to"`
	Data     string `json:"data"`
	Value    string `json:"value"`
	Gas      string `json:"gas"`
	GasPrice string `json:"gasPrice"`
}

// validate checks the quote payload shape after a success code. The
// service's responses are loosely typed, so missing fields are treated
// as an application error rather than trusted downstream.
func (q *quoteData) validate() error {
	switch {
	case q.InAmount == "":
		return fmt.Errorf("quote missing inAmount")
	case q.OutAmount == "":
		return fmt.Errorf("quote missing outAmount")
	case q.InTokenSymbol == "" || q.OutTokenSymbol == "":
		return fmt.Errorf("quote missing token symbols")
	default:
		return nil
	}
}

func (s *swapTx) validate() error {
	switch {
	case s.To == "":
		return fmt.Errorf("swap transaction missing target address")
	case s.Data == "":
		return fmt.Errorf("swap transaction missing calldata")
	default:
		return nil
	}
}
