package types

// ConnectionState describes the lifecycle of the wallet session.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
)

// String returns a human-readable name for the connection state.
func (s ConnectionState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// WalletSession is a snapshot of the current connection to the wallet
// provider. Account is non-empty exactly when State is Connected.
// Balance is a decimal string in the native asset and is meaningful
// only while connected.
type WalletSession struct {
	Account string
	ChainID int64
	Balance string
	State   ConnectionState
}

// SwapQuoteRequest is the input to a quote lookup. Amount is the
// human-entered decimal string; AmountBaseUnits is the same value
// converted to the source token's smallest unit.
type SwapQuoteRequest struct {
	ChainID         int64
	FromToken       string
	ToToken         string
	Amount          string
	AmountBaseUnits string
	SlippagePercent string
}

// SwapQuote is the result of a quote lookup. In/Out amounts are
// smallest-unit integer strings.
type SwapQuote struct {
	FromSymbol         string
	ToSymbol           string
	FromDecimals       uint8
	ToDecimals         uint8
	InAmount           string
	OutAmount          string
	EstimatedGas       string
	PriceImpactPercent string
	RouterLabel        string
	// Simulated marks quotes produced without service credentials.
	// A simulated quote must never reach execution.
	Simulated bool
}

// PendingSwap freezes the exact parameters a quote was issued for, so
// the eventual swap-data request cannot drift from what was quoted.
type PendingSwap struct {
	SwapQuoteRequest
	// DisplayAmount keeps the original human-entered amount for output.
	DisplayAmount string
}

// SwapTransaction is the payload the aggregation service hands back
// for signing: target contract, calldata and gas parameters.
type SwapTransaction struct {
	To       string
	Data     string
	Value    string
	GasLimit string
	GasPrice string
}
