// Package wallet owns the connection lifecycle to the wallet provider:
// connect, disconnect, account and chain tracking, balance refresh,
// network switching and transaction submission. The Manager is the
// sole owner of the provider and of its event stream.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"dexswap/pkg/types"
)

// EventKind identifies a provider push notification.
type EventKind int

const (
	EventAccountsChanged EventKind = iota
	EventChainChanged
	EventDisconnect
)

// Event is a provider-pushed state change. Accounts is set for
// account changes, ChainID for chain changes.
type Event struct {
	Kind     EventKind
	Accounts []string
	ChainID  int64
}

// Receipt is the confirmation of a mined transaction.
type Receipt struct {
	TxHash      string
	BlockNumber uint64
	GasUsed     uint64
	Success     bool
}

// Provider is the single injected wallet dependency. It mirrors the
// EIP-1193 surface: account access requests, a silent account check for
// session restore, chain identification and switching, balance reads,
// signed transaction submission and push notifications.
type Provider interface {
	// Available reports whether a usable wallet capability is present.
	Available() bool

	// RequestAccounts prompts for account access and returns the
	// authorized addresses.
	RequestAccounts(ctx context.Context) ([]string, error)

	// Accounts returns already-authorized addresses without prompting.
	Accounts(ctx context.Context) ([]string, error)

	// ChainID returns the provider's active chain.
	ChainID(ctx context.Context) (int64, error)

	// BalanceAt returns the native balance of the account in wei.
	BalanceAt(ctx context.Context, account string) (*big.Int, error)

	// SwitchChain asks the provider to change its active chain. The
	// resulting chain id arrives asynchronously as a chain-changed
	// event, never as a synchronous effect of this call.
	SwitchChain(ctx context.Context, chainID int64) error

	// SendTransaction signs and broadcasts the transaction, returning
	// its hash.
	SendTransaction(ctx context.Context, tx *types.SwapTransaction) (string, error)

	// WaitMined blocks until the transaction is confirmed or ctx ends.
	WaitMined(ctx context.Context, txHash string) (*Receipt, error)

	// Events is the push-notification stream. Closed on provider
	// teardown.
	Events() <-chan Event

	// Close releases the provider's resources.
	Close()
}

// EIP-1193 / MetaMask provider error codes.
const (
	codeUserRejected   = 4001
	codeRequestPending = -32002
	codeChainNotAdded  = 4902
)

// RPCError mirrors the provider error shape: a numeric code plus a
// message.
type RPCError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// classifyProviderError maps a raw provider failure into the error
// taxonomy.
func classifyProviderError(err error) *types.Error {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		switch rpcErr.Code {
		case codeUserRejected:
			return types.Wrap(types.KindUserRejected, "request was rejected in the wallet", err)
		case codeRequestPending:
			return types.Wrap(types.KindRequestAlreadyPending, "a wallet request is already pending", err)
		case codeChainNotAdded:
			return types.Wrap(types.KindChainNotAdded, "the wallet does not know the requested chain", err)
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "insufficient funds"):
		return types.Wrap(types.KindInsufficientFunds, "insufficient funds for the transaction", err)
	case strings.Contains(msg, "gas required exceeds"), strings.Contains(msg, "execution reverted"):
		return types.Wrap(types.KindGasEstimationFailed, "gas estimation failed", err)
	default:
		return types.Wrap(types.KindProviderError, "wallet provider request failed", err)
	}
}
