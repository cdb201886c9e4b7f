package types

import (
	"errors"
	"fmt"
)

// Kind classifies every failure the core can surface. Validation
// failures are detected before any network call; the rest are mapped
// from provider or aggregation-service responses at the call site.
type Kind int

const (
	KindUnknown Kind = iota
	KindWalletNotInstalled
	KindUserRejected
	KindRequestAlreadyPending
	KindNotConnected
	KindWrongNetwork
	KindChainNotAdded
	KindInsufficientFunds
	KindGasEstimationFailed
	KindTimeout
	KindRateLimited
	KindServiceUnavailable
	KindApplicationError
	KindProviderError
	KindNoQuote
	KindInvalidAmount
	KindSameToken
	KindUnknownToken
	KindSwapInFlight
	KindSimulatedQuote
	KindSuperseded
)

// String returns the taxonomy name of the kind.
func (k Kind) String() string {
	switch k {
	case KindWalletNotInstalled:
		return "WalletNotInstalled"
	case KindUserRejected:
		return "UserRejected"
	case KindRequestAlreadyPending:
		return "RequestAlreadyPending"
	case KindNotConnected:
		return "NotConnected"
	case KindWrongNetwork:
		return "WrongNetwork"
	case KindChainNotAdded:
		return "ChainNotAdded"
	case KindInsufficientFunds:
		return "InsufficientFunds"
	case KindGasEstimationFailed:
		return "GasEstimationFailed"
	case KindTimeout:
		return "Timeout"
	case KindRateLimited:
		return "RateLimited"
	case KindServiceUnavailable:
		return "ServiceUnavailable"
	case KindApplicationError:
		return "ApplicationError"
	case KindProviderError:
		return "ProviderError"
	case KindNoQuote:
		return "NoQuote"
	case KindInvalidAmount:
		return "InvalidAmount"
	case KindSameToken:
		return "SameToken"
	case KindUnknownToken:
		return "UnknownToken"
	case KindSwapInFlight:
		return "SwapInFlight"
	case KindSimulatedQuote:
		return "SimulatedQuote"
	case KindSuperseded:
		return "Superseded"
	default:
		return "Unknown"
	}
}

// Error carries a classified failure with a user-presentable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// E builds a classified error.
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds a classified error around an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the taxonomy kind from err, or KindUnknown when err
// is not a classified error.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// UserMessage returns the message meant for display, falling back to
// the plain error text for unclassified failures.
func UserMessage(err error) string {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// Persistent reports whether the failure should render as a persistent
// banner rather than a transient notification. Network-mismatch and
// missing-wallet conditions stay on screen until resolved; everything
// else is dismissible.
func Persistent(err error) bool {
	switch KindOf(err) {
	case KindWrongNetwork, KindWalletNotInstalled, KindChainNotAdded:
		return true
	default:
		return false
	}
}
