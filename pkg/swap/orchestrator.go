// Package swap drives the two-step swap flow: request a quote from the
// aggregation service, then on confirmation fetch the transaction
// payload for the exact quoted parameters and hand it to the wallet
// for signing. The orchestrator owns the quote and pending-swap state;
// it only reads the wallet session.
package swap

import (
	"context"
	"math/big"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"dexswap/pkg/amount"
	"dexswap/pkg/tokens"
	"dexswap/pkg/types"
	"dexswap/pkg/wallet"
)

// QuoteService is the aggregation-service surface the orchestrator
// needs.
type QuoteService interface {
	GetQuote(ctx context.Context, req types.SwapQuoteRequest) (*types.SwapQuote, error)
	GetSwapTransaction(ctx context.Context, req types.SwapQuoteRequest, walletAddress string) (*types.SwapTransaction, error)
	Simulated() bool
}

// SessionReader is the wallet surface the orchestrator needs: session
// snapshots for precondition checks and transaction submission.
type SessionReader interface {
	Session() types.WalletSession
	TargetChain() int64
	SignAndSend(ctx context.Context, tx *types.SwapTransaction) (string, error)
	WaitReceipt(ctx context.Context, txHash string) (*wallet.Receipt, error)
}

// QuoteParams is what the user enters in the swap form.
type QuoteParams struct {
	FromSymbol      string
	ToSymbol        string
	Amount          string
	SlippagePercent string
}

// Result is a completed swap execution.
type Result struct {
	TxHash  string
	Receipt *wallet.Receipt
}

// Orchestrator coordinates quoting and execution. A stored quote is
// always paired with the pending swap capturing the exact parameters
// it was issued for; the pair is created, cleared and replaced
// atomically.
type Orchestrator struct {
	manager SessionReader
	service QuoteService
	logger  *zap.Logger

	mu        sync.Mutex
	quote     *types.SwapQuote
	pending   *types.PendingSwap
	lastErr   error
	seq       uint64
	executing bool
}

// New creates a swap orchestrator.
func New(manager SessionReader, service QuoteService, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		manager: manager,
		service: service,
		logger:  logger.Named("swap"),
	}
}

// Quote returns the currently stored quote, or nil.
func (o *Orchestrator) Quote() *types.SwapQuote {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.quote == nil {
		return nil
	}
	q := *o.quote
	return &q
}

// LastError returns the stored displayable error from the most recent
// failed quote request, or nil.
func (o *Orchestrator) LastError() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// ClearQuote drops the stored quote and pending swap together. Called
// whenever the user changes any swap input.
func (o *Orchestrator) ClearQuote() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.quote = nil
	o.pending = nil
	o.lastErr = nil
}

// RequestQuote validates the parameters, converts the amount to the
// source token's smallest unit and fetches a quote. Any previously
// stored quote is cleared as soon as the new request starts. Overlapping
// calls are safe: only the newest request's result is stored, an older
// in-flight call resolving later is discarded with a Superseded error.
func (o *Orchestrator) RequestQuote(ctx context.Context, params QuoteParams) (*types.SwapQuote, error) {
	req, err := o.buildRequest(params)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.quote = nil
	o.pending = nil
	o.lastErr = nil
	o.seq++
	seq := o.seq
	o.mu.Unlock()

	quote, err := o.service.GetQuote(ctx, *req)

	o.mu.Lock()
	defer o.mu.Unlock()
	if seq != o.seq {
		// A newer request started while this one was in flight.
		return nil, types.E(types.KindSuperseded, "quote superseded by a newer request")
	}
	if err != nil {
		o.quote = nil
		o.pending = nil
		o.lastErr = err
		o.logger.Warn("quote request failed",
			zap.String("kind", types.KindOf(err).String()),
			zap.Error(err))
		return nil, err
	}

	o.quote = quote
	o.pending = &types.PendingSwap{
		SwapQuoteRequest: *req,
		DisplayAmount:    params.Amount,
	}
	o.logger.Info("quote stored",
		zap.String("from", quote.FromSymbol),
		zap.String("to", quote.ToSymbol),
		zap.String("inAmount", quote.InAmount),
		zap.String("outAmount", quote.OutAmount),
		zap.Bool("simulated", quote.Simulated))

	q := *quote
	return &q, nil
}

// buildRequest runs the ordered validation chain: wallet connected,
// correct network, positive numeric amount, distinct tokens. Each
// check short-circuits before any network call.
func (o *Orchestrator) buildRequest(params QuoteParams) (*types.SwapQuoteRequest, error) {
	session := o.manager.Session()
	if session.State != types.Connected {
		return nil, types.E(types.KindNotConnected, "connect a wallet to request quotes")
	}
	if session.ChainID != o.manager.TargetChain() {
		return nil, types.E(types.KindWrongNetwork, "switch to the target network to request quotes")
	}

	entered, err := decimal.NewFromString(params.Amount)
	if err != nil || !entered.IsPositive() {
		return nil, types.E(types.KindInvalidAmount, "enter a positive amount")
	}

	fromSymbol := tokens.Normalize(params.FromSymbol)
	toSymbol := tokens.Normalize(params.ToSymbol)
	if fromSymbol == toSymbol {
		return nil, types.E(types.KindSameToken, "choose two different tokens")
	}

	from, err := tokens.Find(fromSymbol)
	if err != nil {
		return nil, types.Wrap(types.KindUnknownToken, "unknown source token", err)
	}
	to, err := tokens.Find(toSymbol)
	if err != nil {
		return nil, types.Wrap(types.KindUnknownToken, "unknown destination token", err)
	}

	baseUnits, err := amount.Parse(params.Amount, from.Decimals)
	if err != nil || baseUnits.Sign() <= 0 {
		return nil, types.E(types.KindInvalidAmount, "amount is too small to be represented")
	}

	slippage := params.SlippagePercent
	if slippage == "" {
		slippage = "0.5"
	}

	return &types.SwapQuoteRequest{
		ChainID:         o.manager.TargetChain(),
		FromToken:       from.Address,
		ToToken:         to.Address,
		Amount:          params.Amount,
		AmountBaseUnits: baseUnits.String(),
		SlippagePercent: slippage,
	}, nil
}

// ExecuteSwap fetches the transaction payload for the stored pending
// swap and submits it through the wallet. The payload request uses the
// parameters frozen at quote time, never re-read form state. On a
// payload or sign/send failure the quote survives so execution can be
// retried; once the transaction is broadcast the quote is consumed and
// a fresh one is required for any further swap.
func (o *Orchestrator) ExecuteSwap(ctx context.Context) (*Result, error) {
	o.mu.Lock()
	if o.executing {
		o.mu.Unlock()
		return nil, types.E(types.KindSwapInFlight, "a swap is already in progress")
	}
	if o.quote == nil || o.pending == nil {
		o.mu.Unlock()
		return nil, types.E(types.KindNoQuote, "request a quote before swapping")
	}
	if o.quote.Simulated {
		o.mu.Unlock()
		return nil, types.E(types.KindSimulatedQuote, "simulated quotes cannot be executed")
	}
	pending := o.pending
	o.executing = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.executing = false
		o.mu.Unlock()
	}()

	// Time has passed since the quote; the wallet preconditions are
	// re-checked before anything is fetched.
	session := o.manager.Session()
	if session.State != types.Connected {
		return nil, types.E(types.KindNotConnected, "the wallet disconnected; connect and re-quote")
	}
	if session.ChainID != o.manager.TargetChain() {
		return nil, types.E(types.KindWrongNetwork, "the wallet changed network; switch back and retry")
	}

	tx, err := o.service.GetSwapTransaction(ctx, pending.SwapQuoteRequest, session.Account)
	if err != nil {
		o.logger.Warn("swap payload request failed",
			zap.String("kind", types.KindOf(err).String()),
			zap.Error(err))
		return nil, err
	}

	hash, err := o.manager.SignAndSend(ctx, tx)
	if err != nil {
		o.logger.Warn("swap submission failed",
			zap.String("kind", types.KindOf(err).String()),
			zap.Error(err))
		return nil, err
	}

	// The quote is consumed the moment the transaction is broadcast;
	// retrying now would double-execute. A newer quote stored by an
	// overlapping request is left alone.
	o.mu.Lock()
	if o.pending == pending {
		o.quote = nil
		o.pending = nil
	}
	o.mu.Unlock()

	o.logger.Info("swap broadcast", zap.String("txHash", hash))

	receipt, err := o.manager.WaitReceipt(ctx, hash)
	if err != nil {
		return &Result{TxHash: hash}, err
	}
	if !receipt.Success {
		return &Result{TxHash: hash, Receipt: receipt},
			types.E(types.KindProviderError, "the swap transaction reverted on chain")
	}

	o.logger.Info("swap confirmed",
		zap.String("txHash", hash),
		zap.Uint64("block", receipt.BlockNumber))
	return &Result{TxHash: hash, Receipt: receipt}, nil
}

// MinimumReceived computes the guaranteed output under the slippage
// tolerance. The math runs on the decimal-formatted output amount, not
// the smallest-unit integer.
func MinimumReceived(quote *types.SwapQuote, slippagePercent string) (string, error) {
	out, ok := new(big.Int).SetString(quote.OutAmount, 10)
	if !ok {
		return "", types.E(types.KindApplicationError, "quote output amount is not an integer")
	}

	outValue, err := decimal.NewFromString(amount.Format(out, quote.ToDecimals))
	if err != nil {
		return "", err
	}
	slippage, err := decimal.NewFromString(slippagePercent)
	if err != nil {
		return "", types.E(types.KindInvalidAmount, "slippage tolerance is not a number")
	}

	factor := decimal.NewFromInt(1).Sub(slippage.Div(decimal.NewFromInt(100)))
	min := outValue.Mul(factor).Truncate(int32(quote.ToDecimals))
	return min.String(), nil
}
