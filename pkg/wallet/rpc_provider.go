package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"dexswap/pkg/types"
)

const (
	defaultDialTimeout  = 10 * time.Second
	receiptPollInterval = 2 * time.Second
	eventBuffer         = 16
)

// RPCProviderConfig configures the node-backed provider. RPCURLs maps
// chain ids to endpoints; SwitchChain only succeeds for chains that
// have an endpoint configured.
type RPCProviderConfig struct {
	RPCURLs     map[int64]string
	ChainID     int64
	PrivateKey  string
	DialTimeout time.Duration
}

// rpcProvider implements Provider on top of go-ethereum's ethclient
// with a locally configured signing key. It stands in for the
// browser's injected wallet: SwitchChain re-dials the endpoint for the
// target chain and announces the change through the event stream.
type rpcProvider struct {
	cfg    RPCProviderConfig
	logger *zap.Logger

	mu      sync.Mutex
	client  *ethclient.Client
	chainID int64
	closed  bool

	key     *ecdsa.PrivateKey
	address common.Address

	events chan Event
}

// NewRPCProvider builds a Provider from the config. A missing private
// key yields a provider whose capability probe fails rather than an
// error, matching the absent-wallet-extension case.
func NewRPCProvider(cfg RPCProviderConfig, logger *zap.Logger) (Provider, error) {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}

	p := &rpcProvider{
		cfg:     cfg,
		chainID: cfg.ChainID,
		events:  make(chan Event, eventBuffer),
		logger:  logger.Named("provider"),
	}

	if cfg.PrivateKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid private key: %w", err)
		}
		p.key = key
		p.address = crypto.PubkeyToAddress(key.PublicKey)
	}

	return p, nil
}

func (p *rpcProvider) Available() bool {
	return p.key != nil && p.cfg.RPCURLs[p.chainID] != ""
}

func (p *rpcProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	if p.key == nil {
		return nil, fmt.Errorf("no signing key configured")
	}
	if _, err := p.activeClient(ctx); err != nil {
		return nil, err
	}
	return []string{p.address.Hex()}, nil
}

func (p *rpcProvider) Accounts(ctx context.Context) ([]string, error) {
	if p.key == nil {
		return nil, nil
	}
	return []string{p.address.Hex()}, nil
}

func (p *rpcProvider) ChainID(ctx context.Context) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.chainID, nil
}

func (p *rpcProvider) BalanceAt(ctx context.Context, account string) (*big.Int, error) {
	client, err := p.activeClient(ctx)
	if err != nil {
		return nil, err
	}
	return client.BalanceAt(ctx, common.HexToAddress(account), nil)
}

// SwitchChain re-dials the endpoint configured for the target chain.
// The new chain id is announced through the event stream only, so
// observers see the same asynchronous contract as with an injected
// wallet.
func (p *rpcProvider) SwitchChain(ctx context.Context, chainID int64) error {
	url, ok := p.cfg.RPCURLs[chainID]
	if !ok || url == "" {
		return &RPCError{Code: codeChainNotAdded, Message: fmt.Sprintf("no endpoint configured for chain %d", chainID)}
	}

	dialCtx, cancel := context.WithTimeout(ctx, p.cfg.DialTimeout)
	defer cancel()
	client, err := ethclient.DialContext(dialCtx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to chain %d: %w", chainID, err)
	}

	p.mu.Lock()
	if p.client != nil {
		p.client.Close()
	}
	p.client = client
	p.chainID = chainID
	closed := p.closed
	p.mu.Unlock()

	p.logger.Info("switched active chain", zap.Int64("chainId", chainID))
	if !closed {
		p.emit(Event{Kind: EventChainChanged, ChainID: chainID})
	}
	return nil
}

func (p *rpcProvider) SendTransaction(ctx context.Context, tx *types.SwapTransaction) (string, error) {
	client, err := p.activeClient(ctx)
	if err != nil {
		return "", err
	}

	to := common.HexToAddress(tx.To)
	value, err := parseBig(tx.Value)
	if err != nil {
		return "", fmt.Errorf("invalid transaction value: %w", err)
	}
	data, err := hexutil.Decode(tx.Data)
	if err != nil {
		return "", fmt.Errorf("invalid transaction calldata: %w", err)
	}

	nonce, err := client.PendingNonceAt(ctx, p.address)
	if err != nil {
		return "", fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := parseBig(tx.GasPrice)
	if err != nil || gasPrice.Sign() == 0 {
		gasPrice, err = client.SuggestGasPrice(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to get gas price: %w", err)
		}
	}

	gasLimit, err := parseUint(tx.GasLimit)
	if err != nil || gasLimit == 0 {
		msg := ethereum.CallMsg{From: p.address, To: &to, Value: value, Data: data}
		estimated, estimateErr := client.EstimateGas(ctx, msg)
		if estimateErr != nil {
			return "", fmt.Errorf("gas required exceeds allowance or always failing transaction: %w", estimateErr)
		}
		gasLimit = estimated * 120 / 100
	}

	balance, err := client.BalanceAt(ctx, p.address, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get balance: %w", err)
	}
	cost := new(big.Int).Add(value, new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(gasLimit)))
	if balance.Cmp(cost) < 0 {
		return "", fmt.Errorf("insufficient funds: have %s wei, need %s wei", balance, cost)
	}

	p.mu.Lock()
	chainID := p.chainID
	p.mu.Unlock()

	rawTx := ethtypes.NewTransaction(nonce, to, value, gasLimit, gasPrice, data)
	signedTx, err := ethtypes.SignTx(rawTx, ethtypes.NewEIP155Signer(big.NewInt(chainID)), p.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := client.SendTransaction(ctx, signedTx); err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	hash := signedTx.Hash().Hex()
	p.logger.Info("transaction broadcast",
		zap.String("hash", hash),
		zap.String("to", tx.To),
		zap.Uint64("gasLimit", gasLimit))
	return hash, nil
}

func (p *rpcProvider) WaitMined(ctx context.Context, txHash string) (*Receipt, error) {
	client, err := p.activeClient(ctx)
	if err != nil {
		return nil, err
	}

	hash := common.HexToHash(txHash)
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := client.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			return &Receipt{
				TxHash:      txHash,
				BlockNumber: receipt.BlockNumber.Uint64(),
				GasUsed:     receipt.GasUsed,
				Success:     receipt.Status == ethtypes.ReceiptStatusSuccessful,
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("transaction %s not confirmed: %w", txHash, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (p *rpcProvider) Events() <-chan Event {
	return p.events
}

func (p *rpcProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.client != nil {
		p.client.Close()
		p.client = nil
	}
	close(p.events)
}

// activeClient returns the client for the current chain, dialing
// lazily on first use.
func (p *rpcProvider) activeClient(ctx context.Context) (*ethclient.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, fmt.Errorf("provider is closed")
	}
	if p.client != nil {
		return p.client, nil
	}

	url := p.cfg.RPCURLs[p.chainID]
	if url == "" {
		return nil, fmt.Errorf("no endpoint configured for chain %d", p.chainID)
	}

	dialCtx, cancel := context.WithTimeout(ctx, p.cfg.DialTimeout)
	defer cancel()
	client, err := ethclient.DialContext(dialCtx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC endpoint: %w", err)
	}
	p.client = client
	return client, nil
}

func (p *rpcProvider) emit(event Event) {
	select {
	case p.events <- event:
	default:
		p.logger.Warn("event channel full, dropping provider event")
	}
}

// parseBig reads a decimal or 0x-prefixed integer string; empty means
// zero.
func parseBig(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return big.NewInt(0), nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return hexutil.DecodeBig(s)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("not a valid integer: %s", s)
	}
	return v, nil
}

func parseUint(s string) (uint64, error) {
	v, err := parseBig(s)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("value out of range: %s", s)
	}
	return v.Uint64(), nil
}
