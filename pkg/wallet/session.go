package wallet

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"dexswap/pkg/amount"
	"dexswap/pkg/types"
)

const balanceRefreshTimeout = 10 * time.Second

// nativeDecimals is the precision of the native asset on the target
// chain.
const nativeDecimals = 18

// Manager owns the wallet session: it is the only component that talks
// to the Provider and the only listener on its event stream. All state
// transitions, whether caller-driven or provider-pushed, go through
// the manager so the session is mutated one change at a time.
type Manager struct {
	provider    Provider
	targetChain int64
	logger      *zap.Logger

	mu         sync.Mutex
	session    types.WalletSession
	connecting bool
	listening  bool
	closed     bool

	done     chan struct{}
	loopDone chan struct{}
}

// NewManager creates a session manager bound to its provider. The
// provider must not be shared with other components.
func NewManager(provider Provider, targetChain int64, logger *zap.Logger) *Manager {
	return &Manager{
		provider:    provider,
		targetChain: targetChain,
		logger:      logger.Named("wallet"),
		session:     types.WalletSession{Balance: "0"},
		done:        make(chan struct{}),
	}
}

// Session returns a snapshot of the current wallet session.
func (m *Manager) Session() types.WalletSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// TargetChain returns the chain the application requires.
func (m *Manager) TargetChain() int64 {
	return m.targetChain
}

// Connect requests account access, resolves the active chain and
// refreshes the balance. If the wallet sits on the wrong chain a
// network switch is attempted automatically; the switch outcome does
// not fail the connect. Returns the connected account.
func (m *Manager) Connect(ctx context.Context) (string, error) {
	if !m.provider.Available() {
		return "", types.E(types.KindWalletNotInstalled, "no wallet is available; install or configure one first")
	}

	m.mu.Lock()
	if m.connecting {
		m.mu.Unlock()
		return "", types.E(types.KindRequestAlreadyPending, "a connect request is already in progress")
	}
	m.connecting = true
	m.session.State = types.Connecting
	m.mu.Unlock()

	account, chainID, err := m.establish(ctx)

	m.mu.Lock()
	m.connecting = false
	if err != nil {
		m.resetLocked()
		m.mu.Unlock()
		return "", err
	}
	m.session.Account = account
	m.session.ChainID = chainID
	m.session.State = types.Connected
	m.mu.Unlock()

	m.startListening()

	if err := m.RefreshBalance(ctx); err != nil {
		m.logger.Warn("balance refresh after connect failed", zap.Error(err))
	}

	if chainID != m.targetChain {
		m.logger.Info("wallet is on the wrong chain, requesting switch",
			zap.Int64("current", chainID),
			zap.Int64("target", m.targetChain))
		if err := m.SwitchNetwork(ctx, m.targetChain); err != nil {
			m.logger.Warn("automatic network switch failed", zap.Error(err))
		}
	}

	m.logger.Info("wallet connected",
		zap.String("account", account),
		zap.Int64("chainId", chainID))
	return account, nil
}

// establish performs the provider round trips of a connect attempt.
func (m *Manager) establish(ctx context.Context) (string, int64, error) {
	accounts, err := m.provider.RequestAccounts(ctx)
	if err != nil {
		return "", 0, classifyProviderError(err)
	}
	if len(accounts) == 0 {
		return "", 0, types.E(types.KindUserRejected, "the wallet did not authorize any account")
	}

	chainID, err := m.provider.ChainID(ctx)
	if err != nil {
		return "", 0, classifyProviderError(err)
	}
	return accounts[0], chainID, nil
}

// Restore silently re-establishes a previously authorized session
// without prompting. Returns false when no prior authorization exists.
func (m *Manager) Restore(ctx context.Context) (bool, error) {
	if !m.provider.Available() {
		return false, nil
	}

	accounts, err := m.provider.Accounts(ctx)
	if err != nil {
		return false, classifyProviderError(err)
	}
	if len(accounts) == 0 {
		return false, nil
	}

	chainID, err := m.provider.ChainID(ctx)
	if err != nil {
		return false, classifyProviderError(err)
	}

	m.mu.Lock()
	m.session.Account = accounts[0]
	m.session.ChainID = chainID
	m.session.State = types.Connected
	m.mu.Unlock()

	m.startListening()

	if err := m.RefreshBalance(ctx); err != nil {
		m.logger.Warn("balance refresh after restore failed", zap.Error(err))
	}
	return true, nil
}

// Disconnect resets the session locally. Wallet disconnection is a
// local concept: the provider has no disconnect operation, so no
// provider call is made and the operation cannot fail.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
	m.logger.Info("wallet disconnected")
}

// SwitchNetwork asks the provider to change its active chain. The
// session's chain id is not touched here; it updates when the
// chain-changed event arrives.
func (m *Manager) SwitchNetwork(ctx context.Context, chainID int64) error {
	if err := m.provider.SwitchChain(ctx, chainID); err != nil {
		return classifyProviderError(err)
	}
	return nil
}

// RefreshBalance re-reads the native balance of the connected account.
// A no-op while disconnected.
func (m *Manager) RefreshBalance(ctx context.Context) error {
	m.mu.Lock()
	account := m.session.Account
	connected := m.session.State == types.Connected
	m.mu.Unlock()

	if !connected {
		return nil
	}

	balance, err := m.provider.BalanceAt(ctx, account)
	if err != nil {
		return classifyProviderError(err)
	}

	m.mu.Lock()
	// The account may have changed or disconnected while the read was
	// in flight; only apply the balance if it still matches.
	if m.session.State == types.Connected && m.session.Account == account {
		m.session.Balance = amount.Format(balance, nativeDecimals)
	}
	m.mu.Unlock()
	return nil
}

// SignAndSend submits the transaction for signing and broadcast and
// returns the transaction hash. The wallet must be connected on the
// target chain; both conditions are checked before the provider is
// contacted. Confirmation is a separate step (WaitReceipt).
func (m *Manager) SignAndSend(ctx context.Context, tx *types.SwapTransaction) (string, error) {
	m.mu.Lock()
	state := m.session.State
	chainID := m.session.ChainID
	m.mu.Unlock()

	if state != types.Connected {
		return "", types.E(types.KindNotConnected, "connect a wallet before sending transactions")
	}
	if chainID != m.targetChain {
		return "", types.E(types.KindWrongNetwork, "the wallet is on the wrong network; switch first")
	}

	hash, err := m.provider.SendTransaction(ctx, tx)
	if err != nil {
		return "", classifyProviderError(err)
	}
	return hash, nil
}

// WaitReceipt waits for the transaction to confirm and refreshes the
// balance once it has.
func (m *Manager) WaitReceipt(ctx context.Context, txHash string) (*Receipt, error) {
	receipt, err := m.provider.WaitMined(ctx, txHash)
	if err != nil {
		return nil, classifyProviderError(err)
	}

	refreshCtx, cancel := context.WithTimeout(context.Background(), balanceRefreshTimeout)
	defer cancel()
	if err := m.RefreshBalance(refreshCtx); err != nil {
		m.logger.Warn("balance refresh after confirmation failed", zap.Error(err))
	}
	return receipt, nil
}

// Close tears down the event listener and the provider. Safe to call
// more than once.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	listening := m.listening
	m.mu.Unlock()

	close(m.done)
	m.provider.Close()
	if listening {
		<-m.loopDone
	}
}

// startListening launches the event loop exactly once, no matter how
// many times connect or restore run.
func (m *Manager) startListening() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listening {
		return
	}
	m.listening = true
	m.loopDone = make(chan struct{})
	go m.eventLoop()
}

// eventLoop applies provider events to the session one at a time.
func (m *Manager) eventLoop() {
	defer close(m.loopDone)
	events := m.provider.Events()

	for {
		select {
		case <-m.done:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			m.handleEvent(event)
		}
	}
}

func (m *Manager) handleEvent(event Event) {
	switch event.Kind {
	case EventAccountsChanged:
		if len(event.Accounts) == 0 {
			m.mu.Lock()
			m.resetLocked()
			m.mu.Unlock()
			m.logger.Info("wallet reported no accounts, session reset")
			return
		}
		m.mu.Lock()
		if m.session.State != types.Connected {
			m.mu.Unlock()
			return
		}
		m.session.Account = event.Accounts[0]
		m.mu.Unlock()
		m.logger.Info("active account changed", zap.String("account", event.Accounts[0]))

		refreshCtx, cancel := context.WithTimeout(context.Background(), balanceRefreshTimeout)
		if err := m.RefreshBalance(refreshCtx); err != nil {
			m.logger.Warn("balance refresh after account change failed", zap.Error(err))
		}
		cancel()

	case EventChainChanged:
		m.mu.Lock()
		m.session.ChainID = event.ChainID
		m.mu.Unlock()
		m.logger.Info("active chain changed", zap.Int64("chainId", event.ChainID))

	case EventDisconnect:
		m.mu.Lock()
		m.resetLocked()
		m.mu.Unlock()
		m.logger.Info("provider disconnected, session reset")
	}
}

// resetLocked returns the session to its disconnected zero state. The
// caller holds the mutex.
func (m *Manager) resetLocked() {
	m.session = types.WalletSession{
		Account: "",
		ChainID: 0,
		Balance: "0",
		State:   types.Disconnected,
	}
}
