package cmd

import (
	"context"
	"time"

	"github.com/briandowns/spinner"
	"go.uber.org/zap"

	"dexswap/config"
	"dexswap/pkg/aggregator"
	"dexswap/pkg/logger"
	"dexswap/pkg/swap"
	"dexswap/pkg/wallet"
)

// app wires the core components together for a command invocation.
type app struct {
	cfg          *config.Config
	log          *zap.Logger
	manager      *wallet.Manager
	orchestrator *swap.Orchestrator
	client       *aggregator.Client
}

func newApp(verbose bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	log, err := logger.New(level)
	if err != nil {
		return nil, err
	}

	provider, err := wallet.NewRPCProvider(wallet.RPCProviderConfig{
		RPCURLs:    cfg.RPCURLs,
		ChainID:    cfg.TargetChainID,
		PrivateKey: cfg.PrivateKey,
	}, log)
	if err != nil {
		return nil, err
	}

	manager := wallet.NewManager(provider, cfg.TargetChainID, log)
	client := aggregator.New(aggregator.Config{
		BaseURL:      cfg.BaseURL,
		APIKey:       cfg.APIKey,
		APISecret:    cfg.APISecret,
		QuoteTimeout: cfg.QuoteTimeout,
		SwapTimeout:  cfg.SwapTimeout,
	}, log)

	return &app{
		cfg:          cfg,
		log:          log,
		manager:      manager,
		orchestrator: swap.New(manager, client, log),
		client:       client,
	}, nil
}

func (a *app) Close() {
	a.manager.Close()
	_ = a.log.Sync()
}

// connectWallet restores a prior session silently when possible and
// prompts for a fresh connection otherwise.
func (a *app) connectWallet(ctx context.Context, quiet bool) error {
	var s *spinner.Spinner
	if !quiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = " Connecting wallet..."
		s.Start()
		defer s.Stop()
	}

	restored, err := a.manager.Restore(ctx)
	if err != nil {
		return err
	}
	if restored {
		return nil
	}

	if _, err := a.manager.Connect(ctx); err != nil {
		return err
	}
	return nil
}
