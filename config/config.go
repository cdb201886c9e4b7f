package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	// Aggregation service.
	BaseURL      string
	APIKey       string
	APISecret    string
	QuoteTimeout time.Duration
	SwapTimeout  time.Duration

	// Wallet.
	TargetChainID int64
	RPCURLs       map[int64]string
	PrivateKey    string

	// Defaults.
	SlippagePercent string
	LogLevel        string
}

var globalConfig *Config

// Load reads configuration from environment variables and an optional
// config file. Missing aggregation credentials are not an error: the
// client then runs in simulated mode and refuses execution.
func Load() (*Config, error) {
	viper.SetConfigName(".dexswap")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	// Set default values
	viper.SetDefault("base_url", "https://www.okx.com/api/v5/dex/aggregator")
	viper.SetDefault("chain_id", 1)
	viper.SetDefault("quote_timeout_ms", 10000)
	viper.SetDefault("swap_timeout_ms", 15000)
	viper.SetDefault("slippage_percent", "0.5")
	viper.SetDefault("log_level", "info")

	// Read from environment variables
	viper.SetEnvPrefix("DEXSWAP")
	viper.AutomaticEnv()

	// Read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		BaseURL:         viper.GetString("base_url"),
		APIKey:          viper.GetString("api_key"),
		APISecret:       viper.GetString("api_secret"),
		QuoteTimeout:    time.Duration(viper.GetInt64("quote_timeout_ms")) * time.Millisecond,
		SwapTimeout:     time.Duration(viper.GetInt64("swap_timeout_ms")) * time.Millisecond,
		TargetChainID:   viper.GetInt64("chain_id"),
		PrivateKey:      viper.GetString("private_key"),
		SlippagePercent: viper.GetString("slippage_percent"),
		LogLevel:        viper.GetString("log_level"),
	}

	cfg.RPCURLs = make(map[int64]string)
	for chainID, url := range viper.GetStringMapString("rpc_urls") {
		var id int64
		if _, err := fmt.Sscanf(chainID, "%d", &id); err != nil {
			return nil, fmt.Errorf("invalid chain id %q in rpc_urls: %w", chainID, err)
		}
		cfg.RPCURLs[id] = url
	}
	// A single DEXSWAP_RPC_URL maps to the target chain.
	if url := viper.GetString("rpc_url"); url != "" {
		cfg.RPCURLs[cfg.TargetChainID] = url
	}

	globalConfig = cfg
	return cfg, nil
}

// Get returns the global configuration.
func Get() *Config {
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		return cfg
	}
	return globalConfig
}

// Set updates the global configuration.
func Set(cfg *Config) {
	globalConfig = cfg
}
