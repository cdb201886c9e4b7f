package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dexswap/pkg/types"
)

var rootCmd = &cobra.Command{
	Use:   "dexswap",
	Short: "A CLI for best-price token swaps through a DEX aggregator",
	Long: `dexswap is a command-line DEX front-end: it connects a wallet,
fetches best-price swap quotes from an aggregation service and submits
the resulting transaction for on-chain execution.

Examples:
  dexswap balance
  dexswap quote 1.5 ETH to USDC
  dexswap swap 1.5 ETH to USDC --slippage 0.5
  dexswap tokens`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

// printError renders a failure the way the web UI distinguishes them:
// conditions the user must resolve (wrong network, missing wallet)
// stay as a prominent warning, everything else is a transient error
// line.
func printError(err error) {
	if types.Persistent(err) {
		color.Yellow("\n! %s\n\n", types.UserMessage(err))
		return
	}
	color.Red("\nError: %s\n\n", types.UserMessage(err))
}
