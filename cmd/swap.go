package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dexswap/pkg/parser"
)

var (
	swapSlippage string
	noConfirm    bool
)

var swapCmd = &cobra.Command{
	Use:   "swap <amount> <source-token> to <dest-token>",
	Short: "Quote and execute a token swap",
	Long: `Swap tokens through the aggregation service: fetch a best-price
quote, confirm it, then sign and broadcast the swap transaction with
the connected wallet.

Examples:
  dexswap swap 1.5 ETH to USDC
  dexswap swap 100 USDC to DAI --slippage 1
  dexswap swap 0.5 ETH to USDT --yes`,
	Args: cobra.MinimumNArgs(1),
	Run:  runSwap,
}

func init() {
	rootCmd.AddCommand(swapCmd)

	swapCmd.Flags().StringVar(&swapSlippage, "slippage", "", "Slippage tolerance in percent (default from config)")
	swapCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
}

func runSwap(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	params, err := parser.ParseSwapCommand(strings.Join(args, " "))
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	app, err := newApp(verbose)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer app.Close()

	quote, err := fetchQuote(app, params, swapSlippage, jsonOutput)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if !jsonOutput {
		displayQuote(quote, effectiveSlippage(app, swapSlippage))
	}

	// Ask for confirmation
	if !noConfirm && !jsonOutput {
		if !confirmSwap() {
			fmt.Println("\nSwap cancelled.")
			os.Exit(0)
		}
	}

	var s *spinner.Spinner
	if !jsonOutput {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = " Executing swap..."
		s.Start()
	}
	result, err := app.orchestrator.ExecuteSwap(context.Background())
	if s != nil {
		s.Stop()
	}

	if err != nil {
		printError(err)
		// The quote survives a failed execution; point at the retry.
		if app.orchestrator.Quote() != nil && !jsonOutput {
			color.Yellow("The quote is still valid; run the command again to retry.\n")
		}
		os.Exit(1)
	}

	if jsonOutput {
		output := map[string]interface{}{
			"tx_hash": result.TxHash,
			"status":  "confirmed",
			"block":   result.Receipt.BlockNumber,
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	color.Green("\nSwap confirmed!")
	fmt.Printf("  Transaction: %s\n", color.CyanString(result.TxHash))
	fmt.Printf("  Block:       %d\n", result.Receipt.BlockNumber)
	fmt.Printf("  Gas Used:    %d\n", result.Receipt.GasUsed)
	fmt.Printf("  New Balance: %s ETH\n\n", app.manager.Session().Balance)
}

func confirmSwap() bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("\nProceed with swap? (y/N): ")

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
