package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dexswap/pkg/amount"
	"dexswap/pkg/parser"
	"dexswap/pkg/swap"
	"dexswap/pkg/types"
)

var quoteSlippage string

var quoteCmd = &cobra.Command{
	Use:   "quote <amount> <source-token> to <dest-token>",
	Short: "Fetch a best-price swap quote",
	Long: `Request a best-price quote from the aggregation service without
executing anything.

Examples:
  dexswap quote 1.5 ETH to USDC
  dexswap quote 100 USDC to DAI --slippage 1`,
	Args: cobra.MinimumNArgs(1),
	Run:  runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().StringVar(&quoteSlippage, "slippage", "", "Slippage tolerance in percent (default from config)")
}

func runQuote(cmd *cobra.Command, args []string) {
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

	quote, err := fetchQuote(app, params, quoteSlippage, jsonOutput)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		output := map[string]interface{}{
			"from_token":        quote.FromSymbol,
			"to_token":          quote.ToSymbol,
			"in_amount":         quote.InAmount,
			"out_amount":        quote.OutAmount,
			"estimated_gas":     quote.EstimatedGas,
			"price_impact_pct":  quote.PriceImpactPercent,
			"router":            quote.RouterLabel,
			"simulated":         quote.Simulated,
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	displayQuote(quote, effectiveSlippage(app, quoteSlippage))
}

// fetchQuote connects the wallet and runs the quote flow shared by the
// quote and swap commands.
func fetchQuote(app *app, params *swap.QuoteParams, slippage string, quiet bool) (*types.SwapQuote, error) {
	if err := app.connectWallet(context.Background(), quiet); err != nil {
		return nil, err
	}

	params.SlippagePercent = effectiveSlippage(app, slippage)

	var s *spinner.Spinner
	if !quiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = " Fetching quote..."
		s.Start()
	}
	quote, err := app.orchestrator.RequestQuote(context.Background(), *params)
	if s != nil {
		s.Stop()
	}
	return quote, err
}

func effectiveSlippage(app *app, flag string) string {
	if flag != "" {
		return flag
	}
	return app.cfg.SlippagePercent
}

func displayQuote(quote *types.SwapQuote, slippage string) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                       SWAP QUOTE")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  From:             %s %s\n",
		formatBaseUnits(quote.InAmount, quote.FromDecimals), color.YellowString(quote.FromSymbol))
	fmt.Printf("  To:               ~%s %s\n",
		formatBaseUnits(quote.OutAmount, quote.ToDecimals), color.YellowString(quote.ToSymbol))

	if min, err := swap.MinimumReceived(quote, slippage); err == nil {
		fmt.Printf("  Minimum Received: %s %s (at %s%% slippage)\n", min, quote.ToSymbol, slippage)
	}
	if quote.PriceImpactPercent != "" {
		fmt.Printf("  Price Impact:     %s%%\n", quote.PriceImpactPercent)
	}
	if quote.EstimatedGas != "" {
		fmt.Printf("  Estimated Gas:    %s\n", quote.EstimatedGas)
	}
	if quote.RouterLabel != "" {
		fmt.Printf("  Route:            %s\n", quote.RouterLabel)
	}

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")

	if quote.Simulated {
		color.Yellow("! This is a SIMULATED quote (no service credentials configured).")
		color.Yellow("  Simulated quotes cannot be executed.\n")
	}
}

func formatBaseUnits(value string, decimals uint8) string {
	v, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return value
	}
	return amount.Format(v, decimals)
}
