package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var watchStatus bool

// pendingCheckTimeout bounds the one-shot receipt lookup; a transaction
// that has not confirmed within it is reported as pending.
const pendingCheckTimeout = 5 * time.Second

var statusCmd = &cobra.Command{
	Use:   "status <tx-hash>",
	Short: "Check the status of a swap transaction",
	Long: `Check whether a swap transaction has been confirmed on chain.

Examples:
  dexswap status 0x1234...abcd
  dexswap status 0x1234...abcd --watch`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Wait until the transaction confirms")
}

func runStatus(cmd *cobra.Command, args []string) {
	txHash := args[0]
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	app, err := newApp(verbose)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer app.Close()

	ctx := context.Background()
	if !watchStatus {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, pendingCheckTimeout)
		defer cancel()
	}

	var s *spinner.Spinner
	if !jsonOutput && watchStatus {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = " Waiting for confirmation..."
		s.Start()
	}
	receipt, err := app.manager.WaitReceipt(ctx, txHash)
	if s != nil {
		s.Stop()
	}

	if err != nil {
		if !watchStatus {
			// Not found inside the lookup window: still pending.
			if jsonOutput {
				fmt.Printf(`{"tx_hash": %q, "status": "pending"}`+"\n", txHash)
			} else {
				fmt.Printf("\n  Transaction: %s\n  Status:      %s\n\n",
					color.CyanString(txHash), color.YellowString("PENDING"))
			}
			return
		}
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		output := map[string]interface{}{
			"tx_hash":  receipt.TxHash,
			"status":   statusLabel(receipt.Success),
			"block":    receipt.BlockNumber,
			"gas_used": receipt.GasUsed,
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                    TRANSACTION STATUS")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  Transaction: %s\n", color.CyanString(receipt.TxHash))
	if receipt.Success {
		fmt.Printf("  Status:      %s\n", color.GreenString("CONFIRMED"))
	} else {
		fmt.Printf("  Status:      %s\n", color.RedString("REVERTED"))
	}
	fmt.Printf("  Block:       %d\n", receipt.BlockNumber)
	fmt.Printf("  Gas Used:    %d\n", receipt.GasUsed)

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}

func statusLabel(success bool) string {
	if success {
		return "confirmed"
	}
	return "reverted"
}
