package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dexswap/pkg/types"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Connect the wallet and show the session state",
	Long: `Connect the configured wallet (restoring a prior session silently when
possible) and display the account, active chain and native balance.

Examples:
  dexswap balance
  dexswap balance --json`,
	Run: runBalance,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func runBalance(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	app, err := newApp(verbose)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.connectWallet(context.Background(), jsonOutput); err != nil {
		printError(err)
		os.Exit(1)
	}

	session := app.manager.Session()

	if jsonOutput {
		output := map[string]interface{}{
			"account":  session.Account,
			"chain_id": session.ChainID,
			"balance":  session.Balance,
			"state":    session.State.String(),
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                      WALLET SESSION")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  Account:  %s\n", color.CyanString(session.Account))
	fmt.Printf("  Chain:    %d\n", session.ChainID)
	fmt.Printf("  Balance:  %s ETH\n", color.YellowString(session.Balance))
	fmt.Printf("  State:    %s\n", session.State)

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")

	if session.ChainID != app.manager.TargetChain() {
		printError(types.E(types.KindWrongNetwork,
			fmt.Sprintf("the wallet is on chain %d; switch to chain %d to swap",
				session.ChainID, app.manager.TargetChain())))
	}
}
