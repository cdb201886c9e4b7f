package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dexswap/pkg/tokens"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "List the known tokens",
	Long: `List the tokens known to dexswap on the target chain, with their
contract addresses and decimal precision.

Examples:
  dexswap tokens
  dexswap tokens --json`,
	Run: runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
}

func runTokens(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	known := tokens.All()

	if jsonOutput {
		output := make([]map[string]interface{}, 0, len(known))
		for _, t := range known {
			output = append(output, map[string]interface{}{
				"symbol":   t.Symbol,
				"address":  t.Address,
				"decimals": t.Decimals,
				"native":   t.Native,
			})
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                        KNOWN TOKENS")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Println()

	for _, t := range known {
		label := t.Symbol
		if t.Native {
			label += " (native)"
		}
		fmt.Printf("  %-14s %s  decimals=%d\n", color.YellowString(label), t.Address, t.Decimals)
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}
