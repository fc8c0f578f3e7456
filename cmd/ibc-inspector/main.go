// Command ibc-inspector is a read-only debug tool over a program
// account's JMT snapshot (SPEC_FULL.md §1.1/§2.1, grounded on
// tools/solana-ibc's cobra-rootCmd-plus-subcommand layout). It never
// writes back to the account it reads.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ibc-inspector",
	Short: "Debug tool for inspecting an IBC storage account snapshot",
	Long:  `ibc-inspector reads a program account's Borsh-encoded JMT snapshot and prints roots, values, and ICS-23 proofs from it.`,
}

func init() {
	rootCmd.AddCommand(rootHashCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(proveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
