package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eclipse-labs/ibc-program/jmt"
)

var rootHashCmd = &cobra.Command{
	Use:   "root-hash <snapshot-file>",
	Short: "Print the JMT root hash at the snapshot's latest committed version",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := loadStore(args[0])
		version := latestVersion(store)
		root, err := jmt.RootHash(store, version)
		if err != nil {
			exitf("Error computing root hash: %v", err)
		}
		fmt.Printf("version %d: %x\n", version, root)
	},
}
