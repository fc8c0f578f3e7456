package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eclipse-labs/ibc-program/path"
)

var getCmd = &cobra.Command{
	Use:   "get <snapshot-file> <path-string>",
	Short: "Print the raw stored bytes at a canonical storage path",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		store := loadStore(args[0])
		version := latestVersion(store)
		kh := path.KeyHash(rawPath(args[1]))
		value, ok, err := store.GetValueOption(version, kh)
		if err != nil {
			exitf("Error reading value: %v", err)
		}
		if !ok {
			fmt.Printf("%s: not present at version %d\n", args[1], version)
			return
		}
		fmt.Printf("%s (version %d, %d bytes):\n%x\n", args[1], version, len(value), value)
	},
}
