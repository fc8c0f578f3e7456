package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eclipse-labs/ibc-program/jmt"
	"github.com/eclipse-labs/ibc-program/path"
	"github.com/eclipse-labs/ibc-program/proof"
)

var proveCmd = &cobra.Command{
	Use:   "prove <snapshot-file> <path-string>",
	Short: "Build and locally verify an ICS-23 proof for a storage path",
	Long:  `prove builds an existence proof if the path currently holds a value, or a non-existence proof otherwise, and immediately verifies the proof it built against the snapshot's root hash as a sanity check.`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		store := loadStore(args[0])
		version := latestVersion(store)
		root, err := jmt.RootHash(store, version)
		if err != nil {
			exitf("Error computing root hash: %v", err)
		}
		kh := path.KeyHash(rawPath(args[1]))

		value, ok, err := store.GetValueOption(version, kh)
		if err != nil {
			exitf("Error reading value: %v", err)
		}
		if ok {
			existence, writeVersion, err := jmt.ExistenceProof(store, version, kh)
			if err != nil {
				exitf("Error building existence proof: %v", err)
			}
			fmt.Printf("existence proof for %q (written at version %d, %d inner steps)\n", args[1], writeVersion, len(existence.Path))
			mp := proof.ToMerkleProof(existence)
			verified := proof.VerifyMembership(path.CommitmentPrefix, mp, root[:], args[1], value)
			fmt.Printf("verifies against root %x: %v\n", root, verified)
			return
		}

		nonExistence, err := jmt.NonExistenceProof(store, version, kh, []byte(args[1]))
		if err != nil {
			exitf("Error building non-existence proof: %v", err)
		}
		fmt.Printf("non-existence proof for %q\n", args[1])
		mp := proof.ToNonMembershipMerkleProof(nonExistence)
		verified := proof.VerifyNonMembership(path.CommitmentPrefix, mp, root[:], args[1])
		fmt.Printf("verifies against root %x: %v\n", root, verified)
	},
}
