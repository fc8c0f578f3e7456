package main

import (
	"fmt"
	"os"

	"github.com/eclipse-labs/ibc-program/jmt"
	"github.com/eclipse-labs/ibc-program/program"
)

// loadStore reads a program account snapshot file and rebuilds the
// in-memory store from it, exiting on any failure the way the
// teacher's keypair/wallet helpers do.
func loadStore(snapshotPath string) *jmt.MemStore {
	data, err := os.ReadFile(snapshotPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading snapshot: %v\n", err)
		os.Exit(1)
	}
	store, err := program.Load(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding snapshot: %v\n", err)
		os.Exit(1)
	}
	return store
}

func latestVersion(store *jmt.MemStore) jmt.Version {
	version, ok := store.LatestVersion()
	if !ok {
		fmt.Fprintln(os.Stderr, "snapshot has never been committed")
		os.Exit(1)
	}
	return version
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// rawPath lets the inspector address any storage path by its canonical
// string form without needing the caller to know which path.Path
// variant produced it.
type rawPath string

func (p rawPath) String() string { return string(p) }
