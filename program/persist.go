package program

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"

	"github.com/eclipse-labs/ibc-program/jmt"
)

// Persist Borsh-encodes store's entire snapshot into the one account
// byte slice a host runtime would write back (§4.C: "as far as this
// module reaches toward durability").
func Persist(store *jmt.MemStore) ([]byte, error) {
	snap := store.Snapshot()
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.Encode(snap); err != nil {
		return nil, fmt.Errorf("program: persist: %w", err)
	}
	return buf.Bytes(), nil
}

// Load rebuilds a MemStore from an account's raw bytes, or returns a
// fresh empty store if data is empty (the account has never been
// initialized). Neither Load nor Dispatch restricts which instruction
// then runs against that empty store.
func Load(data []byte) (*jmt.MemStore, error) {
	if len(data) == 0 {
		return jmt.NewMemStore(), nil
	}
	var snap jmt.Snapshot
	dec := bin.NewBorshDecoder(data)
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("program: load: %w", err)
	}
	return jmt.RestoreMemStore(snap), nil
}
