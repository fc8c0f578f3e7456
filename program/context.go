package program

import (
	"go.uber.org/zap"

	solanago "github.com/gagliardetto/solana-go"
)

// ProgramContext is the smallest interface between this module and a
// host runtime's instruction processor (§4.G, §1 "stay host-agnostic").
// StorageData points at the program-owned account's current byte
// buffer; Dispatch reads it, runs the instruction, and on success
// overwrites it in place with the post-commit snapshot — the same
// mutable-account-data convention a Solana AccountInfo gives a program.
type ProgramContext struct {
	StorageData *[]byte
	Signer      solanago.PublicKey
	Slot        uint64
	UnixNano    int64
	Logger      *zap.Logger

	// ExtraAccounts holds the ordered byte contents of the chunk-buffer
	// accounts an oversized instruction was split across (§4.G), one
	// entry per account referenced ahead of the final "last part" one.
	// Empty for an instruction that fits in a single transaction.
	ExtraAccounts [][]byte

	// BufferData points at the scratch chunk-buffer account's bytes for
	// a WriteTxBuffer instruction (§4.G); nil for every other kind.
	// Create allocates *BufferData to BufferSize before writing; Reuse
	// writes into the existing allocation at Offset.
	BufferData *[]byte
}
