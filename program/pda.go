// Package program is the single entrypoint a host Solana-style runtime
// calls: it owns the one program-derived storage account this module
// is given, decodes the instruction data handed to it, and dispatches
// to the ibc handler (§4.G). PDA derivation follows the teacher's
// convention in e2e/interchaintestv8/solana/pda.go: a fixed seed string
// plus the caller's program id, panicking only on the
// off-curve-exhaustion case solanago.FindProgramAddress itself returns
// an error for (effectively never, in practice).
package program

import (
	"fmt"

	solanago "github.com/gagliardetto/solana-go"
)

// StoragePDA derives the single program-owned account this module's
// entire JMT/metadata/port-map state lives in.
func StoragePDA(programID solanago.PublicKey) (solanago.PublicKey, uint8) {
	pda, bump, err := solanago.FindProgramAddress(
		[][]byte{[]byte("ibc_storage")},
		programID,
	)
	if err != nil {
		panic(fmt.Sprintf("program: failed to derive storage PDA: %v", err))
	}
	return pda, bump
}

// ChunkBufferPDA derives the per-submitter scratch account a chunked
// header upload accumulates bytes into before the final instruction in
// the sequence reassembles and consumes them (instruction.Envelope).
func ChunkBufferPDA(programID, submitter solanago.PublicKey) (solanago.PublicKey, uint8) {
	pda, bump, err := solanago.FindProgramAddress(
		[][]byte{[]byte("chunk_buffer"), submitter.Bytes()},
		programID,
	)
	if err != nil {
		panic(fmt.Sprintf("program: failed to derive chunk buffer PDA for %s: %v", submitter, err))
	}
	return pda, bump
}
