// Package proof owns the single ICS-23 proof spec the JMT is proven
// against and converts a raw existence proof into the single-layer
// Merkle proof shape a cross-chain light client consumes (§4.A).
package proof

import (
	ics23 "github.com/cosmos/ics23/go"

	"github.com/eclipse-labs/ibc-program/jmt"
)

// Spec is the JMT's own ICS-23 proof spec (§4.A).
func Spec() *ics23.ProofSpec { return jmt.Spec() }

// MerkleProof mirrors ibc-go's MerkleProof: a sequence of
// CommitmentProofs, one per storage layer. A single JMT layer plays
// the role ibc-go usually splits across an app store (IAVL) and a
// multistore commitment layer — see SPEC_FULL.md §4.A.
type MerkleProof struct {
	Proofs []*ics23.CommitmentProof
}

// ToMerkleProof wraps a JMT existence proof as a single-layer
// MerkleProof suitable for a cross-chain consumer's VerifyMembership.
func ToMerkleProof(existence *ics23.ExistenceProof) MerkleProof {
	return MerkleProof{
		Proofs: []*ics23.CommitmentProof{
			{Proof: &ics23.CommitmentProof_Exist{Exist: existence}},
		},
	}
}

// ToNonMembershipMerkleProof wraps a JMT non-existence proof.
func ToNonMembershipMerkleProof(nonExistence *ics23.NonExistenceProof) MerkleProof {
	return MerkleProof{
		Proofs: []*ics23.CommitmentProof{
			{Proof: &ics23.CommitmentProof_Nonexist{Nonexist: nonExistence}},
		},
	}
}

// VerifyMembership checks that proof proves that path maps to value
// against root.
//
// Open question (spec.md §9): the source's host light client verifies
// membership using the bare path rather than prefix||path, where
// ICS-23 convention usually splices the chain's commitment prefix into
// the proven key. This module follows the source: prefix is accepted
// (every call site threads the chain's CommitmentPrefix through, so a
// future policy change is a one-line edit here) but is not spliced
// into the ICS-23 key, on both the proving side (jmt.ExistenceProof
// stores the bare path as Key) and this verifying side — consistent
// on both ends of every handshake, per the instruction to pick one
// policy rather than silently "fixing" it. See DESIGN.md.
func VerifyMembership(prefix []byte, mp MerkleProof, root []byte, path string, value []byte) bool {
	_ = prefix
	if len(mp.Proofs) != 1 {
		return false
	}
	return ics23.VerifyMembership(Spec(), root, mp.Proofs[0], []byte(path), value)
}

// VerifyNonMembership checks that proof proves path is absent from the
// tree committed to by root. See VerifyMembership for the commitment
// prefix policy.
func VerifyNonMembership(prefix []byte, mp MerkleProof, root []byte, path string) bool {
	_ = prefix
	if len(mp.Proofs) != 1 {
		return false
	}
	return ics23.VerifyNonMembership(Spec(), root, mp.Proofs[0], []byte(path))
}
