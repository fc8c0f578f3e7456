// Package host implements the light client for the host chain itself
// (§4.F): a minimal client/consensus/header model whose verification is
// entirely local height comparison, since a chain never needs to
// replay its own consensus to trust its own history.
package host

import (
	"fmt"
	"time"

	"github.com/eclipse-labs/ibc-program/ibcerrors"
	"github.com/eclipse-labs/ibc-program/ibctypes"
	"github.com/eclipse-labs/ibc-program/proof"
)

// ConsensusState is the commitment root + timestamp recorded at one height.
type ConsensusState struct {
	CommitmentRoot [32]byte
	Timestamp      int64 // unix nanoseconds
}

// Header carries a new height's commitment root and timestamp; its
// ConsensusState projection drops Height.
type Header struct {
	Height         ibctypes.Height
	CommitmentRoot [32]byte
	Timestamp      int64
}

// ConsensusState projects h down to the persisted ConsensusState shape.
func (h Header) ConsensusState() ConsensusState {
	return ConsensusState{CommitmentRoot: h.CommitmentRoot, Timestamp: h.Timestamp}
}

// ClientState is the polymorphic client's host-chain arm.
type ClientState struct {
	ChainID      string
	LatestHeader Header
	FrozenHeight *ibctypes.Height
}

// ChainID renders the host chain's identifier. The host runtime only
// ever has one logical chain instance, so the "-0" revision suffix is
// fixed rather than threaded through from a real revision counter.
func ChainID(name string) string {
	return "eclipse-" + name + "-0"
}

// HeightOfSlot maps a host slot to the height convention used
// throughout the handler: revision 0, revision_height = slot+1 (§4.F).
func HeightOfSlot(slot uint64) ibctypes.Height {
	return ibctypes.Height{RevisionNumber: 0, RevisionHeight: slot + 1}
}

// SlotOfHeight is HeightOfSlot's inverse; it errors on any height whose
// revision number is not 0, since this client only ever tracks itself.
func SlotOfHeight(h ibctypes.Height) (uint64, error) {
	if h.RevisionNumber != 0 {
		return 0, fmt.Errorf("host: height %s is not a host-chain height (revision must be 0)", h)
	}
	if h.RevisionHeight == 0 {
		return 0, fmt.Errorf("host: height %s has no corresponding slot (revision_height must be >= 1)", h)
	}
	return h.RevisionHeight - 1, nil
}

// expiryWindow is the IBC-message validity window (§4.F "elapsed > 1 hour").
const expiryWindow = time.Hour

// VerifyClientMessage rejects a header that does not move height
// strictly forward; it performs no block-body verification, matching
// the source's explicit scope (host light client trusts its own slots).
func (cs ClientState) VerifyClientMessage(header Header) error {
	if header.Height.LTE(cs.LatestHeader.Height) {
		return fmt.Errorf("%w: header height %s is not greater than latest height %s", ibcerrors.ErrLowHeaderHeight, header.Height, cs.LatestHeader.Height)
	}
	return nil
}

// CheckForMisbehaviour always returns false: misbehaviour detection for
// the host client is an explicit Non-goal (spec.md §1).
func (cs ClientState) CheckForMisbehaviour(Header) bool { return false }

// UpdateState returns the client/consensus state pair that results from
// incorporating header, per §4.E UpdateClient.
func (cs ClientState) UpdateState(header Header) (ClientState, ConsensusState) {
	next := cs
	next.LatestHeader = header
	return next, header.ConsensusState()
}

// VerifyMembership checks inclusion of path/value at root via the
// shared JMT-derived ICS-23 spec.
func (cs ClientState) VerifyMembership(commitmentPrefix []byte, mp proof.MerkleProof, root [32]byte, path string, value []byte) error {
	if !proof.VerifyMembership(commitmentPrefix, mp, root[:], path, value) {
		return fmt.Errorf("%w: membership of %q", ibcerrors.ErrProofVerificationFailed, path)
	}
	return nil
}

// VerifyNonMembership checks exclusion of path at root.
func (cs ClientState) VerifyNonMembership(commitmentPrefix []byte, mp proof.MerkleProof, root [32]byte, path string) error {
	if !proof.VerifyNonMembership(commitmentPrefix, mp, root[:], path) {
		return fmt.Errorf("%w: non-membership of %q", ibcerrors.ErrProofVerificationFailed, path)
	}
	return nil
}

// VerifyUpgradeClient validates the upgraded client/consensus pair's
// membership at the given proof paths against root and enforces that
// the upgrade moves height strictly forward (§4.E UpgradeClient).
func (cs ClientState) VerifyUpgradeClient(
	commitmentPrefix []byte,
	newClientState ClientState,
	newConsensusState ConsensusState,
	proofClientState, proofConsensusState proof.MerkleProof,
	clientStatePath, consensusStatePath string,
	root [32]byte,
	encodedClientState, encodedConsensusState []byte,
) error {
	if !newClientState.LatestHeader.Height.GT(cs.LatestHeader.Height) {
		return fmt.Errorf("%w: upgrade height %s does not exceed current height %s", ibcerrors.ErrInvalidClientMessage, newClientState.LatestHeader.Height, cs.LatestHeader.Height)
	}
	if !proof.VerifyMembership(commitmentPrefix, proofClientState, root[:], clientStatePath, encodedClientState) {
		return fmt.Errorf("%w: upgrade client state membership at %q", ibcerrors.ErrProofVerificationFailed, clientStatePath)
	}
	if !proof.VerifyMembership(commitmentPrefix, proofConsensusState, root[:], consensusStatePath, encodedConsensusState) {
		return fmt.Errorf("%w: upgrade consensus state membership at %q", ibcerrors.ErrProofVerificationFailed, consensusStatePath)
	}
	return nil
}

// Expired reports whether elapsed exceeds the one-hour validity window.
func (cs ClientState) Expired(elapsed time.Duration) bool {
	return elapsed > expiryWindow
}

// Frozen reports whether further client updates are rejected (§3
// invariant 5).
func (cs ClientState) Frozen() bool {
	return cs.FrozenHeight != nil
}
