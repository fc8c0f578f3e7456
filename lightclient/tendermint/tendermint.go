// Package tendermint is the counterparty-facing light client arm:
// it wraps ibc-go's own 07-tendermint wire types (so ClientState,
// ConsensusState, and Header Any-encode exactly as a real Cosmos SDK
// chain expects them on the wire) but deliberately simplifies
// verification to monotonic height plus trusting-period expiry. Full
// validator-set/commit verification is out of scope — spec.md's
// Non-goal on misbehaviour detection and its focus on the host client
// in §4.F both point the same way; see DESIGN.md for the Open Question
// this decision resolves.
package tendermint

import (
	"fmt"
	"time"

	ibctm "github.com/cosmos/ibc-go/v10/modules/light-clients/07-tendermint"

	"github.com/eclipse-labs/ibc-program/ibcerrors"
	"github.com/eclipse-labs/ibc-program/ibctypes"
	"github.com/eclipse-labs/ibc-program/proof"
)

// ibc-go's wire type URLs for the wrapped tendermint types (§6). The
// handler's ClientRegistry does not look these up: it selects this arm
// by ibctypes.ClientTypeTendermint.
const (
	ClientStateTypeURL    = "/ibc.lightclients.tendermint.v1.ClientState"
	ConsensusStateTypeURL = "/ibc.lightclients.tendermint.v1.ConsensusState"
	HeaderTypeURL         = "/ibc.lightclients.tendermint.v1.Header"
)

// ClientState is this registry's tendermint arm: the real ibc-go wire
// type plus the frozen-height bookkeeping every arm needs to satisfy
// the shared freeze invariant (§3 invariant 5).
type ClientState struct {
	Wire         ibctm.ClientState
	FrozenHeight *ibctypes.Height
}

// ConsensusState wraps ibc-go's wire consensus state.
type ConsensusState struct {
	Wire ibctm.ConsensusState
}

// Header wraps ibc-go's wire header plus the height this module's
// handler addresses consensus states by.
type Header struct {
	Wire   ibctm.Header
	Height ibctypes.Height
}

func (cs ClientState) Frozen() bool { return cs.FrozenHeight != nil }

func latestHeight(cs ibctm.ClientState) ibctypes.Height {
	return ibctypes.Height{
		RevisionNumber: cs.LatestHeight.RevisionNumber,
		RevisionHeight: cs.LatestHeight.RevisionHeight,
	}
}

// VerifyClientMessage rejects a frozen client and a header that does
// not move height strictly forward. It does not replay the validator
// set or check the commit signatures a full tendermint light client
// would — see the package doc.
func (cs ClientState) VerifyClientMessage(header Header) error {
	if cs.Frozen() {
		return fmt.Errorf("%w", ibcerrors.ErrClientFrozen)
	}
	if header.Height.LTE(latestHeight(cs.Wire)) {
		return fmt.Errorf("%w: header height %s is not greater than latest height %s", ibcerrors.ErrLowHeaderHeight, header.Height, latestHeight(cs.Wire))
	}
	return nil
}

// CheckForMisbehaviour always returns false: full misbehaviour
// detection needs validator-set/commit verification this arm does not
// implement (spec.md §1 Non-goal).
func (cs ClientState) CheckForMisbehaviour(Header) bool { return false }

// UpdateState incorporates header into the client state and derives
// the consensus state to persist at header.Height.
func (cs ClientState) UpdateState(header Header) (ClientState, ConsensusState) {
	next := cs
	next.Wire.LatestHeight = header.Wire.TrustedHeight
	if header.Wire.SignedHeader != nil && header.Wire.SignedHeader.Header != nil {
		next.Wire.LatestHeight.RevisionHeight = uint64(header.Wire.SignedHeader.Header.Height)
	}
	consensus := ConsensusState{Wire: ibctm.ConsensusState{
		Timestamp:          headerTimestamp(header.Wire),
		NextValidatorsHash: headerNextValidatorsHash(header.Wire),
	}}
	return next, consensus
}

func headerTimestamp(h ibctm.Header) time.Time {
	if h.SignedHeader != nil && h.SignedHeader.Header != nil {
		return h.SignedHeader.Header.Time
	}
	return time.Time{}
}

func headerNextValidatorsHash(h ibctm.Header) []byte {
	if h.SignedHeader != nil && h.SignedHeader.Header != nil {
		return h.SignedHeader.Header.NextValidatorsHash
	}
	return nil
}

// VerifyMembership checks inclusion of path/value at root.
func (cs ClientState) VerifyMembership(commitmentPrefix []byte, mp proof.MerkleProof, root [32]byte, path string, value []byte) error {
	if cs.Frozen() {
		return fmt.Errorf("%w", ibcerrors.ErrClientFrozen)
	}
	if !proof.VerifyMembership(commitmentPrefix, mp, root[:], path, value) {
		return fmt.Errorf("%w: membership of %q", ibcerrors.ErrProofVerificationFailed, path)
	}
	return nil
}

// VerifyNonMembership checks exclusion of path at root.
func (cs ClientState) VerifyNonMembership(commitmentPrefix []byte, mp proof.MerkleProof, root [32]byte, path string) error {
	if cs.Frozen() {
		return fmt.Errorf("%w", ibcerrors.ErrClientFrozen)
	}
	if !proof.VerifyNonMembership(commitmentPrefix, mp, root[:], path) {
		return fmt.Errorf("%w: non-membership of %q", ibcerrors.ErrProofVerificationFailed, path)
	}
	return nil
}

// VerifyUpgradeClient validates the upgraded pair's membership and
// enforces a strictly greater height, mirroring host.ClientState's
// policy (§4.E UpgradeClient).
func (cs ClientState) VerifyUpgradeClient(
	commitmentPrefix []byte,
	newClientState ClientState,
	proofClientState, proofConsensusState proof.MerkleProof,
	clientStatePath, consensusStatePath string,
	root [32]byte,
	encodedClientState, encodedConsensusState []byte,
) error {
	if !latestHeight(newClientState.Wire).GT(latestHeight(cs.Wire)) {
		return fmt.Errorf("%w: upgrade height does not exceed current height", ibcerrors.ErrInvalidClientMessage)
	}
	if !proof.VerifyMembership(commitmentPrefix, proofClientState, root[:], clientStatePath, encodedClientState) {
		return fmt.Errorf("%w: upgrade client state membership at %q", ibcerrors.ErrProofVerificationFailed, clientStatePath)
	}
	if !proof.VerifyMembership(commitmentPrefix, proofConsensusState, root[:], consensusStatePath, encodedConsensusState) {
		return fmt.Errorf("%w: upgrade consensus state membership at %q", ibcerrors.ErrProofVerificationFailed, consensusStatePath)
	}
	return nil
}

// Expired reports whether elapsed exceeds the client's trusting
// period — the one piece of real tendermint client state this
// simplified arm still honors, since it is a pure duration comparison
// with no validator-set dependency.
func (cs ClientState) Expired(elapsed time.Duration) bool {
	return elapsed > cs.Wire.TrustingPeriod
}
