package ibc

import (
	"bytes"
	"fmt"
	"time"

	bin "github.com/gagliardetto/binary"

	"github.com/eclipse-labs/ibc-program/ibctypes"
	"github.com/eclipse-labs/ibc-program/lightclient/host"
	"github.com/eclipse-labs/ibc-program/lightclient/tendermint"
	"github.com/eclipse-labs/ibc-program/proof"
)

// ClientModule is the one interface every client-type arm satisfies
// (§9 "tagged variant, one arm per client"; §4.F operations). The
// handler only ever talks to a client through this interface, keyed out
// of a ClientRegistry by ibctypes.ClientType — it never downcasts.
//
// Unlike host.ClientState and tendermint.ClientState, every method here
// takes and returns the Any-tagged bytes envelope the overlay actually
// stores, so client.go never needs to know which concrete wire type is
// behind a given client_id.
type ClientModule interface {
	VerifyClientMessage(clientState ibctypes.AnyClientState, header ibctypes.AnyHeader) error
	CheckForMisbehaviour(clientState ibctypes.AnyClientState, header ibctypes.AnyHeader) bool
	UpdateState(clientState ibctypes.AnyClientState, header ibctypes.AnyHeader) (ibctypes.AnyClientState, ibctypes.AnyConsensusState, ibctypes.Height, error)
	VerifyMembership(clientState ibctypes.AnyClientState, commitmentPrefix []byte, mp proof.MerkleProof, root [32]byte, path string, value []byte) error
	VerifyNonMembership(clientState ibctypes.AnyClientState, commitmentPrefix []byte, mp proof.MerkleProof, root [32]byte, path string) error
	VerifyUpgradeClient(
		clientState ibctypes.AnyClientState,
		commitmentPrefix []byte,
		newClientState ibctypes.AnyClientState,
		newConsensusState ibctypes.AnyConsensusState,
		proofClientState, proofConsensusState proof.MerkleProof,
		clientStatePath, consensusStatePath string,
		root [32]byte,
	) error
	Expired(clientState ibctypes.AnyClientState, elapsed time.Duration) bool
	FrozenHeight(clientState ibctypes.AnyClientState) (ibctypes.Height, bool)
}

// ClientRegistry is a read-through lookup from ClientType to its
// ClientModule arm, populated once at handler construction (§9 "router
// registration at instantiation time" design note applied to clients
// too: a fixed table, not a runtime plugin mechanism).
type ClientRegistry struct {
	arms map[ibctypes.ClientType]ClientModule
}

// NewClientRegistry registers the two arms this module ships.
func NewClientRegistry() *ClientRegistry {
	return &ClientRegistry{arms: map[ibctypes.ClientType]ClientModule{
		ibctypes.ClientTypeEclipse:    hostClientModule{},
		ibctypes.ClientTypeTendermint: tendermintClientModule{},
	}}
}

// Lookup resolves a client type to its arm.
func (r *ClientRegistry) Lookup(ct ibctypes.ClientType) (ClientModule, bool) {
	m, ok := r.arms[ct]
	return m, ok
}

func borshEncode(v any) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(v); err != nil {
		return nil, fmt.Errorf("ibc: borsh encode %T: %w", v, err)
	}
	return buf.Bytes(), nil
}

func borshDecode(data []byte, out any) error {
	if err := bin.NewBorshDecoder(data).Decode(out); err != nil {
		return fmt.Errorf("ibc: borsh decode into %T: %w", out, err)
	}
	return nil
}

// hostClientModule adapts lightclient/host.ClientState to ClientModule
// by Borsh-(de)serializing it behind the Any envelope.
type hostClientModule struct{}

func (hostClientModule) decodeClientState(any ibctypes.AnyClientState) (host.ClientState, error) {
	var cs host.ClientState
	err := borshDecode(any.Value, &cs)
	return cs, err
}

func (hostClientModule) decodeHeader(any ibctypes.AnyHeader) (host.Header, error) {
	var h host.Header
	err := borshDecode(any.Value, &h)
	return h, err
}

func (m hostClientModule) VerifyClientMessage(clientState ibctypes.AnyClientState, header ibctypes.AnyHeader) error {
	cs, err := m.decodeClientState(clientState)
	if err != nil {
		return err
	}
	h, err := m.decodeHeader(header)
	if err != nil {
		return err
	}
	return cs.VerifyClientMessage(h)
}

func (m hostClientModule) CheckForMisbehaviour(clientState ibctypes.AnyClientState, header ibctypes.AnyHeader) bool {
	cs, err := m.decodeClientState(clientState)
	if err != nil {
		return false
	}
	h, err := m.decodeHeader(header)
	if err != nil {
		return false
	}
	return cs.CheckForMisbehaviour(h)
}

func (m hostClientModule) UpdateState(clientState ibctypes.AnyClientState, header ibctypes.AnyHeader) (ibctypes.AnyClientState, ibctypes.AnyConsensusState, ibctypes.Height, error) {
	cs, err := m.decodeClientState(clientState)
	if err != nil {
		return ibctypes.AnyClientState{}, ibctypes.AnyConsensusState{}, ibctypes.Height{}, err
	}
	h, err := m.decodeHeader(header)
	if err != nil {
		return ibctypes.AnyClientState{}, ibctypes.AnyConsensusState{}, ibctypes.Height{}, err
	}
	nextCS, nextConsensus := cs.UpdateState(h)
	csBytes, err := borshEncode(nextCS)
	if err != nil {
		return ibctypes.AnyClientState{}, ibctypes.AnyConsensusState{}, ibctypes.Height{}, err
	}
	consensusBytes, err := borshEncode(nextConsensus)
	if err != nil {
		return ibctypes.AnyClientState{}, ibctypes.AnyConsensusState{}, ibctypes.Height{}, err
	}
	return ibctypes.AnyClientState{TypeURL: clientState.TypeURL, Value: csBytes},
		ibctypes.AnyConsensusState{TypeURL: clientState.TypeURL, Value: consensusBytes},
		h.Height, nil
}

func (m hostClientModule) VerifyMembership(clientState ibctypes.AnyClientState, commitmentPrefix []byte, mp proof.MerkleProof, root [32]byte, path string, value []byte) error {
	cs, err := m.decodeClientState(clientState)
	if err != nil {
		return err
	}
	return cs.VerifyMembership(commitmentPrefix, mp, root, path, value)
}

func (m hostClientModule) VerifyNonMembership(clientState ibctypes.AnyClientState, commitmentPrefix []byte, mp proof.MerkleProof, root [32]byte, path string) error {
	cs, err := m.decodeClientState(clientState)
	if err != nil {
		return err
	}
	return cs.VerifyNonMembership(commitmentPrefix, mp, root, path)
}

func (m hostClientModule) VerifyUpgradeClient(
	clientState ibctypes.AnyClientState,
	commitmentPrefix []byte,
	newClientState ibctypes.AnyClientState,
	newConsensusState ibctypes.AnyConsensusState,
	proofClientState, proofConsensusState proof.MerkleProof,
	clientStatePath, consensusStatePath string,
	root [32]byte,
) error {
	cs, err := m.decodeClientState(clientState)
	if err != nil {
		return err
	}
	newCS, err := m.decodeClientState(newClientState)
	if err != nil {
		return err
	}
	var newConsensus host.ConsensusState
	if err := borshDecode(newConsensusState.Value, &newConsensus); err != nil {
		return err
	}
	return cs.VerifyUpgradeClient(
		commitmentPrefix, newCS, newConsensus,
		proofClientState, proofConsensusState,
		clientStatePath, consensusStatePath,
		root, newClientState.Value, newConsensusState.Value,
	)
}

func (m hostClientModule) Expired(clientState ibctypes.AnyClientState, elapsed time.Duration) bool {
	cs, err := m.decodeClientState(clientState)
	if err != nil {
		return true
	}
	return cs.Expired(elapsed)
}

func (m hostClientModule) FrozenHeight(clientState ibctypes.AnyClientState) (ibctypes.Height, bool) {
	cs, err := m.decodeClientState(clientState)
	if err != nil {
		return ibctypes.Height{}, false
	}
	return ibctypes.FrozenHeightOf(cs.FrozenHeight)
}

// tendermintClientModule adapts lightclient/tendermint.ClientState.
type tendermintClientModule struct{}

func (tendermintClientModule) decodeClientState(any ibctypes.AnyClientState) (tendermint.ClientState, error) {
	var cs tendermint.ClientState
	err := borshDecode(any.Value, &cs)
	return cs, err
}

func (tendermintClientModule) decodeHeader(any ibctypes.AnyHeader) (tendermint.Header, error) {
	var h tendermint.Header
	err := borshDecode(any.Value, &h)
	return h, err
}

func (m tendermintClientModule) VerifyClientMessage(clientState ibctypes.AnyClientState, header ibctypes.AnyHeader) error {
	cs, err := m.decodeClientState(clientState)
	if err != nil {
		return err
	}
	h, err := m.decodeHeader(header)
	if err != nil {
		return err
	}
	return cs.VerifyClientMessage(h)
}

func (m tendermintClientModule) CheckForMisbehaviour(clientState ibctypes.AnyClientState, header ibctypes.AnyHeader) bool {
	cs, err := m.decodeClientState(clientState)
	if err != nil {
		return false
	}
	h, err := m.decodeHeader(header)
	if err != nil {
		return false
	}
	return cs.CheckForMisbehaviour(h)
}

func (m tendermintClientModule) UpdateState(clientState ibctypes.AnyClientState, header ibctypes.AnyHeader) (ibctypes.AnyClientState, ibctypes.AnyConsensusState, ibctypes.Height, error) {
	cs, err := m.decodeClientState(clientState)
	if err != nil {
		return ibctypes.AnyClientState{}, ibctypes.AnyConsensusState{}, ibctypes.Height{}, err
	}
	h, err := m.decodeHeader(header)
	if err != nil {
		return ibctypes.AnyClientState{}, ibctypes.AnyConsensusState{}, ibctypes.Height{}, err
	}
	nextCS, nextConsensus := cs.UpdateState(h)
	csBytes, err := borshEncode(nextCS)
	if err != nil {
		return ibctypes.AnyClientState{}, ibctypes.AnyConsensusState{}, ibctypes.Height{}, err
	}
	consensusBytes, err := borshEncode(nextConsensus)
	if err != nil {
		return ibctypes.AnyClientState{}, ibctypes.AnyConsensusState{}, ibctypes.Height{}, err
	}
	return ibctypes.AnyClientState{TypeURL: clientState.TypeURL, Value: csBytes},
		ibctypes.AnyConsensusState{TypeURL: clientState.TypeURL, Value: consensusBytes},
		h.Height, nil
}

func (m tendermintClientModule) VerifyMembership(clientState ibctypes.AnyClientState, commitmentPrefix []byte, mp proof.MerkleProof, root [32]byte, path string, value []byte) error {
	cs, err := m.decodeClientState(clientState)
	if err != nil {
		return err
	}
	return cs.VerifyMembership(commitmentPrefix, mp, root, path, value)
}

func (m tendermintClientModule) VerifyNonMembership(clientState ibctypes.AnyClientState, commitmentPrefix []byte, mp proof.MerkleProof, root [32]byte, path string) error {
	cs, err := m.decodeClientState(clientState)
	if err != nil {
		return err
	}
	return cs.VerifyNonMembership(commitmentPrefix, mp, root, path)
}

func (m tendermintClientModule) VerifyUpgradeClient(
	clientState ibctypes.AnyClientState,
	commitmentPrefix []byte,
	newClientState ibctypes.AnyClientState,
	newConsensusState ibctypes.AnyConsensusState,
	proofClientState, proofConsensusState proof.MerkleProof,
	clientStatePath, consensusStatePath string,
	root [32]byte,
) error {
	cs, err := m.decodeClientState(clientState)
	if err != nil {
		return err
	}
	newCS, err := m.decodeClientState(newClientState)
	if err != nil {
		return err
	}
	return cs.VerifyUpgradeClient(
		commitmentPrefix, newCS,
		proofClientState, proofConsensusState,
		clientStatePath, consensusStatePath,
		root, newClientState.Value, newConsensusState.Value,
	)
}

func (m tendermintClientModule) Expired(clientState ibctypes.AnyClientState, elapsed time.Duration) bool {
	cs, err := m.decodeClientState(clientState)
	if err != nil {
		return true
	}
	return cs.Expired(elapsed)
}

func (m tendermintClientModule) FrozenHeight(clientState ibctypes.AnyClientState) (ibctypes.Height, bool) {
	cs, err := m.decodeClientState(clientState)
	if err != nil {
		return ibctypes.Height{}, false
	}
	return ibctypes.FrozenHeightOf(cs.FrozenHeight)
}
