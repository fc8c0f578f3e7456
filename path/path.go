// Package path fixes the canonical string encoding for every IBC
// storage location (§4.A) and the table binding each path variant to
// its value schema (§4.B). All JMT keys are sha256 of the canonical
// string a Path renders to — see KeyHash.
package path

import (
	"crypto/sha256"
	"fmt"

	"github.com/eclipse-labs/ibc-program/ibctypes"
)

// Path is a total function from a domain tuple to its canonical UTF-8
// string form. The closed set of variants is declared below; adding a
// new one means adding both the type and a SchemaFor arm.
type Path interface {
	String() string
}

type ClientStatePath struct{ ClientID string }

func (p ClientStatePath) String() string {
	return fmt.Sprintf("clients/%s/clientState", p.ClientID)
}

type ClientConsensusStatePath struct {
	ClientID string
	Height   ibctypes.Height
}

func (p ClientConsensusStatePath) String() string {
	return fmt.Sprintf("clients/%s/consensusStates/%s", p.ClientID, p.Height.String())
}

type ConnectionPath struct{ ConnectionID string }

func (p ConnectionPath) String() string {
	return fmt.Sprintf("connections/%s", p.ConnectionID)
}

type ClientConnectionsPath struct{ ClientID string }

func (p ClientConnectionsPath) String() string {
	return fmt.Sprintf("clients/%s/connections", p.ClientID)
}

type ChannelEndPath struct{ PortID, ChannelID string }

func (p ChannelEndPath) String() string {
	return fmt.Sprintf("channelEnds/ports/%s/channels/%s", p.PortID, p.ChannelID)
}

type SeqSendPath struct{ PortID, ChannelID string }

func (p SeqSendPath) String() string {
	return fmt.Sprintf("nextSequenceSend/ports/%s/channels/%s", p.PortID, p.ChannelID)
}

type SeqRecvPath struct{ PortID, ChannelID string }

func (p SeqRecvPath) String() string {
	return fmt.Sprintf("nextSequenceRecv/ports/%s/channels/%s", p.PortID, p.ChannelID)
}

type SeqAckPath struct{ PortID, ChannelID string }

func (p SeqAckPath) String() string {
	return fmt.Sprintf("nextSequenceAck/ports/%s/channels/%s", p.PortID, p.ChannelID)
}

type CommitmentPath struct {
	PortID, ChannelID string
	Sequence          uint64
}

func (p CommitmentPath) String() string {
	return fmt.Sprintf("commitments/ports/%s/channels/%s/sequences/%d", p.PortID, p.ChannelID, p.Sequence)
}

type ReceiptPath struct {
	PortID, ChannelID string
	Sequence          uint64
}

func (p ReceiptPath) String() string {
	return fmt.Sprintf("receipts/ports/%s/channels/%s/sequences/%d", p.PortID, p.ChannelID, p.Sequence)
}

type AckPath struct {
	PortID, ChannelID string
	Sequence          uint64
}

func (p AckPath) String() string {
	return fmt.Sprintf("acks/ports/%s/channels/%s/sequences/%d", p.PortID, p.ChannelID, p.Sequence)
}

type PortPath struct{ PortID string }

func (p PortPath) String() string {
	return fmt.Sprintf("ports/%s", p.PortID)
}

// Internal paths (§3): not part of any ICS wire format, never proven
// to a counterparty, but versioned through the same JMT as everything
// else so that AllModules/ConsensusHeights stay consistent with the
// rest of the state at every version.

type ClientUpdateTimePath struct {
	ClientID string
	Height   ibctypes.Height
}

func (p ClientUpdateTimePath) String() string {
	return fmt.Sprintf("internal/clients/%s/updateTime/%s", p.ClientID, p.Height.String())
}

type ClientUpdateHeightPath struct {
	ClientID string
	Height   ibctypes.Height
}

func (p ClientUpdateHeightPath) String() string {
	return fmt.Sprintf("internal/clients/%s/updateHeight/%s", p.ClientID, p.Height.String())
}

type ConsensusHeightsPath struct{ ClientID string }

func (p ConsensusHeightsPath) String() string {
	return fmt.Sprintf("internal/clients/%s/consensusHeights", p.ClientID)
}

type AllModulesPath struct{}

func (AllModulesPath) String() string { return "internal/allModules" }

type StateInitializedPath struct{}

func (StateInitializedPath) String() string { return "internal/stateInitialized" }

// MetadataPath addresses the singleton counters record (SPEC_FULL.md §3.1).
type MetadataPath struct{}

func (MetadataPath) String() string { return "internal/metadata" }

// KeyHash is sha256 of a path's canonical string form — the JMT leaf
// key for every entity in the system.
func KeyHash(p Path) [32]byte {
	return sha256.Sum256([]byte(p.String()))
}

// CommitmentPrefix is the ASCII string every proof path is namespaced
// under on the wire (§6).
var CommitmentPrefix = []byte("ibc")
