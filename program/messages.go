package program

import (
	"github.com/eclipse-labs/ibc-program/ibctypes"
	"github.com/eclipse-labs/ibc-program/proof"
)

// The payload structs below are the Borsh-encoded Value half of each
// instruction.Any a RouterMsg/PortMsg carries — one per TypeURL, shaped
// to match the ibc.Handler method it drives (§4.G). Of the AdminMsg
// members, InitStorageAccount takes no payload at all and
// WriteTxBuffer's payload is writeTxBufferPayload in dispatch.go.

type createClientPayload struct {
	ClientState    ibctypes.AnyClientState
	ConsensusState ibctypes.AnyConsensusState
}

type updateClientPayload struct {
	ClientID string
	Header   ibctypes.AnyHeader
}

type upgradeClientPayload struct {
	ClientID             string
	NewClientState       ibctypes.AnyClientState
	NewConsensusState    ibctypes.AnyConsensusState
	ProofClientState     proof.MerkleProof
	ProofConsensusState  proof.MerkleProof
	ClientStatePath      string
	ConsensusStatePath   string
}

type connectionOpenInitPayload struct {
	ClientID     string
	Counterparty ibctypes.ConnectionCounterparty
	Version      ibctypes.ConnectionVersion
	DelayPeriod  uint64
}

type connectionOpenTryPayload struct {
	ClientID                string
	Counterparty             ibctypes.ConnectionCounterparty
	Version                  ibctypes.ConnectionVersion
	DelayPeriod              uint64
	ProofInit                proof.MerkleProof
	ProofClient              proof.MerkleProof
	ProofHeight              ibctypes.Height
	ExpectedConnectionPath   string
	ExpectedConnectionBytes  []byte
}

type connectionOpenAckPayload struct {
	ConnectionID             string
	CounterpartyConnectionID string
	ProofTry                 proof.MerkleProof
	ProofHeight              ibctypes.Height
	ExpectedConnectionPath   string
	ExpectedConnectionBytes  []byte
}

type connectionOpenConfirmPayload struct {
	ConnectionID            string
	ProofAck                proof.MerkleProof
	ProofHeight             ibctypes.Height
	ExpectedConnectionPath  string
	ExpectedConnectionBytes []byte
}

type channelOpenInitPayload struct {
	PortID       string
	Ordering     ibctypes.Ordering
	Hops         []string
	Counterparty ibctypes.ChannelCounterparty
	Version      string
}

type channelOpenTryPayload struct {
	PortID                string
	Ordering              ibctypes.Ordering
	Hops                  []string
	Counterparty          ibctypes.ChannelCounterparty
	Version               string
	ProofInit             proof.MerkleProof
	ProofHeight           ibctypes.Height
	ExpectedChannelPath   string
	ExpectedChannelBytes  []byte
}

type channelOpenAckPayload struct {
	PortID                 string
	ChannelID              string
	CounterpartyChannelID  string
	ProofTry               proof.MerkleProof
	ProofHeight            ibctypes.Height
	ExpectedChannelPath    string
	ExpectedChannelBytes   []byte
}

type channelOpenConfirmPayload struct {
	PortID               string
	ChannelID            string
	ProofAck             proof.MerkleProof
	ProofHeight          ibctypes.Height
	ExpectedChannelPath  string
	ExpectedChannelBytes []byte
}

type channelCloseInitPayload struct {
	PortID    string
	ChannelID string
}

type channelCloseConfirmPayload struct {
	PortID               string
	ChannelID            string
	ProofClosed          proof.MerkleProof
	ProofHeight          ibctypes.Height
	ExpectedChannelPath  string
	ExpectedChannelBytes []byte
}

type sendPacketPayload struct {
	PortID    string
	ChannelID string
	Packet    ibctypes.Packet
}

type recvPacketPayload struct {
	PortID                   string
	ChannelID                string
	Packet                   ibctypes.Packet
	Ack                      []byte
	ProofCommitment          proof.MerkleProof
	ProofHeight              ibctypes.Height
	ExpectedCommitmentPath   string
	ExpectedCommitmentBytes  []byte
}

type acknowledgePacketPayload struct {
	PortID          string
	ChannelID       string
	Sequence        uint64
	ProofAck        proof.MerkleProof
	ProofHeight     ibctypes.Height
	ExpectedAckPath string
	ExpectedAckBytes []byte
}

type timeoutPacketPayload struct {
	PortID                string
	ChannelID             string
	Packet                ibctypes.Packet
	ProofUnreceived       proof.MerkleProof
	ProofHeight           ibctypes.Height
	ExpectedReceiptPath   string
}

type timeoutOnClosePayload struct {
	PortID               string
	ChannelID            string
	Packet               ibctypes.Packet
	ProofClosed          proof.MerkleProof
	ProofHeight          ibctypes.Height
	ExpectedChannelPath  string
	ExpectedChannelBytes []byte
}

type submitMisbehaviourPayload struct {
	ClientID string
	Header   ibctypes.AnyHeader
}

type bindPortPayload struct {
	PortID   string
	CallerID ibctypes.ModuleID
}

type releasePortPayload struct {
	PortID   string
	CallerID ibctypes.ModuleID
}
