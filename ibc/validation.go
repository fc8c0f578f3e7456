package ibc

import (
	"github.com/eclipse-labs/ibc-program/ibcstate"
	"github.com/eclipse-labs/ibc-program/ibctypes"
	"github.com/eclipse-labs/ibc-program/lightclient/host"
	"github.com/eclipse-labs/ibc-program/path"
)

// ValidationView is the read-only capability set the ICS-26 router
// needs to validate a message before handing it to Handler's
// state-machine operations (§4.E "a validation view"). Handler
// satisfies this interface directly — it is declared separately so
// callers that only need to read can depend on the narrower surface.
type ValidationView interface {
	GetClientState(clientID string) (ibctypes.AnyClientState, bool, error)
	GetConnection(connectionID string) (ibctypes.ConnectionEnd, bool, error)
	GetChannel(portID, channelID string) (ibctypes.ChannelEnd, bool, error)
	GetPacketCommitment(portID, channelID string, sequence uint64) ([]byte, bool, error)
	GetPacketReceipt(portID, channelID string, sequence uint64) (bool, error)
	GetPacketAcknowledgement(portID, channelID string, sequence uint64) ([]byte, bool, error)
	GetNextSequenceSend(portID, channelID string) (uint64, error)
	CommitmentPrefix() []byte
	HostHeight() ibctypes.Height
	HostTimestamp() int64
}

func (h *Handler) GetClientState(clientID string) (ibctypes.AnyClientState, bool, error) {
	return ibcstate.Get[ibctypes.AnyClientState](h.State, path.ClientStatePath{ClientID: clientID})
}

func (h *Handler) GetConnection(connectionID string) (ibctypes.ConnectionEnd, bool, error) {
	return ibcstate.Get[ibctypes.ConnectionEnd](h.State, path.ConnectionPath{ConnectionID: connectionID})
}

func (h *Handler) GetChannel(portID, channelID string) (ibctypes.ChannelEnd, bool, error) {
	return ibcstate.Get[ibctypes.ChannelEnd](h.State, path.ChannelEndPath{PortID: portID, ChannelID: channelID})
}

func (h *Handler) GetPacketCommitment(portID, channelID string, sequence uint64) ([]byte, bool, error) {
	return ibcstate.Get[[]byte](h.State, path.CommitmentPath{PortID: portID, ChannelID: channelID, Sequence: sequence})
}

func (h *Handler) GetPacketReceipt(portID, channelID string, sequence uint64) (bool, error) {
	_, ok, err := ibcstate.Get[[]byte](h.State, path.ReceiptPath{PortID: portID, ChannelID: channelID, Sequence: sequence})
	return ok, err
}

func (h *Handler) GetPacketAcknowledgement(portID, channelID string, sequence uint64) ([]byte, bool, error) {
	return ibcstate.Get[[]byte](h.State, path.AckPath{PortID: portID, ChannelID: channelID, Sequence: sequence})
}

func (h *Handler) GetNextSequenceSend(portID, channelID string) (uint64, error) {
	seq, ok, err := ibcstate.Get[uint64](h.State, path.SeqSendPath{PortID: portID, ChannelID: channelID})
	if err != nil {
		return 0, err
	}
	if !ok {
		return 1, nil
	}
	return seq, nil
}

func (h *Handler) CommitmentPrefix() []byte { return path.CommitmentPrefix }

func (h *Handler) HostHeight() ibctypes.Height { return host.HeightOfSlot(h.Slot) }

func (h *Handler) HostTimestamp() int64 { return h.UnixNano }
