package ibc

import (
	"fmt"

	"github.com/eclipse-labs/ibc-program/ibcerrors"
	"github.com/eclipse-labs/ibc-program/ibcstate"
	"github.com/eclipse-labs/ibc-program/ibctypes"
	"github.com/eclipse-labs/ibc-program/path"
)

// ExecutionView is the mutating capability set the ICS-26 router needs
// (§4.E "an execution view"). It is deliberately thin: every store or
// delete a router-driven message performs ultimately calls one of
// Handler's own state-machine operations (client.go/connection.go/
// channel.go/packet.go/port.go), which already validate before writing.
// The view covers only the packet-lifecycle slice, without the full
// handshake surface; no package in this module takes it as a parameter.
type ExecutionView interface {
	SendPacket(portID, channelID string, pkt ibctypes.Packet) error
	WriteAcknowledgement(portID, channelID string, sequence uint64, ack []byte) error
	Log(msg string, fields ...any)
}

// WriteAcknowledgement stores an asynchronous acknowledgement a module
// computed after RecvPacket already returned. RecvPacket itself writes a
// synchronous ack inline and does not go through this path.
func (h *Handler) WriteAcknowledgement(portID, channelID string, sequence uint64, ack []byte) error {
	existing, ok, err := h.GetPacketAcknowledgement(portID, channelID, sequence)
	if err != nil {
		return err
	}
	if ok {
		return ackAlreadyExistsError(portID, channelID, sequence, existing)
	}
	return setAck(h, portID, channelID, sequence, ack)
}

// Log records a handler-level diagnostic through the configured
// logger, a no-op if none was configured.
func (h *Handler) Log(msg string, fields ...any) {
	if h.Logger == nil {
		return
	}
	h.Logger.Sugar().Infow(msg, fields...)
}

// ackAlreadyExistsError reports a write that would silently overwrite
// an acknowledgement already committed for this sequence (§3 invariant:
// an acknowledgement, once written, is immutable).
func ackAlreadyExistsError(portID, channelID string, sequence uint64, existing []byte) error {
	return fmt.Errorf("%w: %s/%s sequence %d already has an acknowledgement (%d bytes)",
		ibcerrors.ErrAcknowledgementExists, portID, channelID, sequence, len(existing))
}

// setAck stores ack under the acknowledgement path for portID/channelID/sequence.
func setAck(h *Handler, portID, channelID string, sequence uint64, ack []byte) error {
	return ibcstate.Set(h.State, path.AckPath{PortID: portID, ChannelID: channelID, Sequence: sequence}, ack)
}
