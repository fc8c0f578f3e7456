package ibc

import (
	"fmt"

	"github.com/eclipse-labs/ibc-program/ibcerrors"
	"github.com/eclipse-labs/ibc-program/ibcstate"
	"github.com/eclipse-labs/ibc-program/ibctypes"
	"github.com/eclipse-labs/ibc-program/path"
	"github.com/eclipse-labs/ibc-program/proof"
)

// loadOpenChannel loads port/channel and requires it to be Open.
func (h *Handler) loadOpenChannel(portID, channelID string) (ibctypes.ChannelEnd, error) {
	end, ok, err := ibcstate.Get[ibctypes.ChannelEnd](h.State, path.ChannelEndPath{PortID: portID, ChannelID: channelID})
	if err != nil {
		return ibctypes.ChannelEnd{}, err
	}
	if !ok {
		return ibctypes.ChannelEnd{}, fmt.Errorf("%w: %s/%s", ibcerrors.ErrChannelNotFound, portID, channelID)
	}
	if end.State != ibctypes.ChannelOpen {
		return ibctypes.ChannelEnd{}, fmt.Errorf("%w: channel %s/%s is %s, expected Open", ibcerrors.ErrChannelNotOpen, portID, channelID, end.State)
	}
	return end, nil
}

// SendPacket stores a packet commitment and advances SeqSend. Computing
// the packet body itself (sequence assignment, timeout selection) is
// upstream-module logic (§4.E "computed by upstream logic"); this
// method is the storage half every send funnels through.
func (h *Handler) SendPacket(portID, channelID string, pkt ibctypes.Packet) error {
	if _, err := h.loadOpenChannel(portID, channelID); err != nil {
		return err
	}
	seq, ok, err := ibcstate.Get[uint64](h.State, path.SeqSendPath{PortID: portID, ChannelID: channelID})
	if err != nil {
		return err
	}
	if !ok {
		seq = 1
	}
	if pkt.Sequence != seq {
		return fmt.Errorf("%w: packet sequence %d does not match next send sequence %d", ibcerrors.ErrInvalidChannelState, pkt.Sequence, seq)
	}
	commitment := packetCommitment(pkt)
	if err := ibcstate.Set(h.State, path.CommitmentPath{PortID: portID, ChannelID: channelID, Sequence: pkt.Sequence}, commitment); err != nil {
		return err
	}
	return ibcstate.Set(h.State, path.SeqSendPath{PortID: portID, ChannelID: channelID}, seq+1)
}

// packetCommitment is the canonical bytes stored at a Commitment path —
// a deterministic digest of the fields that must not change between
// send and receive.
func packetCommitment(pkt ibctypes.Packet) []byte {
	return []byte(fmt.Sprintf("%d:%d:%d:%x", pkt.TimeoutTimestamp, pkt.TimeoutHeight.RevisionNumber, pkt.TimeoutHeight.RevisionHeight, pkt.Data))
}

// RecvPacket verifies the counterparty's commitment, enforces ordering
// (strict sequence for Ordered, duplicate-receipt rejection for
// Unordered), and writes the receipt plus a synchronous ack (§4.E Recv;
// §8 invariant 9 packet exactly-once).
func (h *Handler) RecvPacket(
	portID, channelID string, pkt ibctypes.Packet, ack []byte,
	proofCommitment proof.MerkleProof, proofHeight ibctypes.Height,
	expectedCommitmentPath string, expectedCommitmentBytes []byte,
) error {
	end, err := h.loadOpenChannel(portID, channelID)
	if err != nil {
		return err
	}
	conn, err := h.requireOpenConnectionHop(end.ConnectionHops)
	if err != nil {
		return err
	}
	cs, err := h.channelClientState(conn)
	if err != nil {
		return err
	}
	if err := h.verifyCounterpartyView(cs, conn.ClientID, proofHeight); err != nil {
		return err
	}
	arm, _, err := h.clientArm(cs.TypeURL)
	if err != nil {
		return err
	}
	root, err := h.State.Root()
	if err != nil {
		return err
	}
	if err := arm.VerifyMembership(cs, conn.Counterparty.CommitmentPrefix, proofCommitment, root, expectedCommitmentPath, expectedCommitmentBytes); err != nil {
		return err
	}

	if end.Ordering == ibctypes.Ordered {
		nextRecv, ok, err := ibcstate.Get[uint64](h.State, path.SeqRecvPath{PortID: portID, ChannelID: channelID})
		if err != nil {
			return err
		}
		if !ok {
			nextRecv = 1
		}
		if pkt.Sequence != nextRecv {
			return fmt.Errorf("%w: packet sequence %d does not match expected %d on ordered channel", ibcerrors.ErrInvalidChannelState, pkt.Sequence, nextRecv)
		}
		if err := ibcstate.Set(h.State, path.SeqRecvPath{PortID: portID, ChannelID: channelID}, nextRecv+1); err != nil {
			return err
		}
	} else {
		_, exists, err := ibcstate.Get[[]byte](h.State, path.ReceiptPath{PortID: portID, ChannelID: channelID, Sequence: pkt.Sequence})
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: port %s channel %s sequence %d", ibcerrors.ErrDuplicateReceipt, portID, channelID, pkt.Sequence)
		}
	}

	if err := ibcstate.Set(h.State, path.ReceiptPath{PortID: portID, ChannelID: channelID, Sequence: pkt.Sequence}, ibctypes.ReceiptOK); err != nil {
		return err
	}
	return ibcstate.Set(h.State, path.AckPath{PortID: portID, ChannelID: channelID, Sequence: pkt.Sequence}, ack)
}

// AcknowledgePacket verifies the counterparty's ack, deletes the source
// commitment, and on ordered channels advances SeqAck (§4.E Ack).
func (h *Handler) AcknowledgePacket(
	portID, channelID string, sequence uint64,
	proofAck proof.MerkleProof, proofHeight ibctypes.Height,
	expectedAckPath string, expectedAckBytes []byte,
) error {
	end, err := h.loadOpenChannel(portID, channelID)
	if err != nil {
		return err
	}
	_, exists, err := ibcstate.Get[[]byte](h.State, path.CommitmentPath{PortID: portID, ChannelID: channelID, Sequence: sequence})
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: port %s channel %s sequence %d", ibcerrors.ErrCommitmentNotFound, portID, channelID, sequence)
	}
	conn, err := h.requireOpenConnectionHop(end.ConnectionHops)
	if err != nil {
		return err
	}
	cs, err := h.channelClientState(conn)
	if err != nil {
		return err
	}
	if err := h.verifyCounterpartyView(cs, conn.ClientID, proofHeight); err != nil {
		return err
	}
	arm, _, err := h.clientArm(cs.TypeURL)
	if err != nil {
		return err
	}
	root, err := h.State.Root()
	if err != nil {
		return err
	}
	if err := arm.VerifyMembership(cs, conn.Counterparty.CommitmentPrefix, proofAck, root, expectedAckPath, expectedAckBytes); err != nil {
		return err
	}

	if err := h.State.Remove(path.CommitmentPath{PortID: portID, ChannelID: channelID, Sequence: sequence}); err != nil {
		return err
	}
	if end.Ordering == ibctypes.Ordered {
		seqAck, ok, err := ibcstate.Get[uint64](h.State, path.SeqAckPath{PortID: portID, ChannelID: channelID})
		if err != nil {
			return err
		}
		if !ok {
			seqAck = 1
		}
		return ibcstate.Set(h.State, path.SeqAckPath{PortID: portID, ChannelID: channelID}, seqAck+1)
	}
	return nil
}

// TimeoutPacket verifies non-receipt of the packet at the counterparty
// and deletes the local commitment, freezing an ordered channel (§4.E
// Timeout: "freeze ordered channel on timeout").
func (h *Handler) TimeoutPacket(
	portID, channelID string, pkt ibctypes.Packet,
	proofUnreceived proof.MerkleProof, proofHeight ibctypes.Height,
	expectedReceiptPath string,
) error {
	end, err := h.loadOpenChannelOrClosed(portID, channelID)
	if err != nil {
		return err
	}
	_, exists, err := ibcstate.Get[[]byte](h.State, path.CommitmentPath{PortID: portID, ChannelID: channelID, Sequence: pkt.Sequence})
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: port %s channel %s sequence %d", ibcerrors.ErrCommitmentNotFound, portID, channelID, pkt.Sequence)
	}
	conn, err := h.requireOpenConnectionHop(end.ConnectionHops)
	if err != nil {
		return err
	}
	cs, err := h.channelClientState(conn)
	if err != nil {
		return err
	}
	if err := h.verifyCounterpartyView(cs, conn.ClientID, proofHeight); err != nil {
		return err
	}
	arm, _, err := h.clientArm(cs.TypeURL)
	if err != nil {
		return err
	}
	root, err := h.State.Root()
	if err != nil {
		return err
	}
	if err := arm.VerifyNonMembership(cs, conn.Counterparty.CommitmentPrefix, proofUnreceived, root, expectedReceiptPath); err != nil {
		return err
	}

	if err := h.State.Remove(path.CommitmentPath{PortID: portID, ChannelID: channelID, Sequence: pkt.Sequence}); err != nil {
		return err
	}
	if end.Ordering == ibctypes.Ordered && end.State != ibctypes.ChannelClosed {
		end.State = ibctypes.ChannelClosed
		return ibcstate.Set(h.State, path.ChannelEndPath{PortID: portID, ChannelID: channelID}, end)
	}
	return nil
}

// TimeoutOnClose verifies the counterparty channel is closed and
// releases the local commitment without requiring the timeout height
// or timestamp to have elapsed.
func (h *Handler) TimeoutOnClose(
	portID, channelID string, pkt ibctypes.Packet,
	proofClosed proof.MerkleProof, proofHeight ibctypes.Height,
	expectedChannelPath string, expectedChannelBytes []byte,
) error {
	end, err := h.loadOpenChannelOrClosed(portID, channelID)
	if err != nil {
		return err
	}
	_, exists, err := ibcstate.Get[[]byte](h.State, path.CommitmentPath{PortID: portID, ChannelID: channelID, Sequence: pkt.Sequence})
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: port %s channel %s sequence %d", ibcerrors.ErrCommitmentNotFound, portID, channelID, pkt.Sequence)
	}
	conn, err := h.requireOpenConnectionHop(end.ConnectionHops)
	if err != nil {
		return err
	}
	cs, err := h.channelClientState(conn)
	if err != nil {
		return err
	}
	if err := h.verifyCounterpartyView(cs, conn.ClientID, proofHeight); err != nil {
		return err
	}
	arm, _, err := h.clientArm(cs.TypeURL)
	if err != nil {
		return err
	}
	root, err := h.State.Root()
	if err != nil {
		return err
	}
	if err := arm.VerifyMembership(cs, conn.Counterparty.CommitmentPrefix, proofClosed, root, expectedChannelPath, expectedChannelBytes); err != nil {
		return err
	}
	return h.State.Remove(path.CommitmentPath{PortID: portID, ChannelID: channelID, Sequence: pkt.Sequence})
}

// loadOpenChannelOrClosed is loadOpenChannel without the Open
// requirement — a channel already frozen to Closed by a prior timeout
// can still time out its remaining in-flight packets.
func (h *Handler) loadOpenChannelOrClosed(portID, channelID string) (ibctypes.ChannelEnd, error) {
	end, ok, err := ibcstate.Get[ibctypes.ChannelEnd](h.State, path.ChannelEndPath{PortID: portID, ChannelID: channelID})
	if err != nil {
		return ibctypes.ChannelEnd{}, err
	}
	if !ok {
		return ibctypes.ChannelEnd{}, fmt.Errorf("%w: %s/%s", ibcerrors.ErrChannelNotFound, portID, channelID)
	}
	return end, nil
}
