package ibc

import (
	"fmt"

	"github.com/eclipse-labs/ibc-program/ibcerrors"
	"github.com/eclipse-labs/ibc-program/ibcstate"
	"github.com/eclipse-labs/ibc-program/ibctypes"
	"github.com/eclipse-labs/ibc-program/path"
	"github.com/eclipse-labs/ibc-program/proof"
)

// requireOpenConnectionHop resolves the single connection a channel's
// connection_hops names and requires it to be Open (§4.E "connection
// ids in connection_hops must reference Open connections").
func (h *Handler) requireOpenConnectionHop(hops []string) (ibctypes.ConnectionEnd, error) {
	if len(hops) != 1 {
		return ibctypes.ConnectionEnd{}, fmt.Errorf("%w: exactly one connection hop is supported, got %d", ibcerrors.ErrInvalidChannelState, len(hops))
	}
	end, ok, err := ibcstate.Get[ibctypes.ConnectionEnd](h.State, path.ConnectionPath{ConnectionID: hops[0]})
	if err != nil {
		return ibctypes.ConnectionEnd{}, err
	}
	if !ok {
		return ibctypes.ConnectionEnd{}, fmt.Errorf("%w: %q", ibcerrors.ErrConnectionNotFound, hops[0])
	}
	if end.State != ibctypes.ConnectionOpen {
		return ibctypes.ConnectionEnd{}, fmt.Errorf("%w: connection %q is %s, expected Open", ibcerrors.ErrConnectionNotOpen, hops[0], end.State)
	}
	return end, nil
}

// channelClientState resolves the light client backing a channel's
// connection hop, rejecting a frozen client.
func (h *Handler) channelClientState(conn ibctypes.ConnectionEnd) (ibctypes.AnyClientState, error) {
	return h.requireUnfrozenClient(conn.ClientID)
}

// ChannelOpenInit creates a channel end in Init on the local side (§4.E).
func (h *Handler) ChannelOpenInit(portID string, ordering ibctypes.Ordering, hops []string, counterparty ibctypes.ChannelCounterparty, version string) (string, error) {
	conn, err := h.requireOpenConnectionHop(hops)
	if err != nil {
		return "", err
	}
	if _, err := h.channelClientState(conn); err != nil {
		return "", err
	}

	channelID := h.Metadata.NextChannelID()
	end := ibctypes.ChannelEnd{
		State:          ibctypes.ChannelInit,
		Ordering:       ordering,
		Counterparty:   counterparty,
		ConnectionHops: hops,
		Version:        version,
	}
	if err := ibcstate.Set(h.State, path.ChannelEndPath{PortID: portID, ChannelID: channelID}, end); err != nil {
		return "", err
	}
	if err := ibcstate.Set(h.State, path.SeqSendPath{PortID: portID, ChannelID: channelID}, uint64(1)); err != nil {
		return "", err
	}
	if err := ibcstate.Set(h.State, path.SeqRecvPath{PortID: portID, ChannelID: channelID}, uint64(1)); err != nil {
		return "", err
	}
	if err := ibcstate.Set(h.State, path.SeqAckPath{PortID: portID, ChannelID: channelID}, uint64(1)); err != nil {
		return "", err
	}
	return channelID, h.persistMetadata()
}

// ChannelOpenTry verifies the counterparty's Init channel end before
// allocating a local TryOpen record.
func (h *Handler) ChannelOpenTry(
	portID string, ordering ibctypes.Ordering, hops []string, counterparty ibctypes.ChannelCounterparty, version string,
	proofInit proof.MerkleProof, proofHeight ibctypes.Height,
	expectedChannelPath string, expectedChannelBytes []byte,
) (string, error) {
	conn, err := h.requireOpenConnectionHop(hops)
	if err != nil {
		return "", err
	}
	cs, err := h.channelClientState(conn)
	if err != nil {
		return "", err
	}
	if err := h.verifyCounterpartyView(cs, conn.ClientID, proofHeight); err != nil {
		return "", err
	}
	arm, _, err := h.clientArm(cs.TypeURL)
	if err != nil {
		return "", err
	}
	root, err := h.State.Root()
	if err != nil {
		return "", err
	}
	if err := arm.VerifyMembership(cs, conn.Counterparty.CommitmentPrefix, proofInit, root, expectedChannelPath, expectedChannelBytes); err != nil {
		return "", err
	}

	channelID := h.Metadata.NextChannelID()
	end := ibctypes.ChannelEnd{
		State:          ibctypes.ChannelTryOpen,
		Ordering:       ordering,
		Counterparty:   counterparty,
		ConnectionHops: hops,
		Version:        version,
	}
	if err := ibcstate.Set(h.State, path.ChannelEndPath{PortID: portID, ChannelID: channelID}, end); err != nil {
		return "", err
	}
	if err := ibcstate.Set(h.State, path.SeqSendPath{PortID: portID, ChannelID: channelID}, uint64(1)); err != nil {
		return "", err
	}
	if err := ibcstate.Set(h.State, path.SeqRecvPath{PortID: portID, ChannelID: channelID}, uint64(1)); err != nil {
		return "", err
	}
	if err := ibcstate.Set(h.State, path.SeqAckPath{PortID: portID, ChannelID: channelID}, uint64(1)); err != nil {
		return "", err
	}
	return channelID, h.persistMetadata()
}

// ChannelOpenAck verifies the counterparty's TryOpen end and
// transitions the local channel to Open.
func (h *Handler) ChannelOpenAck(
	portID, channelID string, counterpartyChannelID string,
	proofTry proof.MerkleProof, proofHeight ibctypes.Height,
	expectedChannelPath string, expectedChannelBytes []byte,
) error {
	end, ok, err := ibcstate.Get[ibctypes.ChannelEnd](h.State, path.ChannelEndPath{PortID: portID, ChannelID: channelID})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s/%s", ibcerrors.ErrChannelNotFound, portID, channelID)
	}
	if end.State != ibctypes.ChannelInit {
		return fmt.Errorf("%w: channel %s/%s is %s, expected Init", ibcerrors.ErrInvalidChannelState, portID, channelID, end.State)
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
	if err := arm.VerifyMembership(cs, conn.Counterparty.CommitmentPrefix, proofTry, root, expectedChannelPath, expectedChannelBytes); err != nil {
		return err
	}

	end.State = ibctypes.ChannelOpen
	end.Counterparty.ChannelID = counterpartyChannelID
	return ibcstate.Set(h.State, path.ChannelEndPath{PortID: portID, ChannelID: channelID}, end)
}

// ChannelOpenConfirm verifies the counterparty's Open end and
// transitions the local TryOpen channel to Open.
func (h *Handler) ChannelOpenConfirm(
	portID, channelID string,
	proofAck proof.MerkleProof, proofHeight ibctypes.Height,
	expectedChannelPath string, expectedChannelBytes []byte,
) error {
	end, ok, err := ibcstate.Get[ibctypes.ChannelEnd](h.State, path.ChannelEndPath{PortID: portID, ChannelID: channelID})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s/%s", ibcerrors.ErrChannelNotFound, portID, channelID)
	}
	if end.State != ibctypes.ChannelTryOpen {
		return fmt.Errorf("%w: channel %s/%s is %s, expected TryOpen", ibcerrors.ErrInvalidChannelState, portID, channelID, end.State)
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
	if err := arm.VerifyMembership(cs, conn.Counterparty.CommitmentPrefix, proofAck, root, expectedChannelPath, expectedChannelBytes); err != nil {
		return err
	}

	end.State = ibctypes.ChannelOpen
	return ibcstate.Set(h.State, path.ChannelEndPath{PortID: portID, ChannelID: channelID}, end)
}

// ChannelCloseInit closes the local channel end unilaterally.
func (h *Handler) ChannelCloseInit(portID, channelID string) error {
	end, ok, err := ibcstate.Get[ibctypes.ChannelEnd](h.State, path.ChannelEndPath{PortID: portID, ChannelID: channelID})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s/%s", ibcerrors.ErrChannelNotFound, portID, channelID)
	}
	if end.State == ibctypes.ChannelClosed {
		return fmt.Errorf("%w: channel %s/%s is already Closed", ibcerrors.ErrInvalidChannelState, portID, channelID)
	}
	end.State = ibctypes.ChannelClosed
	return ibcstate.Set(h.State, path.ChannelEndPath{PortID: portID, ChannelID: channelID}, end)
}

// ChannelCloseConfirm closes the local channel end after observing the
// counterparty has already closed.
func (h *Handler) ChannelCloseConfirm(
	portID, channelID string,
	proofClosed proof.MerkleProof, proofHeight ibctypes.Height,
	expectedChannelPath string, expectedChannelBytes []byte,
) error {
	end, ok, err := ibcstate.Get[ibctypes.ChannelEnd](h.State, path.ChannelEndPath{PortID: portID, ChannelID: channelID})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s/%s", ibcerrors.ErrChannelNotFound, portID, channelID)
	}
	if end.State == ibctypes.ChannelClosed {
		return fmt.Errorf("%w: channel %s/%s is already Closed", ibcerrors.ErrInvalidChannelState, portID, channelID)
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

	end.State = ibctypes.ChannelClosed
	return ibcstate.Set(h.State, path.ChannelEndPath{PortID: portID, ChannelID: channelID}, end)
}
