package ibc

import (
	"fmt"

	"github.com/eclipse-labs/ibc-program/ibcerrors"
	"github.com/eclipse-labs/ibc-program/ibcstate"
	"github.com/eclipse-labs/ibc-program/ibctypes"
	"github.com/eclipse-labs/ibc-program/path"
	"github.com/eclipse-labs/ibc-program/proof"
)

// requireUnfrozenClient loads client_id's stored client state and
// rejects if it is frozen (§3 invariant 5, applied at every connection
// handshake step per §4.E "all four verify that the referenced client
// is non-frozen").
func (h *Handler) requireUnfrozenClient(clientID string) (ibctypes.AnyClientState, error) {
	cs, ok, err := ibcstate.Get[ibctypes.AnyClientState](h.State, path.ClientStatePath{ClientID: clientID})
	if err != nil {
		return ibctypes.AnyClientState{}, err
	}
	if !ok {
		return ibctypes.AnyClientState{}, fmt.Errorf("%w: %q", ibcerrors.ErrClientNotFound, clientID)
	}
	arm, _, err := h.clientArm(cs.TypeURL)
	if err != nil {
		return ibctypes.AnyClientState{}, err
	}
	if _, frozen := arm.FrozenHeight(cs); frozen {
		return ibctypes.AnyClientState{}, fmt.Errorf("%w: client %s", ibcerrors.ErrClientFrozen, clientID)
	}
	return cs, nil
}

// addClientConnection appends connectionID to ClientConnections(clientID).
func (h *Handler) addClientConnection(clientID, connectionID string) error {
	return ibcstate.Update(h.State, path.ClientConnectionsPath{ClientID: clientID}, []string{}, func(ids []string) ([]string, error) {
		for _, id := range ids {
			if id == connectionID {
				return ids, nil
			}
		}
		return append(ids, connectionID), nil
	})
}

// ConnectionOpenInit starts a handshake on the local side (§4.E).
func (h *Handler) ConnectionOpenInit(clientID string, counterparty ibctypes.ConnectionCounterparty, version ibctypes.ConnectionVersion, delayPeriod uint64) (string, error) {
	if _, err := h.requireUnfrozenClient(clientID); err != nil {
		return "", err
	}

	connectionID := h.Metadata.NextConnectionID()
	end := ibctypes.ConnectionEnd{
		State:        ibctypes.ConnectionInit,
		ClientID:     clientID,
		Counterparty: counterparty,
		Versions:     []ibctypes.ConnectionVersion{version},
		DelayPeriod:  delayPeriod,
	}
	if err := ibcstate.Set(h.State, path.ConnectionPath{ConnectionID: connectionID}, end); err != nil {
		return "", err
	}
	if err := h.addClientConnection(clientID, connectionID); err != nil {
		return "", err
	}
	return connectionID, h.persistMetadata()
}

// ConnectionOpenTry verifies the counterparty's Init connection end
// (proofInit) before allocating a local TryOpen record (§4.E).
// proofClient is accepted but not checked: no client or consensus
// state proof is verified here.
func (h *Handler) ConnectionOpenTry(
	clientID string,
	counterparty ibctypes.ConnectionCounterparty,
	version ibctypes.ConnectionVersion,
	delayPeriod uint64,
	proofInit, proofClient proof.MerkleProof,
	proofHeight ibctypes.Height,
	expectedConnectionPath string,
	expectedConnectionBytes []byte,
) (string, error) {
	cs, err := h.requireUnfrozenClient(clientID)
	if err != nil {
		return "", err
	}
	if err := h.verifyCounterpartyView(cs, clientID, proofHeight); err != nil {
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
	if err := arm.VerifyMembership(cs, counterparty.CommitmentPrefix, proofInit, root, expectedConnectionPath, expectedConnectionBytes); err != nil {
		return "", err
	}

	connectionID := h.Metadata.NextConnectionID()
	end := ibctypes.ConnectionEnd{
		State:        ibctypes.ConnectionTryOpen,
		ClientID:     clientID,
		Counterparty: counterparty,
		Versions:     []ibctypes.ConnectionVersion{version},
		DelayPeriod:  delayPeriod,
	}
	if err := ibcstate.Set(h.State, path.ConnectionPath{ConnectionID: connectionID}, end); err != nil {
		return "", err
	}
	if err := h.addClientConnection(clientID, connectionID); err != nil {
		return "", err
	}
	return connectionID, h.persistMetadata()
}

// ConnectionOpenAck verifies the counterparty's TryOpen end and
// transitions the local connection to Open.
func (h *Handler) ConnectionOpenAck(
	connectionID string,
	counterpartyConnectionID string,
	proofTry proof.MerkleProof,
	proofHeight ibctypes.Height,
	expectedConnectionPath string,
	expectedConnectionBytes []byte,
) error {
	end, ok, err := ibcstate.Get[ibctypes.ConnectionEnd](h.State, path.ConnectionPath{ConnectionID: connectionID})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q", ibcerrors.ErrConnectionNotFound, connectionID)
	}
	if end.State != ibctypes.ConnectionInit {
		return fmt.Errorf("%w: connection %q is %s, expected Init", ibcerrors.ErrInvalidConnectionState, connectionID, end.State)
	}
	cs, err := h.requireUnfrozenClient(end.ClientID)
	if err != nil {
		return err
	}
	if err := h.verifyCounterpartyView(cs, end.ClientID, proofHeight); err != nil {
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
	if err := arm.VerifyMembership(cs, end.Counterparty.CommitmentPrefix, proofTry, root, expectedConnectionPath, expectedConnectionBytes); err != nil {
		return err
	}

	end.State = ibctypes.ConnectionOpen
	end.Counterparty.ConnectionID = counterpartyConnectionID
	return ibcstate.Set(h.State, path.ConnectionPath{ConnectionID: connectionID}, end)
}

// ConnectionOpenConfirm verifies the counterparty's Open end and
// transitions the local TryOpen connection to Open.
func (h *Handler) ConnectionOpenConfirm(
	connectionID string,
	proofAck proof.MerkleProof,
	proofHeight ibctypes.Height,
	expectedConnectionPath string,
	expectedConnectionBytes []byte,
) error {
	end, ok, err := ibcstate.Get[ibctypes.ConnectionEnd](h.State, path.ConnectionPath{ConnectionID: connectionID})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q", ibcerrors.ErrConnectionNotFound, connectionID)
	}
	if end.State != ibctypes.ConnectionTryOpen {
		return fmt.Errorf("%w: connection %q is %s, expected TryOpen", ibcerrors.ErrInvalidConnectionState, connectionID, end.State)
	}
	cs, err := h.requireUnfrozenClient(end.ClientID)
	if err != nil {
		return err
	}
	if err := h.verifyCounterpartyView(cs, end.ClientID, proofHeight); err != nil {
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
	if err := arm.VerifyMembership(cs, end.Counterparty.CommitmentPrefix, proofAck, root, expectedConnectionPath, expectedConnectionBytes); err != nil {
		return err
	}

	end.State = ibctypes.ConnectionOpen
	return ibcstate.Set(h.State, path.ConnectionPath{ConnectionID: connectionID}, end)
}

// verifyCounterpartyView rejects a proof taken at a height the local
// client has not yet observed (§3 scenario 3: "fails if the proof's
// height exceeds the local view of counterparty height").
func (h *Handler) verifyCounterpartyView(cs ibctypes.AnyClientState, clientID string, proofHeight ibctypes.Height) error {
	heights, ok, err := ibcstate.Get[[]ibctypes.Height](h.State, path.ConsensusHeightsPath{ClientID: clientID})
	if err != nil {
		return err
	}
	if !ok || len(heights) == 0 {
		return fmt.Errorf("%w: client %s has no consensus state", ibcerrors.ErrClientNotFound, clientID)
	}
	latest := heights[len(heights)-1]
	if proofHeight.GT(latest) {
		return fmt.Errorf("%w: proof height %s exceeds local view of counterparty height %s", ibcerrors.ErrInvalidConnectionState, proofHeight, latest)
	}
	return nil
}
