package ibc

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/eclipse-labs/ibc-program/ibcerrors"
	"github.com/eclipse-labs/ibc-program/ibcstate"
	"github.com/eclipse-labs/ibc-program/ibctypes"
	"github.com/eclipse-labs/ibc-program/path"
	"github.com/eclipse-labs/ibc-program/proof"
)

// clientArm resolves the registered ClientModule for a TypeURL-tagged
// client/consensus/header value. The TypeURL doubles as the client
// registry key via the client's stored ClientType — clients record
// their own type in ClientState.TypeURL at CreateClient time, and every
// later lookup trusts that field rather than re-deriving it.
func (h *Handler) clientArm(typeURL string) (ClientModule, ibctypes.ClientType, error) {
	ct := ibctypes.ClientType(typeURL)
	m, ok := h.Registry.Lookup(ct)
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ibcerrors.ErrUnrecognizedTypeURL, typeURL)
	}
	return m, ct, nil
}

// CreateClient mints a fresh client_id, stores the initial client and
// consensus state, and records the bookkeeping ConsensusHeights/update
// time/height entries a freshly created client needs (§4.E CreateClient).
func (h *Handler) CreateClient(clientState ibctypes.AnyClientState, consensusState ibctypes.AnyConsensusState) (string, error) {
	arm, ct, err := h.clientArm(clientState.TypeURL)
	if err != nil {
		return "", err
	}
	_ = arm

	clientID := h.Metadata.NextClientID(ct)
	height := ibctypes.Height{RevisionNumber: 0, RevisionHeight: h.Slot + 1}

	if err := ibcstate.Set(h.State, path.ClientStatePath{ClientID: clientID}, clientState); err != nil {
		return "", err
	}
	if err := ibcstate.Set(h.State, path.ClientConsensusStatePath{ClientID: clientID, Height: height}, consensusState); err != nil {
		return "", err
	}
	if err := h.appendConsensusHeight(clientID, height); err != nil {
		return "", err
	}
	if err := ibcstate.Set(h.State, path.ClientUpdateTimePath{ClientID: clientID, Height: height}, h.UnixNano); err != nil {
		return "", err
	}
	if err := ibcstate.Set(h.State, path.ClientUpdateHeightPath{ClientID: clientID, Height: height}, height); err != nil {
		return "", err
	}
	if err := h.persistMetadata(); err != nil {
		return "", err
	}
	if h.Logger != nil {
		h.Logger.Info("ibc: client created", zap.String("client_id", clientID))
	}
	return clientID, nil
}

// UpdateClient verifies and incorporates a new header, rejecting a
// frozen client or a header that does not move height strictly forward
// (§4.E UpdateClient; §9 records the historical reversed-comparison bug
// and confirms the policy here is the corrected one).
func (h *Handler) UpdateClient(clientID string, header ibctypes.AnyHeader) error {
	clientState, ok, err := ibcstate.Get[ibctypes.AnyClientState](h.State, path.ClientStatePath{ClientID: clientID})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q", ibcerrors.ErrClientNotFound, clientID)
	}

	arm, _, err := h.clientArm(clientState.TypeURL)
	if err != nil {
		return err
	}

	if frozen, ok := arm.FrozenHeight(clientState); ok {
		_ = frozen
		return fmt.Errorf("%w: client %s", ibcerrors.ErrClientFrozen, clientID)
	}

	if err := arm.VerifyClientMessage(clientState, header); err != nil {
		return err
	}

	nextClientState, nextConsensus, height, err := arm.UpdateState(clientState, header)
	if err != nil {
		return err
	}

	if err := ibcstate.Set(h.State, path.ClientStatePath{ClientID: clientID}, nextClientState); err != nil {
		return err
	}
	if err := ibcstate.Set(h.State, path.ClientConsensusStatePath{ClientID: clientID, Height: height}, nextConsensus); err != nil {
		return err
	}
	if err := h.appendConsensusHeight(clientID, height); err != nil {
		return err
	}
	if err := ibcstate.Set(h.State, path.ClientUpdateTimePath{ClientID: clientID, Height: height}, h.UnixNano); err != nil {
		return err
	}
	if err := ibcstate.Set(h.State, path.ClientUpdateHeightPath{ClientID: clientID, Height: height}, height); err != nil {
		return err
	}
	if h.Logger != nil {
		h.Logger.Info("ibc: client updated", zap.String("client_id", clientID))
	}
	return nil
}

// UpgradeClient installs a new client/consensus pair after verifying
// both against the current commitment root, requiring strictly greater
// height (§4.E UpgradeClient).
func (h *Handler) UpgradeClient(
	clientID string,
	newClientState ibctypes.AnyClientState,
	newConsensusState ibctypes.AnyConsensusState,
	proofClientState, proofConsensusState proof.MerkleProof,
	clientStatePath, consensusStatePath string,
) error {
	clientState, ok, err := ibcstate.Get[ibctypes.AnyClientState](h.State, path.ClientStatePath{ClientID: clientID})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q", ibcerrors.ErrClientNotFound, clientID)
	}
	arm, _, err := h.clientArm(clientState.TypeURL)
	if err != nil {
		return err
	}
	if frozen, ok := arm.FrozenHeight(clientState); ok {
		_ = frozen
		return fmt.Errorf("%w: client %s", ibcerrors.ErrClientFrozen, clientID)
	}

	root, err := h.State.Root()
	if err != nil {
		return err
	}

	if err := arm.VerifyUpgradeClient(
		clientState, path.CommitmentPrefix,
		newClientState, newConsensusState,
		proofClientState, proofConsensusState,
		clientStatePath, consensusStatePath,
		root,
	); err != nil {
		return err
	}

	if err := ibcstate.Set(h.State, path.ClientStatePath{ClientID: clientID}, newClientState); err != nil {
		return err
	}
	height := ibctypes.Height{RevisionNumber: 0, RevisionHeight: h.Slot + 1}
	if err := ibcstate.Set(h.State, path.ClientConsensusStatePath{ClientID: clientID, Height: height}, newConsensusState); err != nil {
		return err
	}
	return h.appendConsensusHeight(clientID, height)
}

// SubmitMisbehaviour is defined but never succeeds: misbehaviour
// handling is explicitly deferred (spec.md §1 Non-goal, §4.E "not
// implemented in this revision").
func (h *Handler) SubmitMisbehaviour(clientID string, header ibctypes.AnyHeader) error {
	return fmt.Errorf("%w: misbehaviour handling is not implemented", ibcerrors.ErrInvalidClientMessage)
}

// appendConsensusHeight keeps ConsensusHeights(id) in sync with the set
// of heights that actually have a stored consensus state (§3 invariant 2).
func (h *Handler) appendConsensusHeight(clientID string, height ibctypes.Height) error {
	return ibcstate.Update(h.State, path.ConsensusHeightsPath{ClientID: clientID}, []ibctypes.Height{}, func(heights []ibctypes.Height) ([]ibctypes.Height, error) {
		for _, existing := range heights {
			if existing == height {
				return heights, nil
			}
		}
		heights = append(heights, height)
		sort.Slice(heights, func(i, j int) bool { return ibctypes.CompareHeights(heights[i], heights[j]) < 0 })
		return heights, nil
	})
}

// Expired reports whether elapsed exceeds client_id's validity window.
func (h *Handler) Expired(clientID string, elapsed time.Duration) (bool, error) {
	clientState, ok, err := ibcstate.Get[ibctypes.AnyClientState](h.State, path.ClientStatePath{ClientID: clientID})
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("%w: %q", ibcerrors.ErrClientNotFound, clientID)
	}
	arm, _, err := h.clientArm(clientState.TypeURL)
	if err != nil {
		return false, err
	}
	return arm.Expired(clientState, elapsed), nil
}
