package ibc_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eclipse-labs/ibc-program/ibcstate"
	"github.com/eclipse-labs/ibc-program/ibctypes"
	"github.com/eclipse-labs/ibc-program/path"
	"github.com/eclipse-labs/ibc-program/proof"
)

// These tests drive the full ICS-03 four-step handshake against a
// single store. Every proof is generated and verified against this
// engine's own committed root rather than a second chain's — the
// "self-consistency check" policy DESIGN.md records for the
// verification-root Open Question — so ConnectionOpenTry/Ack/Confirm
// each prove a record this same handler committed on a prior slot.
func TestConnectionHandshakeInitTryAckConfirm(t *testing.T) {
	h, store := newHandler(t, 0, 1000)
	clientID := createHostClient(t, h, "eclipse-test-0", [32]byte{0x01}, 1000)

	h1 := reopenHandler(t, store, 1, 1100)
	counterpartyA := ibctypes.ConnectionCounterparty{ClientID: clientID, CommitmentPrefix: path.CommitmentPrefix}
	connA, err := h1.ConnectionOpenInit(clientID, counterpartyA, ibctypes.DefaultIBCVersion(), 0)
	require.NoError(t, err)
	require.Equal(t, "connection-0", connA)
	_, err = h1.Commit()
	require.NoError(t, err)

	// ConnectionOpenTry proves connA's Init record.
	h2 := reopenHandler(t, store, 2, 1200)
	connAEnd, ok, err := ibcstate.Get[ibctypes.ConnectionEnd](h2.State, path.ConnectionPath{ConnectionID: connA})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, ibctypes.ConnectionInit, connAEnd.State)

	existence, _, err := h2.State.GetProof(path.ConnectionPath{ConnectionID: connA})
	require.NoError(t, err)
	proofInit := proof.ToMerkleProof(existence)

	counterpartyB := ibctypes.ConnectionCounterparty{ClientID: clientID, CommitmentPrefix: path.CommitmentPrefix}
	connB, err := h2.ConnectionOpenTry(
		clientID, counterpartyB, ibctypes.DefaultIBCVersion(), 0,
		proofInit, proof.MerkleProof{}, ibctypes.Height{RevisionNumber: 0, RevisionHeight: 1},
		(path.ConnectionPath{ConnectionID: connA}).String(), borshEncode(t, connAEnd),
	)
	require.NoError(t, err)
	require.Equal(t, "connection-1", connB)
	_, err = h2.Commit()
	require.NoError(t, err)

	// ConnectionOpenAck proves connB's TryOpen record.
	h3 := reopenHandler(t, store, 3, 1300)
	connBEnd, ok, err := ibcstate.Get[ibctypes.ConnectionEnd](h3.State, path.ConnectionPath{ConnectionID: connB})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, ibctypes.ConnectionTryOpen, connBEnd.State)

	existenceTry, _, err := h3.State.GetProof(path.ConnectionPath{ConnectionID: connB})
	require.NoError(t, err)
	proofTry := proof.ToMerkleProof(existenceTry)

	err = h3.ConnectionOpenAck(
		connA, connB, proofTry, ibctypes.Height{RevisionNumber: 0, RevisionHeight: 1},
		(path.ConnectionPath{ConnectionID: connB}).String(), borshEncode(t, connBEnd),
	)
	require.NoError(t, err)
	_, err = h3.Commit()
	require.NoError(t, err)

	// ConnectionOpenConfirm proves connA's now-Open record.
	h4 := reopenHandler(t, store, 4, 1400)
	connAEndOpen, ok, err := ibcstate.Get[ibctypes.ConnectionEnd](h4.State, path.ConnectionPath{ConnectionID: connA})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, ibctypes.ConnectionOpen, connAEndOpen.State)
	require.Equal(t, connB, connAEndOpen.Counterparty.ConnectionID)

	existenceAck, _, err := h4.State.GetProof(path.ConnectionPath{ConnectionID: connA})
	require.NoError(t, err)
	proofAck := proof.ToMerkleProof(existenceAck)

	err = h4.ConnectionOpenConfirm(
		connB, proofAck, ibctypes.Height{RevisionNumber: 0, RevisionHeight: 1},
		(path.ConnectionPath{ConnectionID: connA}).String(), borshEncode(t, connAEndOpen),
	)
	require.NoError(t, err)
	_, err = h4.Commit()
	require.NoError(t, err)

	h5 := reopenHandler(t, store, 5, 1500)
	finalB, ok, err := ibcstate.Get[ibctypes.ConnectionEnd](h5.State, path.ConnectionPath{ConnectionID: connB})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, ibctypes.ConnectionOpen, finalB.State)
}

func TestConnectionOpenInitRejectsUnknownClient(t *testing.T) {
	h, _ := newHandler(t, 0, 1000)
	_, err := h.ConnectionOpenInit("nonexistent-client", ibctypes.ConnectionCounterparty{}, ibctypes.DefaultIBCVersion(), 0)
	require.Error(t, err)
}

func TestConnectionOpenAckRejectsWrongState(t *testing.T) {
	h, store := newHandler(t, 0, 1000)
	clientID := createHostClient(t, h, "eclipse-test-0", [32]byte{0x01}, 1000)

	h1 := reopenHandler(t, store, 1, 1100)
	connA, err := h1.ConnectionOpenInit(clientID, ibctypes.ConnectionCounterparty{ClientID: clientID}, ibctypes.DefaultIBCVersion(), 0)
	require.NoError(t, err)
	_, err = h1.Commit()
	require.NoError(t, err)

	// connA is still Init, not TryOpen; Ack must reject it directly.
	h2 := reopenHandler(t, store, 2, 1200)
	err = h2.ConnectionOpenAck(connA, "connection-1", proof.MerkleProof{}, ibctypes.Height{}, "", nil)
	require.Error(t, err)
}
