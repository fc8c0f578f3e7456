package ibc_test

import (
	"bytes"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eclipse-labs/ibc-program/ibc"
	"github.com/eclipse-labs/ibc-program/ibcstate"
	"github.com/eclipse-labs/ibc-program/ibctypes"
	"github.com/eclipse-labs/ibc-program/jmt"
	"github.com/eclipse-labs/ibc-program/lightclient/host"
	"github.com/eclipse-labs/ibc-program/path"
)

func borshEncode(t *testing.T, v any) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, bin.NewBorshEncoder(buf).Encode(v))
	return buf.Bytes()
}

// newHandler opens a fresh in-memory store and builds a Handler over it
// at the given slot, committing any writes the caller makes through it.
func newHandler(t *testing.T, slot uint64, unixNano int64) (*ibc.Handler, *jmt.MemStore) {
	t.Helper()
	store := jmt.NewMemStore()
	state := ibcstate.New(store, slot, zap.NewNop())
	h, err := ibc.New(state, slot, unixNano, "signer-1", zap.NewNop())
	require.NoError(t, err)
	return h, store
}

// reopenHandler builds a fresh Handler over store's last committed
// version, the way a new instruction dispatch would.
func reopenHandler(t *testing.T, store *jmt.MemStore, slot uint64, unixNano int64) *ibc.Handler {
	t.Helper()
	state := ibcstate.New(store, slot, zap.NewNop())
	h, err := ibc.New(state, slot, unixNano, "signer-1", zap.NewNop())
	require.NoError(t, err)
	return h
}

// createHostClient creates a client of the host (xx-eclipse) type with
// an initial header at the given root/timestamp, committing the write.
func createHostClient(t *testing.T, h *ibc.Handler, chainID string, root [32]byte, ts int64) string {
	t.Helper()
	initialHeader := host.Header{
		Height:         host.HeightOfSlot(h.Slot),
		CommitmentRoot: root,
		Timestamp:      ts,
	}
	clientState := host.ClientState{ChainID: chainID, LatestHeader: initialHeader}
	consensusState := initialHeader.ConsensusState()

	clientID, err := h.CreateClient(
		ibctypes.AnyClientState{TypeURL: string(ibctypes.ClientTypeEclipse), Value: borshEncode(t, clientState)},
		ibctypes.AnyConsensusState{TypeURL: string(ibctypes.ClientTypeEclipse), Value: borshEncode(t, consensusState)},
	)
	require.NoError(t, err)
	_, err = h.Commit()
	require.NoError(t, err)
	return clientID
}

// openDirectConnection creates a connection and force-advances it to
// Open without running the proof handshake, for tests whose subject is
// channel/packet behavior rather than ICS-03 itself.
func openDirectConnection(t *testing.T, h *ibc.Handler, clientID string) string {
	t.Helper()
	connectionID, err := h.ConnectionOpenInit(
		clientID,
		ibctypes.ConnectionCounterparty{ClientID: clientID, CommitmentPrefix: []byte("ibc")},
		ibctypes.DefaultIBCVersion(),
		0,
	)
	require.NoError(t, err)

	end, ok, err := ibcstate.Get[ibctypes.ConnectionEnd](h.State, path.ConnectionPath{ConnectionID: connectionID})
	require.NoError(t, err)
	require.True(t, ok)
	end.State = ibctypes.ConnectionOpen
	end.Counterparty.ConnectionID = connectionID
	require.NoError(t, ibcstate.Set(h.State, path.ConnectionPath{ConnectionID: connectionID}, end))
	return connectionID
}

// openDirectChannel opens a channel on connectionID and force-advances
// it to Open without running the proof handshake, for tests whose
// subject is packet behavior rather than ICS-04 channel negotiation.
func openDirectChannel(t *testing.T, h *ibc.Handler, portID, connectionID string, ordering ibctypes.Ordering) string {
	t.Helper()
	channelID, err := h.ChannelOpenInit(portID, ordering, []string{connectionID}, ibctypes.ChannelCounterparty{PortID: portID, ChannelID: ""}, "ics20-1")
	require.NoError(t, err)

	p := path.ChannelEndPath{PortID: portID, ChannelID: channelID}
	end, ok, err := ibcstate.Get[ibctypes.ChannelEnd](h.State, p)
	require.NoError(t, err)
	require.True(t, ok)
	end.State = ibctypes.ChannelOpen
	end.Counterparty.ChannelID = channelID
	require.NoError(t, ibcstate.Set(h.State, p, end))
	return channelID
}

func hostHeader(t *testing.T, slot uint64, root [32]byte, ts int64) ibctypes.AnyHeader {
	t.Helper()
	return ibctypes.AnyHeader{
		TypeURL: string(ibctypes.ClientTypeEclipse),
		Value: borshEncode(t, host.Header{
			Height:         host.HeightOfSlot(slot),
			CommitmentRoot: root,
			Timestamp:      ts,
		}),
	}
}
