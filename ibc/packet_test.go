package ibc_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eclipse-labs/ibc-program/ibcstate"
	"github.com/eclipse-labs/ibc-program/ibctypes"
	"github.com/eclipse-labs/ibc-program/path"
	"github.com/eclipse-labs/ibc-program/proof"
)

func TestSendThenRecvThenAcknowledgePacketUnordered(t *testing.T) {
	h, store := newHandler(t, 0, 1000)
	clientID := createHostClient(t, h, "eclipse-test-0", [32]byte{0x01}, 1000)
	// createHostClient already committed slot 0; the connection and
	// channel are committed at the next slot.
	h0 := reopenHandler(t, store, 1, 1050)
	connectionID := openDirectConnection(t, h0, clientID)
	channelID := openDirectChannel(t, h0, "transfer", connectionID, ibctypes.Unordered)
	_, err := h0.Commit()
	require.NoError(t, err)

	pkt := ibctypes.Packet{
		Sequence:        1,
		SourcePort:      "transfer",
		SourceChannel:   channelID,
		DestinationPort: "transfer", DestinationChannel: channelID,
		Data:             []byte("hello"),
		TimeoutTimestamp: 0,
	}

	h1 := reopenHandler(t, store, 2, 1100)
	require.NoError(t, h1.SendPacket("transfer", channelID, pkt))
	_, err = h1.Commit()
	require.NoError(t, err)

	h2 := reopenHandler(t, store, 3, 1200)
	commitmentPath := path.CommitmentPath{PortID: "transfer", ChannelID: channelID, Sequence: pkt.Sequence}
	commitmentBytes, ok, err := ibcstate.Get[[]byte](h2.State, commitmentPath)
	require.NoError(t, err)
	require.True(t, ok)

	existence, _, err := h2.State.GetProof(commitmentPath)
	require.NoError(t, err)
	proofCommitment := proof.ToMerkleProof(existence)

	ack := []byte("ack-success")
	err = h2.RecvPacket(
		"transfer", channelID, pkt, ack,
		proofCommitment, ibctypes.Height{RevisionNumber: 0, RevisionHeight: 1},
		commitmentPath.String(), commitmentBytes,
	)
	require.NoError(t, err)
	_, err = h2.Commit()
	require.NoError(t, err)

	// duplicate receive on an unordered channel is rejected.
	h3 := reopenHandler(t, store, 4, 1300)
	err = h3.RecvPacket(
		"transfer", channelID, pkt, ack,
		proofCommitment, ibctypes.Height{RevisionNumber: 0, RevisionHeight: 1},
		commitmentPath.String(), commitmentBytes,
	)
	require.Error(t, err)

	// AcknowledgePacket on the sending side proves the ack and clears
	// its own commitment.
	ackPath := path.AckPath{PortID: "transfer", ChannelID: channelID, Sequence: pkt.Sequence}
	existenceAck, _, err := h3.State.GetProof(ackPath)
	require.NoError(t, err)
	proofAck := proof.ToMerkleProof(existenceAck)

	err = h3.AcknowledgePacket(
		"transfer", channelID, pkt.Sequence,
		proofAck, ibctypes.Height{RevisionNumber: 0, RevisionHeight: 1},
		ackPath.String(), ack,
	)
	require.NoError(t, err)
	_, err = h3.Commit()
	require.NoError(t, err)

	h4 := reopenHandler(t, store, 5, 1400)
	_, exists, err := ibcstate.Get[[]byte](h4.State, commitmentPath)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestSendPacketRejectsWrongSequence(t *testing.T) {
	h, _ := newHandler(t, 0, 1000)
	clientID := createHostClient(t, h, "eclipse-test-0", [32]byte{0x01}, 1000)
	connectionID := openDirectConnection(t, h, clientID)
	channelID := openDirectChannel(t, h, "transfer", connectionID, ibctypes.Unordered)

	pkt := ibctypes.Packet{Sequence: 5, SourcePort: "transfer", SourceChannel: channelID, DestinationPort: "transfer", DestinationChannel: channelID}
	err := h.SendPacket("transfer", channelID, pkt)
	require.Error(t, err)
}

func TestTimeoutPacketFreezesOrderedChannel(t *testing.T) {
	h, store := newHandler(t, 0, 1000)
	clientID := createHostClient(t, h, "eclipse-test-0", [32]byte{0x01}, 1000)
	// createHostClient already committed slot 0; the connection and
	// channel are committed at the next slot.
	h0 := reopenHandler(t, store, 1, 1050)
	connectionID := openDirectConnection(t, h0, clientID)
	channelID := openDirectChannel(t, h0, "transfer", connectionID, ibctypes.Ordered)
	_, err := h0.Commit()
	require.NoError(t, err)

	pkt := ibctypes.Packet{
		Sequence: 1, SourcePort: "transfer", SourceChannel: channelID,
		DestinationPort: "transfer", DestinationChannel: channelID,
		TimeoutTimestamp: 1,
	}
	h1 := reopenHandler(t, store, 2, 1100)
	require.NoError(t, h1.SendPacket("transfer", channelID, pkt))
	_, err = h1.Commit()
	require.NoError(t, err)

	h2 := reopenHandler(t, store, 3, 1200)
	receiptPath := path.ReceiptPath{PortID: "transfer", ChannelID: channelID, Sequence: pkt.Sequence}
	nonExistence, err := h2.State.GetNonMembership(receiptPath)
	require.NoError(t, err)
	proofUnreceived := proof.ToNonMembershipMerkleProof(nonExistence)

	err = h2.TimeoutPacket(
		"transfer", channelID, pkt,
		proofUnreceived, ibctypes.Height{RevisionNumber: 0, RevisionHeight: 1},
		receiptPath.String(),
	)
	require.NoError(t, err)
	_, err = h2.Commit()
	require.NoError(t, err)

	h3 := reopenHandler(t, store, 4, 1300)
	end, ok, err := ibcstate.Get[ibctypes.ChannelEnd](h3.State, path.ChannelEndPath{PortID: "transfer", ChannelID: channelID})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, ibctypes.ChannelClosed, end.State)
}
