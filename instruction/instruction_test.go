package instruction_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eclipse-labs/ibc-program/instruction"
)

func TestReassembleConcatenatesChunksThenTail(t *testing.T) {
	chunks := [][]byte{[]byte("hello, "), []byte("large "), []byte("header ")}
	tail := []byte("payload")

	got := instruction.Reassemble(chunks, tail)
	require.Equal(t, "hello, large header payload", string(got))
}

func TestReassembleWithNoExtraAccountsIsJustTail(t *testing.T) {
	got := instruction.Reassemble(nil, []byte("whole thing fits"))
	require.Equal(t, "whole thing fits", string(got))
}

func TestEnvelopeRoundTrip(t *testing.T) {
	e := instruction.Envelope{ExtraAccountCount: 3, LastPart: []byte("tail-bytes")}
	encoded, err := instruction.EncodeEnvelope(e)
	require.NoError(t, err)

	decoded, err := instruction.DecodeEnvelope(encoded)
	require.NoError(t, err)
	require.Equal(t, e.ExtraAccountCount, decoded.ExtraAccountCount)
	require.Equal(t, e.LastPart, decoded.LastPart)
}

func TestAnyRoundTrip(t *testing.T) {
	a := instruction.Any{TypeURL: instruction.TypeURLCreateClient, Value: []byte{0x01, 0x02, 0x03}}
	encoded, err := instruction.EncodeAny(a)
	require.NoError(t, err)

	decoded, err := instruction.DecodeAny(encoded)
	require.NoError(t, err)
	require.Equal(t, a, decoded)
}

func TestDecodeRoutesByTypeURLBucket(t *testing.T) {
	router, err := instruction.Decode(instruction.Any{TypeURL: instruction.TypeURLCreateClient})
	require.NoError(t, err)
	require.Equal(t, "router", router.Kind())

	port, err := instruction.Decode(instruction.Any{TypeURL: instruction.TypeURLBindPort})
	require.NoError(t, err)
	require.Equal(t, "port", port.Kind())

	admin, err := instruction.Decode(instruction.Any{TypeURL: instruction.TypeURLInitStorageAccount})
	require.NoError(t, err)
	require.Equal(t, "admin", admin.Kind())

	_, err = instruction.Decode(instruction.Any{TypeURL: "/not.a.real.Msg"})
	require.Error(t, err)
}

// TestChunkedHeaderReassemblyThenDecode simulates a large header arriving
// as several chunk accounts plus a final transaction's tail bytes, the
// way a CreateClient carrying an oversized consensus state would
// (§4.G, §8 "chunked message" scenario).
func TestChunkedHeaderReassemblyThenDecode(t *testing.T) {
	original := instruction.Any{
		TypeURL: instruction.TypeURLCreateClient,
		Value:   make([]byte, 4096),
	}
	for i := range original.Value {
		original.Value[i] = byte(i)
	}
	full, err := instruction.EncodeAny(original)
	require.NoError(t, err)

	const chunkSize = 512
	var chunks [][]byte
	for len(full) > chunkSize {
		chunks = append(chunks, full[:chunkSize])
		full = full[chunkSize:]
	}
	tail := full

	reassembled := instruction.Reassemble(chunks, tail)
	decodedAny, err := instruction.DecodeAny(reassembled)
	require.NoError(t, err)
	require.Equal(t, original, decodedAny)

	msg, err := instruction.Decode(decodedAny)
	require.NoError(t, err)
	require.Equal(t, "router", msg.Kind())
}
