package instruction

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

// Envelope is the account side of a chunked header upload: a Solana
// transaction carries only so many bytes, so a large Tendermint header
// or client state arrives as a sequence of "extra account" chunk
// transactions followed by one final transaction naming how many
// chunks preceded it and the tail bytes that round the payload out
// (§4.G, grounded on the teacher's chunked relay submission in
// e2e/interchaintestv8/solana/test_helpers.go SubmitChunkedRelayPackets
// — reassembly there is driven by the relayer and replayed here as the
// program-side inverse).
type Envelope struct {
	ExtraAccountCount uint32
	LastPart          []byte
}

// Reassemble concatenates the byte contents of extraAccounts, in
// order, followed by lastPart, producing the full instruction payload
// a chunked upload was split out of.
func Reassemble(extraAccounts [][]byte, lastPart []byte) []byte {
	total := len(lastPart)
	for _, chunk := range extraAccounts {
		total += len(chunk)
	}
	out := make([]byte, 0, total)
	for _, chunk := range extraAccounts {
		out = append(out, chunk...)
	}
	out = append(out, lastPart...)
	return out
}

// EncodeEnvelope Borsh-encodes e. Unlike Any, Envelope is a plain
// struct of a fixed-width field and one byte vector, so the generic
// reflection-driven encoder ibcstate/codec.go uses for structs applies
// directly — no hand-rolled layout is needed here.
func EncodeEnvelope(e Envelope) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.Encode(e); err != nil {
		return nil, fmt.Errorf("instruction: encode envelope: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeEnvelope is EncodeEnvelope's inverse.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var e Envelope
	dec := bin.NewBorshDecoder(data)
	if err := dec.Decode(&e); err != nil {
		return Envelope{}, fmt.Errorf("instruction: decode envelope: %w", err)
	}
	return e, nil
}
