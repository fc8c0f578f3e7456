package ibcstate

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"

	"github.com/eclipse-labs/ibc-program/path"
)

// encodeValue renders v to its on-chain byte form per the schema
// path.SchemaFor(p) selects (§4.B). SchemaBytes and SchemaReceiptSentinel
// store the raw bytes verbatim — Borsh-wrapping a byte slice would add
// a length prefix that the JMT's leaf hashing (jmt.HashValue) never
// expects callers to peel back off before re-hashing. SchemaMarker
// values carry no payload at all. Everything else is a plain Borsh
// encoding, the same wire convention the teacher's generated
// instruction builders use throughout packages/go-anchor.
func encodeValue(schema path.Schema, v any) ([]byte, error) {
	switch schema {
	case path.SchemaBytes, path.SchemaReceiptSentinel:
		b, ok := v.([]byte)
		if !ok {
			return nil, fmt.Errorf("ibcstate: schema %d expects []byte, got %T", schema, v)
		}
		return b, nil
	case path.SchemaMarker:
		return []byte{}, nil
	default:
		buf := new(bytes.Buffer)
		enc := bin.NewBorshEncoder(buf)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("ibcstate: borsh encode: %w", err)
		}
		return buf.Bytes(), nil
	}
}

// decodeValue is encodeValue's inverse. out must be a pointer to the
// schema's Go representation (a *T from the caller's Get[T]).
func decodeValue(schema path.Schema, data []byte, out any) error {
	switch schema {
	case path.SchemaBytes, path.SchemaReceiptSentinel:
		ptr, ok := out.(*[]byte)
		if !ok {
			return fmt.Errorf("ibcstate: schema %d expects *[]byte, got %T", schema, out)
		}
		*ptr = append([]byte(nil), data...)
		return nil
	case path.SchemaMarker:
		return nil
	default:
		dec := bin.NewBorshDecoder(data)
		if err := dec.Decode(out); err != nil {
			return fmt.Errorf("ibcstate: borsh decode: %w", err)
		}
		return nil
	}
}
