// Package instruction parses and dispatches the program's wire-level
// instruction data (§4.G): the chunked-upload reassembly envelope, the
// type-URL-tagged Any wrapper client messages travel in, and the
// sum-typed message decoder the program entrypoint calls first.
package instruction

import (
	"fmt"

	"github.com/cosmos/gogoproto/proto"
	gogotypes "github.com/cosmos/gogoproto/types"
)

// Any is the program-side counterpart of §6's wire Payload ("Any{
// type_url: string, value: bytes } // protobuf"). TypeURL/Value mirror
// a decoded gogoproto Any's TypeUrl/Value exactly; EncodeAny/DecodeAny
// marshal through gogoproto's own well-known Any message
// (github.com/cosmos/gogoproto/types) rather than a hand-rolled Borsh
// layout, so the envelope on the wire is the same protobuf Any any
// other gogoproto-based IBC client already produces.
type Any struct {
	TypeURL string
	Value   []byte
}

// EncodeAny marshals a as a standard protobuf Any message.
func EncodeAny(a Any) ([]byte, error) {
	data, err := proto.Marshal(&gogotypes.Any{TypeUrl: a.TypeURL, Value: a.Value})
	if err != nil {
		return nil, fmt.Errorf("instruction: encode any: %w", err)
	}
	return data, nil
}

// DecodeAny is EncodeAny's inverse.
func DecodeAny(data []byte) (Any, error) {
	var pb gogotypes.Any
	if err := proto.Unmarshal(data, &pb); err != nil {
		return Any{}, fmt.Errorf("instruction: decode any: %w", err)
	}
	return Any{TypeURL: pb.TypeUrl, Value: pb.Value}, nil
}
