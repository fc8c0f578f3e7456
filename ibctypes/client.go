package ibctypes

// ClientType identifies which arm of the polymorphic client sum type a
// ClientState/ConsensusState/Header belongs to. New arms are added here
// and registered with ibc.ClientRegistry; nothing else needs to change.
type ClientType string

const (
	ClientTypeTendermint ClientType = "tendermint"
	ClientTypeEclipse    ClientType = "xx-eclipse"
)

// AnyClientState is the opaque type-URL-tagged bytes envelope client
// and consensus states are stored as (§4.B: "opaque type-URL-tagged
// bytes (polymorphic clients)"). The handler never inspects Value
// directly — it re-decodes through the client registry keyed by
// TypeURL.
type AnyClientState struct {
	TypeURL string
	Value   []byte
}

// AnyConsensusState is the consensus-state counterpart of AnyClientState.
type AnyConsensusState struct {
	TypeURL string
	Value   []byte
}

// AnyHeader is the header counterpart, carried in UpdateClient messages.
type AnyHeader struct {
	TypeURL string
	Value   []byte
}

// FrozenHeightOf is a convenience nil-safe accessor used by the handler
// when deciding whether further updates to a client are rejected
// (§3 invariant 5).
func FrozenHeightOf(frozen *Height) (Height, bool) {
	if frozen == nil {
		return Height{}, false
	}
	return *frozen, true
}
