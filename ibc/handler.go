// Package ibc is the handler that interprets IBC messages — ICS-02
// client, ICS-03 connection, ICS-04 channel/packet lifecycle — against
// the ibcstate.IbcState overlay (§4.E). One file per concern, matching
// the teacher's one-concept-per-file layout
// (tools/solana-ibc/{access_manager,upgrade,helpers}.go): client.go,
// connection.go, channel.go, packet.go, port.go, router.go, handler.go,
// validation.go, execution.go.
package ibc

import (
	"time"

	"go.uber.org/zap"

	"github.com/eclipse-labs/ibc-program/ibcstate"
	"github.com/eclipse-labs/ibc-program/ibctypes"
	"github.com/eclipse-labs/ibc-program/path"
)

// maxExpectedTimePerBlock bounds ICS-03 delay-period checks (§5).
const maxExpectedTimePerBlock = 600 * time.Millisecond

// Handler dispatches one parsed IBC message against the overlay and
// the metadata counters, returning success or a classified error
// (§4.E). A Handler's lifetime is scoped to a single dispatch.
type Handler struct {
	State    *ibcstate.IbcState
	Metadata *ibctypes.Metadata

	Slot      uint64
	UnixNano  int64
	Signer    string

	Registry *ClientRegistry

	Logger *zap.Logger
}

// New constructs a Handler for one dispatch at the given slot. It loads
// the Metadata counters from state; port routing (§4.E "module
// routing") is a direct Port-path read on every lookup rather than a
// cache populated here — see ibc/port.go lookupModuleByPort, grounded
// on original_source/ibc_handler.rs lookup_module_by_port.
func New(state *ibcstate.IbcState, slot uint64, unixNano int64, signer string, log *zap.Logger) (*Handler, error) {
	meta, ok, err := ibcstate.Get[ibctypes.Metadata](state, path.MetadataPath{})
	if err != nil {
		return nil, err
	}
	if !ok {
		meta = ibctypes.Metadata{}
	}

	return &Handler{
		State:    state,
		Metadata: &meta,
		Slot:     slot,
		UnixNano: unixNano,
		Signer:   signer,
		Registry: NewClientRegistry(),
		Logger:   log,
	}, nil
}

// persistMetadata writes the (possibly advanced) counters back to the
// overlay. Every operation that mints an identifier calls this before
// returning success, so the counter advance and the entity write
// commit atomically together (§4.E "pre-increment read, post-increment
// store").
func (h *Handler) persistMetadata() error {
	return ibcstate.Set(h.State, path.MetadataPath{}, *h.Metadata)
}

// Commit finalizes this dispatch's writes into a new JMT version.
func (h *Handler) Commit() ([32]byte, error) {
	return h.State.Commit()
}
