package ibc

import "github.com/eclipse-labs/ibc-program/ibctypes"

// ModuleCallback is the callback surface every bound module implements,
// as an in-process Go interface (SPEC_FULL.md §3.1, grounded on
// original_source/module_instruction.rs). The handler's channel and
// packet operations do not invoke these callbacks: RouteToModule only
// resolves the implementation bound to a port, and no callback error is
// turned into a handler error.
type ModuleCallback interface {
	OnChanOpenInit(portID, channelID string, counterparty ibctypes.ChannelCounterparty, version string) (negotiatedVersion string, err error)
	OnChanOpenTry(portID, channelID string, counterparty ibctypes.ChannelCounterparty, counterpartyVersion string) (negotiatedVersion string, err error)
	OnChanOpenAck(portID, channelID string, counterpartyVersion string) error
	OnChanOpenConfirm(portID, channelID string) error
	OnChanCloseInit(portID, channelID string) error
	OnChanCloseConfirm(portID, channelID string) error
	OnRecvPacket(portID, channelID string, pkt ibctypes.Packet) (ack []byte, err error)
	OnAcknowledgementPacket(portID, channelID string, pkt ibctypes.Packet, ack []byte) error
	OnTimeoutPacket(portID, channelID string, pkt ibctypes.Packet) error
}

// ModuleRegistry is the read-through lookup from ModuleID to the
// callback implementation bound under it, populated once by the host
// program wiring a concrete module (e.g. modules/ics20) to its
// identity. This is the router's "enumerate modules upfront" workaround
// of §9, modeled as a static table rather than a runtime plugin.
type ModuleRegistry struct {
	callbacks map[ibctypes.ModuleID]ModuleCallback
}

// NewModuleRegistry constructs an empty registry; callers Register each
// module they host before dispatching any channel/packet message.
func NewModuleRegistry() *ModuleRegistry {
	return &ModuleRegistry{callbacks: make(map[ibctypes.ModuleID]ModuleCallback)}
}

// Register binds id's callback implementation.
func (r *ModuleRegistry) Register(id ibctypes.ModuleID, cb ModuleCallback) {
	r.callbacks[id] = cb
}

// Lookup resolves id to its callback implementation.
func (r *ModuleRegistry) Lookup(id ibctypes.ModuleID) (ModuleCallback, bool) {
	cb, ok := r.callbacks[id]
	return cb, ok
}

// RouteToModule resolves portID through the Port map and then through
// modules to find the callback implementation bound to that port.
func (h *Handler) RouteToModule(modules *ModuleRegistry, portID string) (ModuleCallback, error) {
	id, ok, err := h.LookupModuleByPort(portID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, portNotBoundError(portID)
	}
	cb, ok := modules.Lookup(id)
	if !ok {
		return nil, portNotBoundError(portID)
	}
	return cb, nil
}
