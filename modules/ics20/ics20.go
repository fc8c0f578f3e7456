// Package ics20 is a minimal, explicitly-sketched fungible-transfer
// module bound to port "transfer" (SPEC_FULL.md §3.1, grounded on
// original_source/program/src/ics20_module.rs). It negotiates the
// ics20-1 version and accepts the handshake/close callbacks, but
// OnRecvPacket deliberately does not move value: escrow and
// denomination tracking are unspecified, matching the source's own
// sketch-not-wired state rather than a regression from it.
package ics20

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/eclipse-labs/ibc-program/ibc"
	"github.com/eclipse-labs/ibc-program/ibctypes"
)

// Version is the only fungible-transfer version this module negotiates.
const Version = "ics20-1"

// PortID is the port this module expects to be bound under.
const PortID = "transfer"

// PacketData is the ICS-20 packet data shape: denomination, amount as
// a decimal string (arbitrary precision, matching ibc-go's convention),
// sender, and receiver.
type PacketData struct {
	Denom    string `json:"denom"`
	Amount   string `json:"amount"`
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Memo     string `json:"memo,omitempty"`
}

// Module implements ibc.ModuleCallback for port "transfer". It holds no
// escrow ledger: see OnRecvPacket.
type Module struct {
	log *zap.Logger
}

// New constructs a transfer module. log may be nil.
func New(log *zap.Logger) *Module {
	return &Module{log: log}
}

var _ ibc.ModuleCallback = (*Module)(nil)

func (m *Module) OnChanOpenInit(portID, channelID string, counterparty ibctypes.ChannelCounterparty, version string) (string, error) {
	if version != "" && version != Version {
		return "", fmt.Errorf("ics20: unsupported version %q, want %q", version, Version)
	}
	return Version, nil
}

func (m *Module) OnChanOpenTry(portID, channelID string, counterparty ibctypes.ChannelCounterparty, counterpartyVersion string) (string, error) {
	if counterpartyVersion != Version {
		return "", fmt.Errorf("ics20: unsupported counterparty version %q, want %q", counterpartyVersion, Version)
	}
	return Version, nil
}

func (m *Module) OnChanOpenAck(portID, channelID string, counterpartyVersion string) error {
	if counterpartyVersion != Version {
		return fmt.Errorf("ics20: unsupported counterparty version %q, want %q", counterpartyVersion, Version)
	}
	return nil
}

func (m *Module) OnChanOpenConfirm(portID, channelID string) error { return nil }
func (m *Module) OnChanCloseInit(portID, channelID string) error   { return nil }
func (m *Module) OnChanCloseConfirm(portID, channelID string) error { return nil }

// OnRecvPacket decodes the packet data but does not escrow or mint:
// the acknowledgement reports the transfer as not yet wired, matching
// ics20_module.rs's own sketch. Callers should not rely on this module
// moving value.
func (m *Module) OnRecvPacket(portID, channelID string, pkt ibctypes.Packet) ([]byte, error) {
	var data PacketData
	if err := json.Unmarshal(pkt.Data, &data); err != nil {
		return errorAck(fmt.Sprintf("ics20: malformed packet data: %v", err)), nil
	}
	if m.log != nil {
		m.log.Info("ics20: recv packet not wired",
			zap.String("denom", data.Denom), zap.String("amount", data.Amount))
	}
	return errorAck("ics20: transfers not yet wired"), nil
}

func (m *Module) OnAcknowledgementPacket(portID, channelID string, pkt ibctypes.Packet, ack []byte) error {
	return nil
}

func (m *Module) OnTimeoutPacket(portID, channelID string, pkt ibctypes.Packet) error {
	return nil
}

// errorAck builds the ICS-20 convention error acknowledgement:
// `{"error":"..."}`.
func errorAck(msg string) []byte {
	b, _ := json.Marshal(struct {
		Error string `json:"error"`
	}{Error: msg})
	return b
}
