package instruction

// Message type URLs bucket every program instruction into exactly one
// of the three decode paths (§9 "sum-typed instruction envelopes"):
// router (ICS-02/03/04 handler operations), port (bind/release), and
// admin (program lifecycle). These are distinct from the light-client
// tags (ibctypes.ClientType, and the wire type URLs in
// lightclient/tendermint), which label ClientState/ConsensusState/Header
// values, not messages.
const (
	TypeURLCreateClient        = "/ibc.msg.v1.CreateClient"
	TypeURLUpdateClient        = "/ibc.msg.v1.UpdateClient"
	TypeURLUpgradeClient       = "/ibc.msg.v1.UpgradeClient"
	TypeURLSubmitMisbehaviour  = "/ibc.msg.v1.SubmitMisbehaviour"
	TypeURLConnectionOpenInit  = "/ibc.msg.v1.ConnectionOpenInit"
	TypeURLConnectionOpenTry   = "/ibc.msg.v1.ConnectionOpenTry"
	TypeURLConnectionOpenAck   = "/ibc.msg.v1.ConnectionOpenAck"
	TypeURLConnectionOpenConfirm = "/ibc.msg.v1.ConnectionOpenConfirm"
	TypeURLChannelOpenInit     = "/ibc.msg.v1.ChannelOpenInit"
	TypeURLChannelOpenTry      = "/ibc.msg.v1.ChannelOpenTry"
	TypeURLChannelOpenAck      = "/ibc.msg.v1.ChannelOpenAck"
	TypeURLChannelOpenConfirm  = "/ibc.msg.v1.ChannelOpenConfirm"
	TypeURLChannelCloseInit    = "/ibc.msg.v1.ChannelCloseInit"
	TypeURLChannelCloseConfirm = "/ibc.msg.v1.ChannelCloseConfirm"
	TypeURLSendPacket          = "/ibc.msg.v1.SendPacket"
	TypeURLRecvPacket          = "/ibc.msg.v1.RecvPacket"
	TypeURLAcknowledgePacket   = "/ibc.msg.v1.AcknowledgePacket"
	TypeURLTimeoutPacket       = "/ibc.msg.v1.TimeoutPacket"
	TypeURLTimeoutOnClose      = "/ibc.msg.v1.TimeoutOnClose"

	TypeURLBindPort    = "/ibc.msg.v1.BindPort"
	TypeURLReleasePort = "/ibc.msg.v1.ReleasePort"

	TypeURLInitStorageAccount = "/ibc.msg.v1.InitStorageAccount"
	TypeURLWriteTxBuffer      = "/ibc.msg.v1.WriteTxBuffer"
)

var routerTypeURLs = map[string]bool{
	TypeURLCreateClient:          true,
	TypeURLUpdateClient:          true,
	TypeURLUpgradeClient:         true,
	TypeURLSubmitMisbehaviour:    true,
	TypeURLConnectionOpenInit:    true,
	TypeURLConnectionOpenTry:     true,
	TypeURLConnectionOpenAck:     true,
	TypeURLConnectionOpenConfirm: true,
	TypeURLChannelOpenInit:       true,
	TypeURLChannelOpenTry:        true,
	TypeURLChannelOpenAck:        true,
	TypeURLChannelOpenConfirm:    true,
	TypeURLChannelCloseInit:      true,
	TypeURLChannelCloseConfirm:   true,
	TypeURLSendPacket:            true,
	TypeURLRecvPacket:            true,
	TypeURLAcknowledgePacket:     true,
	TypeURLTimeoutPacket:         true,
	TypeURLTimeoutOnClose:        true,
}

var portTypeURLs = map[string]bool{
	TypeURLBindPort:    true,
	TypeURLReleasePort: true,
}

var adminTypeURLs = map[string]bool{
	TypeURLInitStorageAccount: true,
	TypeURLWriteTxBuffer:      true,
}
