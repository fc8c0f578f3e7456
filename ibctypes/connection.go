package ibctypes

// ConnectionState is the ICS-03 handshake state.
type ConnectionState uint8

const (
	ConnectionUninitialized ConnectionState = iota
	ConnectionInit
	ConnectionTryOpen
	ConnectionOpen
)

func (s ConnectionState) String() string {
	switch s {
	case ConnectionInit:
		return "Init"
	case ConnectionTryOpen:
		return "TryOpen"
	case ConnectionOpen:
		return "Open"
	default:
		return "Uninitialized"
	}
}

// Counterparty describes the remote side of a connection: its client
// id, the connection id it knows us by (empty until the handshake
// reaches TryOpen on the counterparty), and the commitment prefix it
// namespaces its IBC store under.
type ConnectionCounterparty struct {
	ClientID         string
	ConnectionID     string
	CommitmentPrefix []byte
}

// Version is the ICS-03 feature-set negotiated for a connection.
type ConnectionVersion struct {
	Identifier string
	Features   []string
}

// ConnectionEnd is the persisted record for one connection (§3).
type ConnectionEnd struct {
	State          ConnectionState
	ClientID       string
	Counterparty   ConnectionCounterparty
	Versions       []ConnectionVersion
	DelayPeriod    uint64
}

// DefaultIBCVersion is the only version this module proposes or accepts,
// matching ibc-go's convention of a single ORDER_ORDERED/ORDER_UNORDERED
// feature set.
func DefaultIBCVersion() ConnectionVersion {
	return ConnectionVersion{
		Identifier: "1",
		Features:   []string{"ORDER_ORDERED", "ORDER_UNORDERED"},
	}
}
