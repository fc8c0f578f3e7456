package ibctypes

// ChannelState is the ICS-04 handshake state. Transitions follow the
// DAG Init -> TryOpen -> Open -> Closed with no back-transitions except
// to Closed (§3 invariant 6).
type ChannelState uint8

const (
	ChannelUninitialized ChannelState = iota
	ChannelInit
	ChannelTryOpen
	ChannelOpen
	ChannelClosed
)

func (s ChannelState) String() string {
	switch s {
	case ChannelInit:
		return "Init"
	case ChannelTryOpen:
		return "TryOpen"
	case ChannelOpen:
		return "Open"
	case ChannelClosed:
		return "Closed"
	default:
		return "Uninitialized"
	}
}

// Ordering is the ICS-04 channel ordering.
type Ordering uint8

const (
	Unordered Ordering = iota
	Ordered
)

func (o Ordering) String() string {
	if o == Ordered {
		return "ORDER_ORDERED"
	}
	return "ORDER_UNORDERED"
}

// ChannelCounterparty names the remote port/channel.
type ChannelCounterparty struct {
	PortID    string
	ChannelID string
}

// ChannelEnd is the persisted record for one channel end (§3).
type ChannelEnd struct {
	State          ChannelState
	Ordering       Ordering
	Counterparty   ChannelCounterparty
	ConnectionHops []string
	Version        string
}
