package ibctypes

// Packet is the ICS-04 packet envelope (§3).
type Packet struct {
	Sequence           uint64
	SourcePort         string
	SourceChannel      string
	DestinationPort    string
	DestinationChannel string
	Data               []byte
	TimeoutHeight      Height
	TimeoutTimestamp   uint64 // unix nanoseconds, 0 = no timestamp timeout
}

// ReceiptOK is the single-byte sentinel value stored at a Receipt path
// to mark a packet as received (§4.B).
var ReceiptOK = []byte{0x01}
