package ibctypes

// ModuleID is the opaque program identity a port is bound to — in the
// host runtime this would be another program's address; here it is
// carried as a hex-encoded opaque string per §4.B.
type ModuleID string

// Metadata is the three monotonic identifier counters (§3). It is
// itself a path-addressed singleton (internal/metadata, see
// SPEC_FULL.md §3.1) loaded once at handler construction and written
// back in the same transaction as every mutation that consumes a
// counter.
type Metadata struct {
	ClientIDCounter     uint64
	ConnectionIDCounter uint64
	ChannelIDCounter    uint64
}

// NextClientID mints "<type>-N" and advances the counter (§4.E
// CreateClient: "pre-increment read, post-increment store").
func (m *Metadata) NextClientID(clientType ClientType) string {
	n := m.ClientIDCounter
	m.ClientIDCounter++
	return string(clientType) + "-" + uitoa(n)
}

// NextConnectionID mints "connection-N".
func (m *Metadata) NextConnectionID() string {
	n := m.ConnectionIDCounter
	m.ConnectionIDCounter++
	return "connection-" + uitoa(n)
}

// NextChannelID mints "channel-N".
func (m *Metadata) NextChannelID() string {
	n := m.ChannelIDCounter
	m.ChannelIDCounter++
	return "channel-" + uitoa(n)
}

func uitoa(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
