package path

// Schema names the wire shape a path variant's value is encoded with.
// ibcstate.IbcState consults SchemaFor to pick the right Borsh
// (de)coder on read and write; a mismatch between the schema a caller
// assumes and the one returned here can only happen by calling the
// generic ibcstate.Get[T]/Set[T] with the wrong T. The compiler does
// not catch that (T is unconstrained); each path type is only ever
// paired with one T throughout ibc and lightclient/*.
type Schema uint8

const (
	SchemaOpaqueAny Schema = iota
	SchemaStruct
	SchemaU64
	SchemaBytes
	SchemaReceiptSentinel
	SchemaHeightSet
	SchemaModuleSet
	SchemaModuleID
	SchemaUnixNano
	SchemaHeight
	SchemaMarker
	SchemaMetadata
)

// SchemaFor implements the policy table of §4.B as a closed type
// switch over the Path variants declared in path.go.
func SchemaFor(p Path) Schema {
	switch p.(type) {
	case ClientStatePath, ClientConsensusStatePath:
		return SchemaOpaqueAny
	case ConnectionPath, ChannelEndPath:
		return SchemaStruct
	case SeqSendPath, SeqRecvPath, SeqAckPath:
		return SchemaU64
	case CommitmentPath, AckPath:
		return SchemaBytes
	case ReceiptPath:
		return SchemaReceiptSentinel
	case ConsensusHeightsPath:
		return SchemaHeightSet
	case AllModulesPath:
		return SchemaModuleSet
	case PortPath:
		return SchemaModuleID
	case ClientUpdateTimePath:
		return SchemaUnixNano
	case ClientUpdateHeightPath:
		return SchemaHeight
	case StateInitializedPath:
		return SchemaMarker
	case MetadataPath:
		return SchemaMetadata
	case ClientConnectionsPath:
		return SchemaStruct // encodes a []string of connection ids
	default:
		panic("path: no schema registered for path variant")
	}
}
