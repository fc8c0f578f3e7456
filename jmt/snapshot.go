package jmt

// Snapshot is the exported, Borsh-encodable projection of a MemStore's
// entire contents (§4.C: "a durable on-disk store is a host-runtime
// account-serialization concern"; see program.Persist/program.Load,
// which Borsh-encode a Snapshot into the one account this module is
// given). MemStore's own fields stay unexported so every mutation path
// continues to go through WriteNodeBatch under its lock; Snapshot/
// Restore are the only way in or out.
type Snapshot struct {
	Nodes        []NodeEntry
	ValueHistory []ValueHistoryEntry
	Preimages    []PreimageEntry
	Versions     []Version
}

// NodeEntry is one physical node, tagged by kind since Node is a sum
// type and Borsh has no native interface support.
type NodeEntry struct {
	Key  NodeKey
	Kind uint8 // 0 = internal, 1 = leaf, 2 = null
	Internal InternalNode
	Leaf     LeafNode
}

const (
	nodeKindInternal uint8 = 0
	nodeKindLeaf     uint8 = 1
	nodeKindNull     uint8 = 2
)

// ValueHistoryEntry is one (key, version) value-history record.
type ValueHistoryEntry struct {
	KeyHash KeyHash
	Version Version
	Value   []byte
	Present bool
}

// PreimageEntry is one key hash's recorded path-string preimage.
type PreimageEntry struct {
	KeyHash  KeyHash
	Preimage []byte
}

// Snapshot captures the full contents of s for serialization.
func (s *MemStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Nodes:        make([]NodeEntry, 0, len(s.nodes)),
		ValueHistory: make([]ValueHistoryEntry, 0),
		Preimages:    make([]PreimageEntry, 0, len(s.preimages)),
		Versions:     append([]Version(nil), s.versions...),
	}
	for mk, n := range s.nodes {
		nk := NodeKey{Version: mk.version, Path: NibblePath{Nibbles: []byte(mk.nibbles)}}
		entry := NodeEntry{Key: nk}
		switch v := n.(type) {
		case InternalNode:
			entry.Kind = nodeKindInternal
			entry.Internal = v
		case LeafNode:
			entry.Kind = nodeKindLeaf
			entry.Leaf = v
		case NullNode:
			entry.Kind = nodeKindNull
		}
		snap.Nodes = append(snap.Nodes, entry)
	}
	for kh, hist := range s.valueHistory {
		for _, v := range hist {
			snap.ValueHistory = append(snap.ValueHistory, ValueHistoryEntry{
				KeyHash: kh, Version: v.version, Value: v.value, Present: v.present,
			})
		}
	}
	for kh, p := range s.preimages {
		snap.Preimages = append(snap.Preimages, PreimageEntry{KeyHash: kh, Preimage: p})
	}
	return snap
}

// RestoreMemStore rebuilds a MemStore from a Snapshot produced by
// MemStore.Snapshot.
func RestoreMemStore(snap Snapshot) *MemStore {
	s := NewMemStore()
	for _, e := range snap.Nodes {
		var n Node
		switch e.Kind {
		case nodeKindInternal:
			n = e.Internal
		case nodeKindLeaf:
			n = e.Leaf
		default:
			n = NullNode{}
		}
		s.nodes[toMapKey(e.Key)] = n
	}
	for _, e := range snap.ValueHistory {
		s.valueHistory[e.KeyHash] = append(s.valueHistory[e.KeyHash], versionedValue{
			version: e.Version, value: e.Value, present: e.Present,
		})
	}
	for _, e := range snap.Preimages {
		s.preimages[e.KeyHash] = e.Preimage
	}
	s.versions = append([]Version(nil), snap.Versions...)
	return s
}
