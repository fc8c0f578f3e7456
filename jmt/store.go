package jmt

import (
	"fmt"
	"sort"
	"sync"
)

// TreeUpdateBatch is what Tree.PutValueSet produces and Store.WriteNodeBatch
// consumes: the new physical nodes plus the per-key value-history entries
// for one version (§4.C/§4.D).
type TreeUpdateBatch struct {
	Version Version
	Nodes   map[NodeKey]Node
	// Values maps each touched key hash to its new value (nil = tombstone).
	Values map[KeyHash][]byte
	// Preimages records the raw path string behind each touched key hash,
	// needed to emit ICS-23 non-existence proofs later.
	Preimages map[KeyHash][]byte
}

// Store is the backing persistence contract of §4.C.
type Store interface {
	GetNodeOption(NodeKey) (Node, bool, error)
	GetValueOption(maxVersion Version, kh KeyHash) ([]byte, bool, error)
	GetRightmostLeaf() (NodeKey, LeafNode, bool, error)
	WriteNodeBatch(TreeUpdateBatch) error
	FindKeyVersion(maxVersion Version, kh KeyHash) (Version, bool, error)
	LatestVersion() (Version, bool)
	FindVersion(maxVersion Version) (Version, bool)
	Preimage(kh KeyHash) ([]byte, bool)
	// Iterate walks every live key at or before version in ascending
	// key-hash order — callers (notably NonExistenceProof) rely on the
	// ordering, not just the set.
	Iterate(version Version, fn func(KeyHash, []byte) error) error
}

// MemStore is the only Store implementation in this module: a set of
// in-memory maps guarded by one reader/writer lock (§4.C, §5 — "the
// store is protected by a single readers-writer lock; all mutation
// happens during commit"). A durable on-disk form is a host-runtime
// account-serialization concern; see program.Persist/program.Load for
// how the whole MemStore snapshot is Borsh-encoded into one account.
type MemStore struct {
	mu sync.RWMutex

	nodes map[nodeMapKey]Node
	// valueHistory[kh] is kept sorted by version ascending.
	valueHistory map[KeyHash][]versionedValue
	preimages    map[KeyHash][]byte
	versions     []Version
}

type versionedValue struct {
	version Version
	value   []byte // nil = tombstone
	present bool
}

// NewMemStore returns an empty store with no versions.
func NewMemStore() *MemStore {
	return &MemStore{
		nodes:        make(map[nodeMapKey]Node),
		valueHistory: make(map[KeyHash][]versionedValue),
		preimages:    make(map[KeyHash][]byte),
	}
}

func (s *MemStore) GetNodeOption(nk NodeKey) (Node, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[toMapKey(nk)]
	return n, ok, nil
}

func (s *MemStore) GetValueOption(maxVersion Version, kh KeyHash) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hist := s.valueHistory[kh]
	// hist is sorted ascending by version; find the last entry <= maxVersion.
	idx := sort.Search(len(hist), func(i int) bool { return hist[i].version > maxVersion })
	if idx == 0 {
		return nil, false, nil
	}
	entry := hist[idx-1]
	if !entry.present {
		return nil, false, nil // tombstoned
	}
	return entry.value, true, nil
}

func (s *MemStore) GetRightmostLeaf() (NodeKey, LeafNode, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	latest, ok := s.latestVersionLocked()
	if !ok {
		return NodeKey{}, LeafNode{}, false, nil
	}
	var (
		found   bool
		bestKey NodeKey
		bestLeaf LeafNode
	)
	// Walk every key hash that is live (non-tombstoned) at latest and keep
	// the greatest one. This is a reference implementation trade-off: a
	// production JMT walks the rightmost physical path instead of scanning
	// every key; see DESIGN.md for why that optimization is out of scope.
	for kh, hist := range s.valueHistory {
		idx := sort.Search(len(hist), func(i int) bool { return hist[i].version > latest })
		if idx == 0 || !hist[idx-1].present {
			continue
		}
		if !found || greaterKeyHash(kh, bestKey) {
			found = true
			bestKey = NodeKey{Version: latest, Path: KeyHashToNibblePath(kh)}
			bestLeaf = LeafNode{KeyHash: kh, ValueHash: HashValue(hist[idx-1].value)}
		}
	}
	return bestKey, bestLeaf, found, nil
}

func greaterKeyHash(kh KeyHash, nk NodeKey) bool {
	other := KeyHash{}
	for i, nib := range nk.Path.Nibbles {
		if i%2 == 0 {
			other[i/2] |= nib << 4
		} else {
			other[i/2] |= nib
		}
	}
	for i := range kh {
		if kh[i] != other[i] {
			return kh[i] > other[i]
		}
	}
	return false
}

// WriteNodeBatch atomically installs new nodes and appends value-history
// entries. It rejects a batch whose version is not strictly greater than
// any key's latest recorded version — the monotonic write rule of §4.C.
func (s *MemStore) WriteNodeBatch(batch TreeUpdateBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if latest, ok := s.latestVersionLocked(); ok && batch.Version <= latest {
		return fmt.Errorf("jmt: batch version %d is not strictly greater than latest version %d", batch.Version, latest)
	}
	for kh := range batch.Values {
		hist := s.valueHistory[kh]
		if len(hist) > 0 && hist[len(hist)-1].version >= batch.Version {
			return fmt.Errorf("jmt: key %x already has an entry at or after version %d", kh, batch.Version)
		}
	}

	for nk, n := range batch.Nodes {
		s.nodes[toMapKey(nk)] = n
	}
	for kh, v := range batch.Values {
		present := v != nil
		s.valueHistory[kh] = append(s.valueHistory[kh], versionedValue{version: batch.Version, value: v, present: present})
	}
	for kh, raw := range batch.Preimages {
		s.preimages[kh] = raw
	}
	if len(batch.Values) > 0 {
		s.versions = append(s.versions, batch.Version)
	}
	return nil
}

func (s *MemStore) FindKeyVersion(maxVersion Version, kh KeyHash) (Version, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hist := s.valueHistory[kh]
	idx := sort.Search(len(hist), func(i int) bool { return hist[i].version > maxVersion })
	if idx == 0 {
		return 0, false, nil
	}
	return hist[idx-1].version, true, nil
}

func (s *MemStore) LatestVersion() (Version, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latestVersionLocked()
}

func (s *MemStore) latestVersionLocked() (Version, bool) {
	if len(s.versions) == 0 {
		return 0, false
	}
	return s.versions[len(s.versions)-1], true
}

func (s *MemStore) FindVersion(maxVersion Version) (Version, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := sort.Search(len(s.versions), func(i int) bool { return s.versions[i] > maxVersion })
	if idx == 0 {
		return 0, false
	}
	return s.versions[idx-1], true
}

func (s *MemStore) Preimage(kh KeyHash) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.preimages[kh]
	return p, ok
}

// Iterate walks every live key at or before version, in key-hash order.
func (s *MemStore) Iterate(version Version, fn func(KeyHash, []byte) error) error {
	s.mu.RLock()
	type kv struct {
		kh    KeyHash
		value []byte
	}
	var live []kv
	for kh, hist := range s.valueHistory {
		idx := sort.Search(len(hist), func(i int) bool { return hist[i].version > version })
		if idx == 0 || !hist[idx-1].present {
			continue
		}
		live = append(live, kv{kh: kh, value: hist[idx-1].value})
	}
	s.mu.RUnlock()

	sort.Slice(live, func(i, j int) bool {
		for b := range live[i].kh {
			if live[i].kh[b] != live[j].kh[b] {
				return live[i].kh[b] < live[j].kh[b]
			}
		}
		return false
	})
	for _, e := range live {
		if err := fn(e.kh, e.value); err != nil {
			return err
		}
	}
	return nil
}
