// Package ibcstate is the transactional overlay between the IBC handler
// and the JMT (§4.D): reads see the last committed version plus any
// writes buffered this transaction, and nothing lands in the tree until
// Commit.
package ibcstate

import (
	ics23 "github.com/cosmos/ics23/go"
	"go.uber.org/zap"

	"github.com/eclipse-labs/ibc-program/jmt"
	"github.com/eclipse-labs/ibc-program/path"
)

// IbcState buffers writes in pending until Commit folds them into one
// JMT batch. A nil entry value means the path was removed (a
// tombstone); the pending map itself distinguishes "untouched, fall
// through to the store" from "touched this transaction".
type IbcState struct {
	store   jmt.Store
	tree    *jmt.Tree
	version jmt.Version
	pending map[jmt.KeyHash]*pendingWrite
	log     *zap.Logger
}

type pendingWrite struct {
	value    []byte // nil = tombstone
	preimage []byte
}

// New opens an overlay for the instruction executing at slot: reads see
// the latest value committed at or before slot, and a successful Commit
// writes exactly at slot (§4.D "version: Version — the slot at which
// this instruction executes", §3 "Version — a host slot at which a tree
// write was committed").
func New(store jmt.Store, slot jmt.Version, log *zap.Logger) *IbcState {
	return &IbcState{
		store:   store,
		tree:    jmt.NewTree(store),
		version: slot,
		pending: make(map[jmt.KeyHash]*pendingWrite),
		log:     log,
	}
}

// Version is the slot this overlay executes at — the upper bound for
// reads and the version a successful Commit writes at.
func (s *IbcState) Version() jmt.Version { return s.version }

// Get decodes the value at p per its schema, checking pending writes
// before falling through to the store. The zero value and false are
// returned both when p has never been written and when p was removed
// this transaction.
func Get[T any](s *IbcState, p path.Path) (T, bool, error) {
	var zero T
	kh := path.KeyHash(p)
	schema := path.SchemaFor(p)

	if w, ok := s.pending[kh]; ok {
		if w.value == nil {
			return zero, false, nil
		}
		var out T
		if err := decodeValue(schema, w.value, &out); err != nil {
			return zero, false, err
		}
		return out, true, nil
	}

	raw, ok, err := s.store.GetValueOption(s.version, kh)
	if err != nil || !ok {
		return zero, false, err
	}
	var out T
	if err := decodeValue(schema, raw, &out); err != nil {
		return zero, false, err
	}
	return out, true, nil
}

// Set buffers v at p for the next Commit.
func Set[T any](s *IbcState, p path.Path, v T) error {
	raw, err := encodeValue(path.SchemaFor(p), v)
	if err != nil {
		return err
	}
	kh := path.KeyHash(p)
	s.pending[kh] = &pendingWrite{value: raw, preimage: []byte(p.String())}
	if s.log != nil {
		s.log.Debug("ibcstate set", zap.String("path", p.String()), zap.Int("bytes", len(raw)))
	}
	return nil
}

// Update reads p (or def if absent), applies f, and buffers the result.
// f's error short-circuits the write.
func Update[T any](s *IbcState, p path.Path, def T, f func(T) (T, error)) error {
	cur, ok, err := Get[T](s, p)
	if err != nil {
		return err
	}
	if !ok {
		cur = def
	}
	next, err := f(cur)
	if err != nil {
		return err
	}
	return Set(s, p, next)
}

// Remove tombstones p for the next Commit.
func (s *IbcState) Remove(p path.Path) error {
	kh := path.KeyHash(p)
	s.pending[kh] = &pendingWrite{value: nil, preimage: []byte(p.String())}
	return nil
}

// Root returns the commitment root at the latest version committed at
// or before this overlay's slot. GetNonMembership proofs are taken
// against this root; a GetProof proof is taken against the root of the
// version at which its path was last written, which is this root only
// when that write is the latest commit.
func (s *IbcState) Root() ([32]byte, error) {
	at, ok := s.store.FindVersion(s.version)
	if !ok {
		var empty jmt.Node = jmt.NullNode{}
		return empty.Hash(), nil
	}
	return jmt.RootHash(s.store, at)
}

// GetProof returns an ICS-23 existence proof for p against the root of
// the version at which p was last written at or before this overlay's
// slot, and that version — it never sees this transaction's pending
// writes, matching the rule that proofs only ever attest to committed
// state.
func (s *IbcState) GetProof(p path.Path) (*ics23.ExistenceProof, jmt.Version, error) {
	return jmt.ExistenceProof(s.store, s.version, path.KeyHash(p))
}

// GetNonMembership returns an ICS-23 non-existence proof for p against
// the last version committed at or before this overlay's slot (Root),
// proving p has no live value there — never written or tombstoned —
// regardless of this overlay's pending writes.
func (s *IbcState) GetNonMembership(p path.Path) (*ics23.NonExistenceProof, error) {
	return jmt.NonExistenceProof(s.store, s.version, path.KeyHash(p), []byte(p.String()))
}

// Commit folds every pending write into a new JMT version at this
// overlay's slot, clears the overlay, and returns the new root hash.
// Calling Commit with no pending writes re-derives and returns the
// current root instead — an empty transaction does not mint a new
// version entry (§5 "commits that install no changes do not create a
// new version entry").
func (s *IbcState) Commit() ([32]byte, error) {
	if len(s.pending) == 0 {
		return s.Root()
	}

	changes := make(map[jmt.KeyHash][]byte, len(s.pending))
	preimages := make(map[jmt.KeyHash][]byte, len(s.pending))
	for kh, w := range s.pending {
		changes[kh] = w.value
		preimages[kh] = w.preimage
	}

	batch, root, err := s.tree.PutValueSet(s.version, changes, preimages)
	if err != nil {
		return [32]byte{}, err
	}
	if err := s.store.WriteNodeBatch(batch); err != nil {
		return [32]byte{}, err
	}
	s.pending = make(map[jmt.KeyHash]*pendingWrite)
	if s.log != nil {
		s.log.Info("ibcstate commit", zap.Uint64("version", s.version), zap.Int("writes", len(changes)))
	}
	return root, nil
}
