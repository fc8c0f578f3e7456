package jmt

import (
	"fmt"

	ics23 "github.com/cosmos/ics23/go"
)

// Spec is the single ICS-23 proof spec every existence/non-existence
// proof in this tree is produced and verified against (§4.A "a single
// proof spec"). It is deliberately close to the library's own SmtSpec
// — a 16-ary fan-out instead of binary, and PrehashKeyBeforeComparison
// set so ICS-23's internal non-existence ordering check compares key
// hashes (the tree's real sort order) rather than raw path bytes.
func Spec() *ics23.ProofSpec {
	order := make([]int32, 16)
	for i := range order {
		order[i] = int32(i)
	}
	return &ics23.ProofSpec{
		LeafSpec: &ics23.LeafOp{
			Hash:         ics23.HashOp_SHA256,
			PrehashKey:   ics23.HashOp_SHA256,
			PrehashValue: ics23.HashOp_SHA256,
			Length:       ics23.LengthOp_NO_PREFIX,
			Prefix:       []byte{leafNodeMarker},
		},
		InnerSpec: &ics23.InnerSpec{
			ChildOrder:      order,
			ChildSize:       32,
			MinPrefixLength: 1,
			MaxPrefixLength: 1 + 15*32,
			EmptyChild:      zeroHash[:],
			Hash:            ics23.HashOp_SHA256,
		},
		MaxDepth:                   64,
		MinDepth:                   0,
		PrehashKeyBeforeComparison: true,
	}
}

// existencePath walks the physical tree rooted at `version` along kh's
// nibble path, returning the InnerOp for each internal node crossed
// (leaf-most first, per ICS-23 convention: path[0] is the step closest
// to the leaf) and the terminal leaf. version must be a committed
// version whose tree holds kh: ExistenceProof passes the version at
// which kh was last written (Store.FindKeyVersion), NonExistenceProof
// the last version committed at or before the one it was asked for.
func existencePath(store Store, version Version, kh KeyHash) ([]*ics23.InnerOp, LeafNode, error) {
	nibbles := KeyHashToNibblePath(kh)

	node, ok, err := store.GetNodeOption(NodeKey{Version: version, Path: NibblePath{}})
	if err != nil {
		return nil, LeafNode{}, err
	}
	if !ok {
		return nil, LeafNode{}, fmt.Errorf("jmt: no root at version %d", version)
	}

	var steps []*ics23.InnerOp
	depth := 0
	for {
		switch n := node.(type) {
		case LeafNode:
			if n.KeyHash != kh {
				return nil, LeafNode{}, fmt.Errorf("jmt: key hash mismatch while walking to existence proof")
			}
			// Reverse: steps were appended root-to-leaf, ICS-23 wants
			// leaf-to-root.
			reversed := make([]*ics23.InnerOp, len(steps))
			for i, s := range steps {
				reversed[len(steps)-1-i] = s
			}
			return reversed, n, nil

		case InternalNode:
			if depth >= len(nibbles.Nibbles) {
				return nil, LeafNode{}, fmt.Errorf("jmt: path exhausted before reaching a leaf")
			}
			nibble := nibbles.Nibbles[depth]
			ref := n.Children[nibble]
			if ref == nil {
				return nil, LeafNode{}, fmt.Errorf("jmt: missing child for nibble %d at depth %d", nibble, depth)
			}
			prefix, suffix := innerOpSides(n, nibble)
			steps = append(steps, &ics23.InnerOp{Hash: ics23.HashOp_SHA256, Prefix: prefix, Suffix: suffix})

			childPath := NibblePath{Nibbles: nibbles.Nibbles[:depth+1]}
			child, ok, err := store.GetNodeOption(NodeKey{Version: ref.Version, Path: childPath})
			if err != nil {
				return nil, LeafNode{}, err
			}
			if !ok {
				return nil, LeafNode{}, fmt.Errorf("jmt: missing node at version %d path %x", ref.Version, childPath.Nibbles)
			}
			node = child
			depth++

		default:
			return nil, LeafNode{}, fmt.Errorf("jmt: unexpected node type %T while walking to existence proof", node)
		}
	}
}

// innerOpSides splits an internal node's 16 child hashes around `nibble`
// into the prefix/suffix an ICS-23 InnerOp needs to reconstruct the
// parent hash from the child hash alone. This must byte-for-byte match
// InternalNode.Hash's layout (marker byte + 16 slots of 32 bytes).
func innerOpSides(n InternalNode, nibble byte) (prefix, suffix []byte) {
	prefix = append(prefix, internalNodeMarker)
	for i := byte(0); i < nibble; i++ {
		prefix = append(prefix, childHashBytes(n, i)...)
	}
	for i := nibble + 1; i < 16; i++ {
		suffix = append(suffix, childHashBytes(n, i)...)
	}
	return prefix, suffix
}

func childHashBytes(n InternalNode, nibble byte) []byte {
	if n.Children[nibble] == nil {
		return zeroHash[:]
	}
	return n.Children[nibble].Hash[:]
}

// ExistenceProof builds an ICS-23 existence proof for kh as of the
// version at which it was last written at or before maxVersion.
func ExistenceProof(store Store, maxVersion Version, kh KeyHash) (*ics23.ExistenceProof, Version, error) {
	writeVersion, ok, err := store.FindKeyVersion(maxVersion, kh)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, fmt.Errorf("jmt: key %x was never written at or before version %d", kh, maxVersion)
	}
	value, ok, err := store.GetValueOption(maxVersion, kh)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, fmt.Errorf("jmt: key %x is tombstoned as of version %d", kh, maxVersion)
	}
	rawKey, ok := store.Preimage(kh)
	if !ok {
		return nil, 0, fmt.Errorf("jmt: missing preimage for key %x", kh)
	}
	path, _, err := existencePath(store, writeVersion, kh)
	if err != nil {
		return nil, 0, err
	}
	return &ics23.ExistenceProof{
		Key:   rawKey,
		Value: value,
		Leaf:  Spec().LeafSpec,
		Path:  path,
	}, writeVersion, nil
}

// RootHash returns the tree's root hash at version.
func RootHash(store Store, version Version) ([32]byte, error) {
	node, ok, err := store.GetNodeOption(NodeKey{Version: version, Path: NibblePath{}})
	if err != nil {
		return [32]byte{}, err
	}
	if !ok {
		return [32]byte{}, fmt.Errorf("jmt: no root recorded at version %d", version)
	}
	return node.Hash(), nil
}
