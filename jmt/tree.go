package jmt

import (
	"fmt"
	"sort"
)

// Tree is the read/write façade over a Store: it turns a flat set of
// key-hash -> value (or tombstone) changes into the minimal set of new
// physical nodes for one version (§4.C "write_node_batch").
type Tree struct {
	store Store
}

func NewTree(store Store) *Tree {
	return &Tree{store: store}
}

type buildCtx struct {
	store   Store
	version Version
	overlay map[nodeMapKey]Node
}

func (c *buildCtx) put(path NibblePath, n Node) {
	c.overlay[toMapKey(NodeKey{Version: c.version, Path: path})] = n
}

func (c *buildCtx) loadChild(ref *ChildRef, path NibblePath) (Node, error) {
	if ref == nil {
		return NullNode{}, nil
	}
	if ref.Version == c.version {
		if n, ok := c.overlay[toMapKey(NodeKey{Version: c.version, Path: path})]; ok {
			return n, nil
		}
	}
	n, ok, err := c.store.GetNodeOption(NodeKey{Version: ref.Version, Path: path})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("jmt: missing node at version %d path %x", ref.Version, path.Nibbles)
	}
	return n, nil
}

// PutValueSet applies changes (nil value = tombstone) at `version`,
// returning the batch to persist and the new root hash. version must be
// strictly greater than the store's current latest version (enforced
// by Store.WriteNodeBatch, not here, so callers can inspect the batch
// before deciding to write it).
func (t *Tree) PutValueSet(version Version, changes map[KeyHash][]byte, preimages map[KeyHash][]byte) (TreeUpdateBatch, [32]byte, error) {
	ctx := &buildCtx{store: t.store, version: version, overlay: make(map[nodeMapKey]Node)}

	var root Node = NullNode{}
	if latest, ok := t.store.LatestVersion(); ok {
		n, ok, err := t.store.GetNodeOption(NodeKey{Version: latest, Path: NibblePath{}})
		if err != nil {
			return TreeUpdateBatch{}, [32]byte{}, err
		}
		if ok {
			root = n
		}
	}

	// Deterministic order keeps root derivation reproducible across runs
	// (§8 invariant 5) independent of Go map iteration order.
	keys := make([]KeyHash, 0, len(changes))
	for kh := range changes {
		keys = append(keys, kh)
	}
	sort.Slice(keys, func(i, j int) bool { return lessKeyHash(keys[i], keys[j]) })

	for _, kh := range keys {
		value := changes[kh]
		nibbles := KeyHashToNibblePath(kh)
		var err error
		if value == nil {
			root, err = deleteKey(ctx, root, nibbles, 0, kh)
		} else {
			root, err = insertKey(ctx, root, nibbles, 0, kh, HashValue(value))
		}
		if err != nil {
			return TreeUpdateBatch{}, [32]byte{}, err
		}
	}

	ctx.put(NibblePath{}, root)

	nodes := make(map[NodeKey]Node, len(ctx.overlay))
	for mk, n := range ctx.overlay {
		nodes[NodeKey{Version: mk.version, Path: NibblePath{Nibbles: []byte(mk.nibbles)}}] = n
	}

	batch := TreeUpdateBatch{
		Version:   version,
		Nodes:     nodes,
		Values:    changes,
		Preimages: preimages,
	}
	return batch, root.Hash(), nil
}

func lessKeyHash(a, b KeyHash) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func insertKey(ctx *buildCtx, node Node, nibbles NibblePath, depth int, kh KeyHash, valueHash [32]byte) (Node, error) {
	path := NibblePath{Nibbles: nibbles.Nibbles[:depth]}

	switch n := node.(type) {
	case NullNode:
		leaf := LeafNode{KeyHash: kh, ValueHash: valueHash}
		ctx.put(path, leaf)
		return leaf, nil

	case LeafNode:
		if n.KeyHash == kh {
			leaf := LeafNode{KeyHash: kh, ValueHash: valueHash}
			ctx.put(path, leaf)
			return leaf, nil
		}
		split, err := splitLeaf(ctx, n, nibbles, depth, kh, valueHash)
		if err != nil {
			return nil, err
		}
		return split, nil

	case InternalNode:
		nibble := nibbles.Nibbles[depth]
		childPath := NibblePath{Nibbles: nibbles.Nibbles[:depth+1]}
		childNode, err := ctx.loadChild(n.Children[nibble], childPath)
		if err != nil {
			return nil, err
		}
		newChild, err := insertKey(ctx, childNode, nibbles, depth+1, kh, valueHash)
		if err != nil {
			return nil, err
		}
		updated := n
		updated.Children[nibble] = &ChildRef{
			Nibble:  nibble,
			Version: ctx.version,
			Hash:    newChild.Hash(),
			IsLeaf:  isLeaf(newChild),
		}
		ctx.put(path, updated)
		return updated, nil

	default:
		return nil, fmt.Errorf("jmt: unknown node type %T", node)
	}
}

// splitLeaf deepens the trie from depth until the existing leaf's key
// hash and the new key hash diverge, creating one internal node per
// shared nibble along the way — the JMT "shortest disambiguating
// prefix" property.
func splitLeaf(ctx *buildCtx, existing LeafNode, newNibbles NibblePath, depth int, newKH KeyHash, newValueHash [32]byte) (Node, error) {
	oldNibbles := KeyHashToNibblePath(existing.KeyHash)
	if depth >= len(newNibbles.Nibbles) {
		return nil, fmt.Errorf("jmt: key hash collision splitting leaf at max depth")
	}

	path := NibblePath{Nibbles: newNibbles.Nibbles[:depth]}
	oldNibble := oldNibbles.Nibbles[depth]
	newNibble := newNibbles.Nibbles[depth]

	if oldNibble == newNibble {
		child, err := splitLeaf(ctx, existing, newNibbles, depth+1, newKH, newValueHash)
		if err != nil {
			return nil, err
		}
		var internal InternalNode
		internal.Children[newNibble] = &ChildRef{
			Nibble:  newNibble,
			Version: ctx.version,
			Hash:    child.Hash(),
			IsLeaf:  isLeaf(child),
		}
		ctx.put(path, internal)
		return internal, nil
	}

	newLeaf := LeafNode{KeyHash: newKH, ValueHash: newValueHash}
	childPath := NibblePath{Nibbles: newNibbles.Nibbles[:depth+1]}
	ctx.put(childPath, newLeaf)
	// existing leaf is unchanged; it is re-anchored at its new physical
	// position in this version since splitting moved it one level down.
	ctx.put(NibblePath{Nibbles: append(append([]byte{}, oldNibbles.Nibbles[:depth]...), oldNibble)}, existing)

	var internal InternalNode
	internal.Children[oldNibble] = &ChildRef{Nibble: oldNibble, Version: ctx.version, Hash: existing.Hash(), IsLeaf: true}
	internal.Children[newNibble] = &ChildRef{Nibble: newNibble, Version: ctx.version, Hash: newLeaf.Hash(), IsLeaf: true}
	ctx.put(path, internal)
	return internal, nil
}

func deleteKey(ctx *buildCtx, node Node, nibbles NibblePath, depth int, kh KeyHash) (Node, error) {
	path := NibblePath{Nibbles: nibbles.Nibbles[:depth]}

	switch n := node.(type) {
	case NullNode:
		return n, nil

	case LeafNode:
		if n.KeyHash != kh {
			return n, nil
		}
		ctx.put(path, NullNode{})
		return NullNode{}, nil

	case InternalNode:
		nibble := nibbles.Nibbles[depth]
		ref := n.Children[nibble]
		if ref == nil {
			return n, nil
		}
		childPath := NibblePath{Nibbles: nibbles.Nibbles[:depth+1]}
		childNode, err := ctx.loadChild(ref, childPath)
		if err != nil {
			return nil, err
		}
		newChild, err := deleteKey(ctx, childNode, nibbles, depth+1, kh)
		if err != nil {
			return nil, err
		}
		updated := n
		if _, isNull := newChild.(NullNode); isNull {
			updated.Children[nibble] = nil
		} else {
			updated.Children[nibble] = &ChildRef{
				Nibble:  nibble,
				Version: ctx.version,
				Hash:    newChild.Hash(),
				IsLeaf:  isLeaf(newChild),
			}
		}
		if allChildrenNil(updated) {
			ctx.put(path, NullNode{})
			return NullNode{}, nil
		}
		ctx.put(path, updated)
		return updated, nil

	default:
		return nil, fmt.Errorf("jmt: unknown node type %T", node)
	}
}

func allChildrenNil(n InternalNode) bool {
	for _, c := range n.Children {
		if c != nil {
			return false
		}
	}
	return true
}

func isLeaf(n Node) bool {
	_, ok := n.(LeafNode)
	return ok
}
