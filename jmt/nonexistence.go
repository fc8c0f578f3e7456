package jmt

import (
	"fmt"
	"sort"

	ics23 "github.com/cosmos/ics23/go"
)

// NonExistenceProof proves kh is absent at version by bracketing it
// between its immediate left and right neighbors in key-hash order,
// each proven to exist. Either bracket may be absent if kh sorts
// outside the whole live key set. This scans the full live key set
// (via Store.Iterate) to find the bracket — the same O(n) reference
// trade-off as GetRightmostLeaf; see DESIGN.md.
//
// rawKey is the candidate path string behind kh. It comes from the
// caller rather than Store.Preimage because a key that was never
// written at all — the common case this function exists for — has no
// preimage recorded in the store to recover.
func NonExistenceProof(store Store, version Version, kh KeyHash, rawKey []byte) (*ics23.NonExistenceProof, error) {
	var liveKeys []KeyHash
	if err := store.Iterate(version, func(k KeyHash, _ []byte) error {
		liveKeys = append(liveKeys, k)
		return nil
	}); err != nil {
		return nil, err
	}

	idx := sort.Search(len(liveKeys), func(i int) bool { return lessKeyHash(kh, liveKeys[i]) })
	// liveKeys[idx] is the first key greater than kh; liveKeys[idx-1] is
	// the last key less than kh. If either exists and equals kh exactly
	// the caller made a mistake calling NonExistenceProof for a present key.
	if idx < len(liveKeys) && liveKeys[idx] == kh {
		return nil, fmt.Errorf("jmt: key %x exists at version %d, cannot build a non-existence proof", kh, version)
	}

	// Both neighbors are proven against the tree of the last version
	// committed at or before `version`, the one root the whole proof is
	// verified against; ExistenceProof alone anchors each neighbor at its
	// own last write version.
	at, _ := store.FindVersion(version)

	var left, right *ics23.ExistenceProof
	if idx > 0 {
		p, _, err := ExistenceProof(store, version, liveKeys[idx-1])
		if err != nil {
			return nil, err
		}
		if p.Path, _, err = existencePath(store, at, liveKeys[idx-1]); err != nil {
			return nil, err
		}
		left = p
	}
	if idx < len(liveKeys) {
		p, _, err := ExistenceProof(store, version, liveKeys[idx])
		if err != nil {
			return nil, err
		}
		if p.Path, _, err = existencePath(store, at, liveKeys[idx]); err != nil {
			return nil, err
		}
		right = p
	}

	return &ics23.NonExistenceProof{
		Key:   rawKey,
		Left:  left,
		Right: right,
	}, nil
}
