// Package ibctypes holds the data model shared across the state engine:
// heights, clients, connections, channels, packets, and the metadata
// counters. None of these types know how to encode themselves to a
// storage path or a Borsh record — that binding lives in path and
// ibcstate.
package ibctypes

import "fmt"

// Height is the IBC (revision_number, revision_height) pair, totally
// ordered lexicographically. The host chain always uses revision 0;
// revision_height is slot+1 (see lightclient/host).
type Height struct {
	RevisionNumber uint64
	RevisionHeight uint64
}

// ZeroHeight is the smallest possible height, used as a sentinel for
// "no height recorded yet".
var ZeroHeight = Height{}

// LT reports whether h is strictly less than other.
func (h Height) LT(other Height) bool {
	if h.RevisionNumber != other.RevisionNumber {
		return h.RevisionNumber < other.RevisionNumber
	}
	return h.RevisionHeight < other.RevisionHeight
}

// LTE reports whether h is less than or equal to other.
func (h Height) LTE(other Height) bool {
	return h == other || h.LT(other)
}

// GT reports whether h is strictly greater than other.
func (h Height) GT(other Height) bool {
	return other.LT(h)
}

// GTE reports whether h is greater than or equal to other.
func (h Height) GTE(other Height) bool {
	return h == other || other.LT(h)
}

// IsZero reports whether h is the zero height.
func (h Height) IsZero() bool {
	return h == ZeroHeight
}

// String renders a height in the canonical "{revision}-{height}" form
// used by every path variant that embeds a height.
func (h Height) String() string {
	return fmt.Sprintf("%d-%d", h.RevisionNumber, h.RevisionHeight)
}

// CompareHeights orders two heights for use in a sorted set
// (ConsensusHeights, §3 invariant 3).
func CompareHeights(a, b Height) int {
	switch {
	case a.LT(b):
		return -1
	case b.LT(a):
		return 1
	default:
		return 0
	}
}
