package qtree

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/datatrails/go-datatrails-quadforest/quadrant"
)

// IsSorted reports whether leaves is strictly increasing under
// quadrant.Compare.
func IsSorted(leaves []quadrant.Quadrant) bool {
	for i := 1; i < len(leaves); i++ {
		if quadrant.Compare(leaves[i-1], leaves[i]) >= 0 {
			return false
		}
	}
	return true
}

// IsLinear reports whether leaves is sorted and no element is an ancestor
// of its successor.
func IsLinear(leaves []quadrant.Quadrant) bool {
	if !IsSorted(leaves) {
		return false
	}
	for i := 1; i < len(leaves); i++ {
		if quadrant.IsAncestor(leaves[i-1], leaves[i]) {
			return false
		}
	}
	return true
}

// IsComplete reports whether leaves is linear and every consecutive pair is
// Morton-adjacent.
func IsComplete(leaves []quadrant.Quadrant) bool {
	if !IsLinear(leaves) {
		return false
	}
	for i := 1; i < len(leaves); i++ {
		if !quadrant.IsNext(leaves[i-1], leaves[i]) {
			return false
		}
	}
	return true
}

// exteriorCorner classifies which side of the root a coordinate falls
// outside on: -1 below zero, +1 at or beyond Root, 0 inside.
func exteriorCorner(v int64) int {
	switch {
	case v < 0:
		return -1
	case v >= quadrant.Root:
		return 1
	default:
		return 0
	}
}

// sameExteriorCorner reports whether a and b are both extended quadrants
// sitting outside the same exterior corner of the root (both X and Y
// outside, on the same sides).
func sameExteriorCorner(a, b quadrant.Quadrant) bool {
	ax, ay := exteriorCorner(a.X), exteriorCorner(a.Y)
	if ax == 0 || ay == 0 {
		return false
	}
	bx, by := exteriorCorner(b.X), exteriorCorner(b.Y)
	return ax == bx && ay == by
}

// IsAlmostSorted reports whether leaves is sorted, except that adjacent
// extended quadrants sharing the same exterior corner may appear out of
// order. This is the precondition BalanceSubtree accepts.
func IsAlmostSorted(leaves []quadrant.Quadrant) bool {
	for i := 1; i < len(leaves); i++ {
		if quadrant.Compare(leaves[i-1], leaves[i]) < 0 {
			continue
		}
		if sameExteriorCorner(leaves[i-1], leaves[i]) {
			continue
		}
		return false
	}
	return true
}

// Checksum folds the canonical identity and, where present, the owned
// payload bytes of every leaf into a single 64-bit value. It is used to
// verify that repartition is semantics-preserving: a cheap non-cryptographic
// fold, distinct from the COSE-sealed checkpoints forest.Checkpoint produces
// for cross-process trust.
func (t *Tree) Checksum() uint64 {
	h := fnv.New64a()
	var buf [17]byte
	for _, q := range t.Leaves {
		binary.LittleEndian.PutUint64(buf[0:8], uint64(q.X))
		binary.LittleEndian.PutUint64(buf[8:16], uint64(q.Y))
		buf[16] = q.Level
		_, _ = h.Write(buf[:])
		if q.Data.Kind == quadrant.PayloadOwned {
			_, _ = h.Write(q.Data.Owned)
		}
	}
	return h.Sum64()
}
