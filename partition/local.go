package partition

import (
	"sort"

	"github.com/datatrails/go-datatrails-quadforest/qtree"
	"github.com/datatrails/go-datatrails-quadforest/quadrant"
)

// Local is one process's contiguous span of connectivity trees: the trees
// with global ids in [FirstTree, FirstTree+len(Trees)) that this process
// currently holds any leaves of. A process assigned zero leaves has an
// empty Trees slice.
type Local struct {
	FirstTree int
	DataSize  int
	Trees     []*qtree.Tree
}

// totalLeaves returns the number of leaves held across every local tree.
func (l *Local) totalLeaves() int64 {
	var n int64
	for _, tr := range l.Trees {
		n += int64(len(tr.Leaves))
	}
	return n
}

// locate converts a flat, cross-tree leaf offset (0-based, counting from
// the first leaf of the first local tree) into a (tree index, leaf index)
// pair.
func (l *Local) locate(flatIdx int64) (treeIdx, leafIdx int) {
	for i, tr := range l.Trees {
		n := int64(len(tr.Leaves))
		if flatIdx < n {
			return i, int(flatIdx)
		}
		flatIdx -= n
	}
	return len(l.Trees), 0
}

// firstPosition returns the Position of this local span's Morton-least
// leaf, or the zero Position if the span is empty.
func (l *Local) firstPosition() Position {
	for i, tr := range l.Trees {
		if len(tr.Leaves) > 0 {
			q := tr.Leaves[0]
			return Position{WhichTree: l.FirstTree + i, X: q.X, Y: q.Y}
		}
	}
	return Position{}
}

// wireLeaf is one leaf in transit: its quadrant, the global id of the tree
// it belongs to, and a copy of its owned payload bytes (nil if it carries
// none).
type wireLeaf struct {
	Q       quadrant.Quadrant
	TreeID  int32
	Payload []byte
}

// extractSegment copies out the wireLeaf view of the global index range
// [lo, hi] (inclusive), where base is the global index of this local
// span's first leaf. An empty range (lo > hi) returns nil.
func (l *Local) extractSegment(base, lo, hi int64) []wireLeaf {
	if lo > hi {
		return nil
	}
	treeIdx, leafIdx := l.locate(lo - base)
	remaining := hi - lo + 1
	out := make([]wireLeaf, 0, remaining)
	for remaining > 0 && treeIdx < len(l.Trees) {
		tr := l.Trees[treeIdx]
		for leafIdx < len(tr.Leaves) && remaining > 0 {
			q := tr.Leaves[leafIdx]
			var payload []byte
			if tr.Payload != nil && q.Data.Kind == quadrant.PayloadOwned {
				payload = append([]byte(nil), tr.Payload.Get(q.Data.OwnedIdx)...)
			}
			out = append(out, wireLeaf{Q: q, TreeID: int32(l.FirstTree + treeIdx), Payload: payload})
			leafIdx++
			remaining--
		}
		treeIdx++
		leafIdx = 0
	}
	return out
}

// rebuildLocal reassembles a Local span from the wireLeaf records this
// process ends up owning after repartition: it groups by tree id, sorts
// each tree's leaves back into Morton order, and re-homes any payload
// bytes into a fresh arena.
func rebuildLocal(incoming []wireLeaf, dataSize int) *Local {
	if len(incoming) == 0 {
		return &Local{DataSize: dataSize}
	}
	minTree, maxTree := incoming[0].TreeID, incoming[0].TreeID
	for _, w := range incoming {
		if w.TreeID < minTree {
			minTree = w.TreeID
		}
		if w.TreeID > maxTree {
			maxTree = w.TreeID
		}
	}
	trees := make([]*qtree.Tree, maxTree-minTree+1)
	for i := range trees {
		trees[i] = qtree.NewTree(dataSize)
	}
	for _, w := range incoming {
		tr := trees[w.TreeID-minTree]
		q := w.Q
		if dataSize > 0 && len(w.Payload) > 0 {
			pl := tr.NewOwnedPayload()
			copy(pl.Owned, w.Payload)
			q.Data = pl
		}
		tr.Append(q)
	}
	for _, tr := range trees {
		sortLeaves(tr.Leaves)
		tr.RecomputeCounters()
	}
	return &Local{FirstTree: int(minTree), DataSize: dataSize, Trees: trees}
}

func sortLeaves(leaves []quadrant.Quadrant) {
	sort.Slice(leaves, func(i, j int) bool { return quadrant.Less(leaves[i], leaves[j]) })
}
