package ghost

import (
	"sort"
	"testing"

	"github.com/datatrails/go-datatrails-quadforest/connectivity"
	"github.com/datatrails/go-datatrails-quadforest/qtree"
	"github.com/datatrails/go-datatrails-quadforest/quadrant"
	"github.com/stretchr/testify/require"
)

// treeCorner returns the user-facing corner of tree t whose vertex is v,
// the same lookup connectivity's own corner-neighbor test does, duplicated
// here since it is unexported in that package.
func treeCorner(c *connectivity.Connectivity, t int, v int32) uint8 {
	for corner := uint8(0); corner < 4; corner++ {
		if c.CornerVertex(t, quadrant.CornerToZorder(corner)) == v {
			return corner
		}
	}
	return 0
}

// TestComputeOverlapCornerFanOutMatchesLShapeConnectivity refines tree 0's
// corner-3 leaf several levels deep and checks that a corner probe at the
// same corner ships the resulting fine content to every other tree the
// L-shape connectivity records as meeting at that vertex.
func TestComputeOverlapCornerFanOutMatchesLShapeConnectivity(t *testing.T) {
	conn := connectivity.NewLShapeConnectivity()

	// Vertex 2 (0-based) is where trees 0, 1 and 2 all meet.
	corner := treeCorner(conn, 0, 2)
	zc := quadrant.CornerToZorder(corner)

	tr := qtree.NewTree(0)
	root := quadrant.Quadrant{Level: 0}
	fam := quadrant.Children(root)
	tr.Leaves = append(tr.Leaves, fam[:]...)
	// refine the corner-3 child three levels deeper so it is fine enough
	// to be picked up by a level-0 corner probe.
	deep := fam[zc]
	for i := 0; i < 3; i++ {
		deep = quadrant.Children(deep)[zc]
	}
	tr.Leaves[zc] = deep
	sortLeaves(tr.Leaves)
	tr.RecomputeCounters()

	probe := cornerProbe(zc)
	seed := Seed{Quadrant: probe, IsCorner: true, Corner: corner}

	out := ComputeOverlap(0, tr, conn, []Seed{seed})
	require.NotEmpty(t, out)

	refs := conn.CornerNeighbors(0, corner)
	require.NotEmpty(t, refs)
	gotTrees := make(map[int]bool)
	for _, o := range out {
		gotTrees[o.DestTree] = true
	}
	for _, ref := range refs {
		require.True(t, gotTrees[ref.Tree], "expected a shipped overlap for tree %d", ref.Tree)
	}
	require.Len(t, out, len(refs))

	// UniqifyOverlap requires alreadyHave sorted by (tree, morton).
	sort.Stable(byTreeThenMorton(out))
	have := ComputeOverlap(0, tr, conn, []Seed{seed})
	require.Empty(t, UniqifyOverlap(out, have))
}

// cornerProbe returns the level-0 quadrant diagonally outside the root at
// the corner named by z-order id zc, the smallest probe whose insulation
// layer includes the whole root cell from that corner.
func cornerProbe(zc uint8) quadrant.Quadrant {
	x, y := -quadrant.Root, -quadrant.Root
	if zc&1 != 0 {
		x = quadrant.Root
	}
	if zc&2 != 0 {
		y = quadrant.Root
	}
	return quadrant.Quadrant{X: x, Y: y, Level: 0}
}
