package qtree

import (
	"testing"

	"github.com/datatrails/go-datatrails-quadforest/quadrant"
	"github.com/stretchr/testify/require"
)

func refineAll(t *Tree) {
	next := make([]quadrant.Quadrant, 0, len(t.Leaves)*4)
	for _, q := range t.Leaves {
		children := quadrant.Children(q)
		next = append(next, children[:]...)
	}
	t.Leaves = next
	sortQuadrants(t.Leaves)
	t.RecomputeCounters()
}

func TestUniformRefinementToLevel3(t *testing.T) {
	tr := NewRootTree(0)
	for i := 0; i < 3; i++ {
		refineAll(tr)
	}
	require.Len(t, tr.Leaves, 64)
	require.True(t, IsComplete(tr.Leaves))
	require.Equal(t, 3, tr.MaxLevel)
	require.Equal(t, 64, tr.Count[3])
}

func TestCompleteRegionCoversInterval(t *testing.T) {
	root := quadrant.Quadrant{Level: 0}
	l3 := quadrant.Children(quadrant.Children(quadrant.Children(root)[0])[0])
	q1 := l3[1]
	q2 := quadrant.Children(quadrant.Children(root)[3])[2]

	out := NewTree(0)
	CompleteRegion(q1, q2, true, true, out)

	require.True(t, IsComplete(out.Leaves))
	require.True(t, quadrant.IsEqual(out.Leaves[0], q1))
	require.True(t, quadrant.IsEqual(out.Leaves[len(out.Leaves)-1], q2))
}

func TestLinearizeDropsAncestors(t *testing.T) {
	tr := NewTree(0)
	root := quadrant.Quadrant{Level: 0}
	child := quadrant.Children(root)[1]
	grandchild := quadrant.Children(child)[2]
	tr.Append(child)
	tr.Append(grandchild)
	sortQuadrants(tr.Leaves)
	Linearize(tr)
	require.Len(t, tr.Leaves, 1)
	require.True(t, quadrant.IsEqual(tr.Leaves[0], grandchild))
}

// TestBalanceIdempotent covers a pathological single-branch refinement at a
// shallow depth so the test stays fast: refine only the (0,0,0,...) leaf a
// few levels deep, leaving everything else at level 0, then balance twice
// and check the second run changes nothing.
func TestBalanceIdempotent(t *testing.T) {
	tr := NewTree(0)
	root := quadrant.Quadrant{Level: 0}
	fam := quadrant.Children(root)
	tr.Leaves = append(tr.Leaves, fam[:]...)

	// refine leaf 0 down a further 4 levels along child-id 0.
	deep := fam[0]
	for i := 0; i < 4; i++ {
		deep = quadrant.Children(deep)[0]
	}
	tr.Leaves[0] = deep
	sortQuadrants(tr.Leaves)
	tr.RecomputeCounters()

	require.True(t, IsAlmostSorted(tr.Leaves))

	BalanceSubtree(tr, ModeFaceCorner)
	require.True(t, IsComplete(tr.Leaves))

	snapshot := append([]quadrant.Quadrant(nil), tr.Leaves...)

	// Levels 5..1 each enumerate one parent that is a child-0 quadrant (the
	// last being the root), and all three indirect neighbours of such a
	// parent lie outside the root: 5 levels x 3 rejections.
	stats := BalanceSubtree(tr, ModeFaceCorner)
	require.Equal(t, 15, stats.OutsideRoot)
	require.Equal(t, len(snapshot), len(tr.Leaves))
	for i := range snapshot {
		require.True(t, quadrant.IsEqual(snapshot[i], tr.Leaves[i]))
	}
}

func TestChecksumStableUnderNoOpBalance(t *testing.T) {
	tr := NewRootTree(0)
	refineAll(tr)
	before := tr.Checksum()
	BalanceSubtree(tr, ModeFace)
	after := tr.Checksum()
	require.Equal(t, before, after)
}
