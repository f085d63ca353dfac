package ghost

import (
	"sort"
	"testing"

	"github.com/datatrails/go-datatrails-quadforest/connectivity"
	"github.com/datatrails/go-datatrails-quadforest/qtree"
	"github.com/datatrails/go-datatrails-quadforest/quadrant"
	"github.com/stretchr/testify/require"
)

func TestSearchFromFindsBoundsRegardlessOfGuess(t *testing.T) {
	values := []int{1, 1, 3, 3, 3, 7, 9}
	less := func(target int) func(int) bool {
		return func(i int) bool { return values[i] < target }
	}
	lessOrEqual := func(target int) func(int) bool {
		return func(i int) bool { return values[i] <= target }
	}

	for _, guess := range []int{-5, 0, 2, 3, 6, 100} {
		lo := FindLowerBound(len(values), guess, less(3))
		hi := FindHigherBound(len(values), guess, lessOrEqual(3))
		require.Equal(t, 2, lo, "guess=%d", guess)
		require.Equal(t, 5, hi, "guess=%d", guess)
	}
}

func TestComputeOverlapFindsFinerNeighbor(t *testing.T) {
	tr := qtree.NewTree(0)
	root := quadrant.Quadrant{Level: 0}
	fam := quadrant.Children(root)
	tr.Leaves = append(tr.Leaves, fam[:]...)
	// refine leaf 3 (touching the far corner from leaf 0) two levels
	// deeper, so it is fine enough (level > seed.Level+1) to be a match.
	tr.Leaves[3] = quadrant.Children(quadrant.Children(fam[3])[0])[0]
	sortLeaves(tr.Leaves)
	tr.RecomputeCounters()

	seed := Seed{Quadrant: fam[0], OriginTree: 0}
	out := ComputeOverlap(0, tr, &connectivity.Connectivity{}, []Seed{seed})
	require.NotEmpty(t, out)
	for _, o := range out {
		require.Greater(t, int(o.Quadrant.Level), int(seed.Quadrant.Level)+1)
	}
}

func TestUniqifyOverlapDropsDuplicatesAndKnown(t *testing.T) {
	q1 := quadrant.Quadrant{X: 0, Y: 0, Level: 2}
	q2 := quadrant.Quadrant{X: quadrant.SideLength(2), Y: 0, Level: 2}

	have := []Overlap{{Quadrant: q1, DestTree: 0}}
	out := []Overlap{
		{Quadrant: q1, DestTree: 0},
		{Quadrant: q2, DestTree: 0},
		{Quadrant: q2, DestTree: 0},
	}

	result := UniqifyOverlap(have, out)
	require.Len(t, result, 1)
	require.True(t, quadrant.IsEqual(result[0].Quadrant, q2))
}

func sortLeaves(leaves []quadrant.Quadrant) {
	sort.Slice(leaves, func(i, j int) bool { return quadrant.Less(leaves[i], leaves[j]) })
}
