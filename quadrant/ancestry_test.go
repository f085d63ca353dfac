package quadrant

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParentChildrenRoundTrip(t *testing.T) {
	q := Quadrant{X: 3 * SideLength(3), Y: 5 * SideLength(3), Level: 3}
	fam := Children(q)
	for i, c := range fam {
		require.Truef(t, IsEqual(Parent(c), q), "child %d parent mismatch", i)
	}
	require.True(t, IsFamily(fam[0], fam[1], fam[2], fam[3]))
}

func TestLinearIDRoundTrip(t *testing.T) {
	for level := uint8(0); level <= 6; level++ {
		for id := uint64(0); id < uint64(1)<<(2*level); id++ {
			q := SetMorton(level, id)
			require.Equal(t, id, LinearID(q, level))
		}
	}
}

func TestNearestCommonAncestorContainsBoth(t *testing.T) {
	a := Quadrant{X: 0, Y: 0, Level: 5}
	b := Quadrant{X: SideLength(5) * 3, Y: SideLength(5) * 7, Level: 5}
	nca := NearestCommonAncestor(a, b)
	require.True(t, IsEqual(nca, a) || IsAncestor(nca, a))
	require.True(t, IsEqual(nca, b) || IsAncestor(nca, b))

	child := Children(nca)
	for _, c := range child {
		coversA := IsEqual(c, a) || IsAncestor(c, a)
		coversB := IsEqual(c, b) || IsAncestor(c, b)
		require.False(t, coversA && coversB, "a finer quadrant should not contain both")
	}
}

func TestFastSlowPredicatesAgree(t *testing.T) {
	root := Quadrant{Level: 0}
	l2 := Children(Children(root)[0])
	l3 := Children(l2[2])

	pairs := [][2]Quadrant{
		{l2[0], l2[1]},
		{l2[0], l3[0]},
		{l3[1], l3[2]},
		{root, l3[0]},
	}
	for _, p := range pairs {
		a, b := p[0], p[1]
		require.Equal(t, isSiblingSlow(a, b), IsSibling(a, b))
		require.Equal(t, isAncestorSlow(a, b), IsAncestor(a, b))
		require.Equal(t, nearestCommonAncestorSlow(a, b), NearestCommonAncestor(a, b))
	}

	last := LastDescendent(l3[0], MaxLevel)
	first := FirstDescendent(l3[1], MaxLevel)
	_ = last
	_ = first
	require.Equal(t, isNextSlow(l3[0], l3[1]), IsNext(l3[0], l3[1]))
}

func TestTransformInverse(t *testing.T) {
	q := Quadrant{X: SideLength(4) * 3, Y: SideLength(4) * 9, Level: 4}
	for _, tr := range AllTransforms() {
		got := Apply(Apply(q, tr), Inverse(tr))
		require.True(t, IsEqual(got, q), "transform %d did not invert", tr)
	}
}

func TestCompareOrdersDistinctQuadrants(t *testing.T) {
	root := Quadrant{Level: 0}
	fam := Children(root)
	for i := 0; i < len(fam); i++ {
		for j := i + 1; j < len(fam); j++ {
			require.NotEqual(t, 0, Compare(fam[i], fam[j]))
		}
	}
	require.Equal(t, -1, Compare(root, fam[0]))
}
