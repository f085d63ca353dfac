package foresttesting

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSingleRankForestOwnsEveryTree(t *testing.T) {
	c := NewTestContext(t, "foresttesting")
	f := c.NewSingleRankForest(LShapeConnectivity())
	require.Len(t, f.Local.Trees, 3)
	require.Equal(t, 0, f.Local.FirstTree)
}

func TestSingleTreeConnectivityHasNoNeighbors(t *testing.T) {
	conn := SingleTreeConnectivity()
	require.Equal(t, 1, conn.NumTrees)
	for _, nb := range conn.TreeToTree {
		require.Equal(t, int32(0), nb)
	}
}
