package partition

import (
	"context"
	"sync"
	"testing"

	"github.com/datatrails/go-datatrails-quadforest/qtree"
	"github.com/datatrails/go-datatrails-quadforest/quadrant"
	"github.com/datatrails/go-datatrails-quadforest/transport"
	"github.com/stretchr/testify/require"
)

func twoTreeLocal(dataSize int) *Local {
	t0 := qtree.NewTree(dataSize)
	t1 := qtree.NewTree(dataSize)
	root := quadrant.Quadrant{Level: 0}
	fam := quadrant.Children(root)
	for _, q := range fam {
		t0.Append(q)
	}
	for _, q := range fam {
		t1.Append(q)
	}
	return &Local{FirstTree: 0, DataSize: dataSize, Trees: []*qtree.Tree{t0, t1}}
}

func TestPartitionGivenIdentityIsNoop(t *testing.T) {
	ctx := context.Background()
	comm := transport.NewLocalComm()
	local := twoTreeLocal(0)
	total := local.totalLeaves()

	before := make([]quadrant.Quadrant, 0, total)
	for _, tr := range local.Trees {
		before = append(before, tr.Leaves...)
	}

	state := NewGlobalState(2, []Position{{}}, []int64{total})
	newCount := []int64{total}

	shipped, err := PartitionGiven(ctx, comm, comm, local, state, newCount)
	require.NoError(t, err)
	require.Zero(t, shipped)

	after := make([]quadrant.Quadrant, 0, total)
	for _, tr := range local.Trees {
		after = append(after, tr.Leaves...)
	}
	require.Equal(t, len(before), len(after))
	for i := range before {
		require.True(t, quadrant.IsEqual(before[i], after[i]))
	}
}

func TestPartitionGivenPreservesPayload(t *testing.T) {
	ctx := context.Background()
	comm := transport.NewLocalComm()
	local := twoTreeLocal(4)
	for i, tr := range local.Trees {
		for j := range tr.Leaves {
			pl := tr.NewOwnedPayload()
			pl.Owned[0] = byte(i)
			pl.Owned[1] = byte(j)
			tr.Leaves[j].Data = pl
		}
	}
	total := local.totalLeaves()
	state := NewGlobalState(2, []Position{{}}, []int64{total})

	_, err := PartitionGiven(ctx, comm, comm, local, state, []int64{total})
	require.NoError(t, err)

	seen := make(map[[2]byte]bool)
	for _, tr := range local.Trees {
		for _, q := range tr.Leaves {
			require.Equal(t, quadrant.PayloadOwned, q.Data.Kind)
			b := tr.Payload.Get(q.Data.OwnedIdx)
			seen[[2]byte{b[0], b[1]}] = true
		}
	}
	require.Len(t, seen, int(total))
}

func TestSplitTreeDetectsSharedBoundaryTree(t *testing.T) {
	state := NewGlobalState(4, []Position{
		{WhichTree: 0, X: 0, Y: 0},
		{WhichTree: 1, X: 100, Y: 0},
		{WhichTree: 1, X: 200, Y: 0},
	}, []int64{10, 20, 30})

	treeID, ok := state.SplitTree(1)
	require.True(t, ok)
	require.Equal(t, 1, treeID)

	_, ok = state.SplitTree(0)
	require.False(t, ok)
}

func singleTreeLocal(firstTree, dataSize int, tag byte) *Local {
	tr := qtree.NewTree(dataSize)
	for i, q := range quadrant.Children(quadrant.Quadrant{Level: 0}) {
		pl := tr.NewOwnedPayload()
		pl.Owned[0] = tag
		pl.Owned[1] = byte(i)
		q.Data = pl
		tr.Append(q)
	}
	return &Local{FirstTree: firstTree, DataSize: dataSize, Trees: []*qtree.Tree{tr}}
}

func leafTags(l *Local) [][2]byte {
	var out [][2]byte
	for _, tr := range l.Trees {
		for _, q := range tr.Leaves {
			b := tr.Payload.Get(q.Data.OwnedIdx)
			out = append(out, [2]byte{b[0], b[1]})
		}
	}
	return out
}

// TestPartitionGivenAcrossTwoRanksReversalRoundTrip runs the real cross-rank
// protocol (via transport.NewFakeGroup) over two trees split evenly across
// two ranks, skews the split, then reverses it, checking the forest ends
// up exactly as it started: same tree spans, same leaves, same order.
func TestPartitionGivenAcrossTwoRanksReversalRoundTrip(t *testing.T) {
	ctx := context.Background()
	comms := transport.NewFakeGroup(2)

	locals := []*Local{singleTreeLocal(0, 2, 0), singleTreeLocal(1, 2, 1)}
	originalTags := [][][2]byte{leafTags(locals[0]), leafTags(locals[1])}

	states := make([]*GlobalState, 2)
	for r := range states {
		states[r] = NewGlobalState(2, []Position{{WhichTree: 0}, {WhichTree: 1}}, []int64{4, 8})
	}

	run := func(newCount []int64) []int64 {
		shipped := make([]int64, 2)
		var wg sync.WaitGroup
		for r := 0; r < 2; r++ {
			wg.Add(1)
			go func(r int) {
				defer wg.Done()
				s, err := PartitionGiven(ctx, comms[r], comms[r], locals[r], states[r], newCount)
				require.NoError(t, err)
				shipped[r] = s
			}(r)
		}
		wg.Wait()
		return shipped
	}

	// Old slices [0,3],[4,7]; new [0,5],[6,7]: each rank's symmetric
	// difference is 2, so the global total every rank returns is 2+2.
	shipped := run([]int64{6, 2})
	require.Equal(t, int64(4), shipped[0])
	require.Equal(t, int64(4), shipped[1])
	require.Equal(t, []int64{6, 8}, states[0].LastQuadIndex)
	require.Equal(t, states[0].LastQuadIndex, states[1].LastQuadIndex)

	shipped = run([]int64{4, 4})
	require.Equal(t, int64(4), shipped[0])
	require.Equal(t, int64(4), shipped[1])

	require.Equal(t, 0, locals[0].FirstTree)
	require.Len(t, locals[0].Trees, 1)
	require.Equal(t, 1, locals[1].FirstTree)
	require.Len(t, locals[1].Trees, 1)
	require.Equal(t, originalTags[0], leafTags(locals[0]))
	require.Equal(t, originalTags[1], leafTags(locals[1]))
}

func TestRangeSymmetricDifference(t *testing.T) {
	require.Equal(t, int64(0), rangeSymmetricDifference(0, 9, 0, 9))
	require.Equal(t, int64(2), rangeSymmetricDifference(0, 9, 2, 9))
	require.Equal(t, int64(20), rangeSymmetricDifference(0, 9, 10, 19))
}
