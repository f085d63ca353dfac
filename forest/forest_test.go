package forest

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/datatrails/go-datatrails-quadforest/connectivity"
	"github.com/datatrails/go-datatrails-quadforest/qtree"
	"github.com/datatrails/go-datatrails-quadforest/quadrant"
	"github.com/datatrails/go-datatrails-quadforest/transport"
	"github.com/stretchr/testify/require"
	"github.com/veraison/go-cose"
)

func TestMain(m *testing.M) {
	logger.New("INFO")
	m.Run()
}

// singleTreeConnectivity returns a one-tree, one-vertex-per-corner mesh: no
// neighbors across any face, a plain unit square in physical space.
func singleTreeConnectivity() *connectivity.Connectivity {
	return &connectivity.Connectivity{
		NumTrees:     1,
		NumVertices:  4,
		TreeToVertex: []int32{0, 1, 2, 3},
		TreeToTree:   []int32{0, 0, 0, 0},
		TreeToFace:   []uint8{0, 1, 2, 3},
		Vertices: []float64{
			0, 0, 0,
			1, 0, 0,
			0, 1, 0,
			1, 1, 0,
		},
		VTTOffset:    []int32{0, 1, 2, 3, 4},
		VertexToTree: []int32{0, 0, 0, 0},
	}
}

func threeTreeConnectivity() *connectivity.Connectivity {
	return &connectivity.Connectivity{
		NumTrees:     3,
		NumVertices:  12,
		TreeToVertex: []int32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
		TreeToTree:   []int32{0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2},
		TreeToFace:   []uint8{0, 1, 2, 3, 4, 5, 6, 7, 0, 1, 2, 3},
		Vertices:     make([]float64, 3*12),
		VTTOffset:    []int32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
		VertexToTree: []int32{0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2},
	}
}

func newTestForest(t *testing.T, conn *connectivity.Connectivity, opts ...Option) *Forest {
	t.Helper()
	comm := transport.NewLocalComm()
	f, err := NewFromConnectivity(context.Background(), comm, comm, conn, opts...)
	require.NoError(t, err)
	return f
}

func TestNewFromConnectivitySingleRankOwnsEveryTree(t *testing.T) {
	conn := threeTreeConnectivity()
	f := newTestForest(t, conn)
	require.Equal(t, 0, f.Local.FirstTree)
	require.Len(t, f.Local.Trees, 3)
	require.Equal(t, []int64{3}, f.State.LastQuadIndex)
	require.Len(t, f.State.FirstPosition, 2)
	require.Equal(t, 3, f.State.FirstPosition[1].WhichTree)
}

func TestSplitTreesAcrossRanksDistributesRemainder(t *testing.T) {
	first, count := splitTreesAcrossRanks(7, 3, 0)
	require.Equal(t, 0, first)
	require.Equal(t, 3, count)
	first, count = splitTreesAcrossRanks(7, 3, 1)
	require.Equal(t, 3, first)
	require.Equal(t, 2, count)
	first, count = splitTreesAcrossRanks(7, 3, 2)
	require.Equal(t, 5, first)
	require.Equal(t, 2, count)
}

func TestBalanceRefinesEveryLocalTree(t *testing.T) {
	f := newTestForest(t, singleTreeConnectivity())
	tr := f.Local.Trees[0]
	tr.Leaves = nil
	for _, child := range quadrant.Children(quadrant.Quadrant{Level: 0}) {
		tr.Append(child)
	}
	tr.RecomputeCounters()

	require.NoError(t, f.Balance(context.Background(), qtree.ModeFaceCorner))
	require.NotEmpty(t, f.Local.Trees[0].Leaves)
}

func TestRepartitionRoundTripPreservesChecksum(t *testing.T) {
	f := newTestForest(t, singleTreeConnectivity())
	before := f.Checksum()

	shipped, err := f.Repartition(context.Background(), []int64{f.State.LastQuadIndex[0]})
	require.NoError(t, err)
	require.Equal(t, int64(0), shipped)
	require.Equal(t, before, f.Checksum())
}

func TestCloseDetectsArenaLeak(t *testing.T) {
	f := newTestForest(t, singleTreeConnectivity(), WithPayloadSize(4))
	require.NoError(t, f.Close())

	f.Local.Trees[0].Payload.Alloc()
	err := f.Close()
	require.ErrorIs(t, err, ErrArenaLeak)
}

func TestRunInvokesAbortHandlerOnPanic(t *testing.T) {
	var caught error
	f := newTestForest(t, singleTreeConnectivity(), WithAbortHandler(func(err error) { caught = err }))

	err := f.run(context.Background(), "boom", func() error { panic("simulated invariant violation") })
	require.Error(t, err)
	require.Same(t, caught, err)
}

func TestRunFallsBackToCommAbort(t *testing.T) {
	f := newTestForest(t, singleTreeConnectivity())
	require.Panics(t, func() {
		_ = f.run(context.Background(), "boom", func() error { panic("simulated invariant violation") })
	})
}

func testSigner(t *testing.T) (cose.Signer, cose.Verifier) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	signer, err := cose.NewSigner(cose.AlgorithmES256, key)
	require.NoError(t, err)
	verifier, err := cose.NewVerifier(cose.AlgorithmES256, &key.PublicKey)
	require.NoError(t, err)
	return signer, verifier
}

func TestCheckpointSignAndVerifyRoundTrip(t *testing.T) {
	f := newTestForest(t, threeTreeConnectivity())
	signer, verifier := testSigner(t)
	codec, err := NewCheckpointCodec()
	require.NoError(t, err)

	snap := f.NewSnapshot()
	ck, err := SignCheckpoint(codec, signer, snap)
	require.NoError(t, err)
	require.NoError(t, VerifyCheckpoint(codec, verifier, ck))
}

func TestVerifyCheckpointRejectsTamperedPayload(t *testing.T) {
	f := newTestForest(t, threeTreeConnectivity())
	signer, verifier := testSigner(t)
	codec, err := NewCheckpointCodec()
	require.NoError(t, err)

	ck, err := SignCheckpoint(codec, signer, f.NewSnapshot())
	require.NoError(t, err)

	ck.Snapshot.TreeChecksums[0]++
	require.Error(t, VerifyCheckpoint(codec, verifier, ck))
}
