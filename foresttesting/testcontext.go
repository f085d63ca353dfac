// Package foresttesting provides shared test fixtures for the forest
// packages, mirroring mmrtesting.TestContext's role for the merkle log
// packages: one place ready-made connectivities and forests get built so
// individual package tests don't each reinvent them.
package foresttesting

import (
	"context"
	"testing"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/datatrails/go-datatrails-quadforest/connectivity"
	"github.com/datatrails/go-datatrails-quadforest/forest"
	"github.com/datatrails/go-datatrails-quadforest/transport"
	"github.com/stretchr/testify/require"
)

// TestContext bundles the logger and connectivity fixtures a forest test
// typically needs.
type TestContext struct {
	Log logger.Logger
	T   *testing.T
}

// NewTestContext initializes logging the way mmrtesting.NewTestContext does
// for the merkle log tests, scoped under label.
func NewTestContext(t *testing.T, label string) TestContext {
	logger.New("INFO")
	return TestContext{Log: logger.Sugar.WithServiceName(label), T: t}
}

// SingleTreeConnectivity returns a minimal one-tree, unit-square mesh with
// no neighbors across any face.
func SingleTreeConnectivity() *connectivity.Connectivity {
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

// LShapeConnectivity returns the three-tree L-shape fixture used across the
// ghost and connectivity packages' own tests.
func LShapeConnectivity() *connectivity.Connectivity {
	return connectivity.NewLShapeConnectivity()
}

// NewSingleRankForest builds a forest over conn using an in-process
// transport.LocalComm, the harness every non-distributed forest test uses.
func (c TestContext) NewSingleRankForest(conn *connectivity.Connectivity, opts ...forest.Option) *forest.Forest {
	c.T.Helper()
	comm := transport.NewLocalComm()
	f, err := forest.NewFromConnectivity(context.Background(), comm, comm, conn, opts...)
	require.NoError(c.T, err)
	return f
}
