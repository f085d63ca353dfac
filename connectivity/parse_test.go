package connectivity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTextLShape(t *testing.T) {
	c, err := ParseText(strings.NewReader(LShapeText))
	require.NoError(t, err)
	require.Equal(t, 3, c.NumTrees)
	require.Equal(t, 7, c.NumVertices)
	require.Len(t, c.Vertices, 21)
	require.Len(t, c.TreeToVertex, 12)
	require.Len(t, c.TreeToTree, 12)
	require.Len(t, c.TreeToFace, 12)
	require.Len(t, c.VTTOffset, 8)
}

func TestParseTextRejectsMissingSection(t *testing.T) {
	_, err := ParseText(strings.NewReader("[Forest Info]\nNk 1\n"))
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestMarshalBcastRoundTrip(t *testing.T) {
	c, err := ParseText(strings.NewReader(LShapeText))
	require.NoError(t, err)

	data, err := c.MarshalBcast()
	require.NoError(t, err)

	got, err := UnmarshalBcast(data)
	require.NoError(t, err)
	require.Equal(t, c.NumTrees, got.NumTrees)
	require.Equal(t, c.TreeToVertex, got.TreeToVertex)
	require.Equal(t, c.VertexToTree, got.VertexToTree)
}

func TestCornerNeighborsFindsSharedVertex(t *testing.T) {
	c, err := ParseText(strings.NewReader(LShapeText))
	require.NoError(t, err)

	// Vertex index 2 (one-based 3) is where trees 0, 1 and 2 all meet.
	refs := c.CornerNeighbors(0, quadrant0Corner(c, 0, 2))
	require.NotEmpty(t, refs)
}

// quadrant0Corner returns the user-facing corner of tree t whose vertex is
// v, used only to keep the corner-neighbor test independent of the
// z-order/corner permutation details covered elsewhere.
func quadrant0Corner(c *Connectivity, t int, v int32) uint8 {
	for corner := uint8(0); corner < 4; corner++ {
		if c.CornerVertex(t, cornerToZorderForTest(corner)) == v {
			return corner
		}
	}
	return 0
}

func cornerToZorderForTest(corner uint8) uint8 {
	table := [4]uint8{0, 1, 3, 2}
	return table[corner&3]
}
