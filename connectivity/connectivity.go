package connectivity

import "github.com/datatrails/go-datatrails-quadforest/quadrant"

// Face identifies one of a tree's four sides. The low bit is the side
// (0 = minus, 1 = plus) and the high bit is the axis (0 = x, 1 = y).
type Face uint8

const (
	FaceXMinus Face = 0
	FaceXPlus  Face = 1
	FaceYMinus Face = 2
	FaceYPlus  Face = 3
)

// Axis returns 0 for an x-face, 1 for a y-face.
func (f Face) Axis() int { return int(f >> 1) }

// Side returns 0 for the minus side of the axis, 1 for the plus side.
func (f Face) Side() int { return int(f & 1) }

// Connectivity is the immutable coarse-mesh topology every forest is built
// from: which trees touch which trees across which faces, and which trees
// meet at which vertices.
type Connectivity struct {
	NumTrees    int
	NumVertices int

	// TreeToVertex holds, for tree t and canonical z-order corner zc, the
	// global vertex index at TreeToVertex[4*t+int(zc)].
	TreeToVertex []int32
	// TreeToTree holds, for tree t and face f, the neighbor tree at
	// TreeToTree[4*t+int(f)]. A boundary face's neighbor is t itself.
	TreeToTree []int32
	// TreeToFace holds, for tree t and face f, a value in 0..7: the low
	// two bits are the neighbor-side face, the upper bit is 1 if the
	// shared edge is traversed in reverse tangential order.
	TreeToFace []uint8

	Vertices []float64 // 3 components per vertex

	VTTOffset    []int32 // len NumVertices+1
	VertexToTree []int32
}

// TreesAtVertex returns the trees meeting at vertex v.
func (c *Connectivity) TreesAtVertex(v int32) []int32 {
	return c.VertexToTree[c.VTTOffset[v]:c.VTTOffset[v+1]]
}

// CornerVertex returns the global vertex at tree t's corner, in canonical
// z-order child-id numbering (not the user-facing corner numbering the
// text format uses).
func (c *Connectivity) CornerVertex(tree int, zCorner uint8) int32 {
	return c.TreeToVertex[4*tree+int(zCorner)]
}

// FaceNeighbor decodes the neighbor tree, neighbor face and orientation for
// tree t's face f. boundary is true when f has no neighbor (the connectivity
// records t as its own neighbor across that face).
func (c *Connectivity) FaceNeighbor(tree int, f Face) (neighborTree int, neighborFace Face, reversed, boundary bool) {
	idx := 4*tree + int(f)
	nt := int(c.TreeToTree[idx])
	raw := c.TreeToFace[idx]
	return nt, Face(raw & 0x3), raw&0x4 != 0, nt == tree
}

// CornerRef names a (tree, corner) pair sharing a vertex with some other
// tree's corner.
type CornerRef struct {
	Tree   int
	Corner uint8 // user-facing corner numbering
}

// CornerNeighbors returns every other tree that meets tree t at the given
// user-facing corner, together with the corner index at which each of them
// touches the shared vertex.
func (c *Connectivity) CornerNeighbors(tree int, corner uint8) []CornerRef {
	v := c.CornerVertex(tree, quadrant.CornerToZorder(corner))
	var out []CornerRef
	for _, raw := range c.TreesAtVertex(v) {
		nt := int(raw)
		if nt == tree {
			continue
		}
		for zc := uint8(0); zc < 4; zc++ {
			if c.CornerVertex(nt, zc) == v {
				out = append(out, CornerRef{Tree: nt, Corner: quadrant.ZorderToCorner(zc)})
				break
			}
		}
	}
	return out
}
