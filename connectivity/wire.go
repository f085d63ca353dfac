package connectivity

import "github.com/fxamacker/cbor/v2"

// wireForm is the CBOR-serializable shape of a Connectivity, used to
// broadcast a rank-0-parsed connectivity to every other process (§6: read
// on rank 0, then broadcast).
type wireForm struct {
	NumTrees     int
	NumVertices  int
	TreeToVertex []int32
	TreeToTree   []int32
	TreeToFace   []uint8
	Vertices     []float64
	VTTOffset    []int32
	VertexToTree []int32
}

// MarshalBcast encodes c for transmission over transport.Collectives.Bcast.
func (c *Connectivity) MarshalBcast() ([]byte, error) {
	return cbor.Marshal(wireForm{
		NumTrees:     c.NumTrees,
		NumVertices:  c.NumVertices,
		TreeToVertex: c.TreeToVertex,
		TreeToTree:   c.TreeToTree,
		TreeToFace:   c.TreeToFace,
		Vertices:     c.Vertices,
		VTTOffset:    c.VTTOffset,
		VertexToTree: c.VertexToTree,
	})
}

// UnmarshalBcast decodes the bytes produced by MarshalBcast into a fresh
// Connectivity, as every non-rank-0 process does after Bcast returns.
func UnmarshalBcast(data []byte) (*Connectivity, error) {
	var w wireForm
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return &Connectivity{
		NumTrees:     w.NumTrees,
		NumVertices:  w.NumVertices,
		TreeToVertex: w.TreeToVertex,
		TreeToTree:   w.TreeToTree,
		TreeToFace:   w.TreeToFace,
		Vertices:     w.Vertices,
		VTTOffset:    w.VTTOffset,
		VertexToTree: w.VertexToTree,
	}, nil
}
