package connectivity

import "strings"

// LShapeText is the three-tree L-shape mesh used throughout the p4est test
// suite: an outer L built from unit-ish quadrilaterals sharing edges and one
// corner where all three trees meet (vertex 3, one-based). Reproduced
// verbatim (aside from whitespace) from the canonical connectivity file
// format, not invented: every data row carries a leading one-based row or
// vertex index ahead of its actual columns, and header keys use "key =
// value" syntax. Shared with the connectivity package's own parser tests so
// the fixture and the parser it exercises never drift apart.
const LShapeText = `[Forest Info]
ver = 0.0.1
Nk = 3
Nv = 7
Nve = 12
Net = 0
Nft = 0
Ncf = 0
Nct = 0

[Coordinates of Element Vertices]
1 -1.0 -1.0 0.0
2  0.0 -1.0 0.0
3  0.0  0.0 0.0
4  1.0  0.0 0.0
5  1.0  1.0 0.0
6  0.0  1.0 0.0
7 -1.0  0.0 0.0

[Element to Vertex]
1 1 2 4 3
2 1 3 6 7
3 3 4 5 6

[Element to Element]
1 1 1 3 2
2 1 3 2 2
3 1 3 3 2

[Element to Face]
1 1 2 1 1
2 4 4 3 4
3 3 2 3 2

[Vertex to Element]
1 2 1 2
2 1 1
3 3 1 3 2
4 2 1 3
5 1 3
6 2 2 3
7 1 2

[Vertex to Vertex]
1 2 1 1
2 1 2
3 3 3 3 3
4 2 4 4
5 1 5
6 2 6 6
7 1 7

[Element Tags]
[Face Tags]
[Curved Faces]
[Curved Types]
`

// NewLShapeConnectivity parses LShapeText, panicking if it fails, since the
// fixture is fixed and covered by TestParseTextLShape in this package.
func NewLShapeConnectivity() *Connectivity {
	c, err := ParseText(strings.NewReader(LShapeText))
	if err != nil {
		panic("connectivity: LShapeText fixture failed to parse: " + err.Error())
	}
	return c
}
