package connectivity

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/datatrails/go-datatrails-quadforest/quadrant"
)

var sectionOrder = []string{
	"[Forest Info]",
	"[Coordinates of Element Vertices]",
	"[Element to Vertex]",
	"[Element to Element]",
	"[Element to Face]",
	"[Vertex to Element]",
	"[Vertex to Vertex]",
	"[Element Tags]",
	"[Face Tags]",
	"[Curved Faces]",
	"[Curved Types]",
}

type lineScanner struct {
	sc   *bufio.Scanner
	line int
	next string
	has  bool
}

func newLineScanner(r io.Reader) *lineScanner {
	return &lineScanner{sc: bufio.NewScanner(r)}
}

// nextTokens returns the whitespace-split tokens of the next non-blank,
// non-comment-only line, or nil at EOF.
func (s *lineScanner) nextTokens() []string {
	for s.sc.Scan() {
		s.line++
		text := s.sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		return fields
	}
	return nil
}

// ParseText parses the bracketed-section connectivity text format: a fixed
// sequence of sections, one-based indices converted to zero-based, `#`
// starting an end-of-line comment. Every data row carries a leading
// one-based row (or vertex) index ahead of its actual columns; the
// element-to-vertex corner columns are in user-facing corner order and are
// permuted to canonical z-order on read.
func ParseText(r io.Reader) (*Connectivity, error) {
	s := newLineScanner(r)

	if _, err := expectSection(s, sectionOrder[0]); err != nil {
		return nil, err
	}

	counts, err := readForestInfo(s)
	if err != nil {
		return nil, err
	}

	c := &Connectivity{NumTrees: counts["Nk"], NumVertices: counts["Nv"]}

	if _, err := expectSection(s, sectionOrder[1]); err != nil {
		return nil, err
	}
	if c.Vertices, err = readVertices(s, c.NumVertices); err != nil {
		return nil, err
	}

	if _, err := expectSection(s, sectionOrder[2]); err != nil {
		return nil, err
	}
	if c.TreeToVertex, err = readElementToVertex(s, c.NumTrees); err != nil {
		return nil, err
	}

	if _, err := expectSection(s, sectionOrder[3]); err != nil {
		return nil, err
	}
	if c.TreeToTree, err = readIntRows(s, c.NumTrees, 4, true); err != nil {
		return nil, err
	}

	if _, err := expectSection(s, sectionOrder[4]); err != nil {
		return nil, err
	}
	if c.TreeToFace, err = readFaceRows(s, c.NumTrees); err != nil {
		return nil, err
	}

	if _, err := expectSection(s, sectionOrder[5]); err != nil {
		return nil, err
	}
	if c.VTTOffset, c.VertexToTree, err = readVertexToElement(s, c.NumVertices); err != nil {
		return nil, err
	}

	// The remaining sections (vertex-to-vertex adjacency, element/face
	// tags, curved-geometry metadata) carry no fields the core data model
	// represents; they are consumed only so a well-formed file is fully
	// read, never validated beyond being present. Vertex-to-vertex uses
	// the same count-prefixed row convention as vertex-to-element, keyed
	// by Nv; the tag/curved sections are keyed by their own header count.
	skipCounts := []int{c.NumVertices, counts["Net"], counts["Nft"], counts["Ncf"], counts["Nct"]}
	for i, name := range sectionOrder[6:] {
		if _, err := expectSection(s, name); err != nil {
			return nil, err
		}
		if err := skipRows(s, skipCounts[i]); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// skipRows discards exactly n non-blank, non-comment lines, without caring
// about their column layout.
func skipRows(s *lineScanner, n int) error {
	for i := 0; i < n; i++ {
		if s.nextTokens() == nil {
			return parseErrorf(s.line, "unexpected EOF, expected %d more row(s)", n-i)
		}
	}
	return nil
}

func expectSection(s *lineScanner, name string) (string, error) {
	tokens := s.nextTokens()
	if tokens == nil {
		return "", parseErrorf(s.line, "expected section %s, got EOF", name)
	}
	got := strings.Join(tokens, " ")
	if got != name {
		return "", parseErrorf(s.line, "expected section %s, got %q", name, got)
	}
	return got, nil
}

// readForestInfo reads the [Forest Info] key/value block. Each line is
// either "key value" or "key = value"; the version line ("ver = ...") has
// a non-numeric value and is skipped. Reading stops once every key in
// want has been seen, regardless of what order they appeared in.
func readForestInfo(s *lineScanner) (map[string]int, error) {
	want := map[string]bool{"Nk": true, "Nv": true, "Nve": true, "Net": true, "Nft": true, "Ncf": true, "Nct": true}
	out := make(map[string]int, len(want))
	for len(out) < len(want) {
		tokens := s.nextTokens()
		if tokens == nil {
			return nil, parseErrorf(s.line, "unexpected EOF in [Forest Info]")
		}
		key, value, ok := splitKeyValue(tokens)
		if !ok {
			return nil, parseErrorf(s.line, "malformed forest info line")
		}
		if !want[key] {
			// Non-count fields such as "ver" carry no data this model
			// represents.
			continue
		}
		v, err := strconv.Atoi(value)
		if err != nil {
			return nil, parseErrorf(s.line, "bad value for %s: %v", key, err)
		}
		out[key] = v
	}
	return out, nil
}

// splitKeyValue accepts both "key value" and "key = value" token layouts.
func splitKeyValue(tokens []string) (key, value string, ok bool) {
	switch len(tokens) {
	case 2:
		return tokens[0], tokens[1], true
	case 3:
		if tokens[1] == "=" {
			return tokens[0], tokens[2], true
		}
	}
	return "", "", false
}

// readVertices reads n rows of "index x y z", discarding the leading
// one-based row index every data row in this format carries.
func readVertices(s *lineScanner, n int) ([]float64, error) {
	out := make([]float64, 0, 3*n)
	for i := 0; i < n; i++ {
		tokens := s.nextTokens()
		if len(tokens) != 4 {
			return nil, parseErrorf(s.line, "expected a row index and 3 vertex coordinates")
		}
		for _, tok := range tokens[1:] {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, parseErrorf(s.line, "bad coordinate: %v", err)
			}
			out = append(out, v)
		}
	}
	return out, nil
}

// readElementToVertex reads numTrees rows of "index v0 v1 v2 v3", where the
// four vertex columns are in user-facing corner order (0,0),(1,0),(1,1),
// (0,1); each column is stored at its canonical z-order slot via
// quadrant.CornerToZorder.
func readElementToVertex(s *lineScanner, numTrees int) ([]int32, error) {
	out := make([]int32, 4*numTrees)
	for t := 0; t < numTrees; t++ {
		tokens := s.nextTokens()
		if len(tokens) != 5 {
			return nil, parseErrorf(s.line, "expected a row index and 4 vertex indices")
		}
		for corner := 0; corner < 4; corner++ {
			v, err := strconv.Atoi(tokens[1+corner])
			if err != nil {
				return nil, parseErrorf(s.line, "bad vertex index: %v", err)
			}
			out[4*t+int(quadrant.CornerToZorder(uint8(corner)))] = int32(v - 1)
		}
	}
	return out, nil
}

// readIntRows reads numRows rows of "index c0 .. c(width-1)", discarding
// the leading row index and optionally treating each column as a
// one-based id to convert to zero-based.
func readIntRows(s *lineScanner, numRows, width int, oneBased bool) ([]int32, error) {
	out := make([]int32, width*numRows)
	for row := 0; row < numRows; row++ {
		tokens := s.nextTokens()
		if len(tokens) != width+1 {
			return nil, parseErrorf(s.line, "expected a row index and %d columns", width)
		}
		for col := 0; col < width; col++ {
			v, err := strconv.Atoi(tokens[1+col])
			if err != nil {
				return nil, parseErrorf(s.line, "bad integer: %v", err)
			}
			if oneBased {
				v--
			}
			out[width*row+col] = int32(v)
		}
	}
	return out, nil
}

// readFaceRows reads numTrees rows of "index f0 f1 f2 f3". Face codes are
// one-based in the file, like tree ids, and are decremented to the 0..7
// range Connectivity stores.
func readFaceRows(s *lineScanner, numTrees int) ([]uint8, error) {
	out := make([]uint8, 4*numTrees)
	for t := 0; t < numTrees; t++ {
		tokens := s.nextTokens()
		if len(tokens) != 5 {
			return nil, parseErrorf(s.line, "expected a row index and 4 face codes")
		}
		for face := 0; face < 4; face++ {
			v, err := strconv.Atoi(tokens[1+face])
			if err != nil {
				return nil, parseErrorf(s.line, "bad face code: %v", err)
			}
			v--
			if v < 0 || v > 7 {
				return nil, parseErrorf(s.line, "face code out of range 0..7")
			}
			out[4*t+face] = uint8(v)
		}
	}
	return out, nil
}

// readVertexToElement reads numVertices rows of "index count id0 .. id(count-1)".
func readVertexToElement(s *lineScanner, numVertices int) ([]int32, []int32, error) {
	offset := make([]int32, numVertices+1)
	var flat []int32
	for v := 0; v < numVertices; v++ {
		tokens := s.nextTokens()
		if len(tokens) < 2 {
			return nil, nil, parseErrorf(s.line, "expected a vertex index and neighbor count")
		}
		count, err := strconv.Atoi(tokens[1])
		if err != nil || count < 0 || len(tokens) != count+2 {
			return nil, nil, parseErrorf(s.line, "malformed vertex-to-element row")
		}
		offset[v] = int32(len(flat))
		for i := 0; i < count; i++ {
			id, err := strconv.Atoi(tokens[2+i])
			if err != nil {
				return nil, nil, parseErrorf(s.line, "bad tree id: %v", err)
			}
			flat = append(flat, int32(id-1))
		}
	}
	offset[numVertices] = int32(len(flat))
	return offset, flat, nil
}
