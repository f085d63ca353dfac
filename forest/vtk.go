package forest

import (
	"bufio"
	"fmt"
	"io"

	"github.com/datatrails/go-datatrails-quadforest/quadrant"
)

// VTKWriter renders a forest's local leaves as legacy VTK unstructured
// grid geometry, purely for visualization; no core forest operation
// depends on it, per the read-only-collaborator boundary the connectivity
// parser and transport interfaces also observe.
type VTKWriter interface {
	WriteLegacyUnstructured(w io.Writer, f *Forest) error
}

// legacyVTKWriter emits ASCII VTK legacy format, one quadrilateral cell
// per local leaf, its four corners bilinearly interpolated from the owning
// tree's physical corner vertices.
type legacyVTKWriter struct{}

// NewLegacyVTKWriter returns the concrete VTKWriter implementation.
func NewLegacyVTKWriter() VTKWriter { return legacyVTKWriter{} }

const vtkQuadCellType = 9

type point3 struct{ X, Y, Z float64 }

func (legacyVTKWriter) WriteLegacyUnstructured(w io.Writer, f *Forest) error {
	bw := bufio.NewWriter(w)

	var points []point3
	var cells [][4]int

	for i, tr := range f.Local.Trees {
		treeID := f.Local.FirstTree + i
		var corners [4]point3
		for zc := uint8(0); zc < 4; zc++ {
			v := f.Conn.CornerVertex(treeID, zc)
			corners[zc] = point3{
				X: f.Conn.Vertices[3*v+0],
				Y: f.Conn.Vertices[3*v+1],
				Z: f.Conn.Vertices[3*v+2],
			}
		}
		for _, leaf := range tr.Leaves {
			var idx [4]int
			for zc := uint8(0); zc < 4; zc++ {
				u, v := cornerUV(leaf, zc)
				idx[zc] = len(points)
				points = append(points, bilinear(corners, u, v))
			}
			cells = append(cells, idx)
		}
	}

	fmt.Fprintln(bw, "# vtk DataFile Version 3.0")
	fmt.Fprintln(bw, "quadforest leaves")
	fmt.Fprintln(bw, "ASCII")
	fmt.Fprintln(bw, "DATASET UNSTRUCTURED_GRID")
	fmt.Fprintf(bw, "POINTS %d float\n", len(points))
	for _, p := range points {
		fmt.Fprintf(bw, "%g %g %g\n", p.X, p.Y, p.Z)
	}
	fmt.Fprintf(bw, "CELLS %d %d\n", len(cells), 5*len(cells))
	for _, c := range cells {
		fmt.Fprintf(bw, "4 %d %d %d %d\n", c[0], c[1], c[2], c[3])
	}
	fmt.Fprintf(bw, "CELL_TYPES %d\n", len(cells))
	for range cells {
		fmt.Fprintln(bw, vtkQuadCellType)
	}
	return bw.Flush()
}

// cornerUV returns a leaf's z-order corner zCorner as a fraction of the
// owning tree's [0,1]x[0,1] reference square.
func cornerUV(q quadrant.Quadrant, zCorner uint8) (u, v float64) {
	h := float64(quadrant.SideLength(q.Level))
	x, y := float64(q.X), float64(q.Y)
	if zCorner&1 != 0 {
		x += h
	}
	if zCorner&2 != 0 {
		y += h
	}
	root := float64(quadrant.Root)
	return x / root, y / root
}

// bilinear interpolates the tree's four physical corners (in z-order: 00,
// 10, 01, 11) at reference coordinate (u, v).
func bilinear(corners [4]point3, u, v float64) point3 {
	c00, c10, c01, c11 := corners[0], corners[1], corners[2], corners[3]
	lerp := func(a, b, t float64) float64 { return a + (b-a)*t }
	bottom := point3{lerp(c00.X, c10.X, u), lerp(c00.Y, c10.Y, u), lerp(c00.Z, c10.Z, u)}
	top := point3{lerp(c01.X, c11.X, u), lerp(c01.Y, c11.Y, u), lerp(c01.Z, c11.Z, u)}
	return point3{lerp(bottom.X, top.X, v), lerp(bottom.Y, top.Y, v), lerp(bottom.Z, top.Z, v)}
}
