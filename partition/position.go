package partition

// Position is the Morton-least leaf assigned to a process, expressed as
// the tree it lives in plus its (x, y) at quadrant.MaxLevel: a point, not a
// quadrant, since only the leaf's location (not its size) matters for
// ordering slices across the forest.
type Position struct {
	WhichTree int
	X, Y      int64
}

// GlobalState is the partition bookkeeping every process keeps a full,
// synchronized copy of: where each process's slice of the globally
// Morton-ordered forest begins, and how many leaves precede it.
type GlobalState struct {
	// FirstPosition has one entry per process plus a sentinel at index P:
	// (numTrees, 0, 0), one past the last real tree, so a range ending at
	// the last leaf of the forest still has a well-defined "next position"
	// to compare against.
	FirstPosition []Position
	// LastQuadIndex[p] is the cumulative leaf count through process p
	// inclusive (LastQuadIndex[P-1] is the forest total).
	LastQuadIndex []int64
}

// NewGlobalState builds a GlobalState from P first-positions and P
// cumulative counts, appending the sentinel entry itself.
func NewGlobalState(numTrees int, firstPositions []Position, lastQuadIndex []int64) *GlobalState {
	fp := append([]Position(nil), firstPositions...)
	fp = append(fp, Position{WhichTree: numTrees})
	return &GlobalState{
		FirstPosition: fp,
		LastQuadIndex: append([]int64(nil), lastQuadIndex...),
	}
}

// SplitTree reports whether the tree straddling the boundary between
// process p and process p+1 is shared between them: p's slice ends inside
// the same tree p+1's slice begins in, at a different point. Two adjacent
// processes whose slices instead break cleanly on a tree boundary, or
// whose first positions coincide exactly, do not split a tree.
func (g *GlobalState) SplitTree(p int) (treeID int, ok bool) {
	if p < 0 || p+1 >= len(g.FirstPosition) {
		return 0, false
	}
	a, b := g.FirstPosition[p], g.FirstPosition[p+1]
	if a.WhichTree != b.WhichTree {
		return 0, false
	}
	if a.X == b.X && a.Y == b.Y {
		return 0, false
	}
	return a.WhichTree, true
}
