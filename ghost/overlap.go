package ghost

import (
	"github.com/datatrails/go-datatrails-quadforest/connectivity"
	"github.com/datatrails/go-datatrails-quadforest/qtree"
	"github.com/datatrails/go-datatrails-quadforest/quadrant"
)

// Seed is one probe quadrant compute_overlap tests the local tree against:
// every local leaf falling inside its insulation layer, fine enough to
// constrain it under 2:1 balancing, is a candidate to ship somewhere.
//
// For a plain face-neighbor probe, OriginTree names the tree that should
// receive matches and Transform is the symmetry that carried a leaf from
// OriginTree's frame into the local tree's frame to build Quadrant;
// ComputeOverlap applies its inverse before shipping. A same-tree probe
// (used by uniform-refinement ghost checks) has OriginTree equal to the
// tree ComputeOverlap was called for and Transform left at its identity
// zero value, which Apply treats as a no-op.
//
// A corner probe (IsCorner true) instead sits outside the root across a
// shared vertex; instead of a single known recipient, every tree meeting
// that vertex receives the same single smallest corner-touching quadrant,
// looked up through Connectivity.CornerNeighbors.
type Seed struct {
	Quadrant   quadrant.Quadrant
	OriginTree int
	Transform  quadrant.Transform
	IsCorner   bool
	Corner     uint8
}

// Overlap is one leaf compute_overlap decided must ship to another tree,
// already expressed in that tree's own coordinate frame.
type Overlap struct {
	Quadrant quadrant.Quadrant
	DestTree int
}

// ComputeOverlap appends to the result every local leaf of tree that lies
// in the insulation layer of some seed and is fine enough (level >
// seed.Quadrant.Level+1) to constrain that seed under 2:1 balancing.
func ComputeOverlap(localTreeID int, tree *qtree.Tree, conn *connectivity.Connectivity, seeds []Seed) []Overlap {
	var out []Overlap
	guess := 0
	for _, seed := range seeds {
		matched, nextGuess := matchInsulationLayer(tree.Leaves, seed.Quadrant, guess)
		guess = nextGuess

		if seed.IsCorner {
			out = appendCornerOverlap(out, localTreeID, conn, seed, matched)
			continue
		}
		for _, leaf := range matched {
			shipped := leaf
			if seed.Transform != quadrant.TransformIdentity {
				shipped = quadrant.Apply(leaf, quadrant.Inverse(seed.Transform))
			}
			out = append(out, Overlap{Quadrant: shipped, DestTree: seed.OriginTree})
		}
	}
	return out
}

func appendCornerOverlap(out []Overlap, localTreeID int, conn *connectivity.Connectivity, seed Seed, matched []quadrant.Quadrant) []Overlap {
	if len(matched) == 0 {
		return out
	}
	best := matched[0]
	for _, m := range matched[1:] {
		if quadrant.Less(m, best) {
			best = m
		}
	}
	level := quadrant.CornerLevel(best, seed.Corner, quadrant.MaxLevel)
	cq := quadrant.AncestorAt(best, level)
	for _, ref := range conn.CornerNeighbors(localTreeID, seed.Corner) {
		out = append(out, Overlap{Quadrant: cq, DestTree: ref.Tree})
	}
	return out
}

// matchInsulationLayer returns the local leaves inside seed's insulation
// layer (the 3x3 block of seed-sized quadrants centered on seed, minus
// seed itself) that are fine enough to constrain seed, along with an
// updated search guess for the next seed (seeds are processed in
// ascending Morton order by convention, so each probe's match tends to sit
// just after the previous one's).
func matchInsulationLayer(leaves []quadrant.Quadrant, seed quadrant.Quadrant, guess int) ([]quadrant.Quadrant, int) {
	var matched []quadrant.Quadrant
	h := quadrant.SideLength(seed.Level)
	for dy := int64(-1); dy <= 1; dy++ {
		for dx := int64(-1); dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			cell := quadrant.Quadrant{X: seed.X + dx*h, Y: seed.Y + dy*h, Level: seed.Level}
			lo, hi := leafRange(leaves, cell, guess)
			for i := lo; i < hi; i++ {
				if leaves[i].Level > seed.Level+1 {
					matched = append(matched, leaves[i])
				}
			}
			if hi > guess {
				guess = hi
			}
		}
	}
	return matched, guess
}

// leafRange returns the [lo, hi) index range of leaves whose footprint
// intersects cell, i.e. the leaves between cell's Morton-first and
// Morton-last finest-level descendants inclusive.
func leafRange(leaves []quadrant.Quadrant, cell quadrant.Quadrant, guess int) (int, int) {
	first := quadrant.FirstDescendent(cell, quadrant.MaxLevel)
	last := quadrant.LastDescendent(cell, quadrant.MaxLevel)
	lo := FindLowerBound(len(leaves), guess, func(i int) bool {
		return quadrant.Compare(quadrant.LastDescendent(leaves[i], quadrant.MaxLevel), first) < 0
	})
	hi := FindHigherBound(len(leaves), lo, func(i int) bool {
		return quadrant.Compare(quadrant.FirstDescendent(leaves[i], quadrant.MaxLevel), last) <= 0
	})
	return lo, hi
}
