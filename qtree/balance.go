package qtree

import "github.com/datatrails/go-datatrails-quadforest/quadrant"

// Mode selects which adjacency 2:1 balancing enforces.
type Mode uint8

const (
	// ModeComplete disables both face and corner balancing: only siblings
	// and the parent are enumerated, so CompleteSubtree fills gaps without
	// forcing any 2:1 relationship.
	ModeComplete Mode = iota
	// ModeFace enforces 2:1 across shared faces only.
	ModeFace
	// ModeFaceCorner enforces 2:1 across shared faces and corners.
	ModeFaceCorner
)

// BalanceStats counts candidate rejections, kept observable for testing.
type BalanceStats struct {
	OutsideRoot int
	OutsideTree int
}

type probeKind uint8

const (
	probeUser probeKind = iota
	probeParent
)

// BalanceSubtree takes an almost-sorted tree, possibly containing extended
// leaves borrowed from neighbor trees, and inserts the minimum set of
// quadrants needed so every inside leaf is within one level of any
// face/corner neighbor, then linearizes. Only inside leaves survive in t
// afterwards.
func BalanceSubtree(t *Tree, mode Mode) BalanceStats {
	return balance(t, mode, true)
}

// CompleteSubtree runs the same bottom-up hash-insertion machinery as
// BalanceSubtree with face/corner enforcement disabled: only siblings and
// parents are enumerated, so the result is the minimal linear tree
// completing the convex Morton hull of the input.
func CompleteSubtree(t *Tree) BalanceStats {
	return balance(t, ModeComplete, false)
}

func balance(t *Tree, mode Mode, enforceBalance bool) BalanceStats {
	var stats BalanceStats

	invariant(IsAlmostSorted(t.Leaves), "balance precondition: tree must be almost-sorted")

	original := append([]quadrant.Quadrant(nil), t.Leaves...)

	var insideFirst, insideLast quadrant.Quadrant
	haveInside := false
	inputSorted := append([]quadrant.Quadrant(nil), original...)
	sortQuadrants(inputSorted)
	for _, q := range inputSorted {
		if q.IsExtended() {
			continue
		}
		if !haveInside {
			insideFirst = q
			haveInside = true
		}
		insideLast = q
	}
	if !haveInside {
		return stats
	}
	treeFirst := quadrant.FirstDescendent(insideFirst, quadrant.MaxLevel)
	treeLast := quadrant.LastDescendent(insideLast, quadrant.MaxLevel)

	maxLevel := t.MaxLevel
	seedByLevel := make([][]quadrant.Quadrant, maxLevel+1)
	for _, q := range original {
		if isCornerExtended(q) && (!enforceBalance || mode != ModeFaceCorner) {
			// A corner-extended leaf is only meaningful input when corner
			// balancing is enabled; otherwise it contributes nothing.
			continue
		}
		seedByLevel[q.Level] = append(seedByLevel[q.Level], q)
	}

	hashes := make([]map[quadrant.Key]probeKind, maxLevel+1)
	outLists := make([][]quadrant.Quadrant, maxLevel+1)
	for l := range hashes {
		hashes[l] = make(map[quadrant.Key]probeKind)
	}

	for L := maxLevel; L >= 1; L-- {
		levelQuads := append(append([]quadrant.Quadrant{}, seedByLevel[L]...), outLists[L]...)
		sortQuadrants(levelQuads)

		i := 0
		for i < len(levelQuads) {
			skipSiblings := false
			if i+3 < len(levelQuads) &&
				quadrant.IsFamily(levelQuads[i], levelQuads[i+1], levelQuads[i+2], levelQuads[i+3]) {
				skipSiblings = true
			}
			q := levelQuads[i]
			enumerateCandidates(q, mode, enforceBalance, skipSiblings, treeFirst, treeLast,
				hashes, outLists, &stats)
			if skipSiblings {
				i += 4
			} else {
				i++
			}
		}
	}

	final := make([]quadrant.Quadrant, 0, len(original))
	for _, q := range original {
		if q.IsExtended() {
			t.releasePayload(q)
			continue
		}
		final = append(final, q)
	}
	for l := 0; l <= maxLevel; l++ {
		for _, q := range outLists[l] {
			if q.IsExtended() {
				continue
			}
			if q.Data.Kind == quadrant.PayloadNone {
				q.Data = t.NewOwnedPayload()
			}
			final = append(final, q)
		}
	}

	t.Leaves = final
	sortQuadrants(t.Leaves)
	Linearize(t)
	return stats
}

func isCornerExtended(q quadrant.Quadrant) bool {
	xOut := q.X < 0 || q.X >= quadrant.Root
	yOut := q.Y < 0 || q.Y >= quadrant.Root
	return xOut && yOut
}

// enumerateCandidates generates, for one quadrant at a given level, the
// candidate neighbor/parent quadrants that balancing must insert if absent.
// The reference algorithm's "probe the parent first and skip further
// indirect-neighbor probes if it is already present" early-break is
// omitted here: every candidate is unconditionally looked up in the
// level's hash set, which absorbs duplicates identically, so the two are
// behaviorally equivalent modulo probe count (see DESIGN.md).
func enumerateCandidates(
	q quadrant.Quadrant,
	mode Mode,
	enforceBalance bool,
	skipSiblings bool,
	treeFirst, treeLast quadrant.Quadrant,
	hashes []map[quadrant.Key]probeKind,
	outLists [][]quadrant.Quadrant,
	stats *BalanceStats,
) {
	if q.Level == 0 {
		return
	}
	extended := q.IsExtended()

	type candidate struct {
		q   quadrant.Quadrant
		tag probeKind
	}
	var candidates []candidate

	if !skipSiblings && !extended {
		for id := uint8(0); id < 4; id++ {
			sib := quadrant.Sibling(q, id)
			if quadrant.IsEqual(sib, q) {
				continue
			}
			candidates = append(candidates, candidate{sib, probeUser})
		}
	}

	parent := quadrant.Parent(q)
	candidates = append(candidates, candidate{parent, probeParent})

	if enforceBalance {
		for _, n := range indirectNeighbors(parent, mode) {
			candidates = append(candidates, candidate{n, probeUser})
		}
	}

	for _, c := range candidates {
		cq := c.q

		if extended {
			if isCornerExtended(cq) {
				stats.OutsideRoot++
				continue
			}
		} else if cq.IsExtended() {
			stats.OutsideRoot++
			continue
		}

		if !cq.IsExtended() {
			cFirst := quadrant.FirstDescendent(cq, quadrant.MaxLevel)
			cLast := quadrant.LastDescendent(cq, quadrant.MaxLevel)
			if quadrant.Compare(cLast, treeFirst) < 0 || quadrant.Compare(cFirst, treeLast) > 0 {
				stats.OutsideTree++
				continue
			}
		}

		key := cq.AsKey()
		if _, ok := hashes[cq.Level][key]; ok {
			continue
		}
		hashes[cq.Level][key] = c.tag
		outLists[cq.Level] = append(outLists[cq.Level], cq)
	}
}

// indirectNeighborOffsets gives, in units of the parent's own side length,
// the 3 same-size neighbors of a parent quadrant that must also be
// registered so that balancing q does not leave the parent itself more
// than one level away from a same-size neighbor two cells over. Indexed
// [pid][neighbor][xy], where pid is the parent's own child id (its
// position within the grandparent, not q's position within the parent).
// Ported from p4est_algorithms.c's indirect_neighbors table.
var indirectNeighborOffsets = [4][3][2]int64{
	{{-1, -1}, {1, -1}, {-1, 1}},
	{{0, -1}, {2, -1}, {1, 0}},
	{{-1, 0}, {-2, 1}, {0, 1}},
	{{1, -1}, {-1, 1}, {1, 1}},
}

// cornersOmitted[pid] is the index into indirectNeighborOffsets[pid] that
// is only needed for corner balancing, not face balancing. Ported from
// p4est_algorithms.c's corners_omitted table.
var cornersOmitted = [4]int{0, 1, 1, 2}

// indirectNeighbors returns parent's relevant indirect neighbors for the
// requested mode: all 3 for ModeFaceCorner, all but the corner-only entry
// for ModeFace, none for ModeComplete.
func indirectNeighbors(parent quadrant.Quadrant, mode Mode) []quadrant.Quadrant {
	if mode == ModeComplete {
		return nil
	}
	pid := quadrant.ChildID(parent)
	hp := quadrant.SideLength(parent.Level)
	offsets := indirectNeighborOffsets[pid]
	omit := cornersOmitted[pid]

	out := make([]quadrant.Quadrant, 0, 3)
	for i, off := range offsets {
		if mode == ModeFace && i == omit {
			continue
		}
		out = append(out, quadrant.Quadrant{
			X:     parent.X + off[0]*hp,
			Y:     parent.Y + off[1]*hp,
			Level: parent.Level,
		})
	}
	return out
}
