package qtree

import "github.com/datatrails/go-datatrails-quadforest/quadrant"

// CompleteRegion appends to out the minimal linear sequence of leaves whose
// union of point-sets equals the open interval (q1, q2), with the endpoints
// included per includeQ1/includeQ2, given q1 < q2.
//
// The traversal is an explicit stack, not language recursion: children are
// pushed in reverse z-order so that popping always yields the next quadrant
// in Morton order, which keeps the emitted sequence sorted by construction.
func CompleteRegion(q1, q2 quadrant.Quadrant, includeQ1, includeQ2 bool, out *Tree) {
	if includeQ1 {
		out.Append(q1)
	}
	if quadrant.Compare(q1, q2) < 0 {
		nca := quadrant.NearestCommonAncestor(q1, q2)
		work := pushChildrenReversed(nil, nca)
		for len(work) > 0 {
			n := len(work) - 1
			w := work[n]
			work = work[:n]

			switch {
			case quadrant.Less(q1, w) && quadrant.Less(w, q2) && !quadrant.IsAncestor(w, q2):
				out.Append(w)
			case quadrant.IsAncestor(w, q1) || quadrant.IsAncestor(w, q2):
				work = pushChildrenReversed(work, w)
			default:
				// discard: outside (q1, q2) and not on the path to either endpoint
			}
		}
	}
	if includeQ2 {
		out.Append(q2)
	}
}

func pushChildrenReversed(work []quadrant.Quadrant, parent quadrant.Quadrant) []quadrant.Quadrant {
	ch := quadrant.Children(parent)
	for i := len(ch) - 1; i >= 0; i-- {
		work = append(work, ch[i])
	}
	return work
}
