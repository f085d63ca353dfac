package qtree

import "github.com/datatrails/go-datatrails-quadforest/quadrant"

// Linearize does a two-cursor pass over t's (already sorted) leaves,
// dropping any element found to be equal to or an ancestor of its
// successor, and releasing its payload back to the arena. Because the
// input is sorted, an ancestor can only ever precede its descendant, never
// the reverse.
func Linearize(t *Tree) {
	if len(t.Leaves) == 0 {
		return
	}
	write := 0
	for read := 1; read < len(t.Leaves); read++ {
		cur := t.Leaves[write]
		next := t.Leaves[read]
		if quadrant.IsEqual(cur, next) || quadrant.IsAncestor(cur, next) {
			t.releasePayload(cur)
			t.Leaves[write] = next
			continue
		}
		write++
		t.Leaves[write] = next
	}
	t.Leaves = t.Leaves[:write+1]
	t.RecomputeCounters()
}

// Sort performs an in-place sort of t.Leaves under quadrant.Compare. It is
// the caller's job to call Linearize afterwards if duplicates/ancestors may
// be present: linearize(sort(S)) is linear for any multiset S of
// extended-valid quadrants.
func Sort(t *Tree) {
	sortQuadrants(t.Leaves)
}
