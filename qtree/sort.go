package qtree

import (
	"sort"

	"github.com/datatrails/go-datatrails-quadforest/quadrant"
)

// sortQuadrants sorts s in place under quadrant.Compare. It is not a
// stable sort: the compare order has no ties among distinct quadrants once
// level is used as the final tie-break, so stability is never observable.
func sortQuadrants(s []quadrant.Quadrant) {
	sort.Slice(s, func(i, j int) bool {
		return quadrant.Compare(s[i], s[j]) < 0
	})
}
