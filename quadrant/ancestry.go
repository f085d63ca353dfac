package quadrant

import "math/bits"

// Parent returns the level-(q.Level-1) ancestor of q. It is the caller's
// responsibility to ensure q.Level > 0.
func Parent(q Quadrant) Quadrant {
	h := SideLength(q.Level)
	return Quadrant{X: q.X &^ h, Y: q.Y &^ h, Level: q.Level - 1}
}

// Sibling returns the quadrant at q's level and q's parent that occupies
// child position id (0..3).
func Sibling(q Quadrant, id uint8) Quadrant {
	h := SideLength(q.Level)
	x := q.X &^ h
	y := q.Y &^ h
	if id&1 != 0 {
		x |= h
	}
	if id&2 != 0 {
		y |= h
	}
	return Quadrant{X: x, Y: y, Level: q.Level}
}

// Children returns q's four children in canonical z-order.
func Children(q Quadrant) [4]Quadrant {
	childLevel := q.Level + 1
	h := SideLength(childLevel)
	var out [4]Quadrant
	for id := uint8(0); id < 4; id++ {
		x, y := q.X, q.Y
		if id&1 != 0 {
			x |= h
		}
		if id&2 != 0 {
			y |= h
		}
		out[id] = Quadrant{X: x, Y: y, Level: childLevel}
	}
	return out
}

// FirstDescendent returns the Morton-least descendant of q at the given
// (finer or equal) level.
func FirstDescendent(q Quadrant, level uint8) Quadrant {
	return Quadrant{X: q.X, Y: q.Y, Level: level}
}

// LastDescendent returns the Morton-greatest descendant of q at the given
// (finer or equal) level.
func LastDescendent(q Quadrant, level uint8) Quadrant {
	delta := SideLength(q.Level) - SideLength(level)
	return Quadrant{X: q.X + delta, Y: q.Y + delta, Level: level}
}

// IsSibling reports whether a and b are distinct children of the same
// parent.
func IsSibling(a, b Quadrant) bool {
	if a.Level == 0 || a.Level != b.Level {
		return false
	}
	if IsEqual(a, b) {
		return false
	}
	return IsEqual(Parent(a), Parent(b))
}

// isSiblingSlow is the reference implementation used only by property
// tests: it materializes the parent's full family and checks membership,
// rather than comparing parents directly.
func isSiblingSlow(a, b Quadrant) bool {
	if a.Level == 0 || a.Level != b.Level {
		return false
	}
	if IsEqual(a, b) {
		return false
	}
	fam := Children(Parent(a))
	found := false
	for _, c := range fam {
		if IsEqual(c, b) {
			found = true
		}
	}
	return found
}

// IsParent reports whether a is the direct parent of b.
func IsParent(a, b Quadrant) bool {
	return b.Level > 0 && a.Level == b.Level-1 && IsEqual(a, Parent(b))
}

// IsAncestor reports whether a strictly contains b (a.Level < b.Level and
// b lies within a's footprint).
func IsAncestor(a, b Quadrant) bool {
	if a.Level >= b.Level {
		return false
	}
	sz := SideLength(a.Level)
	mask := ^(sz - 1)
	return (b.X&mask) == a.X && (b.Y&mask) == a.Y
}

// isAncestorSlow is the reference implementation, walking up from b one
// level at a time instead of masking directly.
func isAncestorSlow(a, b Quadrant) bool {
	if a.Level >= b.Level {
		return false
	}
	cur := b
	for cur.Level > a.Level {
		cur = Parent(cur)
	}
	return IsEqual(cur, a)
}

// IsFamily reports whether q0..q3 are the four children of a common parent,
// listed in canonical z-order.
func IsFamily(q0, q1, q2, q3 Quadrant) bool {
	if q0.Level == 0 {
		return false
	}
	if q0.Level != q1.Level || q0.Level != q2.Level || q0.Level != q3.Level {
		return false
	}
	fam := Children(Parent(q0))
	return IsEqual(fam[0], q0) && IsEqual(fam[1], q1) && IsEqual(fam[2], q2) && IsEqual(fam[3], q3)
}

// IsNext reports whether b is a's immediate Morton successor: the finest
// leaf covered by a (at MaxLevel) is followed, with no gap, by the finest
// leaf covered by b.
func IsNext(a, b Quadrant) bool {
	aLast := LinearID(LastDescendent(a, MaxLevel), MaxLevel)
	bFirst := LinearID(FirstDescendent(b, MaxLevel), MaxLevel)
	return bFirst == aLast+1
}

// isNextSlow is the reference implementation: it walks the finest-level
// Morton id one step at a time and derives the resulting coordinate,
// instead of comparing linear ids directly.
func isNextSlow(a, b Quadrant) bool {
	last := LastDescendent(a, MaxLevel)
	id := LinearID(last, MaxLevel)
	if id == ^uint64(0) {
		return false
	}
	succ := SetMorton(MaxLevel, id+1)
	first := FirstDescendent(b, MaxLevel)
	return IsEqual(succ, first)
}

// NearestCommonAncestor returns the deepest quadrant containing both a and
// b, derived from the top set bit of (a.X^b.X)|(a.Y^b.Y).
func NearestCommonAncestor(a, b Quadrant) Quadrant {
	minLevel := a.Level
	if b.Level < minLevel {
		minLevel = b.Level
	}

	xor := uint64(a.X^b.X) | uint64(a.Y^b.Y)
	var level int
	if xor == 0 {
		level = int(minLevel)
	} else {
		maxBit := bits.Len64(xor)
		level = MaxLevel - maxBit
	}
	if level > int(minLevel) {
		level = int(minLevel)
	}
	if level < 0 {
		level = 0
	}
	return AncestorAt(a, uint8(level))
}

// nearestCommonAncestorSlow is the reference implementation: it walks both
// quadrants up towards the root in lock-step until they coincide.
func nearestCommonAncestorSlow(a, b Quadrant) Quadrant {
	x, y := a, b
	for x.Level > y.Level {
		x = Parent(x)
	}
	for y.Level > x.Level {
		y = Parent(y)
	}
	for !(x.X == y.X && x.Y == y.Y) && x.Level > 0 {
		x = Parent(x)
		y = Parent(y)
	}
	return x
}
