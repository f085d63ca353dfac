package quadrant

// Transform identifies one of the eight symmetries of the square: bit 0
// selects an X/Y axis swap, bit 1 an X-axis flip, bit 2 a Y-axis flip
// (applied in that order). These are used when crossing a tree face to a
// rotated/mirrored neighbor's coordinate frame.
type Transform uint8

const (
	TransformIdentity Transform = 0
	numTransforms               = 8
)

// Apply maps q into the coordinate frame produced by transform t, keeping
// q's level and payload unchanged. The result is only meaningful when the
// two frames being related share the same root size, which is always the
// case here since Root is fixed module-wide.
func Apply(q Quadrant, t Transform) Quadrant {
	l := SideLength(q.Level)
	x, y := q.X, q.Y
	if t&1 != 0 {
		x, y = y, x
	}
	if t&2 != 0 {
		x = Root - l - x
	}
	if t&4 != 0 {
		y = Root - l - y
	}
	return Quadrant{X: x, Y: y, Level: q.Level, Data: q.Data}
}

// Inverse returns the transform that undoes t, i.e.
// Apply(Apply(q, t), Inverse(t)) == q.
//
// Without an axis swap the flips commute and each transform is its own
// inverse. With an axis swap, undoing the swap also exchanges which flip
// bit acts on which axis, so the X- and Y-flip bits trade places.
func Inverse(t Transform) Transform {
	swap := t & 1
	if swap == 0 {
		return t
	}
	fx := (t >> 1) & 1
	fy := (t >> 2) & 1
	return swap | (fy << 1) | (fx << 2)
}

// AllTransforms enumerates the eight symmetries in a stable order, for
// tests that need to range over the whole group.
func AllTransforms() [numTransforms]Transform {
	var out [numTransforms]Transform
	for i := range out {
		out[i] = Transform(i)
	}
	return out
}
