package quadrant

// LinearID computes the Morton (z-order) id of q truncated to the given
// level: the bits of X and Y from the root down to that level are
// interleaved, with the Y bit in the odd position.
//
// level <= q.Level is the common case (the id of one of q's ancestors, or
// of q itself), but LinearID only reads the top `level` bits of X and Y, so
// it is well defined for any level <= MaxLevel.
func LinearID(q Quadrant, level uint8) uint64 {
	if level == 0 {
		return 0
	}
	shift := uint(MaxLevel - int(level))
	xb := uint64(q.X) >> shift
	yb := uint64(q.Y) >> shift
	var id uint64
	for i := uint(0); i < uint(level); i++ {
		id |= ((xb >> i) & 1) << (2 * i)
		id |= ((yb >> i) & 1) << (2*i + 1)
	}
	return id
}

// SetMorton is the inverse of LinearID: it returns the quadrant at the given
// level whose Morton id (truncated to that level) is id.
func SetMorton(level uint8, id uint64) Quadrant {
	var xb, yb uint64
	for i := uint(0); i < uint(level); i++ {
		xb |= ((id >> (2 * i)) & 1) << i
		yb |= ((id >> (2*i + 1)) & 1) << i
	}
	shift := uint(MaxLevel - int(level))
	return Quadrant{X: int64(xb) << shift, Y: int64(yb) << shift, Level: level}
}

// ChildID returns the 2-bit position (0..3) of q within its parent: bit 0 is
// q's X-bit at its own level, bit 1 is the Y-bit. The canonical z-order is
// (0,0),(1,0),(0,1),(1,1).
func ChildID(q Quadrant) uint8 {
	if q.Level == 0 {
		return 0
	}
	shift := uint(MaxLevel - int(q.Level))
	bitX := uint8((uint64(q.X) >> shift) & 1)
	bitY := uint8((uint64(q.Y) >> shift) & 1)
	return bitX | (bitY << 1)
}

// cornerToZorder maps the user-facing corner numbering (0,0),(1,0),(1,1),
// (0,1) onto the canonical z-order child ids (0,0),(1,0),(0,1),(1,1).
var cornerToZorder = [4]uint8{0, 1, 3, 2}

// zorderToCorner is the inverse permutation of cornerToZorder.
var zorderToCorner = [4]uint8{0, 1, 3, 2} // the permutation is its own inverse

// CornerToZorder converts a user-facing corner index to a z-order child id.
func CornerToZorder(corner uint8) uint8 { return cornerToZorder[corner&3] }

// ZorderToCorner converts a z-order child id to a user-facing corner index.
func ZorderToCorner(childID uint8) uint8 { return zorderToCorner[childID&3] }
