package quadrant

import "math/bits"

// compareBias is added to a signed coordinate before comparison so that
// extended (negative or >=Root) quadrants sort correctly against inside
// quadrants without the XOR trick below seeing a sign flip. It is large
// enough to keep every coordinate this module ever produces non-negative;
// the balancing/ghost algorithms only ever extend a quadrant by a few
// multiples of Root beyond the valid range.
const compareBias = int64(1) << 34

func biasedU64(v int64) uint64 {
	return uint64(v + compareBias)
}

// IsEqual reports whether a and b are the same quadrant.
func IsEqual(a, b Quadrant) bool {
	return a.X == b.X && a.Y == b.Y && a.Level == b.Level
}

// Compare implements a total order over quadrants: whichever of the biased
// X/Y XORs has the higher top bit decides which coordinate to compare by,
// with Y deciding when both top bits are equal (the Y bit is the more
// significant one in the Morton interleave); ties (equal X and Y) are
// broken by level, with the coarser quadrant sorting before the finer one
// that shares its low corner.
func Compare(a, b Quadrant) int {
	ax, ay := biasedU64(a.X), biasedU64(a.Y)
	bx, by := biasedU64(b.X), biasedU64(b.Y)
	xorX := ax ^ bx
	xorY := ay ^ by

	if xorX == 0 && xorY == 0 {
		if a.Level == b.Level {
			return 0
		}
		if a.Level < b.Level {
			return -1
		}
		return 1
	}

	if bits.Len64(xorY) >= bits.Len64(xorX) {
		if ay < by {
			return -1
		}
		return 1
	}
	if ax < bx {
		return -1
	}
	return 1
}

// Less reports whether a sorts strictly before b.
func Less(a, b Quadrant) bool { return Compare(a, b) < 0 }
