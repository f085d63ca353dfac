// Package quadrant implements the pure coordinate/level algebra for a single
// quadrant (an axis-aligned dyadic square addressed by integer coordinates
// and a refinement level). None of the functions in this package allocate or
// touch a tree; they are the leaf-level math everything else in this module
// is built from, in the same spirit as the mmr package's bit arithmetic.
package quadrant

// MaxLevel is the finest refinement level a quadrant can have. Level 0 is
// the root of a tree.
const MaxLevel = 29

// Root is the side length, in the finest-level integer coordinate space, of
// a level-0 root quadrant.
const Root = int64(1) << MaxLevel

// PayloadKind distinguishes the two mutually exclusive interpretations of a
// quadrant's payload slot.
type PayloadKind uint8

const (
	PayloadNone PayloadKind = iota
	// PayloadOwned marks a quadrant carrying caller-owned leaf data.
	PayloadOwned
	// PayloadPiggy marks a quadrant in transit between trees/processes,
	// carrying a (which_tree, which_process) routing pair instead of user
	// data.
	PayloadPiggy
)

// Piggy is the (which_tree, which_process) pair a quadrant carries while it
// is being moved between trees or ranks (repartition, ghost exchange).
type Piggy struct {
	WhichTree    int32
	WhichProcess int32
}

// Payload is a sum type: a quadrant either owns user data or carries piggy
// routing information, never both. OwnedIdx is the owning arena's stable
// slot index for Owned; Owned itself is only a convenience alias into that
// slot, never an independently allocated slice.
type Payload struct {
	Kind     PayloadKind
	OwnedIdx int32
	Owned    []byte
	Piggy    Piggy
}

// Quadrant is the atomic leaf of a tree. X and Y are signed so that
// *extended* quadrants (transiently used by balancing and ghost exchange)
// can carry coordinates outside [0, Root) without wraparound.
type Quadrant struct {
	X, Y  int64
	Level uint8
	Data  Payload
}

// Key is the canonical, comparable identity of a quadrant, used as a map key
// by the balancing hash sets.
type Key struct {
	X, Y  int64
	Level uint8
}

// AsKey returns q's canonical map key.
func (q Quadrant) AsKey() Key { return Key{q.X, q.Y, q.Level} }

// SideLength returns H(level), the side length of a quadrant at the given
// level in finest-level integer units.
func SideLength(level uint8) int64 {
	return int64(1) << uint(MaxLevel-int(level))
}

// IsExtended reports whether q's coordinates lie outside the root tree's
// valid range [0, Root); such quadrants are virtual images of a
// neighbor-tree quadrant expressed in the current tree's frame.
func (q Quadrant) IsExtended() bool {
	return q.X < 0 || q.Y < 0 || q.X >= Root || q.Y >= Root
}

// IsValid reports the basic structural invariant every quadrant (extended or
// not) must satisfy: coordinates aligned to the quadrant's own side length,
// and a level within range.
func (q Quadrant) IsValid() bool {
	if q.Level > MaxLevel {
		return false
	}
	sz := SideLength(q.Level)
	return q.X%sz == 0 && q.Y%sz == 0
}

// AncestorAt returns the ancestor of q at the given (coarser or equal)
// level, obtained by clearing the low bits of X and Y below that level's
// side length. If level >= q.Level, q itself is returned.
func AncestorAt(q Quadrant, level uint8) Quadrant {
	if level >= q.Level {
		return q
	}
	sz := SideLength(level)
	mask := ^(sz - 1)
	return Quadrant{X: q.X & mask, Y: q.Y & mask, Level: level}
}
