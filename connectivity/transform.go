package connectivity

import "github.com/datatrails/go-datatrails-quadforest/quadrant"

// FaceTransform returns the quadrant.Transform that maps a coordinate in
// own's frame, expressed relative to face ownFace, into neighbor's frame
// relative to neighborFace.
//
// A face crossing either keeps the tangential axis (both faces on the same
// axis: a normal x-to-x or y-to-y crossing) or rotates it a quarter turn
// (an x-face meeting a y-face, the corner-turn case an L-shaped or similarly
// non-rectangular connectivity produces). The tangential coordinate is
// additionally mirrored when the shared edge's vertex order disagrees
// between the two trees (reversed).
func FaceTransform(ownFace, neighborFace Face, reversed bool) quadrant.Transform {
	var t quadrant.Transform
	if ownFace.Axis() != neighborFace.Axis() {
		t |= 1
	}
	if reversed {
		if ownFace.Axis() == 0 {
			t |= 4
		} else {
			t |= 2
		}
	}
	return t
}

// TransformToNeighbor maps q, expressed in tree's own coordinate frame, into
// the neighbor tree's frame across face f, returning the neighbor tree id
// and the transformed quadrant. boundary is true when f has no neighbor.
func (c *Connectivity) TransformToNeighbor(tree int, f Face, q quadrant.Quadrant) (neighborTree int, out quadrant.Quadrant, boundary bool) {
	nt, nf, reversed, boundary := c.FaceNeighbor(tree, f)
	if boundary {
		return tree, q, true
	}
	t := FaceTransform(f, nf, reversed)
	return nt, quadrant.Apply(q, t), false
}
