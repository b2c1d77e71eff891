package common

import (
	"math"

	"github.com/jakecoffman/cp"
)

const (
	// Grid is the sandbox unit length in pixels.
	Grid = 32.0
	// ThrowFactor scales the slingshot vector of a create gesture into a velocity.
	ThrowFactor = 4.0
)

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Snap rounds v to the nearest multiple of grid. A non-positive grid
// returns v unchanged.
func Snap(v, grid float64) float64 {
	if grid <= 0 {
		return v
	}
	return math.Floor((v+grid/2)/grid) * grid
}

func SnapVector(v cp.Vector, grid float64) cp.Vector {
	return cp.Vector{X: Snap(v.X, grid), Y: Snap(v.Y, grid)}
}

// AxisLock constrains p to the horizontal or vertical line through anchor,
// whichever is closer to the pointer.
func AxisLock(anchor, p cp.Vector) cp.Vector {
	if math.Abs(p.X-anchor.X) < math.Abs(p.Y-anchor.Y) {
		return cp.Vector{X: anchor.X, Y: p.Y}
	}
	return cp.Vector{X: p.X, Y: anchor.Y}
}

// PlaceLink returns the placement of a straight link spanning a and b:
// its midpoint, its half length and its rotation in radians.
// Joint links and static line segments are all sized with this rule,
// including the collision box of the link body.
func PlaceLink(a, b cp.Vector) (mid cp.Vector, halfLength, angle float64) {
	d := b.Sub(a)
	mid = cp.Vector{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
	halfLength = d.Length() / 2
	angle = math.Atan2(d.Y, d.X)
	return mid, halfLength, angle
}

// Sign returns -1, 0 or 1.
func Sign(v float64) float64 {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
