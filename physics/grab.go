package physics

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
)

// Grab drags a body with a pivot joint to a kinematic mouse body, the way
// the Chipmunk demos move objects under the pointer.
type Grab struct {
	mouse *cp.Body
	joint *cp.Constraint
}

// Grab attaches a mouse joint to body at the world point at.
func (w *World) Grab(body *cp.Body, at cp.Vector, maxForce float64) (*Grab, error) {
	if w == nil || w.space == nil || body == nil || !w.space.ContainsBody(body) {
		return nil, fmt.Errorf("grab: %w", ErrAllocation)
	}
	mouse := cp.NewKinematicBody()
	mouse.SetPosition(at)
	joint := cp.NewPivotJoint2(mouse, body, cp.Vector{}, body.WorldToLocal(at))
	joint.SetMaxForce(maxForce)
	joint.SetErrorBias(math.Pow(1.0-0.15, 60.0))
	w.space.AddConstraint(joint)
	return &Grab{mouse: mouse, joint: joint}, nil
}

// Move drives the mouse body towards p over dt seconds.
func (g *Grab) Move(p cp.Vector, dt float64) {
	if g == nil || g.mouse == nil {
		return
	}
	if dt > 0 {
		g.mouse.SetVelocityVector(p.Sub(g.mouse.Position()).Mult(1 / dt))
	}
	g.mouse.SetPosition(p)
}

// Ungrab removes the joint. It is safe to call more than once.
func (w *World) Ungrab(g *Grab) {
	if g == nil {
		return
	}
	w.RemoveConstraint(g.joint)
	g.joint = nil
	g.mouse = nil
}
