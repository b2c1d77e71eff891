package physics

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"go.uber.org/zap"
)

// BodyType selects how the engine integrates a body.
type BodyType int

const (
	BodyDynamic BodyType = iota
	BodyKinematic
	BodyStatic
)

func (t BodyType) String() string {
	switch t {
	case BodyDynamic:
		return "dynamic"
	case BodyKinematic:
		return "kinematic"
	case BodyStatic:
		return "static"
	}
	return fmt.Sprintf("BodyType(%d)", int(t))
}

// ShapeType is the collision geometry attached to a body.
type ShapeType int

const (
	ShapeCircle ShapeType = iota
	ShapeBox
)

// BodySpec describes one body and its single shape.
type BodySpec struct {
	Body     BodyType
	Shape    ShapeType
	Position cp.Vector
	Angle    float64
	Velocity cp.Vector

	Mass   float64
	Radius float64
	Width  float64
	Height float64

	Friction   float64
	Elasticity float64
	// Decorative shapes are visuals only: they never collide and are
	// skipped by PickFilter.
	Decorative bool
}

// Handle pairs the engine objects allocated for one BodySpec.
type Handle struct {
	Body  *cp.Body
	Shape *cp.Shape
}

func (h Handle) Valid() bool {
	return h.Body != nil && h.Shape != nil
}

func (s BodySpec) validate() error {
	if !finite(s.Position.X, s.Position.Y, s.Angle, s.Velocity.X, s.Velocity.Y) {
		return fmt.Errorf("non-finite transform")
	}
	switch s.Shape {
	case ShapeCircle:
		if s.Radius <= 0 {
			return fmt.Errorf("circle radius %v", s.Radius)
		}
	case ShapeBox:
		if s.Width <= 0 || s.Height <= 0 {
			return fmt.Errorf("box size %vx%v", s.Width, s.Height)
		}
	default:
		return fmt.Errorf("unknown shape %d", int(s.Shape))
	}
	if s.Body == BodyDynamic && s.Mass <= 0 {
		return fmt.Errorf("dynamic body mass %v", s.Mass)
	}
	return nil
}

func (s BodySpec) moment() float64 {
	switch s.Shape {
	case ShapeCircle:
		return cp.MomentForCircle(s.Mass, 0, s.Radius, cp.Vector{})
	default:
		return cp.MomentForBox(s.Mass, s.Width, s.Height)
	}
}

// Allocate creates a body and shape for spec and adds both to the space.
func (w *World) Allocate(spec BodySpec) (Handle, error) {
	if w == nil || w.space == nil {
		return Handle{}, fmt.Errorf("allocate: %w", ErrAllocation)
	}
	if err := spec.validate(); err != nil {
		return Handle{}, fmt.Errorf("allocate %s: %v: %w", spec.Body, err, ErrAllocation)
	}
	if w.max > 0 && w.bodies >= w.max {
		w.log.Error("body budget exhausted", zap.Int("max", w.max))
		return Handle{}, fmt.Errorf("allocate %s: %d bodies in use: %w", spec.Body, w.bodies, ErrAllocation)
	}

	var body *cp.Body
	switch spec.Body {
	case BodyDynamic:
		body = cp.NewBody(spec.Mass, spec.moment())
	case BodyKinematic:
		body = cp.NewKinematicBody()
	case BodyStatic:
		body = cp.NewStaticBody()
	default:
		return Handle{}, fmt.Errorf("allocate: unknown body type %d: %w", int(spec.Body), ErrAllocation)
	}
	body.SetPosition(spec.Position)
	body.SetAngle(spec.Angle)
	if spec.Body != BodyStatic {
		body.SetVelocityVector(spec.Velocity)
	}

	var shape *cp.Shape
	switch spec.Shape {
	case ShapeCircle:
		shape = cp.NewCircle(body, spec.Radius, cp.Vector{})
	case ShapeBox:
		shape = cp.NewBox(body, spec.Width, spec.Height, 0)
	}
	shape.SetFriction(spec.Friction)
	shape.SetElasticity(spec.Elasticity)
	if spec.Decorative {
		shape.SetFilter(decorativeFilter)
	} else {
		shape.SetFilter(solidFilter)
	}

	w.space.AddBody(body)
	w.space.AddShape(shape)
	w.bodies++
	return Handle{Body: body, Shape: shape}, nil
}

// Release removes the shape and body of h. Objects the space no longer
// holds are skipped, so releasing twice is harmless.
func (w *World) Release(h Handle) {
	if w == nil || w.space == nil {
		return
	}
	if h.Shape != nil && w.space.ContainsShape(h.Shape) {
		w.space.RemoveShape(h.Shape)
	}
	if h.Body != nil && h.Body != w.space.StaticBody && w.space.ContainsBody(h.Body) {
		w.space.RemoveBody(h.Body)
		w.bodies--
	}
}

// ResizeBox replaces the vertices of a box shape with a width by height
// box centered on its body.
func (w *World) ResizeBox(h Handle, width, height float64) bool {
	if h.Shape == nil || width <= 0 || height <= 0 {
		return false
	}
	poly, ok := h.Shape.Class.(*cp.PolyShape)
	if !ok {
		return false
	}
	hw, hh := width/2, height/2
	poly.SetVertsRaw(4, []cp.Vector{
		{X: hw, Y: -hh},
		{X: hw, Y: hh},
		{X: -hw, Y: hh},
		{X: -hw, Y: -hh},
	})
	return true
}

// Place moves a non-static body to p with rotation angle. Spatial queries
// see the new location after the next Step.
func (w *World) Place(h Handle, p cp.Vector, angle float64) {
	if w == nil || h.Body == nil || h.Body.GetType() == cp.BODY_STATIC {
		return
	}
	h.Body.SetPosition(p)
	h.Body.SetAngle(angle)
}
