package sandbox

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/careenium/ecs"
)

// Camera maps between screen and world coordinates. An active pan wins
// over following an entity.
type Camera struct {
	Offset   cp.Vector
	Viewport cp.Vector

	follow  ecs.Entity
	panning bool
}

func NewCamera(width, height float64) *Camera {
	return &Camera{Viewport: cp.Vector{X: width, Y: height}}
}

func (c *Camera) BeginPan() {
	if c == nil {
		return
	}
	c.panning = true
}

// Pan moves the view by delta world units while a pan is active.
func (c *Camera) Pan(delta cp.Vector) {
	if c == nil || !c.panning {
		return
	}
	c.Offset = c.Offset.Add(delta)
}

func (c *Camera) EndPan() {
	if c == nil {
		return
	}
	c.panning = false
}

func (c *Camera) Panning() bool {
	return c != nil && c.panning
}

func (c *Camera) Follow(id ecs.Entity) {
	if c == nil {
		return
	}
	c.follow = id
}

func (c *Camera) ClearFollow() {
	if c == nil {
		return
	}
	c.follow = ecs.Nil
}

// Following returns the followed entity, if any.
func (c *Camera) Following() (ecs.Entity, bool) {
	if c == nil || c.follow == ecs.Nil {
		return ecs.Nil, false
	}
	return c.follow, true
}

// Update centers the view on the followed entity unless a pan is active.
// A followed entity that no longer exists clears the follow.
func (c *Camera) Update(reg *Registry) {
	if c == nil || c.panning || c.follow == ecs.Nil {
		return
	}
	e, ok := reg.Lookup(c.follow)
	if !ok {
		c.follow = ecs.Nil
		return
	}
	c.Offset = e.Position.Sub(c.Viewport.Mult(0.5))
}

func (c *Camera) ScreenToWorld(p cp.Vector) cp.Vector {
	if c == nil {
		return p
	}
	return p.Add(c.Offset)
}

func (c *Camera) WorldToScreen(p cp.Vector) cp.Vector {
	if c == nil {
		return p
	}
	return p.Sub(c.Offset)
}
