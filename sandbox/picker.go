package sandbox

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/careenium/ecs"
	"github.com/milk9111/careenium/physics"
)

// Picker resolves world points to entities.
type Picker struct {
	reg    *Registry
	phys   *physics.World
	Radius float64
}

func NewPicker(reg *Registry, phys *physics.World, radius float64) *Picker {
	return &Picker{reg: reg, phys: phys, Radius: radius}
}

// QueryPoint returns the entity nearest to pos within radius whose shape
// passes filter. An empty result is (ecs.Nil, false).
func (p *Picker) QueryPoint(pos cp.Vector, radius float64, filter cp.ShapeFilter) (ecs.Entity, bool) {
	if p == nil {
		return ecs.Nil, false
	}
	shape, ok := p.phys.PointQuery(pos, radius, filter)
	if !ok {
		return ecs.Nil, false
	}
	return p.reg.EntityForShape(shape)
}

// Pick queries with the default radius, skipping decorative shapes.
func (p *Picker) Pick(pos cp.Vector) (ecs.Entity, bool) {
	if p == nil {
		return ecs.Nil, false
	}
	return p.QueryPoint(pos, p.Radius, physics.PickFilter)
}
