package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
	"go.uber.org/zap"
)

// ErrAllocation reports that the engine could not provide a body, shape or
// constraint for the request.
var ErrAllocation = errors.New("physics: allocation failed")

const (
	// CategorySolid is carried by every collidable shape.
	CategorySolid uint = 1 << iota
	// CategoryDecorative marks link visuals. They collide with nothing.
	CategoryDecorative
	// CategoryQuery is only ever set on query filters so decorative shapes
	// can still be reached by an unrestricted query.
	CategoryQuery
)

var (
	solidFilter      = cp.ShapeFilter{Group: cp.NO_GROUP, Categories: CategorySolid, Mask: cp.ALL_CATEGORIES}
	decorativeFilter = cp.ShapeFilter{Group: cp.NO_GROUP, Categories: CategoryDecorative, Mask: CategoryQuery}

	// PickFilter matches everything except decorative shapes.
	PickFilter = cp.ShapeFilter{Group: cp.NO_GROUP, Categories: CategoryQuery, Mask: cp.ALL_CATEGORIES &^ CategoryDecorative}
	// AllFilter matches every shape in the space.
	AllFilter = cp.ShapeFilter{Group: cp.NO_GROUP, Categories: CategoryQuery, Mask: cp.ALL_CATEGORIES}
)

// Options configures a World.
type Options struct {
	Iterations uint
	// Substeps is the fixed number of engine steps per Step call.
	Substeps int
	// MaxBodies caps allocated bodies. Zero means unlimited.
	MaxBodies int
	Logger    *zap.Logger
}

// World owns the Chipmunk space and counts what was allocated in it.
type World struct {
	space    *cp.Space
	substeps int
	max      int
	bodies   int
	log      *zap.Logger
}

// New creates an empty space.
func New(opts Options) *World {
	space := cp.NewSpace()
	if opts.Iterations > 0 {
		space.Iterations = opts.Iterations
	} else {
		space.Iterations = 20
	}
	substeps := opts.Substeps
	if substeps <= 0 {
		substeps = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &World{
		space:    space,
		substeps: substeps,
		max:      opts.MaxBodies,
		log:      logger.Named("physics"),
	}
}

// Space returns the underlying Chipmunk space.
func (w *World) Space() *cp.Space {
	if w == nil {
		return nil
	}
	return w.space
}

// StaticBody is the space's fixed anchor body.
func (w *World) StaticBody() *cp.Body {
	if w == nil || w.space == nil {
		return nil
	}
	return w.space.StaticBody
}

// Bodies returns the number of bodies allocated through Allocate and not
// yet released.
func (w *World) Bodies() int {
	if w == nil {
		return 0
	}
	return w.bodies
}

// Substeps returns the fixed sub-step count.
func (w *World) Substeps() int {
	if w == nil {
		return 0
	}
	return w.substeps
}

// Apply switches gravity and damping immediately.
func (w *World) Apply(p Preset) {
	if w == nil || w.space == nil {
		return
	}
	w.space.SetGravity(p.Gravity)
	w.space.SetDamping(p.Damping)
}

// Step advances the space by dt using the fixed sub-step count.
func (w *World) Step(dt float64) {
	if w == nil || w.space == nil || dt <= 0 {
		return
	}
	h := dt / float64(w.substeps)
	for i := 0; i < w.substeps; i++ {
		w.space.Step(h)
	}
}

// PointQuery returns the shape nearest to p within radius that passes filter.
func (w *World) PointQuery(p cp.Vector, radius float64, filter cp.ShapeFilter) (*cp.Shape, bool) {
	if w == nil || w.space == nil {
		return nil, false
	}
	info := w.space.PointQueryNearest(p, radius, filter)
	if info == nil || info.Shape == nil {
		return nil, false
	}
	return info.Shape, true
}

// Connect builds a constraint between a and b and adds it to the space.
// Both bodies must already be in the space, or be the static anchor body.
func (w *World) Connect(a, b *cp.Body, build func(a, b *cp.Body) *cp.Constraint) (*cp.Constraint, error) {
	if w == nil || w.space == nil || build == nil {
		return nil, fmt.Errorf("connect: %w", ErrAllocation)
	}
	for _, body := range []*cp.Body{a, b} {
		if body == nil || (body != w.space.StaticBody && !w.space.ContainsBody(body)) {
			return nil, fmt.Errorf("connect: body not in space: %w", ErrAllocation)
		}
	}
	c := build(a, b)
	if c == nil {
		return nil, fmt.Errorf("connect: %w", ErrAllocation)
	}
	w.space.AddConstraint(c)
	return c, nil
}

// RemoveConstraint removes c if the space still holds it.
func (w *World) RemoveConstraint(c *cp.Constraint) bool {
	if w == nil || w.space == nil || c == nil || !w.space.ContainsConstraint(c) {
		return false
	}
	w.space.RemoveConstraint(c)
	return true
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
