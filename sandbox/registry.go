package sandbox

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/careenium/common"
	"github.com/milk9111/careenium/ecs"
	"github.com/milk9111/careenium/physics"
	"github.com/milk9111/careenium/prefabs"
	"go.uber.org/zap"
)

type record struct {
	Entity
	handle physics.Handle
}

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	Seed          int64
	DefaultTarget Kind
	Events        *ecs.EventQueue
	Logger        *zap.Logger
}

// Registry owns every entity and maps engine shapes back to entity ids.
type Registry struct {
	phys    *physics.World
	kinds   prefabs.KindsSpec
	store   ecs.Store
	records ecs.SparseSet[*record]
	byShape map[*cp.Shape]ecs.Entity
	rng     *rand.Rand
	target  Kind
	events  *ecs.EventQueue
	log     *zap.Logger
}

func NewRegistry(phys *physics.World, kinds prefabs.KindsSpec, opts RegistryOptions) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	target := opts.DefaultTarget
	if !emittable(target) {
		target = KindCircle
	}
	return &Registry{
		phys:    phys,
		kinds:   kinds,
		byShape: make(map[*cp.Shape]ecs.Entity),
		rng:     rand.New(rand.NewSource(opts.Seed)),
		target:  target,
		events:  opts.Events,
		log:     logger.Named("registry"),
	}
}

// SetKinds swaps the kind specs used by later Create calls.
func (r *Registry) SetKinds(kinds prefabs.KindsSpec) {
	if r == nil {
		return
	}
	r.kinds = kinds
}

// Create allocates a body and shape for kind at pos and registers it.
// vel only applies to dynamic bodies.
func (r *Registry) Create(kind Kind, pos, vel cp.Vector, params Params) (ecs.Entity, error) {
	if r == nil {
		return ecs.Nil, fmt.Errorf("create: nil registry: %w", ErrEngineAllocation)
	}
	if !kind.Valid() {
		return ecs.Nil, fmt.Errorf("create: %v: %w", kind, ErrInvalidGesture)
	}
	name := kind.prefab(params.Decorative)
	spec, ok := r.kinds.Kind(name)
	if !ok {
		return ecs.Nil, fmt.Errorf("create %s: no kind spec: %w", name, ErrEngineAllocation)
	}

	body := physics.BodySpec{
		Position:   pos,
		Angle:      params.Angle,
		Mass:       spec.Mass,
		Friction:   spec.Friction,
		Elasticity: spec.Elasticity,
		Decorative: spec.Decorative,
	}
	switch spec.Body {
	case "dynamic":
		body.Body = physics.BodyDynamic
		body.Velocity = vel
		if spec.MassJitter > 0 {
			body.Mass += r.rng.Float64() * spec.MassJitter
		}
	case "kinematic":
		body.Body = physics.BodyKinematic
	default:
		body.Body = physics.BodyStatic
	}

	e := Entity{
		Kind:       kind,
		Dynamic:    body.Body == physics.BodyDynamic,
		Locked:     spec.Locked,
		Decorative: spec.Decorative,
		Position:   pos,
		Angle:      params.Angle,
		Velocity:   body.Velocity,
	}
	switch spec.Shape {
	case "circle":
		body.Shape = physics.ShapeCircle
		body.Radius = spec.Radius
		if spec.RadiusJitter > 0 {
			body.Radius -= r.rng.Float64() * spec.RadiusJitter
		}
		e.Radius = body.Radius
		e.HalfWidth, e.HalfHeight = body.Radius, body.Radius
	default:
		body.Shape = physics.ShapeBox
		body.Width, body.Height = spec.Width, spec.Height
		if params.Length > 0 {
			body.Width = params.Length
		}
		e.HalfWidth, e.HalfHeight = body.Width/2, body.Height/2
	}
	if kind == KindPipe {
		target := params.Target
		if !emittable(target) {
			target = r.target
		}
		e.Pipe = &PipeState{Emit: params.Emit, Target: target}
	}

	h, err := r.phys.Allocate(body)
	if err != nil {
		r.log.Error("allocate entity", zap.Stringer("kind", kind), zap.Error(err))
		return ecs.Nil, fmt.Errorf("create %s: %v: %w", kind, err, ErrEngineAllocation)
	}

	id := r.store.Create()
	e.ID = id
	r.records.Set(id, &record{Entity: e, handle: h})
	r.byShape[h.Shape] = id
	r.events.Push(ecs.Event{Type: ecs.EventEntityCreated, Entity: id, Data: kind})
	r.log.Debug("entity created", zap.Stringer("id", id), zap.Stringer("kind", kind),
		zap.Float64("x", pos.X), zap.Float64("y", pos.Y))
	return id, nil
}

// CreateLink builds a line spanning a and b placed with common.PlaceLink.
// Decorative links are kinematic visuals; the rest are static walls.
func (r *Registry) CreateLink(a, b cp.Vector, decorative bool) (ecs.Entity, error) {
	mid, half, angle := common.PlaceLink(a, b)
	length := 2 * half
	if length <= 0 {
		if !decorative {
			return ecs.Nil, fmt.Errorf("line of zero length: %w", ErrInvalidGesture)
		}
		length = minLinkLength
	}
	return r.Create(KindLine, mid, cp.Vector{}, Params{Angle: angle, Length: length, Decorative: decorative})
}

const minLinkLength = 1.0

// placeLink re-places a decorative link between a and b.
func (r *Registry) placeLink(id ecs.Entity, a, b cp.Vector) {
	rec, ok := r.records.Get(id)
	if !ok {
		return
	}
	mid, half, angle := common.PlaceLink(a, b)
	if half*2 < minLinkLength {
		half = minLinkLength / 2
	}
	r.phys.Place(rec.handle, mid, angle)
	if math.Abs(half-rec.HalfWidth) > 1e-9 {
		r.phys.ResizeBox(rec.handle, 2*half, 2*rec.HalfHeight)
		rec.HalfWidth = half
	}
	rec.Position = mid
	rec.Angle = angle
}

// destroy removes the engine objects and the record of id. Callers go
// through JointManager.DeleteForEntity so no joint is left behind.
func (r *Registry) destroy(id ecs.Entity) bool {
	if r == nil {
		return false
	}
	rec, ok := r.records.Get(id)
	if !ok {
		return false
	}
	r.phys.Release(rec.handle)
	delete(r.byShape, rec.handle.Shape)
	r.records.Remove(id)
	r.store.Destroy(id)
	r.events.Push(ecs.Event{Type: ecs.EventEntityDestroyed, Entity: id, Data: rec.Kind})
	r.log.Debug("entity destroyed", zap.Stringer("id", id), zap.Stringer("kind", rec.Kind))
	return true
}

// Lookup returns a copy of the entity record.
func (r *Registry) Lookup(id ecs.Entity) (Entity, bool) {
	if r == nil {
		return Entity{}, false
	}
	rec, ok := r.records.Get(id)
	if !ok {
		return Entity{}, false
	}
	e := rec.Entity
	if rec.Pipe != nil {
		pipe := *rec.Pipe
		e.Pipe = &pipe
	}
	return e, true
}

func (r *Registry) Alive(id ecs.Entity) bool {
	return r != nil && r.store.IsAlive(id)
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return r.store.Len()
}

// Each calls fn for every entity in id order. fn may destroy entities.
func (r *Registry) Each(fn func(e Entity)) {
	if r == nil || fn == nil {
		return
	}
	for _, id := range r.ids() {
		if e, ok := r.Lookup(id); ok {
			fn(e)
		}
	}
}

func (r *Registry) ids() []ecs.Entity {
	ids := append([]ecs.Entity(nil), r.records.Entities()...)
	sort.Slice(ids, func(i, j int) bool { return ecs.Less(ids[i], ids[j]) })
	return ids
}

// EntityForShape resolves an engine shape to its entity.
func (r *Registry) EntityForShape(shape *cp.Shape) (ecs.Entity, bool) {
	if r == nil || shape == nil {
		return ecs.Nil, false
	}
	id, ok := r.byShape[shape]
	if !ok || !r.store.IsAlive(id) {
		return ecs.Nil, false
	}
	return id, true
}

func (r *Registry) body(id ecs.Entity) (*cp.Body, error) {
	rec, ok := r.records.Get(id)
	if !ok {
		return nil, fmt.Errorf("entity %v: %w", id, ErrDanglingReference)
	}
	return rec.handle.Body, nil
}

func (r *Registry) handle(id ecs.Entity) (physics.Handle, bool) {
	rec, ok := r.records.Get(id)
	if !ok {
		return physics.Handle{}, false
	}
	return rec.handle, true
}

// SetPosition moves id to p and zeroes its velocity.
func (r *Registry) SetPosition(id ecs.Entity, p cp.Vector) error {
	rec, ok := r.records.Get(id)
	if !ok {
		return fmt.Errorf("set position %v: %w", id, ErrDanglingReference)
	}
	if !finite(p) {
		return fmt.Errorf("set position %v: %w", id, ErrInvalidGesture)
	}
	b := rec.handle.Body
	if b.GetType() == cp.BODY_STATIC {
		return fmt.Errorf("set position of static %v: %w", id, ErrInvalidGesture)
	}
	b.SetPosition(p)
	b.SetVelocity(0, 0)
	b.SetAngularVelocity(0)
	rec.Position = p
	rec.Velocity = cp.Vector{}
	return nil
}

// SetVelocity sets the linear velocity of a non-static entity.
func (r *Registry) SetVelocity(id ecs.Entity, v cp.Vector) error {
	rec, ok := r.records.Get(id)
	if !ok {
		return fmt.Errorf("set velocity %v: %w", id, ErrDanglingReference)
	}
	if rec.handle.Body.GetType() == cp.BODY_STATIC {
		return fmt.Errorf("set velocity of static %v: %w", id, ErrInvalidGesture)
	}
	rec.handle.Body.SetVelocityVector(v)
	rec.Velocity = v
	return nil
}

// SetEmission changes a pipe's emission velocity.
func (r *Registry) SetEmission(id ecs.Entity, v cp.Vector) error {
	rec, ok := r.records.Get(id)
	if !ok {
		return fmt.Errorf("set emission %v: %w", id, ErrDanglingReference)
	}
	if rec.Pipe == nil {
		return fmt.Errorf("set emission on %s: %w", rec.Kind, ErrInvalidGesture)
	}
	rec.Pipe.Emit = v
	return nil
}

// Sync copies body transforms into the entity records.
func (r *Registry) Sync() {
	if r == nil {
		return
	}
	for _, rec := range r.records.Values() {
		if rec.Decorative {
			continue
		}
		b := rec.handle.Body
		rec.Position = b.Position()
		rec.Angle = b.Angle()
		rec.Velocity = b.Velocity()
	}
}

func finite(v cp.Vector) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// emittable kinds can be spawned by a pipe.
func emittable(k Kind) bool {
	switch k {
	case KindCircle, KindBox, KindPlank:
		return true
	}
	return false
}
