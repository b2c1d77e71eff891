package sandbox

import (
	"fmt"
	"sort"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/careenium/ecs"
	"github.com/milk9111/careenium/physics"
	"go.uber.org/zap"
)

// JointKind is the closed set of joint kinds.
type JointKind int

const (
	JointPin JointKind = iota + 1
	JointSlide
	JointMotor
	JointBridgeLink
	JointPivot
)

var jointKindNames = map[JointKind]string{
	JointPin:        "pin",
	JointSlide:      "slide",
	JointMotor:      "motor",
	JointBridgeLink: "bridge",
	JointPivot:      "pivot",
}

func (k JointKind) String() string {
	if s, ok := jointKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("JointKind(%d)", int(k))
}

// JointID identifies a joint for its whole life. Ids are never reused.
type JointID uint64

// Joint is one engine constraint plus its decorative links. Motor joints
// have B == ecs.Nil; the fixed side is the space's static body.
type Joint struct {
	ID   JointID
	Kind JointKind
	A, B ecs.Entity
	// LocalA and LocalB are the body-local points the links span.
	LocalA, LocalB cp.Vector
	Min, Max       float64
	Rate           float64
	Links          []ecs.Entity

	constraint *cp.Constraint
}

// JointManager owns every constraint and the cascade that removes joints
// together with their entities.
type JointManager struct {
	reg    *Registry
	phys   *physics.World
	joints map[JointID]*Joint
	next   JointID
	events *ecs.EventQueue
	log    *zap.Logger
}

func NewJointManager(reg *Registry, phys *physics.World, events *ecs.EventQueue, logger *zap.Logger) *JointManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JointManager{
		reg:    reg,
		phys:   phys,
		joints: make(map[JointID]*Joint),
		events: events,
		log:    logger.Named("joints"),
	}
}

type linkSpan struct {
	a, b cp.Vector
}

// commit creates the links of j, then its constraint, then the record.
// Any failure undoes what was created.
func (m *JointManager) commit(j *Joint, bodyA, bodyB *cp.Body, spans []linkSpan, build func(a, b *cp.Body) *cp.Constraint) (JointID, error) {
	links := make([]ecs.Entity, 0, len(spans))
	rollback := func() {
		for _, id := range links {
			m.reg.destroy(id)
		}
	}
	for _, s := range spans {
		id, err := m.reg.CreateLink(s.a, s.b, true)
		if err != nil {
			rollback()
			return 0, fmt.Errorf("%s link: %w", j.Kind, err)
		}
		links = append(links, id)
	}
	c, err := m.phys.Connect(bodyA, bodyB, build)
	if err != nil {
		rollback()
		m.log.Error("constraint allocation", zap.Stringer("kind", j.Kind), zap.Error(err))
		return 0, fmt.Errorf("%s constraint: %v: %w", j.Kind, err, ErrEngineAllocation)
	}

	m.next++
	j.ID = m.next
	j.Links = links
	j.constraint = c
	m.joints[j.ID] = j
	m.events.Push(ecs.Event{Type: ecs.EventJointCreated, Entity: j.A, Data: j.ID})
	m.log.Debug("joint connected", zap.Uint64("joint", uint64(j.ID)), zap.Stringer("kind", j.Kind),
		zap.Stringer("a", j.A), zap.Stringer("b", j.B), zap.Int("links", len(links)))
	return j.ID, nil
}

func (m *JointManager) pair(a, b ecs.Entity) (*cp.Body, *cp.Body, error) {
	if a == b {
		return nil, nil, fmt.Errorf("join %v to itself: %w", a, ErrInvalidGesture)
	}
	bodyA, err := m.reg.body(a)
	if err != nil {
		return nil, nil, err
	}
	bodyB, err := m.reg.body(b)
	if err != nil {
		return nil, nil, err
	}
	return bodyA, bodyB, nil
}

// ConnectPin pins localA on a to localB on b at their current distance.
func (m *JointManager) ConnectPin(a ecs.Entity, localA cp.Vector, b ecs.Entity, localB cp.Vector) (JointID, error) {
	bodyA, bodyB, err := m.pair(a, b)
	if err != nil {
		return 0, err
	}
	j := &Joint{Kind: JointPin, A: a, B: b, LocalA: localA, LocalB: localB}
	span := linkSpan{bodyA.LocalToWorld(localA), bodyB.LocalToWorld(localB)}
	return m.commit(j, bodyA, bodyB, []linkSpan{span}, func(ba, bb *cp.Body) *cp.Constraint {
		return cp.NewPinJoint(ba, bb, localA, localB)
	})
}

// ConnectSlide keeps the anchors between min and max apart. It gets a
// single link.
func (m *JointManager) ConnectSlide(a ecs.Entity, localA cp.Vector, b ecs.Entity, localB cp.Vector, min, max float64) (JointID, error) {
	if min < 0 || max < min {
		return 0, fmt.Errorf("slide limits %v..%v: %w", min, max, ErrInvalidGesture)
	}
	bodyA, bodyB, err := m.pair(a, b)
	if err != nil {
		return 0, err
	}
	j := &Joint{Kind: JointSlide, A: a, B: b, LocalA: localA, LocalB: localB, Min: min, Max: max}
	span := linkSpan{bodyA.LocalToWorld(localA), bodyB.LocalToWorld(localB)}
	return m.commit(j, bodyA, bodyB, []linkSpan{span}, func(ba, bb *cp.Body) *cp.Constraint {
		return cp.NewSlideJoint(ba, bb, localA, localB, min, max)
	})
}

// ConnectMotor spins a against the static anchor body at rate radians per
// second. Only dynamic entities can be driven.
func (m *JointManager) ConnectMotor(a ecs.Entity, rate float64) (JointID, error) {
	e, ok := m.reg.Lookup(a)
	if !ok {
		return 0, fmt.Errorf("motor on %v: %w", a, ErrDanglingReference)
	}
	if !e.Dynamic || rate == 0 {
		return 0, fmt.Errorf("motor on %s at %v: %w", e.Kind, rate, ErrInvalidGesture)
	}
	bodyA, err := m.reg.body(a)
	if err != nil {
		return 0, err
	}
	j := &Joint{Kind: JointMotor, A: a, B: ecs.Nil, Rate: rate}
	return m.commit(j, bodyA, m.phys.StaticBody(), nil, func(ba, bb *cp.Body) *cp.Constraint {
		return cp.NewSimpleMotor(ba, bb, rate)
	})
}

// ConnectPivot joins a and b at the world point pivot. The link spans the
// two body centers.
func (m *JointManager) ConnectPivot(a, b ecs.Entity, pivot cp.Vector) (JointID, error) {
	bodyA, bodyB, err := m.pair(a, b)
	if err != nil {
		return 0, err
	}
	j := &Joint{Kind: JointPivot, A: a, B: b}
	pivotA, pivotB := bodyA.WorldToLocal(pivot), bodyB.WorldToLocal(pivot)
	span := linkSpan{bodyA.Position(), bodyB.Position()}
	return m.commit(j, bodyA, bodyB, []linkSpan{span}, func(ba, bb *cp.Body) *cp.Constraint {
		return cp.NewPivotJoint2(ba, bb, pivotA, pivotB)
	})
}

// connectBridgeLink pins two bridge members without a visual link. The
// members do not collide with each other.
func (m *JointManager) connectBridgeLink(a ecs.Entity, localA cp.Vector, b ecs.Entity, localB cp.Vector) (JointID, error) {
	bodyA, bodyB, err := m.pair(a, b)
	if err != nil {
		return 0, err
	}
	j := &Joint{Kind: JointBridgeLink, A: a, B: b, LocalA: localA, LocalB: localB}
	return m.commit(j, bodyA, bodyB, nil, func(ba, bb *cp.Body) *cp.Constraint {
		c := cp.NewPinJoint(ba, bb, localA, localB)
		c.SetCollideBodies(false)
		return c
	})
}

// Remove deletes one joint: its constraint, its links and its record.
func (m *JointManager) Remove(id JointID) bool {
	if m == nil {
		return false
	}
	j, ok := m.joints[id]
	if !ok {
		return false
	}
	m.phys.RemoveConstraint(j.constraint)
	for _, link := range j.Links {
		m.reg.destroy(link)
	}
	delete(m.joints, id)
	m.events.Push(ecs.Event{Type: ecs.EventJointRemoved, Entity: j.A, Data: id})
	m.log.Debug("joint removed", zap.Uint64("joint", uint64(id)), zap.Stringer("kind", j.Kind))
	return true
}

// DeleteForEntity removes every joint that references id, as an endpoint
// or as one of its links, and then destroys id itself. It reports false
// when id was already gone. Deleting a link removes its joint, which
// destroys the link along with it.
func (m *JointManager) DeleteForEntity(id ecs.Entity) bool {
	if m == nil || !m.reg.Alive(id) {
		return false
	}
	removed := false
	for {
		j, ok := m.referencing(id)
		if !ok {
			break
		}
		if m.Remove(j) {
			removed = true
		}
	}
	return m.reg.destroy(id) || removed
}

func (m *JointManager) referencing(id ecs.Entity) (JointID, bool) {
	for _, jid := range m.ids() {
		j := m.joints[jid]
		if j.A == id || j.B == id {
			return jid, true
		}
		for _, link := range j.Links {
			if link == id {
				return jid, true
			}
		}
	}
	return 0, false
}

// JointsFor lists the joints with id as an endpoint.
func (m *JointManager) JointsFor(id ecs.Entity) []JointID {
	if m == nil {
		return nil
	}
	var out []JointID
	for _, jid := range m.ids() {
		j := m.joints[jid]
		if j.A == id || j.B == id {
			out = append(out, jid)
		}
	}
	return out
}

// Lookup returns a copy of the joint.
func (m *JointManager) Lookup(id JointID) (Joint, bool) {
	if m == nil {
		return Joint{}, false
	}
	j, ok := m.joints[id]
	if !ok {
		return Joint{}, false
	}
	out := *j
	out.Links = append([]ecs.Entity(nil), j.Links...)
	out.constraint = nil
	return out, true
}

func (m *JointManager) Len() int {
	if m == nil {
		return 0
	}
	return len(m.joints)
}

// Each calls fn for every joint in id order.
func (m *JointManager) Each(fn func(j Joint)) {
	if m == nil || fn == nil {
		return
	}
	for _, id := range m.ids() {
		if j, ok := m.Lookup(id); ok {
			fn(j)
		}
	}
}

func (m *JointManager) ids() []JointID {
	ids := make([]JointID, 0, len(m.joints))
	for id := range m.joints {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Sync re-places every link from the current body transforms.
func (m *JointManager) Sync() {
	if m == nil {
		return
	}
	for _, j := range m.joints {
		if len(j.Links) == 0 {
			continue
		}
		a, b, ok := m.span(j)
		if !ok {
			continue
		}
		for _, link := range j.Links {
			m.reg.placeLink(link, a, b)
		}
	}
}

func (m *JointManager) span(j *Joint) (cp.Vector, cp.Vector, bool) {
	bodyA, err := m.reg.body(j.A)
	if err != nil {
		return cp.Vector{}, cp.Vector{}, false
	}
	bodyB, err := m.reg.body(j.B)
	if err != nil {
		return cp.Vector{}, cp.Vector{}, false
	}
	return bodyA.LocalToWorld(j.LocalA), bodyB.LocalToWorld(j.LocalB), true
}
