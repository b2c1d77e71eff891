package sandbox

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/careenium/common"
	"github.com/milk9111/careenium/ecs"
	"github.com/milk9111/careenium/physics"
	"go.uber.org/zap"
)

type phase int

const (
	phaseIdle phase = iota
	phasePending
	phaseDragging
	phasePanning
)

func (p phase) String() string {
	switch p {
	case phasePending:
		return "pending"
	case phaseDragging:
		return "dragging"
	case phasePanning:
		return "panning"
	}
	return "idle"
}

// pendingAction is the anchor of a gesture started on pointer down.
type pendingAction struct {
	point  cp.Vector
	entity ecs.Entity
	local  cp.Vector
	button Button
}

// DragStyle selects how a dragged entity follows the pointer.
type DragStyle int

const (
	// DragDirect overwrites the position and zeroes the velocity before
	// every step.
	DragDirect DragStyle = iota
	// DragSpring pulls the body with a pivot joint to a mouse body.
	DragSpring
)

// ToolOptions holds the gesture tuning.
type ToolOptions struct {
	Grid        float64
	Snap        bool
	ThrowFactor float64
	MinDrag     float64
	DragStyle   DragStyle
	GrabForce   float64
	MotorRate   float64
	SlideMin    float64
	SlideMax    float64 // multiple of the anchor distance
}

// Tool turns pointer and key events into registry and joint operations.
// State created on pointer down is always cleared on pointer up.
type Tool struct {
	w    *World
	opts ToolOptions
	slot int

	phase   phase
	pending pendingAction
	deleted bool

	dragged ecs.Entity
	target  cp.Vector
	grab    *physics.Grab

	pointer    cp.Vector
	lastScreen cp.Vector
	shift      bool

	log *zap.Logger
}

func newTool(w *World, opts ToolOptions, logger *zap.Logger) *Tool {
	if opts.ThrowFactor == 0 {
		opts.ThrowFactor = common.ThrowFactor
	}
	return &Tool{w: w, opts: opts, log: logger.Named("tool")}
}

// Slot returns the selected tool.
func (t *Tool) Slot() ToolSlot {
	return toolCycle[t.slot]
}

// SetCreateKind selects the create tool for kind.
func (t *Tool) SetCreateKind(kind Kind) error {
	return t.selectSlot(ToolSlot{Kind: kind})
}

// SetJointKind selects the joint tool for kind.
func (t *Tool) SetJointKind(kind JointKind) error {
	return t.selectSlot(ToolSlot{Joint: true, JointKind: kind})
}

func (t *Tool) selectSlot(s ToolSlot) error {
	for i, slot := range toolCycle {
		if slot == s {
			t.cancel()
			t.slot = i
			return nil
		}
	}
	return fmt.Errorf("no tool %v: %w", s, ErrInvalidGesture)
}

// Cycle moves through the tool list by steps, clamped at both ends.
func (t *Tool) Cycle(steps int) {
	next := t.slot + steps
	if next < 0 {
		next = 0
	}
	if next >= len(toolCycle) {
		next = len(toolCycle) - 1
	}
	if next != t.slot {
		t.cancel()
		t.slot = next
	}
}

func (t *Tool) Snap() bool { return t.opts.Snap }

func (t *Tool) ToggleSnap() { t.opts.Snap = !t.opts.Snap }

func (t *Tool) SetShift(on bool) { t.shift = on }

// Pointer is the last resolved pointer position in world space.
func (t *Tool) Pointer() cp.Vector { return t.pointer }

// Dragging returns the dragged entity, if any.
func (t *Tool) Dragging() (ecs.Entity, bool) {
	if t.phase != phaseDragging {
		return ecs.Nil, false
	}
	return t.dragged, true
}

// resolve snaps p to the grid and, with shift held during a pending
// gesture, locks it to the anchor's axes.
func (t *Tool) resolve(p cp.Vector) cp.Vector {
	if t.opts.Snap {
		p = common.SnapVector(p, t.opts.Grid)
	}
	if t.shift && t.phase == phasePending {
		p = common.AxisLock(t.pending.point, p)
	}
	return p
}

// Press starts a gesture at the world point p.
func (t *Tool) Press(p, screen cp.Vector, button Button, mods Modifier) error {
	if t.phase != phaseIdle {
		t.cancel()
	}
	t.shift = t.shift || mods.Has(ModShift)
	t.lastScreen = screen

	if button == ButtonMiddle {
		t.phase = phasePanning
		t.w.camera.BeginPan()
		return nil
	}
	if mods.Delete() {
		t.deleted = true
		return nil
	}

	t.pointer = t.resolve(p)
	slot := t.Slot()
	hit, ok := t.w.picker.Pick(p)
	switch {
	case ok && slot.Joint:
		body, err := t.w.reg.body(hit)
		if err != nil {
			return err
		}
		t.pending = pendingAction{point: p, entity: hit, local: body.WorldToLocal(p), button: button}
		t.phase = phasePending
	case ok && button == ButtonPrimary:
		return t.beginDrag(hit, p)
	case ok:
		// secondary press on an entity in create mode does nothing
	default:
		t.pending = pendingAction{point: t.pointer, entity: ecs.Nil, button: button}
		t.phase = phasePending
	}
	return nil
}

func (t *Tool) beginDrag(id ecs.Entity, p cp.Vector) error {
	e, ok := t.w.reg.Lookup(id)
	if !ok {
		return fmt.Errorf("drag %v: %w", id, ErrDanglingReference)
	}
	if e.Locked {
		return nil
	}
	t.dragged = id
	t.target = t.pointer
	t.phase = phaseDragging
	if t.opts.DragStyle == DragSpring && e.Dynamic {
		h, _ := t.w.reg.handle(id)
		g, err := t.w.phys.Grab(h.Body, p, t.opts.GrabForce)
		if err != nil {
			t.endDrag()
			return fmt.Errorf("grab %v: %v: %w", id, err, ErrEngineAllocation)
		}
		t.grab = g
		t.target = p
	}
	t.log.Debug("drag started", zap.Stringer("id", id))
	return nil
}

// Move updates the pointer at the world point p.
func (t *Tool) Move(p, screen cp.Vector) {
	switch t.phase {
	case phasePanning:
		t.w.camera.Pan(t.lastScreen.Sub(screen))
		t.lastScreen = screen
		return
	case phaseDragging:
		if t.grab != nil {
			t.target = p
			return
		}
		t.pointer = t.resolve(p)
		t.target = t.pointer
		if err := t.w.reg.SetPosition(t.dragged, t.target); err != nil {
			t.endDrag()
		}
		return
	}
	t.pointer = t.resolve(p)
	t.lastScreen = screen
}

// applyDrag re-applies the drag target before a physics step.
func (t *Tool) applyDrag(dt float64) {
	if t.phase != phaseDragging {
		return
	}
	if t.grab != nil {
		t.grab.Move(t.target, dt)
		return
	}
	if err := t.w.reg.SetPosition(t.dragged, t.target); err != nil {
		t.endDrag()
	}
}

// Release ends the gesture at the world point p and commits it.
func (t *Tool) Release(p cp.Vector, button Button, mods Modifier) error {
	defer t.cancel()

	switch {
	case t.phase == phasePanning:
		return nil
	case mods.Delete() || t.deleted:
		t.endDrag()
		if hit, ok := t.w.picker.Pick(p); ok {
			t.w.Delete(hit)
		}
		return nil
	case t.phase != phasePending:
		return nil
	}

	r := t.resolve(p)
	t.pointer = r
	if t.Slot().Joint {
		return t.commitJoint(p, r)
	}
	return t.commitCreate(r)
}

func (t *Tool) commitCreate(r cp.Vector) error {
	anchor := t.pending.point
	dist := r.Distance(anchor)

	if t.pending.button == ButtonSecondary {
		if dist <= t.opts.MinDrag {
			return fmt.Errorf("line shorter than %v: %w", t.opts.MinDrag, ErrInvalidGesture)
		}
		_, err := t.w.reg.CreateLink(anchor, r, false)
		return err
	}

	var throw cp.Vector
	if dist > t.opts.MinDrag {
		throw = anchor.Sub(r).Mult(t.opts.ThrowFactor)
	}
	kind := t.Slot().Kind
	if kind == KindPipe {
		_, err := t.w.reg.Create(kind, anchor, cp.Vector{}, Params{Emit: throw})
		return err
	}
	_, err := t.w.reg.Create(kind, anchor, throw, Params{})
	return err
}

func (t *Tool) commitJoint(p, r cp.Vector) error {
	anchor := t.pending.point
	dist := r.Distance(anchor)
	if dist <= t.opts.MinDrag {
		return fmt.Errorf("joint gesture shorter than %v: %w", t.opts.MinDrag, ErrInvalidGesture)
	}

	kind := t.Slot().JointKind
	a := t.pending.entity
	if kind == JointMotor {
		if a == ecs.Nil {
			return fmt.Errorf("motor without entity: %w", ErrInvalidGesture)
		}
		dir := common.Sign(r.X - anchor.X)
		if dir == 0 {
			dir = common.Sign(r.Y - anchor.Y)
		}
		rate := t.opts.MotorRate * dir
		_, err := t.w.joints.ConnectMotor(a, rate)
		return err
	}

	b, ok := t.w.picker.Pick(p)
	if a == ecs.Nil || !ok {
		_, err := t.w.reg.CreateLink(anchor, r, false)
		return err
	}
	if !t.w.reg.Alive(a) {
		return fmt.Errorf("joint endpoint %v: %w", a, ErrDanglingReference)
	}
	bodyB, err := t.w.reg.body(b)
	if err != nil {
		return err
	}
	localB := bodyB.WorldToLocal(p)

	switch kind {
	case JointPin:
		_, err = t.w.joints.ConnectPin(a, t.pending.local, b, localB)
	case JointSlide:
		_, err = t.w.joints.ConnectSlide(a, t.pending.local, b, localB, t.opts.SlideMin, dist*t.opts.SlideMax)
	case JointPivot:
		_, err = t.w.joints.ConnectPivot(a, b, p)
	case JointBridgeLink:
		_, err = t.w.bridge.Build(a, b)
	default:
		err = fmt.Errorf("joint kind %v: %w", kind, ErrInvalidGesture)
	}
	return err
}

// forget drops any reference to id before it is destroyed.
func (t *Tool) forget(id ecs.Entity) {
	if t.phase == phaseDragging && t.dragged == id {
		t.endDrag()
	}
	if t.phase == phasePending && t.pending.entity == id {
		t.pending.entity = ecs.Nil
		t.phase = phaseIdle
	}
}

func (t *Tool) endDrag() {
	if t.grab != nil {
		t.w.phys.Ungrab(t.grab)
		t.grab = nil
	}
	if t.phase == phaseDragging {
		t.log.Debug("drag ended", zap.Stringer("id", t.dragged))
		t.phase = phaseIdle
	}
	t.dragged = ecs.Nil
}

// cancel clears all gesture state and removes any drag joint.
func (t *Tool) cancel() {
	t.endDrag()
	if t.phase == phasePanning {
		t.w.camera.EndPan()
	}
	t.phase = phaseIdle
	t.pending = pendingAction{}
	t.deleted = false
}

// Gesture describes the pending gesture for rendering.
type Gesture struct {
	Active bool
	From   cp.Vector
	To     cp.Vector
	Line   bool
}

func (t *Tool) gesture() Gesture {
	if t.phase != phasePending {
		return Gesture{}
	}
	line := t.Slot().Joint || t.pending.button == ButtonSecondary
	return Gesture{Active: true, From: t.pending.point, To: t.pointer, Line: line}
}
