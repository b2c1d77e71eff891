package sandbox

import (
	"fmt"
	"strings"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/careenium/config"
	"github.com/milk9111/careenium/ecs"
	"github.com/milk9111/careenium/physics"
	"github.com/milk9111/careenium/prefabs"
	"go.uber.org/zap"
)

// Stats are per-tick counters for the HUD.
type Stats struct {
	Tick        uint64
	Entities    int
	Joints      int
	Bodies      int
	Spawned     int
	Swept       int
	Events      int
	StepTime    time.Duration
	ProcessTime time.Duration
}

// World owns the whole sandbox: engine, bookkeeping, tool and camera.
// It is not safe for concurrent use; see Runner.
type World struct {
	cfg *config.Config
	log *zap.Logger
	dt  float64

	phys    *physics.World
	reg     *Registry
	joints  *JointManager
	picker  *Picker
	bridge  *BridgeBuilder
	emitter *Emitter
	camera  *Camera
	janitor *Janitor
	tool    *Tool

	mode      Mode
	tick      uint64
	events    ecs.EventQueue
	onEvent   func(ecs.Event)
	scheduler *ecs.Scheduler[*World]
	stats     Stats
}

// NewWorld builds an empty world from cfg and the kind specs.
func NewWorld(cfg *config.Config, kinds prefabs.KindsSpec, logger *zap.Logger) (*World, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sandbox: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	mode, err := ParseMode(cfg.World.Mode)
	if err != nil {
		return nil, fmt.Errorf("sandbox: %w", err)
	}
	target, err := ParseKind(cfg.Emitter.TargetKind)
	if err != nil || !emittable(target) {
		return nil, fmt.Errorf("sandbox: emitter target %q is not a dynamic kind", cfg.Emitter.TargetKind)
	}
	style := DragDirect
	if strings.EqualFold(cfg.Tool.DragStyle, "spring") {
		style = DragSpring
	}

	w := &World{
		cfg: cfg,
		log: logger.Named("sandbox"),
		dt:  cfg.TickSeconds(),
	}
	w.phys = physics.New(physics.Options{
		Iterations: cfg.World.Iterations,
		Substeps:   cfg.World.Substeps,
		MaxBodies:  cfg.World.MaxBodies,
		Logger:     logger,
	})
	w.reg = NewRegistry(w.phys, kinds, RegistryOptions{
		Seed:          cfg.World.Seed,
		DefaultTarget: target,
		Events:        &w.events,
		Logger:        logger,
	})
	w.joints = NewJointManager(w.reg, w.phys, &w.events, logger)
	w.picker = NewPicker(w.reg, w.phys, cfg.Tool.PickRadius)
	w.bridge = NewBridgeBuilder(w.reg, w.joints, cfg.World.Grid, cfg.Bridge.Margin, logger)
	w.emitter = NewEmitter(cfg.Emitter.Interval, cfg.Emitter.Recoil, logger)
	w.camera = NewCamera(cfg.Viewport.Width, cfg.Viewport.Height)
	w.janitor = NewJanitor(w.camera.Viewport, cfg.World.BoundsFactor, logger)
	w.tool = newTool(w, ToolOptions{
		Grid:        cfg.World.Grid,
		Snap:        cfg.World.Snap,
		ThrowFactor: cfg.Tool.ThrowFactor,
		MinDrag:     cfg.Tool.MinDrag,
		DragStyle:   style,
		GrabForce:   cfg.Tool.GrabForce,
		MotorRate:   cfg.Tool.MotorRate,
		SlideMin:    cfg.Tool.SlideMin,
		SlideMax:    cfg.Tool.SlideMaxFactor,
	}, w.log)
	w.scheduler = newTickScheduler()
	w.SetMode(mode)
	return w, nil
}

func (w *World) Registry() *Registry        { return w.reg }
func (w *World) Joints() *JointManager      { return w.joints }
func (w *World) Picker() *Picker            { return w.picker }
func (w *World) Bridge() *BridgeBuilder     { return w.bridge }
func (w *World) Emitter() *Emitter          { return w.emitter }
func (w *World) Camera() *Camera            { return w.camera }
func (w *World) Janitor() *Janitor          { return w.janitor }
func (w *World) Tool() *Tool                { return w.tool }
func (w *World) Physics() *physics.World    { return w.phys }
func (w *World) Config() *config.Config     { return w.cfg }
func (w *World) Mode() Mode                 { return w.mode }
func (w *World) Stats() Stats               { return w.stats }
func (w *World) TickCount() uint64          { return w.tick }
func (w *World) OnEvent(fn func(ecs.Event)) { w.onEvent = fn }

// SetMode switches gravity and damping immediately.
func (w *World) SetMode(m Mode) {
	if m < ModeGravity || m > ModeNoGravity {
		return
	}
	w.mode = m
	w.phys.Apply(m.Preset())
	w.log.Debug("mode switched", zap.Stringer("mode", m))
}

// SetKinds replaces the kind specs, e.g. after a prefab reload.
func (w *World) SetKinds(kinds prefabs.KindsSpec) {
	w.reg.SetKinds(kinds)
}

// Delete cascades the removal of id through its joints. It reports false
// when id was already gone.
func (w *World) Delete(id ecs.Entity) bool {
	w.tool.forget(id)
	return w.joints.DeleteForEntity(id)
}

// Spawn creates an entity outside of any gesture.
func (w *World) Spawn(kind Kind, pos, vel cp.Vector, params Params) (ecs.Entity, error) {
	return w.reg.Create(kind, pos, vel, params)
}

// Tick runs one simulation tick.
func (w *World) Tick() error {
	start := time.Now()
	w.stats.Spawned, w.stats.Swept, w.stats.Events = 0, 0, 0
	if err := w.scheduler.Update(w); err != nil {
		return err
	}
	w.tick++
	w.stats.Tick = w.tick
	w.stats.Entities = w.reg.Len()
	w.stats.Joints = w.joints.Len()
	w.stats.Bodies = w.phys.Bodies()
	w.stats.ProcessTime = time.Since(start)
	return nil
}

// OnPointerDown starts a gesture at the screen point pos.
func (w *World) OnPointerDown(pos cp.Vector, button Button, mods Modifier) error {
	return w.gesture(w.tool.Press(w.camera.ScreenToWorld(pos), pos, button, mods))
}

func (w *World) OnPointerMove(pos cp.Vector) {
	w.tool.Move(w.camera.ScreenToWorld(pos), pos)
}

// OnPointerUp commits the gesture at the screen point pos.
func (w *World) OnPointerUp(pos cp.Vector, button Button, mods Modifier) error {
	return w.gesture(w.tool.Release(w.camera.ScreenToWorld(pos), button, mods))
}

// OnScroll cycles the tool, one slot per notch.
func (w *World) OnScroll(delta float64) {
	switch {
	case delta > 0:
		w.tool.Cycle(1)
	case delta < 0:
		w.tool.Cycle(-1)
	}
}

func (w *World) OnKeyDown(key Key) {
	switch key {
	case KeySpace:
		w.tool.ToggleSnap()
	case KeyShift:
		w.tool.SetShift(true)
	case KeyUp:
		if w.mode < ModeNoGravity {
			w.SetMode(w.mode + 1)
		}
	case KeyDown:
		if w.mode > ModeGravity {
			w.SetMode(w.mode - 1)
		}
	case KeyF:
		if id, ok := w.picker.Pick(w.tool.Pointer()); ok {
			w.camera.Follow(id)
		} else {
			w.camera.ClearFollow()
		}
	case KeyEscape:
		w.tool.cancel()
	}
}

func (w *World) OnKeyUp(key Key) {
	if key == KeyShift {
		w.tool.SetShift(false)
	}
}

// gesture swallows errors that only invalidate the current gesture.
func (w *World) gesture(err error) error {
	if err == nil {
		return nil
	}
	if recoverable(err) {
		w.log.Debug("gesture dropped", zap.Error(err))
		w.tool.cancel()
		return nil
	}
	w.log.Error("gesture failed", zap.Error(err))
	w.tool.cancel()
	return err
}
