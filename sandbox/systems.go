package sandbox

import (
	"time"

	"github.com/milk9111/careenium/ecs"
)

// newTickScheduler wires the per-tick systems in their fixed order:
// drag, step, sync, janitor, emitter, links, camera, events.
func newTickScheduler() *ecs.Scheduler[*World] {
	return ecs.NewScheduler[*World](
		ecs.SystemFunc[*World](applyDragSystem),
		ecs.SystemFunc[*World](stepSystem),
		ecs.SystemFunc[*World](syncSystem),
		ecs.SystemFunc[*World](janitorSystem),
		ecs.SystemFunc[*World](emitterSystem),
		ecs.SystemFunc[*World](linkSystem),
		ecs.SystemFunc[*World](cameraSystem),
		ecs.SystemFunc[*World](eventSystem),
	)
}

func applyDragSystem(w *World) error {
	w.tool.applyDrag(w.dt)
	return nil
}

func stepSystem(w *World) error {
	start := time.Now()
	w.phys.Step(w.dt)
	w.stats.StepTime = time.Since(start)
	return nil
}

func syncSystem(w *World) error {
	w.reg.Sync()
	return nil
}

func janitorSystem(w *World) error {
	w.stats.Swept = len(w.janitor.Sweep(w.reg, w.Delete))
	return nil
}

func emitterSystem(w *World) error {
	spawned, err := w.emitter.Update(w.reg, w.mode)
	w.stats.Spawned = len(spawned)
	return err
}

func linkSystem(w *World) error {
	w.joints.Sync()
	return nil
}

func cameraSystem(w *World) error {
	w.camera.Update(w.reg)
	return nil
}

func eventSystem(w *World) error {
	evts := w.events.Drain()
	w.stats.Events = len(evts)
	if w.onEvent == nil {
		return nil
	}
	for _, evt := range evts {
		w.onEvent(evt)
	}
	return nil
}
