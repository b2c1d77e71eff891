package sandbox

import (
	"github.com/milk9111/careenium/ecs"
	"go.uber.org/zap"
)

// Emitter makes every pipe spawn its target kind once per Interval ticks.
type Emitter struct {
	Interval int
	// Recoil subtracts the emitted velocity from dynamic pipes.
	Recoil bool

	tick uint64
	log  *zap.Logger
}

func NewEmitter(interval int, recoil bool, logger *zap.Logger) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 60
	}
	return &Emitter{Interval: interval, Recoil: recoil, log: logger.Named("emitter")}
}

// Ticks returns how many unpaused ticks the emitter has counted.
func (e *Emitter) Ticks() uint64 {
	if e == nil {
		return 0
	}
	return e.tick
}

// Update advances the counter unless mode is Setup and fires the pipes on
// every Interval-th tick. It returns the spawned entities.
func (e *Emitter) Update(reg *Registry, mode Mode) ([]ecs.Entity, error) {
	if e == nil || reg == nil || mode == ModeSetup {
		return nil, nil
	}
	e.tick++
	if e.tick%uint64(e.Interval) != 0 {
		return nil, nil
	}

	var pipes []Entity
	reg.Each(func(ent Entity) {
		if ent.Kind == KindPipe && ent.Pipe != nil {
			pipes = append(pipes, ent)
		}
	})

	var spawned []ecs.Entity
	for _, pipe := range pipes {
		id, err := reg.Create(pipe.Pipe.Target, pipe.Position, pipe.Pipe.Emit, Params{})
		if err != nil {
			return spawned, err
		}
		spawned = append(spawned, id)
		if e.Recoil && pipe.Dynamic {
			if err := reg.SetVelocity(pipe.ID, pipe.Velocity.Sub(pipe.Pipe.Emit)); err != nil {
				e.log.Debug("recoil skipped", zap.Stringer("pipe", pipe.ID), zap.Error(err))
			}
		}
	}
	if len(spawned) > 0 {
		e.log.Debug("pipes fired", zap.Uint64("tick", e.tick), zap.Int("spawned", len(spawned)))
	}
	return spawned, nil
}
