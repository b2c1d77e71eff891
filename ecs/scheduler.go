package ecs

// System updates a world once per tick.
type System[W any] interface {
	Update(w W) error
}

// SystemFunc adapts a function to the System interface.
type SystemFunc[W any] func(w W) error

func (f SystemFunc[W]) Update(w W) error { return f(w) }

// Scheduler runs systems in registration order. The first system error
// stops the pass.
type Scheduler[W any] struct {
	systems []System[W]
}

func NewScheduler[W any](systems ...System[W]) *Scheduler[W] {
	copied := append([]System[W](nil), systems...)
	return &Scheduler[W]{systems: copied}
}

func (s *Scheduler[W]) Add(system System[W]) {
	if system == nil {
		return
	}
	s.systems = append(s.systems, system)
}

func (s *Scheduler[W]) Update(w W) error {
	for _, system := range s.systems {
		if err := system.Update(w); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler[W]) Systems() []System[W] {
	systems := make([]System[W], 0, len(s.systems))
	return append(systems, s.systems...)
}
