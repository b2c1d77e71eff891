package sandbox

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/careenium/ecs"
)

// EntityView is the render data of one non-decorative entity.
type EntityView struct {
	ID         ecs.Entity
	Kind       Kind
	Dynamic    bool
	Locked     bool
	Position   cp.Vector
	Angle      float64
	Radius     float64
	HalfWidth  float64
	HalfHeight float64
	Emit       cp.Vector
}

// LinkView is the render data of one joint link.
type LinkView struct {
	Joint      JointID
	Kind       JointKind
	Entity     ecs.Entity
	Position   cp.Vector
	Angle      float64
	HalfLength float64
	HalfWidth  float64
}

// Snapshot is a read-only copy of the world for one frame.
type Snapshot struct {
	Tick     uint64
	Mode     Mode
	Tool     ToolSlot
	Snap     bool
	Camera   cp.Vector
	Gesture  Gesture
	Entities []EntityView
	Links    []LinkView
	Motors   []ecs.Entity
	Stats    Stats
}

// Snapshot copies the live entities and joint links, sorted by id.
func (w *World) Snapshot() Snapshot {
	s := Snapshot{
		Tick:    w.tick,
		Mode:    w.mode,
		Tool:    w.tool.Slot(),
		Snap:    w.tool.Snap(),
		Camera:  w.camera.Offset,
		Gesture: w.tool.gesture(),
		Stats:   w.stats,
	}
	w.reg.Each(func(e Entity) {
		if e.Decorative {
			return
		}
		v := EntityView{
			ID:         e.ID,
			Kind:       e.Kind,
			Dynamic:    e.Dynamic,
			Locked:     e.Locked,
			Position:   e.Position,
			Angle:      e.Angle,
			Radius:     e.Radius,
			HalfWidth:  e.HalfWidth,
			HalfHeight: e.HalfHeight,
		}
		if e.Pipe != nil {
			v.Emit = e.Pipe.Emit
		}
		s.Entities = append(s.Entities, v)
	})
	w.joints.Each(func(j Joint) {
		if j.Kind == JointMotor {
			s.Motors = append(s.Motors, j.A)
		}
		for _, id := range j.Links {
			e, ok := w.reg.Lookup(id)
			if !ok {
				continue
			}
			s.Links = append(s.Links, LinkView{
				Joint:      j.ID,
				Kind:       j.Kind,
				Entity:     id,
				Position:   e.Position,
				Angle:      e.Angle,
				HalfLength: e.HalfWidth,
				HalfWidth:  e.HalfHeight,
			})
		}
	})
	return s
}
