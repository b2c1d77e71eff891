package sandbox

import (
	"errors"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/careenium/ecs"
)

func TestRegistryCreateKinds(t *testing.T) {
	tests := []struct {
		kind       Kind
		dynamic    bool
		locked     bool
		radius     [2]float64
		halfWidth  float64
		halfHeight float64
	}{
		{kind: KindCircle, dynamic: true, radius: [2]float64{15, 16}},
		{kind: KindBox, dynamic: true, halfWidth: 16, halfHeight: 16},
		{kind: KindPlank, dynamic: true, halfWidth: 32, halfHeight: 4},
		{kind: KindPipe, radius: [2]float64{18, 18}},
		{kind: KindStatic, halfWidth: 16, halfHeight: 16},
	}

	for _, tc := range tests {
		t.Run(tc.kind.String(), func(t *testing.T) {
			w := newTestWorld(t)
			id, err := w.Spawn(tc.kind, vec(50, 60), vec(10, 0), Params{})
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			e, ok := w.Registry().Lookup(id)
			if !ok {
				t.Fatalf("entity not registered")
			}
			if e.Kind != tc.kind || e.Dynamic != tc.dynamic || e.Locked != tc.locked {
				t.Fatalf("unexpected entity %+v", e)
			}
			if !near(e.Position, vec(50, 60)) {
				t.Fatalf("position %v", e.Position)
			}
			if tc.dynamic && !near(e.Velocity, vec(10, 0)) {
				t.Fatalf("dynamic velocity %v", e.Velocity)
			}
			if !tc.dynamic && !near(e.Velocity, cp.Vector{}) {
				t.Fatalf("non-dynamic entity should not move, velocity %v", e.Velocity)
			}
			if tc.radius[1] > 0 {
				if e.Radius < tc.radius[0] || e.Radius > tc.radius[1] {
					t.Fatalf("radius %v outside jitter range", e.Radius)
				}
			} else if e.HalfWidth != tc.halfWidth || e.HalfHeight != tc.halfHeight {
				t.Fatalf("half extents %vx%v", e.HalfWidth, e.HalfHeight)
			}
			if (tc.kind == KindPipe) != (e.Pipe != nil) {
				t.Fatalf("pipe state mismatch: %+v", e.Pipe)
			}
		})
	}
}

func TestRegistryPipeDefaults(t *testing.T) {
	w := newTestWorld(t)
	id, err := w.Spawn(KindPipe, vec(0, 0), cp.Vector{}, Params{Emit: vec(5, 0), Target: KindStatic})
	if err != nil {
		t.Fatalf("create pipe: %v", err)
	}
	e, _ := w.Registry().Lookup(id)
	if e.Pipe.Target != KindCircle {
		t.Fatalf("non-dynamic target should fall back to circle, got %v", e.Pipe.Target)
	}
	if !near(e.Pipe.Emit, vec(5, 0)) {
		t.Fatalf("emit %v", e.Pipe.Emit)
	}
	e.Pipe.Emit = vec(99, 99)
	again, _ := w.Registry().Lookup(id)
	if !near(again.Pipe.Emit, vec(5, 0)) {
		t.Fatalf("Lookup must return a copy")
	}
}

func TestRegistryLinkPlacement(t *testing.T) {
	w := newTestWorld(t)
	id, err := w.Registry().CreateLink(vec(0, 0), vec(30, 40), false)
	if err != nil {
		t.Fatalf("create link: %v", err)
	}
	e, _ := w.Registry().Lookup(id)
	if e.Kind != KindLine || !e.Locked || e.Dynamic || e.Decorative {
		t.Fatalf("static line flags wrong: %+v", e)
	}
	if !near(e.Position, vec(15, 20)) || e.HalfWidth != 25 {
		t.Fatalf("placement: pos %v half %v", e.Position, e.HalfWidth)
	}
	if _, err := w.Registry().CreateLink(vec(5, 5), vec(5, 5), false); !errors.Is(err, ErrInvalidGesture) {
		t.Fatalf("zero-length line should be invalid, got %v", err)
	}
}

func TestRegistryShapeLookupAndDangling(t *testing.T) {
	w := newTestWorld(t)
	reg := w.Registry()
	id := mustSpawn(t, w, KindBox, 0, 0)
	h, ok := reg.handle(id)
	if !ok {
		t.Fatalf("missing handle")
	}
	if got, ok := reg.EntityForShape(h.Shape); !ok || got != id {
		t.Fatalf("EntityForShape = %v %v", got, ok)
	}

	if err := reg.SetVelocity(id, vec(3, 4)); err != nil {
		t.Fatalf("set velocity: %v", err)
	}
	if err := reg.SetPosition(id, vec(70, 80)); err != nil {
		t.Fatalf("set position: %v", err)
	}
	e, _ := reg.Lookup(id)
	if !near(e.Position, vec(70, 80)) || !near(h.Body.Velocity(), cp.Vector{}) {
		t.Fatalf("SetPosition must move and zero velocity: %+v v=%v", e, h.Body.Velocity())
	}

	if !w.Delete(id) {
		t.Fatalf("delete failed")
	}
	if _, ok := reg.EntityForShape(h.Shape); ok {
		t.Fatalf("shape still resolves after delete")
	}
	for name, err := range map[string]error{
		"position": reg.SetPosition(id, vec(0, 0)),
		"velocity": reg.SetVelocity(id, vec(0, 0)),
		"emission": reg.SetEmission(id, vec(0, 0)),
	} {
		if !errors.Is(err, ErrDanglingReference) {
			t.Fatalf("%s on dead entity: expected dangling, got %v", name, err)
		}
	}
}

func TestRegistryEachIsOrdered(t *testing.T) {
	w := newTestWorld(t)
	var want []ecs.Entity
	for i := 0; i < 4; i++ {
		want = append(want, mustSpawn(t, w, KindBox, float64(i)*40, 0))
	}
	w.Delete(want[1])
	want = append(want[:1], want[2:]...)
	want = append(want, mustSpawn(t, w, KindBox, 500, 0))

	var got []ecs.Entity
	w.Registry().Each(func(e Entity) { got = append(got, e.ID) })
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := 1; i < len(got); i++ {
		if !ecs.Less(got[i-1], got[i]) {
			t.Fatalf("not in id order: %v", got)
		}
	}
}
