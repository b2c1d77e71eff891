package physics

import (
	"errors"
	"testing"

	"github.com/jakecoffman/cp"
)

func circleSpec(x, y float64) BodySpec {
	return BodySpec{
		Body:     BodyDynamic,
		Shape:    ShapeCircle,
		Position: cp.Vector{X: x, Y: y},
		Mass:     12,
		Radius:   16,
		Friction: 0.95,
	}
}

func TestAllocateValidation(t *testing.T) {
	tests := []struct {
		name    string
		spec    BodySpec
		wantErr bool
	}{
		{name: "dynamic_circle", spec: circleSpec(0, 0)},
		{name: "kinematic_box", spec: BodySpec{Body: BodyKinematic, Shape: ShapeBox, Width: 32, Height: 32}},
		{name: "static_box", spec: BodySpec{Body: BodyStatic, Shape: ShapeBox, Width: 64, Height: 2}},
		{name: "zero_radius", spec: BodySpec{Body: BodyDynamic, Shape: ShapeCircle, Mass: 1}, wantErr: true},
		{name: "massless_dynamic", spec: BodySpec{Body: BodyDynamic, Shape: ShapeBox, Width: 1, Height: 1}, wantErr: true},
		{name: "bad_shape", spec: BodySpec{Body: BodyKinematic, Shape: ShapeType(9), Radius: 1}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := New(Options{})
			h, err := w.Allocate(tc.spec)
			if tc.wantErr {
				if !errors.Is(err, ErrAllocation) {
					t.Fatalf("expected ErrAllocation, got %v", err)
				}
				if w.Bodies() != 0 {
					t.Fatalf("failed allocation must not leave bodies behind")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !h.Valid() || !w.Space().ContainsShape(h.Shape) || !w.Space().ContainsBody(h.Body) {
				t.Fatalf("handle not registered with the space")
			}
		})
	}
}

func TestAllocateRespectsBudget(t *testing.T) {
	w := New(Options{MaxBodies: 2})
	for i := 0; i < 2; i++ {
		if _, err := w.Allocate(circleSpec(float64(i)*40, 0)); err != nil {
			t.Fatalf("allocation %d failed: %v", i, err)
		}
	}
	if _, err := w.Allocate(circleSpec(100, 0)); !errors.Is(err, ErrAllocation) {
		t.Fatalf("expected budget error, got %v", err)
	}
}

func TestReleaseTwiceIsHarmless(t *testing.T) {
	w := New(Options{})
	h, err := w.Allocate(circleSpec(0, 0))
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	w.Release(h)
	w.Release(h)
	if w.Bodies() != 0 {
		t.Fatalf("expected 0 bodies, got %d", w.Bodies())
	}
	if w.Space().ContainsShape(h.Shape) {
		t.Fatalf("shape still in space")
	}
}

func TestPointQueryFilters(t *testing.T) {
	w := New(Options{})
	solid, err := w.Allocate(circleSpec(100, 100))
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	deco, err := w.Allocate(BodySpec{
		Body:       BodyKinematic,
		Shape:      ShapeBox,
		Position:   cp.Vector{X: 300, Y: 300},
		Width:      40,
		Height:     4,
		Decorative: true,
	})
	if err != nil {
		t.Fatalf("allocate decorative: %v", err)
	}

	tests := []struct {
		name   string
		at     cp.Vector
		filter cp.ShapeFilter
		want   *cp.Shape
	}{
		{"empty_space", cp.Vector{X: -500, Y: -500}, PickFilter, nil},
		{"solid_center", cp.Vector{X: 100, Y: 100}, PickFilter, solid.Shape},
		{"decorative_skipped", cp.Vector{X: 300, Y: 300}, PickFilter, nil},
		{"decorative_with_all", cp.Vector{X: 300, Y: 300}, AllFilter, deco.Shape},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := w.PointQuery(tc.at, 2, tc.filter)
			if tc.want == nil {
				if ok || got != nil {
					t.Fatalf("expected no shape, got %v", got)
				}
				return
			}
			if !ok || got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestConnectRequiresBodiesInSpace(t *testing.T) {
	w := New(Options{})
	a, _ := w.Allocate(circleSpec(0, 0))
	b, _ := w.Allocate(circleSpec(64, 0))
	pin := func(a, b *cp.Body) *cp.Constraint {
		return cp.NewPinJoint(a, b, cp.Vector{}, cp.Vector{})
	}

	c, err := w.Connect(a.Body, b.Body, pin)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if !w.Space().ContainsConstraint(c) {
		t.Fatalf("constraint not added")
	}
	if !w.RemoveConstraint(c) || w.RemoveConstraint(c) {
		t.Fatalf("constraint should be removed exactly once")
	}

	w.Release(b)
	if _, err := w.Connect(a.Body, b.Body, pin); !errors.Is(err, ErrAllocation) {
		t.Fatalf("expected ErrAllocation for released body, got %v", err)
	}
	if _, err := w.Connect(a.Body, w.StaticBody(), pin); err != nil {
		t.Fatalf("static anchor should be accepted: %v", err)
	}
}

func TestStepAppliesPreset(t *testing.T) {
	tests := []struct {
		name   string
		preset Preset
		fall   bool
	}{
		{"gravity", PresetGravity, true},
		{"setup", PresetSetup, false},
		{"no_gravity", PresetNoGravity, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := New(Options{Substeps: 2})
			w.Apply(tc.preset)
			h, err := w.Allocate(circleSpec(0, 0))
			if err != nil {
				t.Fatalf("allocate: %v", err)
			}
			for i := 0; i < 10; i++ {
				w.Step(1.0 / 80.0)
			}
			y := h.Body.Position().Y
			if tc.fall && y <= 0 {
				t.Fatalf("expected body to fall, y=%v", y)
			}
			if !tc.fall && y != 0 {
				t.Fatalf("expected body to stay, y=%v", y)
			}
		})
	}
}

func TestGrabPullsBody(t *testing.T) {
	w := New(Options{})
	w.Apply(PresetNoGravity)
	h, _ := w.Allocate(circleSpec(0, 0))
	g, err := w.Grab(h.Body, cp.Vector{}, 50000)
	if err != nil {
		t.Fatalf("grab: %v", err)
	}
	for i := 0; i < 60; i++ {
		g.Move(cp.Vector{X: 100, Y: 0}, 1.0/80.0)
		w.Step(1.0 / 80.0)
	}
	if h.Body.Position().X <= 10 {
		t.Fatalf("grabbed body did not follow, x=%v", h.Body.Position().X)
	}
	w.Ungrab(g)
	w.Ungrab(g)
	count := 0
	w.Space().EachConstraint(func(*cp.Constraint) { count++ })
	if count != 0 {
		t.Fatalf("expected mouse joint removed, %d constraints left", count)
	}
}
