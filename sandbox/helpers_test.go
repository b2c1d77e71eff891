package sandbox

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/careenium/config"
	"github.com/milk9111/careenium/ecs"
	"github.com/milk9111/careenium/prefabs"
	"go.uber.org/zap/zaptest"
)

func testKinds(t *testing.T) prefabs.KindsSpec {
	t.Helper()
	kinds, err := prefabs.LoadKinds(prefabs.Source{})
	if err != nil {
		t.Fatalf("load kinds: %v", err)
	}
	return kinds
}

// newTestWorld builds a world without grid snapping in no-gravity mode.
func newTestWorld(t *testing.T, mutate ...func(*config.Config)) *World {
	t.Helper()
	return newTestWorldWithKinds(t, testKinds(t), mutate...)
}

func newTestWorldWithKinds(t *testing.T, kinds prefabs.KindsSpec, mutate ...func(*config.Config)) *World {
	t.Helper()
	cfg := config.Default()
	cfg.World.Snap = false
	cfg.World.Mode = "no_gravity"
	for _, m := range mutate {
		m(cfg)
	}
	w, err := NewWorld(cfg, kinds, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	return w
}

func vec(x, y float64) cp.Vector {
	return cp.Vector{X: x, Y: y}
}

func mustSpawn(t *testing.T, w *World, kind Kind, x, y float64) ecs.Entity {
	t.Helper()
	id, err := w.Spawn(kind, vec(x, y), cp.Vector{}, Params{})
	if err != nil {
		t.Fatalf("spawn %s: %v", kind, err)
	}
	return id
}

func near(a, b cp.Vector) bool {
	return math.Abs(a.X-b.X) < 1e-6 && math.Abs(a.Y-b.Y) < 1e-6
}

// countKind counts live entities of kind, decorative ones included.
func countKind(w *World, kind Kind) int {
	n := 0
	w.Registry().Each(func(e Entity) {
		if e.Kind == kind {
			n++
		}
	})
	return n
}

func countDecorative(w *World) int {
	n := 0
	w.Registry().Each(func(e Entity) {
		if e.Decorative {
			n++
		}
	})
	return n
}

func countConstraints(w *World) int {
	n := 0
	w.Physics().Space().EachConstraint(func(*cp.Constraint) { n++ })
	return n
}

func click(t *testing.T, w *World, from, to cp.Vector, button Button, mods Modifier) {
	t.Helper()
	if err := w.OnPointerDown(from, button, mods); err != nil {
		t.Fatalf("pointer down: %v", err)
	}
	w.OnPointerMove(to)
	if err := w.OnPointerUp(to, button, mods); err != nil {
		t.Fatalf("pointer up: %v", err)
	}
}
