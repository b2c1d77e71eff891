package common

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
)

func TestSnap(t *testing.T) {
	cases := []struct {
		name string
		v    float64
		grid float64
		want float64
	}{
		{"exact", 64, 32, 64},
		{"round_down", 79, 32, 64},
		{"round_up", 80, 32, 96},
		{"negative", -17, 32, -32},
		{"no_grid", 13.5, 0, 13.5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Snap(c.v, c.grid); got != c.want {
				t.Fatalf("Snap(%v, %v) = %v, want %v", c.v, c.grid, got, c.want)
			}
		})
	}
}

func TestAxisLock(t *testing.T) {
	anchor := cp.Vector{X: 10, Y: 10}
	if got := AxisLock(anchor, cp.Vector{X: 50, Y: 14}); got != (cp.Vector{X: 50, Y: 10}) {
		t.Fatalf("expected horizontal lock, got %v", got)
	}
	if got := AxisLock(anchor, cp.Vector{X: 12, Y: -40}); got != (cp.Vector{X: 10, Y: -40}) {
		t.Fatalf("expected vertical lock, got %v", got)
	}
}

func TestPlaceLink(t *testing.T) {
	cases := []struct {
		name      string
		a, b      cp.Vector
		wantMid   cp.Vector
		wantHalf  float64
		wantAngle float64
	}{
		{"horizontal", cp.Vector{X: 0, Y: 0}, cp.Vector{X: 100, Y: 0}, cp.Vector{X: 50, Y: 0}, 50, 0},
		{"vertical_down", cp.Vector{X: 10, Y: 10}, cp.Vector{X: 10, Y: 50}, cp.Vector{X: 10, Y: 30}, 20, math.Pi / 2},
		{"diagonal_back", cp.Vector{X: 30, Y: 40}, cp.Vector{X: 0, Y: 0}, cp.Vector{X: 15, Y: 20}, 25, math.Atan2(-40, -30)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			mid, half, angle := PlaceLink(c.a, c.b)
			if mid != c.wantMid {
				t.Fatalf("mid = %v, want %v", mid, c.wantMid)
			}
			if math.Abs(half-c.wantHalf) > 1e-9 {
				t.Fatalf("half = %v, want %v", half, c.wantHalf)
			}
			if math.Abs(angle-c.wantAngle) > 1e-9 {
				t.Fatalf("angle = %v, want %v", angle, c.wantAngle)
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	r := RectAround(cp.Vector{X: 0, Y: 0}, 10, 5)
	if !r.Contains(cp.Vector{X: 10, Y: -5}) {
		t.Fatalf("edge point should be contained")
	}
	if r.Contains(cp.Vector{X: 10.5, Y: 0}) {
		t.Fatalf("point beyond MaxX should not be contained")
	}
	if r.Width() != 20 || r.Height() != 10 {
		t.Fatalf("unexpected size %vx%v", r.Width(), r.Height())
	}
}
