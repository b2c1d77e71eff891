package main

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
)

// drawPhysicsDebug outlines every shape and constraint in the space.
func drawPhysicsDebug(screen *ebiten.Image, space *cp.Space, offset cp.Vector) {
	if space == nil || screen == nil {
		return
	}
	cp.DrawSpace(space, &spaceDrawer{screen: screen, offset: offset})
}

// spaceDrawer implements cp.Drawer in screen coordinates.
type spaceDrawer struct {
	screen *ebiten.Image
	offset cp.Vector
}

func (d *spaceDrawer) line(a, b cp.Vector, c color.Color) {
	a, b = a.Sub(d.offset), b.Sub(d.offset)
	vector.StrokeLine(d.screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), 1, c, false)
}

func (d *spaceDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	c := toRGBA(outline)
	const steps = 20
	prev := cp.Vector{X: pos.X + radius, Y: pos.Y}
	for i := 1; i <= steps; i++ {
		th := float64(i) * (2 * math.Pi / steps)
		cur := cp.Vector{X: pos.X + math.Cos(th)*radius, Y: pos.Y + math.Sin(th)*radius}
		d.line(prev, cur, c)
		prev = cur
	}
	d.line(pos, pos.Add(cp.ForAngle(angle).Mult(radius)), c)
}

func (d *spaceDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.line(a, b, toRGBA(fill))
}

func (d *spaceDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.line(a, b, toRGBA(outline))
	if radius > 0 {
		d.DrawCircle(a, 0, radius, outline, fill, data)
		d.DrawCircle(b, 0, radius, outline, fill, data)
	}
}

func (d *spaceDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	c := toRGBA(outline)
	for i := 0; i < count; i++ {
		d.line(verts[i], verts[(i+1)%count], c)
	}
}

func (d *spaceDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	c := toRGBA(fill)
	l := size / 2
	d.line(cp.Vector{X: pos.X - l, Y: pos.Y}, cp.Vector{X: pos.X + l, Y: pos.Y}, c)
	d.line(cp.Vector{X: pos.X, Y: pos.Y - l}, cp.Vector{X: pos.X, Y: pos.Y + l}, c)
}

func (d *spaceDrawer) Flags() uint {
	return cp.DRAW_SHAPES | cp.DRAW_CONSTRAINTS
}

func (d *spaceDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1.0, B: 0.2, A: 1.0}
}

func (d *spaceDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	if shape == nil || shape.Body() == nil {
		return cp.FColor{R: 1, G: 1, B: 1, A: 1}
	}
	switch shape.Body().GetType() {
	case cp.BODY_STATIC:
		return cp.FColor{R: 0.4, G: 0.7, B: 1.0, A: 1.0}
	case cp.BODY_KINEMATIC:
		return cp.FColor{R: 1.0, G: 0.85, B: 0.2, A: 1.0}
	}
	return cp.FColor{R: 0.9, G: 0.4, B: 0.9, A: 1.0}
}

func (d *spaceDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 0.7, G: 0.7, B: 0.7, A: 1.0}
}

func (d *spaceDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1.0, G: 0.1, B: 0.1, A: 1.0}
}

func (d *spaceDrawer) Data() interface{} {
	return nil
}

func toRGBA(c cp.FColor) color.RGBA {
	clamp := func(v float32) uint8 {
		return uint8(math.Max(0, math.Min(1, float64(v))) * 255)
	}
	return color.RGBA{R: clamp(c.R), G: clamp(c.G), B: clamp(c.B), A: clamp(c.A)}
}
