package common

import "github.com/jakecoffman/cp"

type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// RectAround returns a rectangle centered on c with the given half extents.
func RectAround(c cp.Vector, halfW, halfH float64) Rect {
	return Rect{MinX: c.X - halfW, MinY: c.Y - halfH, MaxX: c.X + halfW, MaxY: c.Y + halfH}
}

func (r Rect) Contains(p cp.Vector) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

func (r Rect) Intersects(other Rect) bool {
	return r.MinX < other.MaxX &&
		r.MaxX > other.MinX &&
		r.MinY < other.MaxY &&
		r.MaxY > other.MinY
}

func (r Rect) Width() float64  { return r.MaxX - r.MinX }
func (r Rect) Height() float64 { return r.MaxY - r.MinY }
