package main

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/careenium/prefabs"
	"github.com/milk9111/careenium/sandbox"
	"golang.org/x/image/colornames"
)

type palette struct {
	kinds   map[sandbox.Kind]color.Color
	link    color.Color
	motor   color.Color
	grid    color.Color
	gesture color.Color
	bg      color.Color
}

var defaultKindColors = map[sandbox.Kind]color.Color{
	sandbox.KindCircle: colornames.Steelblue,
	sandbox.KindBox:    colornames.Peru,
	sandbox.KindPlank:  colornames.Sienna,
	sandbox.KindPipe:   colornames.Olivedrab,
	sandbox.KindStatic: colornames.Slategray,
	sandbox.KindLine:   colornames.Gainsboro,
}

// newPalette prefers the colors from kinds.yaml.
func newPalette(kinds prefabs.KindsSpec) *palette {
	p := &palette{
		kinds:   make(map[sandbox.Kind]color.Color, len(defaultKindColors)),
		link:    colornames.Gold,
		motor:   colornames.Orangered,
		grid:    color.RGBA{R: 255, G: 255, B: 255, A: 18},
		gesture: colornames.Lightgrey,
		bg:      colornames.Midnightblue,
	}
	for k, c := range defaultKindColors {
		p.kinds[k] = c
		if spec, ok := kinds.Kind(k.String()); ok && spec.Color != nil && spec.Color.Color != nil {
			p.kinds[k] = spec.Color.Color
		}
	}
	if spec, ok := kinds.Kind("link"); ok && spec.Color != nil && spec.Color.Color != nil {
		p.link = spec.Color.Color
	}
	return p
}

func drawSnapshot(screen *ebiten.Image, s sandbox.Snapshot, p *palette) {
	screen.Fill(p.bg)
	if s.Snap {
		drawGrid(screen, s.Camera, p.grid)
	}

	motors := make(map[uint64]bool, len(s.Motors))
	for _, id := range s.Motors {
		motors[uint64(id)] = true
	}

	for _, e := range s.Entities {
		pos := e.Position.Sub(s.Camera)
		c := p.kinds[e.Kind]
		switch e.Kind {
		case sandbox.KindCircle, sandbox.KindPipe:
			vector.DrawFilledCircle(screen, float32(pos.X), float32(pos.Y), float32(e.Radius), c, true)
			spoke := pos.Add(cp.ForAngle(e.Angle).Mult(e.Radius))
			vector.StrokeLine(screen, float32(pos.X), float32(pos.Y), float32(spoke.X), float32(spoke.Y), 2, p.bg, true)
			if e.Kind == sandbox.KindPipe && e.Emit.LengthSq() > 0 {
				tip := pos.Add(e.Emit.Normalize().Mult(e.Radius * 1.6))
				vector.StrokeLine(screen, float32(pos.X), float32(pos.Y), float32(tip.X), float32(tip.Y), 3, c, true)
			}
		default:
			drawBox(screen, pos, e.Angle, e.HalfWidth, e.HalfHeight, c)
		}
		if motors[uint64(e.ID)] {
			vector.StrokeCircle(screen, float32(pos.X), float32(pos.Y), 4, 2, p.motor, true)
		}
	}

	for _, l := range s.Links {
		drawBox(screen, l.Position.Sub(s.Camera), l.Angle, l.HalfLength, l.HalfWidth, p.link)
	}

	if g := s.Gesture; g.Active {
		from, to := g.From.Sub(s.Camera), g.To.Sub(s.Camera)
		vector.StrokeLine(screen, float32(from.X), float32(from.Y), float32(to.X), float32(to.Y), 1, p.gesture, true)
		if !g.Line {
			vector.StrokeCircle(screen, float32(from.X), float32(from.Y), 6, 1, p.gesture, true)
		}
	}
}

// drawBox fills a rotated rectangle as one butt-capped stroke along its
// long axis.
func drawBox(screen *ebiten.Image, center cp.Vector, angle, halfW, halfH float64, c color.Color) {
	axis := cp.ForAngle(angle).Mult(halfW)
	a, b := center.Sub(axis), center.Add(axis)
	vector.StrokeLine(screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), float32(2*halfH), c, true)
}

func drawGrid(screen *ebiten.Image, offset cp.Vector, c color.Color) {
	const step = 32.0
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	for x := -math.Mod(offset.X, step); x < float64(w); x += step {
		vector.StrokeLine(screen, float32(x), 0, float32(x), float32(h), 1, c, false)
	}
	for y := -math.Mod(offset.Y, step); y < float64(h); y += step {
		vector.StrokeLine(screen, 0, float32(y), float32(w), float32(y), 1, c, false)
	}
}

func drawHUD(screen *ebiten.Image, s sandbox.Snapshot) {
	tool := s.Tool.Kind.String()
	if s.Tool.Joint {
		tool = s.Tool.JointKind.String() + " joint"
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"FPS %.1f  tick %d  mode %s  tool %s  snap %v\nentities %d  joints %d  bodies %d  step %s  frame %s",
		ebiten.ActualFPS(), s.Tick, s.Mode, tool, s.Snap,
		s.Stats.Entities, s.Stats.Joints, s.Stats.Bodies, s.Stats.StepTime, s.Stats.ProcessTime))
}
