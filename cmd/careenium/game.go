package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/careenium/prefabs"
	"github.com/milk9111/careenium/sandbox"
	"go.uber.org/zap"
)

// Game adapts a sandbox.World to ebiten: input in Update, the snapshot
// in Draw.
type Game struct {
	world   *sandbox.World
	src     prefabs.Source
	watcher *prefabs.Watcher
	debug   bool
	palette *palette
	log     *zap.Logger
}

func newGame(w *sandbox.World, src prefabs.Source, watcher *prefabs.Watcher, debug bool, log *zap.Logger) *Game {
	kinds, err := prefabs.LoadKinds(src)
	if err != nil {
		log.Warn("palette falls back to defaults", zap.Error(err))
	}
	return &Game{
		world:   w,
		src:     src,
		watcher: watcher,
		debug:   debug,
		palette: newPalette(kinds),
		log:     log.Named("game"),
	}
}

var mouseButtons = []struct {
	mouse  ebiten.MouseButton
	button sandbox.Button
}{
	{ebiten.MouseButtonLeft, sandbox.ButtonPrimary},
	{ebiten.MouseButtonRight, sandbox.ButtonSecondary},
	{ebiten.MouseButtonMiddle, sandbox.ButtonMiddle},
}

var keys = []struct {
	key ebiten.Key
	k   sandbox.Key
}{
	{ebiten.KeySpace, sandbox.KeySpace},
	{ebiten.KeyShift, sandbox.KeyShift},
	{ebiten.KeyUp, sandbox.KeyUp},
	{ebiten.KeyDown, sandbox.KeyDown},
	{ebiten.KeyF, sandbox.KeyF},
	{ebiten.KeyEscape, sandbox.KeyEscape},
}

func (g *Game) Update() error {
	g.pollWatcher()

	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.debug = !g.debug
	}
	for _, k := range keys {
		if inpututil.IsKeyJustPressed(k.key) {
			g.world.OnKeyDown(k.k)
		}
		if inpututil.IsKeyJustReleased(k.key) {
			g.world.OnKeyUp(k.k)
		}
	}

	if _, dy := ebiten.Wheel(); dy != 0 {
		g.world.OnScroll(dy)
	}

	x, y := ebiten.CursorPosition()
	pos := cp.Vector{X: float64(x), Y: float64(y)}
	mods := modifiers()
	g.world.OnPointerMove(pos)
	for _, b := range mouseButtons {
		if inpututil.IsMouseButtonJustPressed(b.mouse) {
			if err := g.world.OnPointerDown(pos, b.button, mods); err != nil {
				return err
			}
		}
		if inpututil.IsMouseButtonJustReleased(b.mouse) {
			if err := g.world.OnPointerUp(pos, b.button, mods); err != nil {
				return err
			}
		}
	}

	return g.world.Tick()
}

func modifiers() sandbox.Modifier {
	var m sandbox.Modifier
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		m |= sandbox.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		m |= sandbox.ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		m |= sandbox.ModAlt
	}
	return m
}

// pollWatcher applies pending prefab changes without blocking the frame.
func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case change, ok := <-g.watcher.Changes:
			if !ok {
				g.watcher = nil
				return
			}
			reload(g.world, g.src, change, g.log)
			if change.Kind == prefabs.ChangeKinds {
				if kinds, err := prefabs.LoadKinds(g.src); err == nil {
					g.palette = newPalette(kinds)
				}
			}
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			g.log.Warn("prefab watcher", zap.Error(err))
		default:
			return
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	s := g.world.Snapshot()
	drawSnapshot(screen, s, g.palette)
	if g.debug {
		drawPhysicsDebug(screen, g.world.Physics().Space(), s.Camera)
	}
	drawHUD(screen, s)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	cfg := g.world.Config()
	return int(cfg.Viewport.Width), int(cfg.Viewport.Height)
}
