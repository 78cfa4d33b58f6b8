package elegy

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// RunConfig configures the window created by Run.
type RunConfig struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	// ShowStats draws the FPS / particle / act overlay.
	ShowStats bool
}

// Run opens a window, wires pointer and touch input to the engine, and
// drives the update/draw loop until the window closes.
func Run(e *Engine, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = e.cfg.Width
	}
	if cfg.Height <= 0 {
		cfg.Height = e.cfg.Height
	}

	pipeline, err := NewPipeline(cfg.Width, cfg.Height)
	if err != nil {
		return err
	}

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.Fullscreen {
		ebiten.SetFullscreen(true)
	}

	g := &game{engine: e, pipeline: pipeline, cfg: cfg}
	defer e.Close()
	return ebiten.RunGame(g)
}

// game adapts Engine and Pipeline to ebiten.Game.
type game struct {
	engine   *Engine
	pipeline *Pipeline
	cfg      RunConfig

	intro intro

	mouseDown    bool
	rightDown    bool
	touchIDs     []ebiten.TouchID
	touchSlots   [maxPointers]ebiten.TouchID
	touchUsed    [maxPointers]bool
	touchIgnored [maxPointers]bool
}

func (g *game) Update() error {
	g.processMouse()
	g.processTouches()

	dt := stepDT(ebiten.TPS())
	if g.mouseDown || g.rightDown || len(g.touchIDs) > 0 {
		g.intro.skip()
	}
	g.intro.tick(dt)

	g.engine.Step(dt)
	return nil
}

// stepDT converts the host tick rate into a simulation step.
// SyncWithFPS reports a negative TPS; fall back to 60 Hz.
func stepDT(tps int) float64 {
	if tps <= 0 {
		return 1.0 / 60.0
	}
	return 1.0 / float64(tps)
}

// processMouse maps the mouse to pointer 0 and the secondary button to the
// hyperspace gesture.
func (g *game) processMouse() {
	x, y := ebiten.CursorPosition()
	down := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	switch {
	case down && !g.mouseDown:
		g.engine.PointerDown(0, float64(x), float64(y))
	case down:
		g.engine.PointerMove(0, float64(x), float64(y))
	case g.mouseDown:
		g.engine.PointerUp(0)
	}
	g.mouseDown = down

	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	if right && !g.rightDown {
		g.engine.SecondaryTap()
	}
	g.rightDown = right
}

// processTouches maps ebiten touch IDs to pointer slots 1-9. Two touches
// beginning in the same frame read as a two-finger tap.
func (g *game) processTouches() {
	g.touchIDs = ebiten.AppendTouchIDs(g.touchIDs[:0])

	// Release slots whose touch ended.
	for slot := 1; slot < maxPointers; slot++ {
		if !g.touchUsed[slot] {
			continue
		}
		alive := false
		for _, tid := range g.touchIDs {
			if tid == g.touchSlots[slot] {
				alive = true
				break
			}
		}
		if !alive {
			g.touchUsed[slot] = false
			if !g.touchIgnored[slot] {
				g.engine.PointerUp(slot)
			}
			g.touchIgnored[slot] = false
		}
	}

	var fresh []ebiten.TouchID
	for _, tid := range g.touchIDs {
		slot := g.slotFor(tid)
		if slot == 0 {
			fresh = append(fresh, tid)
			continue
		}
		if g.touchIgnored[slot] {
			continue
		}
		x, y := ebiten.TouchPosition(tid)
		g.engine.PointerMove(slot, float64(x), float64(y))
	}

	// Two fingers landing in the same frame are one gesture, not two
	// pointers; claim their slots but keep them out of the gesture state
	// so they never read as individual taps.
	twoFinger := len(fresh) >= 2
	if twoFinger {
		g.engine.SecondaryTap()
	}
	for _, tid := range fresh {
		slot := g.claimSlot(tid)
		if slot == 0 {
			continue
		}
		if twoFinger {
			g.touchIgnored[slot] = true
			continue
		}
		x, y := ebiten.TouchPosition(tid)
		g.engine.PointerDown(slot, float64(x), float64(y))
	}
}

func (g *game) slotFor(tid ebiten.TouchID) int {
	for slot := 1; slot < maxPointers; slot++ {
		if g.touchUsed[slot] && g.touchSlots[slot] == tid {
			return slot
		}
	}
	return 0
}

func (g *game) claimSlot(tid ebiten.TouchID) int {
	for slot := 1; slot < maxPointers; slot++ {
		if !g.touchUsed[slot] {
			g.touchUsed[slot] = true
			g.touchSlots[slot] = tid
			return slot
		}
	}
	return 0
}

func (g *game) Draw(screen *ebiten.Image) {
	g.pipeline.Draw(screen, g.engine)

	if lines := g.intro.lines(); len(lines) > 0 {
		y := g.cfg.Height/2 - len(lines)*8
		for i, line := range lines {
			// DebugPrint glyphs are 6px wide; center each line roughly.
			x := g.cfg.Width/2 - len(line)*3
			ebitenutil.DebugPrintAt(screen, line, x, y+i*16)
		}
	}

	if g.cfg.ShowStats {
		tl := g.engine.Timeline()
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf(
			"FPS: %.0f  TPS: %.0f\nparticles: %d\nact %d %s (%.0f%%)\nvolume: %.2f",
			ebiten.ActualFPS(), ebiten.ActualTPS(),
			g.engine.Pool().ActiveCount(),
			int(tl.Act())+1, tl.Act(), tl.Progress()*100,
			g.engine.Mixer().Level(),
		), 4, 4)
	}
}

func (g *game) Layout(_, _ int) (int, int) {
	return g.cfg.Width, g.cfg.Height
}
