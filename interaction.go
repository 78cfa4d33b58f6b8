package elegy

import (
	"math"
	"math/rand"
)

const (
	// tapMaxDuration and tapMaxDistance bound what still counts as a tap.
	tapMaxDuration = 0.3  // seconds
	tapMaxDistance = 30.0 // pixels
	// holdMinDuration is how long a pointer must stay down to become a hold.
	holdMinDuration = 0.5

	// twoFingerWindow is how close together two taps must land to read as
	// a two-finger tap.
	twoFingerWindow = 0.25

	explosionForce  = 800.0
	explosionRadius = 400.0

	// Drag spawning: base rate scales with pointer speed, multiplied while
	// held, hard-capped.
	dragRateMin        = 8.0
	dragRateMax        = 15.0
	holdRateMultiplier = 8.0
	maxSpawnRate       = 120.0

	// Per-mode force constants.
	attractForce       = 80.0
	disperseForce      = 100.0
	disperseUpwardBias = 30.0
	rippleForce        = 25.0
	gravityForce       = 140.0

	intensifySaturationBoost = 0.3
	intensifyScaleBoost      = 0.15

	tapBurstCount = 24

	maxPointers = 10
)

// InteractionMode is the act-dependent meaning of a held pointer.
type InteractionMode int

const (
	ModeAttract   InteractionMode = iota // particles fall toward the pointer
	ModeRipple                           // radial pushes that decay with distance
	ModeIntensify                        // nearby particles saturate and grow
	ModeDisperse                         // particles flee, drifting upward
	ModeGravity                          // a heavy well that bends trajectories
)

// String returns the mode's name.
func (m InteractionMode) String() string {
	switch m {
	case ModeAttract:
		return "Attract"
	case ModeRipple:
		return "Ripple"
	case ModeIntensify:
		return "Intensify"
	case ModeDisperse:
		return "Disperse"
	case ModeGravity:
		return "Gravity"
	default:
		return "Unknown"
	}
}

// pointerState tracks one pointer from down to up.
type pointerState struct {
	down       bool
	held       bool
	startX     float64
	startY     float64
	x, y       float64
	prevX      float64
	prevY      float64
	downFor    float64 // seconds since press
	travel     float64 // total path length since press
	spawnAccum float64
}

// inputEventKind discriminates queued host input.
type inputEventKind uint8

const (
	eventDown inputEventKind = iota
	eventMove
	eventUp
	eventSecondary
)

type inputEvent struct {
	kind inputEventKind
	id   int
	x, y float64
}

// PointerDown reports a press for pointer id (0 is the mouse; touches use
// 1-9). Safe for concurrent use; coalesced into the next Step.
func (e *Engine) PointerDown(id int, x, y float64) {
	e.queueInput(inputEvent{kind: eventDown, id: id, x: x, y: y})
}

// PointerMove reports motion for a pressed pointer.
func (e *Engine) PointerMove(id int, x, y float64) {
	e.queueInput(inputEvent{kind: eventMove, id: id, x: x, y: y})
}

// PointerUp reports a release.
func (e *Engine) PointerUp(id int) {
	e.queueInput(inputEvent{kind: eventUp, id: id})
}

// SecondaryTap reports a two-finger tap or secondary click: an immediate
// hyperspace jump.
func (e *Engine) SecondaryTap() {
	e.queueInput(inputEvent{kind: eventSecondary})
}

func (e *Engine) queueInput(ev inputEvent) {
	e.inputMu.Lock()
	e.inputQueue = append(e.inputQueue, ev)
	e.inputMu.Unlock()
}

// processInput drains queued host events and advances gesture state by dt.
// Runs first in Step so spawns and jumps land in the same tick as the
// gesture that caused them.
func (e *Engine) processInput(dt float64, params ActParams) {
	e.inputMu.Lock()
	events := append(e.inputScratch[:0], e.inputQueue...)
	e.inputQueue = e.inputQueue[:0]
	e.inputMu.Unlock()
	e.inputScratch = events

	for i := range events {
		ev := &events[i]
		switch ev.kind {
		case eventDown:
			e.pointerDown(ev.id, ev.x, ev.y)
		case eventMove:
			e.pointerMove(ev.id, ev.x, ev.y)
		case eventUp:
			e.pointerUp(ev.id, params)
		case eventSecondary:
			e.jump()
		}
	}

	e.sinceTap += dt

	for id := range e.pointers {
		p := &e.pointers[id]
		if !p.down {
			continue
		}
		p.downFor += dt
		if !p.held && p.downFor >= holdMinDuration {
			p.held = true
		}
		e.dragSpawns(p, dt, params)
		e.applyModeForce(p, dt, params)
	}
}

func (e *Engine) pointerDown(id int, x, y float64) {
	if id < 0 || id >= maxPointers {
		return
	}
	p := &e.pointers[id]
	*p = pointerState{down: true, startX: x, startY: y, x: x, y: y, prevX: x, prevY: y}
}

func (e *Engine) pointerMove(id int, x, y float64) {
	if id < 0 || id >= maxPointers {
		return
	}
	p := &e.pointers[id]
	if !p.down {
		return
	}
	p.travel += math.Hypot(x-p.x, y-p.y)
	p.prevX, p.prevY = p.x, p.y
	p.x, p.y = x, y
}

// pointerUp classifies the finished gesture. A tap detonates an explosion
// burst; two taps inside the pairing window read as a two-finger tap and
// jump instead.
func (e *Engine) pointerUp(id int, params ActParams) {
	if id < 0 || id >= maxPointers {
		return
	}
	p := &e.pointers[id]
	if !p.down {
		return
	}
	isTap := p.downFor <= tapMaxDuration && p.travel <= tapMaxDistance
	x, y := p.x, p.y
	*p = pointerState{}

	if !isTap {
		return
	}
	if e.sinceTap <= twoFingerWindow {
		e.sinceTap = twoFingerWindow + 1
		e.jump()
		return
	}
	e.sinceTap = 0
	e.explode(x, y, params)
}

// explode applies an outward impulse with inverse falloff and bursts fresh
// particles from the tap point.
func (e *Engine) explode(x, y float64, params ActParams) {
	for i := range e.pool.slots {
		s := &e.pool.slots[i]
		if !s.active {
			continue
		}
		dx := s.x - x
		dy := s.y - y
		dist := math.Hypot(dx, dy)
		if dist > explosionRadius {
			continue
		}
		if dist < 1 {
			dist = 1
		}
		impulse := explosionForce * (1 - dist/explosionRadius)
		s.vx += dx / dist * impulse
		s.vy += dy / dist * impulse
	}

	for i := 0; i < tapBurstCount; i++ {
		angle := rand.Float64() * 2 * math.Pi
		speed := Range{Min: 60, Max: 320}.Random()
		e.pool.Queue(SpawnRequest{
			X:      x,
			Y:      y,
			VX:     math.Cos(angle) * speed,
			VY:     math.Sin(angle) * speed,
			Color:  spawnColor(SourcePointer, params.Saturation),
			Bloom:  0.5,
			Source: SourcePointer,
		})
	}
}

// dragSpawns emits particles along a moving pointer. The rate rises with
// pointer speed, multiplies while held, and is capped.
func (e *Engine) dragSpawns(p *pointerState, dt float64, params ActParams) {
	speed := math.Hypot(p.x-p.prevX, p.y-p.prevY) / math.Max(dt, 1e-6)
	rate := mapRange(speed, 0, 800, dragRateMin, dragRateMax)
	if p.held {
		rate *= holdRateMultiplier
	}
	if rate > maxSpawnRate {
		rate = maxSpawnRate
	}

	p.spawnAccum += rate * dt
	for p.spawnAccum >= 1 {
		p.spawnAccum--
		jitter := 8.0
		e.pool.Queue(SpawnRequest{
			X:      p.x + (rand.Float64()-0.5)*jitter,
			Y:      p.y + (rand.Float64()-0.5)*jitter,
			VX:     (p.x - p.prevX) * 6 * (0.5 + rand.Float64()),
			VY:     (p.y - p.prevY) * 6 * (0.5 + rand.Float64()),
			Color:  spawnColor(SourcePointer, params.Saturation),
			Bloom:  0.4,
			Source: SourcePointer,
		})
	}
}

// applyModeForce steers existing particles around a held pointer according
// to the act's interaction mode.
func (e *Engine) applyModeForce(p *pointerState, dt float64, params ActParams) {
	for i := range e.pool.slots {
		s := &e.pool.slots[i]
		if !s.active {
			continue
		}
		dx := p.x - s.x
		dy := p.y - s.y
		dist := math.Hypot(dx, dy)
		if dist > explosionRadius || dist < 1 {
			continue
		}
		nx := dx / dist
		ny := dy / dist
		falloff := 1 - dist/explosionRadius

		switch params.Mode {
		case ModeAttract:
			s.vx += nx * attractForce * falloff * dt * 60
			s.vy += ny * attractForce * falloff * dt * 60
		case ModeRipple:
			// Pulsed outward push keyed to the particle's own phase so the
			// field shimmers instead of uniformly repelling.
			wave := math.Sin(e.elapsed*4 + dist*0.05)
			s.vx -= nx * rippleForce * falloff * wave * dt * 60
			s.vy -= ny * rippleForce * falloff * wave * dt * 60
		case ModeIntensify:
			s.bloom = float32(clamp(float64(s.bloom)+intensifySaturationBoost*falloff*dt, 0, 1))
			s.baseSize *= 1 + intensifyScaleBoost*falloff*dt
		case ModeDisperse:
			s.vx -= nx * disperseForce * falloff * dt * 60
			s.vy -= ny*disperseForce*falloff*dt*60 + disperseUpwardBias*dt*60
		case ModeGravity:
			// Stronger near the pointer, like a well rather than a spring.
			pull := gravityForce * falloff * falloff
			s.vx += nx * pull * dt * 60
			s.vy += ny * pull * dt * 60
		}
	}
}
