package elegy

import (
	"math"
	"math/rand"
	"sync"
)

// Config controls engine construction.
type Config struct {
	// Width and Height are the world dimensions in pixels.
	Width, Height int
	// Audio enables the ambient speaker sink. The engagement signal is
	// computed either way; this only controls whether it is audible.
	Audio bool
	// PoolCapacity and MaxActive override the pool defaults when positive.
	PoolCapacity, MaxActive int
}

// Engine owns the whole simulation: the particle pool, the act timeline,
// the audio-reactive mixer, and gesture state. One call to Step advances
// everything by one deterministic tick.
type Engine struct {
	cfg Config

	pool     *Pool
	timeline *Timeline
	mixer    *Mixer
	ambient  *AmbientPlayer

	pointers [maxPointers]pointerState
	sinceTap float64

	inputMu      sync.Mutex
	inputQueue   []inputEvent
	inputScratch []inputEvent

	elapsed      float64
	ambientAccum float64

	// hyperFlash decays after a hyperspace jump; the renderer reads it
	// for the white-out frame.
	hyperFlash float64
}

// New creates an engine. Zero Width/Height default to 1280x720.
func New(cfg Config) *Engine {
	if cfg.Width <= 0 {
		cfg.Width = 1280
	}
	if cfg.Height <= 0 {
		cfg.Height = 720
	}
	e := &Engine{
		cfg:      cfg,
		pool:     NewPool(cfg.PoolCapacity, cfg.MaxActive),
		timeline: NewTimeline(),
		mixer:    NewMixer(),
		// Outside the pairing window, so the first tap is never misread
		// as half of a two-finger tap.
		sinceTap: twoFingerWindow + 1,
	}
	if cfg.Audio {
		e.ambient = NewAmbientPlayer()
	}
	return e
}

// Pool returns the particle pool.
func (e *Engine) Pool() *Pool { return e.pool }

// Timeline returns the act timeline.
func (e *Engine) Timeline() *Timeline { return e.timeline }

// Mixer returns the audio-reactive mixer.
func (e *Engine) Mixer() *Mixer { return e.mixer }

// Elapsed returns total simulated time in seconds.
func (e *Engine) Elapsed() float64 { return e.elapsed }

// HyperFlash returns the current white-out intensity in [0, 1].
func (e *Engine) HyperFlash() float64 { return e.hyperFlash }

// Close releases the audio sink.
func (e *Engine) Close() {
	if e.ambient != nil {
		e.ambient.Close()
	}
}

// Step advances the simulation by dt seconds: input gestures, timeline,
// spawning, queued spawns, motion, and the audio signal, in that order.
func (e *Engine) Step(dt float64) {
	e.elapsed += dt
	params := e.timeline.Params()

	e.processInput(dt, params)

	if e.timeline.Advance(dt) {
		e.hyperspace()
	}
	params = e.timeline.Params()

	e.ambientSpawns(dt, params)
	e.beatSpawns(params)

	e.pool.Drain()
	e.advanceParticles(dt, params)

	e.mixer.Update(dt, e.pool.ActiveCount(), params.Intensity)
	if e.ambient != nil {
		e.ambient.SetGain(e.mixer.Level())
	}

	if e.hyperFlash > 0 {
		e.hyperFlash = clamp(e.hyperFlash-dt/0.6, 0, 1)
	}
}

// hyperspace empties the pool into a scatter burst and arms the white-out
// flash. The cycle wrap calls this directly; gestures go through jump.
func (e *Engine) hyperspace() {
	cx := float64(e.cfg.Width) / 2
	cy := float64(e.cfg.Height) / 2
	e.pool.ClearBurst(cx, cy)
	e.hyperFlash = 1
}

// jump is the gesture-initiated hyperspace: skip to the next act, then
// burst. The wrap case fires hyperspace from Step instead, where the
// timeline has already advanced itself.
func (e *Engine) jump() {
	e.timeline.Skip()
	e.hyperspace()
}

// ambientSpawns drifts the population toward the act's density target.
// The fill rate follows the audio level, plus a deficit term so near-empty
// acts refill visibly instead of over minutes.
func (e *Engine) ambientSpawns(dt float64, params ActParams) {
	deficit := params.Density - e.pool.ActiveCount()
	if deficit <= 0 {
		e.ambientAccum = 0
		return
	}
	rate := e.mixer.AmbientSpawnRate() + float64(deficit)*0.05
	e.ambientAccum += rate * dt
	for e.ambientAccum >= 1 {
		e.ambientAccum--
		e.pool.Queue(SpawnRequest{
			X:      rand.Float64() * float64(e.cfg.Width),
			Y:      rand.Float64() * float64(e.cfg.Height),
			VX:     (rand.Float64() - 0.5) * 40,
			VY:     (rand.Float64() - 0.5) * 40,
			Color:  spawnColor(SourceAmbient, params.Saturation),
			Bloom:  0.2,
			Source: SourceAmbient,
		})
	}
}

// beatSpawns turns the mixer's latest beat into a burst. Placement varies
// with strength: soft beats scatter anywhere, medium beats ripple around
// the center, strong beats burst outward from it.
func (e *Engine) beatSpawns(params ActParams) {
	strength, amp := e.mixer.ConsumeBeat()
	if strength == BeatNone {
		return
	}
	count := beatSpawnCount(strength)
	cx := float64(e.cfg.Width) / 2
	cy := float64(e.cfg.Height) / 2

	for i := 0; i < count; i++ {
		var req SpawnRequest
		switch strength {
		case BeatSoft:
			req.X = rand.Float64() * float64(e.cfg.Width)
			req.Y = rand.Float64() * float64(e.cfg.Height)
			req.VX = (rand.Float64() - 0.5) * 60
			req.VY = (rand.Float64() - 0.5) * 60
		case BeatMedium:
			angle := rand.Float64() * 2 * math.Pi
			radius := Range{Min: 80, Max: 280}.Random()
			req.X = cx + math.Cos(angle)*radius
			req.Y = cy + math.Sin(angle)*radius
			req.VX = math.Cos(angle) * 80 * amp
			req.VY = math.Sin(angle) * 80 * amp
		default: // BeatStrong
			angle := rand.Float64() * 2 * math.Pi
			speed := Range{Min: 150, Max: 450}.Random() * amp
			req.X = cx
			req.Y = cy
			req.VX = math.Cos(angle) * speed
			req.VY = math.Sin(angle) * speed
		}
		req.Color = spawnColor(SourceBeat, params.Saturation)
		req.Bloom = 0.3 + 0.5*amp
		req.Source = SourceBeat
		e.pool.Queue(req)
	}
}
