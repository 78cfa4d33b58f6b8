package elegy

import (
	"log"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Act identifies one movement of the performance.
type Act int

const (
	ActEmergence Act = iota
	ActAccumulation
	ActCrescendo
	ActRelease
	ActTranscendence

	actCount = 5
)

// String returns the act's name.
func (a Act) String() string {
	switch a {
	case ActEmergence:
		return "Emergence"
	case ActAccumulation:
		return "Accumulation"
	case ActCrescendo:
		return "Crescendo"
	case ActRelease:
		return "Release"
	case ActTranscendence:
		return "Transcendence"
	default:
		return "Unknown"
	}
}

// transitionDuration is how long parameter blending runs after an act
// boundary, in seconds.
const transitionDuration = 2.0

// Per-act tuning tables, indexed by Act.
var (
	actDurations  = [actCount]float64{180, 240, 180, 180, 120}
	actSaturation = [actCount]float64{0.4, 0.6, 1.0, 0.7, 0.3}
	actDensity    = [actCount]int{200, 1000, 5000, 2000, 100}
	actChromatic  = [actCount]float64{0.0, 0.002, 0.008, 0.004, 0.001}
	actVignette   = [actCount]float64{0.5, 0.4, 0.35, 0.2, 0.05}
	actBloom      = [actCount]float64{0.2, 0.35, 0.6, 0.45, 0.5}
	actIntensity  = [actCount]float64{0.3, 0.6, 1.0, 0.7, 0.4}
	actTurbulence = [actCount]float64{0.5, 0.6, 1.0, 0.8, 0.3}
	actSpeedMult  = [actCount]float64{0.3, 0.7, 1.0, 1.2, 0.4}

	actGradientTop = [actCount]Color{
		{R: 0.051, G: 0.051, B: 0.090, A: 1},
		{R: 0.051, G: 0.051, B: 0.090, A: 1},
		{R: 0.102, G: 0.051, B: 0.090, A: 1},
		{R: 0.180, G: 0.110, B: 0.090, A: 1},
		{R: 0.251, G: 0.231, B: 0.212, A: 1},
	}
	actGradientBottom = [actCount]Color{
		{R: 0.102, G: 0.102, B: 0.180, A: 1},
		{R: 0.176, G: 0.141, B: 0.251, A: 1},
		{R: 0.384, G: 0.118, B: 0.196, A: 1},
		{R: 0.584, G: 0.365, B: 0.259, A: 1},
		{R: 0.910, G: 0.835, B: 0.769, A: 1},
	}

	actBehaviors = [actCount]behavior{
		behaviorDrift, behaviorSwarm, behaviorOrbit, behaviorDisperse, behaviorFloat,
	}
	actModes = [actCount]InteractionMode{
		ModeAttract, ModeRipple, ModeIntensify, ModeDisperse, ModeGravity,
	}
)

// ActParams is the blended visual state the rest of the engine consumes.
// During a transition the continuous fields are eased between the outgoing
// and incoming acts; Behavior and Mode switch once, at the midpoint.
type ActParams struct {
	Saturation          float64
	ChromaticAberration float64
	Vignette            float64
	Bloom               float64
	Intensity           float64
	TurbulenceMult      float64
	SpeedMult           float64
	Density             int
	GradientTop         Color
	GradientBottom      Color
	Behavior            behavior
	Mode                InteractionMode
}

// rawParams returns the act's table values with no blending. Out-of-range
// acts clamp with a warning rather than panic; a wedged timeline should
// degrade, not crash the show.
func rawParams(a Act) ActParams {
	if a < 0 || a >= actCount {
		log.Printf("elegy: act index %d out of range, clamping", a)
		if a < 0 {
			a = 0
		} else {
			a = actCount - 1
		}
	}
	return ActParams{
		Saturation:          actSaturation[a],
		ChromaticAberration: actChromatic[a],
		Vignette:            actVignette[a],
		Bloom:               actBloom[a],
		Intensity:           actIntensity[a],
		TurbulenceMult:      actTurbulence[a],
		SpeedMult:           actSpeedMult[a],
		Density:             actDensity[a],
		GradientTop:         actGradientTop[a],
		GradientBottom:      actGradientBottom[a],
		Behavior:            actBehaviors[a],
		Mode:                actModes[a],
	}
}

// Timeline advances through the five acts on wall-clock time alone and
// blends parameters across boundaries. The cycle is closed: Transcendence
// wraps back to Emergence through a hyperspace jump.
type Timeline struct {
	act     Act
	elapsed float64 // seconds into the current act

	prev          ActParams // outgoing act's params, frozen at the boundary
	tween         *gween.Tween
	blend         float64
	transitioning bool
}

// NewTimeline starts at Emergence with no transition in flight.
func NewTimeline() *Timeline {
	return &Timeline{}
}

// Act returns the current act.
func (t *Timeline) Act() Act {
	return t.act
}

// Progress returns how far through the current act the timeline is, in [0,1).
func (t *Timeline) Progress() float64 {
	return clamp(t.elapsed/actDurations[t.act], 0, 1)
}

// Advance moves the timeline forward by dt seconds. It returns true when
// the cycle wraps from Transcendence to Emergence, which the engine turns
// into a hyperspace jump.
func (t *Timeline) Advance(dt float64) (wrapped bool) {
	t.elapsed += dt
	for t.elapsed >= actDurations[t.act] {
		t.elapsed -= actDurations[t.act]
		if t.beginAct(t.act + 1) {
			wrapped = true
		}
	}
	if t.transitioning {
		b, done := t.tween.Update(float32(dt))
		t.blend = float64(b)
		if done {
			t.transitioning = false
			t.blend = 1
		}
	}
	return wrapped
}

// Skip jumps to the next act immediately, as a hyperspace gesture does.
// It returns true when the jump wrapped the cycle.
func (t *Timeline) Skip() bool {
	t.elapsed = 0
	return t.beginAct(t.act + 1)
}

// beginAct freezes the outgoing params and starts the boundary tween.
func (t *Timeline) beginAct(next Act) (wrapped bool) {
	t.prev = t.Params()
	if next >= actCount {
		next = ActEmergence
		wrapped = true
	}
	t.act = next
	t.tween = gween.New(0, 1, transitionDuration, ease.InOutCubic)
	t.blend = 0
	t.transitioning = true
	return wrapped
}

// Params returns the blended parameters for this tick. Outside a transition
// these are the current act's table values.
func (t *Timeline) Params() ActParams {
	cur := rawParams(t.act)
	if !t.transitioning {
		return cur
	}
	b := t.blend
	p := ActParams{
		Saturation:          lerp(t.prev.Saturation, cur.Saturation, b),
		ChromaticAberration: lerp(t.prev.ChromaticAberration, cur.ChromaticAberration, b),
		Vignette:            lerp(t.prev.Vignette, cur.Vignette, b),
		Bloom:               lerp(t.prev.Bloom, cur.Bloom, b),
		Intensity:           lerp(t.prev.Intensity, cur.Intensity, b),
		TurbulenceMult:      lerp(t.prev.TurbulenceMult, cur.TurbulenceMult, b),
		SpeedMult:           lerp(t.prev.SpeedMult, cur.SpeedMult, b),
		Density:             int(lerp(float64(t.prev.Density), float64(cur.Density), b)),
		GradientTop:         t.prev.GradientTop.Lerp(cur.GradientTop, b),
		GradientBottom:      t.prev.GradientBottom.Lerp(cur.GradientBottom, b),
	}
	// Discrete fields flip at the midpoint of the transition.
	if b < 0.5 {
		p.Behavior = t.prev.Behavior
		p.Mode = t.prev.Mode
	} else {
		p.Behavior = cur.Behavior
		p.Mode = cur.Mode
	}
	return p
}
