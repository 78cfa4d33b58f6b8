package elegy

import "math"

const (
	// baseTurbulenceStrength is the unscaled turbulence acceleration in
	// pixels per second squared.
	baseTurbulenceStrength = 15.0
	// turbulenceTimeScale slows the noise field's evolution.
	turbulenceTimeScale = 0.5
	// maxParticleSpeed caps velocity magnitude in pixels per second.
	maxParticleSpeed = 500.0

	// pulseFrequency is the age-based shimmer rate in Hz.
	pulseFrequency = 1.5
	// pulseAmplitude is the peak fractional modulation of scale and opacity.
	pulseAmplitude = 0.15

	// fadeOutFraction is the tail of the lifetime over which alpha ramps to zero.
	fadeOutFraction = 0.2
)

// behavior selects the per-act motion personality applied on top of
// turbulence and drag.
type behavior uint8

const (
	behaviorDrift    behavior = iota // free turbulent wander
	behaviorSwarm                    // gentle pull toward screen center
	behaviorOrbit                    // tangential push around the center
	behaviorDisperse                 // outward with an upward bias
	behaviorFloat                    // near-still sinking haze
)

// behaviorDrag is the per-frame velocity retention at 60 Hz, raised to
// dt*60 so damping is frame-rate independent.
var behaviorDrag = [5]float64{
	behaviorDrift:    0.98,
	behaviorSwarm:    0.95,
	behaviorOrbit:    0.92,
	behaviorDisperse: 0.96,
	behaviorFloat:    0.99,
}

// turbulence samples a cheap procedural noise field: three stacked sines
// per axis at incommensurate frequencies, offset by the particle's seed and
// weakly coupled to its position so neighbors diverge.
func turbulence(seed, elapsed, x, y float64) (fx, fy float64) {
	t := elapsed * turbulenceTimeScale
	fx = math.Sin(t*1.3+seed)*0.5 +
		math.Sin(t*2.7+seed*1.3+y*0.01)*0.3 +
		math.Sin(t*0.7+seed*0.7+x*0.005)*0.2
	fy = math.Cos(t*1.7+seed*1.1)*0.5 +
		math.Cos(t*2.3+seed*0.9+x*0.01)*0.3 +
		math.Cos(t*0.9+seed*1.7+y*0.005)*0.2
	return fx, fy
}

// pulseFactor returns the shimmer multiplier for a particle of the given
// age and lifetime progress. The pulse weakens as the particle ages so
// dying particles settle instead of flickering.
func pulseFactor(age, progress, phase float64) float64 {
	intensity := 1 - progress*0.7
	return 1 + math.Sin(age*pulseFrequency*2*math.Pi+phase)*pulseAmplitude*intensity
}

// lifetimeFade returns the alpha multiplier for lifetime progress: full
// until the fade-out tail, then a linear ramp to zero.
func lifetimeFade(progress float64) float64 {
	if progress < 1-fadeOutFraction {
		return 1
	}
	return clamp((1-progress)/fadeOutFraction, 0, 1)
}

// advanceParticles runs one simulation tick over every live slot: behavior
// forces, turbulence, drag, integration, aging, trail recording, expiry.
func (e *Engine) advanceParticles(dt float64, params ActParams) {
	cx := float64(e.cfg.Width) / 2
	cy := float64(e.cfg.Height) / 2

	turbStrength := baseTurbulenceStrength * params.TurbulenceMult
	drag := math.Pow(behaviorDrag[params.Behavior], dt*60)

	for i := range e.pool.slots {
		s := &e.pool.slots[i]
		if !s.active {
			continue
		}

		s.age += dt
		if s.age >= s.lifetime {
			e.pool.despawnAt(int32(i))
			continue
		}

		// Runaway state from a bad force or dt glitch: re-center rather
		// than poison the arena.
		if !isFinite(s.x) || !isFinite(s.y) || !isFinite(s.vx) || !isFinite(s.vy) {
			s.x, s.y = cx, cy
			s.vx, s.vy = 0, 0
		}

		ax, ay := behaviorAccel(params.Behavior, s.x, s.y, cx, cy, params.SpeedMult)

		tx, ty := turbulence(s.seed, e.elapsed, s.x, s.y)
		ax += tx * turbStrength
		ay += ty * turbStrength

		s.vx = (s.vx + ax*dt) * drag
		s.vy = (s.vy + ay*dt) * drag

		speed := math.Hypot(s.vx, s.vy)
		if speed > maxParticleSpeed {
			scale := maxParticleSpeed / speed
			s.vx *= scale
			s.vy *= scale
		}

		s.x += s.vx * dt
		s.y += s.vy * dt

		if s.hasTrail {
			s.trail.record(s.x, s.y, dt)
			s.trail.update(dt)
		}
	}
}

// behaviorAccel returns the act behavior's steering acceleration for a
// particle at (x, y) relative to the screen center.
func behaviorAccel(b behavior, x, y, cx, cy, speedMult float64) (ax, ay float64) {
	dx := cx - x
	dy := cy - y
	dist := math.Hypot(dx, dy)
	if dist < 1 {
		dist = 1
	}
	nx := dx / dist
	ny := dy / dist

	switch b {
	case behaviorSwarm:
		pull := 30 * speedMult
		return nx * pull, ny * pull
	case behaviorOrbit:
		// Perpendicular to the center direction, plus a weak inward pull
		// so orbits don't unwind off-screen.
		swirl := 60 * speedMult
		return -ny*swirl + nx*8, nx*swirl + ny*8
	case behaviorDisperse:
		push := 40 * speedMult
		return -nx * push, -ny*push - 30
	case behaviorFloat:
		// Slow sink; drag does the rest.
		return 0, 4 * speedMult
	default:
		return 0, 0
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
