package elegy

import (
	"math"
	"math/rand"
)

const (
	// engagementThreshold is the active-particle count below which the
	// mix is silent.
	engagementThreshold = 5
	// engagementFull is the count at which the mix reaches MaxVolume.
	engagementFull = 50
	// MaxVolume is the engagement ceiling; the ambient bed never plays
	// louder than this.
	MaxVolume = 0.7

	// riseSmoothing and fallSmoothing are lerpSmooth retention factors:
	// the volume swells in slowly and ducks out faster.
	riseSmoothing = 0.3
	fallSmoothing = 0.15

	// audibleFloor is the level below which the sink is silenced.
	audibleFloor = 0.001
)

// BeatStrength classifies a synthesized beat.
type BeatStrength int

const (
	BeatNone BeatStrength = iota
	BeatSoft
	BeatMedium
	BeatStrong
)

// classifyBeat maps a beat amplitude to its strength band.
func classifyBeat(amplitude float64) BeatStrength {
	switch {
	case amplitude >= 0.7:
		return BeatStrong
	case amplitude >= 0.4:
		return BeatMedium
	case amplitude >= 0.1:
		return BeatSoft
	default:
		return BeatNone
	}
}

// beatSpawnCount returns how many particles a beat of the given strength
// bursts into existence.
func beatSpawnCount(s BeatStrength) int {
	switch s {
	case BeatStrong:
		return 20 + rand.Intn(21) // 20-40
	case BeatMedium:
		return 10 + rand.Intn(11) // 10-20
	case BeatSoft:
		return 5 + rand.Intn(6) // 5-10
	default:
		return 0
	}
}

// engagementTarget maps an active-particle count to a target volume:
// silent below the threshold, a linear ramp up to MaxVolume at the full
// count, flat beyond. The curve is monotonically non-decreasing.
func engagementTarget(active int) float64 {
	if active < engagementThreshold {
		return 0
	}
	t := clamp(float64(active-engagementThreshold)/float64(engagementFull-engagementThreshold), 0, 1)
	return t * MaxVolume
}

// Mixer converts on-screen activity into the audio control signal and
// synthesizes the band levels and beats the visuals react to. There is no
// real audio analysis here: bass, mid, high, and shimmer are procedural,
// shaped by the act's intensity.
type Mixer struct {
	level   float64 // smoothed engagement volume
	target  float64
	elapsed float64

	bass, mid, high, shimmer float64

	beatClock   float64
	pendingBeat BeatStrength
	pendingAmp  float64
}

// NewMixer returns a silent mixer.
func NewMixer() *Mixer {
	return &Mixer{}
}

// Level returns the smoothed engagement volume in [0, MaxVolume].
func (m *Mixer) Level() float64 { return m.level }

// Target returns the unsmoothed engagement target for the last Update.
func (m *Mixer) Target() float64 { return m.target }

// Bass returns the synthesized low band in [0, 1].
func (m *Mixer) Bass() float64 { return m.bass }

// Update advances the mixer by dt: recompute the engagement target from
// the active count, smooth toward it, and evolve the synthetic bands.
// intensity is the current act's intensity factor.
func (m *Mixer) Update(dt float64, active int, intensity float64) {
	m.elapsed += dt

	m.target = engagementTarget(active)
	s := fallSmoothing
	if m.target > m.level {
		s = riseSmoothing
	}
	m.level = lerpSmooth(m.level, m.target, s, dt)

	// Synthetic spectrum: slow overlapping oscillators scaled by act
	// intensity, so Crescendo throbs and Transcendence barely breathes.
	t := m.elapsed
	m.bass = (0.5 + 0.5*math.Sin(t*1.6)) * (0.5 + 0.5*math.Sin(t*0.23)) * intensity
	m.mid = (0.5 + 0.5*math.Sin(t*3.1+1.0)) * intensity * 0.8
	m.high = (0.5 + 0.5*math.Sin(t*5.3+2.2)) * intensity * 0.6
	m.shimmer = (0.5 + 0.5*math.Sin(t*0.4+0.7)) * intensity

	// Beats arrive on a clock whose period tightens with intensity.
	m.beatClock += dt
	interval := lerp(2.5, 0.6, clamp(intensity, 0, 1))
	if m.beatClock >= interval {
		m.beatClock -= interval
		amp := intensity * (0.4 + 0.6*rand.Float64())
		if st := classifyBeat(amp); st != BeatNone {
			m.pendingBeat = st
			m.pendingAmp = amp
		}
	}
}

// ConsumeBeat returns the beat that fired since the last call, if any, and
// clears it. The engine turns it into a spawn burst.
func (m *Mixer) ConsumeBeat() (BeatStrength, float64) {
	st, amp := m.pendingBeat, m.pendingAmp
	m.pendingBeat = BeatNone
	m.pendingAmp = 0
	return st, amp
}

// Audio-to-visual mappings. All read the smoothed level so visuals ramp
// with the music instead of stepping with the particle count.

// VisualScale returns the audio-reactive particle scale multiplier.
func (m *Mixer) VisualScale() float64 {
	return mapRange(m.level, 0, MaxVolume, 1.0, 2.5)
}

// OpacityBase returns the audio-reactive base opacity.
func (m *Mixer) OpacityBase() float64 {
	return mapRange(m.level, 0, MaxVolume, 0.3, 0.6)
}

// SaturationBoost returns the audio-reactive saturation multiplier.
func (m *Mixer) SaturationBoost() float64 {
	return mapRange(m.level, 0, MaxVolume, 0.4, 1.0)
}

// BloomBoost returns the audio-reactive addition to the act's bloom.
func (m *Mixer) BloomBoost() float64 {
	return mapRange(m.level, 0, MaxVolume, 0.0, 0.8)
}

// AmbientSpawnRate returns the audio-reactive automatic spawn rate in
// particles per second.
func (m *Mixer) AmbientSpawnRate() float64 {
	return mapRange(m.level, 0, MaxVolume, 4, 40)
}
