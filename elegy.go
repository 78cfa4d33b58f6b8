package elegy

import (
	"math"
	"math/rand"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// Lerp linearly interpolates between c and other by t.
func (c Color) Lerp(other Color, t float64) Color {
	return Color{
		R: lerp(c.R, other.R, t),
		G: lerp(c.G, other.G, t),
		B: lerp(c.B, other.B, t),
		A: lerp(c.A, other.A, t),
	}
}

// Desaturate blends c toward its own gray point. s=1 keeps the color,
// s=0 yields full grayscale.
func (c Color) Desaturate(s float64) Color {
	s = clamp(s, 0, 1)
	gray := 0.299*c.R + 0.587*c.G + 0.114*c.B
	return Color{
		R: lerp(gray, c.R, s),
		G: lerp(gray, c.G, s),
		B: lerp(gray, c.B, s),
		A: c.A,
	}
}

// Vec2 is a 2D vector used for positions, offsets, and directions.
type Vec2 struct {
	X, Y float64
}

// Range is a general-purpose min/max range.
type Range struct {
	Min, Max float64
}

// Random returns a random float64 in [Min, Max].
func (r Range) Random() float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + rand.Float64()*(r.Max-r.Min)
}

// Palette. A cold dawn that burns through crimson into bone white, with
// warm and ethereal secondaries and three accent colors for gestures.
var (
	PrimaryInitial  = Color{R: 0.102, G: 0.102, B: 0.180, A: 1} // #1a1a2e
	PrimaryMidpoint = Color{R: 0.769, G: 0.118, B: 0.227, A: 1} // #c41e3a
	PrimaryFinal    = Color{R: 0.992, G: 0.965, B: 0.941, A: 1} // #fdf6f0

	SecondaryCool     = Color{R: 0.176, G: 0.204, B: 0.212, A: 1} // #2d3436
	SecondaryWarm     = Color{R: 0.831, G: 0.647, B: 0.455, A: 1} // #d4a574
	SecondaryEthereal = Color{R: 0.910, G: 0.835, B: 0.769, A: 1} // #e8d5c4

	AccentSpark = Color{R: 1.000, G: 0.420, B: 0.420, A: 1} // #ff6b6b
	AccentDeep  = Color{R: 0.424, G: 0.361, B: 0.906, A: 1} // #6c5ce7
	AccentHope  = Color{R: 1.000, G: 0.918, B: 0.655, A: 1} // #ffeaa7
)

// lerp linearly interpolates between a and b by t.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// lerp32 linearly interpolates between a and b by t (float32).
func lerp32(a, b, t float32) float32 {
	return a + (b-a)*t
}

// clamp limits v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// mapRange remaps v from [inMin, inMax] to [outMin, outMax], clamped.
func mapRange(v, inMin, inMax, outMin, outMax float64) float64 {
	if inMax == inMin {
		return outMin
	}
	t := clamp((v-inMin)/(inMax-inMin), 0, 1)
	return outMin + t*(outMax-outMin)
}

// lerpSmooth moves current toward target with frame-rate independent
// exponential smoothing. smoothing is the fraction remaining after one
// 60 Hz frame: higher values approach slower.
func lerpSmooth(current, target, smoothing, dt float64) float64 {
	factor := 1 - math.Pow(clamp(smoothing, 0, 0.99), dt*60)
	return current + (target-current)*factor
}

// smootherstep is the quintic step 6t^5-15t^4+10t^3, clamped to [0,1].
func smootherstep(t float64) float64 {
	t = clamp(t, 0, 1)
	return t * t * t * (t*(t*6-15) + 10)
}
