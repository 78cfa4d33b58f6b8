package elegy

import "math"

const (
	// trailSegments is the ring capacity per particle.
	trailSegments = 12
	// trailFadeDuration is how long a segment takes to fade out, in seconds.
	trailFadeDuration = 1.5
	// trailBaseWidth is the head segment width in pixels.
	trailBaseWidth = 4.0
	// trailTaperFactor narrows each segment relative to the previous one.
	trailTaperFactor = 0.7
	// trailRecordInterval is the cadence of position snapshots, in seconds.
	trailRecordInterval = 1.0 / 30.0
	// trailMinOpacity is the floor below which a segment is dead.
	trailMinOpacity = 0.001
)

// trailDecayRate makes a segment reach 1% opacity over trailFadeDuration.
var trailDecayRate = -math.Log(0.01) / trailFadeDuration

// trailSegment is one recorded position with its fade state.
type trailSegment struct {
	x, y    float64
	age     float64
	opacity float32
}

// trailRing is a fixed ring buffer of trail segments. Index 0 is the newest
// segment; pushing past capacity overwrites the oldest.
type trailRing struct {
	segs       [trailSegments]trailSegment
	head       int // slot the next push writes to
	count      int
	sinceWrite float64
}

func (t *trailRing) reset() {
	t.head = 0
	t.count = 0
	t.sinceWrite = 0
}

// push records a new head segment, overwriting the oldest when full.
func (t *trailRing) push(x, y float64) {
	t.segs[t.head] = trailSegment{x: x, y: y, opacity: 1}
	t.head = (t.head + 1) % trailSegments
	if t.count < trailSegments {
		t.count++
	}
}

// record pushes a segment when the cadence interval has elapsed.
func (t *trailRing) record(x, y float64, dt float64) {
	t.sinceWrite += dt
	if t.sinceWrite < trailRecordInterval {
		return
	}
	t.sinceWrite -= trailRecordInterval
	t.push(x, y)
}

// update ages segments and applies exponential opacity decay. Segments
// below the floor are zeroed; fully dead tails shrink the ring.
func (t *trailRing) update(dt float64) {
	decay := float32(math.Exp(-trailDecayRate * dt))
	for i := 0; i < t.count; i++ {
		s := t.at(i)
		s.age += dt
		s.opacity *= decay
		if s.opacity < trailMinOpacity {
			s.opacity = 0
		}
	}
	// Drop dead segments from the tail so iteration stays tight.
	for t.count > 0 && t.at(t.count-1).opacity == 0 {
		t.count--
	}
}

// at returns the segment i steps behind the head (0 = newest).
func (t *trailRing) at(i int) *trailSegment {
	idx := t.head - 1 - i
	if idx < 0 {
		idx += trailSegments
	}
	return &t.segs[idx]
}

// segmentWidth returns the rendered width of segment i: geometric taper
// from the head.
func segmentWidth(i int) float64 {
	return trailBaseWidth * math.Pow(trailTaperFactor, float64(i))
}

// segmentAlpha combines the three trail fade terms: a quadratic taper over
// the segment's position in the ring, a linear fade over its age, and an
// exponential falloff over its normalized index. Values below the floor
// render as zero.
func segmentAlpha(seg *trailSegment, i, count int) float64 {
	if count <= 0 || seg.opacity == 0 {
		return 0
	}
	u := float64(i) / float64(trailSegments)
	taper := (1 - u) * (1 - u)
	fade := 1 - clamp(seg.age/trailFadeDuration, 0, 1)
	falloff := math.Exp(-trailDecayRate * trailFadeDuration * u)
	a := float64(seg.opacity) * taper * fade * falloff
	if a < trailMinOpacity {
		return 0
	}
	return a
}
