package elegy

import (
	"math"
	"math/rand"
	"sync"
)

const (
	// PoolCapacity is the arena size. Every particle that will ever exist
	// lives in one of these slots; no allocation happens after construction.
	PoolCapacity = 15000
	// MaxActive is the soft cap on concurrently live particles. Spawns
	// beyond it are silently dropped.
	MaxActive = 10000

	// BaseParticleSize is the unscaled quad size in pixels.
	BaseParticleSize = 80.0
	// BaseLifetime is the unscaled particle lifetime in seconds.
	BaseLifetime = 5.0

	// hyperspaceBurstCount is how many particles a ClearBurst scatters.
	hyperspaceBurstCount = 600

	spawnQueueCapacity = 4096
)

// SpawnSource identifies what caused a spawn; it selects color, lifetime,
// and whether the particle carries a trail.
type SpawnSource uint8

const (
	SourceAmbient SpawnSource = iota // timeline density fill
	SourcePointer                    // taps, drags, holds
	SourceBeat                       // synthesized beat bursts
)

// SlotID identifies a live particle. IDs are generational: once the slot is
// recycled the old ID goes stale and despawning it is a no-op.
type SlotID struct {
	idx int32
	gen uint32
}

// NoSlot is the zero-value-adjacent invalid ID returned by failed spawns.
var NoSlot = SlotID{idx: -1}

// particle holds per-slot simulation state. Unexported; managed by Pool.
type particle struct {
	x, y   float64
	vx, vy float64

	age      float64 // seconds since spawn
	lifetime float64 // total seconds

	baseSize   float64
	r, g, b    float32
	bloom      float32 // [0,1] contribution to the HDR bloom boost
	audioReact float64 // [0,1] how strongly the audio level scales this particle

	seed       float64 // turbulence offset, fixed at spawn
	pulsePhase float64

	source   SpawnSource
	hasTrail bool
	trail    trailRing

	active bool
	gen    uint32
}

// SpawnRequest describes one particle to be created.
type SpawnRequest struct {
	X, Y     float64
	VX, VY   float64
	Color      Color
	Size       float64 // 0 means BaseParticleSize
	Lifetime   float64 // seconds; 0 means the source's default
	Bloom      float64 // [0,1]
	AudioReact float64 // [0,1]; 0 draws from the source's range
	Source     SpawnSource
}

// Pool is a fixed arena of particles with a free list of slot indices.
// Spawn and Despawn are O(1); the spawn queue is the only concurrency
// point and is drained at the start of each tick.
type Pool struct {
	slots  []particle
	free   []int32 // indices of inactive slots, used as a stack
	active int

	maxActive int

	mu    sync.Mutex
	queue []SpawnRequest
}

// NewPool creates a pool with the given arena size and active cap.
// Non-positive arguments select PoolCapacity and MaxActive.
func NewPool(capacity, maxActive int) *Pool {
	if capacity <= 0 {
		capacity = PoolCapacity
	}
	if maxActive <= 0 || maxActive > capacity {
		maxActive = MaxActive
		if maxActive > capacity {
			maxActive = capacity
		}
	}
	p := &Pool{
		slots:     make([]particle, capacity),
		free:      make([]int32, capacity),
		maxActive: maxActive,
		queue:     make([]SpawnRequest, 0, spawnQueueCapacity),
	}
	// Fill the free stack so low indices pop first.
	for i := range p.free {
		p.free[i] = int32(capacity - 1 - i)
	}
	return p
}

// ActiveCount returns the number of live particles.
func (p *Pool) ActiveCount() int {
	return p.active
}

// Capacity returns the arena size.
func (p *Pool) Capacity() int {
	return len(p.slots)
}

// Spawn allocates a slot and initializes it from req. It returns NoSlot and
// false when the active cap is reached; overflow is not an error.
func (p *Pool) Spawn(req SpawnRequest) (SlotID, bool) {
	if p.active >= p.maxActive || len(p.free) == 0 {
		return NoSlot, false
	}
	idx := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]

	s := &p.slots[idx]
	s.x = req.X
	s.y = req.Y
	s.vx = req.VX
	s.vy = req.VY

	s.age = 0
	s.lifetime = req.Lifetime
	if s.lifetime <= 0 {
		s.lifetime = BaseLifetime * sourceLifetimeMult(req.Source)
	}

	s.baseSize = req.Size
	if s.baseSize <= 0 {
		s.baseSize = BaseParticleSize
	}
	s.r = float32(req.Color.R)
	s.g = float32(req.Color.G)
	s.b = float32(req.Color.B)
	s.bloom = float32(clamp(req.Bloom, 0, 1))

	s.audioReact = req.AudioReact
	if s.audioReact <= 0 {
		s.audioReact = sourceAudioReact(req.Source).Random()
	}
	s.audioReact = clamp(s.audioReact, 0, 1)

	s.seed = rand.Float64() * 1000
	s.pulsePhase = rand.Float64() * 2 * math.Pi
	s.source = req.Source
	s.hasTrail = req.Source != SourceAmbient
	s.trail.reset()

	s.active = true
	p.active++
	return SlotID{idx: idx, gen: s.gen}, true
}

// Despawn frees the slot identified by id. Stale, double, and out-of-range
// despawns are no-ops.
func (p *Pool) Despawn(id SlotID) {
	if id.idx < 0 || int(id.idx) >= len(p.slots) {
		return
	}
	s := &p.slots[id.idx]
	if !s.active || s.gen != id.gen {
		return
	}
	p.despawnAt(id.idx)
}

// despawnAt frees the slot at idx, which must be active.
func (p *Pool) despawnAt(idx int32) {
	s := &p.slots[idx]
	s.active = false
	s.gen++
	p.free = append(p.free, idx)
	p.active--
}

// Queue adds a spawn request for the next Drain. Safe for concurrent use.
// The queue accepts any number of requests; the active cap is enforced at
// Drain, where the overflow is silently dropped.
func (p *Pool) Queue(req SpawnRequest) {
	p.mu.Lock()
	p.queue = append(p.queue, req)
	p.mu.Unlock()
}

// Drain spawns queued requests until the active cap is reached, then drops
// the remainder. It returns the number actually spawned. Called once at the
// start of each tick.
func (p *Pool) Drain() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	spawned := 0
	for i := range p.queue {
		if _, ok := p.Spawn(p.queue[i]); !ok {
			break
		}
		spawned++
	}
	p.queue = p.queue[:0]
	return spawned
}

// ClearBurst empties the pool and refills it with a radial scatter burst
// centered at (cx, cy), all within the same tick. Used for hyperspace
// transitions: the old act's particles vanish and a shockwave of fresh ones
// takes their place.
func (p *Pool) ClearBurst(cx, cy float64) {
	for i := range p.slots {
		if p.slots[i].active {
			p.despawnAt(int32(i))
		}
	}
	p.mu.Lock()
	p.queue = p.queue[:0]
	p.mu.Unlock()

	for i := 0; i < hyperspaceBurstCount; i++ {
		angle := rand.Float64() * 2 * math.Pi
		speed := Range{Min: 300, Max: 2000}.Random()
		p.Spawn(SpawnRequest{
			X:        cx,
			Y:        cy,
			VX:       math.Cos(angle) * speed,
			VY:       math.Sin(angle) * speed,
			Color:    burstColor(),
			Lifetime: BaseLifetime * Range{Min: 0.4, Max: 0.9}.Random(),
			Bloom:    0.8,
			Source:   SourceBeat,
		})
	}
}

// sourceLifetimeMult scales BaseLifetime per spawn source. Pointer particles
// linger, beat particles flare and die.
func sourceLifetimeMult(src SpawnSource) float64 {
	switch src {
	case SourcePointer:
		return 1.2
	case SourceBeat:
		return 0.8
	default:
		return 1.0
	}
}

// sourceAudioReact is the range each source draws its react weight from:
// beat particles ride the music hardest, ambient haze barely responds.
func sourceAudioReact(src SpawnSource) Range {
	switch src {
	case SourcePointer:
		return Range{Min: 0.4, Max: 0.8}
	case SourceBeat:
		return Range{Min: 0.7, Max: 1.0}
	default:
		return Range{Min: 0.2, Max: 0.5}
	}
}

// spawnColor picks a palette color for the given source and desaturates it
// to the act's saturation level.
func spawnColor(src SpawnSource, saturation float64) Color {
	roll := rand.Float64()
	var c Color
	switch src {
	case SourcePointer:
		switch {
		case roll < 0.4:
			c = AccentSpark
		case roll < 0.7:
			c = AccentDeep
		default:
			c = AccentHope
		}
	case SourceBeat:
		switch {
		case roll < 0.5:
			c = PrimaryMidpoint
		case roll < 0.8:
			c = AccentSpark
		default:
			c = AccentDeep
		}
	default:
		switch {
		case roll < 0.4:
			c = SecondaryCool
		case roll < 0.7:
			c = SecondaryWarm
		default:
			c = SecondaryEthereal
		}
	}
	return c.Desaturate(saturation)
}

// burstColor picks from the accent colors for hyperspace scatter particles.
func burstColor() Color {
	switch rand.Intn(3) {
	case 0:
		return AccentSpark
	case 1:
		return AccentDeep
	default:
		return AccentHope
	}
}
