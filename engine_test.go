package elegy

import "testing"

func TestNewDefaults(t *testing.T) {
	e := New(Config{})
	if e.cfg.Width != 1280 || e.cfg.Height != 720 {
		t.Errorf("default size = %dx%d", e.cfg.Width, e.cfg.Height)
	}
	if e.pool.Capacity() != PoolCapacity {
		t.Errorf("pool capacity = %d", e.pool.Capacity())
	}
	if e.ambient != nil {
		t.Error("audio sink should be off by default")
	}
}

func TestStepDrainsQueueBeforeMotion(t *testing.T) {
	e := testEngine()
	e.pool.Queue(SpawnRequest{X: 640, Y: 360, VX: 120, Source: SourceAmbient})
	e.Step(testDT)

	// The queued particle was spawned and then integrated this same tick.
	moved := false
	for i := range e.pool.slots {
		s := &e.pool.slots[i]
		if s.active && s.x != 640 {
			moved = true
		}
	}
	if !moved {
		t.Error("queued spawn was not integrated in the same tick")
	}
}

func TestAmbientSpawnsApproachDensity(t *testing.T) {
	e := testEngine()
	// Emergence targets 200 particles; a few seconds should close most of
	// the gap from zero.
	for i := 0; i < 600; i++ {
		e.Step(testDT)
	}
	active := e.pool.ActiveCount()
	if active < 100 {
		t.Errorf("active = %d after 10s, want the fill to approach 200", active)
	}
}

func TestAmbientSpawnsStopAtDensity(t *testing.T) {
	e := testEngine()
	params := rawParams(ActEmergence)
	for i := 0; i < params.Density+50; i++ {
		e.pool.Spawn(SpawnRequest{X: 640, Y: 360, Source: SourceAmbient})
	}
	before := len(e.pool.queue)
	e.ambientSpawns(testDT, params)
	if len(e.pool.queue) != before {
		t.Error("ambient fill should pause above the density target")
	}
}

func TestMixerFollowsPopulation(t *testing.T) {
	e := testEngine()
	for i := 0; i < 100; i++ {
		e.pool.Spawn(SpawnRequest{X: 640, Y: 360, Lifetime: 1000, Source: SourceAmbient})
	}
	for i := 0; i < 600; i++ {
		e.Step(testDT)
	}
	if e.mixer.Level() < MaxVolume*0.8 {
		t.Errorf("level = %v with a full house, want near %v", e.mixer.Level(), MaxVolume)
	}
}

func TestCycleWrapFiresHyperspace(t *testing.T) {
	e := testEngine()
	// Jump to just before the cycle end, then step across it.
	e.timeline.Advance(899.99)
	e.Step(testDT)

	if e.timeline.Act() != ActEmergence {
		t.Errorf("act after wrap = %v, want Emergence", e.timeline.Act())
	}
	if e.HyperFlash() == 0 {
		t.Error("wrap should arm the white-out flash")
	}
	if e.pool.ActiveCount() != hyperspaceBurstCount {
		t.Errorf("active after wrap = %d, want %d", e.pool.ActiveCount(), hyperspaceBurstCount)
	}
}

func TestHyperFlashDecays(t *testing.T) {
	e := testEngine()
	e.hyperspace()
	if e.HyperFlash() != 1 {
		t.Fatal("flash should start at 1")
	}
	for i := 0; i < 60; i++ {
		e.Step(testDT)
	}
	if e.HyperFlash() != 0 {
		t.Errorf("flash = %v after a second, want 0", e.HyperFlash())
	}
}

func TestBeatSpawnsRespectStrength(t *testing.T) {
	e := testEngine()
	e.mixer.pendingBeat = BeatStrong
	e.mixer.pendingAmp = 1.0
	e.beatSpawns(rawParams(ActCrescendo))
	e.pool.Drain()

	n := e.pool.ActiveCount()
	if n < 20 || n > 40 {
		t.Errorf("strong beat spawned %d, want 20-40", n)
	}
	// Strong beats burst from the center.
	for i := range e.pool.slots {
		s := &e.pool.slots[i]
		if !s.active {
			continue
		}
		if s.x != 640 || s.y != 360 {
			t.Fatalf("strong beat particle at (%v,%v), want center", s.x, s.y)
		}
	}
}

func TestLongRunStaysFinite(t *testing.T) {
	if testing.Short() {
		t.Skip("long simulation")
	}
	e := testEngine()
	// March through a full act boundary with coarse ticks and constant
	// churn; nothing should go non-finite or exceed the cap.
	for i := 0; i < 4000; i++ {
		if i%7 == 0 {
			e.pool.Queue(SpawnRequest{
				X: float64(i % 1280), Y: float64(i % 720),
				VX: 300, VY: -100, Source: SourceBeat,
			})
		}
		e.Step(0.05)
		if e.pool.ActiveCount() > e.pool.maxActive {
			t.Fatalf("active %d exceeded cap at tick %d", e.pool.ActiveCount(), i)
		}
	}
	for i := range e.pool.slots {
		s := &e.pool.slots[i]
		if s.active && (!isFinite(s.x) || !isFinite(s.y)) {
			t.Fatal("non-finite particle after long run")
		}
	}
	if !isFinite(e.mixer.Level()) || e.mixer.Level() < 0 || e.mixer.Level() > MaxVolume {
		t.Errorf("mixer level out of range: %v", e.mixer.Level())
	}
}
