package elegy

import "testing"

func TestEngagementTargetCurve(t *testing.T) {
	assertNear(t, "empty", engagementTarget(0), 0)
	assertNear(t, "below threshold", engagementTarget(4), 0)
	assertNear(t, "at threshold", engagementTarget(5), 0)

	just := engagementTarget(6)
	if just <= 0 {
		t.Errorf("just above threshold = %v, want > 0", just)
	}
	if just > 0.05 {
		t.Errorf("just above threshold = %v, want barely audible", just)
	}

	assertNear(t, "at full", engagementTarget(50), MaxVolume)
	assertNear(t, "beyond full", engagementTarget(10000), MaxVolume)
	assertNear(t, "midpoint", engagementTarget(27), float64(27-5)/45*MaxVolume)
}

func TestEngagementTargetMonotonic(t *testing.T) {
	prev := -1.0
	for n := 0; n <= 200; n++ {
		v := engagementTarget(n)
		if v < prev {
			t.Fatalf("curve decreased at %d: %v < %v", n, v, prev)
		}
		prev = v
	}
}

func TestMixerSmoothsTowardTarget(t *testing.T) {
	m := NewMixer()
	// A jump in count must not step the level.
	m.Update(1.0/60.0, 100, 1)
	if m.Level() >= MaxVolume/2 {
		t.Errorf("level jumped to %v after one frame", m.Level())
	}
	for i := 0; i < 600; i++ {
		m.Update(1.0/60.0, 100, 1)
	}
	if diff := MaxVolume - m.Level(); diff > 0.01 {
		t.Errorf("level %v did not converge to %v", m.Level(), MaxVolume)
	}
}

func TestMixerFallsFasterThanItRises(t *testing.T) {
	rise := NewMixer()
	rise.Update(1.0/60.0, 100, 1)
	risen := rise.Level()

	fall := NewMixer()
	fall.level = MaxVolume
	fall.Update(1.0/60.0, 0, 1)
	fallen := MaxVolume - fall.Level()

	if fallen <= risen {
		t.Errorf("fall step %v should exceed rise step %v", fallen, risen)
	}
}

func TestClassifyBeat(t *testing.T) {
	cases := []struct {
		amp  float64
		want BeatStrength
	}{
		{0.05, BeatNone},
		{0.1, BeatSoft},
		{0.39, BeatSoft},
		{0.4, BeatMedium},
		{0.69, BeatMedium},
		{0.7, BeatStrong},
		{1.0, BeatStrong},
	}
	for _, c := range cases {
		if got := classifyBeat(c.amp); got != c.want {
			t.Errorf("classifyBeat(%v) = %v, want %v", c.amp, got, c.want)
		}
	}
}

func TestBeatSpawnCountRanges(t *testing.T) {
	ranges := map[BeatStrength][2]int{
		BeatNone:   {0, 0},
		BeatSoft:   {5, 10},
		BeatMedium: {10, 20},
		BeatStrong: {20, 40},
	}
	for strength, want := range ranges {
		for i := 0; i < 50; i++ {
			n := beatSpawnCount(strength)
			if n < want[0] || n > want[1] {
				t.Fatalf("beatSpawnCount(%v) = %d, want [%d,%d]", strength, n, want[0], want[1])
			}
		}
	}
}

func TestConsumeBeatClearsPending(t *testing.T) {
	m := NewMixer()
	m.pendingBeat = BeatStrong
	m.pendingAmp = 0.9

	st, amp := m.ConsumeBeat()
	if st != BeatStrong || amp != 0.9 {
		t.Errorf("ConsumeBeat = (%v, %v)", st, amp)
	}
	st, _ = m.ConsumeBeat()
	if st != BeatNone {
		t.Error("second consume should be empty")
	}
}

func TestMixerEmitsBeatsUnderIntensity(t *testing.T) {
	m := NewMixer()
	fired := false
	for i := 0; i < 600; i++ {
		m.Update(1.0/60.0, 0, 1.0)
		if st, _ := m.ConsumeBeat(); st != BeatNone {
			fired = true
		}
	}
	if !fired {
		t.Error("no beat fired in 10 seconds at full intensity")
	}
}

func TestAudioVisualMappings(t *testing.T) {
	m := NewMixer()
	assertNear(t, "scale floor", m.VisualScale(), 1.0)
	assertNear(t, "opacity floor", m.OpacityBase(), 0.3)
	assertNear(t, "rate floor", m.AmbientSpawnRate(), 4)

	m.level = MaxVolume
	assertNear(t, "scale ceil", m.VisualScale(), 2.5)
	assertNear(t, "opacity ceil", m.OpacityBase(), 0.6)
	assertNear(t, "saturation ceil", m.SaturationBoost(), 1.0)
	assertNear(t, "bloom ceil", m.BloomBoost(), 0.8)
	assertNear(t, "rate ceil", m.AmbientSpawnRate(), 40)
}

func TestBackgroundBreatheRange(t *testing.T) {
	assertNear(t, "quiet", backgroundBreathe(0), 0)
	assertNear(t, "loud", backgroundBreathe(1), 0.15)
	assertNear(t, "over", backgroundBreathe(3), 0.15)
}
