package elegy

import "testing"

func TestLoadScriptRejectsBadInput(t *testing.T) {
	if _, err := LoadScript([]byte("{not json")); err == nil {
		t.Error("malformed JSON should fail")
	}
	if _, err := LoadScript([]byte(`{"steps":[]}`)); err == nil {
		t.Error("empty script should fail")
	}
}

func TestScriptTapPlaysOut(t *testing.T) {
	r, err := LoadScript([]byte(`{"steps":[{"action":"tap","x":640,"y":360}]}`))
	if err != nil {
		t.Fatal(err)
	}
	e := testEngine()
	for !r.Done() {
		r.Tick(e)
		e.Step(testDT)
	}
	if e.pool.ActiveCount() < tapBurstCount {
		t.Errorf("scripted tap spawned %d, want at least the burst", e.pool.ActiveCount())
	}
}

func TestScriptDragMovesPointer(t *testing.T) {
	r, err := LoadScript([]byte(
		`{"steps":[{"action":"drag","fromX":0,"fromY":100,"toX":600,"toY":100,"ticks":30}]}`))
	if err != nil {
		t.Fatal(err)
	}
	e := testEngine()
	ticks := 0
	for !r.Done() && ticks < 200 {
		r.Tick(e)
		e.Step(testDT)
		ticks++
	}
	if !r.Done() {
		t.Fatal("drag script never finished")
	}
	if e.pool.ActiveCount() == 0 {
		t.Error("scripted drag spawned nothing")
	}
}

func TestScriptHyperspace(t *testing.T) {
	r, err := LoadScript([]byte(`{"steps":[{"action":"hyperspace"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	e := testEngine()
	r.Tick(e)
	e.Step(testDT)
	if e.timeline.Act() != ActAccumulation {
		t.Errorf("act = %v, want Accumulation", e.timeline.Act())
	}
}

func TestScriptWaitCountsTicks(t *testing.T) {
	r, err := LoadScript([]byte(`{"steps":[{"action":"wait","ticks":5},{"action":"hyperspace"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	e := testEngine()
	ticks := 0
	for !r.Done() {
		r.Tick(e)
		ticks++
		if ticks > 20 {
			t.Fatal("wait never elapsed")
		}
	}
	if ticks < 6 {
		t.Errorf("script finished in %d ticks, want the wait honored", ticks)
	}
}
