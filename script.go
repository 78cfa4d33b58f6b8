package elegy

import (
	"encoding/json"
	"fmt"
)

// scriptStep represents a single action in a gesture script.
type scriptStep struct {
	Action string  `json:"action"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Ticks  int     `json:"ticks,omitempty"`
}

// gestureScript is the top-level JSON structure.
type gestureScript struct {
	Steps []scriptStep `json:"steps"`
}

// ScriptRunner replays a JSON gesture script against an engine, one tick
// at a time. It drives reproducible sessions for demos and tests: taps,
// drags, holds, hyperspace jumps, and waits.
type ScriptRunner struct {
	steps  []scriptStep
	cursor int

	// In-flight gesture state.
	waitTicks int
	dragTicks int
	dragStep  scriptStep
	holdTicks int

	done bool
}

// LoadScript parses a JSON gesture script.
func LoadScript(jsonData []byte) (*ScriptRunner, error) {
	var script gestureScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse gesture script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse gesture script: no steps")
	}
	return &ScriptRunner{steps: script.Steps}, nil
}

// Done reports whether the script has fully played out.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// Tick injects this tick's scripted input into e. Call once before each
// Engine.Step.
func (r *ScriptRunner) Tick(e *Engine) {
	if r.done {
		return
	}

	// Finish in-flight gestures before advancing the cursor.
	if r.dragTicks > 0 {
		r.advanceDrag(e)
		return
	}
	if r.holdTicks > 0 {
		r.holdTicks--
		if r.holdTicks == 0 {
			e.PointerUp(0)
		}
		return
	}
	if r.waitTicks > 0 {
		r.waitTicks--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "tap":
		e.PointerDown(0, st.X, st.Y)
		e.PointerUp(0)
	case "hyperspace":
		e.SecondaryTap()
	case "drag":
		ticks := st.Ticks
		if ticks < 2 {
			ticks = 2
		}
		r.dragStep = st
		r.dragTicks = ticks
		e.PointerDown(0, st.FromX, st.FromY)
	case "hold":
		ticks := st.Ticks
		if ticks < 1 {
			ticks = 60
		}
		r.holdTicks = ticks
		e.PointerDown(0, st.X, st.Y)
	case "wait":
		if st.Ticks > 1 {
			r.waitTicks = st.Ticks - 1 // this tick counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitTicks == 0 && r.dragTicks == 0 && r.holdTicks == 0 {
		r.done = true
	}
}

// advanceDrag moves the scripted pointer one increment along its path.
func (r *ScriptRunner) advanceDrag(e *Engine) {
	total := r.dragStep.Ticks
	if total < 2 {
		total = 2
	}
	r.dragTicks--
	t := 1 - float64(r.dragTicks)/float64(total)
	x := lerp(r.dragStep.FromX, r.dragStep.ToX, t)
	y := lerp(r.dragStep.FromY, r.dragStep.ToY, t)
	e.PointerMove(0, x, y)
	if r.dragTicks == 0 {
		e.PointerUp(0)
	}
}
