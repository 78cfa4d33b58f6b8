// Package elegy is a real-time generative particle engine for [Ebitengine].
//
// Elegy turns touch and pointer gestures into an evolving audiovisual
// performance: a fixed-capacity particle pool, turbulence-driven motion with
// per-particle trails, a five-act timeline that reshapes color, density, and
// post-processing over a ~15 minute cycle, and an audio layer whose volume
// follows how much is happening on screen.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window, wires
// pointer and touch input, and drives the engine loop for you:
//
//	engine := elegy.New(elegy.Config{Width: 1280, Height: 720})
//	elegy.Run(engine, elegy.RunConfig{
//		Title: "Elegy", Width: 1280, Height: 720,
//	})
//
// For full control, implement [ebiten.Game] yourself and call
// [Engine.Step] and [Pipeline.Draw] directly:
//
//	type Game struct {
//		engine   *elegy.Engine
//		pipeline *elegy.Pipeline
//	}
//
//	func (g *Game) Update() error        { g.engine.Step(1.0 / float64(ebiten.TPS())); return nil }
//	func (g *Game) Draw(s *ebiten.Image) { g.pipeline.Draw(s, g.engine) }
//
// # Structure
//
// [Engine] owns the simulation: the particle [Pool], the [Timeline] of acts,
// the audio-reactive [Mixer], and the gesture state fed through
// [Engine.PointerDown] and friends. [Pipeline] owns the GPU side: the
// background gradient, the particle and trail stages, and the post-process
// chain (chromatic aberration, bloom, vignette, film grain), all built on
// Kage shaders.
//
// Act transitions are tweened (via [gween]); ambient audio is synthesized
// and played through [beep].
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [beep]: https://github.com/gopxl/beep
package elegy
