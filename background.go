package elegy

import "github.com/hajimehoshi/ebiten/v2"

// backgroundShaderSrc renders the act gradient: a vertical blend with
// quintic smoothing of the interpolant, a bass-driven breathing lift, and
// a faint built-in edge darkening independent of the post vignette.
const backgroundShaderSrc = `//kage:unit pixels
package main

var Top vec4
var Bottom vec4
var Size vec2
var Breathe float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	t := clamp(dst.y/Size.y, 0.0, 1.0)
	t = t * t * t * (t*(t*6.0-15.0) + 10.0)
	c := mix(Top, Bottom, t)

	c.rgb *= 1.0 + Breathe

	p := dst.xy/Size*2.0 - 1.0
	edge := smoothstep(0.7, 1.35, length(p))
	c.rgb *= 1.0 - 0.25*edge

	return vec4(c.rgb, 1.0)
}
`

// backgroundBreathe converts the bass band into the gradient's brightness
// lift, smoothed on the engine clock by the caller's frame cadence.
func backgroundBreathe(bass float64) float64 {
	return mapRange(bass, 0, 1, 0, 0.15)
}

// drawBackground fills target with the current act gradient.
func (p *Pipeline) drawBackground(target *ebiten.Image, params ActParams, mixer *Mixer) {
	top := params.GradientTop
	bottom := params.GradientBottom

	p.bgTopF[0], p.bgTopF[1], p.bgTopF[2], p.bgTopF[3] =
		float32(top.R), float32(top.G), float32(top.B), 1
	p.bgBottomF[0], p.bgBottomF[1], p.bgBottomF[2], p.bgBottomF[3] =
		float32(bottom.R), float32(bottom.G), float32(bottom.B), 1
	p.bgUniforms["Breathe"] = float32(backgroundBreathe(mixer.Bass()))

	p.rectOp.Uniforms = p.bgUniforms
	p.rectOp.Images[0] = nil
	p.rectOp.Blend = ebiten.BlendCopy
	target.DrawRectShader(p.width, p.height, p.backgroundShader, &p.rectOp)
}
