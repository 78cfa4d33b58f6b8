package elegy

import "github.com/hajimehoshi/ebiten/v2"

// Post-process ceilings. Act tables stay below these; the clamps guard
// against bad blends during transitions.
const (
	maxChromaticAberration = 0.015
	maxVignetteIntensity   = 0.6
	maxBloomIntensity      = 1.0

	bloomThreshold = 0.7
	bloomKnee      = 0.1

	grainStrength = 0.02
)

const aberrationShaderSrc = `//kage:unit pixels
package main

var Intensity float
var Size vec2

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	center := Size / 2
	offset := (src - center) * Intensity

	r := imageSrc0At(src + offset).r
	g := imageSrc0At(src).g
	b := imageSrc0At(src - offset).b
	a := imageSrc0At(src).a
	return vec4(r, g, b, a)
}
`

const bloomExtractShaderSrc = `//kage:unit pixels
package main

var Threshold float
var Knee float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	lum := dot(c.rgb, vec3(0.2126, 0.7152, 0.0722))
	w := smoothstep(Threshold-Knee, Threshold+Knee, lum)
	return vec4(c.rgb*w, c.a)
}
`

const vignetteShaderSrc = `//kage:unit pixels
package main

var Intensity float
var Smoothness float
var Size vec2

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	p := src/Size*2.0 - 1.0
	d := length(p) * 0.7071
	v := 1.0 - Intensity*smoothstep(1.0-Smoothness, 1.0, d)
	return vec4(c.rgb*v, c.a)
}
`

const grainShaderSrc = `//kage:unit pixels
package main

var Time float
var Strength float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	n := fract(sin(dot(dst.xy, vec2(12.9898, 78.233))+Time*91.7) * 43758.5453)
	n = (n - 0.5) * 2.0 * Strength
	lum := dot(c.rgb, vec3(0.2126, 0.7152, 0.0722))
	c.rgb += n * (0.25 + lum*0.75)
	return vec4(clamp(c.rgb, vec3(0.0), vec3(1.0)), c.a)
}
`

// vignetteSmoothness widens the vignette's falloff as its intensity drops,
// so faint vignettes read as atmosphere rather than a hard ring.
func vignetteSmoothness(intensity float64) float64 {
	return 0.3 + (1-clamp(intensity, 0, maxVignetteIntensity)/maxVignetteIntensity)*0.5
}

// postParams resolves the final clamped post-process intensities from the
// act blend and the audio level.
func postParams(params ActParams, mixer *Mixer) (aberration, bloom, vignette float64) {
	aberration = clamp(params.ChromaticAberration, 0, maxChromaticAberration)
	bloom = clamp(params.Bloom+mixer.BloomBoost()*0.3, 0, maxBloomIntensity)
	vignette = clamp(params.Vignette, 0, maxVignetteIntensity)
	return aberration, bloom, vignette
}

// postProcess runs the fixed chain over the offscreen scene:
// chromatic aberration, bloom, vignette, then film grain onto screen.
func (p *Pipeline) postProcess(screen *ebiten.Image, e *Engine, params ActParams, mixer *Mixer) {
	aberration, bloom, vignette := postParams(params, mixer)

	p.applyAberration(p.scene, p.ping, aberration)
	p.applyBloom(p.ping, p.pong, bloom)
	p.applyVignette(p.pong, p.ping, vignette)
	p.applyGrain(p.ping, screen, e.Elapsed())
}

func (p *Pipeline) applyAberration(src, dst *ebiten.Image, intensity float64) {
	p.abUniforms["Intensity"] = float32(intensity)
	p.abUniforms["Size"] = p.bgSizeF[:]

	p.rectOp.Uniforms = p.abUniforms
	p.rectOp.Images[0] = src
	p.rectOp.Blend = ebiten.BlendCopy
	dst.DrawRectShader(p.width, p.height, p.aberrationShader, &p.rectOp)
}

// applyBloom extracts bright regions, blurs them down the Kawase chain,
// and composites the glow additively over the source.
func (p *Pipeline) applyBloom(src, dst *ebiten.Image, intensity float64) {
	// Base image passes through untouched.
	var op ebiten.DrawImageOptions
	op.Blend = ebiten.BlendCopy
	dst.DrawImage(src, &op)
	if intensity <= 0 {
		return
	}

	// Bright-pass at full resolution. The scene target is free scratch at
	// this point in the chain; aberration already copied it forward.
	p.exUniforms["Threshold"] = float32(bloomThreshold)
	p.exUniforms["Knee"] = float32(bloomKnee)
	p.rectOp.Uniforms = p.exUniforms
	p.rectOp.Images[0] = src
	p.rectOp.Blend = ebiten.BlendCopy
	p.scene.DrawRectShader(p.width, p.height, p.extractShader, &p.rectOp)

	// Walk down the chain with linear filtering doing the blur.
	prev := p.scene
	for _, t := range p.bloomTemps {
		t.Clear()
		op.GeoM.Reset()
		op.GeoM.Scale(
			float64(t.Bounds().Dx())/float64(prev.Bounds().Dx()),
			float64(t.Bounds().Dy())/float64(prev.Bounds().Dy()),
		)
		op.Blend = ebiten.BlendCopy
		op.Filter = ebiten.FilterLinear
		t.DrawImage(prev, &op)
		prev = t
	}

	// Walk back up, accumulating softness, then composite additively.
	for i := len(p.bloomTemps) - 2; i >= 0; i-- {
		t := p.bloomTemps[i]
		op.GeoM.Reset()
		op.GeoM.Scale(
			float64(t.Bounds().Dx())/float64(prev.Bounds().Dx()),
			float64(t.Bounds().Dy())/float64(prev.Bounds().Dy()),
		)
		op.Blend = ebiten.BlendLighter
		op.Filter = ebiten.FilterLinear
		t.DrawImage(prev, &op)
		prev = t
	}

	op.GeoM.Reset()
	op.GeoM.Scale(
		float64(p.width)/float64(prev.Bounds().Dx()),
		float64(p.height)/float64(prev.Bounds().Dy()),
	)
	op.Blend = ebiten.BlendLighter
	op.Filter = ebiten.FilterLinear
	f := float32(intensity)
	op.ColorScale.Reset()
	op.ColorScale.Scale(f, f, f, f)
	dst.DrawImage(prev, &op)
}

func (p *Pipeline) applyVignette(src, dst *ebiten.Image, intensity float64) {
	p.vigUniforms["Intensity"] = float32(intensity)
	p.vigUniforms["Smoothness"] = float32(vignetteSmoothness(intensity))
	p.vigUniforms["Size"] = p.bgSizeF[:]

	p.rectOp.Uniforms = p.vigUniforms
	p.rectOp.Images[0] = src
	p.rectOp.Blend = ebiten.BlendCopy
	dst.DrawRectShader(p.width, p.height, p.vignetteShader, &p.rectOp)
}

func (p *Pipeline) applyGrain(src, dst *ebiten.Image, elapsed float64) {
	p.grUniforms["Time"] = float32(elapsed)
	p.grUniforms["Strength"] = float32(grainStrength)

	p.rectOp.Uniforms = p.grUniforms
	p.rectOp.Images[0] = src
	p.rectOp.Blend = ebiten.BlendCopy
	dst.DrawRectShader(p.width, p.height, p.grainShader, &p.rectOp)
}
