package elegy

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// whitePixel is a 1x1 white image used for untextured overlay fills.
var whitePixel *ebiten.Image

func init() {
	whitePixel = ebiten.NewImage(1, 1)
	whitePixel.Fill(color.White)
}

// maxVertsPerFlush keeps index values inside uint16 range.
const maxVertsPerFlush = 65532

// --- Kage shader sources ---
// All shaders use //kage:unit pixels as required by Ebitengine.
// Quad shaders receive no source image; SrcX/SrcY carry local [0,1] UVs and
// vertex colors arrive premultiplied.

const particleShaderSrc = `//kage:unit pixels
package main

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	// Soft circular falloff: a smoothstep edge blended with a gaussian
	// core so the center glows and the rim feathers.
	d := length(src-vec2(0.5, 0.5)) * 2
	edge := 1 - smoothstep(0.55, 1.0, d)
	core := exp(-d * d * 4.0)
	a := clamp(edge*0.55+core*0.75, 0.0, 1.0)
	return color * a
}
`

const trailShaderSrc = `//kage:unit pixels
package main

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	// src.x runs across the ribbon width; feather both edges.
	w := abs(src.x*2 - 1)
	falloff := 1 - smoothstep(0.35, 1.0, w)
	out := color * falloff
	if out.a < 0.001 {
		return vec4(0)
	}
	return out
}
`

// --- Pipeline ---

// Pipeline renders one engine frame: background gradient, trail and
// particle stages into an offscreen scene target, then the post-process
// chain onto the screen. All shaders compile at construction; scratch
// targets and uniform maps persist across frames.
type Pipeline struct {
	width, height int

	scene *ebiten.Image
	ping  *ebiten.Image
	pong  *ebiten.Image

	particleShader   *ebiten.Shader
	trailShader      *ebiten.Shader
	backgroundShader *ebiten.Shader
	aberrationShader *ebiten.Shader
	extractShader    *ebiten.Shader
	vignetteShader   *ebiten.Shader
	grainShader      *ebiten.Shader

	bloomTemps []*ebiten.Image

	verts   []ebiten.Vertex
	indices []uint16
	triOp   ebiten.DrawTrianglesShaderOptions

	// Persistent uniform maps with fixed float32 backing buffers, so per
	// frame updates write in place instead of allocating.
	bgUniforms  map[string]any
	abUniforms  map[string]any
	exUniforms  map[string]any
	vigUniforms map[string]any
	grUniforms  map[string]any

	bgTopF    [4]float32
	bgBottomF [4]float32
	bgSizeF   [2]float32

	rectOp    ebiten.DrawRectShaderOptions
	overlayOp ebiten.DrawImageOptions
}

// NewPipeline compiles every stage shader and allocates the offscreen
// targets. A compile failure is returned, not panicked: a host without a
// working graphics stack should exit cleanly.
func NewPipeline(width, height int) (*Pipeline, error) {
	p := &Pipeline{
		width:       width,
		height:      height,
		scene:       ebiten.NewImage(width, height),
		ping:        ebiten.NewImage(width, height),
		pong:        ebiten.NewImage(width, height),
		verts:       make([]ebiten.Vertex, 0, maxVertsPerFlush),
		indices:     make([]uint16, 0, maxVertsPerFlush/4*6),
		bgUniforms:  make(map[string]any, 6),
		abUniforms:  make(map[string]any, 2),
		exUniforms:  make(map[string]any, 2),
		vigUniforms: make(map[string]any, 3),
		grUniforms:  make(map[string]any, 2),
	}

	for _, sh := range []struct {
		name string
		src  string
		dst  **ebiten.Shader
	}{
		{"particle", particleShaderSrc, &p.particleShader},
		{"trail", trailShaderSrc, &p.trailShader},
		{"background", backgroundShaderSrc, &p.backgroundShader},
		{"aberration", aberrationShaderSrc, &p.aberrationShader},
		{"bloom extract", bloomExtractShaderSrc, &p.extractShader},
		{"vignette", vignetteShaderSrc, &p.vignetteShader},
		{"grain", grainShaderSrc, &p.grainShader},
	} {
		s, err := ebiten.NewShader([]byte(sh.src))
		if err != nil {
			return nil, fmt.Errorf("elegy: compile %s shader: %w", sh.name, err)
		}
		*sh.dst = s
	}

	// Kawase chain at 1/2, 1/4, 1/8 resolution.
	for div := 2; div <= 8; div *= 2 {
		p.bloomTemps = append(p.bloomTemps, ebiten.NewImage(width/div, height/div))
	}

	p.bgUniforms["Top"] = p.bgTopF[:]
	p.bgUniforms["Bottom"] = p.bgBottomF[:]
	p.bgUniforms["Size"] = p.bgSizeF[:]
	p.bgSizeF[0] = float32(width)
	p.bgSizeF[1] = float32(height)
	return p, nil
}

// Draw renders the engine's current state onto screen.
func (p *Pipeline) Draw(screen *ebiten.Image, e *Engine) {
	params := e.timeline.Params()
	mixer := e.mixer

	p.drawBackground(p.scene, params, mixer)
	p.drawTrails(p.scene, e)
	p.drawParticles(p.scene, e, params, mixer)
	p.postProcess(screen, e, params, mixer)

	if f := e.HyperFlash(); f > 0 {
		p.overlayOp.GeoM.Reset()
		p.overlayOp.GeoM.Scale(float64(p.width), float64(p.height))
		p.overlayOp.ColorScale.Reset()
		a := float32(f * f)
		p.overlayOp.ColorScale.Scale(a, a, a, a)
		p.overlayOp.Blend = ebiten.BlendLighter
		screen.DrawImage(whitePixel, &p.overlayOp)
	}
}

// drawParticles builds billboard quads for every live particle and submits
// them additively through the soft-circle shader.
func (p *Pipeline) drawParticles(target *ebiten.Image, e *Engine, params ActParams, mixer *Mixer) {
	p.verts = p.verts[:0]
	p.indices = p.indices[:0]

	audioScale := mixer.VisualScale()
	opacityBase := mixer.OpacityBase()

	for i := range e.pool.slots {
		s := &e.pool.slots[i]
		if !s.active {
			continue
		}
		size, cr, cg, cb, ca := particleVisual(s, audioScale, opacityBase)
		if ca <= 0 || size <= 0 {
			continue
		}
		if len(p.verts)+4 > maxVertsPerFlush {
			p.flush(target, p.particleShader)
		}
		p.verts, p.indices = appendQuad(p.verts, p.indices,
			s.x-size/2, s.y-size/2, size, size, cr, cg, cb, ca)
	}
	p.flush(target, p.particleShader)
}

// drawTrails builds ribbon quads from each particle's trail ring. Trails
// render beneath the particles that own them.
func (p *Pipeline) drawTrails(target *ebiten.Image, e *Engine) {
	p.verts = p.verts[:0]
	p.indices = p.indices[:0]

	for i := range e.pool.slots {
		s := &e.pool.slots[i]
		if !s.active || !s.hasTrail || s.trail.count < 2 {
			continue
		}
		for j := 0; j < s.trail.count-1; j++ {
			a := s.trail.at(j)
			b := s.trail.at(j + 1)
			alpha := segmentAlpha(a, j, s.trail.count)
			if alpha == 0 {
				continue
			}
			if len(p.verts)+4 > maxVertsPerFlush {
				p.flush(target, p.trailShader)
			}
			fa := float32(alpha)
			p.verts, p.indices = appendRibbonQuad(p.verts, p.indices,
				a.x, a.y, b.x, b.y, segmentWidth(j),
				s.r*fa, s.g*fa, s.b*fa, fa)
		}
	}
	p.flush(target, p.trailShader)
}

// flush submits the accumulated quads with the given shader and resets the
// buffers. Premultiplied additive blending throughout.
func (p *Pipeline) flush(target *ebiten.Image, shader *ebiten.Shader) {
	if len(p.verts) == 0 {
		return
	}
	p.triOp.Blend = ebiten.BlendLighter
	target.DrawTrianglesShader(p.verts, p.indices, shader, &p.triOp)
	p.verts = p.verts[:0]
	p.indices = p.indices[:0]
}

// particleVisual computes the rendered size and premultiplied color of a
// live particle: audio-reactive scale weighted by the particle's own react
// weight, age pulse, opacity clamped to [0.2, 0.9] before the lifetime
// fade, and the HDR bloom boost baked into the color channels.
func particleVisual(s *particle, audioScale, opacityBase float64) (size float64, r, g, b, a float32) {
	progress := s.age / s.lifetime
	pulse := pulseFactor(s.age, progress, s.pulsePhase)

	// A weight of 1 tracks the mixer's full scale range; 0 ignores it.
	size = s.baseSize * 0.5 * (1 + (audioScale-1)*s.audioReact) * pulse

	opacity := clamp(opacityBase*pulse, 0.2, 0.9)
	opacity *= lifetimeFade(progress)

	boost := 1 + s.bloom
	a = float32(opacity)
	r = s.r * a * boost
	g = s.g * a * boost
	b = s.b * a * boost
	return size, r, g, b, a
}

// appendQuad appends an axis-aligned quad with [0,1] local UVs in SrcX/SrcY
// and a uniform premultiplied color.
func appendQuad(verts []ebiten.Vertex, indices []uint16,
	x, y, w, h float64, r, g, b, a float32) ([]ebiten.Vertex, []uint16) {

	base := uint16(len(verts))
	x0, y0 := float32(x), float32(y)
	x1, y1 := float32(x+w), float32(y+h)

	verts = append(verts,
		ebiten.Vertex{DstX: x0, DstY: y0, SrcX: 0, SrcY: 0, ColorR: r, ColorG: g, ColorB: b, ColorA: a},
		ebiten.Vertex{DstX: x1, DstY: y0, SrcX: 1, SrcY: 0, ColorR: r, ColorG: g, ColorB: b, ColorA: a},
		ebiten.Vertex{DstX: x1, DstY: y1, SrcX: 1, SrcY: 1, ColorR: r, ColorG: g, ColorB: b, ColorA: a},
		ebiten.Vertex{DstX: x0, DstY: y1, SrcX: 0, SrcY: 1, ColorR: r, ColorG: g, ColorB: b, ColorA: a},
	)
	indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	return verts, indices
}

// appendRibbonQuad appends a quad spanning the segment (x0,y0)-(x1,y1)
// with the given width, expanded along the segment normal. SrcX runs
// across the ribbon for the edge feather.
func appendRibbonQuad(verts []ebiten.Vertex, indices []uint16,
	x0, y0, x1, y1, width float64, r, g, b, a float32) ([]ebiten.Vertex, []uint16) {

	dx := x1 - x0
	dy := y1 - y0
	length := math.Hypot(dx, dy)
	if length < 1e-6 {
		return verts, indices
	}
	// Unit normal, scaled to half width.
	nx := dy / length * width / 2
	ny := -dx / length * width / 2

	base := uint16(len(verts))
	verts = append(verts,
		ebiten.Vertex{DstX: float32(x0 + nx), DstY: float32(y0 + ny), SrcX: 0, SrcY: 0, ColorR: r, ColorG: g, ColorB: b, ColorA: a},
		ebiten.Vertex{DstX: float32(x0 - nx), DstY: float32(y0 - ny), SrcX: 1, SrcY: 0, ColorR: r, ColorG: g, ColorB: b, ColorA: a},
		ebiten.Vertex{DstX: float32(x1 - nx), DstY: float32(y1 - ny), SrcX: 1, SrcY: 1, ColorR: r, ColorG: g, ColorB: b, ColorA: a},
		ebiten.Vertex{DstX: float32(x1 + nx), DstY: float32(y1 + ny), SrcX: 0, SrcY: 1, ColorR: r, ColorG: g, ColorB: b, ColorA: a},
	)
	indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	return verts, indices
}
