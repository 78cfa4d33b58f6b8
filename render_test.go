package elegy

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestAppendQuadGeometry(t *testing.T) {
	verts, indices := appendQuad(nil, nil, 10, 20, 8, 8, 1, 1, 1, 1)
	if len(verts) != 4 || len(indices) != 6 {
		t.Fatalf("got %d verts, %d indices", len(verts), len(indices))
	}
	if verts[0].DstX != 10 || verts[0].DstY != 20 {
		t.Errorf("top-left at (%v,%v)", verts[0].DstX, verts[0].DstY)
	}
	if verts[2].DstX != 18 || verts[2].DstY != 28 {
		t.Errorf("bottom-right at (%v,%v)", verts[2].DstX, verts[2].DstY)
	}
	// Local UVs span the unit square for the falloff shader.
	if verts[0].SrcX != 0 || verts[2].SrcX != 1 || verts[2].SrcY != 1 {
		t.Error("quad UVs should span [0,1]")
	}
	// Two CCW-consistent triangles sharing the diagonal.
	want := []uint16{0, 1, 2, 0, 2, 3}
	for i, idx := range want {
		if indices[i] != idx {
			t.Fatalf("indices = %v, want %v", indices, want)
		}
	}
}

func TestAppendQuadIndexBase(t *testing.T) {
	verts, indices := appendQuad(nil, nil, 0, 0, 1, 1, 1, 1, 1, 1)
	verts, indices = appendQuad(verts, indices, 5, 5, 1, 1, 1, 1, 1, 1)
	if indices[6] != 4 {
		t.Errorf("second quad base index = %d, want 4", indices[6])
	}
	if len(verts) != 8 {
		t.Errorf("verts = %d, want 8", len(verts))
	}
}

func TestAppendRibbonQuadExpandsAlongNormal(t *testing.T) {
	// Horizontal segment: the ribbon should expand vertically.
	verts, _ := appendRibbonQuad(nil, nil, 0, 0, 10, 0, 4, 1, 1, 1, 1)
	if len(verts) != 4 {
		t.Fatalf("verts = %d", len(verts))
	}
	if verts[0].DstY != -2 || verts[1].DstY != 2 {
		t.Errorf("edges at y %v and %v, want -2 and 2", verts[0].DstY, verts[1].DstY)
	}
	if verts[0].DstX != 0 || verts[2].DstX != 10 {
		t.Error("ribbon should span the segment endpoints")
	}
}

func TestAppendRibbonQuadSkipsDegenerate(t *testing.T) {
	verts, indices := appendRibbonQuad(nil, nil, 5, 5, 5, 5, 4, 1, 1, 1, 1)
	if len(verts) != 0 || len(indices) != 0 {
		t.Error("zero-length segment should emit nothing")
	}
}

func TestParticleVisualOpacityClamp(t *testing.T) {
	s := &particle{baseSize: BaseParticleSize, lifetime: BaseLifetime, r: 1, g: 1, b: 1}

	// Quiet mix: base opacity 0.3, pulse can't push it below the 0.2 floor.
	for phase := 0.0; phase < 6.28; phase += 0.3 {
		s.pulsePhase = phase
		_, _, _, _, a := particleVisual(s, 1.0, 0.3)
		if a < 0.2-1e-6 || a > 0.9+1e-6 {
			t.Fatalf("alpha %v outside [0.2, 0.9]", a)
		}
	}

	// Even a loud mix with a huge base stays at the ceiling.
	_, _, _, _, a := particleVisual(s, 2.5, 5.0)
	if a > 0.9+1e-6 {
		t.Errorf("alpha %v above ceiling", a)
	}
}

func TestParticleVisualFadesAtEndOfLife(t *testing.T) {
	s := &particle{baseSize: BaseParticleSize, lifetime: 1, r: 1, g: 1, b: 1}
	s.age = 0.999
	_, _, _, _, a := particleVisual(s, 1, 0.5)
	if a > 0.01 {
		t.Errorf("alpha %v at end of life, want ~0", a)
	}
}

func TestParticleVisualBloomBoost(t *testing.T) {
	plain := &particle{baseSize: BaseParticleSize, lifetime: BaseLifetime, r: 1, g: 1, b: 1}
	hot := &particle{baseSize: BaseParticleSize, lifetime: BaseLifetime, r: 1, g: 1, b: 1, bloom: 1}

	_, pr, _, _, pa := particleVisual(plain, 1, 0.5)
	_, hr, _, _, ha := particleVisual(hot, 1, 0.5)
	if pa != ha {
		t.Fatal("bloom must not change alpha")
	}
	if hr <= pr {
		t.Errorf("bloom boost should lift color: %v vs %v", hr, pr)
	}
	// The boosted channel exceeds the premultiplied ceiling; that is the
	// point: the bloom bright-pass picks it up.
	if hr != pr*2 {
		t.Errorf("full bloom should double the channel: %v vs %v", hr, pr)
	}
}

func TestParticleVisualAudioScale(t *testing.T) {
	s := &particle{baseSize: BaseParticleSize, lifetime: BaseLifetime, r: 1, g: 1, b: 1, audioReact: 1}
	quiet, _, _, _, _ := particleVisual(s, 1.0, 0.5)
	loud, _, _, _, _ := particleVisual(s, 2.5, 0.5)
	if loud <= quiet {
		t.Errorf("audio scale should grow particles: %v vs %v", loud, quiet)
	}
	assertNear(t, "ratio", loud/quiet, 2.5)
}

func TestParticleVisualReactWeightDifferentiates(t *testing.T) {
	light := &particle{baseSize: BaseParticleSize, lifetime: BaseLifetime, r: 1, g: 1, b: 1, audioReact: 0.2}
	heavy := &particle{baseSize: BaseParticleSize, lifetime: BaseLifetime, r: 1, g: 1, b: 1, audioReact: 1}

	// At the same loud mix, the heavier weight swells further.
	lightSize, _, _, _, _ := particleVisual(light, 2.5, 0.5)
	heavySize, _, _, _, _ := particleVisual(heavy, 2.5, 0.5)
	if heavySize <= lightSize {
		t.Errorf("react weight 1 should outgrow 0.2: %v vs %v", heavySize, lightSize)
	}
	assertNear(t, "light ratio", lightSize/(BaseParticleSize*0.5), 1+(2.5-1)*0.2)
	assertNear(t, "heavy ratio", heavySize/(BaseParticleSize*0.5), 2.5)

	// A zero weight ignores the mix entirely.
	deaf := &particle{baseSize: BaseParticleSize, lifetime: BaseLifetime, r: 1, g: 1, b: 1}
	quiet, _, _, _, _ := particleVisual(deaf, 1.0, 0.5)
	loud, _, _, _, _ := particleVisual(deaf, 2.5, 0.5)
	assertNear(t, "deaf", loud, quiet)
}

func TestPostParamsClamped(t *testing.T) {
	params := ActParams{
		ChromaticAberration: 1.0,
		Bloom:               5.0,
		Vignette:            3.0,
	}
	m := NewMixer()
	m.level = MaxVolume

	ab, bloom, vig := postParams(params, m)
	assertNear(t, "aberration", ab, maxChromaticAberration)
	assertNear(t, "bloom", bloom, maxBloomIntensity)
	assertNear(t, "vignette", vig, maxVignetteIntensity)
}

func TestVignetteSmoothness(t *testing.T) {
	// Full intensity: tight falloff. Zero intensity: widest.
	assertNear(t, "full", vignetteSmoothness(maxVignetteIntensity), 0.3)
	assertNear(t, "zero", vignetteSmoothness(0), 0.8)
	mid := vignetteSmoothness(maxVignetteIntensity / 2)
	if mid <= 0.3 || mid >= 0.8 {
		t.Errorf("mid smoothness %v outside (0.3, 0.8)", mid)
	}
}

func TestFlushResetsBuffers(t *testing.T) {
	p := &Pipeline{
		verts:   make([]ebiten.Vertex, 0, 64),
		indices: make([]uint16, 0, 96),
	}
	p.verts, p.indices = appendQuad(p.verts, p.indices, 0, 0, 1, 1, 1, 1, 1, 1)
	// A nil shader would crash a real flush; emptiness short-circuits.
	p.verts = p.verts[:0]
	p.indices = p.indices[:0]
	p.flush(nil, nil)
}

func TestQuadBatchStaysUnderIndexLimit(t *testing.T) {
	var verts []ebiten.Vertex
	var indices []uint16
	quads := maxVertsPerFlush / 4
	for i := 0; i < quads; i++ {
		verts, indices = appendQuad(verts, indices, float64(i), 0, 1, 1, 1, 1, 1, 1)
	}
	if len(verts) > maxVertsPerFlush {
		t.Fatalf("verts = %d exceeds flush limit", len(verts))
	}
	// The last index must still be representable.
	last := indices[len(indices)-1]
	if int(last) != len(verts)-1 {
		t.Errorf("last index = %d, want %d", last, len(verts)-1)
	}
}
