package elegy

import (
	"log"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

const ambientSampleRate = beep.SampleRate(44100)

// AmbientPlayer is the audio sink: a procedurally generated drone played
// through the speaker, with its gain driven by the mixer's engagement
// level. If the audio device cannot be opened the player stays muted and
// everything else keeps running.
type AmbientPlayer struct {
	enabled bool
	ctrl    *beep.Ctrl
	volume  *effects.Volume
}

// NewAmbientPlayer opens the speaker and starts the (initially silent)
// drone. Device failure is logged and non-fatal.
func NewAmbientPlayer() *AmbientPlayer {
	p := &AmbientPlayer{}
	if err := speaker.Init(ambientSampleRate, ambientSampleRate.N(100*time.Millisecond)); err != nil {
		log.Printf("elegy: audio device unavailable, running muted: %v", err)
		return p
	}
	p.ctrl = &beep.Ctrl{Streamer: newDroneStreamer(), Paused: true}
	p.volume = &effects.Volume{
		Streamer: p.ctrl,
		Base:     2,
		Volume:   -6,
		Silent:   true,
	}
	speaker.Play(p.volume)
	p.enabled = true
	return p
}

// SetGain sets the playback gain in [0, 1]. Gains below the audible floor
// pause the streamer entirely.
func (p *AmbientPlayer) SetGain(gain float64) {
	if !p.enabled {
		return
	}
	speaker.Lock()
	if gain < audibleFloor {
		p.volume.Silent = true
		p.ctrl.Paused = true
	} else {
		p.ctrl.Paused = false
		p.volume.Silent = false
		p.volume.Volume = math.Log2(gain)
	}
	speaker.Unlock()
}

// Close stops playback and releases the streamer.
func (p *AmbientPlayer) Close() {
	if !p.enabled {
		return
	}
	speaker.Clear()
	p.enabled = false
}

// droneStreamer synthesizes the ambient bed: a detuned pair of low sines
// under a slow tremolo, with a faint fifth on top. Implements beep.Streamer.
type droneStreamer struct {
	phase1, phase2, phase3 float64
	lfoPhase               float64
}

func newDroneStreamer() *droneStreamer {
	return &droneStreamer{}
}

func (d *droneStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	const (
		f1  = 55.0   // A1
		f2  = 55.55  // detuned twin
		f3  = 82.41  // E2, the fifth
		lfo = 0.11   // tremolo rate
	)
	sr := float64(ambientSampleRate)
	for i := range samples {
		d.phase1 += 2 * math.Pi * f1 / sr
		d.phase2 += 2 * math.Pi * f2 / sr
		d.phase3 += 2 * math.Pi * f3 / sr
		d.lfoPhase += 2 * math.Pi * lfo / sr

		trem := 0.75 + 0.25*math.Sin(d.lfoPhase)
		v := (math.Sin(d.phase1)*0.45 +
			math.Sin(d.phase2)*0.35 +
			math.Sin(d.phase3)*0.12) * trem * 0.5

		// Slight stereo spread from the detuned partial.
		l := v + math.Sin(d.phase2)*0.03
		r := v - math.Sin(d.phase2)*0.03
		samples[i][0] = l
		samples[i][1] = r
	}
	return len(samples), true
}

func (d *droneStreamer) Err() error { return nil }
