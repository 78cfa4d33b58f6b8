package elegy

import (
	"math"
	"testing"
)

func TestDroneStreamerFillsBuffer(t *testing.T) {
	d := newDroneStreamer()
	buf := make([][2]float64, 512)
	n, ok := d.Stream(buf)
	if !ok || n != len(buf) {
		t.Fatalf("Stream = (%d, %v)", n, ok)
	}
	if d.Err() != nil {
		t.Errorf("Err = %v", d.Err())
	}
}

func TestDroneStreamerStaysInRange(t *testing.T) {
	d := newDroneStreamer()
	buf := make([][2]float64, 4096)
	// A few seconds of audio: every sample must stay inside [-1, 1] with
	// real headroom, or the volume effect can clip.
	for block := 0; block < 32; block++ {
		d.Stream(buf)
		for i := range buf {
			if math.Abs(buf[i][0]) > 0.9 || math.Abs(buf[i][1]) > 0.9 {
				t.Fatalf("sample out of headroom: %v", buf[i])
			}
		}
	}
}

func TestDroneStreamerIsNotSilent(t *testing.T) {
	d := newDroneStreamer()
	buf := make([][2]float64, 4096)
	d.Stream(buf)
	var energy float64
	for i := range buf {
		energy += buf[i][0] * buf[i][0]
	}
	if energy == 0 {
		t.Error("drone produced silence")
	}
}
