package ambient

import (
	"sync/atomic"

	"github.com/gopxl/beep"
)

// sliceStreamer plays a slice's mono samples on both channels once.
type sliceStreamer struct {
	samples []float64
	pos     int
}

func (s *sliceStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.pos >= len(s.samples) {
		return 0, false
	}
	n := 0
	for i := range samples {
		if s.pos >= len(s.samples) {
			break
		}
		v := s.samples[s.pos]
		samples[i][0] = v
		samples[i][1] = v
		s.pos++
		n++
	}
	return n, true
}

func (s *sliceStreamer) Err() error { return nil }

// gate wraps a streamer with a shared session flag so a hard stop can cut
// every in-flight sound at once without touching the mixer.
type gate struct {
	s    beep.Streamer
	open *atomic.Bool
}

func (g gate) Stream(samples [][2]float64) (int, bool) {
	if !g.open.Load() {
		return 0, false
	}
	return g.s.Stream(samples)
}

func (g gate) Err() error { return g.s.Err() }
