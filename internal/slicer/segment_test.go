package slicer

import (
	"math"
	"testing"

	"github.com/allinfinite/R2DJ/internal/dsp"
)

const testRate = 44100

func sineAt(out []float64, start, n int, freq, amp float64) {
	for i := 0; i < n && start+i < len(out); i++ {
		out[start+i] = amp * math.Sin(2*math.Pi*freq*float64(i)/testRate)
	}
}

func TestSegmentDurationBounds(t *testing.T) {
	cfg := DefaultSegmentConfig()
	sg := NewSegmenter(cfg)

	// 4 seconds of unbroken loud tone: must be chopped into max-length
	// slices, never one overlong slice.
	samples := make([]float64, 4*testRate)
	sineAt(samples, 0, len(samples), 220, 0.5)

	slices := sg.Segment(dsp.Frame{Samples: samples, SampleRate: testRate})
	if len(slices) == 0 {
		t.Fatal("expected slices from a loud frame")
	}
	for i, s := range slices {
		if s.Duration < cfg.MinSliceSec-1e-9 || s.Duration > cfg.MaxSliceSec+1e-9 {
			t.Errorf("slice %d duration %.3fs outside [%v, %v]", i, s.Duration, cfg.MinSliceSec, cfg.MaxSliceSec)
		}
	}
}

func TestSegmentDiscardsShortBursts(t *testing.T) {
	sg := NewSegmenter(SegmentConfig{Threshold: 0.05, MinSliceSec: 0.1, MaxSliceSec: 1.0})

	// 20ms burst, well under the 100ms minimum.
	samples := make([]float64, testRate)
	sineAt(samples, 1000, testRate/50, 200, 0.5)

	if slices := sg.Segment(dsp.Frame{Samples: samples, SampleRate: testRate}); len(slices) != 0 {
		t.Errorf("expected 0 slices, got %d", len(slices))
	}
}

func TestSegmentSilence(t *testing.T) {
	sg := NewSegmenter(DefaultSegmentConfig())
	samples := make([]float64, testRate)
	if slices := sg.Segment(dsp.Frame{Samples: samples, SampleRate: testRate}); len(slices) != 0 {
		t.Errorf("expected no slices from silence, got %d", len(slices))
	}
}

// The scenario from the design notes: a 50ms loud low burst, silence, then
// a 400ms 300Hz tone must produce exactly one percussive and one tonal
// slice, both inside the duration bounds.
func TestSegmentBurstThenTone(t *testing.T) {
	cfg := DefaultSegmentConfig()
	sg := NewSegmenter(cfg)

	samples := make([]float64, 2*testRate)
	sineAt(samples, 0, testRate/20, 150, 0.3)              // 50ms at 150 Hz
	sineAt(samples, testRate/2, 2*testRate/5, 300, 0.1)    // 400ms at 300 Hz

	slices := sg.Segment(dsp.Frame{Samples: samples, SampleRate: testRate})
	if len(slices) != 2 {
		t.Fatalf("expected exactly 2 slices, got %d", len(slices))
	}

	if slices[0].Category != Percussive {
		t.Errorf("first slice: expected percussive, got %v (pitch %.1f, amp %.3f, dur %.3f)",
			slices[0].Category, slices[0].Pitch, slices[0].Amplitude, slices[0].Duration)
	}
	if slices[1].Category != Tonal {
		t.Errorf("second slice: expected tonal, got %v (pitch %.1f, amp %.3f, dur %.3f)",
			slices[1].Category, slices[1].Pitch, slices[1].Amplitude, slices[1].Duration)
	}
	for i, s := range slices {
		if s.Duration < cfg.MinSliceSec || s.Duration > cfg.MaxSliceSec {
			t.Errorf("slice %d duration %.3fs outside bounds", i, s.Duration)
		}
	}
	if slices[0].ID == slices[1].ID {
		t.Error("slice ids must be unique")
	}
}

func TestSegmentCopiesSamples(t *testing.T) {
	sg := NewSegmenter(DefaultSegmentConfig())

	samples := make([]float64, testRate)
	sineAt(samples, 0, testRate/10, 220, 0.5)
	frame := dsp.Frame{Samples: samples, SampleRate: testRate}

	slices := sg.Segment(frame)
	if len(slices) != 1 {
		t.Fatalf("expected 1 slice, got %d", len(slices))
	}

	before := slices[0].Samples[50]
	if before == 0 {
		t.Fatal("fixture error: probe sample should be nonzero")
	}
	for i := range samples {
		samples[i] = 0
	}
	if slices[0].Samples[50] != before {
		t.Error("slice samples must be owned copies, not views of the frame")
	}
}
