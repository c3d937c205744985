package dsp

import (
	"math"
	"testing"
)

func sine(freq float64, sampleRate, n int, amp float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

func TestEstimatePitchSine(t *testing.T) {
	const sampleRate = 44100

	tests := []struct {
		name string
		freq float64
	}{
		{"low voice", 110},
		{"concert a", 440},
		{"high tone", 660},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := sine(tt.freq, sampleRate, 4096, 0.5)
			got := EstimatePitch(samples, sampleRate)

			// Lag quantization limits precision; 5% is plenty for
			// classification purposes.
			if math.Abs(got-tt.freq) > tt.freq*0.05 {
				t.Errorf("expected ~%.0f Hz, got %.1f Hz", tt.freq, got)
			}
		})
	}
}

func TestEstimatePitchOutOfRange(t *testing.T) {
	// 2 kHz is above the search band; the estimator still reports some
	// in-band argmax (a subharmonic), never a value outside 80-800 Hz.
	samples := sine(2000, 44100, 4096, 0.5)
	got := EstimatePitch(samples, 44100)
	if got != 0 && (got < MinPitchHz-1 || got > MaxPitchHz+1) {
		t.Errorf("estimate %f Hz outside plausible band", got)
	}
}

func TestEstimatePitchShortFrame(t *testing.T) {
	// Shorter than the longest candidate lag (44100/80 ≈ 551 samples).
	samples := sine(440, 44100, 256, 0.5)
	if got := EstimatePitch(samples, 44100); got != 0 {
		t.Errorf("expected 0 for short frame, got %f", got)
	}
}

func TestEstimatePitchSilence(t *testing.T) {
	samples := make([]float64, 4096)
	if got := EstimatePitch(samples, 44100); got != 0 {
		t.Errorf("expected 0 for silence, got %f", got)
	}
}

func TestMeanAbs(t *testing.T) {
	samples := []float64{0.5, -0.5, 0.25, -0.25}
	if got := MeanAbs(samples); math.Abs(got-0.375) > 1e-9 {
		t.Errorf("expected 0.375, got %f", got)
	}
	if got := MeanAbs(nil); got != 0 {
		t.Errorf("expected 0 for empty input, got %f", got)
	}
}

func TestRMSSine(t *testing.T) {
	// RMS of a full-scale sine is 1/sqrt(2).
	samples := sine(440, 44100, 44100, 1.0)
	want := 1 / math.Sqrt2
	if got := RMS(samples); math.Abs(got-want) > 0.01 {
		t.Errorf("expected ~%f, got %f", want, got)
	}
}

func TestInt16Conversion(t *testing.T) {
	pcm := []int16{0, 16384, -16384, 32767, -32768}
	floats := FromInt16(pcm)
	back := ToInt16(floats)
	for i := range pcm {
		if diff := int(pcm[i]) - int(back[i]); diff > 1 || diff < -1 {
			t.Errorf("sample %d: expected %d, got %d", i, pcm[i], back[i])
		}
	}
}

func TestToInt16Clips(t *testing.T) {
	out := ToInt16([]float64{1.5, -1.5})
	if out[0] != 32767 {
		t.Errorf("positive overdrive: expected 32767, got %d", out[0])
	}
	if out[1] != -32768 {
		t.Errorf("negative overdrive: expected -32768, got %d", out[1])
	}
}
