package dsp

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Bands holds coarse spectral energy for the TUI meter, each in [0, 1].
type Bands struct {
	Low  float64 // 20–250 Hz
	Mid  float64 // 250–2000 Hz
	High float64 // 2000–8000 Hz
}

// BandEnergy computes Hann-windowed FFT band energies for a frame.
// Input longer than 2048 samples is truncated; shorter input is
// zero-padded to the next power of two (min 256).
func BandEnergy(samples []float64, sampleRate int) Bands {
	if len(samples) == 0 || sampleRate <= 0 {
		return Bands{}
	}

	n := len(samples)
	if n > 2048 {
		n = 2048
	}
	size := nextPow2(n)
	if size < 256 {
		size = 256
	}

	buf := make([]complex128, size)
	for i := 0; i < n; i++ {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size)))
		buf[i] = complex(samples[i]*w, 0)
	}

	spec := fft.FFT(buf)
	res := float64(sampleRate) / float64(size)
	return Bands{
		Low:  bandEnergy(spec, res, 20, 250),
		Mid:  bandEnergy(spec, res, 250, 2000),
		High: bandEnergy(spec, res, 2000, 8000),
	}
}

func bandEnergy(spec []complex128, resolution, minHz, maxHz float64) float64 {
	lo := int(math.Floor(minHz / resolution))
	hi := int(math.Ceil(maxHz/resolution)) + 1
	if hi > len(spec)/2 {
		hi = len(spec) / 2
	}
	if lo >= hi {
		return 0
	}
	sum := 0.0
	for _, v := range spec[lo:hi] {
		sum += cmplx.Abs(v)
	}
	normalized := sum / float64(hi-lo)
	if normalized > 1 {
		return 1
	}
	return normalized
}

func nextPow2(n int) int {
	v := 1
	for v < n {
		v <<= 1
	}
	return v
}
