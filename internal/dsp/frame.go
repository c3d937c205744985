package dsp

import "math"

// Frame is a fixed run of mono samples captured at a known sample rate.
// Frames are ephemeral: produced by capture, consumed by segmentation,
// never persisted.
type Frame struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the frame length in seconds.
func (f Frame) Duration() float64 {
	if f.SampleRate <= 0 {
		return 0
	}
	return float64(len(f.Samples)) / float64(f.SampleRate)
}

// MeanAbs returns the mean absolute amplitude of samples, in [0, 1]
// for normalized input.
func MeanAbs(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range samples {
		if v < 0 {
			v = -v
		}
		sum += v
	}
	return sum / float64(len(samples))
}

// RMS returns the root-mean-square of samples.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range samples {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// FromInt16 converts 16-bit PCM to normalized float64 samples.
func FromInt16(pcm []int16) []float64 {
	out := make([]float64, len(pcm))
	for i, s := range pcm {
		out[i] = float64(s) / 32768.0
	}
	return out
}

// ToInt16 converts normalized float64 samples to 16-bit PCM with clipping.
func ToInt16(samples []float64) []int16 {
	out := make([]int16, len(samples))
	for i, f := range samples {
		v := f * 32768.0
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		out[i] = int16(v)
	}
	return out
}
