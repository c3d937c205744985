package ambient

import (
	"time"

	"github.com/allinfinite/R2DJ/internal/slicer"
)

// Config tunes the probabilistic retrigger behavior. Everything here is a
// musical-timing heuristic, not a real-time guarantee.
type Config struct {
	// Lifetime is the fixed wall-clock life of a playback loop. Expiry is
	// independent of store eviction: a slice can leave the visible store
	// while its loop keeps sounding, and vice versa.
	Lifetime time.Duration

	// Period is the retrigger interval per category: faster subdivisions
	// for percussive material, slower for sustained material.
	Period map[slicer.Category]time.Duration

	// BaseProb is the per-tick trigger probability before the feedback
	// term is added.
	BaseProb map[slicer.Category]float64

	// FeedbackGain scales the global feedback-intensity control's
	// contribution to the trigger probability.
	FeedbackGain float64

	// Weight is the per-category volume multiplier.
	Weight map[slicer.Category]float64

	// VolumeFloor keeps aged slices audible instead of fading to nothing.
	VolumeFloor float64
}

// DefaultConfig returns the hand-tuned loop behavior, built around a
// 120 BPM feel (quarter note = 500ms).
func DefaultConfig() Config {
	return Config{
		Lifetime: 36 * time.Second,
		Period: map[slicer.Category]time.Duration{
			slicer.Percussive: 250 * time.Millisecond,
			slicer.Voice:      500 * time.Millisecond,
			slicer.Noise:      750 * time.Millisecond,
			slicer.Tonal:      time.Second,
		},
		BaseProb: map[slicer.Category]float64{
			slicer.Percussive: 0.25,
			slicer.Tonal:      0.18,
			slicer.Voice:      0.20,
			slicer.Noise:      0.12,
		},
		FeedbackGain: 0.5,
		Weight: map[slicer.Category]float64{
			slicer.Percussive: 1.0,
			slicer.Tonal:      0.8,
			slicer.Voice:      0.9,
			slicer.Noise:      0.5,
		},
		VolumeFloor: 0.15,
	}
}

// rateRange is the playback-rate randomization band per category. Tonal
// material gets a slower, narrower band so it smears into something
// ethereal instead of chirping.
var rateRange = map[slicer.Category][2]float64{
	slicer.Percussive: {0.8, 1.6},
	slicer.Tonal:      {0.5, 0.9},
	slicer.Voice:      {0.7, 1.3},
	slicer.Noise:      {0.6, 1.4},
}

func (c Config) period(cat slicer.Category) time.Duration {
	if p, ok := c.Period[cat]; ok && p > 0 {
		return p
	}
	return 500 * time.Millisecond
}

func (c Config) baseProb(cat slicer.Category) float64 {
	return c.BaseProb[cat]
}

func (c Config) weight(cat slicer.Category) float64 {
	if w, ok := c.Weight[cat]; ok {
		return w
	}
	return 1
}
