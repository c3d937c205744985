package slicer

// Classification thresholds. Fixed on purpose: this is a hand-tuned
// instrument, not a trained classifier.
const (
	percussiveMaxDur   = 0.3  // seconds
	percussiveMinAmp   = 0.15 // mean absolute amplitude
	percussiveMaxPitch = 200.0

	tonalMinPitch = 80.0
	tonalMaxPitch = 800.0
	tonalMinDur   = 0.2

	voiceMinPitch = 100.0
	voiceMaxPitch = 500.0
	voiceMinDur   = 0.1
)

// Classify maps (amplitude, pitch, duration) to a category. It is a pure
// function: same inputs, same answer, no state.
//
// The rules are priority-ordered and the first match wins: a short, loud,
// low-pitched clip is percussive even when it would also pass the tonal or
// voice test.
func Classify(amplitude, pitchHz, durationSec float64) Category {
	switch {
	case durationSec < percussiveMaxDur && amplitude > percussiveMinAmp && pitchHz < percussiveMaxPitch:
		return Percussive
	case pitchHz > tonalMinPitch && pitchHz < tonalMaxPitch && durationSec > tonalMinDur:
		return Tonal
	case pitchHz > voiceMinPitch && pitchHz < voiceMaxPitch && durationSec > voiceMinDur:
		return Voice
	default:
		return Noise
	}
}
