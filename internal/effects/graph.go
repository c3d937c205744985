package effects

import (
	"math"
	"sync"

	"github.com/gopxl/beep"
)

// Delay and reverb lines are fixed-size; only their mixes are playable.
const (
	delayLineSec  = 0.35
	delayFeedback = 0.45
	combFeedback  = 0.72
)

// Schroeder-ish comb lengths in seconds. Mutually prime-ish to avoid
// obvious flutter.
var combDelaysSec = [3]float64{0.0297, 0.0371, 0.0411}

// Graph is the shared effect chain every triggered slice plays through:
// one-pole lowpass, soft-clip distortion, feedback delay and comb reverb,
// in that order. It also owns the ambient-gain and feedback-intensity
// controls, which loops read at trigger time instead of the audio path.
// It implements beep.Streamer and pulls from a single upstream source
// (the engine's mixer).
//
// Control fields are guarded by an internal lock, so setters are safe from
// any goroutine; audio-path state is touched only by Stream. Partial
// visibility of multi-parameter updates is acceptable here: a loop tick
// landing between two knob writes plays a blend of old and new, which is
// the instrument's documented behavior.
type Graph struct {
	src        beep.Streamer
	sampleRate int

	mu          sync.RWMutex
	padX        float64 // [0,1]
	padY        float64 // [0,1]
	reverbMix   float64 // [0,1]
	delayMix    float64 // [0,1]
	ambientGain float64 // [0,1] master multiplier
	feedback    float64 // [0,1] retrigger-probability boost, read by loops

	// audio-path state, Stream only
	lpState  [2]float64
	delayBuf [][2]float64
	delayPos int
	combs    [3]combLine
}

type combLine struct {
	buf [][2]float64
	pos int
}

// NewGraph creates the effect chain reading from src at the given rate.
func NewGraph(src beep.Streamer, sampleRate int) *Graph {
	g := &Graph{
		src:         src,
		sampleRate:  sampleRate,
		padX:        0.5,
		padY:        0.0,
		reverbMix:   0.3,
		delayMix:    0.2,
		ambientGain: 0.8,
		feedback:    0.3,
	}
	g.delayBuf = make([][2]float64, max(1, int(delayLineSec*float64(sampleRate))))
	for i := range g.combs {
		g.combs[i].buf = make([][2]float64, max(1, int(combDelaysSec[i]*float64(sampleRate))))
	}
	return g
}

// Stream pulls from the source and applies the chain in place.
func (g *Graph) Stream(samples [][2]float64) (int, bool) {
	n, ok := g.src.Stream(samples)
	if n == 0 {
		return n, ok
	}

	g.mu.RLock()
	cutoff := CutoffHz(g.padX)
	drive := g.padY
	reverb := g.reverbMix
	delay := g.delayMix
	g.mu.RUnlock()

	// One-pole coefficient for the current cutoff.
	alpha := 1 - math.Exp(-2*math.Pi*cutoff/float64(g.sampleRate))
	preGain := 1 + drive*9

	for i := 0; i < n; i++ {
		for ch := 0; ch < 2; ch++ {
			x := samples[i][ch]

			// Lowpass
			g.lpState[ch] += alpha * (x - g.lpState[ch])
			x = g.lpState[ch]

			// Soft-clip distortion, dry/wet by pad Y
			if drive > 0 {
				x = x*(1-drive) + math.Tanh(x*preGain)*drive
			}

			samples[i][ch] = x
		}

		// Feedback delay. The line always runs so the tail is already
		// primed when the mix knob comes up mid-performance.
		echo := g.delayBuf[g.delayPos]
		g.delayBuf[g.delayPos][0] = samples[i][0] + echo[0]*delayFeedback
		g.delayBuf[g.delayPos][1] = samples[i][1] + echo[1]*delayFeedback
		g.delayPos = (g.delayPos + 1) % len(g.delayBuf)
		samples[i][0] += echo[0] * delay
		samples[i][1] += echo[1] * delay

		// Comb reverb, same always-running treatment.
		var wetL, wetR float64
		for c := range g.combs {
			line := &g.combs[c]
			out := line.buf[line.pos]
			line.buf[line.pos][0] = samples[i][0] + out[0]*combFeedback
			line.buf[line.pos][1] = samples[i][1] + out[1]*combFeedback
			line.pos = (line.pos + 1) % len(line.buf)
			wetL += out[0]
			wetR += out[1]
		}
		samples[i][0] += wetL / 3 * reverb
		samples[i][1] += wetR / 3 * reverb
	}

	return n, ok
}

// Err reports the upstream error, if any.
func (g *Graph) Err() error {
	return g.src.Err()
}
