package ambient

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	beepfx "github.com/gopxl/beep/effects"

	"github.com/allinfinite/R2DJ/internal/slicer"
)

const resampleQuality = 4

// Loop retriggers one slice on a category-dependent subdivision until its
// fixed lifetime runs out, then disposes itself.
type Loop struct {
	engine  *Engine
	slice   *slicer.Slice
	session *atomic.Bool
	rng     *rand.Rand

	period   time.Duration
	lifetime time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

func newLoop(e *Engine, s *slicer.Slice, session *atomic.Bool, rng *rand.Rand) *Loop {
	return &Loop{
		engine:   e,
		slice:    s,
		session:  session,
		rng:      rng,
		period:   e.cfg.period(s.Category),
		lifetime: e.cfg.Lifetime,
		done:     make(chan struct{}),
	}
}

func (l *Loop) run() {
	ticker := time.NewTicker(l.period)
	defer ticker.Stop()
	expiry := time.NewTimer(l.lifetime)
	defer expiry.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-expiry.C:
			l.engine.removeLoop(l.slice.ID)
			return
		case <-ticker.C:
			l.tick()
		}
	}
}

// stop halts the loop immediately without unregistering: the caller
// (StopAll) has already cleared the registry.
func (l *Loop) stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

// tick makes one trigger decision. Probability and volume read the shared
// effects state at decision time, so control changes land on the next
// tick of every running loop.
func (l *Loop) tick() {
	cfg := l.engine.cfg
	p := cfg.baseProb(l.slice.Category) + cfg.FeedbackGain*l.engine.graph.Feedback()
	if l.rng.Float64() >= p {
		return
	}

	vol := triggerVolume(l.slice.Age(), l.lifetime, cfg.weight(l.slice.Category), l.engine.graph.AmbientGain(), cfg.VolumeFloor)
	if vol <= 0 {
		return
	}

	var s beep.Streamer = &sliceStreamer{samples: l.slice.Samples}
	if rate := randomRate(l.slice.Category, l.rng); rate != 1 {
		s = beep.ResampleRatio(resampleQuality, rate, s)
	}
	s = &beepfx.Volume{Streamer: s, Base: 2, Volume: volumeDB(vol)}

	l.engine.play(gate{s: s, open: l.session})
}

// triggerVolume combines the age decay curve, the category weight, and
// the global ambient gain. Age decays linearly over the loop lifetime and
// is floored so old slices stay as a quiet bed rather than vanishing.
func triggerVolume(age int, lifetime time.Duration, weight, ambientGain, floor float64) float64 {
	lifeSec := lifetime.Seconds()
	if lifeSec <= 0 {
		return 0
	}
	ageVol := 1 - float64(age)/lifeSec
	if ageVol < floor {
		ageVol = floor
	}
	return ageVol * weight * ambientGain
}

// volumeDB maps a [0,1] volume into the dB range beep's Volume expects
// (Base 2, so -1 halves the loudness).
func volumeDB(vol float64) float64 {
	if vol > 1 {
		vol = 1
	}
	if vol < 0 {
		vol = 0
	}
	return -(1 - vol) * 8
}

// randomRate draws a playback-rate multiplier from the category's band.
func randomRate(cat slicer.Category, rng *rand.Rand) float64 {
	r, ok := rateRange[cat]
	if !ok {
		return 1
	}
	return r[0] + rng.Float64()*(r[1]-r[0])
}
