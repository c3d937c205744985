package ambient

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/allinfinite/R2DJ/internal/effects"
	"github.com/allinfinite/R2DJ/internal/slicer"
)

// Engine owns the audio output graph: a mixer of in-flight slice triggers
// feeding the shared effect chain, plus one playback loop per stored
// slice. All mutable audio state funnels through the speaker's own lock,
// which serializes loop triggers, effect reads, and output fill onto one
// timeline.
type Engine struct {
	sampleRate int
	cfg        Config
	logger     *log.Logger

	mixer *beep.Mixer
	graph *effects.Graph

	mu      sync.Mutex
	loops   map[string]*Loop
	session *atomic.Bool // current hard-stop gate; swapped on StopAll
	ageDone chan struct{}
	rng     *rand.Rand

	initOnce sync.Once
	initErr  error

	// play submits a streamer to the output. Swappable for tests.
	play func(beep.Streamer)
}

// NewEngine creates an Engine and its effect chain at the given rate.
// Call Start before adding slices.
func NewEngine(sampleRate int, cfg Config, logger *log.Logger) *Engine {
	e := &Engine{
		sampleRate: sampleRate,
		cfg:        cfg,
		logger:     logger,
		mixer:      &beep.Mixer{},
		loops:      make(map[string]*Loop),
		session:    &atomic.Bool{},
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	e.session.Store(true)
	e.graph = effects.NewGraph(e.mixer, sampleRate)
	e.play = e.speakerPlay
	return e
}

// Graph returns the shared effect chain for control wiring.
func (e *Engine) Graph() *effects.Graph {
	return e.graph
}

// Start initializes the speaker once and begins streaming the effect
// chain. Safe to call more than once.
func (e *Engine) Start() error {
	e.initOnce.Do(func() {
		sr := beep.SampleRate(e.sampleRate)
		if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
			e.initErr = fmt.Errorf("speaker init: %w", err)
			return
		}
		speaker.Play(e.graph)
	})
	return e.initErr
}

func (e *Engine) speakerPlay(s beep.Streamer) {
	speaker.Lock()
	e.mixer.Add(s)
	speaker.Unlock()
}

// AddSlice starts a self-terminating playback loop for a stored slice.
// The loop's fixed lifetime is independent of the slice's store
// membership; neither cancels the other.
func (e *Engine) AddSlice(s *slicer.Slice) {
	e.mu.Lock()
	if _, exists := e.loops[s.ID]; exists {
		e.mu.Unlock()
		return
	}
	l := newLoop(e, s, e.session, rand.New(rand.NewSource(e.rng.Int63())))
	e.loops[s.ID] = l
	e.mu.Unlock()

	e.logger.Printf("ambient: loop started id=%s cat=%s dur=%.2fs pitch=%.0fHz", s.ID, s.Category, s.Duration, s.Pitch)
	go l.run()
}

// removeLoop drops a loop from the registry after it has expired.
func (e *Engine) removeLoop(id string) {
	e.mu.Lock()
	delete(e.loops, id)
	e.mu.Unlock()
	e.logger.Printf("ambient: loop expired id=%s", id)
}

// ActiveLoops returns the number of live playback loops.
func (e *Engine) ActiveLoops() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.loops)
}

// StopAll hard-stops everything: every loop is disposed, and all
// in-flight triggers are gated off mid-buffer. No fade-out.
func (e *Engine) StopAll() {
	e.mu.Lock()
	loops := make([]*Loop, 0, len(e.loops))
	for _, l := range e.loops {
		loops = append(loops, l)
	}
	e.loops = make(map[string]*Loop)
	e.session.Store(false)
	e.session = &atomic.Bool{}
	e.session.Store(true)
	e.mu.Unlock()

	for _, l := range loops {
		l.stop()
	}
	if len(loops) > 0 {
		e.logger.Printf("ambient: stopped %d loops", len(loops))
	}
}

// StartAging begins the once-per-second age tick for the store. It runs
// until StopAging; starting twice is a no-op.
func (e *Engine) StartAging(store *slicer.Store) {
	e.mu.Lock()
	if e.ageDone != nil {
		e.mu.Unlock()
		return
	}
	done := make(chan struct{})
	e.ageDone = done
	e.mu.Unlock()

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				store.TickAge()
			}
		}
	}()
}

// StopAging halts the age tick. Ages freeze; they never reset.
func (e *Engine) StopAging() {
	e.mu.Lock()
	if e.ageDone != nil {
		close(e.ageDone)
		e.ageDone = nil
	}
	e.mu.Unlock()
}
