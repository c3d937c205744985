package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gordonklaus/portaudio"

	"github.com/allinfinite/R2DJ/internal/ambient"
	"github.com/allinfinite/R2DJ/internal/capture"
	"github.com/allinfinite/R2DJ/internal/config"
	"github.com/allinfinite/R2DJ/internal/dsp"
	"github.com/allinfinite/R2DJ/internal/hotkey"
	"github.com/allinfinite/R2DJ/internal/slicer"
	"github.com/allinfinite/R2DJ/internal/tui"
	"github.com/allinfinite/R2DJ/internal/wavein"
	"github.com/allinfinite/R2DJ/internal/web"
)

// frameSource is what the TUI and remote control drive: the live mic
// loop or the WAV-file feeder, plus the aging clock that only runs in
// live mode.
type frameSource interface {
	Start() error
	Stop()
	State() capture.State
	AudioLevel() float64
}

// liveSource couples the capture loop to the store's aging clock.
type liveSource struct {
	loop   *capture.Loop
	engine *ambient.Engine
	store  *slicer.Store
}

func (l *liveSource) Start() error {
	if err := l.loop.Start(); err != nil {
		return err
	}
	l.engine.StartAging(l.store)
	return nil
}

func (l *liveSource) Stop() {
	l.loop.Stop()
	l.engine.StopAging()
}

func (l *liveSource) State() capture.State { return l.loop.State() }
func (l *liveSource) AudioLevel() float64  { return l.loop.AudioLevel() }

// fileSource feeds a WAV file through the pipeline in place of the mic.
// Each Start replays the file from the beginning.
type fileSource struct {
	path       string
	engineRate int
	chunkSec   float64
	onFrame    func(dsp.Frame)
	engine     *ambient.Engine
	store      *slicer.Store
	logger     *log.Logger

	mu     sync.Mutex
	feeder *wavein.Feeder
}

func (f *fileSource) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.feeder != nil {
		return fmt.Errorf("already playing %s", f.path)
	}
	feeder := wavein.NewFeeder(f.engineRate, f.chunkSec, f.onFrame, f.logger)
	if err := feeder.Start(f.path); err != nil {
		return err
	}
	f.feeder = feeder
	f.engine.StartAging(f.store)
	return nil
}

func (f *fileSource) Stop() {
	f.mu.Lock()
	feeder := f.feeder
	f.feeder = nil
	f.mu.Unlock()
	if feeder != nil {
		feeder.Stop()
	}
	f.engine.StopAging()
}

func (f *fileSource) State() capture.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.feeder != nil {
		return capture.StateListening
	}
	return capture.StateIdle
}

func (f *fileSource) AudioLevel() float64 { return 0 }

// disabledSource stands in when no capture source or audio output could
// be opened. Live mode never starts; the saved error resurfaces whenever
// the user tries, while the rest of the UI stays usable.
type disabledSource struct {
	err error
}

func (d *disabledSource) Start() error         { return d.err }
func (d *disabledSource) Stop()                {}
func (d *disabledSource) State() capture.State { return capture.StateIdle }
func (d *disabledSource) AudioLevel() float64  { return 0 }

// bandMeter keeps the spectral readout of the most recent frame for the
// TUI, off the audio path.
type bandMeter struct {
	mu    sync.Mutex
	bands dsp.Bands
}

func (b *bandMeter) set(frame dsp.Frame) {
	bands := dsp.BandEnergy(frame.Samples, frame.SampleRate)
	b.mu.Lock()
	b.bands = bands
	b.mu.Unlock()
}

func (b *bandMeter) get() dsp.Bands {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bands
}

func ambientConfig(cfg config.AmbientConfig) ambient.Config {
	amb := ambient.DefaultConfig()
	if cfg.LifetimeSec > 0 {
		amb.Lifetime = time.Duration(cfg.LifetimeSec * float64(time.Second))
	}
	if cfg.FeedbackGain > 0 {
		amb.FeedbackGain = cfg.FeedbackGain
	}
	if cfg.VolumeFloor > 0 {
		amb.VolumeFloor = cfg.VolumeFloor
	}
	return amb
}

func run() {
	debug := flag.Bool("debug", false, "enable debug logging panel")
	wavPath := flag.String("file", "", "slice a WAV file instead of the microphone")
	flag.Parse()

	var dbg *log.Logger
	if *debug {
		dbg = log.New(os.Stderr, "[DEBUG] ", log.Ltime|log.Lmicroseconds)
	} else {
		dbg = log.New(io.Discard, "", 0)
	}

	cfgPath := config.DefaultPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	tui.ApplyTheme(cfg.Theme)

	// Initialize PortAudio (Linux suppresses ALSA/JACK stderr noise).
	// Failure is not fatal; the mic shows as unavailable and the rest of
	// the surface keeps working.
	paErr := initPortAudio()
	if paErr == nil {
		defer portaudio.Terminate()
		dbg.Printf("capture: portaudio initialized")
	} else {
		dbg.Printf("capture: portaudio init failed: %v", paErr)
	}

	engineRate := cfg.Capture.EngineSampleRate

	engine := ambient.NewEngine(engineRate, ambientConfig(cfg.Ambient), dbg)
	graph := engine.Graph()
	graph.Apply(cfg.Effects)

	store := slicer.NewStore(cfg.Slicer.Capacity)
	segmenter := slicer.NewSegmenter(slicer.SegmentConfig{
		Threshold:   cfg.Slicer.Threshold,
		MinSliceSec: cfg.Slicer.MinSliceSec,
		MaxSliceSec: cfg.Slicer.MaxSliceSec,
	})

	meter := &bandMeter{}

	// Frames flow from the source through segmentation into the store
	// and the loop engine. Evicted slices stay out of sight but their
	// loops run to their own expiry.
	onFrame := func(frame dsp.Frame) {
		meter.set(frame)
		for _, s := range segmenter.Segment(frame) {
			evicted := store.Add(s)
			if len(evicted) > 0 {
				dbg.Printf("slicer: store full, evicted %d", len(evicted))
			}
			dbg.Printf("slicer: %s %.2fs amp=%.2f pitch=%.0f", s.Category, s.Duration, s.Amplitude, s.Pitch)
			engine.AddSlice(s)
		}
	}

	var source frameSource
	micDetected := false
	micName := ""
	if *wavPath != "" {
		source = &fileSource{
			path:       *wavPath,
			engineRate: engineRate,
			chunkSec:   cfg.Capture.ChunkSec,
			onFrame:    onFrame,
			engine:     engine,
			store:      store,
			logger:     dbg,
		}
		micName = *wavPath
		micDetected = true
	} else if paErr != nil {
		source = &disabledSource{err: fmt.Errorf("microphone unavailable: %w", paErr)}
	} else {
		loop, err := capture.New(engineRate, cfg.Capture.ChunkSec, onFrame, dbg)
		if err != nil {
			dbg.Printf("capture: no input device: %v", err)
			source = &disabledSource{err: fmt.Errorf("microphone unavailable: %w", err)}
		} else {
			source = &liveSource{loop: loop, engine: engine, store: store}
			micDetected = capture.MicAvailable()
			micName = capture.MicName()
		}
	}

	if err := engine.Start(); err != nil {
		dbg.Printf("ambient: audio output unavailable: %v", err)
		source = &disabledSource{err: fmt.Errorf("audio output unavailable: %w", err)}
	}

	model := tui.NewModel(cfg, source, engine, store, graph, meter.get, micName, micDetected, dbg, *debug)
	p := tea.NewProgram(model, tea.WithAltScreen())

	// When debug is enabled, redirect logger output into the TUI debug panel
	if *debug {
		dbg.SetOutput(tui.NewLogWriter(p))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Global hold-to-jam hotkey. Missing permissions or devices are not
	// fatal; the space key in the TUI does the same thing.
	if listener, err := createListener(cfg, dbg); err != nil {
		dbg.Printf("hotkey: unavailable: %v", err)
	} else {
		jam := hotkey.NewJam(listener,
			func() {
				if err := source.Start(); err != nil {
					dbg.Printf("hotkey: start failed: %v", err)
				}
			},
			func() {
				source.Stop()
				engine.StopAll()
			},
			dbg)
		go func() {
			if err := jam.Run(ctx); err != nil && ctx.Err() == nil {
				fmt.Fprintf(os.Stderr, "hotkey listener error: %v\n", err)
			}
		}()
	}

	var remote *web.Server
	if cfg.Server.Enabled {
		remote = web.NewServer(source, engine, store, graph, dbg)
		go func() {
			if err := remote.Start(cfg.Server.Addr); err != nil {
				dbg.Printf("server: %v", err)
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		log.Fatalf("TUI error: %v", err)
	}

	// Clean shutdown: stop input, cut every loop, silence the speaker.
	cancel()
	source.Stop()
	engine.StopAll()
	if remote != nil {
		remote.Stop()
	}
}

func main() {
	// osMain is per-platform: macOS has to pin the hotkey machinery to
	// the main thread, Linux calls run directly.
	osMain()
}
