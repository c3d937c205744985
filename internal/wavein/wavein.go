// Package wavein feeds a WAV file through the live pipeline in place of
// the microphone. Frames come out at the engine rate in the same
// chunk-sized pieces the capture loop produces, so everything downstream
// behaves identically.
package wavein

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-audio/wav"
	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/allinfinite/R2DJ/internal/dsp"
)

// Feeder decodes one WAV file and delivers chunkSec-long frames to
// onFrame, paced at real time so slice loops spin up the way they would
// from a live mic.
type Feeder struct {
	engineRate int
	chunkSec   float64
	onFrame    func(dsp.Frame)
	logger     *log.Logger

	done     chan struct{}
	loopDone chan struct{}
}

func NewFeeder(engineRate int, chunkSec float64, onFrame func(dsp.Frame), logger *log.Logger) *Feeder {
	return &Feeder{
		engineRate: engineRate,
		chunkSec:   chunkSec,
		onFrame:    onFrame,
		logger:     logger,
		done:       make(chan struct{}),
		loopDone:   make(chan struct{}),
	}
}

// Start decodes path and begins delivering frames on a background
// goroutine. Decode errors surface here, before any frame is sent.
func (f *Feeder) Start(path string) error {
	frame, err := DecodeFile(path, f.engineRate)
	if err != nil {
		return err
	}

	go f.feed(frame)
	return nil
}

// Stop halts frame delivery. Safe to call more than once after Start.
func (f *Feeder) Stop() {
	select {
	case <-f.done:
	default:
		close(f.done)
	}
	<-f.loopDone
}

func (f *Feeder) feed(frame dsp.Frame) {
	defer close(f.loopDone)

	chunkSamples := int(float64(f.engineRate) * f.chunkSec)
	if chunkSamples < 1 {
		chunkSamples = f.engineRate
	}

	ticker := time.NewTicker(time.Duration(f.chunkSec * float64(time.Second)))
	defer ticker.Stop()

	for start := 0; start < len(frame.Samples); start += chunkSamples {
		end := start + chunkSamples
		if end > len(frame.Samples) {
			end = len(frame.Samples)
		}
		f.onFrame(dsp.Frame{
			Samples:    frame.Samples[start:end],
			SampleRate: f.engineRate,
		})

		select {
		case <-f.done:
			return
		case <-ticker.C:
		}
	}
	f.logger.Printf("wavein: file exhausted after %.1fs", frame.Duration())
}

// DecodeFile reads a WAV file, downmixes to mono, and resamples to
// engineRate. Multi-channel files average their channels per sample
// frame.
func DecodeFile(path string, engineRate int) (dsp.Frame, error) {
	fh, err := os.Open(path)
	if err != nil {
		return dsp.Frame{}, fmt.Errorf("open wav: %w", err)
	}
	defer fh.Close()

	dec := wav.NewDecoder(fh)
	if !dec.IsValidFile() {
		return dsp.Frame{}, fmt.Errorf("%s: not a valid WAV file", path)
	}

	pcmBuf, err := dec.FullPCMBuffer()
	if err != nil {
		return dsp.Frame{}, fmt.Errorf("decode wav: %w", err)
	}

	channels := pcmBuf.Format.NumChannels
	if channels < 1 {
		return dsp.Frame{}, fmt.Errorf("%s: no channels", path)
	}

	scale := 1.0 / float64(int(1)<<(dec.BitDepth-1))
	mono := downmix(pcmBuf.Data, channels, scale)
	if len(mono) == 0 {
		return dsp.Frame{}, fmt.Errorf("%s: no samples", path)
	}

	if int(dec.SampleRate) != engineRate {
		mono, err = resampling.ResampleMono(mono, float64(dec.SampleRate), float64(engineRate), resampling.QualityLow)
		if err != nil {
			return dsp.Frame{}, fmt.Errorf("resample %d->%d: %w", dec.SampleRate, engineRate, err)
		}
	}

	return dsp.Frame{Samples: mono, SampleRate: engineRate}, nil
}

func downmix(data []int, channels int, scale float64) []float64 {
	frames := len(data) / channels
	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(data[i*channels+c])
		}
		mono[i] = sum / float64(channels) * scale
	}
	return mono
}
