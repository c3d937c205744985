package slicer

import (
	"github.com/allinfinite/R2DJ/internal/dsp"
)

// envelopeBlockSec is the hop used for the amplitude gate. Gating on a
// short mean-abs window instead of raw samples keeps a sine from closing
// the slice at every zero crossing.
const envelopeBlockSec = 0.005

// SegmentConfig bounds the amplitude gate and slice durations.
type SegmentConfig struct {
	Threshold   float64 // mean-abs amplitude gate for entering a slice
	MinSliceSec float64 // candidates shorter than this are discarded
	MaxSliceSec float64 // a slice is force-closed at this length
}

// DefaultSegmentConfig returns the hand-tuned gate settings.
func DefaultSegmentConfig() SegmentConfig {
	return SegmentConfig{
		Threshold:   0.05,
		MinSliceSec: 0.04,
		MaxSliceSec: 1.5,
	}
}

// Segmenter cuts captured frames into classified slices.
type Segmenter struct {
	cfg SegmentConfig
}

// NewSegmenter creates a Segmenter with the given gate settings.
func NewSegmenter(cfg SegmentConfig) *Segmenter {
	return &Segmenter{cfg: cfg}
}

// Segment walks one frame and returns every slice whose duration lands
// inside the configured bounds. A slice opens when the envelope amplitude
// crosses the threshold, and closes when it drops back below or the slice
// hits MaxSliceSec. Candidates shorter than MinSliceSec are discarded
// silently. Back-to-back loud runs become distinct slices; no merging or
// overlap smoothing is attempted.
//
// Each returned slice owns a copy of its sample range, so the caller may
// reuse or mutate the frame afterwards.
func (sg *Segmenter) Segment(frame dsp.Frame) []*Slice {
	if frame.SampleRate <= 0 || len(frame.Samples) == 0 {
		return nil
	}

	sr := float64(frame.SampleRate)
	block := int(envelopeBlockSec * sr)
	if block < 1 {
		block = 1
	}
	minSamples := int(sg.cfg.MinSliceSec * sr)
	maxSamples := int(sg.cfg.MaxSliceSec * sr)
	if maxSamples < block {
		maxSamples = block
	}

	var out []*Slice
	inSlice := false
	start := 0

	for pos := 0; pos < len(frame.Samples); pos += block {
		end := pos + block
		if end > len(frame.Samples) {
			end = len(frame.Samples)
		}
		loud := dsp.MeanAbs(frame.Samples[pos:end]) > sg.cfg.Threshold

		if !inSlice {
			if loud {
				inSlice = true
				start = pos
			}
			continue
		}

		if !loud {
			if pos-start >= minSamples {
				out = append(out, sg.materialize(frame, start, pos))
			}
			inSlice = false
		} else if end-start >= maxSamples {
			out = append(out, sg.materialize(frame, start, start+maxSamples))
			inSlice = false
			// A force-closed run may stay loud; the next loud block simply
			// opens a fresh slice.
		}
	}

	if inSlice && len(frame.Samples)-start >= minSamples {
		out = append(out, sg.materialize(frame, start, len(frame.Samples)))
	}

	return out
}

func (sg *Segmenter) materialize(frame dsp.Frame, start, end int) *Slice {
	samples := make([]float64, end-start)
	copy(samples, frame.Samples[start:end])

	duration := float64(len(samples)) / float64(frame.SampleRate)
	amplitude := dsp.MeanAbs(samples)
	pitch := dsp.EstimatePitch(samples, frame.SampleRate)

	return &Slice{
		ID:          newSliceID(),
		Samples:     samples,
		SampleRate:  frame.SampleRate,
		StartOffset: start,
		Duration:    duration,
		Amplitude:   amplitude,
		Pitch:       pitch,
		Category:    Classify(amplitude, pitch, duration),
	}
}
