package capture

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/allinfinite/R2DJ/internal/dsp"
)

// AssembleFrame converts one recorded mono chunk into a frame at the
// engine rate, resampling with polyphase FIR filtering when the native
// rate differs.
func AssembleFrame(pcm []int16, nativeRate float64, engineRate int) (dsp.Frame, error) {
	if len(pcm) == 0 {
		return dsp.Frame{}, fmt.Errorf("empty chunk")
	}

	floats := dsp.FromInt16(pcm)

	if int(nativeRate) != engineRate {
		resampled, err := resampling.ResampleMono(floats, nativeRate, float64(engineRate), resampling.QualityLow)
		if err != nil {
			return dsp.Frame{}, fmt.Errorf("resample %0.f->%d: %w", nativeRate, engineRate, err)
		}
		floats = resampled
	}

	return dsp.Frame{Samples: floats, SampleRate: engineRate}, nil
}
