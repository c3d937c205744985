package slicer

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Category tags a slice by how it is likely to sound when retriggered.
type Category string

const (
	Percussive Category = "percussive"
	Tonal      Category = "tonal"
	Voice      Category = "voice"
	Noise      Category = "noise"
)

// Color returns the display color hex for a category. The mapping is
// deterministic so a slice keeps the same color everywhere it is shown.
func (c Category) Color() string {
	switch c {
	case Percussive:
		return "#FF6AC1"
	case Tonal:
		return "#00E5FF"
	case Voice:
		return "#B388FF"
	default:
		return "#666666"
	}
}

// Slice is one playable unit of captured audio. Samples are exclusively
// owned and immutable after creation; the category is computed once and
// never revisited.
type Slice struct {
	ID          string
	Samples     []float64
	SampleRate  int
	StartOffset int     // sample index within the source frame
	Duration    float64 // seconds, within configured bounds
	Amplitude   float64 // mean absolute amplitude
	Pitch       float64 // Hz, 0 if undetected
	Category    Category

	age atomic.Int64 // ticks since creation; bumped once per second in live mode
}

var sliceSeq atomic.Int64

// newSliceID derives a unique id from the current time plus a process-wide
// sequence number, so slices created within the same nanosecond stay distinct.
func newSliceID() string {
	return fmt.Sprintf("s%x-%d", time.Now().UnixNano(), sliceSeq.Add(1))
}

// Age returns the number of aging ticks since creation.
func (s *Slice) Age() int {
	return int(s.age.Load())
}

func (s *Slice) bumpAge() {
	s.age.Add(1)
}
