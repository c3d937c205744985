package capture

import (
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/allinfinite/R2DJ/internal/dsp"
)

// State is where the capture loop currently sits.
type State int

const (
	StateIdle State = iota
	StateInitializing
	StateListening
	StateProcessing
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateListening:
		return "listening"
	case StateProcessing:
		return "processing"
	default:
		return "idle"
	}
}

// retryBackoff is the fixed delay before re-arming after a capture or
// decode failure. This is the system's only retry policy.
const retryBackoff = 500 * time.Millisecond

// chunkReader is the part of the input stream the chunk loop uses. A
// Read fills the buffer the stream was opened with.
type chunkReader interface {
	Read() error
}

// Loop repeatedly records fixed-length chunks from the default input
// device and delivers them as frames at the engine sample rate. It keeps
// running through transient read failures and stops only on an explicit
// Stop. Frames that finish processing after Stop are silently dropped.
type Loop struct {
	mu        sync.Mutex
	state     State
	stream    *portaudio.Stream
	listening bool
	done      chan struct{} // closed when the chunk loop should exit
	loopDone  chan struct{} // closed when the chunk loop has exited

	nativeSR       float64
	nativeChannels int
	engineRate     int
	chunkSec       float64
	onFrame        func(dsp.Frame)
	logger         *log.Logger

	audioLevel uint64 // atomic float64 bits; RMS of last read (0.0-1.0)
}

// New creates a capture Loop delivering chunkSec-long frames at
// engineRate to onFrame. Call portaudio.Initialize() before using this.
// Returns a permission/device error when no input device is available.
func New(engineRate int, chunkSec float64, onFrame func(dsp.Frame), logger *log.Logger) (*Loop, error) {
	defIn, err := portaudio.DefaultInputDevice()
	if err != nil {
		return nil, fmt.Errorf("default input device: %w", err)
	}
	if defIn.MaxInputChannels < 1 {
		return nil, fmt.Errorf("device %q has no input channels", defIn.Name)
	}

	return &Loop{
		nativeSR:       defIn.DefaultSampleRate,
		nativeChannels: defIn.MaxInputChannels,
		engineRate:     engineRate,
		chunkSec:       chunkSec,
		onFrame:        onFrame,
		logger:         logger,
	}, nil
}

// Start opens the microphone and begins the chunk cycle. Returns an
// error if already running or if the stream cannot be opened.
func (l *Loop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.listening {
		return fmt.Errorf("already capturing")
	}
	l.state = StateInitializing

	channels := l.nativeChannels
	if channels > 2 {
		channels = 2
	}

	framesPerBuffer := int(l.nativeSR / 10) // ~100ms reads
	inputBuf := make([]int16, framesPerBuffer*channels)

	stream, err := portaudio.OpenDefaultStream(channels, 0, l.nativeSR, framesPerBuffer, &inputBuf)
	if err != nil {
		l.state = StateIdle
		return fmt.Errorf("open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		l.state = StateIdle
		return fmt.Errorf("start stream: %w", err)
	}

	l.stream = stream
	l.listening = true
	l.state = StateListening
	l.done = make(chan struct{})
	l.loopDone = make(chan struct{})

	go l.chunkLoop(stream, inputBuf, channels, l.done, l.loopDone)

	return nil
}

// chunkLoop accumulates ~100ms reads into fixed-length chunks and hands
// each finished chunk to processChunk. Read failures log and back off
// instead of killing the loop.
func (l *Loop) chunkLoop(stream chunkReader, inputBuf []int16, channels int, done, loopDone chan struct{}) {
	defer close(loopDone)

	chunkSamples := int(l.nativeSR * l.chunkSec)
	chunk := make([]int16, 0, chunkSamples)

	for {
		select {
		case <-done:
			return
		default:
		}

		if err := stream.Read(); err != nil {
			select {
			case <-done:
				return
			default:
			}
			l.logger.Printf("capture: read error, retrying: %v", err)
			chunk = chunk[:0]
			select {
			case <-done:
				return
			case <-time.After(retryBackoff):
			}
			continue
		}

		atomic.StoreUint64(&l.audioLevel, math.Float64bits(computeRMS(inputBuf, channels)))

		if channels == 2 {
			for i := 0; i+1 < len(inputBuf); i += 2 {
				chunk = append(chunk, int16((int32(inputBuf[i])+int32(inputBuf[i+1]))/2))
			}
		} else {
			chunk = append(chunk, inputBuf...)
		}

		if len(chunk) < chunkSamples {
			continue
		}

		l.setState(StateProcessing)
		frame, err := AssembleFrame(chunk[:chunkSamples], l.nativeSR, l.engineRate)
		chunk = chunk[:0]
		if err != nil {
			l.logger.Printf("capture: chunk decode error, retrying: %v", err)
			l.setState(StateListening)
			select {
			case <-done:
				return
			case <-time.After(retryBackoff):
			}
			continue
		}

		// A stop may have landed while the chunk was being assembled;
		// drop the frame rather than acting on it.
		l.mu.Lock()
		deliver := l.listening
		l.mu.Unlock()
		if deliver {
			l.onFrame(frame)
		}
		l.setState(StateListening)
	}
}

// Stop closes the microphone and halts the chunk cycle. Pending chunk
// processing is discarded. Safe to call when idle.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.listening {
		l.mu.Unlock()
		return
	}
	l.listening = false
	done := l.done
	loopDone := l.loopDone
	l.mu.Unlock()

	// Signal the chunk loop, then wait for it to exit before closing the
	// stream; Read racing Close segfaults in portaudio.
	close(done)
	<-loopDone

	l.mu.Lock()
	if l.stream != nil {
		l.stream.Stop()
		l.stream.Close()
		l.stream = nil
	}
	l.state = StateIdle
	l.mu.Unlock()

	atomic.StoreUint64(&l.audioLevel, math.Float64bits(0))
}

// State returns the current capture state.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Loop) setState(s State) {
	l.mu.Lock()
	if l.listening {
		l.state = s
	}
	l.mu.Unlock()
}

// IsListening reports whether live mode is running.
func (l *Loop) IsListening() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.listening
}

// AudioLevel returns the RMS amplitude of the most recent read, in
// [0.0, 1.0]. Safe to call from any goroutine.
func (l *Loop) AudioLevel() float64 {
	return math.Float64frombits(atomic.LoadUint64(&l.audioLevel))
}

// computeRMS computes the root-mean-square of int16 samples normalized
// to [0.0, 1.0], averaging stereo pairs first.
func computeRMS(buf []int16, channels int) float64 {
	if len(buf) == 0 || channels < 1 {
		return 0
	}
	var sum float64
	n := len(buf) / channels
	for i := 0; i+channels-1 < len(buf); i += channels {
		var v float64
		if channels == 2 {
			v = float64(int32(buf[i])+int32(buf[i+1])) / 2.0
		} else {
			v = float64(buf[i])
		}
		v /= 32768.0
		sum += v * v
	}
	if n == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(n))
}

// MicAvailable returns true if PortAudio can find a default input device.
// portaudio.Initialize() must have been called before using this.
func MicAvailable() bool {
	dev, err := portaudio.DefaultInputDevice()
	return err == nil && dev != nil && dev.MaxInputChannels > 0
}
