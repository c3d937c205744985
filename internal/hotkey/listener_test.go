package hotkey

import (
	"context"
	"io"
	"log"
	"testing"
)

// fakeListener replays a scripted sequence of press/release events.
type fakeListener struct {
	script []bool // true = down, false = up
}

func (f *fakeListener) Start(ctx context.Context, onDown func(), onUp func()) error {
	for _, down := range f.script {
		if down {
			onDown()
		} else {
			onUp()
		}
	}
	return nil
}

func (f *fakeListener) Stop()           {}
func (f *fakeListener) KeyName() string { return "KEY_TEST" }

func runJam(t *testing.T, script []bool) (starts, stops int) {
	t.Helper()
	j := NewJam(&fakeListener{script: script},
		func() { starts++ },
		func() { stops++ },
		log.New(io.Discard, "", 0))
	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	return starts, stops
}

func TestJamStartStop(t *testing.T) {
	starts, stops := runJam(t, []bool{true, false})
	if starts != 1 || stops != 1 {
		t.Errorf("got %d starts, %d stops", starts, stops)
	}
}

func TestJamCollapsesRepeats(t *testing.T) {
	starts, stops := runJam(t, []bool{true, true, true, false, false})
	if starts != 1 {
		t.Errorf("repeated downs should start once, got %d", starts)
	}
	if stops != 1 {
		t.Errorf("repeated ups should stop once, got %d", stops)
	}
}

func TestJamMultipleHolds(t *testing.T) {
	starts, stops := runJam(t, []bool{true, false, true, false, true, false})
	if starts != 3 || stops != 3 {
		t.Errorf("got %d starts, %d stops, want 3 each", starts, stops)
	}
}

func TestJamStopsHeldKeyOnExit(t *testing.T) {
	// Listener exits while the key is still down; the session must not
	// be left running.
	starts, stops := runJam(t, []bool{true})
	if starts != 1 || stops != 1 {
		t.Errorf("got %d starts, %d stops", starts, stops)
	}
}
