// Package hotkey provides the global hold-to-jam key: live capture runs
// while the key is held anywhere on the system and stops on release,
// regardless of which window has focus.
package hotkey

import (
	"context"
	"log"
	"sync/atomic"
)

// Listener delivers global press/release events for one configured key.
type Listener interface {
	Start(ctx context.Context, onDown func(), onUp func()) error
	Stop()
	KeyName() string
}

// Jam binds a Listener to session start/stop actions. Key repeats and
// duplicate events collapse: onStart fires once per physical hold and
// onStop once per release.
type Jam struct {
	listener Listener
	onStart  func()
	onStop   func()
	logger   *log.Logger

	held atomic.Bool
}

func NewJam(l Listener, onStart, onStop func(), logger *log.Logger) *Jam {
	return &Jam{listener: l, onStart: onStart, onStop: onStop, logger: logger}
}

// Run blocks on the listener until ctx is cancelled. If the key is still
// held when Run returns, the session is stopped.
func (j *Jam) Run(ctx context.Context) error {
	j.logger.Printf("hotkey: hold %s to jam", j.listener.KeyName())

	err := j.listener.Start(ctx, j.down, j.up)

	if j.held.Swap(false) {
		j.onStop()
	}
	return err
}

func (j *Jam) down() {
	if j.held.Swap(true) {
		return
	}
	j.onStart()
}

func (j *Jam) up() {
	if !j.held.Swap(false) {
		return
	}
	j.onStop()
}
