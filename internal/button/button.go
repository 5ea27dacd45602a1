// Package button turns raw button edges into debounced press and hold
// events. Edges arrive from an event (interrupt) context; everything
// else runs on the cooperative loop. The two sides share only atomic
// cells, so no locking is needed where blocking is not allowed.
package button

import (
	"sync/atomic"
	"time"
)

// Input detects debounced presses and holds.
//
// HandleEdge is the single writer of the raw cells and runs on the
// event thread. Tick, Poll and PollHeld run on the cooperative loop.
type Input struct {
	debounce time.Duration
	hold     time.Duration

	// Raw cells, written only by HandleEdge.
	rawPressed atomic.Bool
	rawEdgeMs  atomic.Int64 // UnixMilli of the last edge

	// Debounced state, owned by Tick.
	stable    bool
	pressedAt time.Time
	heldFired bool

	// Event flags with read-and-clear semantics.
	pressed atomic.Bool
	held    atomic.Bool
}

// New creates an Input with the given debounce and hold windows.
func New(debounce, hold time.Duration) *Input {
	return &Input{
		debounce: debounce,
		hold:     hold,
	}
}

// HandleEdge records a raw level change. It is safe to call from the
// line-event context: it only stores two word-sized cells.
func (in *Input) HandleEdge(pressed bool, at time.Time) {
	in.rawEdgeMs.Store(at.UnixMilli())
	in.rawPressed.Store(pressed)
}

// Tick advances the debounce and hold state machines. Must be called
// once per cooperative pass.
func (in *Input) Tick(now time.Time) {
	raw := in.rawPressed.Load()
	edgeAt := time.UnixMilli(in.rawEdgeMs.Load())

	// A level change is accepted only once it has persisted past the
	// debounce window. Elapsed time by subtraction, so a wrapped or
	// jumping clock degrades to a missed tick, not a stuck state.
	if raw != in.stable && now.Sub(edgeAt) >= in.debounce {
		in.stable = raw
		if in.stable {
			in.pressed.Store(true)
			in.pressedAt = now
			in.heldFired = false
		}
	}

	// Hold fires once per continuous press, after the hold window
	// from the accepted press. Released-and-pressed-anew re-arms it.
	if in.stable && !in.heldFired && now.Sub(in.pressedAt) >= in.hold {
		in.held.Store(true)
		in.heldFired = true
	}
}

// Poll returns and clears a pending Pressed event.
func (in *Input) Poll() bool {
	return in.pressed.Swap(false)
}

// PollHeld returns and clears a pending Held event.
func (in *Input) PollHeld() bool {
	return in.held.Swap(false)
}

// IsDown reports the current debounced level.
func (in *Input) IsDown() bool {
	return in.stable
}
