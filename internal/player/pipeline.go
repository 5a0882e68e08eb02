package player

import (
	"context"
	"errors"
)

// ErrPlaybackRejected is returned by Pipeline.Play when the platform
// refuses to start playback (autoplay policy). It is never fatal for
// the session.
var ErrPlaybackRejected = errors.New("playback rejected")

// Frame is one decoded picture. Time is the media position the frame
// corresponds to.
type Frame struct {
	Width  int
	Height int
	Time   float64
}

// EventType tags the closed set of pipeline notifications the engine
// reacts to.
type EventType int

const (
	EventLoaded  EventType = iota // metadata resolved, Duration set
	EventPlay                     // playback started
	EventPause                    // playback stopped
	EventTimeUpdate               // Position advanced
	EventWaiting                  // underrun, data not available at position
	EventPlaying                  // data available again
	EventError                    // unrecoverable decode or network fault
)

type Event struct {
	Type     EventType
	Duration float64
	Position float64
	Err      error
	// Gen is the load generation the event was emitted under, as
	// returned by Load. Events can sit buffered across a source
	// change; consumers drop the ones stamped with an old generation.
	// Zero means unstamped and is never dropped.
	Gen uint64
}

// Pipeline abstracts the media decoder the engine drives: it loads a
// source, plays, pauses, seeks, and reports back through Events.
// All methods must be safe for use from a single goroutine at a time;
// Events delivery is asynchronous.
type Pipeline interface {
	// Load binds a new source and returns its load generation. Emits
	// EventLoaded once metadata is known, or EventError on failure;
	// every event for this source carries the returned generation.
	Load(ctx context.Context, filename string) uint64
	// Play starts playback; may return ErrPlaybackRejected.
	Play(ctx context.Context) error
	Pause()
	Seek(seconds float64)
	SetVolume(v float64)
	SetMuted(muted bool)
	Events() <-chan Event
	// Frame returns the most recently decoded frame.
	Frame() Frame
	Close() error
}
