package player

import "context"

// FullscreenCapability abstracts the platform's exclusive-fullscreen
// surface. The engine never assumes a request succeeded: fullscreen
// state is derived solely from Changes notifications, since the
// platform may reject or revoke fullscreen asynchronously.
type FullscreenCapability interface {
	Request(ctx context.Context) error
	Exit(ctx context.Context) error
	Active() bool
	Changes() <-chan bool
}

// headlessFullscreen is the default adapter for environments without
// a fullscreen surface: requests succeed immediately and are echoed
// back as change notifications.
type headlessFullscreen struct {
	active  bool
	changes chan bool
}

func newHeadlessFullscreen() *headlessFullscreen {
	return &headlessFullscreen{changes: make(chan bool, 4)}
}

func (h *headlessFullscreen) Request(ctx context.Context) error {
	h.active = true
	select {
	case h.changes <- true:
	default:
	}
	return nil
}

func (h *headlessFullscreen) Exit(ctx context.Context) error {
	h.active = false
	select {
	case h.changes <- false:
	default:
	}
	return nil
}

func (h *headlessFullscreen) Active() bool { return h.active }

func (h *headlessFullscreen) Changes() <-chan bool { return h.changes }
