package player

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"vidlib/internal/models"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusReady     Status = "ready"
	StatusPlaying   Status = "playing"
	StatusPaused    Status = "paused"
	StatusBuffering Status = "buffering"
	StatusError     Status = "error"
)

const (
	// DefaultHideDelay is the controls inactivity timeout while playing.
	DefaultHideDelay = 3 * time.Second
	// DefaultPointerLeaveDelay hides controls after the pointer leaves
	// the player surface during playback.
	DefaultPointerLeaveDelay = time.Second

	defaultPrimeDelay    = 50 * time.Millisecond
	defaultFrameInterval = 16 * time.Millisecond
	defaultUnmuteVolume  = 0.5
)

// Snapshot is the externally visible session state.
type Snapshot struct {
	VideoID         string  `json:"video_id,omitempty"`
	Title           string  `json:"title,omitempty"`
	Status          Status  `json:"status"`
	CurrentTime     float64 `json:"current_time"`
	Duration        float64 `json:"duration"`
	Volume          float64 `json:"volume"`
	Muted           bool    `json:"muted"`
	Fullscreen      bool    `json:"fullscreen"`
	ControlsVisible bool    `json:"controls_visible"`
	Error           string  `json:"error,omitempty"`
}

type evType int

const (
	evBind evType = iota
	evPipeline
	evCmdPlay
	evCmdPause
	evCmdSeek
	evCmdVolume
	evCmdToggleMute
	evCmdToggleFullscreen
	evPointerEnter
	evPointerLeave
	evHideTimer
	evPrimeDone
	evPlayRejected
	evFullscreenChange
)

// event is the closed set of inputs the engine's actor loop handles.
// gen is the session generation captured when the event was scheduled;
// zero means "current session" (direct commands).
type event struct {
	typ   evType
	gen   uint64
	seq   uint64
	pe    Event
	val   float64
	flag  bool
	err   error
	video models.Video
}

// Engine drives one playback session at a time as a single-threaded
// actor: pipeline events, timer fires, fullscreen notifications, and
// commands all funnel through one loop, so handlers never race and
// stale callbacks are dropped by a generation check.
type Engine struct {
	pipeline Pipeline
	surface  Surface
	screen   FullscreenCapability

	hideDelay     time.Duration
	leaveDelay    time.Duration
	primeDelay    time.Duration
	frameInterval time.Duration

	events chan event
	gen    atomic.Uint64

	startOnce sync.Once
	closeOnce sync.Once
	cancel    context.CancelFunc
	done      chan struct{}

	snapMu sync.RWMutex
	snap   Snapshot

	subMu       sync.Mutex
	subscribers map[chan Snapshot]struct{}

	// Owned by the run loop.
	st sessionState
}

type sessionState struct {
	video           models.Video
	status          Status
	currentTime     float64
	duration        float64
	volume          float64
	muted           bool
	fullscreen      bool
	controlsVisible bool
	pointerInside   bool
	priming         bool
	errMsg          string
	pipeGen         uint64

	hideSeq      uint64
	hideTimer    *time.Timer
	primeTimer   *time.Timer
	renderCancel context.CancelFunc
	renderDone   chan struct{}
}

type Option func(*Engine)

func WithSurface(s Surface) Option {
	return func(e *Engine) { e.surface = s }
}

func WithFullscreen(f FullscreenCapability) Option {
	return func(e *Engine) { e.screen = f }
}

func WithHideDelay(d time.Duration) Option {
	return func(e *Engine) { e.hideDelay = d }
}

func WithPointerLeaveDelay(d time.Duration) Option {
	return func(e *Engine) { e.leaveDelay = d }
}

func WithPrimeDelay(d time.Duration) Option {
	return func(e *Engine) { e.primeDelay = d }
}

func WithFrameInterval(d time.Duration) Option {
	return func(e *Engine) { e.frameInterval = d }
}

func New(p Pipeline, opts ...Option) *Engine {
	e := &Engine{
		pipeline:      p,
		screen:        newHeadlessFullscreen(),
		hideDelay:     DefaultHideDelay,
		leaveDelay:    DefaultPointerLeaveDelay,
		primeDelay:    defaultPrimeDelay,
		frameInterval: defaultFrameInterval,
		events:        make(chan event, 64),
		done:          make(chan struct{}),
		subscribers:   make(map[chan Snapshot]struct{}),
	}
	e.st = sessionState{
		status:          StatusIdle,
		volume:          1,
		controlsVisible: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.snap = e.buildSnapshot()
	return e
}

func (e *Engine) Start(ctx context.Context) {
	e.startOnce.Do(func() {
		ctx, e.cancel = context.WithCancel(ctx)
		go e.run(ctx)
		go e.forwardPipeline(ctx)
		go e.forwardFullscreen(ctx)
	})
}

func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		if e.cancel != nil {
			e.cancel()
			<-e.done
		}
		e.subMu.Lock()
		for ch := range e.subscribers {
			close(ch)
		}
		e.subscribers = make(map[chan Snapshot]struct{})
		e.subMu.Unlock()
		if err := e.pipeline.Close(); err != nil {
			log.Printf("closing pipeline: %v", err)
		}
	})
}

// Bind selects the asset to play, superseding any current session.
func (e *Engine) Bind(v models.Video)   { e.post(event{typ: evBind, video: v}) }
func (e *Engine) Play()                 { e.post(event{typ: evCmdPlay}) }
func (e *Engine) Pause()                { e.post(event{typ: evCmdPause}) }
func (e *Engine) Seek(seconds float64)  { e.post(event{typ: evCmdSeek, val: seconds}) }
func (e *Engine) SetVolume(v float64)   { e.post(event{typ: evCmdVolume, val: v}) }
func (e *Engine) ToggleMute()           { e.post(event{typ: evCmdToggleMute}) }
func (e *Engine) ToggleFullscreen()     { e.post(event{typ: evCmdToggleFullscreen}) }
func (e *Engine) PointerEnter()         { e.post(event{typ: evPointerEnter}) }
func (e *Engine) PointerLeave()         { e.post(event{typ: evPointerLeave}) }

// Snapshot returns the last published session state.
func (e *Engine) Snapshot() Snapshot {
	e.snapMu.RLock()
	defer e.snapMu.RUnlock()
	return e.snap
}

// Subscribe returns a channel receiving a snapshot after every state
// change. Slow receivers only miss intermediate states, never the
// latest one.
func (e *Engine) Subscribe() chan Snapshot {
	ch := make(chan Snapshot, 1)
	e.subMu.Lock()
	e.subscribers[ch] = struct{}{}
	e.subMu.Unlock()
	return ch
}

func (e *Engine) Unsubscribe(ch chan Snapshot) {
	e.subMu.Lock()
	_, exists := e.subscribers[ch]
	delete(e.subscribers, ch)
	e.subMu.Unlock()
	if exists {
		close(ch)
	}
}

func (e *Engine) post(ev event) {
	select {
	case e.events <- ev:
	case <-e.done:
	}
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.done)
	for {
		select {
		case <-ctx.Done():
			e.teardown()
			return
		case ev := <-e.events:
			if ev.gen != 0 && ev.gen != e.gen.Load() {
				continue
			}
			e.handle(ctx, ev)
			e.publish()
		}
	}
}

func (e *Engine) forwardPipeline(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case pe, ok := <-e.pipeline.Events():
			if !ok {
				return
			}
			e.post(event{typ: evPipeline, gen: e.gen.Load(), pe: pe})
		}
	}
}

func (e *Engine) forwardFullscreen(ctx context.Context) {
	if e.screen == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case active, ok := <-e.screen.Changes():
			if !ok {
				return
			}
			e.post(event{typ: evFullscreenChange, flag: active})
		}
	}
}

func (e *Engine) handle(ctx context.Context, ev event) {
	// Error is terminal for the session: only a rebind or a
	// fullscreen notification gets through.
	if e.st.status == StatusError && ev.typ != evBind && ev.typ != evFullscreenChange {
		return
	}

	switch ev.typ {
	case evBind:
		e.rebind(ctx, ev.video)

	case evPipeline:
		e.handlePipeline(ctx, ev.pe)

	case evCmdPlay:
		if e.st.status == StatusReady || e.st.status == StatusPaused {
			e.startPlay(ctx)
			e.showControls()
		}

	case evCmdPause:
		if e.st.status == StatusPlaying || e.st.status == StatusBuffering {
			e.pipeline.Pause()
		}

	case evCmdSeek:
		e.seek(ctx, ev.val)

	case evCmdVolume:
		v := clamp(ev.val, 0, 1)
		e.st.volume = v
		e.pipeline.SetVolume(v)

	case evCmdToggleMute:
		e.st.muted = !e.st.muted
		e.pipeline.SetMuted(e.st.muted)
		if !e.st.muted && e.st.volume == 0 {
			e.st.volume = defaultUnmuteVolume
			e.pipeline.SetVolume(defaultUnmuteVolume)
		}

	case evCmdToggleFullscreen:
		e.toggleFullscreen(ctx)

	case evPointerEnter:
		e.st.pointerInside = true
		e.showControls()

	case evPointerLeave:
		e.st.pointerInside = false
		if e.st.status == StatusPlaying {
			e.armHideTimer(e.leaveDelay)
		}

	case evHideTimer:
		if ev.seq == e.st.hideSeq && e.st.status == StatusPlaying {
			e.st.controlsVisible = false
		}

	case evPrimeDone:
		if e.st.priming {
			e.pipeline.Pause()
		}

	case evPlayRejected:
		// Autoplay policy or primed-seek rejection: not fatal.
		log.Printf("play attempt rejected: %v", ev.err)
		e.st.priming = false
		e.showControls()

	case evFullscreenChange:
		e.st.fullscreen = ev.flag
	}
}

func (e *Engine) handlePipeline(ctx context.Context, pe Event) {
	// Events buffered before a rebind carry the old source's load
	// generation; they must not leak into the fresh session. Zero
	// means the pipeline does not stamp generations.
	if pe.Gen != 0 && pe.Gen != e.st.pipeGen {
		return
	}

	switch pe.Type {
	case EventLoaded:
		if e.st.status != StatusLoading {
			return
		}
		e.st.duration = pe.Duration
		e.st.status = StatusReady
		e.startRenderLoop(ctx)

	case EventPlay:
		if e.st.priming {
			return
		}
		e.st.status = StatusPlaying

	case EventPause:
		if e.st.priming {
			e.st.priming = false
			return
		}
		e.st.status = StatusPaused
		e.showControls()

	case EventTimeUpdate:
		if e.st.status == StatusPlaying && pe.Position < e.st.currentTime {
			return // time never runs backwards outside an explicit seek
		}
		e.st.currentTime = pe.Position
		if e.st.status == StatusPlaying && e.st.controlsVisible && e.st.pointerInside {
			e.armHideTimer(e.hideDelay)
		}

	case EventWaiting:
		if e.st.priming {
			return
		}
		if e.st.status == StatusPlaying {
			e.st.status = StatusBuffering
		}

	case EventPlaying:
		if e.st.priming {
			return
		}
		if e.st.status == StatusBuffering {
			e.st.status = StatusPlaying
		}

	case EventError:
		e.fail(pe.Err)
	}
}

func (e *Engine) rebind(ctx context.Context, v models.Video) {
	e.gen.Add(1)
	e.stopRenderLoop()
	e.stopTimers()

	active := e.screen != nil && e.screen.Active()
	e.st = sessionState{
		video:           v,
		status:          StatusLoading,
		volume:          1,
		fullscreen:      active,
		controlsVisible: true,
	}
	e.st.pipeGen = e.pipeline.Load(ctx, v.Filename)
}

func (e *Engine) seek(ctx context.Context, target float64) {
	switch e.st.status {
	case StatusReady, StatusPaused, StatusPlaying, StatusBuffering:
	default:
		return
	}

	target = clamp(target, 0, e.st.duration)
	e.st.currentTime = target
	e.pipeline.Seek(target)
	e.showControls()

	// While not playing, briefly play then pause so the frame at the
	// new position gets decoded. The priming flag keeps the status
	// from ever reading as playing.
	if e.st.status == StatusReady || e.st.status == StatusPaused {
		e.st.priming = true
		e.startPlay(ctx)
		gen := e.gen.Load()
		if e.st.primeTimer != nil {
			e.st.primeTimer.Stop()
		}
		e.st.primeTimer = time.AfterFunc(e.primeDelay, func() {
			e.post(event{typ: evPrimeDone, gen: gen})
		})
	}
}

func (e *Engine) startPlay(ctx context.Context) {
	gen := e.gen.Load()
	go func() {
		if err := e.pipeline.Play(ctx); err != nil {
			e.post(event{typ: evPlayRejected, gen: gen, err: err})
		}
	}()
}

func (e *Engine) toggleFullscreen(ctx context.Context) {
	if e.screen == nil {
		return
	}
	go func() {
		var err error
		if e.screen.Active() {
			err = e.screen.Exit(ctx)
		} else {
			err = e.screen.Request(ctx)
		}
		if err != nil {
			log.Printf("fullscreen request: %v", err)
		}
	}()
}

func (e *Engine) fail(err error) {
	msg := "playback failed"
	if err != nil {
		msg = err.Error()
	}
	e.stopRenderLoop()
	e.stopTimers()
	e.st.status = StatusError
	e.st.errMsg = msg
	e.st.controlsVisible = true
}

func (e *Engine) showControls() {
	e.st.controlsVisible = true
	e.cancelHideTimer()
}

func (e *Engine) armHideTimer(d time.Duration) {
	e.cancelHideTimer()
	seq := e.st.hideSeq
	gen := e.gen.Load()
	e.st.hideTimer = time.AfterFunc(d, func() {
		e.post(event{typ: evHideTimer, gen: gen, seq: seq})
	})
}

func (e *Engine) cancelHideTimer() {
	e.st.hideSeq++
	if e.st.hideTimer != nil {
		e.st.hideTimer.Stop()
		e.st.hideTimer = nil
	}
}

func (e *Engine) stopTimers() {
	e.cancelHideTimer()
	if e.st.primeTimer != nil {
		e.st.primeTimer.Stop()
		e.st.primeTimer = nil
	}
}

func (e *Engine) teardown() {
	e.gen.Add(1)
	e.stopRenderLoop()
	e.stopTimers()
}

func (e *Engine) buildSnapshot() Snapshot {
	return Snapshot{
		VideoID:         e.st.video.ID,
		Title:           e.st.video.Title,
		Status:          e.st.status,
		CurrentTime:     e.st.currentTime,
		Duration:        e.st.duration,
		Volume:          e.st.volume,
		Muted:           e.st.muted,
		Fullscreen:      e.st.fullscreen,
		ControlsVisible: e.st.controlsVisible,
		Error:           e.st.errMsg,
	}
}

func (e *Engine) publish() {
	snap := e.buildSnapshot()
	e.snapMu.Lock()
	e.snap = snap
	e.snapMu.Unlock()

	e.subMu.Lock()
	defer e.subMu.Unlock()
	for ch := range e.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the stale snapshot so the latest one fits.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
