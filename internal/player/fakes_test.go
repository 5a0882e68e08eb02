package player

import (
	"context"
	"sync"
)

// fakePipeline records calls and emits the events a media element
// would: EventPlay on a successful play, EventPause on pause. Tests
// push the rest (loaded, waiting, errors) through emit.
type fakePipeline struct {
	mu         sync.Mutex
	events     chan Event
	gen        uint64
	loads      []string
	playErr    error
	playCalls  int
	pauseCalls int
	seeks      []float64
	volume     float64
	muted      bool
	frame      Frame
	closed     bool
}

func newFakePipeline() *fakePipeline {
	return &fakePipeline{
		events: make(chan Event, 64),
		frame:  Frame{Width: 1920, Height: 1080},
		volume: 1,
	}
}

// emit leaves Gen zero unless the test sets it explicitly to
// simulate a stale buffered event.
func (p *fakePipeline) emit(ev Event) { p.events <- ev }

func (p *fakePipeline) Load(ctx context.Context, filename string) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	p.loads = append(p.loads, filename)
	return p.gen
}

func (p *fakePipeline) Play(ctx context.Context) error {
	p.mu.Lock()
	err := p.playErr
	if err == nil {
		p.playCalls++
	}
	p.mu.Unlock()
	if err != nil {
		return err
	}
	p.emit(Event{Type: EventPlay})
	return nil
}

func (p *fakePipeline) Pause() {
	p.mu.Lock()
	p.pauseCalls++
	p.mu.Unlock()
	p.emit(Event{Type: EventPause})
}

func (p *fakePipeline) Seek(seconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seeks = append(p.seeks, seconds)
}

func (p *fakePipeline) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = v
}

func (p *fakePipeline) SetMuted(muted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = muted
}

func (p *fakePipeline) Events() <-chan Event { return p.events }

func (p *fakePipeline) Frame() Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frame
}

func (p *fakePipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *fakePipeline) counts() (plays, pauses int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playCalls, p.pauseCalls
}

func (p *fakePipeline) lastSeek() (float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.seeks) == 0 {
		return 0, false
	}
	return p.seeks[len(p.seeks)-1], true
}

// fakeSurface counts draw calls and remembers overlay text.
type fakeSurface struct {
	mu     sync.Mutex
	width  int
	height int
	draws  int
	texts  []string
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{width: 800}
}

func (s *fakeSurface) ContainerWidth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width
}

func (s *fakeSurface) SetSize(w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = w, h
}

func (s *fakeSurface) DrawFrame(f Frame, w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draws++
}

func (s *fakeSurface) DrawText(text string, x, y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
}

func (s *fakeSurface) MeasureText(text string) int { return 8 * len(text) }

func (s *fakeSurface) drawCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draws
}

func (s *fakeSurface) sawText(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.texts {
		if t == text {
			return true
		}
	}
	return false
}

// fakeFullscreen lets tests decide whether requests take effect.
type fakeFullscreen struct {
	mu      sync.Mutex
	active  bool
	reject  bool
	changes chan bool
}

func newFakeFullscreen() *fakeFullscreen {
	return &fakeFullscreen{changes: make(chan bool, 4)}
}

func (f *fakeFullscreen) Request(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reject {
		return context.Canceled
	}
	f.active = true
	f.changes <- true
	return nil
}

func (f *fakeFullscreen) Exit(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = false
	f.changes <- false
	return nil
}

func (f *fakeFullscreen) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func (f *fakeFullscreen) Changes() <-chan bool { return f.changes }
