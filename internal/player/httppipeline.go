package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	defaultChunkSize   = 256 << 10
	defaultClockTick   = 250 * time.Millisecond
	defaultLookahead   = 5.0 // seconds of media kept buffered ahead
	defaultFrameWidth  = 1280
	defaultFrameHeight = 720

	// defaultByteRate estimates media time from bytes when the catalog
	// has no duration for the asset: 1 Mbit/s.
	defaultByteRate = 128 << 10

	// defaultFetchRate paces chunk fetches: 64 chunks a second is
	// 16 MiB/s at the default chunk size.
	defaultFetchRate  = 64
	defaultFetchBurst = 16
)

var errVideoNotFound = errors.New("video not found")

// HTTPPipeline is a progressive-download Pipeline: it probes the
// resource size, then pulls byte ranges from the delivery service as
// its playback clock advances, reporting underruns when the clock
// outpaces the downloaded span. Positions map to byte offsets
// linearly, which is how a single-representation asset downloads.
type HTTPPipeline struct {
	baseURL    string
	client     *http.Client
	limiter    *rate.Limiter
	chunkSize  int64
	tick       time.Duration
	lookahead  float64
	frameW     int
	frameH     int
	durationFn func(ctx context.Context, filename string) (float64, error)
	playPolicy func() error

	events    chan Event
	closeCh   chan struct{}
	closeOnce sync.Once

	mu          sync.Mutex
	src         string
	size        int64
	duration    float64
	pos         float64
	buffered    float64 // media seconds available at and past pos
	offset      int64   // next byte to fetch
	playing     bool
	fetching    bool
	stalled     bool
	volume      float64
	muted       bool
	loadGen     uint64
	clockCancel context.CancelFunc
}

type HTTPOption func(*HTTPPipeline)

func WithHTTPClient(c *http.Client) HTTPOption {
	return func(p *HTTPPipeline) { p.client = c }
}

func WithChunkSize(n int64) HTTPOption {
	return func(p *HTTPPipeline) { p.chunkSize = n }
}

// WithRateLimit replaces the default chunk-fetch limiter so a
// paused-but-priming session does not saturate the link.
func WithRateLimit(l *rate.Limiter) HTTPOption {
	return func(p *HTTPPipeline) { p.limiter = l }
}

// WithDurationLookup supplies media duration from the catalog; the
// byte stream alone does not carry it.
func WithDurationLookup(fn func(ctx context.Context, filename string) (float64, error)) HTTPOption {
	return func(p *HTTPPipeline) { p.durationFn = fn }
}

// WithPlayPolicy installs a gate consulted before playback starts;
// a non-nil result rejects the play attempt (autoplay policy).
func WithPlayPolicy(fn func() error) HTTPOption {
	return func(p *HTTPPipeline) { p.playPolicy = fn }
}

func WithClockTick(d time.Duration) HTTPOption {
	return func(p *HTTPPipeline) { p.tick = d }
}

func NewHTTPPipeline(baseURL string, opts ...HTTPOption) *HTTPPipeline {
	p := &HTTPPipeline{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: 30 * time.Second},
		limiter:   rate.NewLimiter(rate.Limit(defaultFetchRate), defaultFetchBurst),
		chunkSize: defaultChunkSize,
		tick:      defaultClockTick,
		lookahead: defaultLookahead,
		frameW:    defaultFrameWidth,
		frameH:    defaultFrameHeight,
		events:    make(chan Event, 64),
		closeCh:   make(chan struct{}),
		volume:    1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *HTTPPipeline) Events() <-chan Event { return p.events }

func (p *HTTPPipeline) Frame() Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Frame{Width: p.frameW, Height: p.frameH, Time: p.pos}
}

func (p *HTTPPipeline) srcURL(filename string) string {
	return p.baseURL + "/" + url.PathEscape(filename)
}

func (p *HTTPPipeline) Load(ctx context.Context, filename string) uint64 {
	p.mu.Lock()
	p.loadGen++
	gen := p.loadGen
	if p.clockCancel != nil {
		p.clockCancel()
		p.clockCancel = nil
	}
	p.src = filename
	p.size = 0
	p.duration = 0
	p.pos = 0
	p.buffered = 0
	p.offset = 0
	p.playing = false
	p.fetching = false
	p.stalled = false
	p.mu.Unlock()

	go func() {
		g, gctx := errgroup.WithContext(ctx)
		var size int64
		var dur float64
		g.Go(func() error {
			n, err := p.probeSize(gctx, filename)
			size = n
			return err
		})
		if p.durationFn != nil {
			g.Go(func() error {
				d, err := p.durationFn(gctx, filename)
				dur = d
				return err
			})
		}
		if err := g.Wait(); err != nil {
			p.emit(gen, Event{Type: EventError, Err: err})
			return
		}
		if dur <= 0 && size > 0 {
			dur = float64(size) / defaultByteRate
		}

		p.mu.Lock()
		if gen != p.loadGen {
			p.mu.Unlock()
			return
		}
		p.size = size
		p.duration = dur
		p.mu.Unlock()
		p.emit(gen, Event{Type: EventLoaded, Duration: dur})
	}()
	return gen
}

func (p *HTTPPipeline) probeSize(ctx context.Context, filename string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.srcURL(filename), nil)
	if err != nil {
		return 0, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("probing %s: %w", filename, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		n, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("probing %s: bad content length", filename)
		}
		return n, nil
	case http.StatusNotFound:
		return 0, fmt.Errorf("probing %s: %w", filename, errVideoNotFound)
	default:
		return 0, fmt.Errorf("probing %s: unexpected status %d", filename, resp.StatusCode)
	}
}

func (p *HTTPPipeline) Play(ctx context.Context) error {
	if p.playPolicy != nil {
		if err := p.playPolicy(); err != nil {
			return fmt.Errorf("%w: %v", ErrPlaybackRejected, err)
		}
	}

	p.mu.Lock()
	if p.playing {
		p.mu.Unlock()
		return nil
	}
	if p.duration <= 0 {
		p.mu.Unlock()
		return errors.New("play: no media loaded")
	}
	gen := p.loadGen
	p.playing = true
	clockCtx, cancel := context.WithCancel(ctx)
	p.clockCancel = cancel
	p.mu.Unlock()

	p.emit(gen, Event{Type: EventPlay})
	go p.clock(clockCtx, gen)
	return nil
}

func (p *HTTPPipeline) Pause() {
	p.mu.Lock()
	if !p.playing {
		p.mu.Unlock()
		return
	}
	gen := p.loadGen
	p.playing = false
	if p.clockCancel != nil {
		p.clockCancel()
		p.clockCancel = nil
	}
	p.mu.Unlock()
	p.emit(gen, Event{Type: EventPause})
}

func (p *HTTPPipeline) Seek(seconds float64) {
	p.mu.Lock()
	gen := p.loadGen
	if seconds < 0 {
		seconds = 0
	}
	if seconds > p.duration {
		seconds = p.duration
	}
	p.pos = seconds
	// Downloaded span no longer lines up with the position.
	p.buffered = 0
	p.offset = p.byteOffset(seconds)
	p.mu.Unlock()
	p.emit(gen, Event{Type: EventTimeUpdate, Position: seconds})
}

func (p *HTTPPipeline) SetVolume(v float64) {
	p.mu.Lock()
	p.volume = v
	p.mu.Unlock()
}

func (p *HTTPPipeline) SetMuted(muted bool) {
	p.mu.Lock()
	p.muted = muted
	p.mu.Unlock()
}

func (p *HTTPPipeline) Close() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.loadGen++
		if p.clockCancel != nil {
			p.clockCancel()
			p.clockCancel = nil
		}
		p.mu.Unlock()
		close(p.closeCh)
	})
	return nil
}

// clock advances the playback position in real time, stalling when
// the downloaded span runs out and resuming once the fetcher catches
// back up.
func (p *HTTPPipeline) clock(ctx context.Context, gen uint64) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.advance(ctx, gen)
		}
	}
}

func (p *HTTPPipeline) advance(ctx context.Context, gen uint64) {
	p.mu.Lock()
	if gen != p.loadGen || !p.playing {
		p.mu.Unlock()
		return
	}

	if p.buffered <= 0 || p.pos+p.lookahead > p.pos+p.buffered {
		if !p.fetching {
			p.fetching = true
			target := p.pos + p.lookahead
			go p.fetchUntil(ctx, gen, target)
		}
	}

	if p.buffered <= 0 {
		if !p.stalled {
			p.stalled = true
			p.mu.Unlock()
			p.emit(gen, Event{Type: EventWaiting})
			return
		}
		p.mu.Unlock()
		return
	}

	step := p.tick.Seconds()
	if step > p.buffered {
		step = p.buffered
	}
	p.pos += step
	p.buffered -= step
	if p.pos > p.duration {
		p.pos = p.duration
	}
	pos := p.pos
	atEnd := p.pos >= p.duration
	p.mu.Unlock()

	p.emit(gen, Event{Type: EventTimeUpdate, Position: pos})
	if atEnd {
		p.Pause()
	}
}

// fetchUntil pulls chunks until the buffered span reaches target
// media seconds past the current position, or the resource is done.
func (p *HTTPPipeline) fetchUntil(ctx context.Context, gen uint64, target float64) {
	defer func() {
		p.mu.Lock()
		p.fetching = false
		p.mu.Unlock()
	}()

	for {
		p.mu.Lock()
		if gen != p.loadGen || p.offset >= p.size {
			p.mu.Unlock()
			return
		}
		if p.pos+p.buffered >= target {
			wasStalled := p.stalled
			p.stalled = false
			p.mu.Unlock()
			if wasStalled {
				p.emit(gen, Event{Type: EventPlaying})
			}
			return
		}
		offset := p.offset
		end := offset + p.chunkSize - 1
		if end >= p.size {
			end = p.size - 1
		}
		src := p.src
		p.mu.Unlock()

		n, err := p.fetchChunk(ctx, src, offset, end)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.emit(gen, Event{Type: EventError, Err: err})
			return
		}

		p.mu.Lock()
		if gen == p.loadGen {
			p.offset += n
			p.buffered += p.mediaSeconds(n)
			wasStalled := p.stalled && p.buffered > 0
			if wasStalled {
				p.stalled = false
			}
			p.mu.Unlock()
			if wasStalled {
				p.emit(gen, Event{Type: EventPlaying})
			}
		} else {
			p.mu.Unlock()
			return
		}
	}
}

func (p *HTTPPipeline) fetchChunk(ctx context.Context, src string, start, end int64) (int64, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return 0, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.srcURL(src), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", start, end))

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching %s: %w", src, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusPartialContent:
		return io.Copy(io.Discard, resp.Body)
	case http.StatusRequestedRangeNotSatisfiable:
		// Fall back to the full resource, as a client must when the
		// server cannot satisfy a range.
		_, _ = io.Copy(io.Discard, resp.Body)
		return p.fetchFull(ctx, src, start)
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return 0, fmt.Errorf("fetching %s: unexpected status %d", src, resp.StatusCode)
	}
}

// fetchFull streams the whole resource and reports how many bytes lie
// at and past the wanted offset.
func (p *HTTPPipeline) fetchFull(ctx context.Context, src string, offset int64) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.srcURL(src), nil)
	if err != nil {
		return 0, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching %s: %w", src, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return 0, fmt.Errorf("fetching %s: unexpected status %d", src, resp.StatusCode)
	}
	n, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		return 0, err
	}
	if n <= offset {
		return 0, nil
	}
	return n - offset, nil
}

// mediaSeconds converts a byte count to media time assuming constant
// bitrate across the asset.
func (p *HTTPPipeline) mediaSeconds(n int64) float64 {
	if p.size <= 0 || p.duration <= 0 {
		return 0
	}
	return float64(n) / float64(p.size) * p.duration
}

func (p *HTTPPipeline) byteOffset(seconds float64) int64 {
	if p.duration <= 0 {
		return 0
	}
	off := int64(seconds / p.duration * float64(p.size))
	if off > p.size {
		off = p.size
	}
	return off
}

func (p *HTTPPipeline) emit(gen uint64, ev Event) {
	p.mu.Lock()
	stale := gen != p.loadGen
	p.mu.Unlock()
	if stale {
		return
	}
	ev.Gen = gen
	select {
	case p.events <- ev:
	case <-p.closeCh:
	}
}
