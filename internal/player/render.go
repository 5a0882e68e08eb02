package player

import (
	"context"
	"time"
)

const (
	defaultSurfaceWidth = 640
	overlayMargin       = 20
	overlayBaseline     = 30
)

// Surface is the drawing target the render loop composites onto: a
// canvas-like 2D surface sized by the engine each frame.
type Surface interface {
	// ContainerWidth reports the width available to the player.
	ContainerWidth() int
	SetSize(w, h int)
	DrawFrame(f Frame, w, h int)
	// DrawText draws overlay text with its baseline at (x, y).
	DrawText(text string, x, y int)
	MeasureText(text string) int
}

// startRenderLoop begins the per-frame draw loop for the current
// generation. Any previous loop is cancelled synchronously first, so
// at most one loop runs and old-session draws cannot interleave.
func (e *Engine) startRenderLoop(ctx context.Context) {
	e.stopRenderLoop()
	if e.surface == nil {
		return
	}
	gen := e.gen.Load()
	rctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	e.st.renderCancel = cancel
	e.st.renderDone = done
	go e.renderLoop(rctx, gen, done)
}

func (e *Engine) stopRenderLoop() {
	if e.st.renderCancel != nil {
		e.st.renderCancel()
		<-e.st.renderDone
		e.st.renderCancel = nil
		e.st.renderDone = nil
	}
}

// renderLoop draws a frame, then re-arms its own timer at the end of
// each pass: a cooperative chain rather than a fixed-interval ticker,
// so a slow draw never stacks up pending ticks.
func (e *Engine) renderLoop(ctx context.Context, gen uint64, done chan struct{}) {
	defer close(done)
	timer := time.NewTimer(e.frameInterval)
	defer timer.Stop()
	for {
		e.drawFrame(gen)
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			timer.Reset(e.frameInterval)
		}
	}
}

func (e *Engine) drawFrame(gen uint64) {
	if gen != e.gen.Load() {
		return
	}
	snap := e.Snapshot()
	frame := e.pipeline.Frame()

	w := e.surface.ContainerWidth()
	if w <= 0 {
		w = defaultSurfaceWidth
	}
	aspect := 16.0 / 9.0
	if frame.Width > 0 && frame.Height > 0 {
		aspect = float64(frame.Width) / float64(frame.Height)
	}
	h := int(float64(w) / aspect)

	e.surface.SetSize(w, h)
	e.surface.DrawFrame(frame, w, h)

	if snap.ControlsVisible || snap.Status != StatusPlaying {
		e.surface.DrawText(snap.Title, overlayMargin, overlayBaseline)
		ts := FormatTime(snap.CurrentTime)
		e.surface.DrawText(ts, w-e.surface.MeasureText(ts)-overlayMargin, overlayBaseline)
	}
}
