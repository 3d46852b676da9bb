package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync/atomic"
	"time"

	"github.com/gogpu/sdftext"
	"github.com/gogpu/sdftext/render"
	"github.com/gogpu/sdftext/text"
)

// State is the state of a PreRenderer.
type State int32

const (
	Idle State = iota
	Rendering
	Completed
	Cancelled
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Rendering:
		return "rendering"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// RenderFunc draws frame content at time t, in seconds, into target.
type RenderFunc func(t float64, target render.RenderTarget, width, height int) error

// ProgressFunc is called after each frame is written with the number of
// frames done.
type ProgressFunc func(frame, total int, elapsed time.Duration)

// Result summarizes a Render call.
type Result struct {
	// Status is Completed, Cancelled or Failed.
	Status State

	// Frames is the number of frames written.
	Frames int

	// Total is the number of frames of the sequence.
	Total int

	Elapsed time.Duration
}

// Option configures a PreRenderer.
type Option func(*PreRenderer)

// WithRenderFunc sets the function drawing each frame. Required.
func WithRenderFunc(f RenderFunc) Option {
	return func(p *PreRenderer) {
		p.draw = f
	}
}

// WithTextRenderer wraps every frame in a text frame on r: the frame
// time is set with r.SetTime, and the render function runs between
// r.BeginFrame and r.EndFrame.
func WithTextRenderer(r *text.Renderer) Option {
	return func(p *PreRenderer) {
		p.text = r
	}
}

// WithSink replaces the default FileSink.
func WithSink(s Sink) Option {
	return func(p *PreRenderer) {
		p.sink = s
	}
}

// PreRenderer exports frame sequences. Render blocks its caller; Cancel,
// IsRendering and State may be called from any goroutine.
type PreRenderer struct {
	dev  render.Device
	draw RenderFunc
	text *text.Renderer
	sink Sink

	state     atomic.Int32
	cancelled atomic.Bool
}

// New creates a PreRenderer drawing on dev.
func New(dev render.Device, opts ...Option) (*PreRenderer, error) {
	if dev == nil {
		return nil, ErrNoDevice
	}
	p := &PreRenderer{dev: dev}
	for _, opt := range opts {
		opt(p)
	}
	if p.draw == nil {
		return nil, ErrNoRenderFunc
	}
	return p, nil
}

// State returns the current state. After Render returns it holds the
// terminal status of that run until the next Render.
func (p *PreRenderer) State() State { return State(p.state.Load()) }

// IsRendering reports whether Render is running.
func (p *PreRenderer) IsRendering() bool { return p.State() == Rendering }

// Cancel asks a running Render to stop at the next frame boundary. A
// frame being drawn when Cancel is called is not written. It does not
// wait.
func (p *PreRenderer) Cancel() { p.cancelled.Store(true) }

// Render draws, reads back and writes every frame of cfg in order and
// returns when the sequence completes, fails or is cancelled.
//
// The error is nil for Completed and Cancelled results. A Failed result
// carries a *FrameError; frames written before the failure are kept.
func (p *PreRenderer) Render(ctx context.Context, cfg Config, progress ProgressFunc) (res Result, err error) {
	if err := cfg.Validate(); err != nil {
		return Result{Status: Failed}, err
	}
	if !p.begin() {
		return Result{Status: Failed}, ErrAlreadyRendering
	}

	// The state leaves Rendering even if a callback or the sink panics.
	res.Status = Failed
	defer func() { p.state.Store(int32(res.Status)) }()

	res, err = p.run(ctx, cfg, progress)

	log := sdftext.Logger()
	switch res.Status {
	case Completed:
		log.Info("export: completed", "frames", res.Frames, "elapsed", res.Elapsed)
	case Cancelled:
		log.Info("export: cancelled", "frames", res.Frames, "total", res.Total)
	default:
		log.Warn("export: failed", "frames", res.Frames, "total", res.Total, "err", err)
	}
	return res, err
}

// begin moves to Rendering from any other state.
func (p *PreRenderer) begin() bool {
	for {
		cur := p.state.Load()
		if State(cur) == Rendering {
			return false
		}
		p.cancelled.Store(false)
		if p.state.CompareAndSwap(cur, int32(Rendering)) {
			return true
		}
	}
}

func (p *PreRenderer) run(ctx context.Context, cfg Config, progress ProgressFunc) (Result, error) {
	start := time.Now()
	res := Result{Status: Failed, Total: cfg.TotalFrames()}
	done := func(status State, err error) (Result, error) {
		res.Status = status
		res.Elapsed = time.Since(start)
		return res, err
	}

	sink := p.sink
	if sink == nil {
		fs, err := NewFileSink(cfg)
		if err != nil {
			return done(Failed, err)
		}
		sink = fs
	}

	target, err := p.dev.CreateTarget(cfg.Width, cfg.Height)
	if err != nil {
		return done(Failed, fmt.Errorf("export: create target: %w", err))
	}
	defer target.Destroy()

	img := image.NewNRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))

	sdftext.Logger().Info("export: started",
		"frames", res.Total,
		"size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"fps", cfg.FPS,
		"dir", cfg.OutputDir)

	for i := range res.Total {
		if p.cancelled.Load() || ctx.Err() != nil {
			return done(Cancelled, nil)
		}

		if err := p.renderFrame(cfg, target, cfg.FrameTime(i)); err != nil {
			return done(Failed, &FrameError{Frame: i, Op: "render", Err: err})
		}
		// A cancel issued while the frame was drawn drops it unwritten.
		if p.cancelled.Load() {
			return done(Cancelled, nil)
		}
		if err := target.ReadPixels(img.Pix); err != nil {
			return done(Failed, &FrameError{Frame: i, Op: "readback", Err: err})
		}
		if err := sink.WriteFrame(i, img); err != nil {
			return done(Failed, &FrameError{Frame: i, Op: "write", Err: err})
		}

		res.Frames++
		if progress != nil {
			progress(res.Frames, res.Total, time.Since(start))
		}
	}
	return done(Completed, nil)
}

// renderFrame clears target and runs the render function on it. The
// draws have completed when it returns.
func (p *PreRenderer) renderFrame(cfg Config, target render.OffscreenTarget, t float64) error {
	bg := cfg.Background
	pass, err := p.dev.BeginPass(target, &bg)
	if err != nil {
		return err
	}
	if err := pass.End(); err != nil {
		return err
	}

	if p.text == nil {
		return p.callDraw(t, target, cfg.Width, cfg.Height)
	}

	p.text.SetTime(float32(t))
	if err := p.text.BeginFrame(target); err != nil {
		return err
	}
	drawErr := p.callDraw(t, target, cfg.Width, cfg.Height)
	return errors.Join(drawErr, p.text.EndFrame())
}

// callDraw runs the render function, reporting a panic as ErrRenderPanic.
func (p *PreRenderer) callDraw(t float64, target render.RenderTarget, w, h int) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("%w: %v", ErrRenderPanic, v)
		}
	}()
	return p.draw(t, target, w, h)
}
