package performance

import (
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

const sampleWindow = time.Second

// Metrics is the live frame-rate telemetry of one window.
type Metrics struct {
	FPS int `json:"fps"`
	// FrameTime is the average frame cost in milliseconds.
	FrameTime float64 `json:"frame_time"`
}

// FrameSource schedules a callback for the next frame, like an animation
// frame request. The returned func cancels that single request.
type FrameSource interface {
	RequestFrame(fn func(now time.Time)) (cancel func())
}

// ClockFrames is a FrameSource that ticks at a fixed interval.
type ClockFrames struct {
	Clock    clock.Clock
	Interval time.Duration
}

func (f ClockFrames) RequestFrame(fn func(now time.Time)) func() {
	t := f.Clock.AfterFunc(f.Interval, func() { fn(f.Clock.Now()) })
	return func() { t.Stop() }
}

// Sampler counts frames and reports FPS once per elapsed second.
type Sampler struct {
	clock  clock.Clock
	frames FrameSource
}

func NewSampler(clk clock.Clock, frames FrameSource) *Sampler {
	return &Sampler{clock: clk, frames: frames}
}

// Start begins the frame loop. The returned cancel func stops it; calling it
// more than once is a no-op, and frames already in flight are ignored.
func (s *Sampler) Start(onSample func(Metrics)) (cancel func()) {
	run := &samplerRun{
		source:      s.frames,
		onSample:    onSample,
		windowStart: s.clock.Now(),
	}
	run.schedule()
	return run.cancel
}

type samplerRun struct {
	source   FrameSource
	onSample func(Metrics)

	mu          sync.Mutex
	stopped     bool
	pending     func()
	frames      int
	windowStart time.Time
}

func (r *samplerRun) schedule() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.pending = r.source.RequestFrame(r.frame)
}

func (r *samplerRun) frame(now time.Time) {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.frames++
	elapsed := now.Sub(r.windowStart)
	var sample *Metrics
	if elapsed >= sampleWindow {
		ms := float64(elapsed) / float64(time.Millisecond)
		sample = &Metrics{
			FPS:       int(math.Round(float64(r.frames) * 1000 / ms)),
			FrameTime: ms / float64(r.frames),
		}
		r.frames = 0
		r.windowStart = now
	}
	r.mu.Unlock()

	if sample != nil {
		r.onSample(*sample)
	}
	r.schedule()
}

func (r *samplerRun) cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.stopped = true
	if r.pending != nil {
		r.pending()
		r.pending = nil
	}
}
