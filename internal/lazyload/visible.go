package lazyload

import (
	"context"
	"sync"
)

// Entry is one intersection observation of a target element.
type Entry struct {
	// Ratio is the visible fraction of the target, 0 to 1.
	Ratio float64
	// Distance is how far, in pixels, the target is outside the viewport;
	// zero or negative once it intersects.
	Distance float64
}

type VisibleOptions struct {
	// Threshold is the minimum visible ratio that triggers the load.
	Threshold float64
	// Margin grows the viewport by this many pixels, like a root margin.
	Margin float64
}

// OnVisible defers a loader until its target intersects the viewport.
// The loader runs at most once; later observations are ignored.
type OnVisible[T any] struct {
	loader Loader[T]
	opts   VisibleOptions

	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

func NewOnVisible[T any](loader func(ctx context.Context) (T, error), opts VisibleOptions) *OnVisible[T] {
	return &OnVisible[T]{loader: loader, opts: opts, done: make(chan struct{})}
}

// Observe feeds an intersection entry and reports whether it triggered the
// load. The load itself runs synchronously with ctx.
func (v *OnVisible[T]) Observe(ctx context.Context, e Entry) bool {
	if !v.intersects(e) {
		return false
	}
	triggered := false
	v.once.Do(func() {
		triggered = true
		v.value, v.err = v.loader(ctx)
		close(v.done)
	})
	return triggered
}

// Wait blocks until the load has run or ctx is done.
func (v *OnVisible[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-v.done:
		return v.value, v.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (v *OnVisible[T]) intersects(e Entry) bool {
	if e.Distance > v.opts.Margin {
		return false
	}
	if e.Distance > 0 {
		// inside the margin but not yet on screen
		return true
	}
	return e.Ratio >= v.opts.Threshold
}
