// Package lazyload defers expensive loaders until they are needed, retries
// failed loads with exponential backoff, and optionally warms them up ahead
// of use.
package lazyload

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// Priority controls warm-up.
type Priority string

const (
	// PriorityHigh starts loading as soon as the component is created.
	PriorityHigh Priority = "high"
	// PriorityMedium starts loading after MediumWarmupDelay.
	PriorityMedium Priority = "medium"
	// PriorityLow loads only on demand.
	PriorityLow Priority = "low"
)

const (
	DefaultRetryCount = 3
	DefaultRetryDelay = time.Second
	MediumWarmupDelay = 2 * time.Second
)

// Loader produces the value of a component.
type Loader[T any] func(ctx context.Context) (T, error)

type Options struct {
	Priority Priority
	// RetryCount is the number of retries after the first failed attempt.
	// A negative value disables retries; zero selects DefaultRetryCount.
	RetryCount int
	RetryDelay time.Duration
	Clock      clock.Clock
	Log        *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Priority == "" {
		o.Priority = PriorityLow
	}
	switch {
	case o.RetryCount == 0:
		o.RetryCount = DefaultRetryCount
	case o.RetryCount < 0:
		o.RetryCount = 0
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	return o
}

// Backoff returns the wait before retry number attempt (1-based).
func (o Options) Backoff(attempt int) time.Duration {
	return o.RetryDelay * time.Duration(1<<(attempt-1))
}

// Component is a lazily loaded value. A successful load is cached; a failed
// one is not, so the next Load starts a fresh retry cycle.
type Component[T any] struct {
	name   string
	loader Loader[T]
	opts   Options

	mu       sync.Mutex
	loaded   bool
	value    T
	inflight *call[T]

	warmupTimer *clock.Timer
}

type call[T any] struct {
	done  chan struct{}
	value T
	err   error
	// abandoned is set when the load stopped because its caller gave up.
	abandoned bool
}

// New wraps loader and schedules its warm-up according to opts.Priority.
func New[T any](name string, loader func(ctx context.Context) (T, error), opts Options) *Component[T] {
	c := &Component[T]{
		name:   name,
		loader: loader,
		opts:   opts.withDefaults(),
	}
	switch c.opts.Priority {
	case PriorityHigh:
		go c.warm()
	case PriorityMedium:
		c.warmupTimer = c.opts.Clock.AfterFunc(MediumWarmupDelay, c.warm)
	}
	return c
}

// Load returns the cached value or runs the loader, retrying failures up to
// RetryCount times. Concurrent callers share one in-flight load; if that
// load ends because its caller's ctx was cancelled, waiters whose own ctx is
// still live start a new one.
func (c *Component[T]) Load(ctx context.Context) (T, error) {
	for {
		c.mu.Lock()
		if c.loaded {
			v := c.value
			c.mu.Unlock()
			return v, nil
		}
		if cl := c.inflight; cl != nil {
			c.mu.Unlock()
			select {
			case <-cl.done:
				if cl.abandoned && ctx.Err() == nil {
					continue
				}
				return cl.value, cl.err
			case <-ctx.Done():
				var zero T
				return zero, ctx.Err()
			}
		}
		cl := &call[T]{done: make(chan struct{})}
		c.inflight = cl
		c.mu.Unlock()

		cl.value, cl.err = c.loadWithRetry(ctx)
		cl.abandoned = cl.err != nil && ctx.Err() != nil

		c.mu.Lock()
		if cl.err == nil {
			c.loaded = true
			c.value = cl.value
		}
		c.inflight = nil
		c.mu.Unlock()
		close(cl.done)
		return cl.value, cl.err
	}
}

// Loaded reports whether a value is cached.
func (c *Component[T]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Stop cancels a pending medium-priority warm-up.
func (c *Component[T]) Stop() {
	if c.warmupTimer != nil {
		c.warmupTimer.Stop()
	}
}

func (c *Component[T]) loadWithRetry(ctx context.Context) (T, error) {
	var (
		value T
		err   error
	)
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			wait := c.opts.Backoff(attempt)
			c.opts.Log.Warn("Lazy load failed, retrying",
				zap.String("component", c.name),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", wait),
				zap.Error(err),
			)
			if sleepErr := sleep(ctx, c.opts.Clock, wait); sleepErr != nil {
				return value, fmt.Errorf("loading %s: %w", c.name, sleepErr)
			}
		}
		value, err = c.loader(ctx)
		if err == nil {
			return value, nil
		}
		if attempt >= c.opts.RetryCount {
			return value, fmt.Errorf("loading %s failed after %d attempts: %w", c.name, attempt+1, err)
		}
	}
}

func (c *Component[T]) warm() {
	if _, err := c.Load(context.Background()); err != nil {
		c.opts.Log.Error("Lazy load warm-up failed", zap.String("component", c.name), zap.Error(err))
	}
}

func sleep(ctx context.Context, clk clock.Clock, d time.Duration) error {
	t := clk.Timer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
