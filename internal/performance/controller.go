package performance

import (
	"context"
	"sync"
	"time"

	"arogyam-go/internal/timing"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

const (
	ErrAlreadyInitialized Error = "performance controller already initialized"
	ErrDisposed           Error = "performance controller disposed"
)

// reevaluateLimit bounds how often the manual "Auto" trigger re-derives.
const reevaluateLimit = time.Second

// Snapshot is what observers of a Controller receive.
type Snapshot struct {
	Capabilities *DeviceCapabilities `json:"capabilities,omitempty"`
	Settings     PerformanceSettings `json:"settings"`
	Flags        []Flag              `json:"flags"`
	Metrics      Metrics             `json:"metrics"`
}

// Controller wires the prober, deriver, applier and sampler together for
// one page lifetime. It is constructed by the application root and must be
// disposed by it.
type Controller struct {
	log     *zap.Logger
	env     Environment
	prober  *Prober
	applier *Applier
	sampler *Sampler

	reevaluate func(struct{})

	mu            sync.Mutex
	initialized   bool
	disposed      bool
	caps          *DeviceCapabilities
	settings      PerformanceSettings
	metrics       Metrics
	observers     map[int]func(Snapshot)
	nextObserver  int
	cancelSampler func()
}

func NewController(log *zap.Logger, clk clock.Clock, env Environment, prober *Prober, applier *Applier, sampler *Sampler) *Controller {
	c := &Controller{
		log:       log,
		env:       env,
		prober:    prober,
		applier:   applier,
		sampler:   sampler,
		settings:  DefaultSettings(),
		observers: make(map[int]func(Snapshot)),
	}
	c.reevaluate = timing.Throttle(clk, func(struct{}) { c.rederive() }, reevaluateLimit)
	return c
}

// Init probes the environment once, applies the derived settings and starts
// the frame-rate sampler.
func (c *Controller) Init(ctx context.Context) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	if c.initialized {
		c.mu.Unlock()
		return ErrAlreadyInitialized
	}
	c.initialized = true
	c.applier.Apply(c.settings, nil)
	c.mu.Unlock()

	caps := c.prober.Probe(ctx, c.env)

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	c.caps = &caps
	c.settings = Derive(caps)
	c.applier.Apply(c.settings, c.caps)
	c.cancelSampler = c.sampler.Start(c.onSample)
	snap := c.snapshotLocked()
	observers := c.observerList()
	c.mu.Unlock()

	c.log.Info("Performance controller initialized",
		zap.String("tier", string(caps.Tier)),
		zap.String("flags", c.applier.Flags().String()),
	)
	notify(observers, snap)
	return nil
}

// Dispose stops the sampler and drops every observer. It is safe to call
// more than once.
func (c *Controller) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	c.disposed = true
	if c.cancelSampler != nil {
		c.cancelSampler()
		c.cancelSampler = nil
	}
	c.observers = make(map[int]func(Snapshot))
}

// Subscribe registers fn for every snapshot change.
func (c *Controller) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextObserver
	c.nextObserver++
	c.observers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.observers, id)
			c.mu.Unlock()
		})
	}
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Reevaluate re-derives settings from the held capabilities. It is the
// manual "Auto" action; calls within a second of the last one are dropped.
func (c *Controller) Reevaluate() {
	c.reevaluate(struct{}{})
}

// SetSettings applies a manual override until the next Reevaluate.
func (c *Controller) SetSettings(s PerformanceSettings) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.settings = s
	c.applier.Apply(s, c.caps)
	snap := c.snapshotLocked()
	observers := c.observerList()
	c.mu.Unlock()
	notify(observers, snap)
}

func (c *Controller) rederive() {
	c.mu.Lock()
	if c.disposed || c.caps == nil {
		c.mu.Unlock()
		return
	}
	c.settings = Derive(*c.caps)
	c.applier.Apply(c.settings, c.caps)
	snap := c.snapshotLocked()
	observers := c.observerList()
	c.mu.Unlock()
	notify(observers, snap)
}

func (c *Controller) onSample(m Metrics) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.metrics = m
	snap := c.snapshotLocked()
	observers := c.observerList()
	c.mu.Unlock()
	notify(observers, snap)
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		Settings: c.settings,
		Flags:    c.applier.Flags().List(),
		Metrics:  c.metrics,
	}
	if c.caps != nil {
		caps := *c.caps
		snap.Capabilities = &caps
	}
	return snap
}

func (c *Controller) observerList() []func(Snapshot) {
	out := make([]func(Snapshot), 0, len(c.observers))
	for _, fn := range c.observers {
		out = append(out, fn)
	}
	return out
}

func notify(observers []func(Snapshot), snap Snapshot) {
	for _, fn := range observers {
		fn(snap)
	}
}
