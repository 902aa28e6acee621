// Package telemetry fans frame-rate reports out to live dashboard viewers.
package telemetry

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultBuffer is the per-subscriber queue length.
const DefaultBuffer = 32

// Report is one ingested telemetry batch, summarised.
type Report struct {
	SessionID string             `json:"session_id"`
	Page      string             `json:"page"`
	Tier      string             `json:"tier"`
	Metrics   map[string]float64 `json:"metrics"`
	At        time.Time          `json:"at"`
}

type subscriber struct {
	ch chan Report
}

// Hub delivers every published Report to each subscriber without blocking
// the publisher. A subscriber whose queue is full misses the report.
type Hub struct {
	mu      sync.RWMutex
	subs    map[*subscriber]struct{}
	buffer  int
	dropped atomic.Uint64
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{subs: map[*subscriber]struct{}{}, buffer: buffer}
}

// Subscribe registers a new viewer. The returned func unregisters it and
// closes the channel; calling it more than once is safe.
func (h *Hub) Subscribe() (<-chan Report, func()) {
	s := &subscriber{ch: make(chan Report, h.buffer)}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return s.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, s)
			h.mu.Unlock()
			close(s.ch)
		})
	}
}

// Publish returns the number of subscribers that received r.
func (h *Hub) Publish(r Report) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for s := range h.subs {
		select {
		case s.ch <- r:
			delivered++
		default:
			h.dropped.Add(1)
		}
	}
	return delivered
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped counts deliveries skipped because a queue was full.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}
