package timing

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Throttle returns a wrapper that runs fn on the first call of a window and
// drops every call that arrives during the following limit cooldown.
// Dropped calls are not queued.
func Throttle[T any](clk clock.Clock, fn func(T), limit time.Duration) func(T) {
	var (
		mu       sync.Mutex
		last     time.Time
		released = true
	)
	return func(arg T) {
		mu.Lock()
		now := clk.Now()
		if !released && now.Sub(last) < limit {
			mu.Unlock()
			return
		}
		released = false
		last = now
		mu.Unlock()

		fn(arg)
	}
}
