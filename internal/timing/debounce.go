// Package timing holds the delay-and-coalesce and rate-limit wrappers used
// across the service: config reloads, preference saves, telemetry logging.
package timing

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Debounce returns a wrapper that delays fn until wait has passed without
// another call. Only the arguments of the last call in a burst survive.
// With immediate set, the first call of a burst also runs fn synchronously.
// cancel drops any pending call.
func Debounce[T any](clk clock.Clock, fn func(T), wait time.Duration, immediate bool) (call func(T), cancel func()) {
	var (
		mu      sync.Mutex
		pending *clock.Timer
		gen     uint64
	)

	call = func(arg T) {
		mu.Lock()
		callNow := immediate && pending == nil
		if pending != nil {
			pending.Stop()
		}
		gen++
		mine := gen
		pending = clk.AfterFunc(wait, func() {
			mu.Lock()
			// A timer that lost the race with Stop must not fire.
			if mine != gen {
				mu.Unlock()
				return
			}
			pending = nil
			mu.Unlock()
			fn(arg)
		})
		mu.Unlock()

		if callNow {
			fn(arg)
		}
	}

	cancel = func() {
		mu.Lock()
		defer mu.Unlock()
		if pending != nil {
			pending.Stop()
			pending = nil
		}
		gen++
	}
	return call, cancel
}
