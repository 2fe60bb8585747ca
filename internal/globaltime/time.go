// Package globaltime is the process clock. Health timestamps, provider
// latency and rate limiter windows read it so tests can pin the time.
package globaltime

import (
	"sync"
	"time"
)

var (
	mu      sync.RWMutex
	nowFunc = time.Now
)

func Now() time.Time {
	mu.RLock()
	defer mu.RUnlock()
	return nowFunc()
}

func UTC() time.Time {
	return Now().UTC()
}

// Since is time.Since against the process clock.
func Since(start time.Time) time.Duration {
	return Now().Sub(start)
}

// Freeze pins the clock to t until the returned func is called.
func Freeze(t time.Time) (restore func()) {
	mu.Lock()
	prev := nowFunc
	nowFunc = func() time.Time { return t }
	mu.Unlock()

	return func() {
		mu.Lock()
		defer mu.Unlock()
		nowFunc = prev
	}
}
