// Package monitoring reports unexpected dispatch failures to an external
// error tracker. The active Monitor is process-global so deep call sites
// can report without threading a dependency through every constructor.
package monitoring

import (
	"sync"
	"time"
)

// Monitor receives errors and panics worth paging on.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

// NopMonitor drops everything. It is the default until Init runs.
type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

var (
	mu     sync.RWMutex
	active Monitor = NopMonitor{}
)

// Init installs the process-wide monitor. A nil monitor is ignored so
// callers can pass the result of a conditional setup straight through.
func Init(m Monitor) {
	if m == nil {
		return
	}
	mu.Lock()
	active = m
	mu.Unlock()
}

// CaptureException reports err with the given tags. Nil errors are dropped
// here so call sites do not need their own guard.
func CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	monitor().CaptureException(err, tags)
}

// Recover forwards a recovered panic to the monitor. Call it deferred in
// goroutines whose panics would otherwise vanish.
func Recover() {
	monitor().Recover()
}

// Flush blocks until buffered events are delivered or the timeout expires.
func Flush(timeout time.Duration) {
	monitor().Flush(timeout)
}

func monitor() Monitor {
	mu.RLock()
	defer mu.RUnlock()
	return active
}
