// Package monitoring exposes a process-wide error reporting hook. The
// default monitor discards everything; the service installs a Sentry
// backed one when a DSN is configured.
package monitoring

import "time"

// Monitor receives errors and panics that should reach an external tracker.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	CapturePanic(v any)
	Flush(timeout time.Duration)
}

// NopMonitor drops every event.
type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) CapturePanic(any)                          {}
func (NopMonitor) Flush(time.Duration)                       {}

var current Monitor = NopMonitor{}

// Init installs the process-wide monitor. A nil monitor keeps the
// previous one so callers can pass a constructor result unchecked.
func Init(m Monitor) {
	if m != nil {
		current = m
	}
}

// CaptureException forwards err and its tags to the active monitor.
func CaptureException(err error, tags map[string]string) {
	current.CaptureException(err, tags)
}

// Recover reports an in-flight panic and re-raises it, keeping the
// caller's crash semantics. It must be deferred directly:
//
//	defer monitoring.Recover()
func Recover() {
	if r := recover(); r != nil {
		current.CapturePanic(r)
		current.Flush(2 * time.Second)
		panic(r)
	}
}

// Flush blocks until buffered events are sent or the timeout expires.
func Flush(d time.Duration) {
	current.Flush(d)
}
