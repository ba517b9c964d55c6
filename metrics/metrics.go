// Package metrics provides the observability capability shared by the
// pool, scheduler and façade, grounded on the teacher's own
// server/metrics.go MetricsCollector interface (same non-blocking,
// nil-safe calling convention) generalized to the client side.
package metrics

// Collector receives point-in-time events from the pool and scheduler.
// Every method must be non-blocking and safe to call from any goroutine;
// implementations that need to batch or export asynchronously must do
// their own buffering.
type Collector interface {
	// RecordSessionAcquired is called whenever Acquire returns a session,
	// reused reporting whether it came from the idle set (true) or was
	// freshly created (false).
	RecordSessionAcquired(reused bool)
	// RecordSessionCreated is called whenever the pool's factory runs,
	// success reporting whether the new session connected and logged in.
	RecordSessionCreated(success bool)
	// RecordSessionClosed is called whenever a session is evicted or
	// closed, reason being a short cause label ("idle_timeout",
	// "failed_probe", "unhealthy_on_release", "dead_on_acquire",
	// "shutdown").
	RecordSessionClosed(reason string)
	// RecordTaskDispatched is called when a worker begins executing a
	// task of the given kind.
	RecordTaskDispatched(kind string)
	// RecordTaskRetried is called when the retry monitor reinjects a
	// task.
	RecordTaskRetried(kind string)
	// RecordTaskResult is called when a task reaches COMPLETED or FAILED.
	RecordTaskResult(kind string, success bool, duration float64)
	// RecordQueueDepth is called periodically with the current number of
	// queued (not yet dispatched) tasks.
	RecordQueueDepth(depth int)
}

// noop discards every event; it is the default Collector so every
// component can always call through the interface without a nil check.
type noop struct{}

func (noop) RecordSessionAcquired(bool)                {}
func (noop) RecordSessionCreated(bool)                 {}
func (noop) RecordSessionClosed(string)                {}
func (noop) RecordTaskDispatched(string)                {}
func (noop) RecordTaskRetried(string)                   {}
func (noop) RecordTaskResult(string, bool, float64)     {}
func (noop) RecordQueueDepth(int)                       {}

// NoOp returns a Collector whose methods do nothing.
func NoOp() Collector { return noop{} }
