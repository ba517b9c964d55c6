package task

import "errors"

// ErrCanceled is passed to a task's error callback when it is canceled
// while still PENDING.
var ErrCanceled = errors.New("task: canceled")

// ErrQueueInvariant reports a scheduler invariant violation (a
// programming bug, not a runtime failure) — surfaced to the caller but
// never retried.
var ErrQueueInvariant = errors.New("task: queue invariant violation")
