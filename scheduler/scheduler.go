// Package scheduler implements spec.md §4.3's task queue and dispatcher:
// a priority heap drained by a fixed set of workers, each borrowing a pool
// session, dispatching on task kind through a caller-supplied table, and
// reinjecting transient failures through a backoff-driven retry monitor.
//
// Grounded on original_source/client/transfer_queue.py's TransferQueue
// (_worker/_retry_worker/_get_task_handler), redesigned per spec.md §9's
// explicit instruction to replace "subclassing the queue to inject
// handlers" with a dispatch table supplied at construction: the scheduler
// itself owns no protocol knowledge.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	ftp "github.com/kestrelftp/ftpclient"
	"github.com/kestrelftp/ftpclient/internal/logging"
	"github.com/kestrelftp/ftpclient/metrics"
	"github.com/kestrelftp/ftpclient/pool"
	"github.com/kestrelftp/ftpclient/task"
)

// HandlerFunc is the dispatch-table entry for one task.Kind: given a
// borrowed session and the task to execute, it performs the operation and
// returns a kind-specific result or an error.
type HandlerFunc func(ctx context.Context, session *ftp.Session, t *task.Task) (any, error)

// ErrNotRunning is returned by Submit once Shutdown has been called.
var ErrNotRunning = errors.New("scheduler: not running")

// Scheduler drains a priority queue of tasks across a fixed worker pool.
type Scheduler struct {
	pool      *pool.Pool
	queue     *task.Queue
	handlers  map[task.Kind]HandlerFunc
	workers   int
	autoRetry bool
	// backoffMultiplier is the exponential-backoff growth factor applied
	// between retries (spec.md §6 retry_backoff). Defaults to
	// backoff.NewExponentialBackOff's own default (2.0) when unset.
	backoffMultiplier float64

	logger  logging.Logger
	metrics metrics.Collector

	tasksMu sync.Mutex
	tasks   map[string]*task.Task
	// pendingRetries tracks task IDs that already have a backoff goroutine
	// sleeping before requeue, so scanRetries' 1-second tick does not spawn
	// a second one for the same task while the first is still sleeping.
	pendingRetries map[string]bool

	wg       sync.WaitGroup
	shutdown chan struct{}
	closeOnce sync.Once
}

// Option configures a Scheduler at construction.
type Option func(*Scheduler)

func WithLogger(l logging.Logger) Option      { return func(s *Scheduler) { s.logger = l } }
func WithMetrics(m metrics.Collector) Option  { return func(s *Scheduler) { s.metrics = m } }
func WithAutoRetry(enabled bool) Option       { return func(s *Scheduler) { s.autoRetry = enabled } }

// WithBackoffMultiplier sets the exponential-backoff growth factor used
// between retry attempts (spec.md §6 retry_backoff). A value <= 0 leaves
// the library default (2.0) in place.
func WithBackoffMultiplier(multiplier float64) Option {
	return func(s *Scheduler) { s.backoffMultiplier = multiplier }
}

// New constructs a Scheduler with workers fixed worker goroutines (N =
// pool size, per spec.md §4.3), draining p through a dispatch table of
// handlers, one per task.Kind. It starts the workers and, if auto-retry
// is enabled, the retry monitor immediately.
func New(p *pool.Pool, workers int, handlers map[task.Kind]HandlerFunc, opts ...Option) *Scheduler {
	s := &Scheduler{
		pool:      p,
		queue:     task.NewQueue(),
		handlers:  handlers,
		workers:   workers,
		autoRetry: true,
		logger:    logging.NoOp(),
		metrics:   metrics.NoOp(),
		tasks:          make(map[string]*task.Task),
		pendingRetries: make(map[string]bool),
		shutdown:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	if s.autoRetry {
		s.wg.Add(1)
		go s.retryMonitor()
	}

	return s
}

// Submit enqueues a new task at the given priority and returns its ID.
func (s *Scheduler) Submit(kind task.Kind, args []string, priority task.Priority, callbacks task.Callbacks, maxRetries int, retryDelay time.Duration) (string, error) {
	select {
	case <-s.shutdown:
		return "", ErrNotRunning
	default:
	}

	t := task.New(kind, args, priority, callbacks, maxRetries, retryDelay)

	s.tasksMu.Lock()
	s.tasks[t.ID()] = t
	s.tasksMu.Unlock()

	s.queue.Push(t)
	s.metrics.RecordQueueDepth(s.queue.Len())

	return t.ID(), nil
}

// Cancel marks a task CANCELED. If it is still PENDING this always
// succeeds and the worker will skip it when popped; cancellation of a
// RUNNING task is advisory only (see spec.md §4.3) — this implementation
// chooses "refuse with a clear indication" rather than aborting the
// in-flight data socket, documented in DESIGN.md's Open Question
// resolution, and logs the refusal rather than pretending to succeed.
func (s *Scheduler) Cancel(id string) bool {
	s.tasksMu.Lock()
	t, ok := s.tasks[id]
	s.tasksMu.Unlock()
	if !ok {
		return false
	}

	snap := t.Snapshot()
	if snap.Status != task.Pending {
		s.logger.Warn("cannot cancel task not in PENDING state", "task_id", id, "status", snap.Status.String())
		return false
	}
	t.MarkCanceled()
	return true
}

// Inspect returns a snapshot of the task with the given ID.
func (s *Scheduler) Inspect(id string) (task.Snapshot, bool) {
	s.tasksMu.Lock()
	t, ok := s.tasks[id]
	s.tasksMu.Unlock()
	if !ok {
		return task.Snapshot{}, false
	}
	return t.Snapshot(), true
}

// WaitForTask blocks until the task reaches a terminal state or timeout
// elapses, returning true only on COMPLETED.
func (s *Scheduler) WaitForTask(id string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		snap, ok := s.Inspect(id)
		if !ok {
			return false
		}
		switch snap.Status {
		case task.Completed:
			return true
		case task.Failed, task.Canceled:
			return false
		}
		if timeout > 0 && time.Now().After(deadline) {
			return false
		}
		time.Sleep(20 * time.Millisecond)
	}
}

// WaitAll blocks until the queue is empty and no task is RUNNING, or
// timeout elapses.
func (s *Scheduler) WaitAll(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if s.queue.Len() == 0 && !s.anyRunning() {
			return true
		}
		if timeout > 0 && time.Now().After(deadline) {
			return false
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func (s *Scheduler) anyRunning() bool {
	s.tasksMu.Lock()
	defer s.tasksMu.Unlock()
	for _, t := range s.tasks {
		if t.Snapshot().Status == task.Running {
			return true
		}
	}
	return false
}

// Shutdown stops accepting new tasks. If wait is true it drains the queue
// and lets active tasks finish before returning; otherwise workers exit
// after their current task and anything still queued is abandoned.
func (s *Scheduler) Shutdown(wait bool) {
	s.closeOnce.Do(func() {
		close(s.shutdown)
		// Wake every worker blocked in queue.Pop immediately, so a wait=true
		// caller's subsequent WaitAll doesn't stall on workers that are
		// parked on an empty queue's condition variable.
		s.queue.Broadcast()
	})

	if wait {
		s.WaitAll(0)
	}

	s.wg.Wait()
	s.pool.CloseAll()
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		t, ok := s.queue.Pop(s.shutdown)
		if !ok {
			// shutdown is closed and the queue was empty when Pop noticed.
			// Drain whatever was pushed in the meantime without blocking,
			// so a Shutdown(wait=true) caller's drain-then-join sees
			// workers finish the backlog rather than exit mid-queue.
			for {
				t, ok := s.queue.TryPop()
				if !ok {
					return
				}
				s.runTask(t)
			}
		}
		s.runTask(t)
	}
}

func (s *Scheduler) runTask(t *task.Task) {
	if t.IsCanceled() {
		return
	}

	t.MarkRunning()
	s.metrics.RecordTaskDispatched(t.Kind().String())

	handler, ok := s.handlers[t.Kind()]
	if !ok {
		t.MarkFailed(task.ErrQueueInvariant)
		return
	}

	session, err := s.pool.Acquire(context.Background())
	if err != nil {
		t.MarkFailed(err)
		s.metrics.RecordTaskResult(t.Kind().String(), false, t.Snapshot().Duration().Seconds())
		return
	}
	defer s.pool.Release(session)

	result, err := handler(context.Background(), session, t)
	if err != nil {
		// Decide retry eligibility before touching status: MarkFailed
		// fires the terminal OnError callback, which spec.md §3 promises
		// happens at most once, for whichever outcome sticks. A failure
		// that is about to be retried must not fire it.
		snap := t.Snapshot()
		willRetry := s.autoRetry && ftp.IsRetryable(err) && snap.RetryCount < snap.MaxRetries

		if willRetry {
			t.MarkFailedRetryable(err)
		} else {
			t.MarkFailed(err)
		}
		s.metrics.RecordTaskResult(t.Kind().String(), false, t.Snapshot().Duration().Seconds())
		return
	}

	t.MarkCompleted(result)
	s.metrics.RecordTaskResult(t.Kind().String(), true, t.Snapshot().Duration().Seconds())
}

// retryMonitor periodically scans for RETRYING tasks, waits the
// configured backoff, and reinjects them into the priority heap. Uses
// github.com/cenkalti/backoff/v4 for the exponential-backoff-with-jitter
// calculation spec.md §4.3 describes, instead of hand-rolling
// retry_delay * backoff^retry_count.
func (s *Scheduler) retryMonitor() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.shutdown:
			return
		case <-ticker.C:
			s.scanRetries()
		}
	}
}

func (s *Scheduler) scanRetries() {
	s.tasksMu.Lock()
	retrying := make([]*task.Task, 0)
	for id, t := range s.tasks {
		if t.Snapshot().Status != task.Retrying {
			continue
		}
		if s.pendingRetries[id] {
			// Already has a backoff goroutine sleeping toward requeue;
			// the task stays RETRYING for the whole sleep, so without
			// this guard every tick in between would spawn another one.
			continue
		}
		s.pendingRetries[id] = true
		retrying = append(retrying, t)
	}
	s.tasksMu.Unlock()

	for _, t := range retrying {
		snap := t.Snapshot()
		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = t.RetryDelay()
		if bo.InitialInterval <= 0 {
			bo.InitialInterval = time.Second
		}
		if s.backoffMultiplier > 0 {
			bo.Multiplier = s.backoffMultiplier
		}
		var delay time.Duration
		for i := 0; i <= snap.RetryCount; i++ {
			delay = bo.NextBackOff()
		}

		go func(t *task.Task, delay time.Duration) {
			time.Sleep(delay)
			t.Requeue()
			s.queue.Push(t)
			s.metrics.RecordTaskRetried(t.Kind().String())

			s.tasksMu.Lock()
			delete(s.pendingRetries, t.ID())
			s.tasksMu.Unlock()
		}(t, delay)
	}
}
