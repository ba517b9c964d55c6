// Package task defines the unit of work dispatched by the scheduler: a
// typed operation descriptor carrying its own progress, status and retry
// bookkeeping, grounded on original_source/client/transfer_queue.py's
// TransferTask dataclass.
package task

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the operation a Task performs.
type Kind int

const (
	Upload Kind = iota
	Download
	Delete
	Rename
	Mkdir
	Rmdir
	List
)

func (k Kind) String() string {
	switch k {
	case Upload:
		return "UPLOAD"
	case Download:
		return "DOWNLOAD"
	case Delete:
		return "DELETE"
	case Rename:
		return "RENAME"
	case Mkdir:
		return "MKDIR"
	case Rmdir:
		return "RMDIR"
	case List:
		return "LIST"
	default:
		return "UNKNOWN"
	}
}

// Priority is totally ordered; a higher ordinal is dispatched first.
type Priority int

const (
	Low Priority = iota
	Normal
	High
	Urgent
)

func (p Priority) String() string {
	switch p {
	case Low:
		return "LOW"
	case Normal:
		return "NORMAL"
	case High:
		return "HIGH"
	case Urgent:
		return "URGENT"
	default:
		return "UNKNOWN"
	}
}

// Status is the task's lifecycle state.
type Status int

const (
	Pending Status = iota
	Running
	Completed
	Failed
	Canceled
	Paused
	Retrying
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case Running:
		return "RUNNING"
	case Completed:
		return "COMPLETED"
	case Failed:
		return "FAILED"
	case Canceled:
		return "CANCELED"
	case Paused:
		return "PAUSED"
	case Retrying:
		return "RETRYING"
	default:
		return "UNKNOWN"
	}
}

// validTransitions encodes spec.md §3's legal Status graph:
// PENDING -> RUNNING -> {COMPLETED|FAILED|CANCELED}
// FAILED -> RETRYING -> PENDING
// PENDING -> CANCELED
var validTransitions = map[Status]map[Status]bool{
	Pending:   {Running: true, Canceled: true},
	Running:   {Completed: true, Failed: true, Canceled: true},
	Failed:    {Retrying: true},
	Retrying:  {Pending: true},
	Completed: {},
	Canceled:  {},
	Paused:    {Pending: true, Running: true},
}

func validTransition(from, to Status) bool {
	next, ok := validTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

// Callbacks collapses the three optional observer hooks from
// transfer_queue.py (on_progress/on_complete/on_error) into a single
// capability struct. The zero value is always safe to invoke: every
// field defaults to a no-op, so call sites never need a nil check.
type Callbacks struct {
	OnProgress func(current, total int64, elapsedSeconds float64)
	OnComplete func(result any)
	OnError    func(err error)
}

func (c Callbacks) progress(current, total int64, elapsed float64) {
	if c.OnProgress != nil {
		c.OnProgress(current, total, elapsed)
	}
}

func (c Callbacks) complete(result any) {
	if c.OnComplete != nil {
		c.OnComplete(result)
	}
}

func (c Callbacks) failed(err error) {
	if c.OnError != nil {
		c.OnError(err)
	}
}

// Snapshot is a copy-on-read view of a Task, safe to hand to external
// readers without racing the owning worker (spec.md §5 shared-resource
// policy: tasks are mutated only by their owning worker).
type Snapshot struct {
	ID          string
	Kind        Kind
	Priority    Priority
	Status      Status
	CreatedTime time.Time
	StartTime   time.Time
	EndTime     time.Time
	Progress    int
	Err         error
	Result      any
	RetryCount  int
	MaxRetries  int
}

// Duration returns how long the task ran, zero if it has not both started
// and ended.
func (s Snapshot) Duration() time.Duration {
	if s.StartTime.IsZero() || s.EndTime.IsZero() {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

// Age returns how long ago the task was created.
func (s Snapshot) Age() time.Duration {
	return time.Since(s.CreatedTime)
}

// CanRetry reports whether a FAILED task still has retry budget.
func (s Snapshot) CanRetry() bool {
	return s.Status == Failed && s.RetryCount < s.MaxRetries
}

// Task is the opaque unit of work described by spec.md §3: a tagged
// operation with positional arguments, priority, status, progress and
// retry bookkeeping. All mutation happens through its exported Mark*
// methods, always called by the single worker that owns it at a time.
type Task struct {
	mu sync.Mutex

	id          string
	kind        Kind
	args        []string
	priority    Priority
	status      Status
	createdTime time.Time
	startTime   time.Time
	endTime     time.Time
	progress    int
	err         error
	result      any
	retryCount  int
	maxRetries  int
	retryDelay  time.Duration
	callbacks   Callbacks
}

// New constructs a PENDING task with a fresh globally-unique ID.
func New(kind Kind, args []string, priority Priority, callbacks Callbacks, maxRetries int, retryDelay time.Duration) *Task {
	return &Task{
		id:          uuid.NewString(),
		kind:        kind,
		args:        args,
		priority:    priority,
		status:      Pending,
		createdTime: time.Now(),
		maxRetries:  maxRetries,
		retryDelay:  retryDelay,
		callbacks:   callbacks,
	}
}

func (t *Task) ID() string       { return t.id }
func (t *Task) Kind() Kind       { return t.kind }
func (t *Task) Args() []string   { return t.args }
func (t *Task) Priority() Priority {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.priority
}

// Snapshot returns a point-in-time copy of the task's observable state.
func (t *Task) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		ID:          t.id,
		Kind:        t.kind,
		Priority:    t.priority,
		Status:      t.status,
		CreatedTime: t.createdTime,
		StartTime:   t.startTime,
		EndTime:     t.endTime,
		Progress:    t.progress,
		Err:         t.err,
		Result:      t.result,
		RetryCount:  t.retryCount,
		MaxRetries:  t.maxRetries,
	}
}

func (t *Task) transition(to Status) bool {
	if !validTransition(t.status, to) {
		return false
	}
	t.status = to
	return true
}

// MarkRunning transitions PENDING -> RUNNING and stamps the start time.
func (t *Task) MarkRunning() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.transition(Running) {
		t.startTime = time.Now()
	}
}

// UpdateProgress records progress as a 0-100 percentage derived from
// current/total and invokes the progress callback. A lost progress event
// is never fatal, so errors are not possible here.
func (t *Task) UpdateProgress(current, total int64, elapsed float64) {
	t.mu.Lock()
	pct := 0
	if total > 0 {
		pct = int(current * 100 / total)
		if pct > 100 {
			pct = 100
		}
	}
	t.progress = pct
	cb := t.callbacks
	t.mu.Unlock()

	cb.progress(current, total, elapsed)
}

// MarkCompleted transitions RUNNING -> COMPLETED, sets progress to 100,
// records result and invokes the complete callback exactly once.
func (t *Task) MarkCompleted(result any) {
	t.mu.Lock()
	ok := t.transition(Completed)
	if ok {
		t.endTime = time.Now()
		t.progress = 100
		t.result = result
	}
	cb := t.callbacks
	t.mu.Unlock()

	if ok {
		cb.complete(result)
	}
}

// MarkFailed transitions RUNNING -> FAILED, records err and invokes the
// error callback exactly once.
func (t *Task) MarkFailed(err error) {
	t.mu.Lock()
	ok := t.transition(Failed)
	if ok {
		t.endTime = time.Now()
		t.err = err
	}
	cb := t.callbacks
	t.mu.Unlock()

	if ok {
		cb.failed(err)
	}
}

// MarkFailedRetryable transitions RUNNING -> FAILED -> RETRYING in one
// step, recording err but deliberately NOT invoking the error callback:
// the task is not done, a retry has already been scheduled for it.
// Callers that already know a failure is retryable (spec.md §3: "the
// terminal callback fires at most once, for the outcome that sticks")
// must use this instead of MarkFailed followed by MarkRetrying, which
// would fire OnError for an attempt that is not actually terminal.
func (t *Task) MarkFailedRetryable(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.transition(Failed) {
		return
	}
	t.endTime = time.Now()
	t.err = err
	if t.transition(Retrying) {
		t.retryCount++
	}
}

// MarkCanceled transitions PENDING -> CANCELED. Guaranteed to succeed for
// a task that has not yet been dispatched to a worker.
func (t *Task) MarkCanceled() {
	t.mu.Lock()
	ok := t.transition(Canceled)
	if ok {
		t.endTime = time.Now()
	}
	cb := t.callbacks
	t.mu.Unlock()

	if ok {
		cb.failed(ErrCanceled)
	}
}

// MarkRetrying transitions FAILED -> RETRYING and increments retry_count.
func (t *Task) MarkRetrying() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.transition(Retrying) {
		t.retryCount++
	}
}

// Requeue transitions RETRYING -> PENDING, making the task eligible for
// another dispatch.
func (t *Task) Requeue() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.transition(Pending)
}

// RetryDelay returns the base retry delay configured for this task.
func (t *Task) RetryDelay() time.Duration {
	return t.retryDelay
}

// IsCanceled reports whether the task has already been marked CANCELED,
// used by the scheduler worker to skip a popped task without dispatching
// it to a handler.
func (t *Task) IsCanceled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status == Canceled
}
