package task

import (
	"errors"
	"testing"
	"time"
)

func TestTaskLifecycleCompletes(t *testing.T) {
	var progressCalls int
	var completed any
	cb := Callbacks{
		OnProgress: func(current, total int64, elapsed float64) { progressCalls++ },
		OnComplete: func(result any) { completed = result },
	}

	tk := New(Upload, []string{"a", "b"}, Normal, cb, 3, time.Second)
	if tk.Snapshot().Status != Pending {
		t.Fatalf("new task status = %v, want PENDING", tk.Snapshot().Status)
	}

	tk.MarkRunning()
	if tk.Snapshot().Status != Running {
		t.Fatalf("status = %v, want RUNNING", tk.Snapshot().Status)
	}

	tk.UpdateProgress(50, 100, 1.0)
	if progressCalls != 1 {
		t.Errorf("progressCalls = %d, want 1", progressCalls)
	}
	if tk.Snapshot().Progress != 50 {
		t.Errorf("Progress = %d, want 50", tk.Snapshot().Progress)
	}

	tk.MarkCompleted("done")
	snap := tk.Snapshot()
	if snap.Status != Completed {
		t.Fatalf("status = %v, want COMPLETED", snap.Status)
	}
	if snap.Progress != 100 {
		t.Errorf("Progress = %d, want 100 after completion", snap.Progress)
	}
	if completed != "done" {
		t.Errorf("callback result = %v, want done", completed)
	}
}

func TestTaskIllegalTransitionIsNoOp(t *testing.T) {
	tk := New(Delete, nil, Normal, Callbacks{}, 0, 0)
	tk.MarkCompleted("x") // illegal from PENDING, must be ignored
	if tk.Snapshot().Status != Pending {
		t.Errorf("status = %v, want PENDING (illegal transition must be a no-op)", tk.Snapshot().Status)
	}
}

func TestTaskRetryFlow(t *testing.T) {
	var failedErr error
	cb := Callbacks{OnError: func(err error) { failedErr = err }}
	tk := New(Download, nil, Normal, cb, 2, time.Millisecond)

	tk.MarkRunning()
	wantErr := errors.New("boom")
	tk.MarkFailed(wantErr)

	if failedErr != wantErr {
		t.Errorf("OnError callback = %v, want %v", failedErr, wantErr)
	}
	if !tk.Snapshot().CanRetry() {
		t.Fatal("expected CanRetry to be true after first failure")
	}

	tk.MarkRetrying()
	if tk.Snapshot().Status != Retrying {
		t.Fatalf("status = %v, want RETRYING", tk.Snapshot().Status)
	}
	if tk.Snapshot().RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", tk.Snapshot().RetryCount)
	}

	tk.Requeue()
	if tk.Snapshot().Status != Pending {
		t.Fatalf("status = %v, want PENDING after Requeue", tk.Snapshot().Status)
	}
}

func TestTaskCancelPending(t *testing.T) {
	var canceledErr error
	cb := Callbacks{OnError: func(err error) { canceledErr = err }}
	tk := New(Mkdir, nil, Normal, cb, 0, 0)

	tk.MarkCanceled()
	if tk.Snapshot().Status != Canceled {
		t.Fatalf("status = %v, want CANCELED", tk.Snapshot().Status)
	}
	if !tk.IsCanceled() {
		t.Error("IsCanceled() = false, want true")
	}
	if !errors.Is(canceledErr, ErrCanceled) {
		t.Errorf("OnError callback = %v, want ErrCanceled", canceledErr)
	}
}

func TestQueuePriorityOrdering(t *testing.T) {
	q := NewQueue()

	low := New(Upload, []string{"low"}, Low, Callbacks{}, 0, 0)
	high := New(Upload, []string{"high"}, High, Callbacks{}, 0, 0)
	normal1 := New(Upload, []string{"normal1"}, Normal, Callbacks{}, 0, 0)
	normal2 := New(Upload, []string{"normal2"}, Normal, Callbacks{}, 0, 0)

	q.Push(low)
	q.Push(normal1)
	q.Push(high)
	q.Push(normal2)

	order := []string{}
	for q.Len() > 0 {
		tk, ok := q.TryPop()
		if !ok {
			break
		}
		order = append(order, tk.Args()[0])
	}

	want := []string{"high", "normal1", "normal2", "low"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestQueueTryPopEmpty(t *testing.T) {
	q := NewQueue()
	if _, ok := q.TryPop(); ok {
		t.Error("TryPop on empty queue returned ok=true")
	}
}
