// Package pool implements the bounded connection pool from spec.md §4.2:
// a fixed-capacity set of authenticated *ftp.Session control channels with
// liveness probing, idle eviction and fair checkout. Grounded on
// original_source/client/ftp_client.py's FTPConnectionPool (validation
// timer, idle list, active counter, stats counters) and on the teacher's
// pattern of a capability struct built once at construction rather than
// resolved from a global.
package pool

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kestrelftp/ftpclient/internal/logging"
	"github.com/kestrelftp/ftpclient/metrics"

	ftp "github.com/kestrelftp/ftpclient"
)

// ErrClosed is returned by Acquire once CloseAll has run.
var ErrClosed = errors.New("pool: closed")

// ErrExhausted is returned by Acquire when the pool is at capacity and no
// session is released before the context is done.
var ErrExhausted = errors.New("pool: exhausted")

// Factory creates and authenticates a new *ftp.Session on demand. The
// façade supplies this as a closure over its configured host/credentials
// so the pool itself carries no protocol knowledge beyond *ftp.Session's
// public API.
type Factory func(ctx context.Context) (*ftp.Session, error)

// Stats mirrors FTPConnectionPool's counters from the Python original.
type Stats struct {
	Created  int64
	Reused   int64
	Closed   int64
	Failures int64
	Idle     int
	Busy     int
}

type idleSession struct {
	session  *ftp.Session
	lastUsed time.Time
}

// Pool guards a bounded multiset of idle sessions plus a busy count; the
// single mutex below serializes acquire/release exactly as spec.md §4.2
// requires (O(1) under the lock).
type Pool struct {
	mu          sync.Mutex
	idle        []*idleSession
	busy        int
	size        int
	idleTimeout time.Duration
	factory     Factory
	logger      logging.Logger
	metrics     metrics.Collector

	stats Stats

	closed   bool
	waiters  []chan struct{}
	stopOnce sync.Once
	stopCh   chan struct{}
}

// Option configures a Pool at construction.
type Option func(*Pool)

// WithLogger installs a logging capability.
func WithLogger(l logging.Logger) Option {
	return func(p *Pool) { p.logger = l }
}

// WithMetrics installs a metrics capability.
func WithMetrics(m metrics.Collector) Option {
	return func(p *Pool) { p.metrics = m }
}

// New constructs a Pool bounded to size sessions, validating idle
// sessions every idleTimeout/2.
func New(size int, idleTimeout time.Duration, factory Factory, opts ...Option) *Pool {
	p := &Pool{
		size:        size,
		idleTimeout: idleTimeout,
		factory:     factory,
		logger:      logging.NoOp(),
		metrics:     metrics.NoOp(),
		stopCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	if idleTimeout > 0 {
		go p.validateLoop()
	}

	return p
}

// Acquire returns an authenticated, idle session. It prefers reusing a
// pooled session (probed with NOOP first); if none are healthy and the
// pool has spare capacity, it creates a new one; otherwise it waits for a
// release or for ctx to be done.
func (p *Pool) Acquire(ctx context.Context) (*ftp.Session, error) {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, ErrClosed
		}

		for len(p.idle) > 0 {
			last := p.idle[len(p.idle)-1]
			p.idle = p.idle[:len(p.idle)-1]

			if err := last.session.Noop(); err != nil {
				p.logger.Debug("evicting dead idle session", "error", err)
				_ = last.session.Quit()
				p.stats.Closed++
				p.metrics.RecordSessionClosed("dead_on_acquire")
				continue
			}

			p.busy++
			p.stats.Reused++
			p.mu.Unlock()
			p.metrics.RecordSessionAcquired(true)
			return last.session, nil
		}

		if p.busy < p.size {
			p.busy++
			p.mu.Unlock()

			sess, err := p.factory(ctx)
			if err != nil {
				p.mu.Lock()
				p.busy--
				p.stats.Failures++
				p.mu.Unlock()
				p.metrics.RecordSessionCreated(false)
				return nil, err
			}

			p.mu.Lock()
			p.stats.Created++
			p.mu.Unlock()
			p.metrics.RecordSessionCreated(true)
			p.metrics.RecordSessionAcquired(false)
			return sess, nil
		}

		wait := make(chan struct{})
		p.waiters = append(p.waiters, wait)
		p.mu.Unlock()

		select {
		case <-wait:
			continue
		case <-ctx.Done():
			return nil, ErrExhausted
		}
	}
}

// Release returns session to the idle set if it is still healthy,
// otherwise closes it and decrements the busy count.
func (p *Pool) Release(session *ftp.Session) {
	healthy := session.Noop() == nil

	p.mu.Lock()
	p.busy--
	if p.closed || !healthy {
		p.mu.Unlock()
		_ = session.Quit()
		p.mu.Lock()
		p.stats.Closed++
		p.mu.Unlock()
		p.metrics.RecordSessionClosed("unhealthy_on_release")
	} else {
		p.idle = append(p.idle, &idleSession{session: session, lastUsed: time.Now()})
		p.mu.Unlock()
	}

	p.wakeWaiter()
}

func (p *Pool) wakeWaiter() {
	p.mu.Lock()
	if len(p.waiters) > 0 {
		w := p.waiters[0]
		p.waiters = p.waiters[1:]
		p.mu.Unlock()
		close(w)
		return
	}
	p.mu.Unlock()
}

// CloseAll closes every idle session and marks the pool closed; Acquire
// fails from then on. Busy sessions are closed as they are released.
func (p *Pool) CloseAll() {
	p.stopOnce.Do(func() { close(p.stopCh) })

	p.mu.Lock()
	p.closed = true
	idle := p.idle
	p.idle = nil
	waiters := p.waiters
	p.waiters = nil
	p.mu.Unlock()

	for _, is := range idle {
		_ = is.session.Quit()
		p.mu.Lock()
		p.stats.Closed++
		p.mu.Unlock()
	}
	for _, w := range waiters {
		close(w)
	}
}

// Stats returns a snapshot of the pool's counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.stats
	s.Idle = len(p.idle)
	s.Busy = p.busy
	return s
}

// validateLoop runs in the background, evicting idle sessions that have
// exceeded idleTimeout or that fail a NOOP probe.
func (p *Pool) validateLoop() {
	ticker := time.NewTicker(p.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.validateOnce()
		case <-p.stopCh:
			return
		}
	}
}

// validateOnce probes every idle session outside the lock (NOOP is a
// round trip). The candidates are reserved against busy for the
// duration of the probe so len(idle)+busy never drops below its true
// value: without this, a concurrent Acquire would see an empty idle set
// and spare capacity and create a brand new session, transiently
// exceeding pool_size (spec.md §8's |idle|+|busy| <= pool_size).
func (p *Pool) validateOnce() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	candidates := p.idle
	p.idle = nil
	p.busy += len(candidates)
	p.mu.Unlock()

	now := time.Now()
	var keep []*idleSession
	var freed int
	for _, is := range candidates {
		if now.Sub(is.lastUsed) > p.idleTimeout {
			p.logger.Debug("evicting idle session past idle_timeout")
			_ = is.session.Quit()
			p.mu.Lock()
			p.stats.Closed++
			p.mu.Unlock()
			p.metrics.RecordSessionClosed("idle_timeout")
			freed++
			continue
		}
		if err := is.session.Noop(); err != nil {
			p.logger.Debug("evicting session failing liveness probe", "error", err)
			_ = is.session.Quit()
			p.mu.Lock()
			p.stats.Closed++
			p.mu.Unlock()
			p.metrics.RecordSessionClosed("failed_probe")
			freed++
			continue
		}
		keep = append(keep, is)
	}

	p.mu.Lock()
	p.idle = append(p.idle, keep...)
	p.busy -= len(candidates)
	p.mu.Unlock()

	// Closing a candidate frees real capacity; a kept one just moves
	// back to idle, which Acquire's idle-first loop already finds, but
	// either way a waiter blocked on exhaustion may now be unblockable.
	if freed > 0 || len(keep) > 0 {
		p.wakeWaiter()
	}
}
