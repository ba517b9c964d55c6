package ftp

import (
	"context"
	"net"
	"strings"
	"time"
)

// sessionState is the explicit lifecycle of a Session, tracked alongside
// (not instead of) the teacher's implicit conn != nil / currentType
// checks, so every control-channel operation can assert it runs against a
// session in the right phase.
type sessionState int

const (
	stateConstructed sessionState = iota
	stateConnected
	stateAuthenticated
	stateBusy
	stateIdle
	stateClosed
)

func (s sessionState) String() string {
	switch s {
	case stateConstructed:
		return "constructed"
	case stateConnected:
		return "connected"
	case stateAuthenticated:
		return "authenticated"
	case stateBusy:
		return "busy"
	case stateIdle:
		return "idle"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// setState transitions the session's lifecycle state. It does not enforce
// illegal-transition guards itself (callers only invoke it from the
// well-defined points in connect/Login/sendCommand/Quit), but centralizes
// the field write for logging and for pool liveness checks.
func (c *Session) setState(s sessionState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// State reports the session's current lifecycle state.
func (c *Session) State() sessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsAuthenticated reports whether Login has completed successfully and the
// session has not since been closed.
func (c *Session) IsAuthenticated() bool {
	s := c.State()
	return s == stateAuthenticated || s == stateIdle || s == stateBusy
}

// ConnectionAttempt records one attempt to establish the control channel,
// successful or not, for operator-facing diagnostics. Grounded on
// original_source/client/ftp_client.py's _diagnose_connection_error, which
// distinguishes a closed local port from a DNS failure from a bare
// timeout; this is surfaced here instead of just logged so that retrying
// code upstream (the pool, the scheduler) can inspect why a session
// repeatedly fails to connect.
type ConnectionAttempt struct {
	Time    time.Time
	Addr    string
	Err     error
	Kind    Kind
	Message string
}

// ConnectionHistory returns the most recent connection attempts for this
// session, oldest first. It is bounded to the last connectionHistoryLimit
// attempts.
func (c *Session) ConnectionHistory() []ConnectionAttempt {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ConnectionAttempt, len(c.connHistory))
	copy(out, c.connHistory)
	return out
}

const connectionHistoryLimit = 16

func (c *Session) recordConnectionAttempt(addr string, err error) {
	attempt := ConnectionAttempt{
		Time: time.Now(),
		Addr: addr,
		Err:  err,
	}
	if err != nil {
		attempt.Kind = diagnoseConnectionError(addr, err)
		attempt.Message = attempt.Kind.String()
	}

	c.mu.Lock()
	c.connHistory = append(c.connHistory, attempt)
	if len(c.connHistory) > connectionHistoryLimit {
		c.connHistory = c.connHistory[len(c.connHistory)-connectionHistoryLimit:]
	}
	c.mu.Unlock()
}

// diagnoseConnectionError classifies a dial failure the way
// _diagnose_connection_error does: a timeout is KindTimeout, a DNS
// resolution failure or refused/unreachable connect is KindConnection.
func diagnoseConnectionError(addr string, err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var netErr net.Error
	if ne, ok := err.(net.Error); ok {
		netErr = ne
		if netErr.Timeout() {
			return KindTimeout
		}
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "network is unreachable") ||
		strings.Contains(msg, "no route to host") {
		return KindConnection
	}

	return KindConnection
}

// dialAddr establishes a TCP connection to addr, preferring customDialer
// (context-aware) when one is configured, falling back to dialer
// otherwise. Every attempt, successful or not, is recorded in the
// session's connection history.
func (c *Session) dialAddr(ctx context.Context, addr string) (net.Conn, error) {
	var conn net.Conn
	var err error

	if c.customDialer != nil {
		conn, err = c.customDialer.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = c.dialer.Dial("tcp", addr)
	}

	c.recordConnectionAttempt(addr, err)
	return conn, err
}
