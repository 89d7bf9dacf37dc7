package core

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// State is the lifecycle stage of a session.
type State int32

const (
	// StateConnecting means the transport is up and no name has been read.
	StateConnecting State = iota
	// StateAdmitting means the session is waiting for an acceptable name.
	StateAdmitting
	// StateJoined means the name is claimed and both relay loops run.
	StateJoined
	// StateLeaving means the session is announcing departure and releasing its name.
	StateLeaving
	// StateClosed is terminal; all resources are released.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAdmitting:
		return "admitting"
	case StateJoined:
		return "joined"
	case StateLeaving:
		return "leaving"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session binds one connection to one claimed name and one bus subscription.
// It is owned by the Hub.Serve call that created it.
type Session struct {
	ID string

	conn   Conn
	cancel context.CancelFunc
	name   string
	sub    *Subscription

	state     atomic.Int32
	closeOnce sync.Once
	done      chan struct{}

	stopMu    sync.Mutex
	stopCause error
}

func newSession(conn Conn, cancel context.CancelFunc) *Session {
	return &Session{
		ID:     uuid.NewString(),
		conn:   conn,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// State returns the current lifecycle stage.
func (s *Session) State() State {
	return State(s.state.Load())
}

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
}

// Done is closed once the session reaches StateClosed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// close releases the subscription and the connection exactly once.
func (s *Session) close(cause error) {
	s.closeOnce.Do(func() {
		if s.sub != nil {
			s.sub.Close()
		}
		_ = s.conn.Close(cause)
		s.setState(StateClosed)
		close(s.done)
	})
}

// interrupt ends the session from outside its loops. The connection is closed
// with cause before the context is cancelled so the peer sees the matching
// close frame. Only the first cause is kept.
func (s *Session) interrupt(cause error) {
	s.stopMu.Lock()
	if s.stopCause != nil {
		s.stopMu.Unlock()
		return
	}
	s.stopCause = cause
	s.stopMu.Unlock()

	_ = s.conn.Close(cause)
	s.cancel()
}

func (s *Session) interruptCause() error {
	s.stopMu.Lock()
	defer s.stopMu.Unlock()
	return s.stopCause
}
