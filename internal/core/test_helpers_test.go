package core

import (
	"context"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type frame struct {
	text   string
	binary bool
	panic  bool
}

// pipeConn is an in-memory Conn. The test plays the client side through
// send, hangup and expect.
type pipeConn struct {
	in     chan frame
	out    chan string
	closed chan struct{}

	closeOnce  sync.Once
	hangOnce   sync.Once
	failWrites atomic.Bool

	mu    sync.Mutex
	cause error
}

func newPipeConn() *pipeConn {
	return &pipeConn{
		in:     make(chan frame, 16),
		out:    make(chan string, 256),
		closed: make(chan struct{}),
	}
}

func (p *pipeConn) Read(ctx context.Context) (string, error) {
	select {
	case f, ok := <-p.in:
		if !ok {
			return "", io.EOF
		}
		if f.panic {
			panic("boom")
		}
		if f.binary {
			return "", ErrNonTextFrame
		}
		return f.text, nil
	case <-p.closed:
		return "", net.ErrClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (p *pipeConn) Write(ctx context.Context, text string) error {
	if p.failWrites.Load() {
		return io.ErrClosedPipe
	}
	select {
	case p.out <- text:
		return nil
	case <-p.closed:
		return net.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *pipeConn) Close(cause error) error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.cause = cause
		p.mu.Unlock()
		close(p.closed)
	})
	return nil
}

// closeCause is the cause the connection was first closed with.
func (p *pipeConn) closeCause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cause
}

func (p *pipeConn) isClosed() bool {
	select {
	case <-p.closed:
		return true
	default:
		return false
	}
}

func (p *pipeConn) send(text string) { p.in <- frame{text: text} }

func (p *pipeConn) sendBinary() { p.in <- frame{binary: true} }

// hangup simulates the client going away.
func (p *pipeConn) hangup() { p.hangOnce.Do(func() { close(p.in) }) }

func (p *pipeConn) expect(t *testing.T, want string) {
	t.Helper()

	select {
	case got := <-p.out:
		if got != want {
			t.Fatalf("expected frame %q, got %q", want, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected frame %q not received", want)
	}
}

func (p *pipeConn) expectNothing(t *testing.T, wait time.Duration) {
	t.Helper()

	select {
	case got := <-p.out:
		t.Fatalf("unexpected frame %q", got)
	case <-time.After(wait):
	}
}

// serve runs h.Serve on conn in the background and returns its result channel.
func serve(h *Hub, conn Conn) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- h.Serve(context.Background(), conn)
	}()
	return done
}

func mustFinish(t *testing.T, done <-chan error) error {
	t.Helper()

	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatalf("session did not finish")
		return nil
	}
}

func newTestHub(opts Options) (*Hub, *Registry, *Bus) {
	names := NewRegistry()
	bus := NewBus(DefaultSubscriberBuffer)
	return NewHub(names, bus, nil, opts), names, bus
}

// join connects a client under name and consumes its own join announcement.
func join(t *testing.T, h *Hub, name string) (*pipeConn, <-chan error) {
	t.Helper()

	conn := newPipeConn()
	done := serve(h, conn)
	conn.send(name)
	conn.expect(t, name+" joined.")
	return conn, done
}

type countingObserver struct {
	nopObserver
	rejected  atomic.Int64
	throttled atomic.Int64
	joined    atomic.Int64
	left      atomic.Int64
}

func (o *countingObserver) NameRejected()     { o.rejected.Add(1) }
func (o *countingObserver) MessageThrottled() { o.throttled.Add(1) }
func (o *countingObserver) SessionJoined()    { o.joined.Add(1) }
func (o *countingObserver) SessionLeft()      { o.left.Add(1) }

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met: %s", msg)
}
