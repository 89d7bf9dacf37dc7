package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ingmarrr/ws-chat/internal/proto"
)

// Options tunes session behaviour. The zero value disables the idle
// timeout and the rate limit.
type Options struct {
	// IdleTimeout ends a joined session after this long without an inbound frame.
	IdleTimeout time.Duration
	// RateLimit caps inbound messages per minute per session; extra messages are dropped.
	RateLimit int
	// Observer receives lifecycle notifications. Nil disables them.
	Observer Observer
}

// Hub runs the connection handler for every session. The registry and bus
// are shared by all sessions and injected at construction.
type Hub struct {
	names *Registry
	bus   *Bus
	opts  Options
	obs   Observer
	log   *zerolog.Logger

	mu       sync.Mutex
	sessions map[*Session]struct{}
	closing  bool
	wg       sync.WaitGroup
}

// NewHub creates a hub over the given registry and bus.
func NewHub(names *Registry, bus *Bus, logger *zerolog.Logger, opts Options) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	obs := opts.Observer
	if obs == nil {
		obs = nopObserver{}
	}
	return &Hub{
		names:    names,
		bus:      bus,
		opts:     opts,
		obs:      obs,
		log:      logger,
		sessions: make(map[*Session]struct{}),
	}
}

// Serve drives one connection through admission, the joined relay loops and
// teardown. It blocks until the session is closed and returns why it ended.
// The connection is always closed when Serve returns.
func (h *Hub) Serve(ctx context.Context, conn Conn) (err error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s := newSession(conn, cancel)
	if !h.track(s) {
		s.close(ErrHubClosed)
		return ErrHubClosed
	}
	defer h.untrack(s)

	h.obs.SessionOpened()
	defer h.obs.SessionClosed()

	log := h.log.With().Str("session_id", s.ID).Logger()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrSessionPanic, r)
			log.Error().Err(err).Str("name", s.name).Msg("session handler panicked")
		}
		if s.State() == StateJoined {
			if leaveErr := guard(func() error { h.leave(s); return nil }); leaveErr != nil {
				log.Error().Err(leaveErr).Str("name", s.name).Msg("leave panicked")
			}
		}
		s.close(err)
		log.Debug().Err(err).Str("name", s.name).Msg("session closed")
	}()

	if err = h.admit(ctx, s, &log); err == nil {
		err = h.run(ctx, s, &log)
	}
	if cause := s.interruptCause(); cause != nil {
		err = cause
	}
	return err
}

// admit reads candidate names until one is claimed, the name is taken, or the
// connection fails. Empty and non-text frames are skipped.
func (h *Hub) admit(ctx context.Context, s *Session, log *zerolog.Logger) error {
	s.setState(StateAdmitting)

	for {
		candidate, err := s.conn.Read(ctx)
		if errors.Is(err, ErrNonTextFrame) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read name: %w", err)
		}
		if candidate == "" {
			continue
		}

		if !h.names.Claim(candidate) {
			s.setState(StateLeaving)
			h.obs.NameRejected()
			log.Info().Str("name", candidate).Msg("name already taken")
			if writeErr := s.conn.Write(ctx, proto.RejectionNotice); writeErr != nil {
				log.Debug().Err(writeErr).Msg("write rejection notice")
			}
			return ErrNameTaken
		}

		s.name = candidate
		s.setState(StateJoined)
		s.sub = h.bus.Subscribe()
		h.obs.SessionJoined()
		log.Info().Str("name", candidate).Msg("joined")

		h.publish(JoinedEvent(candidate))
		return nil
	}
}

// run starts the inbound and outbound loops and returns once both stopped.
// The first loop to finish cancels the other.
func (h *Hub) run(ctx context.Context, s *Session, log *zerolog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- guard(func() error { return h.readLoop(ctx, s, log) })
	}()
	go func() {
		errCh <- guard(func() error { return h.writeLoop(ctx, s, log) })
	}()

	err := <-errCh
	cancel() // stop the other loop
	<-errCh

	return err
}

func (h *Hub) readLoop(ctx context.Context, s *Session, log *zerolog.Logger) error {
	limiter := newRateLimiter(h.opts.RateLimit, time.Minute)

	var idle *time.Timer
	if h.opts.IdleTimeout > 0 {
		idle = time.AfterFunc(h.opts.IdleTimeout, func() { s.interrupt(ErrIdleTimeout) })
		defer idle.Stop()
	}

	for {
		text, err := s.conn.Read(ctx)
		if err != nil {
			return err
		}
		if idle != nil {
			idle.Reset(h.opts.IdleTimeout)
		}
		if text == "" {
			continue
		}
		if !limiter.allow() {
			h.obs.MessageThrottled()
			log.Debug().Str("name", s.name).Msg("rate limit exceeded, message dropped")
			continue
		}

		h.publish(MessageEvent(s.name, text))
	}
}

func (h *Hub) writeLoop(ctx context.Context, s *Session, log *zerolog.Logger) error {
	events := s.sub.C()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := s.conn.Write(ctx, ev.Frame()); err != nil {
				if ctx.Err() == nil {
					log.Debug().Err(err).Msg("write event")
				}
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// leave announces the departure and releases the name. It runs once per
// joined session, after both loops have stopped.
func (h *Hub) leave(s *Session) {
	s.setState(StateLeaving)
	h.publish(LeftEvent(s.name))
	h.names.Release(s.name)
	h.obs.SessionLeft()
	h.log.Info().Str("session_id", s.ID).Str("name", s.name).Msg("left")
}

func (h *Hub) publish(ev Event) {
	h.bus.Publish(ev)
	h.obs.EventPublished(ev.Kind)
}

func (h *Hub) track(s *Session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closing {
		return false
	}
	h.sessions[s] = struct{}{}
	h.wg.Add(1)
	return true
}

func (h *Hub) untrack(s *Session) {
	h.mu.Lock()
	delete(h.sessions, s)
	h.mu.Unlock()
	h.wg.Done()
}

// Sessions returns the number of live connections, joined or not.
func (h *Hub) Sessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Online returns the sorted names of joined users.
func (h *Hub) Online() []string {
	return h.names.Names()
}

// Shutdown refuses new sessions, closes every live one with ErrHubClosed and
// waits until all of them are finished or ctx is done.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closing = true
	for s := range h.sessions {
		go s.interrupt(ErrHubClosed)
	}
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// guard converts a panic in a relay loop into ErrSessionPanic so that only
// the owning session is torn down.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrSessionPanic, r)
		}
	}()
	return fn()
}
