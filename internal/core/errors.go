package core

import "errors"

var (
	// ErrNameTaken is returned when the requested display name is already claimed.
	ErrNameTaken = errors.New("name already taken")
	// ErrNonTextFrame is returned by Conn.Read when the peer sent a non-text frame.
	ErrNonTextFrame = errors.New("non-text frame")
	// ErrIdleTimeout ends a joined session whose client stayed silent too long.
	ErrIdleTimeout = errors.New("idle timeout")
	// ErrSessionPanic marks a session torn down after its handler panicked.
	ErrSessionPanic = errors.New("session panic")
	// ErrHubClosed is returned by Serve once the hub is shutting down.
	ErrHubClosed = errors.New("hub closed")
)
