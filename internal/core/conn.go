package core

import "context"

// Conn is the duplex frame channel a session runs over.
// Read and Write may be called concurrently with each other.
type Conn interface {
	// Read blocks until the next frame arrives or ctx is done.
	// Non-text frames are reported as ErrNonTextFrame.
	Read(ctx context.Context) (string, error)
	// Write sends one text frame.
	Write(ctx context.Context, text string) error
	// Close terminates the connection. cause is why the session ended,
	// nil for a clean close.
	Close(cause error) error
}
