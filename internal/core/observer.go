package core

// Observer receives lifecycle notifications from the hub, typically for metrics.
// Implementations must be safe for concurrent use and must not block.
type Observer interface {
	SessionOpened()
	SessionClosed()
	SessionJoined()
	SessionLeft()
	NameRejected()
	EventPublished(kind EventKind)
	MessageThrottled()
}

type nopObserver struct{}

func (nopObserver) SessionOpened()           {}
func (nopObserver) SessionClosed()           {}
func (nopObserver) SessionJoined()           {}
func (nopObserver) SessionLeft()             {}
func (nopObserver) NameRejected()            {}
func (nopObserver) EventPublished(EventKind) {}
func (nopObserver) MessageThrottled()        {}
