package core

import (
	"time"

	"github.com/ingmarrr/ws-chat/internal/proto"
)

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventMessage relays a chat message.
	EventMessage EventKind = iota
	// EventJoined announces a user joining the chat.
	EventJoined
	// EventLeft announces a user leaving the chat.
	EventLeft
)

func (k EventKind) String() string {
	switch k {
	case EventMessage:
		return "message"
	case EventJoined:
		return "joined"
	case EventLeft:
		return "left"
	default:
		return "unknown"
	}
}

// Event is an immutable chat event carried by the bus. It is passed by value.
type Event struct {
	Kind EventKind
	From string
	Text string
	At   time.Time
}

// JoinedEvent builds the announcement for a newly admitted user.
func JoinedEvent(name string) Event {
	return Event{Kind: EventJoined, From: name, At: time.Now()}
}

// LeftEvent builds the departure announcement for a user.
func LeftEvent(name string) Event {
	return Event{Kind: EventLeft, From: name, At: time.Now()}
}

// MessageEvent builds a relayed chat message.
func MessageEvent(from, text string) Event {
	return Event{Kind: EventMessage, From: from, Text: text, At: time.Now()}
}

// Frame renders the event as the text frame written to clients.
func (e Event) Frame() string {
	switch e.Kind {
	case EventJoined:
		return proto.Joined(e.From)
	case EventLeft:
		return proto.Left(e.From)
	default:
		return proto.Message(e.From, e.Text)
	}
}
