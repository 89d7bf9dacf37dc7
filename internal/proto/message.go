package proto

import "strings"

// The chat protocol is plain UTF-8 text frames with no envelope.
// The first client frame is the desired name, every later client frame is
// message text. Server frames take one of the shapes below.
const (
	// RejectionNotice is sent to a client whose requested name is already claimed.
	RejectionNotice = "Username already taken."

	joinedSuffix     = " joined."
	leftSuffix       = " left"
	messageSeparator = " :: "
)

// FrameKind classifies a server frame.
type FrameKind int

const (
	// FrameUnknown is any frame that does not match a known shape.
	FrameUnknown FrameKind = iota
	// FrameMessage is a relayed chat message.
	FrameMessage
	// FrameJoined announces a user joining.
	FrameJoined
	// FrameLeft announces a user leaving.
	FrameLeft
	// FrameRejected is the admission rejection notice.
	FrameRejected
)

// Frame is a parsed server frame.
type Frame struct {
	Kind FrameKind
	User string
	Text string
}

// Joined renders a join announcement.
func Joined(user string) string {
	return user + joinedSuffix
}

// Left renders a departure announcement.
func Left(user string) string {
	return user + leftSuffix
}

// Message renders a relayed chat message.
func Message(user, text string) string {
	return user + messageSeparator + text
}

// Parse classifies a server frame. Names containing the message separator
// are ambiguous on the wire; the first separator wins.
func Parse(frame string) Frame {
	if frame == RejectionNotice {
		return Frame{Kind: FrameRejected, Text: frame}
	}
	if user, text, ok := strings.Cut(frame, messageSeparator); ok {
		return Frame{Kind: FrameMessage, User: user, Text: text}
	}
	if user, ok := strings.CutSuffix(frame, joinedSuffix); ok {
		return Frame{Kind: FrameJoined, User: user}
	}
	if user, ok := strings.CutSuffix(frame, leftSuffix); ok {
		return Frame{Kind: FrameLeft, User: user}
	}
	return Frame{Kind: FrameUnknown, Text: frame}
}
