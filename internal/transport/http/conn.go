package http

import (
	"context"
	"errors"
	"io"

	"github.com/coder/websocket"

	"github.com/ingmarrr/ws-chat/internal/core"
)

// wsConn adapts a websocket connection to core.Conn.
type wsConn struct {
	conn *websocket.Conn
}

func newWSConn(conn *websocket.Conn) *wsConn {
	return &wsConn{conn: conn}
}

func (c *wsConn) Read(ctx context.Context) (string, error) {
	typ, data, err := c.conn.Read(ctx)
	if err != nil {
		return "", err
	}
	if typ != websocket.MessageText {
		return "", core.ErrNonTextFrame
	}
	return string(data), nil
}

func (c *wsConn) Write(ctx context.Context, text string) error {
	return c.conn.Write(ctx, websocket.MessageText, []byte(text))
}

func (c *wsConn) Close(cause error) error {
	status, reason := closeStatus(cause)
	return c.conn.Close(status, reason)
}

// closeStatus maps the reason a session ended to a close frame.
func closeStatus(cause error) (websocket.StatusCode, string) {
	switch {
	case isExpectedClose(cause):
		return websocket.StatusNormalClosure, "closing"
	case errors.Is(cause, context.Canceled), errors.Is(cause, core.ErrHubClosed):
		return websocket.StatusGoingAway, "server shutting down"
	case errors.Is(cause, core.ErrNameTaken):
		return websocket.StatusPolicyViolation, "name already taken"
	case errors.Is(cause, core.ErrNonTextFrame):
		return websocket.StatusUnsupportedData, "text frames only"
	case errors.Is(cause, core.ErrIdleTimeout):
		return websocket.StatusPolicyViolation, "idle timeout"
	default:
		return websocket.StatusInternalError, "internal error"
	}
}

// isExpectedClose reports whether a session ended the ordinary way: the peer
// hung up or closed normally.
func isExpectedClose(err error) bool {
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway, websocket.StatusNoStatusRcvd:
		return true
	}
	return false
}
