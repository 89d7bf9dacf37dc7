// Package client is a line-oriented terminal client for the chat server.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/coder/websocket"

	"github.com/ingmarrr/ws-chat/internal/proto"
)

// ErrRejected is returned when the server refuses the requested name.
var ErrRejected = errors.New("name rejected by server")

// Options configures a client run.
type Options struct {
	URL   string
	Name  string
	In    io.Reader
	Out   io.Writer
	Color bool
}

// Run connects, joins as opts.Name and relays lines from In until In is
// exhausted, the server closes the connection or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	name := opts.Name
	if strings.TrimSpace(name) == "" {
		return errors.New("name is required")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, opts.URL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.CloseNow()

	if err := conn.Write(ctx, websocket.MessageText, []byte(name)); err != nil {
		return fmt.Errorf("send name: %w", err)
	}

	p := newPrinter(opts.Out, name, opts.Color)
	readErr := make(chan error, 1)
	go func() {
		defer cancel()
		readErr <- readLoop(ctx, conn, p)
	}()

	if err := writeLoop(ctx, conn, opts.In); err != nil {
		return err
	}

	// A read failure or rejection ended the session first.
	select {
	case err := <-readErr:
		return err
	default:
	}
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn, p *printer) error {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		if typ != websocket.MessageText {
			continue
		}
		frame := proto.Parse(string(data))
		p.print(frame)
		if frame.Kind == proto.FrameRejected {
			return ErrRejected
		}
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn, in io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, []byte(line)); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("send: %w", err)
			}
		}
	}
}
