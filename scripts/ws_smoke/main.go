// Command ws_smoke checks a running server end to end: two users join, one
// speaks, the other hears it, and a duplicate name is refused.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/ingmarrr/ws-chat/internal/proto"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ws_smoke: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("ws_smoke: ok")
}

func run() error {
	addr := flag.String("addr", "ws://localhost:3001/ws", "WebSocket address")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	suffix := uuid.NewString()[:8]
	speaker, listener := "smoke-a-"+suffix, "smoke-b-"+suffix

	a, err := join(ctx, *addr, speaker)
	if err != nil {
		return err
	}
	defer a.Close(websocket.StatusNormalClosure, "bye")

	b, err := join(ctx, *addr, listener)
	if err != nil {
		return err
	}
	defer b.Close(websocket.StatusNormalClosure, "bye")

	if err := a.Write(ctx, websocket.MessageText, []byte(*text)); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	if err := await(ctx, b, proto.Message(speaker, *text)); err != nil {
		return err
	}

	dup, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial duplicate: %w", err)
	}
	defer dup.CloseNow()
	if err := dup.Write(ctx, websocket.MessageText, []byte(speaker)); err != nil {
		return fmt.Errorf("send duplicate name: %w", err)
	}
	return await(ctx, dup, proto.RejectionNotice)
}

func join(ctx context.Context, addr, name string) (*websocket.Conn, error) {
	conn, _, err := websocket.Dial(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", name, err)
	}
	if err := conn.Write(ctx, websocket.MessageText, []byte(name)); err != nil {
		conn.CloseNow()
		return nil, fmt.Errorf("send name %s: %w", name, err)
	}
	if err := await(ctx, conn, proto.Joined(name)); err != nil {
		conn.CloseNow()
		return nil, err
	}
	return conn, nil
}

// await reads frames until want arrives, printing everything it sees.
func await(ctx context.Context, conn *websocket.Conn, want string) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("timed out waiting for %q", want)
			}
			return fmt.Errorf("read: %w", err)
		}
		fmt.Printf("received: %s\n", data)
		if string(data) == want {
			return nil
		}
	}
}
