package http

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/ingmarrr/ws-chat/internal/config"
	"github.com/ingmarrr/ws-chat/internal/core"
	"github.com/ingmarrr/ws-chat/internal/metrics"
)

type testEnv struct {
	ts      *httptest.Server
	hub     *core.Hub
	metrics *metrics.Collector
}

func startTestServer(t *testing.T) *testEnv {
	t.Helper()
	return startTestServerWith(t, core.Options{})
}

func startTestServerWith(t *testing.T, opts core.Options) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.Addr = ":0"
	logger := zerolog.Nop()

	collector := metrics.New(metrics.DefaultNamespace)
	bus := core.NewBus(cfg.SubscriberBuffer, core.WithDropHandler(collector.EventDropped))
	opts.Observer = collector
	hub := core.NewHub(core.NewRegistry(), bus, &logger, opts)

	server := NewServer(hub, collector.Handler(), &cfg, &logger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = hub.Shutdown(ctx)
		ts.Close()
	})

	return &testEnv{ts: ts, hub: hub, metrics: collector}
}

func (e *testEnv) wsURL() string {
	return strings.Replace(e.ts.URL, "http", "ws", 1) + "/ws"
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func dial(t *testing.T, ctx context.Context, env *testEnv) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.Dial(ctx, env.wsURL(), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.CloseNow() })
	return conn
}

func writeText(t *testing.T, ctx context.Context, conn *websocket.Conn, text string) {
	t.Helper()
	if err := conn.Write(ctx, websocket.MessageText, []byte(text)); err != nil {
		t.Fatalf("write %q: %v", text, err)
	}
}

func readText(t *testing.T, ctx context.Context, conn *websocket.Conn) string {
	t.Helper()
	typ, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if typ != websocket.MessageText {
		t.Fatalf("unexpected frame type: %v", typ)
	}
	return string(data)
}

func expectFrame(t *testing.T, ctx context.Context, conn *websocket.Conn, want string) {
	t.Helper()
	if got := readText(t, ctx, conn); got != want {
		t.Fatalf("frame = %q, want %q", got, want)
	}
}

// expectClose reads until the server's close frame and checks its status.
func expectClose(t *testing.T, ctx context.Context, conn *websocket.Conn, want websocket.StatusCode) {
	t.Helper()
	for {
		_, _, err := conn.Read(ctx)
		if err == nil {
			continue
		}
		if got := websocket.CloseStatus(err); got != want {
			t.Fatalf("close status = %v (%v), want %v", got, err, want)
		}
		return
	}
}

// joinAs dials, sends the name and consumes the session's own join notice.
func joinAs(t *testing.T, ctx context.Context, env *testEnv, name string) *websocket.Conn {
	t.Helper()
	conn := dial(t, ctx, env)
	writeText(t, ctx, conn, name)
	expectFrame(t, ctx, conn, name+" joined.")
	return conn
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting: %s", msg)
}

