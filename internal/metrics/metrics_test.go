package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/ingmarrr/ws-chat/internal/core"
)

func TestCollector_Tracks_Session_Lifecycle(t *testing.T) {
	req := require.New(t)
	c := New("")

	c.SessionOpened()
	c.SessionOpened()
	c.SessionJoined()
	c.NameRejected()
	c.SessionClosed()

	req.Equal(1.0, testutil.ToFloat64(c.connections))
	req.Equal(1.0, testutil.ToFloat64(c.members))
	req.Equal(1.0, testutil.ToFloat64(c.joinsTotal))
	req.Equal(1.0, testutil.ToFloat64(c.rejectionsTotal))

	c.SessionLeft()
	req.Equal(0.0, testutil.ToFloat64(c.members))
	req.Equal(1.0, testutil.ToFloat64(c.joinsTotal))
}

func TestCollector_Counts_Bus_Traffic(t *testing.T) {
	req := require.New(t)
	c := New("")

	bus := core.NewBus(1, core.WithDropHandler(c.EventDropped))
	_ = bus.Subscribe()

	for _, ev := range []core.Event{core.JoinedEvent("a"), core.MessageEvent("a", "hi")} {
		bus.Publish(ev)
		c.EventPublished(ev.Kind)
	}
	c.MessageThrottled()

	req.Equal(1.0, testutil.ToFloat64(c.eventsPublished.WithLabelValues("joined")))
	req.Equal(1.0, testutil.ToFloat64(c.eventsPublished.WithLabelValues("message")))
	req.Equal(1.0, testutil.ToFloat64(c.eventsDropped))
	req.Equal(1.0, testutil.ToFloat64(c.messagesThrottled))
}

func TestCollector_Handler_Exposes_Namespace(t *testing.T) {
	c := New("testchat")
	c.SessionJoined()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), "testchat_members 1"), "metrics body:\n%s", body)
	require.True(t, strings.Contains(string(body), "go_goroutines"))
}
