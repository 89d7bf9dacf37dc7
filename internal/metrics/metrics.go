package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ingmarrr/ws-chat/internal/core"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "wschat"

// Collector holds the chat hub metrics and implements core.Observer.
type Collector struct {
	registry *prometheus.Registry

	connections       prometheus.Gauge
	members           prometheus.Gauge
	joinsTotal        prometheus.Counter
	rejectionsTotal   prometheus.Counter
	eventsPublished   *prometheus.CounterVec
	eventsDropped     prometheus.Counter
	messagesThrottled prometheus.Counter
}

var _ core.Observer = (*Collector)(nil)

// New creates a collector backed by its own registry, which also carries the
// Go runtime and process collectors.
func New(namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		connections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections",
			Help:      "Number of open WebSocket connections, admitted or not",
		}),
		members: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "members",
			Help:      "Number of joined users",
		}),
		joinsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "joins_total",
			Help:      "Total number of admitted sessions",
		}),
		rejectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "name_rejections_total",
			Help:      "Total number of admissions refused because the name was taken",
		}),
		eventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Total number of events published on the bus by kind",
		}, []string{"kind"}),
		eventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Total number of per-subscriber deliveries skipped because the subscriber lagged",
		}),
		messagesThrottled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_throttled_total",
			Help:      "Total number of inbound messages dropped by the rate limiter",
		}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) SessionOpened() { c.connections.Inc() }
func (c *Collector) SessionClosed() { c.connections.Dec() }

func (c *Collector) SessionJoined() {
	c.members.Inc()
	c.joinsTotal.Inc()
}

func (c *Collector) SessionLeft()      { c.members.Dec() }
func (c *Collector) NameRejected()     { c.rejectionsTotal.Inc() }
func (c *Collector) MessageThrottled() { c.messagesThrottled.Inc() }

func (c *Collector) EventPublished(kind core.EventKind) {
	c.eventsPublished.WithLabelValues(kind.String()).Inc()
}

// EventDropped is meant to be passed to core.WithDropHandler.
func (c *Collector) EventDropped(core.Event) {
	c.eventsDropped.Inc()
}
