package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RelayCollector exposes relay-side metrics: connection and presence
// gauges, per-type event counters and the silently dropped forwards that
// would otherwise be invisible.
type RelayCollector struct {
	connectionsActive prometheus.Gauge
	usersOnline       prometheus.Gauge
	roomsActive       prometheus.Gauge
	eventsTotal       *prometheus.CounterVec
	droppedForwards   *prometheus.CounterVec
	authFailures      prometheus.Counter
}

// NewRelayCollector registers relay metrics on reg. Pass
// prometheus.DefaultRegisterer in production.
func NewRelayCollector(reg prometheus.Registerer) *RelayCollector {
	factory := promauto.With(reg)

	return &RelayCollector{
		connectionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chatwire_relay_connections_active",
			Help: "Number of open relay connections",
		}),

		usersOnline: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chatwire_relay_users_online",
			Help: "Number of users bound in the presence registry",
		}),

		roomsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chatwire_relay_rooms_active",
			Help: "Number of rooms with at least one joined connection",
		}),

		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chatwire_relay_events_total",
			Help: "Inbound relay events by type",
		}, []string{"type"}),

		droppedForwards: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chatwire_relay_dropped_forwards_total",
			Help: "Targeted forwards dropped because the target was offline",
		}, []string{"type"}),

		authFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "chatwire_relay_auth_failures_total",
			Help: "Failed authenticate handshakes",
		}),
	}
}

func (c *RelayCollector) ConnectionOpened() { c.connectionsActive.Inc() }

func (c *RelayCollector) ConnectionClosed() { c.connectionsActive.Dec() }

func (c *RelayCollector) SetUsersOnline(n int) { c.usersOnline.Set(float64(n)) }

func (c *RelayCollector) SetRoomsActive(n int) { c.roomsActive.Set(float64(n)) }

func (c *RelayCollector) RecordEvent(eventType string) {
	c.eventsTotal.WithLabelValues(eventType).Inc()
}

func (c *RelayCollector) RecordDroppedForward(eventType string) {
	c.droppedForwards.WithLabelValues(eventType).Inc()
}

func (c *RelayCollector) RecordAuthFailure() {
	c.authFailures.Inc()
}
