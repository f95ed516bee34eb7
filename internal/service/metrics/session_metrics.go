package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	SessionMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "limes",
			Subsystem: "ws",
			Name:      "messages_total",
			Help:      "Messages written to WebSocket sessions by type",
		},
		[]string{"type"},
	)

	SessionDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "limes",
			Subsystem: "ws",
			Name:      "dropped_total",
			Help:      "Messages dropped because a session send buffer was full",
		},
	)

	StaleResults = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "limes",
			Subsystem: "ws",
			Name:      "stale_results_total",
			Help:      "Computations discarded because a newer selection superseded them",
		},
	)
)

// Register adds the session collectors to the default registry once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(SessionMessages, SessionDropped, StaleResults)
	})
}
