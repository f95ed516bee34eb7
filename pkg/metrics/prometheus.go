package metrics

import (
	"time"

	"LimesMS/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	signals      *prometheus.CounterVec
	insufficient *prometheus.CounterVec
	risk         *prometheus.GaugeVec
	errorsTotal  *prometheus.CounterVec
	lastPrice    *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
	sessions     prometheus.Gauge
}

// New creates a recorder on the default Prometheus registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder on reg; tests pass a fresh registry.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		signals: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "limes_signals_computed_total",
				Help: "Computed signals by symbol, profile and advice",
			},
			[]string{"symbol", "profile", "advice"},
		),
		insufficient: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "limes_signals_insufficient_total",
				Help: "Computations rejected for too few samples",
			},
			[]string{"symbol", "series"},
		),
		risk: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "limes_risk_score",
				Help: "Last risk score per symbol and profile",
			},
			[]string{"symbol", "profile"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "limes_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "limes_last_price",
				Help: "Last close seen for a symbol",
			},
			[]string{"symbol"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "limes_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		sessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "limes_ws_sessions",
			Help: "Open WebSocket signal sessions",
		}),
	}
}

// RecordSignal counts a computed signal and stores its risk.
func (r *Recorder) RecordSignal(symbol, profile string, advice models.Advice, risk float64) {
	r.signals.WithLabelValues(symbol, profile, string(advice)).Inc()
	r.risk.WithLabelValues(symbol, profile).Set(risk)
}

// RecordInsufficient counts an insufficient-data outcome.
func (r *Recorder) RecordInsufficient(symbol, series string) {
	r.insufficient.WithLabelValues(symbol, series).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency.
func (r *Recorder) RecordLatency(op string, d time.Duration) {
	r.latency.WithLabelValues(op).Observe(d.Seconds())
}

// SetSessions sets the open session gauge.
func (r *Recorder) SetSessions(n int) {
	r.sessions.Set(float64(n))
}
