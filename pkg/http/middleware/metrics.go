package middleware

import (
	"strconv"
	"sync"
	"time"

	applogger "LimesMS/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "limes",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route template, method and status code",
	}, []string{"route", "method", "code"})

	requestSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "limes",
		Subsystem: "http",
		Name:      "request_seconds",
		Help:      "HTTP request latency",
		Buckets:   []float64{.005, .025, .1, .25, .5, 1, 2.5, 5, 20},
	}, []string{"route", "class"})

	inFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "limes",
		Subsystem: "http",
		Name:      "in_flight",
		Help:      "Requests being served, including open websocket upgrades",
	})

	registerOnce sync.Once
)

// Metrics labels by echo's route template so query strings do not create
// new series. Requests slower than slow are logged; zero disables that.
func Metrics(l *applogger.Logger, slow time.Duration) echo.MiddlewareFunc {
	registerOnce.Do(func() {
		prometheus.MustRegister(requestsTotal, requestSeconds, inFlight)
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			inFlight.Inc()
			defer inFlight.Dec()
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			code := c.Response().Status
			elapsed := time.Since(start)
			requestsTotal.WithLabelValues(route, c.Request().Method, strconv.Itoa(code)).Inc()
			requestSeconds.WithLabelValues(route, strconv.Itoa(code/100)+"xx").Observe(elapsed.Seconds())

			if l != nil && slow > 0 && elapsed >= slow {
				l.Warn("slow request",
					applogger.String("route", route),
					applogger.Int("status", code),
					applogger.Duration("duration_ms", elapsed),
				)
			}
			return nil
		}
	}
}
