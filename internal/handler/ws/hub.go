// Package ws serves live signal sessions over WebSocket. A session selects a
// symbol, gets a signal immediately and a fresh one on every refresh tick.
package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"LimesMS/internal/domain/models"
	domrepo "LimesMS/internal/domain/repository"
	"LimesMS/internal/service/metrics"
	"LimesMS/internal/usecase"
	applogger "LimesMS/pkg/logger"
)

// Computer runs the signal pipeline; *usecase.SignalService satisfies it.
type Computer interface {
	Compute(ctx context.Context, p usecase.ComputeParams) (*models.Result, error)
}

type Config struct {
	RefreshInterval time.Duration
	PingInterval    time.Duration
	WriteTimeout    time.Duration
	SendBuffer      int
	MaxSessions     int
	AllowOrigins    []string
}

func (c *Config) setDefaults() {
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = 5 * time.Minute
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 30 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = 16
	}
}

var ErrTooManySessions = errors.New("too many sessions")

// Hub owns the live sessions.
type Hub struct {
	svc      Computer
	cfg      Config
	metrics  domrepo.Metrics
	l        *applogger.Logger
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[*Session]struct{}
	closed   bool
}

func NewHub(svc Computer, cfg Config, m domrepo.Metrics, l *applogger.Logger) *Hub {
	cfg.setDefaults()
	if l == nil {
		l = applogger.Nop()
	}
	metrics.Register()
	h := &Hub{
		svc:      svc,
		cfg:      cfg,
		metrics:  m,
		l:        l,
		sessions: make(map[*Session]struct{}),
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.cfg.AllowOrigins) == 0 {
		return true
	}
	for _, o := range h.cfg.AllowOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

func (h *Hub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/signal", h.Serve)
}

// Serve upgrades the request and runs the session until the peer goes away.
// Query params client, profile and symbol seed the session.
func (h *Hub) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.l.Warn("ws upgrade failed", applogger.Error(err))
		return nil
	}
	s := newSession(h, conn, c.QueryParam("client"), c.QueryParam("profile"))
	if err := h.add(s); err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(h.cfg.WriteTimeout))
		_ = conn.Close()
		return nil
	}
	if sym := c.QueryParam("symbol"); sym != "" {
		s.handle(clientMessage{Type: msgSelect, Symbol: sym})
	}
	s.run()
	return nil
}

func (h *Hub) add(s *Session) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || (h.cfg.MaxSessions > 0 && len(h.sessions) >= h.cfg.MaxSessions) {
		return ErrTooManySessions
	}
	h.sessions[s] = struct{}{}
	h.report(len(h.sessions))
	return nil
}

func (h *Hub) remove(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[s]; !ok {
		return
	}
	delete(h.sessions, s)
	h.report(len(h.sessions))
}

func (h *Hub) report(n int) {
	if h.metrics != nil {
		h.metrics.SetSessions(n)
	}
}

// Len is the number of live sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Close ends every session and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	all := make([]*Session, 0, len(h.sessions))
	for s := range h.sessions {
		all = append(all, s)
	}
	h.mu.Unlock()
	for _, s := range all {
		s.close()
	}
}
