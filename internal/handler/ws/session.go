package ws

import (
	"context"
	"encoding/json"
	"math"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"LimesMS/internal/domain/models"
	"LimesMS/internal/service/metrics"
	"LimesMS/internal/usecase"
	applogger "LimesMS/pkg/logger"
)

const (
	msgSelect = "select"
	msgReload = "reload"
	msgPing   = "ping"

	msgSignal = "signal"
	msgError  = "error"
	msgPong   = "pong"
)

type clientMessage struct {
	Type    string   `json:"type"`
	Symbol  string   `json:"symbol,omitempty"`
	Profile string   `json:"profile,omitempty"`
	Human   *float64 `json:"human,omitempty"`
	Chart   *bool    `json:"chart,omitempty"`
}

type serverMessage struct {
	Type   string          `json:"type"`
	Ticket *usecase.Ticket `json:"ticket,omitempty"`
	Result *models.Result  `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
	TS     int64           `json:"ts"`
}

// Session is one WebSocket peer with its own selection.
type Session struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once

	sel usecase.Selection

	mu       sync.Mutex
	clientID string
	profile  string
	human    *float64
	chart    bool
}

func newSession(h *Hub, conn *websocket.Conn, clientID, profile string) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, h.cfg.SendBuffer),
		ctx:      ctx,
		cancel:   cancel,
		clientID: clientID,
		profile:  profile,
		chart:    true,
	}
}

// run blocks on the read loop; the write and refresh loops stop with it.
func (s *Session) run() {
	go s.writePump()
	go s.refreshLoop()
	s.readPump()
}

func (s *Session) close() {
	s.once.Do(func() {
		s.cancel()
		s.hub.remove(s)
		_ = s.conn.Close()
	})
}

func (s *Session) readPump() {
	defer s.close()

	pongWait := 2 * s.hub.cfg.PingInterval
	s.conn.SetReadLimit(4096)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.hub.l.Debug("ws read ended", applogger.Error(err))
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.emit(serverMessage{Type: msgError, Error: "invalid message: " + err.Error()})
			continue
		}
		s.handle(msg)
	}
}

func (s *Session) handle(msg clientMessage) {
	switch msg.Type {
	case msgSelect:
		if msg.Symbol == "" {
			s.emit(serverMessage{Type: msgError, Error: "symbol is required"})
			return
		}
		if !s.applyOptions(msg) {
			return
		}
		s.start(s.sel.Select(msg.Symbol))
	case msgReload:
		if !s.applyOptions(msg) {
			return
		}
		t, ok := s.sel.Begin()
		if !ok {
			s.emit(serverMessage{Type: msgError, Error: "nothing selected"})
			return
		}
		s.start(t)
	case msgPing:
		s.emit(serverMessage{Type: msgPong})
	default:
		s.emit(serverMessage{Type: msgError, Error: "unknown message type " + msg.Type})
	}
}

// applyOptions stores the message's options on the session. An out-of-range
// human value is rejected with an error message and nothing is stored.
func (s *Session) applyOptions(msg clientMessage) bool {
	if msg.Human != nil && (*msg.Human < 0 || *msg.Human > 5 || math.IsNaN(*msg.Human)) {
		s.emit(serverMessage{Type: msgError, Error: usecase.ErrInvalidHuman.Error()})
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.Profile != "" {
		s.profile = msg.Profile
	}
	if msg.Human != nil {
		h := *msg.Human
		s.human = &h
	}
	if msg.Chart != nil {
		s.chart = *msg.Chart
	}
	return true
}

func (s *Session) params(symbol string) usecase.ComputeParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return usecase.ComputeParams{
		Symbol:   symbol,
		Profile:  s.profile,
		Human:    s.human,
		ClientID: s.clientID,
		Chart:    s.chart,
	}
}

// start computes t in the background. Newer tickets never cancel it; the
// result is dropped on arrival if the selection moved on.
func (s *Session) start(t usecase.Ticket) {
	p := s.params(t.Symbol)
	go func() {
		res, err := s.hub.svc.Compute(s.ctx, p)
		if s.ctx.Err() != nil {
			return
		}
		if !s.sel.Commit(t) {
			metrics.StaleResults.Inc()
			return
		}
		if err != nil {
			s.emit(serverMessage{Type: msgError, Ticket: &t, Error: err.Error()})
			return
		}
		s.emit(serverMessage{Type: msgSignal, Ticket: &t, Result: res})
	}()
}

func (s *Session) refreshLoop() {
	ticker := time.NewTicker(s.hub.cfg.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if t, ok := s.sel.Begin(); ok {
				s.start(t)
			}
		}
	}
}

func (s *Session) emit(m serverMessage) {
	m.TS = time.Now().UnixMilli()
	b, err := json.Marshal(m)
	if err != nil {
		s.hub.l.Error("ws encode failed", applogger.Error(err))
		return
	}
	select {
	case <-s.ctx.Done():
	case s.send <- b:
		metrics.SessionMessages.WithLabelValues(m.Type).Inc()
	default:
		metrics.SessionDropped.Inc()
		s.hub.l.Warn("ws send buffer full, dropping message", applogger.String("type", m.Type))
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(s.hub.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		s.close()
	}()

	for {
		select {
		case <-s.ctx.Done():
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(s.hub.cfg.WriteTimeout))
			return
		case msg := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.hub.cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.hub.cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
